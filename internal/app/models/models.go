package models

import "strings"

// RoleType defines the user role type
type RoleType string

const (
	RoleStudent    RoleType = "STUDENT"
	RoleInstructor RoleType = "INSTRUCTOR"
	RoleHomeowner  RoleType = "HOMEOWNER"
)

// ParseRoleType accepts a role name in any case. An empty name yields RoleStudent.
func ParseRoleType(s string) (RoleType, bool) {
	switch RoleType(strings.ToUpper(strings.TrimSpace(s))) {
	case "", RoleStudent:
		return RoleStudent, true
	case RoleInstructor:
		return RoleInstructor, true
	case RoleHomeowner:
		return RoleHomeowner, true
	default:
		return "", false
	}
}

// HouseStatus is the availability of a house listing
type HouseStatus string

const (
	HouseAvailable HouseStatus = "available"
	HouseRented    HouseStatus = "rented"
)

// RentalStatus is the lifecycle state of a rental
type RentalStatus string

const (
	RentalActive    RentalStatus = "active"
	RentalCompleted RentalStatus = "completed"
)

// ContentType is the kind of a syllabus content item
type ContentType string

const (
	ContentVideo ContentType = "video"
	ContentFile  ContentType = "file"
)

// TargetKind selects which catalogue a rating or favorite points into
type TargetKind string

const (
	TargetCourse TargetKind = "course"
	TargetHouse  TargetKind = "house"
)
