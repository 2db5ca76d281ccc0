package models

import (
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID          int64     `json:"id" db:"id" example:"1"`
	Name        string    `json:"name" db:"name" example:"Jane Doe"`
	Email       string    `json:"email" db:"email" example:"jane@example.com"`
	Password    string    `json:"-" db:"password"`
	Phone       *string   `json:"phone,omitempty" db:"phone" example:"+90 555 000 0000"`
	Nationality *string   `json:"nationality,omitempty" db:"nationality" example:"Turkish"`
	RoleType    RoleType  `json:"roleType" db:"role_type" example:"STUDENT"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// UserSummary is the public projection of a user embedded in other resources
type UserSummary struct {
	ID    int64  `json:"id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}
