package dto

import (
	"time"

	"github.com/yigit/edustay/internal/app/models"
)

// RentedHouse is an active rental seen from the renter's dashboard
type RentedHouse struct {
	models.House
	RentalID  int64      `json:"rentalId"`
	StartDate time.Time  `json:"startDate"`
	EndDate   *time.Time `json:"endDate,omitempty"`
}

// UserStatsResponse is the student dashboard
type UserStatsResponse struct {
	EnrolledCourses     []models.Course `json:"enrolledCourses"`
	FavoriteCourses     []models.Course `json:"favoriteCourses"`
	RentedHouses        []RentedHouse   `json:"rentedHouses"`
	FavoriteHouses      []models.House  `json:"favoriteHouses"`
	TotalEnrolled       int             `json:"totalEnrolled"`
	TotalFavorites      int             `json:"totalFavorites"`
	TotalRented         int             `json:"totalRented"`
	TotalFavoriteHouses int             `json:"totalFavoriteHouses"`
}

// InstructorCourseStats is one course on the instructor dashboard
type InstructorCourseStats struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Price       string  `json:"price"`
	Enrollments int     `json:"enrollments"`
	Revenue     float64 `json:"revenue"`
}

// InstructorStatsResponse is the instructor dashboard
type InstructorStatsResponse struct {
	TotalCourses  int                     `json:"totalCourses"`
	TotalStudents int                     `json:"totalStudents"`
	TotalRevenue  float64                 `json:"totalRevenue"`
	AverageRating float64                 `json:"averageRating"`
	Courses       []InstructorCourseStats `json:"courses"`
}

// HomeownerHouse is one listing on the homeowner dashboard
type HomeownerHouse struct {
	models.House
	CurrentRenter *models.UserSummary `json:"currentRenter,omitempty"`
}

// HomeownerStatsResponse is the homeowner dashboard
type HomeownerStatsResponse struct {
	TotalHouses   int              `json:"totalHouses"`
	ActiveRentals int              `json:"activeRentals"`
	TotalRevenue  float64          `json:"totalRevenue"`
	Houses        []HomeownerHouse `json:"houses"`
}
