package repositories

import (
	"github.com/yigit/edustay/internal/db"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository       *UserRepository
	TokenRepository      *TokenRepository
	CourseRepository     *CourseRepository
	EnrollmentRepository *EnrollmentRepository
	ProgressRepository   *ProgressRepository
	RatingRepository     *RatingRepository
	FavoriteRepository   *FavoriteRepository
	HouseRepository      *HouseRepository
	RentalRepository     *RentalRepository
	StatsRepository      *StatsRepository
}

// NewRepositories initializes all repositories
func NewRepositories(conn db.DBTX) *Repositories {
	return &Repositories{
		UserRepository:       NewUserRepository(conn),
		TokenRepository:      NewTokenRepository(conn),
		CourseRepository:     NewCourseRepository(conn),
		EnrollmentRepository: NewEnrollmentRepository(conn),
		ProgressRepository:   NewProgressRepository(conn),
		RatingRepository:     NewRatingRepository(conn),
		FavoriteRepository:   NewFavoriteRepository(conn),
		HouseRepository:      NewHouseRepository(conn),
		RentalRepository:     NewRentalRepository(conn),
		StatsRepository:      NewStatsRepository(conn),
	}
}
