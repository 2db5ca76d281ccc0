// Package services holds the business logic between the HTTP controllers and the repositories.
package services

import (
	"time"

	appauth "github.com/yigit/edustay/internal/app/auth"
	"github.com/yigit/edustay/internal/app/repositories"
	"github.com/yigit/edustay/internal/pkg/auth"
	"github.com/yigit/edustay/internal/pkg/cache"
	"github.com/yigit/edustay/internal/pkg/filestorage"
	"github.com/yigit/edustay/internal/pkg/logger"
)

// Options carries the settings services need beyond their repositories
type Options struct {
	CourseCacheTTL time.Duration
	MaxUploadBytes int64
	// Notifier receives live rental and enrollment events; nil disables them
	Notifier Notifier
}

// Services holds all the service instances
type Services struct {
	AuthService       AuthService
	CourseService     CourseService
	EnrollmentService EnrollmentService
	RatingService     RatingService
	FavoriteService   FavoriteService
	HouseService      HouseService
	RentalService     RentalService
	StatsService      StatsService
	UploadService     UploadService
}

// NewServices wires every service to the repositories
func NewServices(
	repos *repositories.Repositories,
	jwtService *auth.JWTService,
	c cache.Cache,
	storage filestorage.FileStorage,
	opts Options,
) *Services {
	authz := appauth.NewAuthorizationService(repos.CourseRepository, repos.HouseRepository)

	return &Services{
		AuthService: NewAuthService(repos.UserRepository, repos.TokenRepository, jwtService, logger.Component("auth")),
		CourseService: NewCourseService(repos.CourseRepository, authz, c, opts.CourseCacheTTL,
			logger.Component("course")),
		EnrollmentService: NewEnrollmentService(repos.CourseRepository, repos.EnrollmentRepository,
			repos.ProgressRepository, opts.Notifier, logger.Component("enrollment")),
		RatingService: NewRatingService(repos.RatingRepository, repos.CourseRepository, repos.EnrollmentRepository,
			repos.HouseRepository, repos.RentalRepository, logger.Component("rating")),
		FavoriteService: NewFavoriteService(repos.FavoriteRepository, repos.CourseRepository, repos.HouseRepository),
		HouseService:    NewHouseService(repos.HouseRepository, repos.RentalRepository, authz, logger.Component("house")),
		RentalService:   NewRentalService(repos.HouseRepository, repos.RentalRepository, opts.Notifier, logger.Component("rental")),
		StatsService:    NewStatsService(repos.StatsRepository),
		UploadService:   NewUploadService(storage, opts.MaxUploadBytes, logger.Component("upload")),
	}
}
