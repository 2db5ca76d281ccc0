package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/edustay/internal/app/models"
	"github.com/yigit/edustay/internal/app/models/dto"
	"github.com/yigit/edustay/internal/app/repositories"
	"github.com/yigit/edustay/internal/pkg/apperrors"
	"github.com/yigit/edustay/internal/pkg/validation"
)

// RatingService defines rating operations on courses and houses
type RatingService interface {
	GetRatings(ctx context.Context, kind models.TargetKind, targetID int64) (*dto.RatingSummaryResponse, error)
	Rate(ctx context.Context, kind models.TargetKind, userID, targetID int64, req *dto.RatingRequest) (*models.Rating, error)
}

// ratingServiceImpl implements the RatingService interface
type ratingServiceImpl struct {
	ratingRepo     repositories.IRatingRepository
	courseRepo     repositories.ICourseRepository
	enrollmentRepo repositories.IEnrollmentRepository
	houseRepo      repositories.IHouseRepository
	rentalRepo     repositories.IRentalRepository
	logger         zerolog.Logger
}

// NewRatingService creates a new rating service instance
func NewRatingService(
	ratingRepo repositories.IRatingRepository,
	courseRepo repositories.ICourseRepository,
	enrollmentRepo repositories.IEnrollmentRepository,
	houseRepo repositories.IHouseRepository,
	rentalRepo repositories.IRentalRepository,
	logger zerolog.Logger,
) RatingService {
	return &ratingServiceImpl{
		ratingRepo:     ratingRepo,
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
		houseRepo:      houseRepo,
		rentalRepo:     rentalRepo,
		logger:         logger,
	}
}

// GetRatings returns every rating of the target, newest first, with the average score
func (s *ratingServiceImpl) GetRatings(ctx context.Context, kind models.TargetKind, targetID int64) (*dto.RatingSummaryResponse, error) {
	ratings, err := s.ratingRepo.ListByTarget(ctx, kind, targetID)
	if err != nil {
		return nil, err
	}
	if ratings == nil {
		ratings = []models.Rating{}
	}

	return &dto.RatingSummaryResponse{
		Ratings:       ratings,
		AverageRating: averageRating(ratings),
		TotalRatings:  len(ratings),
	}, nil
}

// Rate creates or replaces the caller's rating. Courses require an enrollment,
// houses a completed rental by the caller.
func (s *ratingServiceImpl) Rate(ctx context.Context, kind models.TargetKind, userID, targetID int64, req *dto.RatingRequest) (*models.Rating, error) {
	if !validation.ValidRating(req.Rating) {
		return nil, apperrors.ErrInvalidRating
	}

	switch kind {
	case models.TargetCourse:
		if err := s.checkCourseRater(ctx, userID, targetID); err != nil {
			return nil, err
		}
	case models.TargetHouse:
		if err := s.checkHouseRater(ctx, userID, targetID); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: unknown rating target %q", apperrors.ErrBadRequest, kind)
	}

	rating, err := s.ratingRepo.Upsert(ctx, kind, userID, targetID, req.Rating, req.Comment)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("kind", string(kind)).Int64("targetID", targetID).Int64("userID", userID).Int("rating", req.Rating).Msg("Rating saved")
	return rating, nil
}

func (s *ratingServiceImpl) checkCourseRater(ctx context.Context, userID, courseID int64) error {
	if _, err := s.courseRepo.GetInstructorID(ctx, courseID); err != nil {
		return err
	}
	enrolled, err := s.enrollmentRepo.Exists(ctx, userID, courseID)
	if err != nil {
		return err
	}
	if !enrolled {
		return apperrors.ErrNotEnrolled
	}
	return nil
}

func (s *ratingServiceImpl) checkHouseRater(ctx context.Context, userID, houseID int64) error {
	if _, err := s.houseRepo.GetByID(ctx, houseID); err != nil {
		return err
	}
	rented, err := s.rentalRepo.HasCompletedRental(ctx, userID, houseID)
	if err != nil {
		return err
	}
	if !rented {
		return apperrors.ErrRentalNotCompleted
	}
	return nil
}

func averageRating(ratings []models.Rating) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r.Rating
	}
	return float64(sum) / float64(len(ratings))
}
