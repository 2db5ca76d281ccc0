package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/yigit/edustay/internal/app/models"
	"github.com/yigit/edustay/internal/app/repositories"
	"github.com/yigit/edustay/internal/pkg/apperrors"
	"github.com/yigit/edustay/internal/pkg/logger"
)

// AuthorizationService answers ownership questions about courses and houses
type AuthorizationService struct {
	courseRepo repositories.ICourseRepository
	houseRepo  repositories.IHouseRepository
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(courseRepo repositories.ICourseRepository, houseRepo repositories.IHouseRepository) *AuthorizationService {
	return &AuthorizationService{
		courseRepo: courseRepo,
		houseRepo:  houseRepo,
	}
}

// IsCourseInstructor checks if the user is the instructor of the course
func (s *AuthorizationService) IsCourseInstructor(ctx context.Context, courseID, userID int64) (bool, error) {
	instructorID, err := s.courseRepo.GetInstructorID(ctx, courseID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrCourseNotFound) {
			logger.Error().Err(err).Int64("courseID", courseID).Msg("Error getting course instructor in IsCourseInstructor")
		}
		return false, err
	}
	return instructorID == userID, nil
}

// ValidateCourseOwnership returns ErrNotCourseOwner unless userID teaches the course
func (s *AuthorizationService) ValidateCourseOwnership(ctx context.Context, courseID, userID int64) error {
	owns, err := s.IsCourseInstructor(ctx, courseID, userID)
	if err != nil {
		return err
	}
	if !owns {
		return fmt.Errorf("%w: course %d", apperrors.ErrNotCourseOwner, courseID)
	}
	return nil
}

// ValidateHouseOwnership loads the house and returns ErrNotHouseOwner unless userID owns it
func (s *AuthorizationService) ValidateHouseOwnership(ctx context.Context, houseID, userID int64) (*models.House, error) {
	house, err := s.houseRepo.GetByID(ctx, houseID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrHouseNotFound) {
			logger.Error().Err(err).Int64("houseID", houseID).Msg("Error getting house in ValidateHouseOwnership")
		}
		return nil, err
	}
	if !house.IsOwnedBy(userID) {
		return nil, fmt.Errorf("%w: house %d", apperrors.ErrNotHouseOwner, houseID)
	}
	return house, nil
}
