package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/edustay/internal/app/models"
	"github.com/yigit/edustay/internal/app/models/dto"
	"github.com/yigit/edustay/internal/app/repositories"
	"github.com/yigit/edustay/internal/pkg/apperrors"
	"github.com/yigit/edustay/internal/pkg/metrics"
)

// EnrollmentService defines enrollment and topic progress operations
type EnrollmentService interface {
	Enroll(ctx context.Context, userID, courseID int64) (*dto.EnrollmentResponse, error)
	GetEnrollmentStatus(ctx context.Context, userID, courseID int64) (*dto.EnrollmentStatusResponse, error)
	GetProgress(ctx context.Context, userID, courseID int64) ([]models.TopicProgress, error)
	UpdateProgress(ctx context.Context, userID, courseID int64, req *dto.ProgressRequest) (*models.TopicProgress, error)
}

// enrollmentServiceImpl implements the EnrollmentService interface
type enrollmentServiceImpl struct {
	courseRepo     repositories.ICourseRepository
	enrollmentRepo repositories.IEnrollmentRepository
	progressRepo   repositories.IProgressRepository
	notifier       Notifier
	logger         zerolog.Logger
}

// NewEnrollmentService creates a new enrollment service instance
func NewEnrollmentService(
	courseRepo repositories.ICourseRepository,
	enrollmentRepo repositories.IEnrollmentRepository,
	progressRepo repositories.IProgressRepository,
	notifier Notifier,
	logger zerolog.Logger,
) EnrollmentService {
	return &enrollmentServiceImpl{
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
		progressRepo:   progressRepo,
		notifier:       notifierOrNoop(notifier),
		logger:         logger,
	}
}

// Enroll adds userID to the course. Enrolling twice is a conflict.
func (s *enrollmentServiceImpl) Enroll(ctx context.Context, userID, courseID int64) (*dto.EnrollmentResponse, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	enrollment, err := s.enrollmentRepo.Create(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	metrics.RecordEnrollment()
	s.notifier.Notify(course.InstructorID, EventEnrollmentCreated, EnrollmentEvent{
		CourseID: courseID, StudentID: userID, Title: course.Title,
	})

	s.logger.Info().Int64("userID", userID).Int64("courseID", courseID).Msg("User enrolled in course")

	return &dto.EnrollmentResponse{
		Message:    fmt.Sprintf("Successfully enrolled in %s", course.Title),
		Enrollment: enrollment,
		UserID:     userID,
		CourseID:   courseID,
	}, nil
}

// GetEnrollmentStatus reports whether userID is enrolled. Anonymous callers (userID 0) never are.
func (s *enrollmentServiceImpl) GetEnrollmentStatus(ctx context.Context, userID, courseID int64) (*dto.EnrollmentStatusResponse, error) {
	if userID <= 0 {
		return &dto.EnrollmentStatusResponse{IsEnrolled: false, CourseID: courseID}, nil
	}

	enrolled, err := s.enrollmentRepo.Exists(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}

	return &dto.EnrollmentStatusResponse{
		IsEnrolled: enrolled,
		UserID:     &userID,
		CourseID:   courseID,
	}, nil
}

// GetProgress lists the caller's progress rows for topics of the course
func (s *enrollmentServiceImpl) GetProgress(ctx context.Context, userID, courseID int64) ([]models.TopicProgress, error) {
	if _, err := s.courseRepo.GetInstructorID(ctx, courseID); err != nil {
		return nil, err
	}

	progress, err := s.progressRepo.ListByCourse(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	if progress == nil {
		progress = []models.TopicProgress{}
	}
	return progress, nil
}

// UpdateProgress marks a topic of the course as completed or not for the caller
func (s *enrollmentServiceImpl) UpdateProgress(ctx context.Context, userID, courseID int64, req *dto.ProgressRequest) (*models.TopicProgress, error) {
	belongs, err := s.courseRepo.TopicBelongsToCourse(ctx, req.TopicID, courseID)
	if err != nil {
		return nil, err
	}
	if !belongs {
		return nil, fmt.Errorf("%w: topic %d is not part of course %d", apperrors.ErrTopicNotFound, req.TopicID, courseID)
	}

	return s.progressRepo.Upsert(ctx, userID, req.TopicID, req.Completed)
}
