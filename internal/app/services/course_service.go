package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	appauth "github.com/yigit/edustay/internal/app/auth"
	"github.com/yigit/edustay/internal/app/models"
	"github.com/yigit/edustay/internal/app/models/dto"
	"github.com/yigit/edustay/internal/app/repositories"
	"github.com/yigit/edustay/internal/pkg/apperrors"
	"github.com/yigit/edustay/internal/pkg/cache"
	"github.com/yigit/edustay/internal/pkg/helpers"
	"github.com/yigit/edustay/internal/pkg/validation"
)

const defaultCourseLanguage = "English"

// CourseService defines the interface for course catalogue operations
type CourseService interface {
	ListCourses(ctx context.Context, viewerID int64, viewerRole models.RoleType, page, size int) (*dto.CourseListResponse, error)
	GetCourse(ctx context.Context, courseID int64) (*models.Course, error)
	CreateCourse(ctx context.Context, instructorID int64, req *dto.CourseRequest) (*models.Course, error)
	UpdateCourse(ctx context.Context, courseID, userID int64, req *dto.CourseRequest) (*models.Course, error)
	DeleteCourse(ctx context.Context, courseID, userID int64) error
}

// courseServiceImpl implements the CourseService interface
type courseServiceImpl struct {
	courseRepo repositories.ICourseRepository
	authz      *appauth.AuthorizationService
	cache      cache.Cache
	cacheTTL   time.Duration
	logger     zerolog.Logger
}

// NewCourseService creates a new course service instance
func NewCourseService(
	courseRepo repositories.ICourseRepository,
	authz *appauth.AuthorizationService,
	c cache.Cache,
	cacheTTL time.Duration,
	logger zerolog.Logger,
) CourseService {
	if c == nil {
		c = cache.NoopCache{}
	}
	return &courseServiceImpl{
		courseRepo: courseRepo,
		authz:      authz,
		cache:      c,
		cacheTTL:   cacheTTL,
		logger:     logger,
	}
}

func courseCacheKey(courseID int64) string {
	return "course:" + strconv.FormatInt(courseID, 10)
}

// ListCourses returns an instructor's own courses, or the whole catalogue for anyone else
func (s *courseServiceImpl) ListCourses(ctx context.Context, viewerID int64, viewerRole models.RoleType, page, size int) (*dto.CourseListResponse, error) {
	var instructorID *int64
	if viewerID > 0 && viewerRole == models.RoleInstructor {
		instructorID = &viewerID
	}

	offset, limit := helpers.CalculateOffsetLimit(page, size)
	courses, total, err := s.courseRepo.List(ctx, instructorID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	if courses == nil {
		courses = []models.Course{}
	}

	return &dto.CourseListResponse{
		Courses:    courses,
		Pagination: helpers.NewPaginationInfo(total, page, limit),
	}, nil
}

// GetCourse returns a course with its syllabus, served from the cache when possible
func (s *courseServiceImpl) GetCourse(ctx context.Context, courseID int64) (*models.Course, error) {
	key := courseCacheKey(courseID)

	var cached models.Course
	if cache.GetJSON(ctx, s.cache, key, &cached) {
		return &cached, nil
	}

	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	cache.SetJSON(ctx, s.cache, key, course, s.cacheTTL)
	return course, nil
}

// CreateCourse publishes a new course owned by instructorID
func (s *courseServiceImpl) CreateCourse(ctx context.Context, instructorID int64, req *dto.CourseRequest) (*models.Course, error) {
	course := &models.Course{InstructorID: instructorID}
	if err := applyCourseRequest(course, req); err != nil {
		return nil, err
	}

	if err := s.courseRepo.Create(ctx, course); err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	s.logger.Info().Int64("courseID", course.ID).Int64("instructorID", instructorID).Msg("Course created")
	return course, nil
}

// UpdateCourse replaces the fields and syllabus of a course taught by userID
func (s *courseServiceImpl) UpdateCourse(ctx context.Context, courseID, userID int64, req *dto.CourseRequest) (*models.Course, error) {
	if err := s.authz.ValidateCourseOwnership(ctx, courseID, userID); err != nil {
		return nil, err
	}

	course := &models.Course{ID: courseID, InstructorID: userID}
	if err := applyCourseRequest(course, req); err != nil {
		return nil, err
	}

	if err := s.courseRepo.Update(ctx, course); err != nil {
		return nil, err
	}
	cache.Invalidate(ctx, s.cache, courseCacheKey(courseID))

	updated, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload course: %w", err)
	}

	s.logger.Info().Int64("courseID", courseID).Msg("Course updated")
	return updated, nil
}

// DeleteCourse removes a course taught by userID together with everything that references it
func (s *courseServiceImpl) DeleteCourse(ctx context.Context, courseID, userID int64) error {
	if err := s.authz.ValidateCourseOwnership(ctx, courseID, userID); err != nil {
		return err
	}

	if err := s.courseRepo.Delete(ctx, courseID); err != nil {
		return err
	}
	cache.Invalidate(ctx, s.cache, courseCacheKey(courseID))

	s.logger.Info().Int64("courseID", courseID).Msg("Course deleted")
	return nil
}

// applyCourseRequest copies a validated request onto course
func applyCourseRequest(course *models.Course, req *dto.CourseRequest) error {
	if strings.TrimSpace(req.Title) == "" {
		return fmt.Errorf("%w: title cannot be empty", apperrors.ErrValidationFailed)
	}
	if err := validation.ValidateSyllabus(req.Syllabus); err != nil {
		return apperrors.NewCustomError(apperrors.ErrInvalidSyllabus, err.Error())
	}

	language := strings.TrimSpace(req.Language)
	if language == "" {
		language = defaultCourseLanguage
	}

	course.Title = strings.TrimSpace(req.Title)
	course.Description = req.Description
	course.FullDescription = req.FullDescription
	course.Level = req.Level
	course.Category = req.Category
	course.Duration = req.Duration
	course.Price = strings.TrimSpace(req.Price)
	course.ImageURL = req.ImageURL
	course.Language = language
	course.Requirements = nonNil(req.Requirements)
	course.WhatYouWillLearn = nonNil(req.WhatYouWillLearn)
	course.Syllabus = req.Syllabus
	if course.Syllabus == nil {
		course.Syllabus = []models.Week{}
	}
	return nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
