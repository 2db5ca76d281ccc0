package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/edustay/internal/app/models"
	"github.com/yigit/edustay/internal/db"
	"github.com/yigit/edustay/internal/pkg/apperrors"
	"github.com/yigit/edustay/internal/pkg/dberrors"
	"github.com/yigit/edustay/internal/pkg/logger"
)

// IEnrollmentRepository defines enrollment persistence
type IEnrollmentRepository interface {
	Create(ctx context.Context, userID, courseID int64) (*models.Enrollment, error)
	Exists(ctx context.Context, userID, courseID int64) (bool, error)
}

// EnrollmentRepository handles enrollment database operations
type EnrollmentRepository struct {
	db db.DBTX
	sb squirrel.StatementBuilderType
}

// NewEnrollmentRepository creates a new EnrollmentRepository
func NewEnrollmentRepository(conn db.DBTX) *EnrollmentRepository {
	return &EnrollmentRepository{
		db: conn,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create enrolls a user. A second enrollment in the same course yields ErrAlreadyEnrolled.
func (r *EnrollmentRepository) Create(ctx context.Context, userID, courseID int64) (*models.Enrollment, error) {
	sql, args, err := r.sb.Insert("enrollments").
		Columns("user_id", "course_id").
		Values(userID, courseID).
		Suffix("RETURNING id, enrolled_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create enrollment SQL")
		return nil, fmt.Errorf("failed to build create enrollment query: %w", err)
	}

	enrollment := &models.Enrollment{UserID: userID, CourseID: courseID}
	err = r.db.QueryRow(ctx, sql, args...).Scan(&enrollment.ID, &enrollment.CreatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "enrollments_user_course_key") {
			return nil, apperrors.ErrAlreadyEnrolled
		}
		if dberrors.IsForeignKeyViolation(err) {
			return nil, apperrors.ErrCourseNotFound
		}
		logger.Error().Err(err).Int64("userID", userID).Int64("courseID", courseID).Msg("Error executing create enrollment query")
		return nil, fmt.Errorf("error creating enrollment: %w", err)
	}

	return enrollment, nil
}

// Exists reports whether the user is enrolled in the course
func (r *EnrollmentRepository) Exists(ctx context.Context, userID, courseID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM enrollments WHERE user_id = $1 AND course_id = $2)`,
		userID, courseID).Scan(&exists)
	if err != nil {
		logger.Error().Err(err).Int64("userID", userID).Int64("courseID", courseID).Msg("Error checking enrollment")
		return false, fmt.Errorf("error checking enrollment: %w", err)
	}
	return exists, nil
}
