package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/edustay/internal/app/models"
	"github.com/yigit/edustay/internal/db"
	"github.com/yigit/edustay/internal/pkg/logger"
)

// IRatingRepository defines course and house rating persistence
type IRatingRepository interface {
	Upsert(ctx context.Context, kind models.TargetKind, userID, targetID int64, rating int, comment *string) (*models.Rating, error)
	ListByTarget(ctx context.Context, kind models.TargetKind, targetID int64) ([]models.Rating, error)
}

// targetTable maps a rating or favorite kind to its table and foreign key column
func targetTable(kind models.TargetKind, course, house string) (table, column string, err error) {
	switch kind {
	case models.TargetCourse:
		return course, "course_id", nil
	case models.TargetHouse:
		return house, "house_id", nil
	default:
		return "", "", fmt.Errorf("unknown target kind %q", kind)
	}
}

// RatingRepository handles rating database operations
type RatingRepository struct {
	db db.DBTX
	sb squirrel.StatementBuilderType
}

// NewRatingRepository creates a new RatingRepository
func NewRatingRepository(conn db.DBTX) *RatingRepository {
	return &RatingRepository{
		db: conn,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Upsert creates the user's rating for a target or replaces the existing one
func (r *RatingRepository) Upsert(ctx context.Context, kind models.TargetKind, userID, targetID int64, rating int, comment *string) (*models.Rating, error) {
	table, column, err := targetTable(kind, "course_ratings", "house_ratings")
	if err != nil {
		return nil, err
	}

	sql, args, err := r.sb.Insert(table).
		Columns("user_id", column, "rating", "comment").
		Values(userID, targetID, rating, comment).
		Suffix(fmt.Sprintf(`ON CONFLICT (user_id, %s)
			DO UPDATE SET rating = EXCLUDED.rating, comment = EXCLUDED.comment, updated_at = NOW()
			RETURNING id, created_at, updated_at`, column)).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building upsert rating SQL")
		return nil, fmt.Errorf("failed to build upsert rating query: %w", err)
	}

	out := &models.Rating{UserID: userID, TargetID: targetID, Rating: rating, Comment: comment}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&out.ID, &out.CreatedAt, &out.UpdatedAt); err != nil {
		logger.Error().Err(err).Str("kind", string(kind)).Int64("targetID", targetID).Msg("Error executing upsert rating query")
		return nil, fmt.Errorf("error saving rating: %w", err)
	}
	return out, nil
}

// ListByTarget returns ratings newest first with the rater's name
func (r *RatingRepository) ListByTarget(ctx context.Context, kind models.TargetKind, targetID int64) ([]models.Rating, error) {
	table, column, err := targetTable(kind, "course_ratings", "house_ratings")
	if err != nil {
		return nil, err
	}

	sql, args, err := r.sb.Select("r.id", "r.user_id", "r."+column, "r.rating", "r.comment",
		"r.created_at", "r.updated_at", "u.name").
		From(table+" r").
		Join("users u ON u.id = r.user_id").
		Where(squirrel.Eq{"r." + column: targetID}).
		OrderBy("r.created_at DESC", "r.id DESC").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list ratings SQL")
		return nil, fmt.Errorf("failed to build list ratings query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("kind", string(kind)).Int64("targetID", targetID).Msg("Error executing list ratings query")
		return nil, fmt.Errorf("error listing ratings: %w", err)
	}
	defer rows.Close()

	ratings := []models.Rating{}
	for rows.Next() {
		var (
			rt   models.Rating
			name string
		)
		if err := rows.Scan(&rt.ID, &rt.UserID, &rt.TargetID, &rt.Rating, &rt.Comment,
			&rt.CreatedAt, &rt.UpdatedAt, &name); err != nil {
			return nil, fmt.Errorf("error scanning rating: %w", err)
		}
		rt.User = &models.UserSummary{Name: name}
		ratings = append(ratings, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ratings: %w", err)
	}
	return ratings, nil
}
