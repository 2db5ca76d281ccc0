package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/edustay/internal/app/models"
	"github.com/yigit/edustay/internal/db"
	"github.com/yigit/edustay/internal/pkg/logger"
)

// IProgressRepository defines topic progress persistence
type IProgressRepository interface {
	Upsert(ctx context.Context, userID, topicID int64, completed bool) (*models.TopicProgress, error)
	ListByCourse(ctx context.Context, userID, courseID int64) ([]models.TopicProgress, error)
}

// ProgressRepository handles topic progress database operations
type ProgressRepository struct {
	db db.DBTX
	sb squirrel.StatementBuilderType
}

// NewProgressRepository creates a new ProgressRepository
func NewProgressRepository(conn db.DBTX) *ProgressRepository {
	return &ProgressRepository{
		db: conn,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Upsert records the completion state of a topic for a user
func (r *ProgressRepository) Upsert(ctx context.Context, userID, topicID int64, completed bool) (*models.TopicProgress, error) {
	sql, args, err := r.sb.Insert("topic_progress").
		Columns("user_id", "topic_id", "completed").
		Values(userID, topicID, completed).
		Suffix(`ON CONFLICT (user_id, topic_id)
			DO UPDATE SET completed = EXCLUDED.completed, updated_at = NOW()
			RETURNING id, updated_at`).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building upsert progress SQL")
		return nil, fmt.Errorf("failed to build upsert progress query: %w", err)
	}

	progress := &models.TopicProgress{UserID: userID, TopicID: topicID, Completed: completed}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&progress.ID, &progress.UpdatedAt); err != nil {
		logger.Error().Err(err).Int64("userID", userID).Int64("topicID", topicID).Msg("Error executing upsert progress query")
		return nil, fmt.Errorf("error saving progress: %w", err)
	}
	return progress, nil
}

// ListByCourse returns the user's progress rows for topics of the course
func (r *ProgressRepository) ListByCourse(ctx context.Context, userID, courseID int64) ([]models.TopicProgress, error) {
	sql, args, err := r.sb.Select("p.id", "p.user_id", "p.topic_id", "p.completed", "p.updated_at").
		From("topic_progress p").
		Join("topics t ON t.id = p.topic_id").
		Join("weeks w ON w.id = t.week_id").
		Where(squirrel.Eq{"p.user_id": userID, "w.course_id": courseID}).
		OrderBy("w.week_number", "t.position").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list progress SQL")
		return nil, fmt.Errorf("failed to build list progress query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("userID", userID).Int64("courseID", courseID).Msg("Error executing list progress query")
		return nil, fmt.Errorf("error listing progress: %w", err)
	}
	defer rows.Close()

	items := []models.TopicProgress{}
	for rows.Next() {
		var p models.TopicProgress
		if err := rows.Scan(&p.ID, &p.UserID, &p.TopicID, &p.Completed, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning progress: %w", err)
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating progress: %w", err)
	}
	return items, nil
}
