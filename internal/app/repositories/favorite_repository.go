package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/edustay/internal/app/models"
	"github.com/yigit/edustay/internal/db"
	"github.com/yigit/edustay/internal/pkg/logger"
)

// IFavoriteRepository defines favorite persistence
type IFavoriteRepository interface {
	Exists(ctx context.Context, kind models.TargetKind, userID, targetID int64) (bool, error)
	Toggle(ctx context.Context, kind models.TargetKind, userID, targetID int64) (bool, error)
}

// FavoriteRepository handles favorite database operations
type FavoriteRepository struct {
	db db.DBTX
	sb squirrel.StatementBuilderType
}

// NewFavoriteRepository creates a new FavoriteRepository
func NewFavoriteRepository(conn db.DBTX) *FavoriteRepository {
	return &FavoriteRepository{
		db: conn,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Exists reports whether the user has favorited the target
func (r *FavoriteRepository) Exists(ctx context.Context, kind models.TargetKind, userID, targetID int64) (bool, error) {
	table, column, err := targetTable(kind, "course_favorites", "house_favorites")
	if err != nil {
		return false, err
	}

	var exists bool
	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE user_id = $1 AND %s = $2)`, table, column)
	if err := r.db.QueryRow(ctx, query, userID, targetID).Scan(&exists); err != nil {
		logger.Error().Err(err).Str("kind", string(kind)).Msg("Error checking favorite")
		return false, fmt.Errorf("error checking favorite: %w", err)
	}
	return exists, nil
}

// Toggle removes the favorite when present and adds it otherwise. It returns the new state.
func (r *FavoriteRepository) Toggle(ctx context.Context, kind models.TargetKind, userID, targetID int64) (bool, error) {
	table, column, err := targetTable(kind, "course_favorites", "house_favorites")
	if err != nil {
		return false, err
	}

	deleteSQL, deleteArgs, err := r.sb.Delete(table).
		Where(squirrel.Eq{"user_id": userID, column: targetID}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building delete favorite SQL")
		return false, fmt.Errorf("failed to build delete favorite query: %w", err)
	}

	insertSQL, insertArgs, err := r.sb.Insert(table).
		Columns("user_id", column).
		Values(userID, targetID).
		Suffix("ON CONFLICT DO NOTHING").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building insert favorite SQL")
		return false, fmt.Errorf("failed to build insert favorite query: %w", err)
	}

	var favorited bool
	err = db.RunInTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		cmdTag, err := tx.Exec(ctx, deleteSQL, deleteArgs...)
		if err != nil {
			return fmt.Errorf("error removing favorite: %w", err)
		}
		if cmdTag.RowsAffected() > 0 {
			favorited = false
			return nil
		}
		if _, err := tx.Exec(ctx, insertSQL, insertArgs...); err != nil {
			return fmt.Errorf("error adding favorite: %w", err)
		}
		favorited = true
		return nil
	})
	if err != nil {
		logger.Error().Err(err).Str("kind", string(kind)).Int64("targetID", targetID).Msg("Error toggling favorite")
		return false, err
	}
	return favorited, nil
}
