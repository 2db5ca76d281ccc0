package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/edustay/internal/app/models"
	"github.com/yigit/edustay/internal/db"
	"github.com/yigit/edustay/internal/pkg/apperrors"
	"github.com/yigit/edustay/internal/pkg/logger"
)

// IRentalRepository defines rental persistence and the house/rental state transitions
type IRentalRepository interface {
	StartRental(ctx context.Context, rental *models.Rental) error
	EndRental(ctx context.Context, houseID, rentalID int64, endedAt time.Time) error
	GetByID(ctx context.Context, id int64) (*models.Rental, error)
	ListByHouse(ctx context.Context, houseID int64) ([]models.Rental, error)
	HasCompletedRental(ctx context.Context, userID, houseID int64) (bool, error)
	ListExpired(ctx context.Context, now time.Time) ([]models.Rental, error)
}

var rentalColumns = []string{
	"r.id", "r.house_id", "r.user_id", "r.start_date", "r.end_date", "r.status", "r.created_at", "r.updated_at",
}

// RentalRepository handles rental database operations
type RentalRepository struct {
	db db.DBTX
	sb squirrel.StatementBuilderType
}

// NewRentalRepository creates a new RentalRepository
func NewRentalRepository(conn db.DBTX) *RentalRepository {
	return &RentalRepository{
		db: conn,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// lockHouse reads the house status and current rental under a row lock
func (r *RentalRepository) lockHouse(ctx context.Context, tx pgx.Tx, houseID int64) (models.HouseStatus, int64, error) {
	sql, args, err := r.sb.Select("status", "COALESCE(current_rental_id, 0)").
		From("houses").
		Where(squirrel.Eq{"id": houseID}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return "", 0, fmt.Errorf("failed to build lock house query: %w", err)
	}

	var (
		status          models.HouseStatus
		currentRentalID int64
	)
	if err := tx.QueryRow(ctx, sql, args...).Scan(&status, &currentRentalID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", 0, apperrors.ErrHouseNotFound
		}
		logger.Error().Err(err).Int64("houseID", houseID).Msg("Error locking house row")
		return "", 0, fmt.Errorf("error locking house: %w", err)
	}
	return status, currentRentalID, nil
}

// StartRental moves an available house to rented and records an active rental
// in one transaction. rental.ID, Status and CreatedAt are filled in.
func (r *RentalRepository) StartRental(ctx context.Context, rental *models.Rental) error {
	return db.RunInTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		status, currentRentalID, err := r.lockHouse(ctx, tx, rental.HouseID)
		if err != nil {
			return err
		}
		if status != models.HouseAvailable || currentRentalID != 0 {
			return apperrors.ErrHouseNotAvailable
		}

		sql, args, err := r.sb.Insert("rentals").
			Columns("house_id", "user_id", "start_date", "end_date", "status").
			Values(rental.HouseID, rental.UserID, rental.StartDate, rental.EndDate, string(models.RentalActive)).
			Suffix("RETURNING id, created_at, updated_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build create rental query: %w", err)
		}
		if err := tx.QueryRow(ctx, sql, args...).Scan(&rental.ID, &rental.CreatedAt, &rental.UpdatedAt); err != nil {
			logger.Error().Err(err).Int64("houseID", rental.HouseID).Msg("Error inserting rental")
			return fmt.Errorf("error creating rental: %w", err)
		}
		rental.Status = models.RentalActive

		sql, args, err = r.sb.Update("houses").
			Set("status", string(models.HouseRented)).
			Set("current_rental_id", rental.ID).
			Set("updated_at", squirrel.Expr("NOW()")).
			Where(squirrel.Eq{"id": rental.HouseID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build rent house query: %w", err)
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			logger.Error().Err(err).Int64("houseID", rental.HouseID).Msg("Error marking house rented")
			return fmt.Errorf("error updating house: %w", err)
		}
		return nil
	})
}

// EndRental completes the house's current rental and makes the house available
// again in one transaction. It fails with ErrNoActiveRental when rentalID is not
// the house's current rental.
func (r *RentalRepository) EndRental(ctx context.Context, houseID, rentalID int64, endedAt time.Time) error {
	return db.RunInTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		_, currentRentalID, err := r.lockHouse(ctx, tx, houseID)
		if err != nil {
			return err
		}
		if currentRentalID == 0 || currentRentalID != rentalID {
			return apperrors.ErrNoActiveRental
		}

		sql, args, err := r.sb.Update("rentals").
			Set("status", string(models.RentalCompleted)).
			Set("end_date", endedAt).
			Set("updated_at", squirrel.Expr("NOW()")).
			Where(squirrel.Eq{"id": rentalID, "status": string(models.RentalActive)}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build complete rental query: %w", err)
		}
		cmdTag, err := tx.Exec(ctx, sql, args...)
		if err != nil {
			logger.Error().Err(err).Int64("rentalID", rentalID).Msg("Error completing rental")
			return fmt.Errorf("error completing rental: %w", err)
		}
		if cmdTag.RowsAffected() == 0 {
			return apperrors.ErrNoActiveRental
		}

		sql, args, err = r.sb.Update("houses").
			Set("status", string(models.HouseAvailable)).
			Set("current_rental_id", nil).
			Set("updated_at", squirrel.Expr("NOW()")).
			Where(squirrel.Eq{"id": houseID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build release house query: %w", err)
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			logger.Error().Err(err).Int64("houseID", houseID).Msg("Error releasing house")
			return fmt.Errorf("error updating house: %w", err)
		}
		return nil
	})
}

func scanRental(row pgx.Row, extra ...interface{}) (*models.Rental, error) {
	var rt models.Rental
	dest := append([]interface{}{
		&rt.ID, &rt.HouseID, &rt.UserID, &rt.StartDate, &rt.EndDate, &rt.Status, &rt.CreatedAt, &rt.UpdatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &rt, nil
}

// GetByID returns a rental with its renter summary
func (r *RentalRepository) GetByID(ctx context.Context, id int64) (*models.Rental, error) {
	sql, args, err := r.sb.Select(append(rentalColumns, "u.name", "u.email")...).
		From("rentals r").
		Join("users u ON u.id = r.user_id").
		Where(squirrel.Eq{"r.id": id}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get rental SQL")
		return nil, fmt.Errorf("failed to build get rental query: %w", err)
	}

	var name, email string
	rental, err := scanRental(r.db.QueryRow(ctx, sql, args...), &name, &email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrRentalNotFound
		}
		logger.Error().Err(err).Int64("rentalID", id).Msg("Error scanning rental row")
		return nil, fmt.Errorf("error retrieving rental: %w", err)
	}
	rental.Renter = &models.UserSummary{ID: rental.UserID, Name: name, Email: email}
	return rental, nil
}

// ListByHouse returns the rental history of a house, newest first
func (r *RentalRepository) ListByHouse(ctx context.Context, houseID int64) ([]models.Rental, error) {
	sql, args, err := r.sb.Select(append(rentalColumns, "u.name", "u.email")...).
		From("rentals r").
		Join("users u ON u.id = r.user_id").
		Where(squirrel.Eq{"r.house_id": houseID}).
		OrderBy("r.start_date DESC", "r.id DESC").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list rentals SQL")
		return nil, fmt.Errorf("failed to build list rentals query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("houseID", houseID).Msg("Error executing list rentals query")
		return nil, fmt.Errorf("error listing rentals: %w", err)
	}
	defer rows.Close()

	rentals := []models.Rental{}
	for rows.Next() {
		var name, email string
		rt, err := scanRental(rows, &name, &email)
		if err != nil {
			return nil, fmt.Errorf("error scanning rental: %w", err)
		}
		rt.Renter = &models.UserSummary{ID: rt.UserID, Name: name, Email: email}
		rentals = append(rentals, *rt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rentals: %w", err)
	}
	return rentals, nil
}

// HasCompletedRental reports whether the user has finished a rental of the house
func (r *RentalRepository) HasCompletedRental(ctx context.Context, userID, houseID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM rentals WHERE user_id = $1 AND house_id = $2 AND status = $3)`,
		userID, houseID, string(models.RentalCompleted)).Scan(&exists)
	if err != nil {
		logger.Error().Err(err).Int64("userID", userID).Int64("houseID", houseID).Msg("Error checking completed rental")
		return false, fmt.Errorf("error checking rental history: %w", err)
	}
	return exists, nil
}

// ListExpired returns active rentals whose end date is at or before now
func (r *RentalRepository) ListExpired(ctx context.Context, now time.Time) ([]models.Rental, error) {
	sql, args, err := r.sb.Select(rentalColumns...).
		From("rentals r").
		Where(squirrel.Eq{"r.status": string(models.RentalActive)}).
		Where(squirrel.NotEq{"r.end_date": nil}).
		Where(squirrel.LtOrEq{"r.end_date": now}).
		OrderBy("r.end_date").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list expired rentals SQL")
		return nil, fmt.Errorf("failed to build list expired rentals query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list expired rentals query")
		return nil, fmt.Errorf("error listing expired rentals: %w", err)
	}
	defer rows.Close()

	rentals := []models.Rental{}
	for rows.Next() {
		rt, err := scanRental(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning rental: %w", err)
		}
		rentals = append(rentals, *rt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expired rentals: %w", err)
	}
	return rentals, nil
}
