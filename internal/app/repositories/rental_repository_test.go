package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/edustay/internal/app/models"
	"github.com/yigit/edustay/internal/pkg/apperrors"
)

const lockHouseSQL = `SELECT status, COALESCE\(current_rental_id, 0\) FROM houses WHERE id = \$1 FOR UPDATE`

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func lockRows(status models.HouseStatus, currentRentalID int64) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"status", "current_rental_id"}).AddRow(status, currentRentalID)
}

func TestRentalRepository_StartRental(t *testing.T) {
	mock := newMock(t)
	repo := NewRentalRepository(mock)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(lockHouseSQL).WithArgs(int64(5)).WillReturnRows(lockRows(models.HouseAvailable, 0))
	mock.ExpectQuery("INSERT INTO rentals").
		WithArgs(int64(5), int64(9), pgxmock.AnyArg(), pgxmock.AnyArg(), "active").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(42), now, now))
	mock.ExpectExec("UPDATE houses SET status = \\$1, current_rental_id = \\$2").
		WithArgs("rented", int64(42), int64(5)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	rental := &models.Rental{HouseID: 5, UserID: 9, StartDate: now}
	require.NoError(t, repo.StartRental(context.Background(), rental))

	assert.Equal(t, int64(42), rental.ID)
	assert.Equal(t, models.RentalActive, rental.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRentalRepository_StartRental_HouseAlreadyRented(t *testing.T) {
	mock := newMock(t)
	repo := NewRentalRepository(mock)

	mock.ExpectBegin()
	mock.ExpectQuery(lockHouseSQL).WithArgs(int64(5)).WillReturnRows(lockRows(models.HouseRented, 7))
	mock.ExpectRollback()

	err := repo.StartRental(context.Background(), &models.Rental{HouseID: 5, UserID: 9, StartDate: time.Now()})
	assert.ErrorIs(t, err, apperrors.ErrHouseNotAvailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRentalRepository_StartRental_MissingHouse(t *testing.T) {
	mock := newMock(t)
	repo := NewRentalRepository(mock)

	mock.ExpectBegin()
	mock.ExpectQuery(lockHouseSQL).WithArgs(int64(5)).
		WillReturnRows(pgxmock.NewRows([]string{"status", "current_rental_id"}))
	mock.ExpectRollback()

	err := repo.StartRental(context.Background(), &models.Rental{HouseID: 5, UserID: 9, StartDate: time.Now()})
	assert.ErrorIs(t, err, apperrors.ErrHouseNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRentalRepository_EndRental(t *testing.T) {
	mock := newMock(t)
	repo := NewRentalRepository(mock)
	endedAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(lockHouseSQL).WithArgs(int64(5)).WillReturnRows(lockRows(models.HouseRented, 42))
	mock.ExpectExec("UPDATE rentals SET status = \\$1, end_date = \\$2").
		WithArgs("completed", endedAt, int64(42), "active").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE houses SET status = \\$1, current_rental_id = \\$2").
		WithArgs("available", nil, int64(5)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	require.NoError(t, repo.EndRental(context.Background(), 5, 42, endedAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRentalRepository_EndRental_NotCurrentRental(t *testing.T) {
	mock := newMock(t)
	repo := NewRentalRepository(mock)

	mock.ExpectBegin()
	mock.ExpectQuery(lockHouseSQL).WithArgs(int64(5)).WillReturnRows(lockRows(models.HouseAvailable, 0))
	mock.ExpectRollback()

	err := repo.EndRental(context.Background(), 5, 42, time.Now())
	assert.ErrorIs(t, err, apperrors.ErrNoActiveRental)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRentalRepository_EndRental_AlreadyCompleted(t *testing.T) {
	mock := newMock(t)
	repo := NewRentalRepository(mock)
	endedAt := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(lockHouseSQL).WithArgs(int64(5)).WillReturnRows(lockRows(models.HouseRented, 42))
	mock.ExpectExec("UPDATE rentals").
		WithArgs("completed", endedAt, int64(42), "active").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	err := repo.EndRental(context.Background(), 5, 42, endedAt)
	assert.ErrorIs(t, err, apperrors.ErrNoActiveRental)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRentalRepository_HasCompletedRental(t *testing.T) {
	mock := newMock(t)
	repo := NewRentalRepository(mock)

	mock.ExpectQuery("SELECT EXISTS").WithArgs(int64(9), int64(5), "completed").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.HasCompletedRental(context.Background(), 9, 5)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}
