package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/edustay/internal/app/models"
	"github.com/yigit/edustay/internal/pkg/apperrors"
)

func TestUserRepository_Create(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	now := time.Now()

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("Jane", "jane@example.com", "hash", (*string)(nil), (*string)(nil), "STUDENT").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(1), now, now))

	user := &models.User{Name: "Jane", Email: " Jane@Example.com ", Password: "hash", RoleType: models.RoleStudent}
	require.NoError(t, repo.Create(context.Background(), user))

	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, "jane@example.com", user.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_DuplicateEmail(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("Jane", "jane@example.com", "hash", (*string)(nil), (*string)(nil), "STUDENT").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	err := repo.Create(context.Background(), &models.User{Name: "Jane", Email: "jane@example.com", Password: "hash", RoleType: models.RoleStudent})
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)
}

func TestUserRepository_GetByEmail_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery("SELECT id, name, email, password").
		WithArgs("ghost@example.com").
		WillReturnRows(pgxmock.NewRows(userColumns))

	_, err := repo.GetByEmail(context.Background(), "Ghost@example.com")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
