package repositories

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/edustay/internal/app/models"
)

func TestFavoriteRepository_Toggle(t *testing.T) {
	t.Run("adds when absent", func(t *testing.T) {
		mock := newMock(t)
		repo := NewFavoriteRepository(mock)

		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM course_favorites").WithArgs(int64(7), int64(2)).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))
		mock.ExpectExec("INSERT INTO course_favorites").WithArgs(int64(2), int64(7)).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectCommit()

		on, err := repo.Toggle(context.Background(), models.TargetCourse, 2, 7)
		require.NoError(t, err)
		assert.True(t, on)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("removes when present", func(t *testing.T) {
		mock := newMock(t)
		repo := NewFavoriteRepository(mock)

		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM house_favorites").WithArgs(int64(7), int64(2)).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))
		mock.ExpectCommit()

		on, err := repo.Toggle(context.Background(), models.TargetHouse, 2, 7)
		require.NoError(t, err)
		assert.False(t, on)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown kind", func(t *testing.T) {
		repo := NewFavoriteRepository(newMock(t))
		_, err := repo.Toggle(context.Background(), models.TargetKind("lecture"), 2, 7)
		assert.Error(t, err)
	})
}
