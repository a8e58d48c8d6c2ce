package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tafita2023/inata-api/internal/models"
)

func classRow(id, level string, rank int) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "level", "description", "rank", "active", "created_at", "updated_at"}).
		AddRow(id, level, "", rank, true, now, now)
}

func TestClassFindNextByRank(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM classes WHERE rank > \\$1").
		WithArgs(1).
		WillReturnRows(classRow("c2", "l2", 2))

	next, err := repo.FindNextByRank(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "l2", next.Level)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassFindNextByRankTerminal(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	// No class above the top rank means the caller graduates the student.
	mock.ExpectQuery("SELECT (.+) FROM classes WHERE rank > \\$1").
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"id", "level", "description", "rank", "active", "created_at", "updated_at"}))

	next, err := repo.FindNextByRank(context.Background(), 3)
	require.NoError(t, err)
	assert.Nil(t, next)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassUpsertFee(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectExec("INSERT INTO class_fees").WillReturnResult(sqlmock.NewResult(0, 1))

	fee := &models.ClassFee{ClassID: "c1", Amount: 50000}
	require.NoError(t, repo.UpsertFee(context.Background(), fee))
	assert.NotEmpty(t, fee.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassGetFeeMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM class_fees").
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "class_id", "amount"}))

	// Callers rely on sql.ErrNoRows to distinguish a missing fee schedule.
	fee, err := repo.GetFee(context.Background(), "c1")
	require.ErrorIs(t, err, sql.ErrNoRows)
	assert.Nil(t, fee)
	assert.NoError(t, mock.ExpectationsWereMet())
}
