package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tafita2023/inata-api/internal/models"
)

func feeRows(now time.Time, ids ...string) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "student_id", "month", "school_year", "amount", "paid", "created_at"})
	for _, id := range ids {
		rows.AddRow(id, "s1", "Septembre", "2025-2026", 50000.0, false, now)
	}
	return rows
}

func TestFeeCreateFillsDefaults(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewFeeRepository(db)

	mock.ExpectExec("INSERT INTO monthly_fees").WillReturnResult(sqlmock.NewResult(0, 1))

	fee := &models.MonthlyFee{StudentID: "s1", Month: "Septembre", SchoolYear: "2025-2026", Amount: 50000}
	require.NoError(t, repo.Create(context.Background(), fee))
	assert.NotEmpty(t, fee.ID)
	assert.False(t, fee.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeeCreateConflictIsSilent(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewFeeRepository(db)

	// ON CONFLICT DO NOTHING reports zero affected rows, which is not an error.
	mock.ExpectExec("INSERT INTO monthly_fees").WillReturnResult(sqlmock.NewResult(0, 0))

	fee := &models.MonthlyFee{StudentID: "s1", Month: "Septembre", SchoolYear: "2025-2026", Amount: 50000}
	require.NoError(t, repo.Create(context.Background(), fee))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeeFindByStudentMonthYearMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewFeeRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM monthly_fees f").
		WithArgs("s1", "Juin", "2025-2026").
		WillReturnRows(feeRows(time.Now()))

	fee, err := repo.FindByStudentMonthYear(context.Background(), "s1", "Juin", "2025-2026")
	require.NoError(t, err)
	assert.Nil(t, fee)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeeFindUnpaidByIDs(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewFeeRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM monthly_fees f").
		WithArgs("s1", sqlmock.AnyArg()).
		WillReturnRows(feeRows(time.Now(), "f1", "f2"))

	fees, err := repo.FindUnpaidByIDs(context.Background(), "s1", []string{"f1", "f2", "f3"})
	require.NoError(t, err)
	require.Len(t, fees, 2)
	assert.Equal(t, "f1", fees[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeeListByStudent(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewFeeRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM monthly_fees f").
		WithArgs("s1", "2025-2026").
		WillReturnRows(feeRows(time.Now(), "f1"))

	fees, err := repo.ListByStudent(context.Background(), "s1", "2025-2026")
	require.NoError(t, err)
	require.Len(t, fees, 1)
	assert.Equal(t, "2025-2026", fees[0].SchoolYear)
	assert.NoError(t, mock.ExpectationsWereMet())
}
