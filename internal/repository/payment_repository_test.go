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

func TestPaymentCreateWithFeesPending(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO payments").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO payment_fees").
		WithArgs(sqlmock.AnyArg(), "f1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO payment_fees").
		WithArgs(sqlmock.AnyArg(), "f2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	payment := &models.Payment{
		StudentID:   "s1",
		TotalAmount: 100000,
		Status:      models.PaymentPending,
		Method:      models.PaymentMethodCard,
	}
	require.NoError(t, repo.CreateWithFees(context.Background(), payment, []string{"f1", "f2"}))
	assert.NotEmpty(t, payment.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentCreateWithFeesPaidSettlesFees(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO payments").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO payment_fees").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE monthly_fees SET paid = true").
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// Cash at the office lands already paid, so the fees flip in the same tx.
	payment := &models.Payment{
		StudentID:   "s1",
		TotalAmount: 50000,
		Status:      models.PaymentPaid,
		Method:      models.PaymentMethodCash,
	}
	require.NoError(t, repo.CreateWithFees(context.Background(), payment, []string{"f1"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentCreateWithFeesRollsBackOnLinkFailure(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO payments").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO payment_fees").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	payment := &models.Payment{StudentID: "s1", TotalAmount: 50000, Status: models.PaymentPending, Method: models.PaymentMethodCard}
	err := repo.CreateWithFees(context.Background(), payment, []string{"f1"})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentSettle(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE payments SET status").
		WithArgs("p1", string(models.PaymentPaid)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE monthly_fees SET paid = true").
		WithArgs("p1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	require.NoError(t, repo.Settle(context.Background(), "p1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentSettleAlreadyPaidIsNoOp(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	// The status guard matches nothing on a paid payment, so a retried
	// webhook delivery stops here without touching the fees.
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE payments SET status").
		WithArgs("p1", string(models.PaymentPaid)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	require.NoError(t, repo.Settle(context.Background(), "p1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentFindBySessionIDUnknown(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM payments WHERE session_id").
		WithArgs("cs_missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "total_amount", "status", "session_id", "method", "created_at"}))

	payment, err := repo.FindBySessionID(context.Background(), "cs_missing")
	require.NoError(t, err)
	assert.Nil(t, payment)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentListByStudent(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM payments WHERE student_id").
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "total_amount", "status", "session_id", "method", "created_at"}).
			AddRow("p1", "s1", 100000.0, string(models.PaymentPaid), "cs_1", models.PaymentMethodCard, now))
	mock.ExpectQuery("SELECT (.+) FROM monthly_fees f").
		WithArgs("p1").
		WillReturnRows(feeRows(now, "f1", "f2"))

	details, err := repo.ListByStudent(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, "p1", details[0].ID)
	assert.Len(t, details[0].Fees, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}
