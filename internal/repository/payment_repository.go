package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tafita2023/inata-api/internal/models"
)

// PaymentRepository manages payments and their fee links. Settlement paths
// run in a transaction so a payment never flips to paid without its fees.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository constructs a PaymentRepository.
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// CreateWithFees inserts a payment and links it to the fees it settles. When
// the payment is created already paid (cash at the office) the fees flip to
// paid in the same transaction.
func (r *PaymentRepository) CreateWithFees(ctx context.Context, payment *models.Payment, feeIDs []string) error {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin payment tx: %w", err)
	}
	defer tx.Rollback()

	const insertPayment = `INSERT INTO payments (id, student_id, total_amount, status, session_id, method, created_at)
        VALUES (:id, :student_id, :total_amount, :status, :session_id, :method, :created_at)`
	if _, err := tx.NamedExecContext(ctx, insertPayment, payment); err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}

	for _, feeID := range feeIDs {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO payment_fees (payment_id, fee_id) VALUES ($1, $2)", payment.ID, feeID); err != nil {
			return fmt.Errorf("link fee: %w", err)
		}
	}

	if payment.Status == models.PaymentPaid {
		if err := markFeesPaid(ctx, tx, payment.ID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit payment tx: %w", err)
	}
	return nil
}

// FindBySessionID returns the payment created for a checkout session, or nil
// when the session is unknown.
func (r *PaymentRepository) FindBySessionID(ctx context.Context, sessionID string) (*models.Payment, error) {
	const query = `SELECT id, student_id, total_amount, status, session_id, method, created_at
        FROM payments WHERE session_id = $1`
	var payment models.Payment
	err := r.db.GetContext(ctx, &payment, query, sessionID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find payment by session: %w", err)
	}
	return &payment, nil
}

// Settle flips a pending payment to paid and settles its linked fees in one
// transaction. Settling an already paid payment is a no-op, which makes
// webhook retries idempotent.
func (r *PaymentRepository) Settle(ctx context.Context, paymentID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin settle tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE payments SET status = $2 WHERE id = $1 AND status <> $2", paymentID, models.PaymentPaid)
	if err != nil {
		return fmt.Errorf("settle payment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("settle payment: %w", err)
	}
	if affected == 0 {
		return nil
	}

	if err := markFeesPaid(ctx, tx, paymentID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit settle tx: %w", err)
	}
	return nil
}

// MarkFailed records a failed checkout.
func (r *PaymentRepository) MarkFailed(ctx context.Context, paymentID string) error {
	const query = `UPDATE payments SET status = $2 WHERE id = $1 AND status = $3`
	if _, err := r.db.ExecContext(ctx, query, paymentID, models.PaymentFailed, models.PaymentPending); err != nil {
		return fmt.Errorf("mark payment failed: %w", err)
	}
	return nil
}

// ListByStudent returns a student's payments with their fee rows.
func (r *PaymentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.PaymentDetail, error) {
	const query = `SELECT id, student_id, total_amount, status, session_id, method, created_at
        FROM payments WHERE student_id = $1 ORDER BY created_at DESC`
	var payments []models.Payment
	if err := r.db.SelectContext(ctx, &payments, query, studentID); err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return r.attachFees(ctx, payments)
}

// ListAll returns every payment for the admin view.
func (r *PaymentRepository) ListAll(ctx context.Context) ([]models.PaymentDetail, error) {
	const query = `SELECT id, student_id, total_amount, status, session_id, method, created_at
        FROM payments ORDER BY created_at DESC`
	var payments []models.Payment
	if err := r.db.SelectContext(ctx, &payments, query); err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return r.attachFees(ctx, payments)
}

func (r *PaymentRepository) attachFees(ctx context.Context, payments []models.Payment) ([]models.PaymentDetail, error) {
	details := make([]models.PaymentDetail, 0, len(payments))
	for _, payment := range payments {
		fees, err := r.feesOf(ctx, payment.ID)
		if err != nil {
			return nil, err
		}
		details = append(details, models.PaymentDetail{Payment: payment, Fees: fees})
	}
	return details, nil
}

func (r *PaymentRepository) feesOf(ctx context.Context, paymentID string) ([]models.MonthlyFee, error) {
	const query = `SELECT f.id, f.student_id, f.month, f.school_year, f.amount, f.paid, f.created_at
        FROM monthly_fees f
        JOIN payment_fees pf ON pf.fee_id = f.id
        WHERE pf.payment_id = $1 ORDER BY f.created_at`
	var fees []models.MonthlyFee
	if err := r.db.SelectContext(ctx, &fees, query, paymentID); err != nil {
		return nil, fmt.Errorf("list payment fees: %w", err)
	}
	return fees, nil
}

func markFeesPaid(ctx context.Context, tx *sqlx.Tx, paymentID string) error {
	const query = `UPDATE monthly_fees SET paid = true
        WHERE id IN (SELECT fee_id FROM payment_fees WHERE payment_id = $1)`
	if _, err := tx.ExecContext(ctx, query, paymentID); err != nil {
		return fmt.Errorf("mark fees paid: %w", err)
	}
	return nil
}
