package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tafita2023/inata-api/internal/models"
)

// SalaryRepository manages teacher salary rates and payouts.
type SalaryRepository struct {
	db *sqlx.DB
}

// NewSalaryRepository constructs a SalaryRepository.
func NewSalaryRepository(db *sqlx.DB) *SalaryRepository {
	return &SalaryRepository{db: db}
}

// ListRates returns salary rates, optionally narrowed to one teacher.
func (r *SalaryRepository) ListRates(ctx context.Context, teacherID string) ([]models.SalaryRateDetail, error) {
	query := `SELECT sr.id, sr.teacher_id, sr.class_id, sr.subject_id, sr.amount,
        (t.last_name || ' ' || t.first_name) AS teacher_name, c.level AS class_level, s.name AS subject_name
        FROM salary_rates sr
        JOIN users t ON t.id = sr.teacher_id
        JOIN classes c ON c.id = sr.class_id
        JOIN subjects s ON s.id = sr.subject_id`
	var args []interface{}
	if teacherID != "" {
		query += " WHERE sr.teacher_id = $1"
		args = append(args, teacherID)
	}
	query += " ORDER BY t.last_name, c.rank"

	var rates []models.SalaryRateDetail
	if err := r.db.SelectContext(ctx, &rates, query, args...); err != nil {
		return nil, fmt.Errorf("list salary rates: %w", err)
	}
	return rates, nil
}

// UpsertRate sets the amount for one (teacher, class, subject) key.
func (r *SalaryRepository) UpsertRate(ctx context.Context, rate *models.SalaryRate) error {
	if rate.ID == "" {
		rate.ID = uuid.NewString()
	}
	const query = `INSERT INTO salary_rates (id, teacher_id, class_id, subject_id, amount)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (teacher_id, class_id, subject_id) DO UPDATE SET amount = EXCLUDED.amount`
	if _, err := r.db.ExecContext(ctx, query, rate.ID, rate.TeacherID, rate.ClassID, rate.SubjectID, rate.Amount); err != nil {
		return fmt.Errorf("upsert salary rate: %w", err)
	}
	return nil
}

// DeleteRate removes one rate.
func (r *SalaryRepository) DeleteRate(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM salary_rates WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete salary rate: %w", err)
	}
	return nil
}

// SumRatesByTeacher returns the teacher's total monthly amount over all
// rates.
func (r *SalaryRepository) SumRatesByTeacher(ctx context.Context, teacherID string) (float64, error) {
	var total float64
	const query = `SELECT COALESCE(SUM(amount), 0) FROM salary_rates WHERE teacher_id = $1`
	if err := r.db.GetContext(ctx, &total, query, teacherID); err != nil {
		return 0, fmt.Errorf("sum salary rates: %w", err)
	}
	return total, nil
}

// CreatePayment records a salary payout with its month lines in one
// transaction.
func (r *SalaryRepository) CreatePayment(ctx context.Context, payment *models.SalaryPayment, items []models.SalaryPaymentItem) error {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin salary tx: %w", err)
	}
	defer tx.Rollback()

	const insertPayment = `INSERT INTO salary_payments (id, teacher_id, total_amount, status, created_at)
        VALUES (:id, :teacher_id, :total_amount, :status, :created_at)`
	if _, err := tx.NamedExecContext(ctx, insertPayment, payment); err != nil {
		return fmt.Errorf("insert salary payment: %w", err)
	}
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = uuid.NewString()
		}
		items[i].PaymentID = payment.ID
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO salary_payment_items (id, payment_id, month, amount) VALUES ($1, $2, $3, $4)",
			items[i].ID, items[i].PaymentID, items[i].Month, items[i].Amount); err != nil {
			return fmt.Errorf("insert salary item: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit salary tx: %w", err)
	}
	return nil
}

// ListPayments returns payouts with month lines, optionally for one teacher.
func (r *SalaryRepository) ListPayments(ctx context.Context, teacherID string) ([]models.SalaryPaymentDetail, error) {
	query := `SELECT sp.id, sp.teacher_id, sp.total_amount, sp.status, sp.created_at,
        (t.last_name || ' ' || t.first_name) AS teacher_name
        FROM salary_payments sp JOIN users t ON t.id = sp.teacher_id`
	var args []interface{}
	if teacherID != "" {
		query += " WHERE sp.teacher_id = $1"
		args = append(args, teacherID)
	}
	query += " ORDER BY sp.created_at DESC"

	var payments []models.SalaryPaymentDetail
	if err := r.db.SelectContext(ctx, &payments, query, args...); err != nil {
		return nil, fmt.Errorf("list salary payments: %w", err)
	}
	for i := range payments {
		const itemsQuery = `SELECT id, payment_id, month, amount FROM salary_payment_items WHERE payment_id = $1 ORDER BY month`
		if err := r.db.SelectContext(ctx, &payments[i].Items, itemsQuery, payments[i].ID); err != nil {
			return nil, fmt.Errorf("list salary items: %w", err)
		}
	}
	return payments, nil
}
