package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/tafita2023/inata-api/internal/models"
)

// FeeRepository manages the monthly tuition ledger.
type FeeRepository struct {
	db *sqlx.DB
}

// NewFeeRepository constructs a FeeRepository.
func NewFeeRepository(db *sqlx.DB) *FeeRepository {
	return &FeeRepository{db: db}
}

const feeColumns = `f.id, f.student_id, f.month, f.school_year, f.amount, f.paid, f.created_at`

// ListByStudent returns a student's fees for one school year, unpaid first.
func (r *FeeRepository) ListByStudent(ctx context.Context, studentID, schoolYear string) ([]models.MonthlyFee, error) {
	query := fmt.Sprintf(`SELECT %s FROM monthly_fees f
        WHERE f.student_id = $1 AND f.school_year = $2
        ORDER BY f.paid, f.created_at`, feeColumns)
	var fees []models.MonthlyFee
	if err := r.db.SelectContext(ctx, &fees, query, studentID, schoolYear); err != nil {
		return nil, fmt.Errorf("list fees: %w", err)
	}
	return fees, nil
}

// ListDetails returns fees with student context for the admin ledger view.
func (r *FeeRepository) ListDetails(ctx context.Context, schoolYear string, paid *bool) ([]models.MonthlyFeeDetail, error) {
	query := fmt.Sprintf(`SELECT %s, (u.last_name || ' ' || u.first_name) AS student_name, c.level AS class_level
        FROM monthly_fees f
        JOIN users u ON u.id = f.student_id
        LEFT JOIN classes c ON c.id = u.class_id
        WHERE f.school_year = $1`, feeColumns)
	args := []interface{}{schoolYear}
	if paid != nil {
		query += " AND f.paid = $2"
		args = append(args, *paid)
	}
	query += " ORDER BY u.last_name, u.first_name, f.created_at"

	var fees []models.MonthlyFeeDetail
	if err := r.db.SelectContext(ctx, &fees, query, args...); err != nil {
		return nil, fmt.Errorf("list fee details: %w", err)
	}
	return fees, nil
}

// FindByStudentMonthYear returns the fee row for one (student, month, year)
// key, or nil when the month has not been opened yet.
func (r *FeeRepository) FindByStudentMonthYear(ctx context.Context, studentID, month, schoolYear string) (*models.MonthlyFee, error) {
	query := fmt.Sprintf(`SELECT %s FROM monthly_fees f
        WHERE f.student_id = $1 AND f.month = $2 AND f.school_year = $3`, feeColumns)
	var fee models.MonthlyFee
	err := r.db.GetContext(ctx, &fee, query, studentID, month, schoolYear)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find fee: %w", err)
	}
	return &fee, nil
}

// Create opens a fee month for a student. The (student, month, school_year)
// unique key absorbs concurrent creation; the caller treats a conflict as
// already-open.
func (r *FeeRepository) Create(ctx context.Context, fee *models.MonthlyFee) error {
	if fee.ID == "" {
		fee.ID = uuid.NewString()
	}
	if fee.CreatedAt.IsZero() {
		fee.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO monthly_fees (id, student_id, month, school_year, amount, paid, created_at)
        VALUES (:id, :student_id, :month, :school_year, :amount, :paid, :created_at)
        ON CONFLICT (student_id, month, school_year) DO NOTHING`
	if _, err := r.db.NamedExecContext(ctx, query, fee); err != nil {
		return fmt.Errorf("create fee: %w", err)
	}
	return nil
}

// FindUnpaidByIDs returns the subset of the requested fees that belong to the
// student and are still unpaid.
func (r *FeeRepository) FindUnpaidByIDs(ctx context.Context, studentID string, ids []string) ([]models.MonthlyFee, error) {
	query := fmt.Sprintf(`SELECT %s FROM monthly_fees f
        WHERE f.student_id = $1 AND f.paid = false AND f.id = ANY($2) ORDER BY f.created_at`, feeColumns)
	var fees []models.MonthlyFee
	if err := r.db.SelectContext(ctx, &fees, query, studentID, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("find unpaid fees: %w", err)
	}
	return fees, nil
}
