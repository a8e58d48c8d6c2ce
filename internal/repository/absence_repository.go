package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tafita2023/inata-api/internal/models"
)

// AbsenceRepository manages attendance records.
type AbsenceRepository struct {
	db *sqlx.DB
}

// NewAbsenceRepository constructs an AbsenceRepository.
func NewAbsenceRepository(db *sqlx.DB) *AbsenceRepository {
	return &AbsenceRepository{db: db}
}

const absenceDetailQuery = `SELECT a.id, a.student_id, a.subject_id, a.date, a.justified, a.reason, a.created_by, a.created_at,
        (st.last_name || ' ' || st.first_name) AS student_name, s.name AS subject_name
        FROM absences a
        JOIN users st ON st.id = a.student_id
        LEFT JOIN subjects s ON s.id = a.subject_id`

// List returns absences, optionally narrowed to one student or one class.
func (r *AbsenceRepository) List(ctx context.Context, studentID, classID string) ([]models.AbsenceDetail, error) {
	conditions := []string{"1=1"}
	var args []interface{}
	if studentID != "" {
		conditions = append(conditions, fmt.Sprintf("a.student_id = $%d", len(args)+1))
		args = append(args, studentID)
	}
	if classID != "" {
		conditions = append(conditions, fmt.Sprintf("st.class_id = $%d", len(args)+1))
		args = append(args, classID)
	}
	query := fmt.Sprintf("%s WHERE %s ORDER BY a.date DESC", absenceDetailQuery, strings.Join(conditions, " AND "))

	var absences []models.AbsenceDetail
	if err := r.db.SelectContext(ctx, &absences, query, args...); err != nil {
		return nil, fmt.Errorf("list absences: %w", err)
	}
	return absences, nil
}

// FindByID fetches one absence.
func (r *AbsenceRepository) FindByID(ctx context.Context, id string) (*models.Absence, error) {
	const query = `SELECT id, student_id, subject_id, date, justified, reason, created_by, created_at
        FROM absences WHERE id = $1`
	var absence models.Absence
	if err := r.db.GetContext(ctx, &absence, query, id); err != nil {
		return nil, err
	}
	return &absence, nil
}

// Create inserts an absence; the (student, subject, date) unique key rejects
// duplicate marking.
func (r *AbsenceRepository) Create(ctx context.Context, absence *models.Absence) error {
	if absence.ID == "" {
		absence.ID = uuid.NewString()
	}
	if absence.CreatedAt.IsZero() {
		absence.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO absences (id, student_id, subject_id, date, justified, reason, created_by, created_at)
        VALUES (:id, :student_id, :subject_id, :date, :justified, :reason, :created_by, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, absence); err != nil {
		return fmt.Errorf("create absence: %w", err)
	}
	return nil
}

// Justify flips the justification flag and records the reason.
func (r *AbsenceRepository) Justify(ctx context.Context, id, reason string) error {
	const query = `UPDATE absences SET justified = true, reason = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, reason); err != nil {
		return fmt.Errorf("justify absence: %w", err)
	}
	return nil
}

// Delete removes an absence.
func (r *AbsenceRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM absences WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete absence: %w", err)
	}
	return nil
}

// CountUnjustified returns a student's unjustified absence count.
func (r *AbsenceRepository) CountUnjustified(ctx context.Context, studentID string) (int, error) {
	var count int
	const query = `SELECT COUNT(*) FROM absences WHERE student_id = $1 AND justified = false`
	if err := r.db.GetContext(ctx, &count, query, studentID); err != nil {
		return 0, fmt.Errorf("count absences: %w", err)
	}
	return count, nil
}
