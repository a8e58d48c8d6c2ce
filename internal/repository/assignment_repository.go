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

// AssignmentRepository manages published hand-outs.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs an AssignmentRepository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// List returns assignments, optionally narrowed by class and kind.
func (r *AssignmentRepository) List(ctx context.Context, classID string, kind models.AssignmentKind) ([]models.Assignment, error) {
	conditions := []string{"1=1"}
	var args []interface{}
	if classID != "" {
		conditions = append(conditions, fmt.Sprintf("class_id = $%d", len(args)+1))
		args = append(args, classID)
	}
	if kind != "" {
		conditions = append(conditions, fmt.Sprintf("kind = $%d", len(args)+1))
		args = append(args, kind)
	}
	query := fmt.Sprintf(`SELECT id, title, description, class_id, subject_id, kind, file_path, deadline, created_at
        FROM assignments WHERE %s ORDER BY created_at DESC`, strings.Join(conditions, " AND "))

	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, args...); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return assignments, nil
}

// FindByID fetches one assignment.
func (r *AssignmentRepository) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	const query = `SELECT id, title, description, class_id, subject_id, kind, file_path, deadline, created_at
        FROM assignments WHERE id = $1`
	var assignment models.Assignment
	if err := r.db.GetContext(ctx, &assignment, query, id); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// Create inserts an assignment.
func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO assignments (id, title, description, class_id, subject_id, kind, file_path, deadline, created_at)
        VALUES (:id, :title, :description, :class_id, :subject_id, :kind, :file_path, :deadline, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

// Delete removes an assignment row; the caller owns the uploaded file.
func (r *AssignmentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM assignments WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	return nil
}
