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

// SubjectRepository manages units and subjects.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository constructs a SubjectRepository.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

const subjectDetailQuery = `SELECT s.id, s.name, s.unit_id, s.teacher_id, s.class_id, s.active, s.created_at, s.updated_at,
        un.name AS unit_name, (t.last_name || ' ' || t.first_name) AS teacher_name, c.level AS class_level
        FROM subjects s
        LEFT JOIN units un ON un.id = s.unit_id
        JOIN users t ON t.id = s.teacher_id
        JOIN classes c ON c.id = s.class_id`

// List returns subjects, optionally narrowed to one class or one teacher.
func (r *SubjectRepository) List(ctx context.Context, classID, teacherID string) ([]models.SubjectDetail, error) {
	conditions := []string{"1=1"}
	var args []interface{}
	if classID != "" {
		conditions = append(conditions, fmt.Sprintf("s.class_id = $%d", len(args)+1))
		args = append(args, classID)
	}
	if teacherID != "" {
		conditions = append(conditions, fmt.Sprintf("s.teacher_id = $%d", len(args)+1))
		args = append(args, teacherID)
	}
	query := fmt.Sprintf("%s WHERE %s ORDER BY c.rank, s.name", subjectDetailQuery, strings.Join(conditions, " AND "))

	var subjects []models.SubjectDetail
	if err := r.db.SelectContext(ctx, &subjects, query, args...); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subjects, nil
}

// FindByID fetches one subject with its display names.
func (r *SubjectRepository) FindByID(ctx context.Context, id string) (*models.SubjectDetail, error) {
	query := subjectDetailQuery + " WHERE s.id = $1"
	var subject models.SubjectDetail
	if err := r.db.GetContext(ctx, &subject, query, id); err != nil {
		return nil, err
	}
	return &subject, nil
}

// Create inserts a subject.
func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	if subject.ID == "" {
		subject.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	subject.CreatedAt = now
	subject.UpdatedAt = now
	const query = `INSERT INTO subjects (id, name, unit_id, teacher_id, class_id, active, created_at, updated_at)
        VALUES (:id, :name, :unit_id, :teacher_id, :class_id, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, subject); err != nil {
		return fmt.Errorf("create subject: %w", err)
	}
	return nil
}

// Update rewrites a subject row.
func (r *SubjectRepository) Update(ctx context.Context, subject *models.Subject) error {
	subject.UpdatedAt = time.Now().UTC()
	const query = `UPDATE subjects SET name = :name, unit_id = :unit_id, teacher_id = :teacher_id,
        class_id = :class_id, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, subject); err != nil {
		return fmt.Errorf("update subject: %w", err)
	}
	return nil
}

// Delete removes a subject; its grades and schedule slots cascade.
func (r *SubjectRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM subjects WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete subject: %w", err)
	}
	return nil
}

// ListUnits returns all teaching units.
func (r *SubjectRepository) ListUnits(ctx context.Context) ([]models.Unit, error) {
	var units []models.Unit
	if err := r.db.SelectContext(ctx, &units, "SELECT id, name FROM units ORDER BY name"); err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	return units, nil
}

// CreateUnit inserts a teaching unit.
func (r *SubjectRepository) CreateUnit(ctx context.Context, unit *models.Unit) error {
	if unit.ID == "" {
		unit.ID = uuid.NewString()
	}
	if _, err := r.db.ExecContext(ctx, "INSERT INTO units (id, name) VALUES ($1, $2)", unit.ID, unit.Name); err != nil {
		return fmt.Errorf("create unit: %w", err)
	}
	return nil
}

// DeleteUnit removes a unit; subjects keep their rows with unit_id NULL.
func (r *SubjectRepository) DeleteUnit(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM units WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete unit: %w", err)
	}
	return nil
}
