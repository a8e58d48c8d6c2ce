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

// GradeRepository manages evaluations and the grades recorded against them.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository constructs a GradeRepository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

// ListEvaluations returns evaluations, optionally narrowed to one subject.
func (r *GradeRepository) ListEvaluations(ctx context.Context, subjectID string) ([]models.Evaluation, error) {
	query := "SELECT id, name, subject_id, semester, kind, date FROM evaluations"
	var args []interface{}
	if subjectID != "" {
		query += " WHERE subject_id = $1"
		args = append(args, subjectID)
	}
	query += " ORDER BY date DESC"
	var evaluations []models.Evaluation
	if err := r.db.SelectContext(ctx, &evaluations, query, args...); err != nil {
		return nil, fmt.Errorf("list evaluations: %w", err)
	}
	return evaluations, nil
}

// FindEvaluation fetches one evaluation.
func (r *GradeRepository) FindEvaluation(ctx context.Context, id string) (*models.Evaluation, error) {
	const query = `SELECT id, name, subject_id, semester, kind, date FROM evaluations WHERE id = $1`
	var evaluation models.Evaluation
	if err := r.db.GetContext(ctx, &evaluation, query, id); err != nil {
		return nil, err
	}
	return &evaluation, nil
}

// CreateEvaluation inserts an evaluation.
func (r *GradeRepository) CreateEvaluation(ctx context.Context, evaluation *models.Evaluation) error {
	if evaluation.ID == "" {
		evaluation.ID = uuid.NewString()
	}
	const query = `INSERT INTO evaluations (id, name, subject_id, semester, kind, date)
        VALUES (:id, :name, :subject_id, :semester, :kind, :date)`
	if _, err := r.db.NamedExecContext(ctx, query, evaluation); err != nil {
		return fmt.Errorf("create evaluation: %w", err)
	}
	return nil
}

// UpdateEvaluation rewrites an evaluation row.
func (r *GradeRepository) UpdateEvaluation(ctx context.Context, evaluation *models.Evaluation) error {
	const query = `UPDATE evaluations SET name = :name, semester = :semester, kind = :kind, date = :date
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, evaluation); err != nil {
		return fmt.Errorf("update evaluation: %w", err)
	}
	return nil
}

// DeleteEvaluation removes an evaluation and cascades its grades.
func (r *GradeRepository) DeleteEvaluation(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM evaluations WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete evaluation: %w", err)
	}
	return nil
}

const gradeDetailQuery = `SELECT g.id, g.student_id, g.evaluation_id, g.value, g.remark, g.created_at, g.updated_at,
        e.name AS evaluation_name, e.semester, e.kind, e.subject_id, s.name AS subject_name,
        (st.last_name || ' ' || st.first_name) AS student_name
        FROM grades g
        JOIN evaluations e ON e.id = g.evaluation_id
        JOIN subjects s ON s.id = e.subject_id
        JOIN users st ON st.id = g.student_id`

// ListByStudent returns every grade of a student with evaluation context.
func (r *GradeRepository) ListByStudent(ctx context.Context, studentID string) ([]models.GradeDetail, error) {
	query := gradeDetailQuery + " WHERE g.student_id = $1 ORDER BY e.date DESC"
	var grades []models.GradeDetail
	if err := r.db.SelectContext(ctx, &grades, query, studentID); err != nil {
		return nil, fmt.Errorf("list grades by student: %w", err)
	}
	return grades, nil
}

// ListByEvaluation returns the grades recorded for one evaluation.
func (r *GradeRepository) ListByEvaluation(ctx context.Context, evaluationID string) ([]models.GradeDetail, error) {
	query := gradeDetailQuery + " WHERE g.evaluation_id = $1 ORDER BY st.last_name, st.first_name"
	var grades []models.GradeDetail
	if err := r.db.SelectContext(ctx, &grades, query, evaluationID); err != nil {
		return nil, fmt.Errorf("list grades by evaluation: %w", err)
	}
	return grades, nil
}

// ListDetails returns grades matching the admin filter.
func (r *GradeRepository) ListDetails(ctx context.Context, filter models.GradeFilter) ([]models.GradeDetail, error) {
	conditions := []string{"1=1"}
	var args []interface{}
	if filter.ClassID != "" {
		conditions = append(conditions, fmt.Sprintf("s.class_id = $%d", len(args)+1))
		args = append(args, filter.ClassID)
	}
	if filter.SubjectID != "" {
		conditions = append(conditions, fmt.Sprintf("e.subject_id = $%d", len(args)+1))
		args = append(args, filter.SubjectID)
	}
	if filter.EnrollmentYear != 0 {
		conditions = append(conditions, fmt.Sprintf("st.enrollment_year = $%d", len(args)+1))
		args = append(args, filter.EnrollmentYear)
	}
	query := fmt.Sprintf("%s WHERE %s ORDER BY e.date DESC", gradeDetailQuery, strings.Join(conditions, " AND "))

	var grades []models.GradeDetail
	if err := r.db.SelectContext(ctx, &grades, query, args...); err != nil {
		return nil, fmt.Errorf("list grades: %w", err)
	}
	return grades, nil
}

// Upsert records a grade; a second write for the same (student, evaluation)
// replaces the value instead of duplicating the row.
func (r *GradeRepository) Upsert(ctx context.Context, grade *models.Grade) error {
	if grade.ID == "" {
		grade.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	grade.CreatedAt = now
	grade.UpdatedAt = now
	const query = `INSERT INTO grades (id, student_id, evaluation_id, value, remark, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (student_id, evaluation_id)
        DO UPDATE SET value = EXCLUDED.value, remark = EXCLUDED.remark, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, grade.ID, grade.StudentID, grade.EvaluationID,
		grade.Value, grade.Remark, grade.CreatedAt, grade.UpdatedAt); err != nil {
		return fmt.Errorf("upsert grade: %w", err)
	}
	return nil
}

// Delete removes one grade.
func (r *GradeRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM grades WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete grade: %w", err)
	}
	return nil
}

// ListValuesByStudent returns the raw grade values of a student, the input of
// the promotion mean.
func (r *GradeRepository) ListValuesByStudent(ctx context.Context, studentID string) ([]float64, error) {
	var values []float64
	if err := r.db.SelectContext(ctx, &values, "SELECT value FROM grades WHERE student_id = $1", studentID); err != nil {
		return nil, fmt.Errorf("list grade values: %w", err)
	}
	return values, nil
}

// TranscriptGrades returns a student's semester-2 exam grades with unit
// context, ordered so subjects of the same unit are adjacent.
func (r *GradeRepository) TranscriptGrades(ctx context.Context, studentID string) ([]models.TranscriptGrade, error) {
	const query = `SELECT un.name AS unit_name, s.name AS subject_name, g.value
        FROM grades g
        JOIN evaluations e ON e.id = g.evaluation_id
        JOIN subjects s ON s.id = e.subject_id
        LEFT JOIN units un ON un.id = s.unit_id
        WHERE g.student_id = $1 AND e.semester = 2 AND e.kind = $2
        ORDER BY un.name NULLS LAST, s.name`
	var grades []models.TranscriptGrade
	if err := r.db.SelectContext(ctx, &grades, query, studentID, models.EvaluationExam); err != nil {
		return nil, fmt.Errorf("transcript grades: %w", err)
	}
	return grades, nil
}
