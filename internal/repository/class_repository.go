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

// ClassRepository manages class levels and their fee schedule.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository constructs a ClassRepository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// List returns all classes ordered by rank.
func (r *ClassRepository) List(ctx context.Context) ([]models.Class, error) {
	const query = `SELECT id, level, description, rank, active, created_at, updated_at
        FROM classes ORDER BY rank`
	var classes []models.Class
	if err := r.db.SelectContext(ctx, &classes, query); err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	return classes, nil
}

// FindByID fetches one class.
func (r *ClassRepository) FindByID(ctx context.Context, id string) (*models.Class, error) {
	const query = `SELECT id, level, description, rank, active, created_at, updated_at
        FROM classes WHERE id = $1`
	var class models.Class
	if err := r.db.GetContext(ctx, &class, query, id); err != nil {
		return nil, err
	}
	return &class, nil
}

// FindNextByRank returns the class immediately above the given rank, or nil
// when the rank is terminal.
func (r *ClassRepository) FindNextByRank(ctx context.Context, rank int) (*models.Class, error) {
	const query = `SELECT id, level, description, rank, active, created_at, updated_at
        FROM classes WHERE rank > $1 AND active = true ORDER BY rank LIMIT 1`
	var class models.Class
	err := r.db.GetContext(ctx, &class, query, rank)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find next class: %w", err)
	}
	return &class, nil
}

// Create inserts a class.
func (r *ClassRepository) Create(ctx context.Context, class *models.Class) error {
	if class.ID == "" {
		class.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	class.CreatedAt = now
	class.UpdatedAt = now
	const query = `INSERT INTO classes (id, level, description, rank, active, created_at, updated_at)
        VALUES (:id, :level, :description, :rank, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, class); err != nil {
		return fmt.Errorf("create class: %w", err)
	}
	return nil
}

// Update rewrites a class row.
func (r *ClassRepository) Update(ctx context.Context, class *models.Class) error {
	class.UpdatedAt = time.Now().UTC()
	const query = `UPDATE classes SET level = :level, description = :description, rank = :rank,
        active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, class); err != nil {
		return fmt.Errorf("update class: %w", err)
	}
	return nil
}

// Delete removes a class; student class links are set NULL by the schema.
func (r *ClassRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM classes WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete class: %w", err)
	}
	return nil
}

// GetFee returns the monthly tuition amount configured for a class.
func (r *ClassRepository) GetFee(ctx context.Context, classID string) (*models.ClassFee, error) {
	const query = `SELECT id, class_id, amount FROM class_fees WHERE class_id = $1`
	var fee models.ClassFee
	if err := r.db.GetContext(ctx, &fee, query, classID); err != nil {
		return nil, err
	}
	return &fee, nil
}

// ListFees returns the full fee schedule with class names.
func (r *ClassRepository) ListFees(ctx context.Context) ([]models.ClassFeeDetail, error) {
	const query = `SELECT f.id, f.class_id, f.amount, c.level AS class_level
        FROM class_fees f JOIN classes c ON c.id = f.class_id ORDER BY c.rank`
	var fees []models.ClassFeeDetail
	if err := r.db.SelectContext(ctx, &fees, query); err != nil {
		return nil, fmt.Errorf("list class fees: %w", err)
	}
	return fees, nil
}

// UpsertFee sets the tuition amount for a class, creating the row on first
// use.
func (r *ClassRepository) UpsertFee(ctx context.Context, fee *models.ClassFee) error {
	if fee.ID == "" {
		fee.ID = uuid.NewString()
	}
	const query = `INSERT INTO class_fees (id, class_id, amount) VALUES ($1, $2, $3)
        ON CONFLICT (class_id) DO UPDATE SET amount = EXCLUDED.amount`
	if _, err := r.db.ExecContext(ctx, query, fee.ID, fee.ClassID, fee.Amount); err != nil {
		return fmt.Errorf("upsert class fee: %w", err)
	}
	return nil
}
