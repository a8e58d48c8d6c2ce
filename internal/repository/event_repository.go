package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tafita2023/inata-api/internal/models"
)

// EventRepository manages school calendar entries.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// List returns events, upcoming first.
func (r *EventRepository) List(ctx context.Context) ([]models.Event, error) {
	const query = `SELECT id, title, description, start_date, end_date, created_by, created_at
        FROM events ORDER BY start_date DESC`
	var events []models.Event
	if err := r.db.SelectContext(ctx, &events, query); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// FindByID fetches one event.
func (r *EventRepository) FindByID(ctx context.Context, id string) (*models.Event, error) {
	const query = `SELECT id, title, description, start_date, end_date, created_by, created_at
        FROM events WHERE id = $1`
	var event models.Event
	if err := r.db.GetContext(ctx, &event, query, id); err != nil {
		return nil, err
	}
	return &event, nil
}

// Create inserts an event.
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO events (id, title, description, start_date, end_date, created_by, created_at)
        VALUES (:id, :title, :description, :start_date, :end_date, :created_by, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// Update rewrites an event row.
func (r *EventRepository) Update(ctx context.Context, event *models.Event) error {
	const query = `UPDATE events SET title = :title, description = :description,
        start_date = :start_date, end_date = :end_date WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	return nil
}

// Delete removes an event.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM events WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}
