package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tafita2023/inata-api/internal/models"
)

// RoomRepository manages physical classrooms.
type RoomRepository struct {
	db *sqlx.DB
}

// NewRoomRepository constructs a RoomRepository.
func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// List returns all rooms.
func (r *RoomRepository) List(ctx context.Context) ([]models.Room, error) {
	var rooms []models.Room
	if err := r.db.SelectContext(ctx, &rooms, "SELECT id, name, description, active FROM rooms ORDER BY name"); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}

// FindByID fetches one room.
func (r *RoomRepository) FindByID(ctx context.Context, id string) (*models.Room, error) {
	var room models.Room
	if err := r.db.GetContext(ctx, &room, "SELECT id, name, description, active FROM rooms WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &room, nil
}

// Create inserts a room.
func (r *RoomRepository) Create(ctx context.Context, room *models.Room) error {
	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	const query = `INSERT INTO rooms (id, name, description, active) VALUES (:id, :name, :description, :active)`
	if _, err := r.db.NamedExecContext(ctx, query, room); err != nil {
		return fmt.Errorf("create room: %w", err)
	}
	return nil
}

// Update rewrites a room row.
func (r *RoomRepository) Update(ctx context.Context, room *models.Room) error {
	const query = `UPDATE rooms SET name = :name, description = :description, active = :active WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, room); err != nil {
		return fmt.Errorf("update room: %w", err)
	}
	return nil
}

// Delete removes a room; schedule slots keep their rows with room_id NULL.
func (r *RoomRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM rooms WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete room: %w", err)
	}
	return nil
}
