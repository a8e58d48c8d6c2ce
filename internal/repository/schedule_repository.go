package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tafita2023/inata-api/internal/models"
)

// ScheduleRepository manages timetable slots.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository constructs a ScheduleRepository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// ListByClass returns a class's slots with display names, ordered for the
// weekly grid.
func (r *ScheduleRepository) ListByClass(ctx context.Context, classID string) ([]models.ScheduleSlotDetail, error) {
	const query = `SELECT sl.id, sl.class_id, sl.weekday, sl.period, sl.subject_id, sl.room_id,
        s.name AS subject_name, (t.last_name || ' ' || t.first_name) AS teacher_name, rm.name AS room_name
        FROM schedule_slots sl
        JOIN subjects s ON s.id = sl.subject_id
        JOIN users t ON t.id = s.teacher_id
        LEFT JOIN rooms rm ON rm.id = sl.room_id
        WHERE sl.class_id = $1
        ORDER BY sl.weekday, sl.period`
	var slots []models.ScheduleSlotDetail
	if err := r.db.SelectContext(ctx, &slots, query, classID); err != nil {
		return nil, fmt.Errorf("list schedule: %w", err)
	}
	return slots, nil
}

// Upsert writes one timetable cell; the (class, weekday, period) key makes a
// second write replace the first.
func (r *ScheduleRepository) Upsert(ctx context.Context, slot *models.ScheduleSlot) error {
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	const query = `INSERT INTO schedule_slots (id, class_id, weekday, period, subject_id, room_id)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (class_id, weekday, period)
        DO UPDATE SET subject_id = EXCLUDED.subject_id, room_id = EXCLUDED.room_id`
	if _, err := r.db.ExecContext(ctx, query, slot.ID, slot.ClassID, slot.Weekday, slot.Period, slot.SubjectID, slot.RoomID); err != nil {
		return fmt.Errorf("upsert schedule slot: %w", err)
	}
	return nil
}

// Delete clears one timetable cell.
func (r *ScheduleRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM schedule_slots WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete schedule slot: %w", err)
	}
	return nil
}

// FindByID fetches one slot.
func (r *ScheduleRepository) FindByID(ctx context.Context, id string) (*models.ScheduleSlot, error) {
	const query = `SELECT id, class_id, weekday, period, subject_id, room_id FROM schedule_slots WHERE id = $1`
	var slot models.ScheduleSlot
	if err := r.db.GetContext(ctx, &slot, query, id); err != nil {
		return nil, err
	}
	return &slot, nil
}
