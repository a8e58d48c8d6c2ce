package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/tafita2023/inata-api/internal/models"
	appErrors "github.com/tafita2023/inata-api/pkg/errors"
)

type scheduleRepository interface {
	ListByClass(ctx context.Context, classID string) ([]models.ScheduleSlotDetail, error)
	Upsert(ctx context.Context, slot *models.ScheduleSlot) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*models.ScheduleSlot, error)
}

type scheduleSubjectRepository interface {
	FindByID(ctx context.Context, id string) (*models.SubjectDetail, error)
}

type scheduleCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// ScheduleSlotRequest places a subject into one timetable cell.
type ScheduleSlotRequest struct {
	Weekday   string  `json:"weekday" validate:"required"`
	Period    string  `json:"period" validate:"required"`
	SubjectID string  `json:"subject_id" validate:"required"`
	RoomID    *string `json:"room_id,omitempty"`
}

// ScheduleService manages the weekly timetable. Reads go through a short
// lived Redis cache since every student loads the grid daily.
type ScheduleService struct {
	repo      scheduleRepository
	subjects  scheduleSubjectRepository
	cache     scheduleCache
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScheduleService constructs a ScheduleService instance.
func NewScheduleService(repo scheduleRepository, subjects scheduleSubjectRepository, cache scheduleCache, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}
	return &ScheduleService{repo: repo, subjects: subjects, cache: cache, cacheTTL: cacheTTL, validator: validate, logger: logger}
}

func timetableCacheKey(classID string) string {
	return fmt.Sprintf("timetable:%s", classID)
}

// WeeklyGrid returns a class's timetable grouped by weekday in display order.
func (s *ScheduleService) WeeklyGrid(ctx context.Context, classID string) ([]models.DaySchedule, error) {
	key := timetableCacheKey(classID)
	if s.cache != nil {
		var cached []models.DaySchedule
		err := s.cache.Get(ctx, key, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("timetable cache read failed", zap.Error(err))
		}
	}

	slots, err := s.repo.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}

	grid := make([]models.DaySchedule, 0, len(models.Weekdays))
	for _, day := range models.Weekdays {
		entry := models.DaySchedule{Day: day, Slots: []models.ScheduleSlotDetail{}}
		for _, slot := range slots {
			if slot.Weekday == day {
				entry.Slots = append(entry.Slots, slot)
			}
		}
		grid = append(grid, entry)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, grid, s.cacheTTL); err != nil {
			s.logger.Warn("timetable cache write failed", zap.Error(err))
		}
	}
	return grid, nil
}

// PlaceSlot writes one timetable cell, replacing whatever occupied it.
func (s *ScheduleService) PlaceSlot(ctx context.Context, classID string, req ScheduleSlotRequest) (*models.ScheduleSlot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid slot payload")
	}
	if !models.ValidWeekday(req.Weekday) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown weekday")
	}
	if !models.ValidPeriod(req.Period) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown period")
	}

	subject, err := s.subjects.FindByID(ctx, req.SubjectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}
	if subject.ClassID != classID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "subject belongs to another class")
	}

	slot := &models.ScheduleSlot{
		ClassID:   classID,
		Weekday:   req.Weekday,
		Period:    req.Period,
		SubjectID: req.SubjectID,
		RoomID:    req.RoomID,
	}
	if err := s.repo.Upsert(ctx, slot); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to place slot")
	}
	s.invalidate(ctx, classID)
	return slot, nil
}

// RemoveSlot clears one timetable cell.
func (s *ScheduleService) RemoveSlot(ctx context.Context, id string) error {
	slot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "slot not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load slot")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete slot")
	}
	s.invalidate(ctx, slot.ClassID)
	return nil
}

func (s *ScheduleService) invalidate(ctx context.Context, classID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, timetableCacheKey(classID)); err != nil {
		s.logger.Warn("timetable cache invalidation failed", zap.Error(err))
	}
}
