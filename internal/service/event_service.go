package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/tafita2023/inata-api/internal/models"
	appErrors "github.com/tafita2023/inata-api/pkg/errors"
)

type eventRepository interface {
	List(ctx context.Context) ([]models.Event, error)
	FindByID(ctx context.Context, id string) (*models.Event, error)
	Create(ctx context.Context, event *models.Event) error
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id string) error
}

// EventRequest is the payload for creating or updating a calendar entry.
type EventRequest struct {
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"start_date" validate:"required"`
	EndDate     time.Time `json:"end_date" validate:"required"`
}

// EventService manages the school calendar.
type EventService struct {
	repo      eventRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEventService constructs an EventService instance.
func NewEventService(repo eventRepository, validate *validator.Validate, logger *zap.Logger) *EventService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &EventService{repo: repo, validator: validate, logger: logger}
}

// List returns calendar entries.
func (s *EventService) List(ctx context.Context) ([]models.Event, error) {
	events, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list events")
	}
	return events, nil
}

// Create adds a calendar entry.
func (s *EventService) Create(ctx context.Context, actorID string, req EventRequest) (*models.Event, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event payload")
	}
	if req.EndDate.Before(req.StartDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "event ends before it starts")
	}
	event := &models.Event{
		Title:       req.Title,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		CreatedBy:   &actorID,
	}
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create event")
	}
	return event, nil
}

// Update rewrites a calendar entry.
func (s *EventService) Update(ctx context.Context, id string, req EventRequest) (*models.Event, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event payload")
	}
	if req.EndDate.Before(req.StartDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "event ends before it starts")
	}
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}
	event.Title = req.Title
	event.Description = req.Description
	event.StartDate = req.StartDate
	event.EndDate = req.EndDate
	if err := s.repo.Update(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update event")
	}
	return event, nil
}

// Delete removes a calendar entry.
func (s *EventService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete event")
	}
	return nil
}
