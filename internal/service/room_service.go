package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/tafita2023/inata-api/internal/models"
	appErrors "github.com/tafita2023/inata-api/pkg/errors"
)

type roomRepository interface {
	List(ctx context.Context) ([]models.Room, error)
	FindByID(ctx context.Context, id string) (*models.Room, error)
	Create(ctx context.Context, room *models.Room) error
	Update(ctx context.Context, room *models.Room) error
	Delete(ctx context.Context, id string) error
}

// RoomRequest is the payload for creating or updating a room.
type RoomRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Active      *bool  `json:"active,omitempty"`
}

// RoomService manages physical classrooms.
type RoomService struct {
	repo      roomRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRoomService constructs a RoomService instance.
func NewRoomService(repo roomRepository, validate *validator.Validate, logger *zap.Logger) *RoomService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &RoomService{repo: repo, validator: validate, logger: logger}
}

// List returns all rooms.
func (s *RoomService) List(ctx context.Context) ([]models.Room, error) {
	rooms, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list rooms")
	}
	return rooms, nil
}

// Create adds a room.
func (s *RoomService) Create(ctx context.Context, req RoomRequest) (*models.Room, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid room payload")
	}
	room := &models.Room{Name: req.Name, Description: req.Description, Active: true}
	if req.Active != nil {
		room.Active = *req.Active
	}
	if err := s.repo.Create(ctx, room); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create room")
	}
	return room, nil
}

// Update rewrites a room.
func (s *RoomService) Update(ctx context.Context, id string, req RoomRequest) (*models.Room, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid room payload")
	}
	room, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "room not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room")
	}
	room.Name = req.Name
	room.Description = req.Description
	if req.Active != nil {
		room.Active = *req.Active
	}
	if err := s.repo.Update(ctx, room); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update room")
	}
	return room, nil
}

// Delete removes a room.
func (s *RoomService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete room")
	}
	return nil
}
