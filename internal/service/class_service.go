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

type classRepository interface {
	List(ctx context.Context) ([]models.Class, error)
	FindByID(ctx context.Context, id string) (*models.Class, error)
	Create(ctx context.Context, class *models.Class) error
	Update(ctx context.Context, class *models.Class) error
	Delete(ctx context.Context, id string) error
	GetFee(ctx context.Context, classID string) (*models.ClassFee, error)
	ListFees(ctx context.Context) ([]models.ClassFeeDetail, error)
	UpsertFee(ctx context.Context, fee *models.ClassFee) error
}

// ClassRequest is the payload for creating or updating a class.
type ClassRequest struct {
	Level       string `json:"level" validate:"required"`
	Description string `json:"description"`
	Rank        int    `json:"rank" validate:"required,min=1"`
	Active      *bool  `json:"active,omitempty"`
}

// SetClassFeeRequest fixes the monthly tuition amount of a class.
type SetClassFeeRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

// ClassService manages the academic ladder and its fee schedule.
type ClassService struct {
	repo      classRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassService constructs a ClassService instance.
func NewClassService(repo classRepository, validate *validator.Validate, logger *zap.Logger) *ClassService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ClassService{repo: repo, validator: validate, logger: logger}
}

// List returns all classes ordered by rank.
func (s *ClassService) List(ctx context.Context) ([]models.Class, error) {
	classes, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}
	return classes, nil
}

// Get fetches one class.
func (s *ClassService) Get(ctx context.Context, id string) (*models.Class, error) {
	class, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	return class, nil
}

// Create adds a class level.
func (s *ClassService) Create(ctx context.Context, req ClassRequest) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}
	class := &models.Class{
		Level:       req.Level,
		Description: req.Description,
		Rank:        req.Rank,
		Active:      true,
	}
	if req.Active != nil {
		class.Active = *req.Active
	}
	if err := s.repo.Create(ctx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create class")
	}
	return class, nil
}

// Update rewrites a class level.
func (s *ClassService) Update(ctx context.Context, id string, req ClassRequest) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}
	class, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	class.Level = req.Level
	class.Description = req.Description
	class.Rank = req.Rank
	if req.Active != nil {
		class.Active = *req.Active
	}
	if err := s.repo.Update(ctx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update class")
	}
	return class, nil
}

// Delete removes a class level.
func (s *ClassService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete class")
	}
	return nil
}

// ListFees returns the full tuition schedule.
func (s *ClassService) ListFees(ctx context.Context) ([]models.ClassFeeDetail, error) {
	fees, err := s.repo.ListFees(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class fees")
	}
	return fees, nil
}

// SetFee fixes the monthly tuition for a class.
func (s *ClassService) SetFee(ctx context.Context, classID string, req SetClassFeeRequest) (*models.ClassFee, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid fee payload")
	}
	if _, err := s.Get(ctx, classID); err != nil {
		return nil, err
	}
	fee := &models.ClassFee{ClassID: classID, Amount: req.Amount}
	if err := s.repo.UpsertFee(ctx, fee); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to set class fee")
	}
	return fee, nil
}
