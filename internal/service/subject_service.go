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

type subjectRepository interface {
	List(ctx context.Context, classID, teacherID string) ([]models.SubjectDetail, error)
	FindByID(ctx context.Context, id string) (*models.SubjectDetail, error)
	Create(ctx context.Context, subject *models.Subject) error
	Update(ctx context.Context, subject *models.Subject) error
	Delete(ctx context.Context, id string) error
	ListUnits(ctx context.Context) ([]models.Unit, error)
	CreateUnit(ctx context.Context, unit *models.Unit) error
	DeleteUnit(ctx context.Context, id string) error
}

type subjectUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// SubjectRequest is the payload for creating or updating a subject.
type SubjectRequest struct {
	Name      string  `json:"name" validate:"required"`
	UnitID    *string `json:"unit_id,omitempty"`
	TeacherID string  `json:"teacher_id" validate:"required"`
	ClassID   string  `json:"class_id" validate:"required"`
	Active    *bool   `json:"active,omitempty"`
}

// UnitRequest creates a teaching unit.
type UnitRequest struct {
	Name string `json:"name" validate:"required"`
}

// SubjectService manages teaching units and subjects.
type SubjectService struct {
	repo      subjectRepository
	users     subjectUserRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSubjectService constructs a SubjectService instance.
func NewSubjectService(repo subjectRepository, users subjectUserRepository, validate *validator.Validate, logger *zap.Logger) *SubjectService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &SubjectService{repo: repo, users: users, validator: validate, logger: logger}
}

// List returns subjects, optionally narrowed to one class or teacher.
func (s *SubjectService) List(ctx context.Context, classID, teacherID string) ([]models.SubjectDetail, error) {
	subjects, err := s.repo.List(ctx, classID, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}
	return subjects, nil
}

// Get fetches one subject with its display names.
func (s *SubjectService) Get(ctx context.Context, id string) (*models.SubjectDetail, error) {
	subject, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}
	return subject, nil
}

// Create adds a subject after checking the teacher reference actually holds
// the teacher role.
func (s *SubjectService) Create(ctx context.Context, req SubjectRequest) (*models.Subject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subject payload")
	}
	if err := s.checkTeacher(ctx, req.TeacherID); err != nil {
		return nil, err
	}

	subject := &models.Subject{
		Name:      req.Name,
		UnitID:    req.UnitID,
		TeacherID: req.TeacherID,
		ClassID:   req.ClassID,
		Active:    true,
	}
	if req.Active != nil {
		subject.Active = *req.Active
	}
	if err := s.repo.Create(ctx, subject); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create subject")
	}
	return subject, nil
}

// Update rewrites a subject.
func (s *SubjectService) Update(ctx context.Context, id string, req SubjectRequest) (*models.Subject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subject payload")
	}
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkTeacher(ctx, req.TeacherID); err != nil {
		return nil, err
	}

	subject := existing.Subject
	subject.Name = req.Name
	subject.UnitID = req.UnitID
	subject.TeacherID = req.TeacherID
	subject.ClassID = req.ClassID
	if req.Active != nil {
		subject.Active = *req.Active
	}
	if err := s.repo.Update(ctx, &subject); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update subject")
	}
	return &subject, nil
}

// Delete removes a subject.
func (s *SubjectService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete subject")
	}
	return nil
}

// ListUnits returns all teaching units.
func (s *SubjectService) ListUnits(ctx context.Context) ([]models.Unit, error) {
	units, err := s.repo.ListUnits(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list units")
	}
	return units, nil
}

// CreateUnit adds a teaching unit.
func (s *SubjectService) CreateUnit(ctx context.Context, req UnitRequest) (*models.Unit, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid unit payload")
	}
	unit := &models.Unit{Name: req.Name}
	if err := s.repo.CreateUnit(ctx, unit); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create unit")
	}
	return unit, nil
}

// DeleteUnit removes a teaching unit.
func (s *SubjectService) DeleteUnit(ctx context.Context, id string) error {
	if err := s.repo.DeleteUnit(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete unit")
	}
	return nil
}

func (s *SubjectService) checkTeacher(ctx context.Context, teacherID string) error {
	teacher, err := s.users.FindByID(ctx, teacherID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	if teacher.Role != models.RoleTeacher {
		return appErrors.Clone(appErrors.ErrValidation, "referenced user is not a teacher")
	}
	return nil
}
