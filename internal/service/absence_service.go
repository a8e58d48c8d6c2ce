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

type absenceRepository interface {
	List(ctx context.Context, studentID, classID string) ([]models.AbsenceDetail, error)
	FindByID(ctx context.Context, id string) (*models.Absence, error)
	Create(ctx context.Context, absence *models.Absence) error
	Justify(ctx context.Context, id, reason string) error
	Delete(ctx context.Context, id string) error
	CountUnjustified(ctx context.Context, studentID string) (int, error)
}

type absenceUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// AbsenceRequest marks a student absent.
type AbsenceRequest struct {
	StudentID string    `json:"student_id" validate:"required"`
	SubjectID *string   `json:"subject_id,omitempty"`
	Date      time.Time `json:"date" validate:"required"`
}

// JustifyAbsenceRequest records the reason for an absence.
type JustifyAbsenceRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// AbsenceService manages attendance records.
type AbsenceService struct {
	repo      absenceRepository
	users     absenceUserRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAbsenceService constructs an AbsenceService instance.
func NewAbsenceService(repo absenceRepository, users absenceUserRepository, validate *validator.Validate, logger *zap.Logger) *AbsenceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AbsenceService{repo: repo, users: users, validator: validate, logger: logger}
}

// List returns absences narrowed to one student or class.
func (s *AbsenceService) List(ctx context.Context, studentID, classID string) ([]models.AbsenceDetail, error) {
	absences, err := s.repo.List(ctx, studentID, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list absences")
	}
	return absences, nil
}

// Mark records an absence. The unique (student, subject, date) key surfaces
// duplicate marking as a conflict.
func (s *AbsenceService) Mark(ctx context.Context, actorID string, req AbsenceRequest) (*models.Absence, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid absence payload")
	}

	student, err := s.users.FindByID(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if student.Role != models.RoleStudent {
		return nil, appErrors.Clone(appErrors.ErrValidation, "absences can only target students")
	}

	absence := &models.Absence{
		StudentID: req.StudentID,
		SubjectID: req.SubjectID,
		Date:      req.Date,
		CreatedBy: &actorID,
	}
	if err := s.repo.Create(ctx, absence); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "absence already recorded for this student, subject and date")
	}
	return absence, nil
}

// Justify flips an absence to justified with a reason. Admins can justify
// any absence; other actors only the ones they recorded themselves.
func (s *AbsenceService) Justify(ctx context.Context, actorID string, actorRole models.UserRole, id string, req JustifyAbsenceRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid justification payload")
	}
	absence, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "absence not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load absence")
	}
	if actorRole != models.RoleAdmin {
		if absence.CreatedBy == nil || *absence.CreatedBy != actorID {
			return appErrors.Clone(appErrors.ErrForbidden, "only the recording teacher can justify this absence")
		}
	}
	if err := s.repo.Justify(ctx, id, req.Reason); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to justify absence")
	}
	return nil
}

// Delete removes an absence record.
func (s *AbsenceService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete absence")
	}
	return nil
}
