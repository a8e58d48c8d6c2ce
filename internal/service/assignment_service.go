package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tafita2023/inata-api/internal/models"
	appErrors "github.com/tafita2023/inata-api/pkg/errors"
	"github.com/tafita2023/inata-api/pkg/storage"
)

type assignmentRepository interface {
	List(ctx context.Context, classID string, kind models.AssignmentKind) ([]models.Assignment, error)
	FindByID(ctx context.Context, id string) (*models.Assignment, error)
	Create(ctx context.Context, assignment *models.Assignment) error
	Delete(ctx context.Context, id string) error
}

type assignmentSubjectRepository interface {
	FindByID(ctx context.Context, id string) (*models.SubjectDetail, error)
}

// CreateAssignmentRequest publishes a hand-out to a class.
type CreateAssignmentRequest struct {
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description"`
	SubjectID   string     `json:"subject_id" validate:"required"`
	Kind        string     `json:"kind" validate:"required,oneof=homework exam"`
	Deadline    *time.Time `json:"deadline,omitempty"`
}

// AssignmentView is an assignment with its derived status.
type AssignmentView struct {
	models.Assignment
	Status string `json:"status"`
}

// AssignmentService manages published hand-outs and their uploaded files.
type AssignmentService struct {
	repo      assignmentRepository
	subjects  assignmentSubjectRepository
	media     *storage.MediaStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAssignmentService constructs an AssignmentService instance.
func NewAssignmentService(repo assignmentRepository, subjects assignmentSubjectRepository, media *storage.MediaStore, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AssignmentService{repo: repo, subjects: subjects, media: media, validator: validate, logger: logger}
}

// List returns assignments with derived open/closed status.
func (s *AssignmentService) List(ctx context.Context, classID string, kind models.AssignmentKind) ([]AssignmentView, error) {
	assignments, err := s.repo.List(ctx, classID, kind)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	now := time.Now().UTC()
	views := make([]AssignmentView, 0, len(assignments))
	for _, assignment := range assignments {
		views = append(views, AssignmentView{Assignment: assignment, Status: assignment.Status(now)})
	}
	return views, nil
}

// Publish creates an assignment, storing the optional uploaded file under the
// media directory. Teachers may only publish to subjects they teach.
func (s *AssignmentService) Publish(ctx context.Context, actor *models.JWTClaims, req CreateAssignmentRequest, filename string, file io.Reader) (*models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	subject, err := s.subjects.FindByID(ctx, req.SubjectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}
	if actor.Role == models.RoleTeacher && subject.TeacherID != actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "subject is taught by another teacher")
	}

	assignment := &models.Assignment{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		ClassID:     subject.ClassID,
		SubjectID:   req.SubjectID,
		Kind:        models.AssignmentKind(req.Kind),
		Deadline:    req.Deadline,
	}

	if file != nil && filename != "" {
		relPath := fmt.Sprintf("assignments/%s%s", assignment.ID, filepath.Ext(filename))
		if _, err := s.media.SaveStream(relPath, file); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store file")
		}
		assignment.FilePath = &relPath
	}

	if err := s.repo.Create(ctx, assignment); err != nil {
		if assignment.FilePath != nil {
			if rmErr := s.media.Delete(*assignment.FilePath); rmErr != nil {
				s.logger.Warn("failed to remove orphaned upload", zap.Error(rmErr))
			}
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assignment")
	}
	return assignment, nil
}

// FilePath resolves the on-disk path of an assignment's uploaded file.
func (s *AssignmentService) FilePath(ctx context.Context, id string) (string, error) {
	assignment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	if assignment.FilePath == nil {
		return "", appErrors.Clone(appErrors.ErrNotFound, "assignment has no file")
	}
	path, err := s.media.Path(*assignment.FilePath)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve file")
	}
	return path, nil
}

// Delete removes an assignment and its uploaded file.
func (s *AssignmentService) Delete(ctx context.Context, actor *models.JWTClaims, id string) error {
	assignment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}

	if actor.Role == models.RoleTeacher {
		subject, err := s.subjects.FindByID(ctx, assignment.SubjectID)
		if err == nil && subject.TeacherID != actor.UserID {
			return appErrors.Clone(appErrors.ErrForbidden, "subject is taught by another teacher")
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete assignment")
	}
	if assignment.FilePath != nil {
		if err := s.media.Delete(*assignment.FilePath); err != nil {
			s.logger.Warn("failed to remove assignment file", zap.Error(err))
		}
	}
	return nil
}
