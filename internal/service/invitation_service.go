package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/tafita2023/inata-api/internal/models"
	appErrors "github.com/tafita2023/inata-api/pkg/errors"
)

type invitationRepository interface {
	Create(ctx context.Context, invitation *models.Invitation) error
	FindByToken(ctx context.Context, token string) (*models.Invitation, error)
	List(ctx context.Context) ([]models.Invitation, error)
}

type invitationClassRepository interface {
	FindByID(ctx context.Context, id string) (*models.Class, error)
}

// CreateInvitationRequest issues a registration invitation.
type CreateInvitationRequest struct {
	Role    string  `json:"role" validate:"required"`
	ClassID *string `json:"class_id,omitempty"`
}

// InvitationService issues the single-use tokens administrators hand out to
// new staff and students.
type InvitationService struct {
	repo      invitationRepository
	classes   invitationClassRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewInvitationService constructs an InvitationService.
func NewInvitationService(repo invitationRepository, classes invitationClassRepository, validate *validator.Validate, logger *zap.Logger) *InvitationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &InvitationService{repo: repo, classes: classes, validator: validate, logger: logger}
}

// Create issues a new invitation. Student invitations must name the class the
// invitee will join; admin invitations are never issued this way.
func (s *InvitationService) Create(ctx context.Context, req CreateInvitationRequest) (*models.Invitation, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid invitation payload")
	}

	role := models.UserRole(req.Role)
	if role != models.RoleTeacher && role != models.RoleStudent {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invitations may only target teachers or students")
	}
	if role == models.RoleStudent {
		if req.ClassID == nil || *req.ClassID == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "student invitations require a class")
		}
		if _, err := s.classes.FindByID(ctx, *req.ClassID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
		}
	} else {
		req.ClassID = nil
	}

	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate token")
	}

	invitation := &models.Invitation{
		Token:   base64.RawURLEncoding.EncodeToString(buf),
		Role:    role,
		ClassID: req.ClassID,
	}
	if err := s.repo.Create(ctx, invitation); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create invitation")
	}

	s.logger.Info("invitation issued", zap.String("role", string(role)))
	return invitation, nil
}

// InvitationPreview is what a registration page shows before the invitee
// fills the form.
type InvitationPreview struct {
	Role       models.UserRole `json:"role"`
	ClassID    *string         `json:"class_id,omitempty"`
	ClassLevel *string         `json:"class_level,omitempty"`
}

// Inspect resolves an invitation token to the role and class it grants,
// without consuming it. Used by the registration page before submission.
func (s *InvitationService) Inspect(ctx context.Context, token string) (*InvitationPreview, error) {
	invitation, err := s.repo.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "invitation not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load invitation")
	}
	if invitation.Used {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invitation token already used")
	}

	preview := &InvitationPreview{Role: invitation.Role, ClassID: invitation.ClassID}
	if invitation.ClassID != nil {
		class, err := s.classes.FindByID(ctx, *invitation.ClassID)
		if err == nil {
			preview.ClassLevel = &class.Level
		}
	}
	return preview, nil
}

// List returns all invitations newest first.
func (s *InvitationService) List(ctx context.Context) ([]models.Invitation, error) {
	invitations, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list invitations")
	}
	return invitations, nil
}
