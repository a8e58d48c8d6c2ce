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
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/tafita2023/inata-api/internal/models"
	appErrors "github.com/tafita2023/inata-api/pkg/errors"
	"github.com/tafita2023/inata-api/pkg/storage"
)

type userRepository interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.UserDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
	UpdatePhoto(ctx context.Context, id, photoPath string) error
}

// CreateUserRequest is the admin payload for creating an account directly.
type CreateUserRequest struct {
	Email          string  `json:"email" validate:"required,email"`
	Password       string  `json:"password" validate:"required,min=6"`
	FirstName      string  `json:"first_name" validate:"required"`
	LastName       string  `json:"last_name" validate:"required"`
	Phone          string  `json:"phone"`
	Role           string  `json:"role" validate:"required"`
	ClassID        *string `json:"class_id,omitempty"`
	EnrollmentYear int     `json:"enrollment_year"`
	Address        string  `json:"address"`
	BirthPlace     string  `json:"birth_place"`
}

// UpdateUserRequest is the admin payload for editing an account.
type UpdateUserRequest struct {
	Email          *string `json:"email,omitempty" validate:"omitempty,email"`
	FirstName      *string `json:"first_name,omitempty"`
	LastName       *string `json:"last_name,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	Role           *string `json:"role,omitempty"`
	ClassID        *string `json:"class_id,omitempty"`
	EnrollmentYear *int    `json:"enrollment_year,omitempty"`
	Active         *bool   `json:"active,omitempty"`
	Address        *string `json:"address,omitempty"`
	BirthPlace     *string `json:"birth_place,omitempty"`
}

// UserService provides account management use cases.
type UserService struct {
	repo      userRepository
	media     *storage.MediaStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService constructs a UserService instance.
func NewUserService(repo userRepository, media *storage.MediaStore, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UserService{repo: repo, media: media, validator: validate, logger: logger}
}

// List returns users matching the filter with pagination metadata.
func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]models.UserDetail, *models.Pagination, error) {
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return users, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get fetches one user.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	return user, nil
}

// Create registers an account on behalf of an administrator.
func (s *UserService) Create(ctx context.Context, req CreateUserRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid user payload")
	}
	if !models.ValidRole(req.Role) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown role")
	}

	taken, err := s.repo.ExistsByEmail(ctx, req.Email, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{
		Email:          req.Email,
		PasswordHash:   string(hash),
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Phone:          req.Phone,
		Role:           models.UserRole(req.Role),
		ClassID:        req.ClassID,
		EnrollmentYear: req.EnrollmentYear,
		Active:         true,
		Address:        req.Address,
		BirthPlace:     req.BirthPlace,
	}
	if user.Role == models.RoleStudent && user.EnrollmentYear == 0 {
		user.EnrollmentYear = time.Now().UTC().Year()
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}
	return user, nil
}

// Update applies a partial edit to an account.
func (s *UserService) Update(ctx context.Context, id string, req UpdateUserRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid user payload")
	}

	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil && *req.Email != user.Email {
		taken, err := s.repo.ExistsByEmail(ctx, *req.Email, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
		}
		if taken {
			return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
		}
		user.Email = *req.Email
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Role != nil {
		if !models.ValidRole(*req.Role) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown role")
		}
		user.Role = models.UserRole(*req.Role)
	}
	if req.ClassID != nil {
		if *req.ClassID == "" {
			user.ClassID = nil
		} else {
			user.ClassID = req.ClassID
		}
	}
	if req.EnrollmentYear != nil {
		user.EnrollmentYear = *req.EnrollmentYear
	}
	if req.Active != nil {
		user.Active = *req.Active
	}
	if req.Address != nil {
		user.Address = *req.Address
	}
	if req.BirthPlace != nil {
		user.BirthPlace = *req.BirthPlace
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update user")
	}
	return user, nil
}

// Delete removes an account.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete user")
	}
	return nil
}

// UploadPhoto stores a profile photo under the media directory and records
// its path on the account.
func (s *UserService) UploadPhoto(ctx context.Context, id, filename string, r io.Reader) (string, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}

	ext := filepath.Ext(filename)
	relPath := fmt.Sprintf("photos/%s%s", user.ID, ext)
	if _, err := s.media.SaveStream(relPath, r); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store photo")
	}
	if err := s.repo.UpdatePhoto(ctx, id, relPath); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record photo")
	}
	return relPath, nil
}
