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

type salaryRepository interface {
	ListRates(ctx context.Context, teacherID string) ([]models.SalaryRateDetail, error)
	UpsertRate(ctx context.Context, rate *models.SalaryRate) error
	DeleteRate(ctx context.Context, id string) error
	SumRatesByTeacher(ctx context.Context, teacherID string) (float64, error)
	CreatePayment(ctx context.Context, payment *models.SalaryPayment, items []models.SalaryPaymentItem) error
	ListPayments(ctx context.Context, teacherID string) ([]models.SalaryPaymentDetail, error)
}

type salaryUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// SalaryRateRequest fixes one (teacher, class, subject) monthly amount.
type SalaryRateRequest struct {
	TeacherID string  `json:"teacher_id" validate:"required"`
	ClassID   string  `json:"class_id" validate:"required"`
	SubjectID string  `json:"subject_id" validate:"required"`
	Amount    float64 `json:"amount" validate:"required,gt=0"`
}

// SalaryPaymentRequest pays a teacher for the named months at the current
// total rate.
type SalaryPaymentRequest struct {
	TeacherID string   `json:"teacher_id" validate:"required"`
	Months    []string `json:"months" validate:"required,min=1"`
}

// SalaryService manages teacher salary rates and payouts.
type SalaryService struct {
	repo      salaryRepository
	users     salaryUserRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSalaryService constructs a SalaryService instance.
func NewSalaryService(repo salaryRepository, users salaryUserRepository, validate *validator.Validate, logger *zap.Logger) *SalaryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &SalaryService{repo: repo, users: users, validator: validate, logger: logger}
}

// ListRates returns rates, optionally for one teacher.
func (s *SalaryService) ListRates(ctx context.Context, teacherID string) ([]models.SalaryRateDetail, error) {
	rates, err := s.repo.ListRates(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list salary rates")
	}
	return rates, nil
}

// SetRate fixes a rate for one teaching slot.
func (s *SalaryService) SetRate(ctx context.Context, req SalaryRateRequest) (*models.SalaryRate, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid rate payload")
	}
	if err := s.checkTeacher(ctx, req.TeacherID); err != nil {
		return nil, err
	}
	rate := &models.SalaryRate{
		TeacherID: req.TeacherID,
		ClassID:   req.ClassID,
		SubjectID: req.SubjectID,
		Amount:    req.Amount,
	}
	if err := s.repo.UpsertRate(ctx, rate); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to set salary rate")
	}
	return rate, nil
}

// DeleteRate removes a rate.
func (s *SalaryService) DeleteRate(ctx context.Context, id string) error {
	if err := s.repo.DeleteRate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete salary rate")
	}
	return nil
}

// RecordPayment pays a teacher for the given months. Each month is paid at
// the teacher's current total monthly rate.
func (s *SalaryService) RecordPayment(ctx context.Context, req SalaryPaymentRequest) (*models.SalaryPayment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
	}
	if err := s.checkTeacher(ctx, req.TeacherID); err != nil {
		return nil, err
	}

	monthly, err := s.repo.SumRatesByTeacher(ctx, req.TeacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute salary")
	}
	if monthly <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "teacher has no salary rates configured")
	}

	items := make([]models.SalaryPaymentItem, 0, len(req.Months))
	for _, month := range req.Months {
		items = append(items, models.SalaryPaymentItem{Month: month, Amount: monthly})
	}
	payment := &models.SalaryPayment{
		TeacherID:   req.TeacherID,
		TotalAmount: monthly * float64(len(req.Months)),
		Status:      string(models.PaymentPaid),
	}
	if err := s.repo.CreatePayment(ctx, payment, items); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record salary payment")
	}

	s.logger.Info("salary payment recorded",
		zap.String("teacher_id", req.TeacherID),
		zap.Int("months", len(req.Months)),
		zap.Float64("total", payment.TotalAmount))
	return payment, nil
}

// ListPayments returns payouts, optionally for one teacher.
func (s *SalaryService) ListPayments(ctx context.Context, teacherID string) ([]models.SalaryPaymentDetail, error) {
	payments, err := s.repo.ListPayments(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list salary payments")
	}
	return payments, nil
}

func (s *SalaryService) checkTeacher(ctx context.Context, teacherID string) error {
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
