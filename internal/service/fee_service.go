package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/tafita2023/inata-api/internal/models"
	appErrors "github.com/tafita2023/inata-api/pkg/errors"
)

type feeRepository interface {
	ListByStudent(ctx context.Context, studentID, schoolYear string) ([]models.MonthlyFee, error)
	ListDetails(ctx context.Context, schoolYear string, paid *bool) ([]models.MonthlyFeeDetail, error)
	FindByStudentMonthYear(ctx context.Context, studentID, month, schoolYear string) (*models.MonthlyFee, error)
	Create(ctx context.Context, fee *models.MonthlyFee) error
}

type feeUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type feeClassRepository interface {
	GetFee(ctx context.Context, classID string) (*models.ClassFee, error)
}

type feePaymentRepository interface {
	CreateWithFees(ctx context.Context, payment *models.Payment, feeIDs []string) error
}

// ManualPaymentRequest records a cash payment made at the office. The total
// is split evenly across the named months.
type ManualPaymentRequest struct {
	StudentID string   `json:"student_id" validate:"required"`
	Months    []string `json:"months" validate:"required,min=1"`
	Total     float64  `json:"total" validate:"required,gt=0"`
}

// FeeService maintains the monthly tuition ledger.
type FeeService struct {
	repo      feeRepository
	users     feeUserRepository
	classes   feeClassRepository
	payments  feePaymentRepository
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// WithMetrics attaches a metrics collector. Nil leaves counting disabled.
func (s *FeeService) WithMetrics(m *MetricsService) *FeeService {
	s.metrics = m
	return s
}

// NewFeeService constructs a FeeService instance.
func NewFeeService(repo feeRepository, users feeUserRepository, classes feeClassRepository, payments feePaymentRepository, validate *validator.Validate, logger *zap.Logger) *FeeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &FeeService{repo: repo, users: users, classes: classes, payments: payments, validator: validate, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// EnsureMonthlyFees opens the named fee months of the current school year
// that are missing for a student, at the amount configured for the student's
// class. An empty months list means every month elapsed so far. Existing rows
// are never touched, so re-running is harmless.
func (s *FeeService) EnsureMonthlyFees(ctx context.Context, studentID string, months []string) error {
	if len(months) == 0 {
		months = models.ElapsedFeeMonths(s.now())
	}
	for _, month := range months {
		if !models.IsFeeMonth(month) {
			return appErrors.Clone(appErrors.ErrValidation, "unknown fee month: "+month)
		}
	}

	student, err := s.users.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if student.ClassID == nil {
		return appErrors.Clone(appErrors.ErrNoClass, "")
	}

	classFee, err := s.classes.GetFee(ctx, *student.ClassID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNoFeeSchedule, "")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class fee")
	}

	schoolYear := models.SchoolYearLabel(s.now())
	for _, month := range months {
		existing, err := s.repo.FindByStudentMonthYear(ctx, studentID, month, schoolYear)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check fee month")
		}
		if existing != nil {
			continue
		}
		fee := &models.MonthlyFee{
			StudentID:  studentID,
			Month:      month,
			SchoolYear: schoolYear,
			Amount:     classFee.Amount,
			Paid:       false,
		}
		if err := s.repo.Create(ctx, fee); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open fee month")
		}
	}
	return nil
}

// MyFees ensures the ledger is current and returns the student's fees for the
// running school year. Months, when given, restrict which fee rows get
// opened; the listing always covers the whole year.
func (s *FeeService) MyFees(ctx context.Context, studentID string, months []string) ([]models.MonthlyFee, error) {
	if err := s.EnsureMonthlyFees(ctx, studentID, months); err != nil {
		return nil, err
	}
	fees, err := s.repo.ListByStudent(ctx, studentID, models.SchoolYearLabel(s.now()))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list fees")
	}
	return fees, nil
}

// Ledger returns the admin view of the ledger for one school year.
func (s *FeeService) Ledger(ctx context.Context, schoolYear string, paid *bool) ([]models.MonthlyFeeDetail, error) {
	if schoolYear == "" {
		schoolYear = models.SchoolYearLabel(s.now())
	}
	fees, err := s.repo.ListDetails(ctx, schoolYear, paid)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list ledger")
	}
	return fees, nil
}

// RecordManualPayment records a cash payment for the named months of the
// current school year. Each month must still be free of a fee row; the total
// splits evenly across the months and the created rows are paid immediately.
func (s *FeeService) RecordManualPayment(ctx context.Context, req ManualPaymentRequest) (*models.Payment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
	}
	if _, err := s.users.FindByID(ctx, req.StudentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	schoolYear := models.SchoolYearLabel(s.now())
	var conflicts []string
	for _, month := range req.Months {
		existing, err := s.repo.FindByStudentMonthYear(ctx, req.StudentID, month, schoolYear)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check fee month")
		}
		if existing != nil {
			conflicts = append(conflicts, month)
		}
	}
	if len(conflicts) > 0 {
		return nil, appErrors.Clone(appErrors.ErrConflict,
			"fee already recorded for: "+strings.Join(conflicts, ", "))
	}

	perMonth := req.Total / float64(len(req.Months))
	feeIDs := make([]string, 0, len(req.Months))
	for _, month := range req.Months {
		fee := &models.MonthlyFee{
			StudentID:  req.StudentID,
			Month:      month,
			SchoolYear: schoolYear,
			Amount:     perMonth,
			Paid:       true,
		}
		if err := s.repo.Create(ctx, fee); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create fee month")
		}
		feeIDs = append(feeIDs, fee.ID)
	}

	payment := &models.Payment{
		StudentID:   req.StudentID,
		TotalAmount: req.Total,
		Status:      models.PaymentPaid,
		Method:      models.PaymentMethodCash,
	}
	if err := s.payments.CreateWithFees(ctx, payment, feeIDs); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record payment")
	}

	if s.metrics != nil {
		s.metrics.CountPayment(string(models.PaymentMethodCash), string(models.PaymentPaid))
	}
	s.logger.Info("manual payment recorded",
		zap.String("student_id", req.StudentID),
		zap.Float64("amount", req.Total),
		zap.Strings("months", req.Months))
	return payment, nil
}
