package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/tafita2023/inata-api/internal/models"
	appErrors "github.com/tafita2023/inata-api/pkg/errors"
	"github.com/tafita2023/inata-api/pkg/payment"
)

type paymentRepository interface {
	CreateWithFees(ctx context.Context, payment *models.Payment, feeIDs []string) error
	FindBySessionID(ctx context.Context, sessionID string) (*models.Payment, error)
	Settle(ctx context.Context, paymentID string) error
	ListByStudent(ctx context.Context, studentID string) ([]models.PaymentDetail, error)
	ListAll(ctx context.Context) ([]models.PaymentDetail, error)
}

type paymentFeeRepository interface {
	FindUnpaidByIDs(ctx context.Context, studentID string, ids []string) ([]models.MonthlyFee, error)
}

type paymentUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type checkoutClient interface {
	CreateCheckoutSession(ctx context.Context, params payment.CheckoutSessionParams) (*payment.CheckoutSession, error)
}

// CheckoutRequest starts a hosted checkout for the named unpaid fees.
type CheckoutRequest struct {
	FeeIDs []string `json:"fee_ids" validate:"required,min=1"`
}

// CheckoutResponse carries the redirect URL of the hosted checkout page.
type CheckoutResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

// PaymentConfig tunes the checkout flow.
type PaymentConfig struct {
	Currency    string
	FrontendURL string
}

// PaymentService drives the card payment flow: checkout session creation and
// webhook reconciliation.
type PaymentService struct {
	repo      paymentRepository
	fees      paymentFeeRepository
	users     paymentUserRepository
	client    checkoutClient
	verifier  *payment.SignatureVerifier
	config    PaymentConfig
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// WithMetrics attaches a metrics collector. Nil leaves counting disabled.
func (s *PaymentService) WithMetrics(m *MetricsService) *PaymentService {
	s.metrics = m
	return s
}

func (s *PaymentService) countPayment(method string, status models.PaymentStatus) {
	if s.metrics != nil {
		s.metrics.CountPayment(method, string(status))
	}
}

// NewPaymentService constructs a PaymentService instance.
func NewPaymentService(repo paymentRepository, fees paymentFeeRepository, users paymentUserRepository, client checkoutClient, verifier *payment.SignatureVerifier, config PaymentConfig, validate *validator.Validate, logger *zap.Logger) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.Currency == "" {
		config.Currency = "eur"
	}
	return &PaymentService{repo: repo, fees: fees, users: users, client: client, verifier: verifier, config: config, validator: validate, logger: logger}
}

// CreateCheckout opens a hosted checkout session covering the student's
// selected unpaid fees and records the pending payment keyed by session ID.
func (s *PaymentService) CreateCheckout(ctx context.Context, studentID string, req CheckoutRequest) (*CheckoutResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid checkout payload")
	}

	student, err := s.users.FindByID(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	fees, err := s.fees.FindUnpaidByIDs(ctx, studentID, req.FeeIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load fees")
	}
	if len(fees) != len(req.FeeIDs) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "one or more fees are unknown, already paid or belong to another student")
	}

	var total float64
	feeIDs := make([]string, 0, len(fees))
	lineItems := make([]payment.CheckoutLineItem, 0, len(fees))
	for _, fee := range fees {
		total += fee.Amount
		feeIDs = append(feeIDs, fee.ID)
		lineItems = append(lineItems, payment.CheckoutLineItem{
			Name:        fmt.Sprintf("Frais de scolarité %s", fee.Month),
			Description: fee.SchoolYear,
			Amount:      int64(math.Round(fee.Amount * 100)),
			Quantity:    1,
		})
	}

	session, err := s.client.CreateCheckoutSession(ctx, payment.CheckoutSessionParams{
		Currency:      s.config.Currency,
		CustomerEmail: student.Email,
		SuccessURL:    s.config.FrontendURL + "/paiement/succes",
		CancelURL:     s.config.FrontendURL + "/paiement/annule",
		LineItems:     lineItems,
		Metadata: map[string]string{
			"student_id": studentID,
			"fee_ids":    strings.Join(feeIDs, ","),
		},
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create checkout session")
	}

	pending := &models.Payment{
		StudentID:   studentID,
		TotalAmount: total,
		Status:      models.PaymentPending,
		SessionID:   &session.ID,
		Method:      models.PaymentMethodCard,
	}
	if err := s.repo.CreateWithFees(ctx, pending, feeIDs); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record pending payment")
	}

	s.countPayment(models.PaymentMethodCard, models.PaymentPending)
	s.logger.Info("checkout session created",
		zap.String("student_id", studentID),
		zap.String("session_id", session.ID),
		zap.Float64("amount", total))
	return &CheckoutResponse{SessionID: session.ID, URL: session.URL}, nil
}

// HandleWebhook reconciles a provider notification against the ledger. The
// signature is verified before anything is read from the payload; completed
// checkouts settle their payment, and a retry of an already settled session
// changes nothing.
func (s *PaymentService) HandleWebhook(ctx context.Context, payloadBytes []byte, signatureHeader string) error {
	if err := s.verifier.Verify(payloadBytes, signatureHeader, time.Now().UTC()); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInvalidSignature.Code, appErrors.ErrInvalidSignature.Status, "webhook signature verification failed")
	}

	event, err := payment.ParseEvent(payloadBytes)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "malformed webhook payload")
	}
	if event.Type != payment.EventCheckoutCompleted {
		s.logger.Debug("ignoring webhook event", zap.String("type", event.Type))
		return nil
	}

	session, err := payment.CheckoutSessionFromEvent(event)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "malformed checkout payload")
	}
	if session.PaymentStatus != "paid" {
		s.logger.Info("checkout completed but unpaid", zap.String("session_id", session.ID))
		return nil
	}

	stored, err := s.repo.FindBySessionID(ctx, session.ID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up payment")
	}
	if stored != nil {
		if err := s.repo.Settle(ctx, stored.ID); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to settle payment")
		}
		s.countPayment(models.PaymentMethodCard, models.PaymentPaid)
		s.logger.Info("payment settled", zap.String("payment_id", stored.ID), zap.String("session_id", session.ID))
		return nil
	}

	// Unknown session: fall back to the metadata the checkout was created
	// with so a payment record still lands in the ledger.
	return s.settleFromMetadata(ctx, session)
}

func (s *PaymentService) settleFromMetadata(ctx context.Context, session *payment.CheckoutSessionPayload) error {
	studentID := session.Metadata["student_id"]
	rawFeeIDs := session.Metadata["fee_ids"]
	if studentID == "" || rawFeeIDs == "" {
		return appErrors.Clone(appErrors.ErrValidation, "checkout session carries no reconciliation metadata")
	}
	feeIDs := strings.Split(rawFeeIDs, ",")

	fees, err := s.fees.FindUnpaidByIDs(ctx, studentID, feeIDs)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load fees")
	}
	if len(fees) == 0 {
		// Everything already settled; a duplicate delivery ends here.
		return nil
	}

	var total float64
	ids := make([]string, 0, len(fees))
	for _, fee := range fees {
		total += fee.Amount
		ids = append(ids, fee.ID)
	}

	settled := &models.Payment{
		StudentID:   studentID,
		TotalAmount: total,
		Status:      models.PaymentPaid,
		SessionID:   &session.ID,
		Method:      models.PaymentMethodCard,
	}
	if err := s.repo.CreateWithFees(ctx, settled, ids); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record payment")
	}
	s.countPayment(models.PaymentMethodCard, models.PaymentPaid)
	s.logger.Info("payment reconciled from metadata",
		zap.String("student_id", studentID), zap.String("session_id", session.ID))
	return nil
}

// StatusBySession returns the payment created for a checkout session. The
// frontend polls this after the redirect; students only see their own
// payments.
func (s *PaymentService) StatusBySession(ctx context.Context, claims *models.JWTClaims, sessionID string) (*models.Payment, error) {
	stored, err := s.repo.FindBySessionID(ctx, sessionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up payment")
	}
	if stored == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "payment not found")
	}
	if claims.Role != models.RoleAdmin && stored.StudentID != claims.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	return stored, nil
}

// MyPayments returns the calling student's payments with their fee rows.
func (s *PaymentService) MyPayments(ctx context.Context, studentID string) ([]models.PaymentDetail, error) {
	payments, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list payments")
	}
	return payments, nil
}

// ListAll returns every payment for administrators.
func (s *PaymentService) ListAll(ctx context.Context) ([]models.PaymentDetail, error) {
	payments, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list payments")
	}
	return payments, nil
}
