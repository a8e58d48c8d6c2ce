package handler

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	internalmiddleware "github.com/tafita2023/inata-api/internal/middleware"
	"github.com/tafita2023/inata-api/internal/models"
	"github.com/tafita2023/inata-api/internal/service"
	"github.com/tafita2023/inata-api/pkg/payment"
)

const integrationWebhookSecret = "whsec_integration"

func TestSecuredRoutesIntegration(t *testing.T) {
	router := buildSecuredRouter()

	t.Run("events list success", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/events", nil)
		req.Header.Set("X-Test-Role", string(models.RoleStudent))
		resp := performRequest(router, req)
		require.Equal(t, http.StatusOK, resp.Code)
		require.Contains(t, resp.Body.String(), `"Rentrée scolaire"`)
	})

	t.Run("events list unauthorized", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/events", nil)
		resp := performRequest(router, req)
		require.Equal(t, http.StatusUnauthorized, resp.Code)
	})

	t.Run("events create forbidden for students", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, "/events", bytes.NewBufferString(defaultEventPayload))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Test-Role", string(models.RoleStudent))
		resp := performRequest(router, req)
		require.Equal(t, http.StatusForbidden, resp.Code)
	})

	t.Run("events create success", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, "/events", bytes.NewBufferString(defaultEventPayload))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Test-Role", string(models.RoleAdmin))
		resp := performRequest(router, req)
		require.Equal(t, http.StatusCreated, resp.Code)
	})
}

func TestWebhookRouteIntegration(t *testing.T) {
	router := buildSecuredRouter()
	body := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"cs_unknown","payment_status":"paid","metadata":{"student_id":"s1","fee_ids":"f1"}}}}`)

	t.Run("rejects missing signature", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, "/payments/webhook", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		resp := performRequest(router, req)
		require.Equal(t, http.StatusBadRequest, resp.Code)
		require.Contains(t, resp.Body.String(), "INVALID_SIGNATURE")
	})

	t.Run("rejects forged signature", func(t *testing.T) {
		forged := payment.NewSignatureVerifier("whsec_wrong", time.Minute).Sign(body, time.Now())
		req, _ := http.NewRequest(http.MethodPost, "/payments/webhook", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(SignatureHeader, forged)
		resp := performRequest(router, req)
		require.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("accepts signed notification", func(t *testing.T) {
		signed := payment.NewSignatureVerifier(integrationWebhookSecret, time.Minute).Sign(body, time.Now())
		req, _ := http.NewRequest(http.MethodPost, "/payments/webhook", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(SignatureHeader, signed)
		resp := performRequest(router, req)
		require.Equal(t, http.StatusOK, resp.Code)
		require.Contains(t, resp.Body.String(), `"received":true`)
	})
}

const defaultEventPayload = `{"title":"Fête de fin d'année","start_date":"2026-06-20T08:00:00Z","end_date":"2026-06-20T18:00:00Z"}`

func buildSecuredRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if role := c.GetHeader("X-Test-Role"); role != "" {
			c.Set(internalmiddleware.ContextUserKey, &models.JWTClaims{
				UserID: "test-user",
				Role:   models.UserRole(role),
			})
		}
		c.Next()
	})

	eventHandler := NewEventHandler(service.NewEventService(&eventRepoIntegrationMock{}, nil, nil))

	verifier := payment.NewSignatureVerifier(integrationWebhookSecret, time.Minute)
	paymentSvc := service.NewPaymentService(
		&paymentRepoIntegrationMock{}, &paymentFeesIntegrationMock{}, &paymentUsersIntegrationMock{},
		nil, verifier, service.PaymentConfig{Currency: "mga"}, nil, nil)
	paymentHandler := NewPaymentHandler(paymentSvc)

	router.POST("/payments/webhook", paymentHandler.Webhook)

	allRoles := []string{string(models.RoleAdmin), string(models.RoleTeacher), string(models.RoleStudent)}
	router.GET("/events", internalmiddleware.RBAC(allRoles...), eventHandler.List)
	router.POST("/events", internalmiddleware.RBAC(string(models.RoleAdmin)), eventHandler.Create)

	return router
}

func performRequest(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

type eventRepoIntegrationMock struct{}

func (eventRepoIntegrationMock) List(ctx context.Context) ([]models.Event, error) {
	return []models.Event{{ID: "evt-1", Title: "Rentrée scolaire"}}, nil
}

func (eventRepoIntegrationMock) FindByID(ctx context.Context, id string) (*models.Event, error) {
	return &models.Event{ID: id}, nil
}

func (eventRepoIntegrationMock) Create(ctx context.Context, event *models.Event) error { return nil }
func (eventRepoIntegrationMock) Update(ctx context.Context, event *models.Event) error { return nil }
func (eventRepoIntegrationMock) Delete(ctx context.Context, id string) error           { return nil }

type paymentRepoIntegrationMock struct{}

func (paymentRepoIntegrationMock) CreateWithFees(ctx context.Context, p *models.Payment, feeIDs []string) error {
	return nil
}

func (paymentRepoIntegrationMock) FindBySessionID(ctx context.Context, sessionID string) (*models.Payment, error) {
	return nil, nil
}

func (paymentRepoIntegrationMock) Settle(ctx context.Context, paymentID string) error { return nil }

func (paymentRepoIntegrationMock) ListByStudent(ctx context.Context, studentID string) ([]models.PaymentDetail, error) {
	return nil, nil
}

func (paymentRepoIntegrationMock) ListAll(ctx context.Context) ([]models.PaymentDetail, error) {
	return nil, nil
}

type paymentFeesIntegrationMock struct{}

func (paymentFeesIntegrationMock) FindUnpaidByIDs(ctx context.Context, studentID string, ids []string) ([]models.MonthlyFee, error) {
	return nil, nil
}

type paymentUsersIntegrationMock struct{}

func (paymentUsersIntegrationMock) FindByID(ctx context.Context, id string) (*models.User, error) {
	return nil, fmt.Errorf("unknown user %s", id)
}
