package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tafita2023/inata-api/internal/service"
	appErrors "github.com/tafita2023/inata-api/pkg/errors"
	"github.com/tafita2023/inata-api/pkg/response"
)

// SignatureHeader is the webhook signature header set by the payment
// provider.
const SignatureHeader = "Stripe-Signature"

// PaymentHandler wires HTTP endpoints to the payment service.
type PaymentHandler struct {
	service *service.PaymentService
}

// NewPaymentHandler creates a new handler.
func NewPaymentHandler(svc *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: svc}
}

// Checkout godoc
// @Summary Start a card checkout
// @Description Open a hosted checkout session for the student's selected unpaid fees
// @Tags Payments
// @Accept json
// @Produce json
// @Param payload body service.CheckoutRequest true "Checkout payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /payments/checkout [post]
func (h *PaymentHandler) Checkout(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid checkout payload"))
		return
	}
	res, err := h.service.CreateCheckout(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, res)
}

// Webhook godoc
// @Summary Payment provider webhook
// @Description Verify the notification signature and reconcile the payment ledger
// @Tags Payments
// @Accept json
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /payments/webhook [post]
func (h *PaymentHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, 1<<20))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unable to read payload"))
		return
	}

	if err := h.service.HandleWebhook(c.Request.Context(), payload, c.GetHeader(SignatureHeader)); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"received": true}, nil)
}

// Mine godoc
// @Summary Payments of the calling student
// @Tags Payments
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /payments/mine [get]
func (h *PaymentHandler) Mine(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	payments, err := h.service.MyPayments(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payments, nil)
}

// Status godoc
// @Summary Poll a checkout session
// @Description Return the payment recorded for a checkout session id
// @Tags Payments
// @Produce json
// @Param sessionId path string true "Checkout session id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /payments/session/{sessionId} [get]
func (h *PaymentHandler) Status(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	payment, err := h.service.StatusBySession(c.Request.Context(), claims, c.Param("sessionId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payment, nil)
}

// ListAll godoc
// @Summary List every payment
// @Tags Payments
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /payments [get]
func (h *PaymentHandler) ListAll(c *gin.Context) {
	payments, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payments, nil)
}
