package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tafita2023/inata-api/internal/service"
	appErrors "github.com/tafita2023/inata-api/pkg/errors"
	"github.com/tafita2023/inata-api/pkg/response"
)

// FeeHandler wires HTTP endpoints to the fee service.
type FeeHandler struct {
	service *service.FeeService
}

// NewFeeHandler creates a new handler.
func NewFeeHandler(svc *service.FeeService) *FeeHandler {
	return &FeeHandler{service: svc}
}

// Mine godoc
// @Summary Tuition fees of the calling student
// @Description Opens any missing fee months, then returns the student's ledger for the running school year
// @Tags Fees
// @Produce json
// @Param months query []string false "Fee months to open instead of the elapsed ones" collectionFormat(multi)
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /fees/mine [get]
func (h *FeeHandler) Mine(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	fees, err := h.service.MyFees(c.Request.Context(), claims.UserID, c.QueryArray("months"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fees, nil)
}

// Ledger godoc
// @Summary Tuition ledger of the school
// @Tags Fees
// @Produce json
// @Param school_year query string false "School year label"
// @Param paid query bool false "Settlement filter"
// @Success 200 {object} response.Envelope
// @Router /fees [get]
func (h *FeeHandler) Ledger(c *gin.Context) {
	var paid *bool
	if raw := c.Query("paid"); raw != "" {
		v := raw == "true"
		paid = &v
	}
	fees, err := h.service.Ledger(c.Request.Context(), c.Query("school_year"), paid)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fees, nil)
}

// RecordManualPayment godoc
// @Summary Record a cash payment
// @Description Record months paid in cash at the office, splitting the total evenly
// @Tags Fees
// @Accept json
// @Produce json
// @Param payload body service.ManualPaymentRequest true "Payment payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /fees/payments [post]
func (h *FeeHandler) RecordManualPayment(c *gin.Context) {
	var req service.ManualPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payment payload"))
		return
	}
	payment, err := h.service.RecordManualPayment(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, payment)
}
