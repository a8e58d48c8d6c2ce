package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tafita2023/inata-api/internal/models"
	"github.com/tafita2023/inata-api/internal/service"
	appErrors "github.com/tafita2023/inata-api/pkg/errors"
	"github.com/tafita2023/inata-api/pkg/response"
)

// SalaryHandler wires HTTP endpoints to the salary service.
type SalaryHandler struct {
	service *service.SalaryService
}

// NewSalaryHandler creates a new handler.
func NewSalaryHandler(svc *service.SalaryService) *SalaryHandler {
	return &SalaryHandler{service: svc}
}

// ListRates godoc
// @Summary List salary rates
// @Description Teachers see their own rates; administrators see everything
// @Tags Salaries
// @Produce json
// @Param teacher_id query string false "Teacher filter"
// @Success 200 {object} response.Envelope
// @Router /salaries/rates [get]
func (h *SalaryHandler) ListRates(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	teacherID := c.Query("teacher_id")
	if claims.Role == models.RoleTeacher {
		teacherID = claims.UserID
	}
	rates, err := h.service.ListRates(c.Request.Context(), teacherID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rates, nil)
}

// SetRate godoc
// @Summary Set a salary rate
// @Tags Salaries
// @Accept json
// @Produce json
// @Param payload body service.SalaryRateRequest true "Rate payload"
// @Success 200 {object} response.Envelope
// @Router /salaries/rates [put]
func (h *SalaryHandler) SetRate(c *gin.Context) {
	var req service.SalaryRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid rate payload"))
		return
	}
	rate, err := h.service.SetRate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rate, nil)
}

// DeleteRate godoc
// @Summary Delete a salary rate
// @Tags Salaries
// @Param id path string true "Rate ID"
// @Success 204 {object} response.Envelope
// @Router /salaries/rates/{id} [delete]
func (h *SalaryHandler) DeleteRate(c *gin.Context) {
	if err := h.service.DeleteRate(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// RecordPayment godoc
// @Summary Pay a teacher
// @Description Record a payout covering one or more months at the teacher's current rate
// @Tags Salaries
// @Accept json
// @Produce json
// @Param payload body service.SalaryPaymentRequest true "Payment payload"
// @Success 201 {object} response.Envelope
// @Router /salaries/payments [post]
func (h *SalaryHandler) RecordPayment(c *gin.Context) {
	var req service.SalaryPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payment payload"))
		return
	}
	payment, err := h.service.RecordPayment(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, payment)
}

// ListPayments godoc
// @Summary List salary payments
// @Tags Salaries
// @Produce json
// @Param teacher_id query string false "Teacher filter"
// @Success 200 {object} response.Envelope
// @Router /salaries/payments [get]
func (h *SalaryHandler) ListPayments(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	teacherID := c.Query("teacher_id")
	if claims.Role == models.RoleTeacher {
		teacherID = claims.UserID
	}
	payments, err := h.service.ListPayments(c.Request.Context(), teacherID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payments, nil)
}
