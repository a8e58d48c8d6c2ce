package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tafita2023/inata-api/internal/service"
	appErrors "github.com/tafita2023/inata-api/pkg/errors"
	"github.com/tafita2023/inata-api/pkg/response"
)

// ClassHandler wires HTTP endpoints to the class service.
type ClassHandler struct {
	service *service.ClassService
}

// NewClassHandler creates a new handler.
func NewClassHandler(svc *service.ClassService) *ClassHandler {
	return &ClassHandler{service: svc}
}

// List godoc
// @Summary List classes
// @Tags Classes
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /classes [get]
func (h *ClassHandler) List(c *gin.Context) {
	classes, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classes, nil)
}

// Get godoc
// @Summary Get one class
// @Tags Classes
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /classes/{id} [get]
func (h *ClassHandler) Get(c *gin.Context) {
	class, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class, nil)
}

// Create godoc
// @Summary Create a class
// @Tags Classes
// @Accept json
// @Produce json
// @Param payload body service.ClassRequest true "Class payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /classes [post]
func (h *ClassHandler) Create(c *gin.Context) {
	var req service.ClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid class payload"))
		return
	}
	class, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, class)
}

// Update godoc
// @Summary Update a class
// @Tags Classes
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param payload body service.ClassRequest true "Class payload"
// @Success 200 {object} response.Envelope
// @Router /classes/{id} [put]
func (h *ClassHandler) Update(c *gin.Context) {
	var req service.ClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid class payload"))
		return
	}
	class, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class, nil)
}

// Delete godoc
// @Summary Delete a class
// @Tags Classes
// @Param id path string true "Class ID"
// @Success 204 {object} response.Envelope
// @Router /classes/{id} [delete]
func (h *ClassHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListFees godoc
// @Summary List the tuition schedule
// @Tags Classes
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /classes/fees [get]
func (h *ClassHandler) ListFees(c *gin.Context) {
	fees, err := h.service.ListFees(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fees, nil)
}

// SetFee godoc
// @Summary Set a class's monthly tuition
// @Tags Classes
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param payload body service.SetClassFeeRequest true "Fee payload"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/fee [put]
func (h *ClassHandler) SetFee(c *gin.Context) {
	var req service.SetClassFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid fee payload"))
		return
	}
	fee, err := h.service.SetFee(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fee, nil)
}
