package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tafita2023/inata-api/internal/service"
	appErrors "github.com/tafita2023/inata-api/pkg/errors"
	"github.com/tafita2023/inata-api/pkg/response"
)

// SubjectHandler wires HTTP endpoints to the subject service.
type SubjectHandler struct {
	service *service.SubjectService
}

// NewSubjectHandler creates a new handler.
func NewSubjectHandler(svc *service.SubjectService) *SubjectHandler {
	return &SubjectHandler{service: svc}
}

// List godoc
// @Summary List subjects
// @Tags Subjects
// @Produce json
// @Param class_id query string false "Class filter"
// @Param teacher_id query string false "Teacher filter"
// @Success 200 {object} response.Envelope
// @Router /subjects [get]
func (h *SubjectHandler) List(c *gin.Context) {
	subjects, err := h.service.List(c.Request.Context(), c.Query("class_id"), c.Query("teacher_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subjects, nil)
}

// Mine godoc
// @Summary List subjects taught by the caller
// @Tags Subjects
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /subjects/mine [get]
func (h *SubjectHandler) Mine(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	subjects, err := h.service.List(c.Request.Context(), "", claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subjects, nil)
}

// Get godoc
// @Summary Get one subject
// @Tags Subjects
// @Produce json
// @Param id path string true "Subject ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /subjects/{id} [get]
func (h *SubjectHandler) Get(c *gin.Context) {
	subject, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subject, nil)
}

// Create godoc
// @Summary Create a subject
// @Tags Subjects
// @Accept json
// @Produce json
// @Param payload body service.SubjectRequest true "Subject payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /subjects [post]
func (h *SubjectHandler) Create(c *gin.Context) {
	var req service.SubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid subject payload"))
		return
	}
	subject, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, subject)
}

// Update godoc
// @Summary Update a subject
// @Tags Subjects
// @Accept json
// @Produce json
// @Param id path string true "Subject ID"
// @Param payload body service.SubjectRequest true "Subject payload"
// @Success 200 {object} response.Envelope
// @Router /subjects/{id} [put]
func (h *SubjectHandler) Update(c *gin.Context) {
	var req service.SubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid subject payload"))
		return
	}
	subject, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subject, nil)
}

// Delete godoc
// @Summary Delete a subject
// @Tags Subjects
// @Param id path string true "Subject ID"
// @Success 204 {object} response.Envelope
// @Router /subjects/{id} [delete]
func (h *SubjectHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListUnits godoc
// @Summary List teaching units
// @Tags Subjects
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /units [get]
func (h *SubjectHandler) ListUnits(c *gin.Context) {
	units, err := h.service.ListUnits(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, units, nil)
}

// CreateUnit godoc
// @Summary Create a teaching unit
// @Tags Subjects
// @Accept json
// @Produce json
// @Param payload body service.UnitRequest true "Unit payload"
// @Success 201 {object} response.Envelope
// @Router /units [post]
func (h *SubjectHandler) CreateUnit(c *gin.Context) {
	var req service.UnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid unit payload"))
		return
	}
	unit, err := h.service.CreateUnit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, unit)
}

// DeleteUnit godoc
// @Summary Delete a teaching unit
// @Tags Subjects
// @Param id path string true "Unit ID"
// @Success 204 {object} response.Envelope
// @Router /units/{id} [delete]
func (h *SubjectHandler) DeleteUnit(c *gin.Context) {
	if err := h.service.DeleteUnit(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
