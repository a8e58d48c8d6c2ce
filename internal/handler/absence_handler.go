package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tafita2023/inata-api/internal/models"
	"github.com/tafita2023/inata-api/internal/service"
	appErrors "github.com/tafita2023/inata-api/pkg/errors"
	"github.com/tafita2023/inata-api/pkg/response"
)

// AbsenceHandler wires HTTP endpoints to the absence service.
type AbsenceHandler struct {
	service *service.AbsenceService
}

// NewAbsenceHandler creates a new handler.
func NewAbsenceHandler(svc *service.AbsenceService) *AbsenceHandler {
	return &AbsenceHandler{service: svc}
}

// List godoc
// @Summary List absences
// @Description Students see their own; staff filter by student or class
// @Tags Absences
// @Produce json
// @Param student_id query string false "Student filter"
// @Param class_id query string false "Class filter"
// @Success 200 {object} response.Envelope
// @Router /absences [get]
func (h *AbsenceHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	studentID := c.Query("student_id")
	classID := c.Query("class_id")
	if claims.Role == models.RoleStudent {
		studentID = claims.UserID
		classID = ""
	}

	absences, err := h.service.List(c.Request.Context(), studentID, classID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, absences, nil)
}

// Mark godoc
// @Summary Mark a student absent
// @Tags Absences
// @Accept json
// @Produce json
// @Param payload body service.AbsenceRequest true "Absence payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /absences [post]
func (h *AbsenceHandler) Mark(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.AbsenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid absence payload"))
		return
	}
	absence, err := h.service.Mark(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, absence)
}

// Justify godoc
// @Summary Justify an absence
// @Tags Absences
// @Accept json
// @Produce json
// @Param id path string true "Absence ID"
// @Param payload body service.JustifyAbsenceRequest true "Justification payload"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /absences/{id}/justify [put]
func (h *AbsenceHandler) Justify(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.JustifyAbsenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid justification payload"))
		return
	}
	if err := h.service.Justify(c.Request.Context(), claims.UserID, claims.Role, c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Delete godoc
// @Summary Delete an absence
// @Tags Absences
// @Param id path string true "Absence ID"
// @Success 204 {object} response.Envelope
// @Router /absences/{id} [delete]
func (h *AbsenceHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
