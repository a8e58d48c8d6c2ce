package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tafita2023/inata-api/internal/models"
	"github.com/tafita2023/inata-api/internal/service"
	appErrors "github.com/tafita2023/inata-api/pkg/errors"
	"github.com/tafita2023/inata-api/pkg/response"
)

// ScheduleHandler wires HTTP endpoints to the schedule service.
type ScheduleHandler struct {
	service *service.ScheduleService
	users   *service.UserService
}

// NewScheduleHandler creates a new handler.
func NewScheduleHandler(svc *service.ScheduleService, users *service.UserService) *ScheduleHandler {
	return &ScheduleHandler{service: svc, users: users}
}

// Weekly godoc
// @Summary Weekly timetable of a class
// @Tags Schedule
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/schedule [get]
func (h *ScheduleHandler) Weekly(c *gin.Context) {
	grid, err := h.service.WeeklyGrid(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grid, nil)
}

// Mine godoc
// @Summary Weekly timetable of the calling student
// @Tags Schedule
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /schedule/mine [get]
func (h *ScheduleHandler) Mine(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	user, err := h.users.Get(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if user.Role != models.RoleStudent || user.ClassID == nil {
		response.Error(c, appErrors.ErrNoClass)
		return
	}
	grid, err := h.service.WeeklyGrid(c.Request.Context(), *user.ClassID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grid, nil)
}

// PlaceSlot godoc
// @Summary Place a subject in a timetable cell
// @Tags Schedule
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param payload body service.ScheduleSlotRequest true "Slot payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /classes/{id}/schedule [put]
func (h *ScheduleHandler) PlaceSlot(c *gin.Context) {
	var req service.ScheduleSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid slot payload"))
		return
	}
	slot, err := h.service.PlaceSlot(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slot, nil)
}

// RemoveSlot godoc
// @Summary Clear a timetable cell
// @Tags Schedule
// @Param slotId path string true "Slot ID"
// @Success 204 {object} response.Envelope
// @Router /schedule/{slotId} [delete]
func (h *ScheduleHandler) RemoveSlot(c *gin.Context) {
	if err := h.service.RemoveSlot(c.Request.Context(), c.Param("slotId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
