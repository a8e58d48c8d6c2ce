package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tafita2023/inata-api/internal/service"
	appErrors "github.com/tafita2023/inata-api/pkg/errors"
	"github.com/tafita2023/inata-api/pkg/response"
)

// EventHandler wires HTTP endpoints to the event service.
type EventHandler struct {
	service *service.EventService
}

// NewEventHandler creates a new handler.
func NewEventHandler(svc *service.EventService) *EventHandler {
	return &EventHandler{service: svc}
}

// List godoc
// @Summary List school events
// @Tags Events
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /events [get]
func (h *EventHandler) List(c *gin.Context) {
	events, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events, nil)
}

// Create godoc
// @Summary Create a school event
// @Tags Events
// @Accept json
// @Produce json
// @Param payload body service.EventRequest true "Event payload"
// @Success 201 {object} response.Envelope
// @Router /events [post]
func (h *EventHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid event payload"))
		return
	}
	event, err := h.service.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, event)
}

// Update godoc
// @Summary Update a school event
// @Tags Events
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param payload body service.EventRequest true "Event payload"
// @Success 200 {object} response.Envelope
// @Router /events/{id} [put]
func (h *EventHandler) Update(c *gin.Context) {
	var req service.EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid event payload"))
		return
	}
	event, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event, nil)
}

// Delete godoc
// @Summary Delete a school event
// @Tags Events
// @Param id path string true "Event ID"
// @Success 204 {object} response.Envelope
// @Router /events/{id} [delete]
func (h *EventHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
