package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tafita2023/inata-api/internal/service"
	appErrors "github.com/tafita2023/inata-api/pkg/errors"
	"github.com/tafita2023/inata-api/pkg/response"
)

// RoomHandler wires HTTP endpoints to the room service.
type RoomHandler struct {
	service *service.RoomService
}

// NewRoomHandler creates a new handler.
func NewRoomHandler(svc *service.RoomService) *RoomHandler {
	return &RoomHandler{service: svc}
}

// List godoc
// @Summary List rooms
// @Tags Rooms
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /rooms [get]
func (h *RoomHandler) List(c *gin.Context) {
	rooms, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rooms, nil)
}

// Create godoc
// @Summary Create a room
// @Tags Rooms
// @Accept json
// @Produce json
// @Param payload body service.RoomRequest true "Room payload"
// @Success 201 {object} response.Envelope
// @Router /rooms [post]
func (h *RoomHandler) Create(c *gin.Context) {
	var req service.RoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid room payload"))
		return
	}
	room, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, room)
}

// Update godoc
// @Summary Update a room
// @Tags Rooms
// @Accept json
// @Produce json
// @Param id path string true "Room ID"
// @Param payload body service.RoomRequest true "Room payload"
// @Success 200 {object} response.Envelope
// @Router /rooms/{id} [put]
func (h *RoomHandler) Update(c *gin.Context) {
	var req service.RoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid room payload"))
		return
	}
	room, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, room, nil)
}

// Delete godoc
// @Summary Delete a room
// @Tags Rooms
// @Param id path string true "Room ID"
// @Success 204 {object} response.Envelope
// @Router /rooms/{id} [delete]
func (h *RoomHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
