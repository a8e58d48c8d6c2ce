package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tafita2023/inata-api/internal/service"
	appErrors "github.com/tafita2023/inata-api/pkg/errors"
	"github.com/tafita2023/inata-api/pkg/response"
)

// InvitationHandler wires HTTP endpoints to the invitation service.
type InvitationHandler struct {
	service *service.InvitationService
}

// NewInvitationHandler creates a new handler.
func NewInvitationHandler(svc *service.InvitationService) *InvitationHandler {
	return &InvitationHandler{service: svc}
}

// Create godoc
// @Summary Issue an invitation
// @Description Issue a single-use registration token for a teacher or student
// @Tags Invitations
// @Accept json
// @Produce json
// @Param payload body service.CreateInvitationRequest true "Invitation payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /invitations [post]
func (h *InvitationHandler) Create(c *gin.Context) {
	var req service.CreateInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid invitation payload"))
		return
	}
	invitation, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, invitation)
}

// Inspect godoc
// @Summary Preview an invitation
// @Description Resolve a registration token to the role and class it grants
// @Tags Invitations
// @Produce json
// @Param token path string true "Invitation token"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /auth/register/{token} [get]
func (h *InvitationHandler) Inspect(c *gin.Context) {
	preview, err := h.service.Inspect(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, preview, nil)
}

// List godoc
// @Summary List invitations
// @Tags Invitations
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /invitations [get]
func (h *InvitationHandler) List(c *gin.Context) {
	invitations, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, invitations, nil)
}
