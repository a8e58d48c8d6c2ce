package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tafita2023/inata-api/internal/service"
	"github.com/tafita2023/inata-api/pkg/response"
)

// PromotionHandler wires HTTP endpoints to the promotion service.
type PromotionHandler struct {
	service *service.PromotionService
}

// NewPromotionHandler creates a new handler.
func NewPromotionHandler(svc *service.PromotionService) *PromotionHandler {
	return &PromotionHandler{service: svc}
}

// PromoteAll godoc
// @Summary Run the end-of-year promotion batch
// @Description Move every passing student up a class, graduate the terminal class, keep the rest repeating
// @Tags Promotion
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /promotion [post]
func (h *PromotionHandler) PromoteAll(c *gin.Context) {
	result, err := h.service.PromoteAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
