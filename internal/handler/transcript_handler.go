package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tafita2023/inata-api/internal/models"
	"github.com/tafita2023/inata-api/internal/service"
	appErrors "github.com/tafita2023/inata-api/pkg/errors"
	"github.com/tafita2023/inata-api/pkg/response"
)

// TranscriptHandler wires HTTP endpoints to the transcript service.
type TranscriptHandler struct {
	service *service.TranscriptService
}

// NewTranscriptHandler creates a new handler.
func NewTranscriptHandler(svc *service.TranscriptService) *TranscriptHandler {
	return &TranscriptHandler{service: svc}
}

// Mine godoc
// @Summary Download the calling student's transcript
// @Tags Transcripts
// @Produce application/pdf
// @Success 200 {file} binary
// @Router /transcripts/mine [get]
func (h *TranscriptHandler) Mine(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	h.serve(c, claims.UserID)
}

// ByStudent godoc
// @Summary Download a student's transcript
// @Tags Transcripts
// @Produce application/pdf
// @Param id path string true "Student ID"
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Router /transcripts/{id} [get]
func (h *TranscriptHandler) ByStudent(c *gin.Context) {
	h.serve(c, c.Param("id"))
}

func (h *TranscriptHandler) serve(c *gin.Context, studentID string) {
	schoolYear := c.Query("school_year")
	if schoolYear == "" {
		schoolYear = models.SchoolYearLabel(time.Now().UTC())
	}

	pdf, err := h.service.Generate(c.Request.Context(), studentID, schoolYear)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=releve_%s.pdf", studentID))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
