package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tafita2023/inata-api/internal/models"
	"github.com/tafita2023/inata-api/internal/service"
	appErrors "github.com/tafita2023/inata-api/pkg/errors"
	"github.com/tafita2023/inata-api/pkg/response"
)

// AssignmentHandler wires HTTP endpoints to the assignment service.
type AssignmentHandler struct {
	service *service.AssignmentService
	users   *service.UserService
}

// NewAssignmentHandler creates a new handler.
func NewAssignmentHandler(svc *service.AssignmentService, users *service.UserService) *AssignmentHandler {
	return &AssignmentHandler{service: svc, users: users}
}

// List godoc
// @Summary List assignments
// @Description Students see their own class; other roles may filter by class
// @Tags Assignments
// @Produce json
// @Param class_id query string false "Class filter"
// @Param kind query string false "homework or exam"
// @Success 200 {object} response.Envelope
// @Router /assignments [get]
func (h *AssignmentHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	classID := c.Query("class_id")
	if claims.Role == models.RoleStudent {
		user, err := h.users.Get(c.Request.Context(), claims.UserID)
		if err != nil {
			response.Error(c, err)
			return
		}
		if user.ClassID == nil {
			response.Error(c, appErrors.ErrNoClass)
			return
		}
		classID = *user.ClassID
	}
	views, err := h.service.List(c.Request.Context(), classID, models.AssignmentKind(c.Query("kind")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, views, nil)
}

// Publish godoc
// @Summary Publish an assignment
// @Description Multipart form with the assignment fields and an optional file
// @Tags Assignments
// @Accept multipart/form-data
// @Produce json
// @Param title formData string true "Title"
// @Param subject_id formData string true "Subject ID"
// @Param kind formData string true "homework or exam"
// @Param description formData string false "Description"
// @Param deadline formData string false "RFC 3339 deadline"
// @Param file formData file false "Hand-out file"
// @Success 201 {object} response.Envelope
// @Router /assignments [post]
func (h *AssignmentHandler) Publish(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	req := service.CreateAssignmentRequest{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		SubjectID:   c.PostForm("subject_id"),
		Kind:        c.PostForm("kind"),
	}
	if raw := c.PostForm("deadline"); raw != "" {
		deadline, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "deadline must be an RFC 3339 timestamp"))
			return
		}
		req.Deadline = &deadline
	}

	var filename string
	var reader io.Reader
	if fileHeader, err := c.FormFile("file"); err == nil {
		src, err := fileHeader.Open()
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unable to read uploaded file"))
			return
		}
		defer src.Close()
		filename = fileHeader.Filename
		reader = src
	}

	assignment, err := h.service.Publish(c.Request.Context(), claims, req, filename, reader)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}

// Download godoc
// @Summary Download an assignment file
// @Tags Assignments
// @Param id path string true "Assignment ID"
// @Success 200 {file} binary
// @Router /assignments/{id}/file [get]
func (h *AssignmentHandler) Download(c *gin.Context) {
	path, err := h.service.FilePath(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.File(path)
}

// Delete godoc
// @Summary Delete an assignment
// @Tags Assignments
// @Param id path string true "Assignment ID"
// @Success 204 {object} response.Envelope
// @Router /assignments/{id} [delete]
func (h *AssignmentHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.service.Delete(c.Request.Context(), claims, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
