package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tafita2023/inata-api/internal/models"
	"github.com/tafita2023/inata-api/internal/service"
	appErrors "github.com/tafita2023/inata-api/pkg/errors"
	"github.com/tafita2023/inata-api/pkg/response"
)

// GradeHandler wires HTTP endpoints to the grade service.
type GradeHandler struct {
	service *service.GradeService
}

// NewGradeHandler creates a new handler.
func NewGradeHandler(svc *service.GradeService) *GradeHandler {
	return &GradeHandler{service: svc}
}

// ListEvaluations godoc
// @Summary List evaluations
// @Tags Grades
// @Produce json
// @Param subject_id query string false "Subject filter"
// @Success 200 {object} response.Envelope
// @Router /evaluations [get]
func (h *GradeHandler) ListEvaluations(c *gin.Context) {
	evaluations, err := h.service.ListEvaluations(c.Request.Context(), c.Query("subject_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, evaluations, nil)
}

// CreateEvaluation godoc
// @Summary Create an evaluation
// @Tags Grades
// @Accept json
// @Produce json
// @Param payload body service.EvaluationRequest true "Evaluation payload"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /evaluations [post]
func (h *GradeHandler) CreateEvaluation(c *gin.Context) {
	var req service.EvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid evaluation payload"))
		return
	}
	evaluation, err := h.service.CreateEvaluation(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, evaluation)
}

// UpdateEvaluation godoc
// @Summary Update an evaluation
// @Tags Grades
// @Accept json
// @Produce json
// @Param id path string true "Evaluation ID"
// @Param payload body service.EvaluationRequest true "Evaluation payload"
// @Success 200 {object} response.Envelope
// @Router /evaluations/{id} [put]
func (h *GradeHandler) UpdateEvaluation(c *gin.Context) {
	var req service.EvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid evaluation payload"))
		return
	}
	evaluation, err := h.service.UpdateEvaluation(c.Request.Context(), claimsFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, evaluation, nil)
}

// DeleteEvaluation godoc
// @Summary Delete an evaluation
// @Tags Grades
// @Param id path string true "Evaluation ID"
// @Success 204 {object} response.Envelope
// @Router /evaluations/{id} [delete]
func (h *GradeHandler) DeleteEvaluation(c *gin.Context) {
	if err := h.service.DeleteEvaluation(c.Request.Context(), claimsFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListByEvaluation godoc
// @Summary Grades of one evaluation
// @Tags Grades
// @Produce json
// @Param id path string true "Evaluation ID"
// @Success 200 {object} response.Envelope
// @Router /evaluations/{id}/grades [get]
func (h *GradeHandler) ListByEvaluation(c *gin.Context) {
	grades, err := h.service.ListByEvaluation(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grades, nil)
}

// Record godoc
// @Summary Record a grade
// @Description Record or replace a student's grade on an evaluation
// @Tags Grades
// @Accept json
// @Produce json
// @Param payload body service.GradeRequest true "Grade payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /grades [post]
func (h *GradeHandler) Record(c *gin.Context) {
	var req service.GradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid grade payload"))
		return
	}
	grade, err := h.service.Record(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grade, nil)
}

// Delete godoc
// @Summary Delete a grade
// @Tags Grades
// @Param id path string true "Grade ID"
// @Param evaluation_id query string true "Evaluation ID"
// @Success 204 {object} response.Envelope
// @Router /grades/{id} [delete]
func (h *GradeHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), claimsFromContext(c), c.Param("id"), c.Query("evaluation_id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Mine godoc
// @Summary Grades of the calling student
// @Tags Grades
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /grades/mine [get]
func (h *GradeHandler) Mine(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	grades, err := h.service.ListMine(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grades, nil)
}

// ListAll godoc
// @Summary List grades across the school
// @Tags Grades
// @Produce json
// @Param class_id query string false "Class filter"
// @Param subject_id query string false "Subject filter"
// @Param enrollment_year query int false "Enrollment year filter"
// @Success 200 {object} response.Envelope
// @Router /grades [get]
func (h *GradeHandler) ListAll(c *gin.Context) {
	filter := models.GradeFilter{
		ClassID:   c.Query("class_id"),
		SubjectID: c.Query("subject_id"),
	}
	if year := c.Query("enrollment_year"); year != "" {
		filter.EnrollmentYear, _ = strconv.Atoi(year)
	}
	grades, err := h.service.ListAll(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grades, nil)
}
