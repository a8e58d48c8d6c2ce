package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/tafita2023/inata-api/internal/models"
	appErrors "github.com/tafita2023/inata-api/pkg/errors"
)

type gradeRepository interface {
	ListEvaluations(ctx context.Context, subjectID string) ([]models.Evaluation, error)
	FindEvaluation(ctx context.Context, id string) (*models.Evaluation, error)
	CreateEvaluation(ctx context.Context, evaluation *models.Evaluation) error
	UpdateEvaluation(ctx context.Context, evaluation *models.Evaluation) error
	DeleteEvaluation(ctx context.Context, id string) error
	ListByStudent(ctx context.Context, studentID string) ([]models.GradeDetail, error)
	ListByEvaluation(ctx context.Context, evaluationID string) ([]models.GradeDetail, error)
	ListDetails(ctx context.Context, filter models.GradeFilter) ([]models.GradeDetail, error)
	Upsert(ctx context.Context, grade *models.Grade) error
	Delete(ctx context.Context, id string) error
}

type gradeSubjectRepository interface {
	FindByID(ctx context.Context, id string) (*models.SubjectDetail, error)
}

type gradeStudentRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// EvaluationRequest creates or updates a graded test.
type EvaluationRequest struct {
	Name      string    `json:"name" validate:"required"`
	SubjectID string    `json:"subject_id" validate:"required"`
	Semester  int       `json:"semester" validate:"required,min=1,max=2"`
	Kind      string    `json:"kind" validate:"required,oneof=assignment exam"`
	Date      time.Time `json:"date" validate:"required"`
}

// GradeRequest records one student's result on an evaluation.
type GradeRequest struct {
	StudentID    string  `json:"student_id" validate:"required"`
	EvaluationID string  `json:"evaluation_id" validate:"required"`
	Value        float64 `json:"value" validate:"min=0,max=20"`
	Remark       string  `json:"remark"`
}

// GradeService manages evaluations and grades. Teachers may only touch the
// subjects they teach; administrators may touch everything.
type GradeService struct {
	repo      gradeRepository
	subjects  gradeSubjectRepository
	students  gradeStudentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGradeService constructs a GradeService instance.
func NewGradeService(repo gradeRepository, subjects gradeSubjectRepository, students gradeStudentRepository, validate *validator.Validate, logger *zap.Logger) *GradeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &GradeService{repo: repo, subjects: subjects, students: students, validator: validate, logger: logger}
}

// ListEvaluations returns evaluations, optionally for one subject.
func (s *GradeService) ListEvaluations(ctx context.Context, subjectID string) ([]models.Evaluation, error) {
	evaluations, err := s.repo.ListEvaluations(ctx, subjectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list evaluations")
	}
	return evaluations, nil
}

// CreateEvaluation adds a graded test for a subject the actor teaches.
func (s *GradeService) CreateEvaluation(ctx context.Context, actor *models.JWTClaims, req EvaluationRequest) (*models.Evaluation, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid evaluation payload")
	}
	if err := s.authorizeSubject(ctx, actor, req.SubjectID); err != nil {
		return nil, err
	}

	evaluation := &models.Evaluation{
		Name:      req.Name,
		SubjectID: req.SubjectID,
		Semester:  req.Semester,
		Kind:      models.EvaluationKind(req.Kind),
		Date:      req.Date,
	}
	if err := s.repo.CreateEvaluation(ctx, evaluation); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create evaluation")
	}
	return evaluation, nil
}

// UpdateEvaluation rewrites a graded test.
func (s *GradeService) UpdateEvaluation(ctx context.Context, actor *models.JWTClaims, id string, req EvaluationRequest) (*models.Evaluation, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid evaluation payload")
	}
	evaluation, err := s.findEvaluation(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeSubject(ctx, actor, evaluation.SubjectID); err != nil {
		return nil, err
	}

	evaluation.Name = req.Name
	evaluation.Semester = req.Semester
	evaluation.Kind = models.EvaluationKind(req.Kind)
	evaluation.Date = req.Date
	if err := s.repo.UpdateEvaluation(ctx, evaluation); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update evaluation")
	}
	return evaluation, nil
}

// DeleteEvaluation removes a graded test and its grades.
func (s *GradeService) DeleteEvaluation(ctx context.Context, actor *models.JWTClaims, id string) error {
	evaluation, err := s.findEvaluation(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorizeSubject(ctx, actor, evaluation.SubjectID); err != nil {
		return err
	}
	if err := s.repo.DeleteEvaluation(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete evaluation")
	}
	return nil
}

// Record upserts one grade. A second call for the same (student, evaluation)
// replaces the earlier value.
func (s *GradeService) Record(ctx context.Context, actor *models.JWTClaims, req GradeRequest) (*models.Grade, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}

	evaluation, err := s.findEvaluation(ctx, req.EvaluationID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeSubject(ctx, actor, evaluation.SubjectID); err != nil {
		return nil, err
	}

	student, err := s.students.FindByID(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if student.Role != models.RoleStudent {
		return nil, appErrors.Clone(appErrors.ErrValidation, "grades can only target students")
	}

	grade := &models.Grade{
		StudentID:    req.StudentID,
		EvaluationID: req.EvaluationID,
		Value:        req.Value,
		Remark:       req.Remark,
	}
	if err := s.repo.Upsert(ctx, grade); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record grade")
	}
	return grade, nil
}

// Delete removes one grade.
func (s *GradeService) Delete(ctx context.Context, actor *models.JWTClaims, gradeID, evaluationID string) error {
	evaluation, err := s.findEvaluation(ctx, evaluationID)
	if err != nil {
		return err
	}
	if err := s.authorizeSubject(ctx, actor, evaluation.SubjectID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, gradeID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete grade")
	}
	return nil
}

// ListMine returns the calling student's own grades.
func (s *GradeService) ListMine(ctx context.Context, studentID string) ([]models.GradeDetail, error) {
	grades, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grades")
	}
	return grades, nil
}

// ListByEvaluation returns the roster of grades for one evaluation.
func (s *GradeService) ListByEvaluation(ctx context.Context, actor *models.JWTClaims, evaluationID string) ([]models.GradeDetail, error) {
	evaluation, err := s.findEvaluation(ctx, evaluationID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeSubject(ctx, actor, evaluation.SubjectID); err != nil {
		return nil, err
	}
	grades, err := s.repo.ListByEvaluation(ctx, evaluationID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grades")
	}
	return grades, nil
}

// ListAll returns grades matching the admin filter.
func (s *GradeService) ListAll(ctx context.Context, filter models.GradeFilter) ([]models.GradeDetail, error) {
	grades, err := s.repo.ListDetails(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grades")
	}
	return grades, nil
}

func (s *GradeService) findEvaluation(ctx context.Context, id string) (*models.Evaluation, error) {
	evaluation, err := s.repo.FindEvaluation(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "evaluation not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load evaluation")
	}
	return evaluation, nil
}

// authorizeSubject lets admins through and teachers only onto their own
// subjects.
func (s *GradeService) authorizeSubject(ctx context.Context, actor *models.JWTClaims, subjectID string) error {
	if actor == nil {
		return appErrors.Clone(appErrors.ErrUnauthorized, "missing credentials")
	}
	if actor.Role == models.RoleAdmin {
		return nil
	}
	if actor.Role != models.RoleTeacher {
		return appErrors.Clone(appErrors.ErrForbidden, "grading requires the teacher role")
	}
	subject, err := s.subjects.FindByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}
	if subject.TeacherID != actor.UserID {
		return appErrors.Clone(appErrors.ErrForbidden, "subject is taught by another teacher")
	}
	return nil
}
