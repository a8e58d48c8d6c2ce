package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tafita2023/inata-api/internal/models"
	appErrors "github.com/tafita2023/inata-api/pkg/errors"
)

type mockGradeRepo struct {
	evaluations map[string]*models.Evaluation
	created     []*models.Evaluation
	upserted    []*models.Grade
	deleted     []string
}

func (m *mockGradeRepo) ListEvaluations(ctx context.Context, subjectID string) ([]models.Evaluation, error) {
	return nil, nil
}

func (m *mockGradeRepo) FindEvaluation(ctx context.Context, id string) (*models.Evaluation, error) {
	evaluation, ok := m.evaluations[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return evaluation, nil
}

func (m *mockGradeRepo) CreateEvaluation(ctx context.Context, evaluation *models.Evaluation) error {
	m.created = append(m.created, evaluation)
	return nil
}

func (m *mockGradeRepo) UpdateEvaluation(ctx context.Context, evaluation *models.Evaluation) error {
	return nil
}

func (m *mockGradeRepo) DeleteEvaluation(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockGradeRepo) ListByStudent(ctx context.Context, studentID string) ([]models.GradeDetail, error) {
	return nil, nil
}

func (m *mockGradeRepo) ListByEvaluation(ctx context.Context, evaluationID string) ([]models.GradeDetail, error) {
	return nil, nil
}

func (m *mockGradeRepo) ListDetails(ctx context.Context, filter models.GradeFilter) ([]models.GradeDetail, error) {
	return nil, nil
}

func (m *mockGradeRepo) Upsert(ctx context.Context, grade *models.Grade) error {
	m.upserted = append(m.upserted, grade)
	return nil
}

func (m *mockGradeRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

type mockGradeSubjects struct {
	subject *models.SubjectDetail
}

func (m *mockGradeSubjects) FindByID(ctx context.Context, id string) (*models.SubjectDetail, error) {
	if m.subject == nil {
		return nil, sql.ErrNoRows
	}
	return m.subject, nil
}

type mockGradeStudents struct {
	user *models.User
}

func (m *mockGradeStudents) FindByID(ctx context.Context, id string) (*models.User, error) {
	if m.user == nil {
		return nil, sql.ErrNoRows
	}
	return m.user, nil
}

func teacherClaims(id string) *models.JWTClaims {
	return &models.JWTClaims{UserID: id, Role: models.RoleTeacher}
}

func adminClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "admin", Role: models.RoleAdmin}
}

func TestCreateEvaluationOwnSubject(t *testing.T) {
	repo := &mockGradeRepo{}
	subjects := &mockGradeSubjects{subject: &models.SubjectDetail{Subject: models.Subject{ID: "sub1", TeacherID: "t1"}}}
	svc := NewGradeService(repo, subjects, &mockGradeStudents{}, validator.New(), zap.NewNop())

	evaluation, err := svc.CreateEvaluation(context.Background(), teacherClaims("t1"), EvaluationRequest{
		Name: "Examen final", SubjectID: "sub1", Semester: 2, Kind: "exam", Date: time.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, models.EvaluationKind("exam"), evaluation.Kind)
	require.Len(t, repo.created, 1)
}

func TestCreateEvaluationForeignSubject(t *testing.T) {
	subjects := &mockGradeSubjects{subject: &models.SubjectDetail{Subject: models.Subject{ID: "sub1", TeacherID: "other"}}}
	svc := NewGradeService(&mockGradeRepo{}, subjects, &mockGradeStudents{}, validator.New(), zap.NewNop())

	_, err := svc.CreateEvaluation(context.Background(), teacherClaims("t1"), EvaluationRequest{
		Name: "Examen final", SubjectID: "sub1", Semester: 2, Kind: "exam", Date: time.Now(),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestCreateEvaluationAdminBypassesOwnership(t *testing.T) {
	repo := &mockGradeRepo{}
	subjects := &mockGradeSubjects{subject: &models.SubjectDetail{Subject: models.Subject{ID: "sub1", TeacherID: "other"}}}
	svc := NewGradeService(repo, subjects, &mockGradeStudents{}, validator.New(), zap.NewNop())

	_, err := svc.CreateEvaluation(context.Background(), adminClaims(), EvaluationRequest{
		Name: "Examen final", SubjectID: "sub1", Semester: 1, Kind: "assignment", Date: time.Now(),
	})
	require.NoError(t, err)
	require.Len(t, repo.created, 1)
}

func TestCreateEvaluationRejectsBadKind(t *testing.T) {
	svc := NewGradeService(&mockGradeRepo{}, &mockGradeSubjects{}, &mockGradeStudents{}, validator.New(), zap.NewNop())

	_, err := svc.CreateEvaluation(context.Background(), adminClaims(), EvaluationRequest{
		Name: "Quiz", SubjectID: "sub1", Semester: 1, Kind: "quiz", Date: time.Now(),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRecordGrade(t *testing.T) {
	repo := &mockGradeRepo{evaluations: map[string]*models.Evaluation{
		"e1": {ID: "e1", SubjectID: "sub1", Semester: 2, Kind: "exam"},
	}}
	subjects := &mockGradeSubjects{subject: &models.SubjectDetail{Subject: models.Subject{ID: "sub1", TeacherID: "t1"}}}
	students := &mockGradeStudents{user: &models.User{ID: "s1", Role: models.RoleStudent}}
	svc := NewGradeService(repo, subjects, students, validator.New(), zap.NewNop())

	grade, err := svc.Record(context.Background(), teacherClaims("t1"), GradeRequest{
		StudentID: "s1", EvaluationID: "e1", Value: 15.5, Remark: "Bien",
	})
	require.NoError(t, err)
	assert.Equal(t, 15.5, grade.Value)
	require.Len(t, repo.upserted, 1)
}

func TestRecordGradeRejectsNonStudent(t *testing.T) {
	repo := &mockGradeRepo{evaluations: map[string]*models.Evaluation{
		"e1": {ID: "e1", SubjectID: "sub1"},
	}}
	subjects := &mockGradeSubjects{subject: &models.SubjectDetail{Subject: models.Subject{ID: "sub1", TeacherID: "t1"}}}
	students := &mockGradeStudents{user: &models.User{ID: "x1", Role: models.RoleTeacher}}
	svc := NewGradeService(repo, subjects, students, validator.New(), zap.NewNop())

	_, err := svc.Record(context.Background(), teacherClaims("t1"), GradeRequest{
		StudentID: "x1", EvaluationID: "e1", Value: 10,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.upserted)
}

func TestRecordGradeRejectsOutOfScale(t *testing.T) {
	svc := NewGradeService(&mockGradeRepo{}, &mockGradeSubjects{}, &mockGradeStudents{}, validator.New(), zap.NewNop())

	_, err := svc.Record(context.Background(), adminClaims(), GradeRequest{
		StudentID: "s1", EvaluationID: "e1", Value: 21,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRecordGradeUnknownEvaluation(t *testing.T) {
	svc := NewGradeService(&mockGradeRepo{}, &mockGradeSubjects{}, &mockGradeStudents{}, validator.New(), zap.NewNop())

	_, err := svc.Record(context.Background(), adminClaims(), GradeRequest{
		StudentID: "s1", EvaluationID: "missing", Value: 10,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
