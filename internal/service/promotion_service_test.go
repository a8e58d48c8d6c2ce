package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tafita2023/inata-api/internal/models"
)

type mockPromotionUsers struct {
	students     []models.User
	promoted     map[string]string
	years        map[string]int
	graduated    []string
	promoteErrID string
}

func (m *mockPromotionUsers) ListActiveStudents(ctx context.Context) ([]models.User, error) {
	return m.students, nil
}

func (m *mockPromotionUsers) Promote(ctx context.Context, id, classID string, year int) error {
	if id == m.promoteErrID {
		return errors.New("boom")
	}
	if m.promoted == nil {
		m.promoted = make(map[string]string)
		m.years = make(map[string]int)
	}
	m.promoted[id] = classID
	m.years[id] = year
	return nil
}

func (m *mockPromotionUsers) Graduate(ctx context.Context, id string) error {
	m.graduated = append(m.graduated, id)
	return nil
}

type mockPromotionClasses struct {
	classes map[string]*models.Class
}

func (m *mockPromotionClasses) FindByID(ctx context.Context, id string) (*models.Class, error) {
	class, ok := m.classes[id]
	if !ok {
		return nil, errors.New("class not found")
	}
	return class, nil
}

func (m *mockPromotionClasses) FindNextByRank(ctx context.Context, rank int) (*models.Class, error) {
	var next *models.Class
	for _, class := range m.classes {
		if class.Rank > rank && (next == nil || class.Rank < next.Rank) {
			next = class
		}
	}
	return next, nil
}

type mockPromotionGrades struct {
	values map[string][]float64
}

func (m *mockPromotionGrades) ListValuesByStudent(ctx context.Context, studentID string) ([]float64, error) {
	return m.values[studentID], nil
}

func strPtr(s string) *string { return &s }

func TestPromoteAllOutcomes(t *testing.T) {
	classes := &mockPromotionClasses{classes: map[string]*models.Class{
		"l1": {ID: "l1", Level: "L1", Rank: 1, Active: true},
		"l2": {ID: "l2", Level: "L2", Rank: 2, Active: true},
		"l3": {ID: "l3", Level: "L3", Rank: 3, Active: true},
	}}
	users := &mockPromotionUsers{students: []models.User{
		{ID: "pass", FirstName: "A", LastName: "PASSES", Role: models.RoleStudent, ClassID: strPtr("l1"), EnrollmentYear: 2023},
		{ID: "repeat", FirstName: "B", LastName: "REPEATS", Role: models.RoleStudent, ClassID: strPtr("l1"), EnrollmentYear: 2023},
		{ID: "grad", FirstName: "C", LastName: "FINISHES", Role: models.RoleStudent, ClassID: strPtr("l3"), EnrollmentYear: 2023},
		{ID: "empty", FirstName: "D", LastName: "ABSENT", Role: models.RoleStudent, ClassID: strPtr("l2"), EnrollmentYear: 2023},
		{ID: "lost", FirstName: "E", LastName: "UNASSIGNED", Role: models.RoleStudent, EnrollmentYear: 2023},
	}}
	grades := &mockPromotionGrades{values: map[string][]float64{
		"pass":   {12, 14, 16},
		"repeat": {8, 9},
		"grad":   {15, 17},
	}}

	svc := NewPromotionService(users, classes, grades, zap.NewNop())
	result, err := svc.PromoteAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Promoted)
	assert.Equal(t, 1, result.Repeating)
	assert.Equal(t, 1, result.Graduated)
	assert.Equal(t, "l2", users.promoted["pass"])
	assert.Equal(t, []string{"grad"}, users.graduated)

	// A student with no recorded grades is reported, not silently held back.
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "ABSENT D")
	assert.Contains(t, result.Errors[0], "no grades found")
	assert.Contains(t, result.Errors[1], "UNASSIGNED E")
	assert.Contains(t, result.Errors[1], "no class assigned")
}

func TestPromoteAllIncrementsEnrollmentYear(t *testing.T) {
	classes := &mockPromotionClasses{classes: map[string]*models.Class{
		"l1": {ID: "l1", Rank: 1},
		"l2": {ID: "l2", Rank: 2},
	}}
	users := &mockPromotionUsers{students: []models.User{
		{ID: "old", FirstName: "O", LastName: "TIMER", Role: models.RoleStudent, ClassID: strPtr("l1"), EnrollmentYear: 2019},
	}}
	grades := &mockPromotionGrades{values: map[string][]float64{"old": {13}}}

	svc := NewPromotionService(users, classes, grades, zap.NewNop())
	result, err := svc.PromoteAll(context.Background())
	require.NoError(t, err)

	// The year moves by exactly one from the student's own enrollment year,
	// not from the calendar.
	require.Equal(t, 1, result.Promoted)
	assert.Equal(t, 2020, users.years["old"])
}

func TestPromoteAllBoundaryMean(t *testing.T) {
	classes := &mockPromotionClasses{classes: map[string]*models.Class{
		"l1": {ID: "l1", Rank: 1},
		"l2": {ID: "l2", Rank: 2},
	}}
	users := &mockPromotionUsers{students: []models.User{
		{ID: "edge", FirstName: "E", LastName: "EDGE", Role: models.RoleStudent, ClassID: strPtr("l1")},
	}}
	grades := &mockPromotionGrades{values: map[string][]float64{"edge": {10, 10}}}

	svc := NewPromotionService(users, classes, grades, zap.NewNop())
	result, err := svc.PromoteAll(context.Background())
	require.NoError(t, err)

	// A mean of exactly the passing bar promotes.
	assert.Equal(t, 1, result.Promoted)
	assert.Equal(t, 0, result.Repeating)
}

func TestPromoteAllBatchSurvivesFailure(t *testing.T) {
	classes := &mockPromotionClasses{classes: map[string]*models.Class{
		"l1": {ID: "l1", Rank: 1},
		"l2": {ID: "l2", Rank: 2},
	}}
	users := &mockPromotionUsers{
		students: []models.User{
			{ID: "bad", FirstName: "A", LastName: "FAILS", Role: models.RoleStudent, ClassID: strPtr("l1")},
			{ID: "good", FirstName: "B", LastName: "WORKS", Role: models.RoleStudent, ClassID: strPtr("l1")},
		},
		promoteErrID: "bad",
	}
	grades := &mockPromotionGrades{values: map[string][]float64{
		"bad":  {14},
		"good": {14},
	}}

	svc := NewPromotionService(users, classes, grades, zap.NewNop())
	result, err := svc.PromoteAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Promoted)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "FAILS A")
}
