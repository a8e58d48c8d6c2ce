package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tafita2023/inata-api/internal/models"
	"github.com/tafita2023/inata-api/pkg/export"
)

type mockTranscriptGrades struct {
	grades []models.TranscriptGrade
}

func (m *mockTranscriptGrades) TranscriptGrades(ctx context.Context, studentID string) ([]models.TranscriptGrade, error) {
	return m.grades, nil
}

type mockTranscriptUsers struct {
	user *models.User
}

func (m *mockTranscriptUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	return m.user, nil
}

type mockTranscriptClasses struct {
	class *models.Class
}

func (m *mockTranscriptClasses) FindByID(ctx context.Context, id string) (*models.Class, error) {
	return m.class, nil
}

func TestGroupTranscriptUnits(t *testing.T) {
	unitA := "UE Informatique"
	unitB := "UE Mathématiques"
	grades := []models.TranscriptGrade{
		{UnitName: &unitA, SubjectName: "Algorithmique", Value: 14},
		{UnitName: &unitA, SubjectName: "Base de données", Value: 12},
		{UnitName: &unitB, SubjectName: "Analyse", Value: 11},
		{UnitName: nil, SubjectName: "Anglais", Value: 15},
	}

	units := groupTranscriptUnits(grades)
	require.Len(t, units, 3)

	assert.Equal(t, "UE Informatique", units[0].Name)
	require.Len(t, units[0].Rows, 2)
	assert.Equal(t, "Algorithmique", units[0].Rows[0].Subject)
	assert.Equal(t, "Base de données", units[0].Rows[1].Subject)

	assert.Equal(t, "UE Mathématiques", units[1].Name)
	require.Len(t, units[1].Rows, 1)

	// A subject without a unit stands alone under its own name.
	assert.Equal(t, "Anglais", units[2].Name)
	require.Len(t, units[2].Rows, 1)
	assert.Equal(t, 15.0, units[2].Rows[0].Value)
}

func TestGroupTranscriptUnitsEmpty(t *testing.T) {
	assert.Empty(t, groupTranscriptUnits(nil))
}

func TestTranscriptGenerate(t *testing.T) {
	unit := "UE Informatique"
	grades := &mockTranscriptGrades{grades: []models.TranscriptGrade{
		{UnitName: &unit, SubjectName: "Algorithmique", Value: 14},
	}}
	users := &mockTranscriptUsers{user: &models.User{ID: "s1", FirstName: "Naly", LastName: "RABE", Role: models.RoleStudent, ClassID: strPtr("c1")}}
	classes := &mockTranscriptClasses{class: &models.Class{ID: "c1", Level: "L2"}}
	renderer := export.NewTranscriptRenderer(export.Letterhead{InstitutionName: "INATA", Program: "Informatique"})

	svc := NewTranscriptService(grades, users, classes, renderer, zap.NewNop())
	pdf, err := svc.Generate(context.Background(), "s1", "2025-2026")
	require.NoError(t, err)
	require.NotEmpty(t, pdf)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}
