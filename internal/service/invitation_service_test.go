package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tafita2023/inata-api/internal/models"
	appErrors "github.com/tafita2023/inata-api/pkg/errors"
)

type mockInvitationRepo struct {
	byToken map[string]*models.Invitation
	created []*models.Invitation
}

func (m *mockInvitationRepo) Create(ctx context.Context, invitation *models.Invitation) error {
	invitation.ID = "inv1"
	m.created = append(m.created, invitation)
	return nil
}

func (m *mockInvitationRepo) FindByToken(ctx context.Context, token string) (*models.Invitation, error) {
	invitation, ok := m.byToken[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return invitation, nil
}

func (m *mockInvitationRepo) List(ctx context.Context) ([]models.Invitation, error) {
	return nil, nil
}

type mockInvitationClasses struct {
	classes map[string]*models.Class
}

func (m *mockInvitationClasses) FindByID(ctx context.Context, id string) (*models.Class, error) {
	class, ok := m.classes[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return class, nil
}

func newInvitationFixture() (*InvitationService, *mockInvitationRepo) {
	repo := &mockInvitationRepo{byToken: map[string]*models.Invitation{}}
	classes := &mockInvitationClasses{classes: map[string]*models.Class{
		"c1": {ID: "c1", Level: "l1", Rank: 1, Active: true},
	}}
	return NewInvitationService(repo, classes, nil, nil), repo
}

func TestCreateInvitationForStudent(t *testing.T) {
	svc, repo := newInvitationFixture()

	invitation, err := svc.Create(context.Background(), CreateInvitationRequest{
		Role: string(models.RoleStudent), ClassID: strPtr("c1"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, invitation.Role)
	assert.NotEmpty(t, invitation.Token)
	require.Len(t, repo.created, 1)
}

func TestCreateInvitationStudentNeedsClass(t *testing.T) {
	svc, _ := newInvitationFixture()

	_, err := svc.Create(context.Background(), CreateInvitationRequest{Role: string(models.RoleStudent)})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCreateInvitationNeverGrantsAdmin(t *testing.T) {
	svc, _ := newInvitationFixture()

	_, err := svc.Create(context.Background(), CreateInvitationRequest{Role: string(models.RoleAdmin)})
	require.Error(t, err)
}

func TestCreateInvitationTeacherDropsClass(t *testing.T) {
	svc, repo := newInvitationFixture()

	invitation, err := svc.Create(context.Background(), CreateInvitationRequest{
		Role: string(models.RoleTeacher), ClassID: strPtr("c1"),
	})
	require.NoError(t, err)
	assert.Nil(t, invitation.ClassID)
	require.Len(t, repo.created, 1)
}

func TestInspectInvitation(t *testing.T) {
	svc, repo := newInvitationFixture()
	repo.byToken["tok"] = &models.Invitation{ID: "inv1", Token: "tok", Role: models.RoleStudent, ClassID: strPtr("c1")}

	preview, err := svc.Inspect(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, preview.Role)
	require.NotNil(t, preview.ClassLevel)
	assert.Equal(t, "l1", *preview.ClassLevel)
}

func TestInspectUsedInvitation(t *testing.T) {
	svc, repo := newInvitationFixture()
	repo.byToken["tok"] = &models.Invitation{ID: "inv1", Token: "tok", Role: models.RoleTeacher, Used: true}

	_, err := svc.Inspect(context.Background(), "tok")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestInspectUnknownInvitation(t *testing.T) {
	svc, _ := newInvitationFixture()

	_, err := svc.Inspect(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
