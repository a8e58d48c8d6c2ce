package repository

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tafita2023/inata-api/internal/models"
)

func TestInvitationMarkUsedWinsOnce(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewInvitationRepository(db)

	mock.ExpectExec("UPDATE invitations SET used = true").
		WithArgs("inv1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	won, err := repo.MarkUsed(context.Background(), "inv1")
	require.NoError(t, err)
	assert.True(t, won)

	// A second consumer hits the used = false guard and loses.
	mock.ExpectExec("UPDATE invitations SET used = true").
		WithArgs("inv1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	won, err = repo.MarkUsed(context.Background(), "inv1")
	require.NoError(t, err)
	assert.False(t, won)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvitationCreateFillsDefaults(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewInvitationRepository(db)

	mock.ExpectExec("INSERT INTO invitations").WillReturnResult(sqlmock.NewResult(0, 1))

	invitation := &models.Invitation{Token: "tok", Role: models.RoleStudent}
	require.NoError(t, repo.Create(context.Background(), invitation))
	assert.NotEmpty(t, invitation.ID)
	assert.False(t, invitation.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}
