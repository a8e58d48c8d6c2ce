package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tafita2023/inata-api/internal/models"
)

// InvitationRepository manages single-use registration invitations.
type InvitationRepository struct {
	db *sqlx.DB
}

// NewInvitationRepository constructs an InvitationRepository.
func NewInvitationRepository(db *sqlx.DB) *InvitationRepository {
	return &InvitationRepository{db: db}
}

// Create inserts an invitation.
func (r *InvitationRepository) Create(ctx context.Context, invitation *models.Invitation) error {
	if invitation.ID == "" {
		invitation.ID = uuid.NewString()
	}
	if invitation.CreatedAt.IsZero() {
		invitation.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO invitations (id, token, role, class_id, used, created_at)
        VALUES (:id, :token, :role, :class_id, :used, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, invitation); err != nil {
		return fmt.Errorf("create invitation: %w", err)
	}
	return nil
}

// FindByToken fetches an invitation by its opaque token.
func (r *InvitationRepository) FindByToken(ctx context.Context, token string) (*models.Invitation, error) {
	const query = `SELECT id, token, role, class_id, used, created_at FROM invitations WHERE token = $1`
	var invitation models.Invitation
	if err := r.db.GetContext(ctx, &invitation, query, token); err != nil {
		return nil, err
	}
	return &invitation, nil
}

// MarkUsed consumes an invitation. The guard on used = false reports whether
// this call actually won the token.
func (r *InvitationRepository) MarkUsed(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, "UPDATE invitations SET used = true WHERE id = $1 AND used = false", id)
	if err != nil {
		return false, fmt.Errorf("mark invitation used: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark invitation used: %w", err)
	}
	return affected == 1, nil
}

// List returns invitations newest first.
func (r *InvitationRepository) List(ctx context.Context) ([]models.Invitation, error) {
	const query = `SELECT id, token, role, class_id, used, created_at FROM invitations ORDER BY created_at DESC`
	var invitations []models.Invitation
	if err := r.db.SelectContext(ctx, &invitations, query); err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	return invitations, nil
}
