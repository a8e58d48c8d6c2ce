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
	"golang.org/x/crypto/bcrypt"

	"github.com/tafita2023/inata-api/internal/models"
	appErrors "github.com/tafita2023/inata-api/pkg/errors"
)

type mockAuthRepo struct {
	userByEmail       *models.User
	userByID          *models.User
	emailTaken        bool
	createdUsers      []*models.User
	refreshTokens     map[string]*models.RefreshToken
	updatePasswordErr error
	auditLogs         []*models.AuditLog
	lastLoginUpdated  bool
	revokedAll        bool
}

func (m *mockAuthRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.userByEmail == nil {
		return nil, sql.ErrNoRows
	}
	return m.userByEmail, nil
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if m.userByID != nil {
		return m.userByID, nil
	}
	if m.userByEmail != nil {
		return m.userByEmail, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	return m.emailTaken, nil
}

func (m *mockAuthRepo) Create(ctx context.Context, user *models.User) error {
	m.createdUsers = append(m.createdUsers, user)
	m.userByEmail = user
	return nil
}

func (m *mockAuthRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLoginUpdated = true
	return nil
}

func (m *mockAuthRepo) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	if m.updatePasswordErr != nil {
		return m.updatePasswordErr
	}
	if m.userByEmail != nil && m.userByEmail.ID == id {
		m.userByEmail.PasswordHash = passwordHash
	}
	return nil
}

func (m *mockAuthRepo) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	m.revokedAll = true
	return nil
}

func (m *mockAuthRepo) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if m.refreshTokens == nil {
		m.refreshTokens = make(map[string]*models.RefreshToken)
	}
	m.refreshTokens[token.Token] = token
	return nil
}

func (m *mockAuthRepo) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	rt, ok := m.refreshTokens[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return rt, nil
}

func (m *mockAuthRepo) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	for _, token := range m.refreshTokens {
		if token.ID == id {
			token.Revoked = true
			token.RevokedAt = &revokedAt
		}
	}
	return nil
}

func (m *mockAuthRepo) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.auditLogs = append(m.auditLogs, log)
	return nil
}

type mockAuthInvitations struct {
	invitation *models.Invitation
	markUsedOK bool
	marked     []string
}

func (m *mockAuthInvitations) FindByToken(ctx context.Context, token string) (*models.Invitation, error) {
	if m.invitation == nil || m.invitation.Token != token {
		return nil, sql.ErrNoRows
	}
	return m.invitation, nil
}

func (m *mockAuthInvitations) MarkUsed(ctx context.Context, id string) (bool, error) {
	m.marked = append(m.marked, id)
	return m.markUsedOK, nil
}

func testAuthConfig() AuthConfig {
	return AuthConfig{
		AccessTokenSecret:  "secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "inata-api",
	}
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	password, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	repo := &mockAuthRepo{userByEmail: &models.User{ID: "u1", Email: "user@example.com", PasswordHash: string(password), Active: true, Role: models.RoleAdmin}}
	svc := NewAuthService(repo, &mockAuthInvitations{}, validator.New(), zap.NewNop(), testAuthConfig())

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "user@example.com", Password: "password"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)
	assert.True(t, repo.lastLoginUpdated)
	assert.NotEmpty(t, repo.refreshTokens)
	assert.NotEmpty(t, repo.auditLogs)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	password, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	repo := &mockAuthRepo{userByEmail: &models.User{ID: "u1", Email: "user@example.com", PasswordHash: string(password), Active: true}}
	svc := NewAuthService(repo, &mockAuthInvitations{}, validator.New(), zap.NewNop(), testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "user@example.com", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginInactive(t *testing.T) {
	password, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	repo := &mockAuthRepo{userByEmail: &models.User{ID: "u1", Email: "user@example.com", PasswordHash: string(password), Active: false}}
	svc := NewAuthService(repo, &mockAuthInvitations{}, validator.New(), zap.NewNop(), testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "user@example.com", Password: "password"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRegisterStudent(t *testing.T) {
	classID := "c1"
	repo := &mockAuthRepo{}
	invitations := &mockAuthInvitations{
		invitation: &models.Invitation{ID: "inv1", Token: "tok", Role: models.RoleStudent, ClassID: &classID},
		markUsedOK: true,
	}
	svc := NewAuthService(repo, invitations, validator.New(), zap.NewNop(), testAuthConfig())

	res, err := svc.Register(context.Background(), models.RegisterRequest{
		Token:     "tok",
		Email:     "new@example.com",
		Password:  "password123",
		FirstName: "Naly",
		LastName:  "RABE",
	})
	require.NoError(t, err)
	require.Len(t, repo.createdUsers, 1)

	created := repo.createdUsers[0]
	assert.Equal(t, models.RoleStudent, created.Role)
	require.NotNil(t, created.ClassID)
	assert.Equal(t, classID, *created.ClassID)
	assert.Equal(t, time.Now().UTC().Year(), created.EnrollmentYear)
	assert.Equal(t, []string{"inv1"}, invitations.marked)
	assert.NotEmpty(t, res.AccessToken)
}

func TestAuthServiceRegisterUsedToken(t *testing.T) {
	repo := &mockAuthRepo{}
	invitations := &mockAuthInvitations{invitation: &models.Invitation{ID: "inv1", Token: "tok", Role: models.RoleTeacher, Used: true}}
	svc := NewAuthService(repo, invitations, validator.New(), zap.NewNop(), testAuthConfig())

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Token: "tok", Email: "new@example.com", Password: "password123", FirstName: "A", LastName: "B",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.createdUsers)
}

func TestAuthServiceRegisterLostRace(t *testing.T) {
	repo := &mockAuthRepo{}
	invitations := &mockAuthInvitations{
		invitation: &models.Invitation{ID: "inv1", Token: "tok", Role: models.RoleTeacher},
		markUsedOK: false,
	}
	svc := NewAuthService(repo, invitations, validator.New(), zap.NewNop(), testAuthConfig())

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Token: "tok", Email: "new@example.com", Password: "password123", FirstName: "A", LastName: "B",
	})
	require.Error(t, err)
	assert.Empty(t, repo.createdUsers)
}

func TestAuthServiceRegisterEmailTaken(t *testing.T) {
	repo := &mockAuthRepo{emailTaken: true}
	invitations := &mockAuthInvitations{invitation: &models.Invitation{ID: "inv1", Token: "tok", Role: models.RoleTeacher}, markUsedOK: true}
	svc := NewAuthService(repo, invitations, validator.New(), zap.NewNop(), testAuthConfig())

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Token: "tok", Email: "dup@example.com", Password: "password123", FirstName: "A", LastName: "B",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	// The invitation must survive a rejected registration.
	assert.Empty(t, invitations.marked)
}

func TestAuthServiceRefreshTokenRotation(t *testing.T) {
	repo := &mockAuthRepo{refreshTokens: make(map[string]*models.RefreshToken)}
	user := &models.User{ID: "u1", Email: "user@example.com", PasswordHash: "hash", Active: true, Role: models.RoleAdmin}
	repo.userByEmail = user
	repo.userByID = user
	repo.refreshTokens["token"] = &models.RefreshToken{ID: "rt1", UserID: user.ID, Token: "token", ExpiresAt: time.Now().Add(time.Hour)}

	svc := NewAuthService(repo, &mockAuthInvitations{}, validator.New(), zap.NewNop(), testAuthConfig())

	res, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "token"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEqual(t, "token", res.RefreshToken)
	assert.True(t, repo.refreshTokens["token"].Revoked)
}

func TestAuthServiceRefreshTokenExpired(t *testing.T) {
	repo := &mockAuthRepo{refreshTokens: map[string]*models.RefreshToken{
		"token": {ID: "rt1", UserID: "u1", Token: "token", ExpiresAt: time.Now().Add(-time.Hour)},
	}}
	svc := NewAuthService(repo, &mockAuthInvitations{}, validator.New(), zap.NewNop(), testAuthConfig())

	_, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "token"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceChangePassword(t *testing.T) {
	oldHash, _ := bcrypt.GenerateFromPassword([]byte("old"), bcrypt.DefaultCost)
	repo := &mockAuthRepo{userByEmail: &models.User{ID: "u1", PasswordHash: string(oldHash), Active: true}}
	svc := NewAuthService(repo, &mockAuthInvitations{}, validator.New(), zap.NewNop(), testAuthConfig())

	err := svc.ChangePassword(context.Background(), "u1", models.ChangePasswordRequest{OldPassword: "old", NewPassword: "newpassword"})
	require.NoError(t, err)
	assert.NotEqual(t, string(oldHash), repo.userByEmail.PasswordHash)
	assert.True(t, repo.revokedAll)
}

func TestValidateToken(t *testing.T) {
	svc := NewAuthService(&mockAuthRepo{}, &mockAuthInvitations{}, validator.New(), zap.NewNop(), testAuthConfig())
	user := &models.User{ID: "u1", Email: "user@example.com", Role: models.RoleAdmin}
	token, _, err := svc.generateAccessToken(user)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	issuer := NewAuthService(&mockAuthRepo{}, &mockAuthInvitations{}, validator.New(), zap.NewNop(), AuthConfig{AccessTokenSecret: "other", AccessTokenExpiry: time.Hour})
	token, _, err := issuer.generateAccessToken(&models.User{ID: "u1"})
	require.NoError(t, err)

	svc := NewAuthService(&mockAuthRepo{}, &mockAuthInvitations{}, validator.New(), zap.NewNop(), testAuthConfig())
	_, err = svc.ValidateToken(token)
	require.Error(t, err)
}
