package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tafita2023/inata-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func userRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "email", "password_hash", "first_name", "last_name", "phone", "role", "class_id",
		"enrollment_year", "active", "address", "birth_date", "birth_place", "photo_path", "last_login", "created_at", "updated_at",
	}).AddRow("u1", "user@example.com", "hash", "Naly", "RABE", "", string(models.RoleStudent), "c1",
		2025, true, "", nil, "", "", now, now, now)
}

func TestUserFindByEmail(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM users u WHERE u.email = \\$1").
		WithArgs("user@example.com").
		WillReturnRows(userRows(time.Now()))

	user, err := repo.FindByEmail(context.Background(), "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", user.Email)
	assert.Equal(t, models.RoleStudent, user.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserExistsByEmail(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM users WHERE email = $1 LIMIT 1")).
		WithArgs("user@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err := repo.ExistsByEmail(context.Background(), "user@example.com", "")
	require.NoError(t, err)
	assert.True(t, exists)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM users WHERE email = $1 LIMIT 1")).
		WithArgs("free@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	exists, err = repo.ExistsByEmail(context.Background(), "free@example.com", "")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(1, 1))

	user := &models.User{Email: "new@example.com", PasswordHash: "hash", FirstName: "A", LastName: "B", Role: models.RoleTeacher, Active: true}
	require.NoError(t, repo.Create(context.Background(), user))
	assert.NotEmpty(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPromote(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET class_id = $2, enrollment_year = $3, updated_at = $4 WHERE id = $1")).
		WithArgs("u1", "c2", 2026, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Promote(context.Background(), "u1", "c2", 2026))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserGraduate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET role = $2, updated_at = $3 WHERE id = $1")).
		WithArgs("u1", models.RoleGraduate, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Graduate(context.Background(), "u1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreateRefreshToken(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO refresh_tokens").WillReturnResult(sqlmock.NewResult(1, 1))

	token := &models.RefreshToken{UserID: "u1", Token: "token", ExpiresAt: time.Now(), CreatedAt: time.Now()}
	require.NoError(t, repo.CreateRefreshToken(context.Background(), token))
	assert.NotEmpty(t, token.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserList(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	role := models.RoleStudent
	listRows := userRows(time.Now())

	mock.ExpectQuery("SELECT (.+), c.level AS class_level FROM users u LEFT JOIN classes c").
		WithArgs(role).
		WillReturnRows(listRows)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM users u LEFT JOIN classes c").
		WithArgs(role).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	users, total, err := repo.List(context.Background(), models.UserFilter{Role: &role})
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
