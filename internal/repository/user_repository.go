package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tafita2023/inata-api/internal/models"
)

// UserRepository manages persistence for accounts, refresh tokens and audit
// logs.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository constructs a UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `u.id, u.email, u.password_hash, u.first_name, u.last_name, u.phone, u.role, u.class_id,
        u.enrollment_year, u.active, u.address, u.birth_date, u.birth_place, u.photo_path, u.last_login, u.created_at, u.updated_at`

// List returns users matching the provided filters.
func (r *UserRepository) List(ctx context.Context, filter models.UserFilter) ([]models.UserDetail, int, error) {
	base := "FROM users u LEFT JOIN classes c ON c.id = u.class_id"
	var args []interface{}
	conditions := []string{"1=1"}

	if filter.Role != nil {
		conditions = append(conditions, fmt.Sprintf("u.role = $%d", len(args)+1))
		args = append(args, *filter.Role)
	}
	if filter.ClassID != "" {
		conditions = append(conditions, fmt.Sprintf("u.class_id = $%d", len(args)+1))
		args = append(args, filter.ClassID)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("u.active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(u.first_name) LIKE $%d OR LOWER(u.last_name) LIKE $%d OR LOWER(u.email) LIKE $%d)",
			len(args)+1, len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"last_name":  "u.last_name",
		"email":      "u.email",
		"created_at": "u.created_at",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "u.created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s, c.level AS class_level %s ORDER BY %s %s LIMIT %d OFFSET %d`,
		userColumns, base, column, order, size, offset)

	var users []models.UserDetail
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}
	return users, total, nil
}

// FindByID fetches a user by ID.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users u WHERE u.id = $1", userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail fetches a user by email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users u WHERE u.email = $1", userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		return nil, err
	}
	return &user, nil
}

// ExistsByEmail checks email uniqueness optionally excluding an ID.
func (r *UserRepository) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	query := "SELECT 1 FROM users WHERE email = $1"
	args := []interface{}{email}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check email: %w", err)
	}
	return true, nil
}

// Create inserts a new user record.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	const query = `INSERT INTO users (id, email, password_hash, first_name, last_name, phone, role, class_id,
        enrollment_year, active, address, birth_date, birth_place, photo_path, created_at, updated_at)
        VALUES (:id, :email, :password_hash, :first_name, :last_name, :phone, :role, :class_id,
        :enrollment_year, :active, :address, :birth_date, :birth_place, :photo_path, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// Update rewrites the mutable profile columns.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()
	const query = `UPDATE users SET email = :email, first_name = :first_name, last_name = :last_name, phone = :phone,
        role = :role, class_id = :class_id, enrollment_year = :enrollment_year, active = :active, address = :address,
        birth_date = :birth_date, birth_place = :birth_place, photo_path = :photo_path, updated_at = :updated_at
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// Delete removes a user; grades and absences cascade, class links do not.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// ListActiveStudents returns the promotion roster: active accounts holding
// the student role.
func (r *UserRepository) ListActiveStudents(ctx context.Context) ([]models.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users u WHERE u.role = $1 AND u.active = true ORDER BY u.last_name, u.first_name", userColumns)
	var students []models.User
	if err := r.db.SelectContext(ctx, &students, query, models.RoleStudent); err != nil {
		return nil, fmt.Errorf("list active students: %w", err)
	}
	return students, nil
}

// Promote moves a student to the given class and enrollment year in one
// statement; the statement is its own atomic unit so a failure later in the
// batch leaves this student promoted.
func (r *UserRepository) Promote(ctx context.Context, id, classID string, year int) error {
	const query = `UPDATE users SET class_id = $2, enrollment_year = $3, updated_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, classID, year, time.Now().UTC()); err != nil {
		return fmt.Errorf("promote user: %w", err)
	}
	return nil
}

// Graduate switches a student at the terminal class to the graduate role.
func (r *UserRepository) Graduate(ctx context.Context, id string) error {
	const query = `UPDATE users SET role = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.RoleGraduate, time.Now().UTC()); err != nil {
		return fmt.Errorf("graduate user: %w", err)
	}
	return nil
}

// UpdateLastLogin stamps the last successful login.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	if _, err := r.db.ExecContext(ctx, "UPDATE users SET last_login = $2 WHERE id = $1", id, ts); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

// UpdatePassword replaces the stored password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	const query = `UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, passwordHash, updatedAt); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// UpdatePhoto stores the uploaded photo path.
func (r *UserRepository) UpdatePhoto(ctx context.Context, id, photoPath string) error {
	const query = `UPDATE users SET photo_path = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, photoPath, time.Now().UTC()); err != nil {
		return fmt.Errorf("update photo: %w", err)
	}
	return nil
}

// CreateRefreshToken persists a refresh token session.
func (r *UserRepository) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	const query = `INSERT INTO refresh_tokens (id, user_id, token, expires_at, created_at, revoked, ip_address, user_agent)
        VALUES (:id, :user_id, :token, :expires_at, :created_at, :revoked, :ip_address, :user_agent)`
	if _, err := r.db.NamedExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("create refresh token: %w", err)
	}
	return nil
}

// FindRefreshToken fetches a refresh token by its opaque value.
func (r *UserRepository) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	const query = `SELECT id, user_id, token, expires_at, created_at, revoked, revoked_at, ip_address, user_agent
        FROM refresh_tokens WHERE token = $1`
	var stored models.RefreshToken
	if err := r.db.GetContext(ctx, &stored, query, token); err != nil {
		return nil, err
	}
	return &stored, nil
}

// RevokeRefreshToken marks one token revoked.
func (r *UserRepository) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	const query = `UPDATE refresh_tokens SET revoked = true, revoked_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, revokedAt); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

// RevokeUserRefreshTokens revokes every live token of a user.
func (r *UserRepository) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	const query = `UPDATE refresh_tokens SET revoked = true, revoked_at = $2 WHERE user_id = $1 AND revoked = false`
	if _, err := r.db.ExecContext(ctx, query, userID, time.Now().UTC()); err != nil {
		return fmt.Errorf("revoke user refresh tokens: %w", err)
	}
	return nil
}

// CreateAuditLog appends an audit record.
func (r *UserRepository) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO audit_logs (id, user_id, action, resource, resource_id, new_values, ip_address, user_agent, created_at)
        VALUES (:id, :user_id, :action, :resource, :resource_id, :new_values, :ip_address, :user_agent, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, log); err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	return nil
}
