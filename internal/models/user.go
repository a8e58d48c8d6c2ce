package models

import "time"

// UserRole represents the closed set of roles known to the RBAC system.
type UserRole string

const (
	RoleAdmin    UserRole = "ADMIN"
	RoleTeacher  UserRole = "TEACHER"
	RoleStudent  UserRole = "STUDENT"
	RoleGraduate UserRole = "GRADUATE"
)

// ValidRole reports whether the raw value names a known role.
func ValidRole(raw string) bool {
	switch UserRole(raw) {
	case RoleAdmin, RoleTeacher, RoleStudent, RoleGraduate:
		return true
	}
	return false
}

// User represents an account stored in the users table. Students additionally
// carry a class assignment and enrollment year, both mutated only by the
// promotion workflow or an administrator.
type User struct {
	ID             string     `db:"id" json:"id"`
	Email          string     `db:"email" json:"email"`
	PasswordHash   string     `db:"password_hash" json:"-"`
	FirstName      string     `db:"first_name" json:"first_name"`
	LastName       string     `db:"last_name" json:"last_name"`
	Phone          string     `db:"phone" json:"phone"`
	Role           UserRole   `db:"role" json:"role"`
	ClassID        *string    `db:"class_id" json:"class_id,omitempty"`
	EnrollmentYear int        `db:"enrollment_year" json:"enrollment_year"`
	Active         bool       `db:"active" json:"active"`
	Address        string     `db:"address" json:"address,omitempty"`
	BirthDate      *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	BirthPlace     string     `db:"birth_place" json:"birth_place,omitempty"`
	PhotoPath      string     `db:"photo_path" json:"photo_path,omitempty"`
	LastLogin      *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// FullName renders "LASTNAME Firstname" the way roster listings expect it.
func (u *User) FullName() string {
	return u.LastName + " " + u.FirstName
}

// UserDetail joins the user with its class name for listings.
type UserDetail struct {
	User
	ClassLevel *string `db:"class_level" json:"class_level,omitempty"`
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role      *UserRole
	ClassID   string
	Active    *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
