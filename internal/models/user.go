package models

import "time"

// UserRole represents the roles recognised by the dashboard.
type UserRole string

const (
	RoleAdminPrincipal UserRole = "admin_principal"
	RoleAdmin          UserRole = "admin"
	RoleOperator       UserRole = "operator"
)

// AdminRoles lists the roles eligible for bulk-edit notifications.
var AdminRoles = []UserRole{RoleAdminPrincipal, RoleAdmin}

// User represents an application user stored in the users table.
type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FullName     string    `db:"full_name" json:"full_name"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// UserRoleAssignment maps a user to a role; only approved assignments count.
type UserRoleAssignment struct {
	UserID   string   `db:"user_id" json:"user_id"`
	Role     UserRole `db:"role" json:"role"`
	Approved bool     `db:"approved" json:"approved"`
}
