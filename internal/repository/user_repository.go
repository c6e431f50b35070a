package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/Jeancampos10/site-control-hub-api/internal/models"
)

// UserRepository reads users and their role assignments.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository constructs the repository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail fetches a user by email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	const query = `SELECT id, email, password_hash, full_name, active, created_at, updated_at
	FROM users WHERE email = $1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		return nil, err
	}
	return &user, nil
}

// RoleFor returns the approved role assignment for a user, if any.
func (r *UserRepository) RoleFor(ctx context.Context, userID string) (*models.UserRoleAssignment, error) {
	const query = `SELECT user_id, role, approved FROM user_roles WHERE user_id = $1 AND approved = true`
	var assignment models.UserRoleAssignment
	if err := r.db.GetContext(ctx, &assignment, query, userID); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// ListApprovedAdmins resolves notification recipients: users holding one of
// the given roles with an approved assignment.
func (r *UserRepository) ListApprovedAdmins(ctx context.Context, roles []models.UserRole) ([]models.UserRoleAssignment, error) {
	if len(roles) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(roles))
	args := make([]interface{}, len(roles))
	for i, role := range roles {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = role
	}
	query := fmt.Sprintf(`SELECT user_id, role, approved FROM user_roles
	WHERE role IN (%s) AND approved = true`, strings.Join(placeholders, ","))
	var assignments []models.UserRoleAssignment
	if err := r.db.SelectContext(ctx, &assignments, query, args...); err != nil {
		return nil, fmt.Errorf("list approved admins: %w", err)
	}
	return assignments, nil
}
