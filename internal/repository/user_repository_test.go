package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/Jeancampos10/site-control-hub-api/internal/models"
)

func newUserRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestUserRepositoryFindByEmail(t *testing.T) {
	db, mock, cleanup := newUserRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)
	rows := sqlmock.NewRows([]string{"id", "email", "password_hash", "full_name", "active", "created_at", "updated_at"}).
		AddRow("user-1", "ana@example.com", "hash", "Ana Souza", true, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, password_hash, full_name, active")).
		WithArgs("ana@example.com").
		WillReturnRows(rows)

	user, err := repo.FindByEmail(context.Background(), "ana@example.com")
	require.NoError(t, err)
	require.Equal(t, "user-1", user.ID)
	require.True(t, user.Active)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryListApprovedAdmins(t *testing.T) {
	db, mock, cleanup := newUserRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)
	rows := sqlmock.NewRows([]string{"user_id", "role", "approved"}).
		AddRow("admin-1", "admin_principal", true).
		AddRow("admin-2", "admin", true)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT user_id, role, approved FROM user_roles")).
		WithArgs("admin_principal", "admin").
		WillReturnRows(rows)

	admins, err := repo.ListApprovedAdmins(context.Background(), models.AdminRoles)
	require.NoError(t, err)
	require.Len(t, admins, 2)
	require.Equal(t, models.RoleAdminPrincipal, admins[0].Role)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryListApprovedAdminsNoRoles(t *testing.T) {
	db, mock, cleanup := newUserRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)
	admins, err := repo.ListApprovedAdmins(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, admins)
	require.NoError(t, mock.ExpectationsWereMet())
}
