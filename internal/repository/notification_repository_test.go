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

func newNotificationRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestNotificationRepositoryInsertBatch(t *testing.T) {
	db, mock, cleanup := newNotificationRepoMock(t)
	defer cleanup()

	repo := NewNotificationRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO notifications")).
		WillReturnResult(sqlmock.NewResult(2, 2))

	batch := []models.Notification{
		{UserID: "admin-1", Type: models.NotificationTypeEdit, Title: "t", Message: "m", Data: []byte(`{}`)},
		{UserID: "admin-2", Type: models.NotificationTypeEdit, Title: "t", Message: "m", Data: []byte(`{}`)},
	}
	require.NoError(t, repo.InsertBatch(context.Background(), batch))
	require.NotEmpty(t, batch[0].ID)
	require.NotEmpty(t, batch[1].ID)
	require.NotEqual(t, batch[0].ID, batch[1].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepositoryInsertBatchEmpty(t *testing.T) {
	db, mock, cleanup := newNotificationRepoMock(t)
	defer cleanup()

	repo := NewNotificationRepository(db)
	require.NoError(t, repo.InsertBatch(context.Background(), nil))
	// No insert statements expected for an empty batch.
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepositoryListForUser(t *testing.T) {
	db, mock, cleanup := newNotificationRepoMock(t)
	defer cleanup()

	repo := NewNotificationRepository(db)
	rows := sqlmock.NewRows([]string{"id", "user_id", "type", "title", "message", "data", "read", "created_at"}).
		AddRow("n-1", "admin-1", "edit", "t", "m", `{}`, false, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, type, title, message, data, read, created_at")).
		WithArgs("admin-1", 50).
		WillReturnRows(rows)

	list, err := repo.ListForUser(context.Background(), "admin-1", 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.False(t, list[0].Read)
	require.NoError(t, mock.ExpectationsWereMet())
}
