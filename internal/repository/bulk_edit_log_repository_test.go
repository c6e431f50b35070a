package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/Jeancampos10/site-control-hub-api/internal/models"
)

func newBulkEditRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestBulkEditLogRepositoryCreateAndGet(t *testing.T) {
	db, mock, cleanup := newBulkEditRepoMock(t)
	defer cleanup()

	repo := NewBulkEditLogRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO bulk_edit_logs")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	dateFilter := "2024-05-01"
	log := &models.BulkEditLog{
		SheetName:          "Abastecimentos",
		DateFilter:         &dateFilter,
		Filters:            []byte(`{"Veiculo":"CB-012"}`),
		Updates:            []byte(`{"Motorista":"Carlos Silva"}`),
		AffectedRowsCount:  7,
		AffectedRowsSample: []byte(`[]`),
		CreatedBy:          "user-1",
	}
	require.NoError(t, repo.Create(context.Background(), log))
	require.NotEmpty(t, log.ID)
	require.Equal(t, models.BulkEditStatusPending, log.Status)
	require.False(t, log.CreatedAt.IsZero())

	rows := sqlmock.NewRows([]string{"id", "sheet_name", "date_filter", "filters", "updates", "affected_rows_count", "affected_rows_sample", "status", "created_by", "created_at", "updated_at"}).
		AddRow(log.ID, "Abastecimentos", dateFilter, `{"Veiculo":"CB-012"}`, `{"Motorista":"Carlos Silva"}`, 7, `[]`, "pending", "user-1", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, sheet_name, date_filter")).
		WithArgs(log.ID).
		WillReturnRows(rows)

	found, err := repo.GetByID(context.Background(), log.ID)
	require.NoError(t, err)
	require.Equal(t, log.ID, found.ID)
	require.Equal(t, models.BulkEditStatusPending, found.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkEditLogRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newBulkEditRepoMock(t)
	defer cleanup()

	repo := NewBulkEditLogRepository(db)
	rows := sqlmock.NewRows([]string{"id", "sheet_name", "date_filter", "filters", "updates", "affected_rows_count", "affected_rows_sample", "status", "created_by", "created_at", "updated_at"}).
		AddRow("log-1", "Abastecimentos", nil, `{}`, `{}`, 3, `[]`, "pending", "user-1", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, sheet_name, date_filter")).
		WithArgs("pending", "Abastecimentos").
		WillReturnRows(rows)

	list, err := repo.List(context.Background(), models.BulkEditLogFilter{
		Status:    []models.BulkEditStatus{models.BulkEditStatusPending},
		SheetName: "Abastecimentos",
	})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "log-1", list[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkEditLogRepositoryMarkStatus(t *testing.T) {
	db, mock, cleanup := newBulkEditRepoMock(t)
	defer cleanup()

	repo := NewBulkEditLogRepository(db)
	now := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE bulk_edit_logs SET")).
		WithArgs("applied", now, "log-1", "pending").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.MarkStatus(context.Background(), "log-1", models.BulkEditStatusApplied, now))

	// A log that already left pending matches no rows; the transition is one-shot.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE bulk_edit_logs SET")).
		WithArgs("failed", now, "log-1", "pending").
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.MarkStatus(context.Background(), "log-1", models.BulkEditStatusFailed, now)
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}
