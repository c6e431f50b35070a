package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Jeancampos10/site-control-hub-api/internal/models"
)

// BulkEditLogRepository persists proposed bulk edits and their lifecycle.
type BulkEditLogRepository struct {
	db *sqlx.DB
}

// NewBulkEditLogRepository constructs the repository.
func NewBulkEditLogRepository(db *sqlx.DB) *BulkEditLogRepository {
	return &BulkEditLogRepository{db: db}
}

// Create inserts a new bulk edit log row.
func (r *BulkEditLogRepository) Create(ctx context.Context, log *models.BulkEditLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.Status == "" {
		log.Status = models.BulkEditStatusPending
	}
	now := time.Now().UTC()
	if log.CreatedAt.IsZero() {
		log.CreatedAt = now
	}
	if log.UpdatedAt.IsZero() {
		log.UpdatedAt = now
	}
	const query = `INSERT INTO bulk_edit_logs
	(id, sheet_name, date_filter, filters, updates, affected_rows_count, affected_rows_sample, status, created_by, created_at, updated_at)
	VALUES (:id, :sheet_name, :date_filter, :filters, :updates, :affected_rows_count, :affected_rows_sample, :status, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, log); err != nil {
		return fmt.Errorf("create bulk edit log: %w", err)
	}
	return nil
}

// GetByID fetches a bulk edit log by identifier.
func (r *BulkEditLogRepository) GetByID(ctx context.Context, id string) (*models.BulkEditLog, error) {
	const query = `SELECT id, sheet_name, date_filter, filters, updates, affected_rows_count, affected_rows_sample,
       status, created_by, created_at, updated_at
	FROM bulk_edit_logs WHERE id = $1`
	var log models.BulkEditLog
	if err := r.db.GetContext(ctx, &log, query, id); err != nil {
		return nil, err
	}
	return &log, nil
}

// List returns bulk edit logs matching the filter (latest first).
func (r *BulkEditLogRepository) List(ctx context.Context, filter models.BulkEditLogFilter) ([]models.BulkEditLog, error) {
	builder := strings.Builder{}
	args := make([]interface{}, 0, 4)
	builder.WriteString(`SELECT id, sheet_name, date_filter, filters, updates, affected_rows_count, affected_rows_sample,
       status, created_by, created_at, updated_at FROM bulk_edit_logs`)

	conditions := make([]string, 0, 3)
	if len(filter.Status) > 0 {
		placeholders := make([]string, len(filter.Status))
		for i, status := range filter.Status {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		conditions = append(conditions, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.SheetName != "" {
		args = append(args, filter.SheetName)
		conditions = append(conditions, fmt.Sprintf("sheet_name = $%d", len(args)))
	}
	if filter.CreatedBy != "" {
		args = append(args, filter.CreatedBy)
		conditions = append(conditions, fmt.Sprintf("created_by = $%d", len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY created_at DESC")

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	builder.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset))

	var logs []models.BulkEditLog
	if err := r.db.SelectContext(ctx, &logs, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list bulk edit logs: %w", err)
	}
	return logs, nil
}

// MarkStatus transitions a pending log to applied or failed. The guard on the
// stored status makes the transition a one-shot: a log that already left
// pending returns sql.ErrNoRows and must not be re-applied.
func (r *BulkEditLogRepository) MarkStatus(ctx context.Context, id string, status models.BulkEditStatus, at time.Time) error {
	const query = `UPDATE bulk_edit_logs SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`
	result, err := r.db.ExecContext(ctx, query, status, at, id, models.BulkEditStatusPending)
	if err != nil {
		return fmt.Errorf("mark bulk edit log %s: %w", status, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check bulk edit log update rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
