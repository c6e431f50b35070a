package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Jeancampos10/site-control-hub-api/internal/dto"
	"github.com/Jeancampos10/site-control-hub-api/internal/models"
	appErrors "github.com/Jeancampos10/site-control-hub-api/pkg/errors"
	"github.com/Jeancampos10/site-control-hub-api/pkg/export"
	"github.com/Jeancampos10/site-control-hub-api/pkg/jobs"
)

// ApplyJobType labels queued deferred-application jobs.
const ApplyJobType = "bulk_edit_apply"

type bulkEditStore interface {
	Create(ctx context.Context, log *models.BulkEditLog) error
	GetByID(ctx context.Context, id string) (*models.BulkEditLog, error)
	List(ctx context.Context, filter models.BulkEditLogFilter) ([]models.BulkEditLog, error)
	MarkStatus(ctx context.Context, id string, status models.BulkEditStatus, at time.Time) error
}

type adminNotifier interface {
	NotifyAdmins(ctx context.Context, event EditEvent) error
}

type updateApplier interface {
	Apply(ctx context.Context, req dto.ApplyBulkUpdateRequest) (*dto.ApplyBulkUpdateResult, error)
}

type applyQueue interface {
	Enqueue(job jobs.Job) error
}

// BulkEditService orchestrates the deferred bulk-edit pipeline: it logs the
// proposed edit durably, fans out to admins best-effort, and hands the
// application to the external sheet off to a decoupled follow-up.
type BulkEditService struct {
	repo     bulkEditStore
	notifier adminNotifier
	gateway  updateApplier
	queue    applyQueue
	logger   *zap.Logger
}

// NewBulkEditService constructs the service. The queue may be nil; logs then
// stay pending until an explicit apply call drives them.
func NewBulkEditService(repo bulkEditStore, notifier adminNotifier, gateway updateApplier, queue applyQueue, logger *zap.Logger) *BulkEditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BulkEditService{repo: repo, notifier: notifier, gateway: gateway, queue: queue, logger: logger}
}

// AttachQueue wires the deferred-application queue after construction; the
// queue's handler needs the service, so the two cannot be built in one shot.
func (s *BulkEditService) AttachQueue(queue applyQueue) {
	s.queue = queue
}

// Submit logs a proposed bulk edit and reports success as soon as the log is
// durable. Fan-out and application are decoupled follow-ups: the external
// endpoint is slow and unreliable and must not block the user-facing action.
func (s *BulkEditService) Submit(ctx context.Context, req dto.SubmitBulkEditRequest, actor *models.JWTClaims) (*dto.BulkEditSubmissionResult, error) {
	if actor == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "authentication required to submit a bulk edit")
	}
	if strings.TrimSpace(req.SheetName) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "sheetName is required")
	}
	if len(req.Updates) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "updates must not be empty")
	}

	dateFilter, remaining := splitDateFilter(req.Filters)

	sample := req.AffectedRows
	if len(sample) > models.SampleLimit {
		sample = sample[:models.SampleLimit]
	}

	filtersJSON, err := json.Marshal(remaining)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode filters")
	}
	updatesJSON, err := json.Marshal(req.Updates)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode updates")
	}
	sampleJSON, err := json.Marshal(sample)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode row sample")
	}

	log := &models.BulkEditLog{
		SheetName:          req.SheetName,
		DateFilter:         dateFilter,
		Filters:            filtersJSON,
		Updates:            updatesJSON,
		AffectedRowsCount:  len(req.AffectedRows),
		AffectedRowsSample: sampleJSON,
		Status:             models.BulkEditStatusPending,
		CreatedBy:          actor.UserID,
	}
	if err := s.repo.Create(ctx, log); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to create bulk edit log")
	}

	if s.notifier != nil {
		event := EditEvent{
			EditorID:    actor.UserID,
			EditorName:  actor.FullName,
			SheetType:   req.SheetName,
			RecordID:    log.ID,
			Changes:     diffAgainstSample(req.Updates, req.AffectedRows),
			Description: req.Description,
		}
		if err := s.notifier.NotifyAdmins(ctx, event); err != nil {
			s.logger.Warn("admin fan-out failed", zap.String("log_id", log.ID), zap.Error(err))
		}
	}

	if s.queue != nil {
		if err := s.queue.Enqueue(jobs.Job{ID: log.ID, Type: ApplyJobType, Payload: log.ID}); err != nil {
			// The log stays pending; an explicit apply call can still drive it.
			s.logger.Warn("failed to enqueue apply job", zap.String("log_id", log.ID), zap.Error(err))
		}
	}

	return &dto.BulkEditSubmissionResult{
		LogID:             log.ID,
		Status:            string(log.Status),
		AffectedRowsCount: log.AffectedRowsCount,
		Message:           fmt.Sprintf("%d rows marked for change; application pending", log.AffectedRowsCount),
	}, nil
}

// Apply drives a logged bulk edit through the gateway and records the
// outcome. A log that already left pending is never re-applied: the status
// transition is checked in the store before anything is sent upstream and
// again, atomically, when the outcome is recorded.
func (s *BulkEditService) Apply(ctx context.Context, id string) (*dto.ApplyOutcome, error) {
	log, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load bulk edit log")
	}
	if log.Status != models.BulkEditStatusPending {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("bulk edit already %s", log.Status))
	}

	var filters map[string]string
	if len(log.Filters) > 0 {
		if err := json.Unmarshal(log.Filters, &filters); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode stored filters")
		}
	}
	var updates map[string]string
	if err := json.Unmarshal(log.Updates, &updates); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode stored updates")
	}

	result, applyErr := s.gateway.Apply(ctx, dto.ApplyBulkUpdateRequest{
		SheetName:  log.SheetName,
		DateFilter: log.DateFilter,
		Filters:    filters,
		Updates:    updates,
	})
	now := time.Now().UTC()
	if applyErr != nil {
		if markErr := s.repo.MarkStatus(ctx, id, models.BulkEditStatusFailed, now); markErr != nil && !errors.Is(markErr, sql.ErrNoRows) {
			s.logger.Error("failed to mark bulk edit failed", zap.String("log_id", id), zap.Error(markErr))
		}
		return &dto.ApplyOutcome{
			LogID:   id,
			Status:  string(models.BulkEditStatusFailed),
			Message: appErrors.FromError(applyErr).Message,
		}, applyErr
	}

	if err := s.repo.MarkStatus(ctx, id, models.BulkEditStatusApplied, now); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "bulk edit already processed")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to mark bulk edit applied")
	}

	if result.UpdatedCount < log.AffectedRowsCount {
		s.logger.Warn("partial bulk edit application",
			zap.String("log_id", id),
			zap.Int("expected", log.AffectedRowsCount),
			zap.Int("updated", result.UpdatedCount))
	}

	return &dto.ApplyOutcome{
		LogID:        id,
		Status:       string(models.BulkEditStatusApplied),
		UpdatedCount: result.UpdatedCount,
		Message:      result.Message,
	}, nil
}

// List returns bulk edit logs respecting actor scope: admins see everything,
// other actors only their own submissions.
func (s *BulkEditService) List(ctx context.Context, filter models.BulkEditLogFilter, actor *models.JWTClaims) ([]models.BulkEditLog, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if !isAdmin(actor.Role) {
		filter.CreatedBy = actor.UserID
	}
	logs, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to list bulk edit logs")
	}
	return logs, nil
}

// Get returns a bulk edit log enforcing scope constraints.
func (s *BulkEditService) Get(ctx context.Context, id string, actor *models.JWTClaims) (*models.BulkEditLog, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	log, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load bulk edit log")
	}
	if !isAdmin(actor.Role) && log.CreatedBy != actor.UserID {
		return nil, appErrors.ErrForbidden
	}
	return log, nil
}

// Export renders the audit trail of bulk edit logs as CSV or PDF.
func (s *BulkEditService) Export(ctx context.Context, format string, actor *models.JWTClaims) ([]byte, string, error) {
	if actor == nil {
		return nil, "", appErrors.ErrUnauthorized
	}
	if !isAdmin(actor.Role) {
		return nil, "", appErrors.ErrForbidden
	}

	logs, err := s.repo.List(ctx, models.BulkEditLogFilter{Limit: 200})
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to list bulk edit logs")
	}

	headers := []string{"ID", "Sheet", "Date Filter", "Status", "Rows", "Created By", "Created At"}
	rows := make([]map[string]string, 0, len(logs))
	for _, log := range logs {
		dateFilter := ""
		if log.DateFilter != nil {
			dateFilter = *log.DateFilter
		}
		rows = append(rows, map[string]string{
			"ID":          log.ID,
			"Sheet":       log.SheetName,
			"Date Filter": dateFilter,
			"Status":      string(log.Status),
			"Rows":        fmt.Sprintf("%d", log.AffectedRowsCount),
			"Created By":  log.CreatedBy,
			"Created At":  log.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	dataset := export.Dataset{Headers: headers, Rows: rows}

	switch strings.ToLower(format) {
	case "", "csv":
		payload, err := export.NewCSVExporter().Render(dataset)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return payload, "text/csv", nil
	case "pdf":
		payload, err := export.NewPDFExporter().Render(dataset, "Bulk Edit Log")
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return payload, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}

// ApplyJobHandler adapts Apply for the worker queue. Gateway failures are
// terminal for the log (already recorded as failed) and must not trigger a
// queue retry, so the handler swallows them after logging.
func (s *BulkEditService) ApplyJobHandler() jobs.Handler {
	return func(ctx context.Context, job jobs.Job) error {
		id, ok := job.Payload.(string)
		if !ok || id == "" {
			s.logger.Error("apply job carries no log id", zap.String("job_id", job.ID))
			return nil
		}
		outcome, err := s.Apply(ctx, id)
		if err != nil {
			s.logger.Warn("deferred bulk edit application failed",
				zap.String("log_id", id),
				zap.Error(err))
			return nil
		}
		s.logger.Info("bulk edit applied",
			zap.String("log_id", id),
			zap.Int("updated_count", outcome.UpdatedCount))
		return nil
	}
}

func splitDateFilter(filters map[string]string) (*string, map[string]string) {
	remaining := make(map[string]string, len(filters))
	var dateFilter *string
	for key, value := range filters {
		if key == models.DateFilterKey {
			v := value
			dateFilter = &v
			continue
		}
		remaining[key] = value
	}
	return dateFilter, remaining
}

// diffAgainstSample derives {old,new} pairs per updated field using the first
// affected row as the representative old value. All values are stored in
// display-string form.
func diffAgainstSample(updates map[string]string, affectedRows []map[string]string) map[string]models.FieldChange {
	if len(updates) == 0 {
		return nil
	}
	var representative map[string]string
	if len(affectedRows) > 0 {
		representative = affectedRows[0]
	}
	changes := make(map[string]models.FieldChange, len(updates))
	for field, newValue := range updates {
		changes[field] = models.FieldChange{
			Old: representative[field],
			New: newValue,
		}
	}
	return changes
}

func isAdmin(role models.UserRole) bool {
	for _, admin := range models.AdminRoles {
		if role == admin {
			return true
		}
	}
	return false
}
