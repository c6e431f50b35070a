package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Jeancampos10/site-control-hub-api/internal/models"
	appErrors "github.com/Jeancampos10/site-control-hub-api/pkg/errors"
)

const adminRecipientsCacheKey = "notifications:admin_recipients"

type notificationStore interface {
	InsertBatch(ctx context.Context, notifications []models.Notification) error
}

type recipientStore interface {
	ListApprovedAdmins(ctx context.Context, roles []models.UserRole) ([]models.UserRoleAssignment, error)
}

// EditEvent describes a performed or proposed edit for admin fan-out.
type EditEvent struct {
	EditorID    string
	EditorName  string
	SheetType   string
	RecordID    string
	Changes     map[string]models.FieldChange
	Description string
}

// NotificationService fans an edit event out to every approved admin. It is
// a best-effort side channel: a fan-out failure must never unwind the edit
// it describes.
type NotificationService struct {
	repo     notificationStore
	users    recipientStore
	cache    *CacheService
	logger   *zap.Logger
	enabled  bool
	cacheTTL time.Duration
}

// NewNotificationService constructs the service.
func NewNotificationService(repo notificationStore, users recipientStore, cache *CacheService, logger *zap.Logger, enabled bool, cacheTTL time.Duration) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		repo:     repo,
		users:    users,
		cache:    cache,
		logger:   logger,
		enabled:  enabled,
		cacheTTL: cacheTTL,
	}
}

// NotifyAdmins emits one notification per approved admin recipient. Recipient
// resolution failures abort silently; only the batch insert failure is
// surfaced, and callers are expected to log rather than propagate it.
func (s *NotificationService) NotifyAdmins(ctx context.Context, event EditEvent) error {
	if !s.enabled || s.repo == nil {
		return nil
	}

	recipients := s.resolveRecipients(ctx)
	if len(recipients) == 0 {
		return nil
	}

	message := event.Description
	if message == "" {
		message = describeChanges(event.Changes)
	}

	data, err := json.Marshal(models.NotificationData{
		EditorID:   event.EditorID,
		EditorName: event.EditorName,
		SheetType:  event.SheetType,
		RecordID:   event.RecordID,
		Changes:    event.Changes,
	})
	if err != nil {
		s.logger.Warn("failed to encode notification payload", zap.Error(err))
		return nil
	}

	title := fmt.Sprintf("%s atualizou %s", event.EditorName, event.SheetType)
	notifications := make([]models.Notification, 0, len(recipients))
	for _, recipient := range recipients {
		notifications = append(notifications, models.Notification{
			UserID:  recipient.UserID,
			Type:    models.NotificationTypeEdit,
			Title:   title,
			Message: message,
			Data:    data,
			Read:    false,
		})
	}

	if err := s.repo.InsertBatch(ctx, notifications); err != nil {
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to insert notifications")
	}
	return nil
}

// resolveRecipients returns the approved admin set, consulting the cache
// first. Any failure here yields an empty set: failing to notify must never
// block the edit itself.
func (s *NotificationService) resolveRecipients(ctx context.Context) []models.UserRoleAssignment {
	var recipients []models.UserRoleAssignment
	if s.cache != nil {
		if hit, _ := s.cache.Get(ctx, adminRecipientsCacheKey, &recipients); hit {
			return recipients
		}
	}

	recipients, err := s.users.ListApprovedAdmins(ctx, models.AdminRoles)
	if err != nil {
		s.logger.Warn("failed to resolve admin recipients", zap.Error(err))
		return nil
	}

	if s.cache != nil && len(recipients) > 0 {
		if err := s.cache.Set(ctx, adminRecipientsCacheKey, recipients, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache admin recipients", zap.Error(err))
		}
	}
	return recipients
}

// describeChanges synthesizes a human-readable summary from the field diff,
// one clause per changed field in stable order.
func describeChanges(changes map[string]models.FieldChange) string {
	if len(changes) == 0 {
		return "registro atualizado"
	}
	fields := make([]string, 0, len(changes))
	for field := range changes {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		change := changes[field]
		parts = append(parts, fmt.Sprintf("%s: %q → %q", field, change.Old, change.New))
	}
	return strings.Join(parts, ", ")
}
