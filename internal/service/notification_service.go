package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/anusitsrb-glitch/greenhouse-pro-sub001/internal/domain"
	"github.com/anusitsrb-glitch/greenhouse-pro-sub001/internal/repository"
)

// Dedup windows. Suppression state is persisted with the notifications
// themselves so the windows hold across restarts.
const (
	sensorOfflineDedupWindow = 30 * time.Minute
	sensorAlertDedupWindow   = 10 * time.Minute
)

// NotificationService fans domain events out to entitled recipients,
// applying each recipient's settings and the dedup windows, then
// persists one row per delivered notification.
type NotificationService struct {
	notifications repository.NotificationsRepository
	settings      repository.NotificationSettingsRepository
	users         repository.UsersRepository
	logger        *zap.Logger
	now           func() time.Time
}

func NewNotificationService(
	notifications repository.NotificationsRepository,
	settings repository.NotificationSettingsRepository,
	users repository.UsersRepository,
	logger *zap.Logger,
) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		settings:      settings,
		users:         users,
		logger:        logger,
		now:           time.Now,
	}
}

// Create delivers the event. It never returns an error: delivery is
// best-effort and must not fail the action that raised the event.
// Failures are logged per recipient so one bad settings row cannot
// block the others.
func (s *NotificationService) Create(ctx context.Context, event domain.NotificationEvent) {
	recipients, err := s.resolveRecipients(ctx, event)
	if err != nil {
		s.logger.Error("failed to resolve notification recipients",
			zap.String("type", string(event.Type)),
			zap.Error(err))
		return
	}

	for _, userID := range recipients {
		if event.ExcludeUserID != "" && userID == event.ExcludeUserID {
			continue
		}
		s.deliver(ctx, userID, event)
	}
}

func (s *NotificationService) resolveRecipients(ctx context.Context, event domain.NotificationEvent) ([]string, error) {
	if event.UserID != "" {
		return []string{event.UserID}, nil
	}

	users, err := s.users.ListRecipients(ctx, event.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipients: %w", err)
	}

	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids, nil
}

func (s *NotificationService) deliver(ctx context.Context, userID string, event domain.NotificationEvent) {
	settings, err := s.settings.GetOrCreate(ctx, userID)
	if err != nil {
		s.logger.Error("failed to load notification settings",
			zap.String("user_id", userID),
			zap.Error(err))
		return
	}

	if !s.passesFilters(settings, event) {
		return
	}

	if s.isDuplicate(ctx, userID, event) {
		return
	}

	n := &domain.Notification{
		ID:                  uuid.NewString(),
		UserID:              userID,
		Type:                event.Type,
		Severity:            event.Severity,
		Title:               event.Title,
		Message:             event.Message,
		Metadata:            event.Metadata,
		AutoDismiss:         event.AutoDismiss,
		DismissAfterSeconds: event.DismissAfterSeconds,
		CreatedAt:           s.now(),
	}
	if event.ProjectID != "" {
		projectID := event.ProjectID
		n.ProjectID = &projectID
	}
	if event.GreenhouseID != "" {
		greenhouseID := event.GreenhouseID
		n.GreenhouseID = &greenhouseID
	}

	if err := s.notifications.Insert(ctx, n); err != nil {
		s.logger.Error("failed to insert notification",
			zap.String("user_id", userID),
			zap.String("type", string(event.Type)),
			zap.Error(err))
	}
}

func (s *NotificationService) passesFilters(settings *domain.NotificationSettings, event domain.NotificationEvent) bool {
	if !settings.Enabled {
		return false
	}
	if !settings.Types[event.Type] {
		return false
	}
	if !settings.Severities[event.Severity] {
		return false
	}
	if len(settings.ProjectIDs) > 0 && !contains(settings.ProjectIDs, event.ProjectID) {
		return false
	}
	if len(settings.GreenhouseIDs) > 0 && !contains(settings.GreenhouseIDs, event.GreenhouseID) {
		return false
	}
	if settings.QuietHoursEnabled && s.inQuietHours(settings.QuietHoursStart, settings.QuietHoursEnd) {
		return false
	}
	return true
}

// inQuietHours compares "HH:mm" strings lexicographically, which is
// correct for zero-padded 24-hour times. A start at or after the end
// means the window wraps midnight.
func (s *NotificationService) inQuietHours(start, end string) bool {
	now := s.now().Format("15:04")
	if start < end {
		return start <= now && now <= end
	}
	return now >= start || now <= end
}

// isDuplicate applies the persisted dedup windows. Only sensor_offline
// and sensor_alert events are deduped. Query failures and missing
// sensor_alert metadata fail open: delivering a possible duplicate
// beats silently dropping a real event.
func (s *NotificationService) isDuplicate(ctx context.Context, userID string, event domain.NotificationEvent) bool {
	if event.GreenhouseID == "" {
		return false
	}

	switch event.Type {
	case domain.TypeSensorOffline:
		exists, err := s.notifications.HasRecentSensorOffline(ctx, userID, event.GreenhouseID, sensorOfflineDedupWindow)
		if err != nil {
			s.logger.Error("sensor_offline dedup query failed",
				zap.String("user_id", userID),
				zap.Error(err))
			return false
		}
		return exists

	case domain.TypeSensorAlert:
		sensorKey, okKey := event.Metadata["sensorKey"].(string)
		triggered, okTrig := event.Metadata["triggered"].(string)
		if !okKey || !okTrig || sensorKey == "" || triggered == "" {
			return false
		}
		exists, err := s.notifications.HasRecentSensorAlert(ctx, userID, event.GreenhouseID, sensorKey, triggered, sensorAlertDedupWindow)
		if err != nil {
			s.logger.Error("sensor_alert dedup query failed",
				zap.String("user_id", userID),
				zap.Error(err))
			return false
		}
		return exists
	}

	return false
}

// CanCreateSensorOfflineSummary reports whether at least one entitled
// recipient of the project would not be deduped for a sensor_offline
// event on the greenhouse. Read-only: lets the monitor skip building
// the summary when every recipient is inside the window. Not a
// correctness gate — Create still dedups per recipient.
func (s *NotificationService) CanCreateSensorOfflineSummary(ctx context.Context, projectID, greenhouseID string) (bool, error) {
	users, err := s.users.ListRecipients(ctx, projectID)
	if err != nil {
		return false, fmt.Errorf("failed to list recipients: %w", err)
	}

	for _, u := range users {
		exists, err := s.notifications.HasRecentSensorOffline(ctx, u.ID, greenhouseID, sensorOfflineDedupWindow)
		if err != nil {
			return false, fmt.Errorf("failed to check sensor_offline window: %w", err)
		}
		if !exists {
			return true, nil
		}
	}
	return false, nil
}

// CanCreateSensorAlert is the sensor_alert counterpart of
// CanCreateSensorOfflineSummary.
func (s *NotificationService) CanCreateSensorAlert(ctx context.Context, projectID, greenhouseID, sensorKey, triggered string) (bool, error) {
	users, err := s.users.ListRecipients(ctx, projectID)
	if err != nil {
		return false, fmt.Errorf("failed to list recipients: %w", err)
	}

	for _, u := range users {
		exists, err := s.notifications.HasRecentSensorAlert(ctx, u.ID, greenhouseID, sensorKey, triggered, sensorAlertDedupWindow)
		if err != nil {
			return false, fmt.Errorf("failed to check sensor_alert window: %w", err)
		}
		if !exists {
			return true, nil
		}
	}
	return false, nil
}

func (s *NotificationService) List(ctx context.Context, userID string, unreadOnly bool, page, size int) ([]*domain.Notification, int, error) {
	return s.notifications.List(ctx, userID, unreadOnly, page, size)
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	return s.notifications.MarkRead(ctx, userID, notificationID)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.notifications.MarkAllRead(ctx, userID)
}

func (s *NotificationService) GetSettings(ctx context.Context, userID string) (*domain.NotificationSettings, error) {
	return s.settings.GetOrCreate(ctx, userID)
}

func (s *NotificationService) UpdateSettings(ctx context.Context, settings *domain.NotificationSettings) error {
	if settings == nil {
		return fmt.Errorf("settings are required")
	}
	if _, err := s.settings.GetOrCreate(ctx, settings.UserID); err != nil {
		return err
	}
	return s.settings.Update(ctx, settings)
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
