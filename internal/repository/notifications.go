package repository

import (
	"context"
	"time"

	"github.com/anusitsrb-glitch/greenhouse-pro-sub001/internal/domain"
)

// NotificationsRepository persisted per-recipient notifications,
// including the dedup-window queries. Dedup state lives here — in the
// store, not in memory — so suppression holds across process restarts.
type NotificationsRepository interface {
	Insert(ctx context.Context, n *domain.Notification) error
	List(ctx context.Context, userID string, unreadOnly bool, page, size int) ([]*domain.Notification, int, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)

	// HasRecentSensorOffline reports whether the user already received a
	// sensor_offline notification for the greenhouse within the window.
	HasRecentSensorOffline(ctx context.Context, userID, greenhouseID string, within time.Duration) (bool, error)

	// HasRecentSensorAlert reports whether the user already received a
	// sensor_alert for the same greenhouse, sensor key and trigger
	// direction within the window.
	HasRecentSensorAlert(ctx context.Context, userID, greenhouseID, sensorKey, triggered string, within time.Duration) (bool, error)

	// DeleteReadBefore removes read notifications created before cutoff
	// (the retention sweep).
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
