package domain

import "time"

// NotificationType event class of a notification.
type NotificationType string

const (
	TypeDeviceOnline  NotificationType = "device_online"
	TypeDeviceOffline NotificationType = "device_offline"
	TypeSensorOffline NotificationType = "sensor_offline"
	TypeSensorAlert   NotificationType = "sensor_alert"
	TypeControlAction NotificationType = "control_action"
	TypeSystemError   NotificationType = "system_error"
)

// NotificationTypes all known types, in display order.
var NotificationTypes = []NotificationType{
	TypeDeviceOnline,
	TypeDeviceOffline,
	TypeSensorOffline,
	TypeSensorAlert,
	TypeControlAction,
	TypeSystemError,
}

// Severity notification severity.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Severities all known severities.
var Severities = []Severity{SeverityInfo, SeverityWarning, SeverityCritical}

// Notification one persisted row per recipient that survived the
// filter chain and the dedup check. Mutated only to set IsRead/ReadAt;
// deleted only by the retention sweep.
type Notification struct {
	ID                  string           `json:"id"`
	UserID              string           `json:"userId"`
	Type                NotificationType `json:"type"`
	Severity            Severity         `json:"severity"`
	Title               string           `json:"title"`
	Message             string           `json:"message"`
	Metadata            map[string]any   `json:"metadata,omitempty"`
	ProjectID           *string          `json:"projectId,omitempty"`
	GreenhouseID        *string          `json:"greenhouseId,omitempty"`
	IsRead              bool             `json:"isRead"`
	ReadAt              *time.Time       `json:"readAt,omitempty"`
	AutoDismiss         bool             `json:"autoDismiss"`
	DismissAfterSeconds int              `json:"dismissAfterSeconds"`
	CreatedAt           time.Time        `json:"createdAt"`
}

// NotificationEvent a domain event offered to the notification engine.
// It is ephemeral; rows are only created per surviving recipient.
type NotificationEvent struct {
	Type                NotificationType `json:"type"`
	Severity            Severity         `json:"severity"`
	Title               string           `json:"title"`
	Message             string           `json:"message"`
	Metadata            map[string]any   `json:"metadata,omitempty"`
	ProjectID           string           `json:"projectId,omitempty"`
	GreenhouseID        string           `json:"greenhouseId,omitempty"`
	UserID              string           `json:"userId,omitempty"`
	ExcludeUserID       string           `json:"-"` // the acting user; never notified about their own action
	AutoDismiss         bool             `json:"autoDismiss,omitempty"`
	DismissAfterSeconds int              `json:"dismissAfterSeconds,omitempty"`
}

// NotificationSettings one row per user, created lazily with defaults
// on first access.
type NotificationSettings struct {
	UserID            string                    `json:"userId"`
	Enabled           bool                      `json:"enabled"`
	Types             map[NotificationType]bool `json:"types"`
	Severities        map[Severity]bool         `json:"severities"`
	ProjectIDs        []string                  `json:"projectIds"`    // empty = allow all
	GreenhouseIDs     []string                  `json:"greenhouseIds"` // empty = allow all
	QuietHoursEnabled bool                      `json:"quietHoursEnabled"`
	QuietHoursStart   string                    `json:"quietHoursStart"` // "HH:mm"
	QuietHoursEnd     string                    `json:"quietHoursEnd"`   // "HH:mm"
	CreatedAt         time.Time                 `json:"createdAt"`
	UpdatedAt         time.Time                 `json:"updatedAt"`
}

// DefaultNotificationSettings everything enabled, no filters, quiet
// hours off.
func DefaultNotificationSettings(userID string) *NotificationSettings {
	types := make(map[NotificationType]bool, len(NotificationTypes))
	for _, t := range NotificationTypes {
		types[t] = true
	}
	severities := make(map[Severity]bool, len(Severities))
	for _, s := range Severities {
		severities[s] = true
	}
	return &NotificationSettings{
		UserID:          userID,
		Enabled:         true,
		Types:           types,
		Severities:      severities,
		ProjectIDs:      []string{},
		GreenhouseIDs:   []string{},
		QuietHoursStart: "22:00",
		QuietHoursEnd:   "07:00",
	}
}
