package mqtt

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/anusitsrb-glitch/greenhouse-pro-sub001/internal/domain"
)

// EventSink is the slice of the notification engine the bridge needs.
type EventSink interface {
	Create(ctx context.Context, event domain.NotificationEvent)
	CanCreateSensorOfflineSummary(ctx context.Context, projectID, greenhouseID string) (bool, error)
	CanCreateSensorAlert(ctx context.Context, projectID, greenhouseID, sensorKey, triggered string) (bool, error)
}

// monitorEvent is the wire format the external monitor publishes.
type monitorEvent struct {
	Type      string `json:"type"`
	Project   string `json:"project"`
	Gh        string `json:"gh"`
	Severity  string `json:"severity"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	SensorKey string `json:"sensorKey"`
	Triggered string `json:"triggered"`
	Value     string `json:"value"`
}

// MonitorBridge turns monitor events arriving over MQTT into
// notification-engine calls. It consults the dedup guards first so a
// chatty monitor does not trigger payload building for events every
// recipient would suppress anyway.
type MonitorBridge struct {
	events EventSink
	logger *zap.Logger
}

func NewMonitorBridge(events EventSink, logger *zap.Logger) *MonitorBridge {
	return &MonitorBridge{events: events, logger: logger}
}

// Handle is the MessageHandler for the monitor topic.
func (b *MonitorBridge) Handle(topic string, payload []byte) error {
	var ev monitorEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return fmt.Errorf("failed to decode monitor event: %w", err)
	}
	if ev.Type == "" {
		return fmt.Errorf("monitor event has no type")
	}

	ctx := context.Background()
	eventType := domain.NotificationType(ev.Type)

	switch eventType {
	case domain.TypeSensorOffline:
		ok, err := b.events.CanCreateSensorOfflineSummary(ctx, ev.Project, ev.Gh)
		if err != nil {
			b.logger.Warn("sensor_offline guard failed, delivering anyway", zap.Error(err))
		} else if !ok {
			return nil
		}
	case domain.TypeSensorAlert:
		if ev.SensorKey != "" && ev.Triggered != "" {
			ok, err := b.events.CanCreateSensorAlert(ctx, ev.Project, ev.Gh, ev.SensorKey, ev.Triggered)
			if err != nil {
				b.logger.Warn("sensor_alert guard failed, delivering anyway", zap.Error(err))
			} else if !ok {
				return nil
			}
		}
	}

	b.events.Create(ctx, b.toNotificationEvent(ev, eventType))
	return nil
}

func (b *MonitorBridge) toNotificationEvent(ev monitorEvent, eventType domain.NotificationType) domain.NotificationEvent {
	severity := domain.Severity(ev.Severity)
	if severity == "" {
		switch eventType {
		case domain.TypeDeviceOffline, domain.TypeSystemError:
			severity = domain.SeverityCritical
		case domain.TypeSensorOffline, domain.TypeSensorAlert:
			severity = domain.SeverityWarning
		default:
			severity = domain.SeverityInfo
		}
	}

	metadata := map[string]any{}
	if ev.SensorKey != "" {
		metadata["sensorKey"] = ev.SensorKey
	}
	if ev.Triggered != "" {
		metadata["triggered"] = ev.Triggered
	}
	if ev.Value != "" {
		metadata["value"] = ev.Value
	}

	return domain.NotificationEvent{
		Type:         eventType,
		Severity:     severity,
		Title:        ev.Title,
		Message:      ev.Message,
		Metadata:     metadata,
		ProjectID:    ev.Project,
		GreenhouseID: ev.Gh,
	}
}
