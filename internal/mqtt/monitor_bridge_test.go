package mqtt

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/anusitsrb-glitch/greenhouse-pro-sub001/internal/domain"
)

type fakeSink struct {
	events     []domain.NotificationEvent
	canOffline bool
	canAlert   bool
}

func (f *fakeSink) Create(_ context.Context, event domain.NotificationEvent) {
	f.events = append(f.events, event)
}

func (f *fakeSink) CanCreateSensorOfflineSummary(_ context.Context, projectID, greenhouseID string) (bool, error) {
	return f.canOffline, nil
}

func (f *fakeSink) CanCreateSensorAlert(_ context.Context, projectID, greenhouseID, sensorKey, triggered string) (bool, error) {
	return f.canAlert, nil
}

func TestHandle_SensorAlertPassesGuard(t *testing.T) {
	sink := &fakeSink{canAlert: true}
	bridge := NewMonitorBridge(sink, zap.NewNop())

	payload := `{"type":"sensor_alert","project":"maejard","gh":"greenhouse1","title":"High temperature","message":"32.1C","sensorKey":"air_temp","triggered":"high","value":"32.1"}`
	err := bridge.Handle("greenhouse/monitor/events", []byte(payload))

	require.NoError(t, err)
	require.Len(t, sink.events, 1)
	event := sink.events[0]
	assert.Equal(t, domain.TypeSensorAlert, event.Type)
	assert.Equal(t, domain.SeverityWarning, event.Severity)
	assert.Equal(t, "air_temp", event.Metadata["sensorKey"])
	assert.Equal(t, "high", event.Metadata["triggered"])
	assert.Equal(t, "maejard", event.ProjectID)
	assert.Equal(t, "greenhouse1", event.GreenhouseID)
}

func TestHandle_SensorAlertBlockedByGuard(t *testing.T) {
	sink := &fakeSink{canAlert: false}
	bridge := NewMonitorBridge(sink, zap.NewNop())

	payload := `{"type":"sensor_alert","project":"maejard","gh":"greenhouse1","title":"High temperature","sensorKey":"air_temp","triggered":"high"}`
	err := bridge.Handle("greenhouse/monitor/events", []byte(payload))

	require.NoError(t, err)
	assert.Empty(t, sink.events)
}

func TestHandle_SensorAlertWithoutMetadataSkipsGuard(t *testing.T) {
	// Guard would deny, but without sensorKey/triggered the engine's
	// fail-open rule applies and delivery goes ahead.
	sink := &fakeSink{canAlert: false}
	bridge := NewMonitorBridge(sink, zap.NewNop())

	payload := `{"type":"sensor_alert","project":"maejard","gh":"greenhouse1","title":"Alert"}`
	err := bridge.Handle("greenhouse/monitor/events", []byte(payload))

	require.NoError(t, err)
	assert.Len(t, sink.events, 1)
}

func TestHandle_SensorOfflineBlockedByGuard(t *testing.T) {
	sink := &fakeSink{canOffline: false}
	bridge := NewMonitorBridge(sink, zap.NewNop())

	payload := `{"type":"sensor_offline","project":"maejard","gh":"greenhouse1","title":"Sensors offline"}`
	err := bridge.Handle("greenhouse/monitor/events", []byte(payload))

	require.NoError(t, err)
	assert.Empty(t, sink.events)
}

func TestHandle_DeviceOfflineDefaultsSeverity(t *testing.T) {
	sink := &fakeSink{}
	bridge := NewMonitorBridge(sink, zap.NewNop())

	payload := `{"type":"device_offline","project":"maejard","gh":"greenhouse1","title":"Device offline"}`
	err := bridge.Handle("greenhouse/monitor/events", []byte(payload))

	require.NoError(t, err)
	require.Len(t, sink.events, 1)
	assert.Equal(t, domain.SeverityCritical, sink.events[0].Severity)
}

func TestHandle_BadPayload(t *testing.T) {
	bridge := NewMonitorBridge(&fakeSink{}, zap.NewNop())

	assert.Error(t, bridge.Handle("greenhouse/monitor/events", []byte("not-json")))
	assert.Error(t, bridge.Handle("greenhouse/monitor/events", []byte(`{"project":"p"}`)))
}
