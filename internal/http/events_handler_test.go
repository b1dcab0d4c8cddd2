package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/anusitsrb-glitch/greenhouse-pro-sub001/internal/domain"
)

type fakeEventSink struct {
	events       []domain.NotificationEvent
	canOffline   bool
	canAlert     bool
	alertQueries [][4]string
}

func (f *fakeEventSink) Create(_ context.Context, event domain.NotificationEvent) {
	f.events = append(f.events, event)
}

func (f *fakeEventSink) CanCreateSensorOfflineSummary(_ context.Context, projectID, greenhouseID string) (bool, error) {
	return f.canOffline, nil
}

func (f *fakeEventSink) CanCreateSensorAlert(_ context.Context, projectID, greenhouseID, sensorKey, triggered string) (bool, error) {
	f.alertQueries = append(f.alertQueries, [4]string{projectID, greenhouseID, sensorKey, triggered})
	return f.canAlert, nil
}

func TestEventsCreate(t *testing.T) {
	sink := &fakeEventSink{}
	h := NewEventsHandler(sink, zap.NewNop())

	body := `{"type":"sensor_alert","title":"High temperature","message":"32.1C","greenhouseId":"greenhouse1","metadata":{"sensorKey":"air_temp","triggered":"high"}}`
	rec := httptest.NewRecorder()
	h.Create(rec, asOperator(httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(body))))

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, sink.events, 1)
	assert.Equal(t, domain.TypeSensorAlert, sink.events[0].Type)
	assert.Equal(t, "greenhouse1", sink.events[0].GreenhouseID)
	// Severity defaults when omitted.
	assert.Equal(t, domain.SeverityInfo, sink.events[0].Severity)
}

func TestEventsCreate_MissingType(t *testing.T) {
	sink := &fakeEventSink{}
	h := NewEventsHandler(sink, zap.NewNop())

	rec := httptest.NewRecorder()
	h.Create(rec, asOperator(httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(`{"title":"x"}`))))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, sink.events)
}

func TestCanNotify_SensorOffline(t *testing.T) {
	sink := &fakeEventSink{canOffline: false}
	h := NewEventsHandler(sink, zap.NewNop())

	rec := httptest.NewRecorder()
	h.CanNotify(rec, asOperator(httptest.NewRequest(http.MethodGet, "/events/can-notify?type=sensor_offline&project=maejard&gh=greenhouse1", nil)))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp Result[map[string]bool]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Result["canNotify"])
}

func TestCanNotify_SensorAlert(t *testing.T) {
	sink := &fakeEventSink{canAlert: true}
	h := NewEventsHandler(sink, zap.NewNop())

	rec := httptest.NewRecorder()
	h.CanNotify(rec, asOperator(httptest.NewRequest(http.MethodGet, "/events/can-notify?type=sensor_alert&project=maejard&gh=greenhouse1&sensorKey=air_temp&triggered=high", nil)))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp Result[map[string]bool]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Result["canNotify"])
	require.Len(t, sink.alertQueries, 1)
	assert.Equal(t, [4]string{"maejard", "greenhouse1", "air_temp", "high"}, sink.alertQueries[0])
}

func TestCanNotify_SensorAlertMissingParams(t *testing.T) {
	h := NewEventsHandler(&fakeEventSink{}, zap.NewNop())

	rec := httptest.NewRecorder()
	h.CanNotify(rec, asOperator(httptest.NewRequest(http.MethodGet, "/events/can-notify?type=sensor_alert&project=p&gh=g", nil)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCanNotify_OtherTypesAlwaysAllowed(t *testing.T) {
	h := NewEventsHandler(&fakeEventSink{}, zap.NewNop())

	rec := httptest.NewRecorder()
	h.CanNotify(rec, asOperator(httptest.NewRequest(http.MethodGet, "/events/can-notify?type=control_action", nil)))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp Result[map[string]bool]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Result["canNotify"])
}
