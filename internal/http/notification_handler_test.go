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

type fakeNotificationReader struct {
	notifications []*domain.Notification
	settings      *domain.NotificationSettings
	markedRead    []string
	markedAllFor  string
	updated       *domain.NotificationSettings
	listUserID    string
	unreadOnly    bool
}

func (f *fakeNotificationReader) List(_ context.Context, userID string, unreadOnly bool, page, size int) ([]*domain.Notification, int, error) {
	f.listUserID = userID
	f.unreadOnly = unreadOnly
	return f.notifications, len(f.notifications), nil
}

func (f *fakeNotificationReader) MarkRead(_ context.Context, userID, notificationID string) error {
	f.markedRead = append(f.markedRead, notificationID)
	return nil
}

func (f *fakeNotificationReader) MarkAllRead(_ context.Context, userID string) (int64, error) {
	f.markedAllFor = userID
	return 4, nil
}

func (f *fakeNotificationReader) GetSettings(_ context.Context, userID string) (*domain.NotificationSettings, error) {
	if f.settings != nil {
		return f.settings, nil
	}
	return domain.DefaultNotificationSettings(userID), nil
}

func (f *fakeNotificationReader) UpdateSettings(_ context.Context, settings *domain.NotificationSettings) error {
	f.updated = settings
	return nil
}

func asUser(req *http.Request) *http.Request {
	req.Header.Set("X-User-Id", "u1")
	req.Header.Set("X-Username", "somchai")
	req.Header.Set("X-User-Role", "viewer")
	return req
}

func TestNotificationList(t *testing.T) {
	reader := &fakeNotificationReader{notifications: []*domain.Notification{
		{ID: "n1", UserID: "u1", Type: domain.TypeControlAction},
	}}
	h := NewNotificationHandler(reader, zap.NewNop())

	rec := httptest.NewRecorder()
	h.List(rec, asUser(httptest.NewRequest(http.MethodGet, "/notifications?unread=true", nil)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", reader.listUserID)
	assert.True(t, reader.unreadOnly)

	var resp Result[notificationPage]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Result.Total)
}

func TestNotificationList_NoIdentity(t *testing.T) {
	h := NewNotificationHandler(&fakeNotificationReader{}, zap.NewNop())

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/notifications", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNotificationMarkRead(t *testing.T) {
	reader := &fakeNotificationReader{}
	h := NewNotificationHandler(reader, zap.NewNop())

	rec := httptest.NewRecorder()
	h.MarkRead(rec, asUser(httptest.NewRequest(http.MethodPost, "/notifications/n1/read", nil)), "n1")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"n1"}, reader.markedRead)
}

func TestNotificationMarkAllRead(t *testing.T) {
	reader := &fakeNotificationReader{}
	h := NewNotificationHandler(reader, zap.NewNop())

	rec := httptest.NewRecorder()
	h.MarkAllRead(rec, asUser(httptest.NewRequest(http.MethodPost, "/notifications/read-all", nil)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", reader.markedAllFor)

	var resp Result[map[string]int64]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(4), resp.Result["updated"])
}

func TestUpdateSettings_ForcesOwnUserID(t *testing.T) {
	reader := &fakeNotificationReader{}
	h := NewNotificationHandler(reader, zap.NewNop())

	// Body claims another user; the handler must override it.
	body := `{"userId":"someone-else","enabled":false,"quietHoursEnabled":true,"quietHoursStart":"21:00","quietHoursEnd":"06:00"}`
	rec := httptest.NewRecorder()
	h.UpdateSettings(rec, asUser(httptest.NewRequest(http.MethodPut, "/notification-settings", strings.NewReader(body))))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, reader.updated)
	assert.Equal(t, "u1", reader.updated.UserID)
	assert.False(t, reader.updated.Enabled)
	assert.True(t, reader.updated.QuietHoursEnabled)
	assert.Equal(t, "21:00", reader.updated.QuietHoursStart)
}

func TestGetSettings_ReturnsDefaults(t *testing.T) {
	h := NewNotificationHandler(&fakeNotificationReader{}, zap.NewNop())

	rec := httptest.NewRecorder()
	h.GetSettings(rec, asUser(httptest.NewRequest(http.MethodGet, "/notification-settings", nil)))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp Result[domain.NotificationSettings]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "u1", resp.Result.UserID)
	assert.True(t, resp.Result.Enabled)
	assert.Equal(t, "22:00", resp.Result.QuietHoursStart)
}
