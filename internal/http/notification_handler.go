package httpapi

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/anusitsrb-glitch/greenhouse-pro-sub001/internal/domain"
)

type NotificationReader interface {
	List(ctx context.Context, userID string, unreadOnly bool, page, size int) ([]*domain.Notification, int, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	GetSettings(ctx context.Context, userID string) (*domain.NotificationSettings, error)
	UpdateSettings(ctx context.Context, settings *domain.NotificationSettings) error
}

type NotificationHandler struct {
	notifications NotificationReader
	logger        *zap.Logger
}

func NewNotificationHandler(notifications NotificationReader, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, logger: logger}
}

type notificationPage struct {
	Items []*domain.Notification `json:"items"`
	Total int                    `json:"total"`
	Page  int                    `json:"page"`
	Size  int                    `json:"size"`
}

// List handles GET /notifications?unread=&page=&size=. Users only ever
// see their own rows.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	unreadOnly := q.Get("unread") == "true"
	page := parseInt(q.Get("page"), 1)
	size := parseInt(q.Get("size"), 20)

	items, total, err := h.notifications.List(r.Context(), id.UserID, unreadOnly, page, size)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, Fail(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, Ok(notificationPage{Items: items, Total: total, Page: page, Size: size}))
}

// MarkRead handles POST /notifications/{id}/read.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request, notificationID string) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	if err := h.notifications.MarkRead(r.Context(), id.UserID, notificationID); err != nil {
		writeJSON(w, http.StatusNotFound, Fail(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, Ok(true))
}

// MarkAllRead handles POST /notifications/read-all.
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	count, err := h.notifications.MarkAllRead(r.Context(), id.UserID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, Fail(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, Ok(map[string]any{"updated": count}))
}

// GetSettings handles GET /notification-settings.
func (h *NotificationHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	settings, err := h.notifications.GetSettings(r.Context(), id.UserID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, Fail(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, Ok(settings))
}

// UpdateSettings handles PUT /notification-settings. The user id always
// comes from the identity headers, never from the body: users edit only
// their own settings.
func (h *NotificationHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var settings domain.NotificationSettings
	if err := readBodyJSON(r, 1<<20, &settings); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	settings.UserID = id.UserID

	if err := h.notifications.UpdateSettings(r.Context(), &settings); err != nil {
		writeJSON(w, http.StatusInternalServerError, Fail(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, Ok(settings))
}
