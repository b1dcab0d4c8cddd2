package httpapi

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/anusitsrb-glitch/greenhouse-pro-sub001/internal/domain"
)

// EventSink accepts domain events from the monitor path.
type EventSink interface {
	Create(ctx context.Context, event domain.NotificationEvent)
	CanCreateSensorOfflineSummary(ctx context.Context, projectID, greenhouseID string) (bool, error)
	CanCreateSensorAlert(ctx context.Context, projectID, greenhouseID, sensorKey, triggered string) (bool, error)
}

// EventsHandler lets the external monitor raise notification events over
// HTTP and probe the dedup guards before building expensive payloads.
type EventsHandler struct {
	events EventSink
	logger *zap.Logger
}

func NewEventsHandler(events EventSink, logger *zap.Logger) *EventsHandler {
	return &EventsHandler{events: events, logger: logger}
}

// Create handles POST /events. Delivery is best-effort: the engine
// filters and dedups per recipient, so this always answers 202.
func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireControlRole(w, r); !ok {
		return
	}

	var event domain.NotificationEvent
	if err := readBodyJSON(r, 1<<20, &event); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	if event.Type == "" || event.Title == "" {
		writeJSON(w, http.StatusBadRequest, Fail("type and title are required"))
		return
	}
	if event.Severity == "" {
		event.Severity = domain.SeverityInfo
	}

	h.events.Create(r.Context(), event)
	writeJSON(w, http.StatusAccepted, Ok(true))
}

// CanNotify handles GET /events/can-notify?type=&project=&gh=&sensorKey=&triggered=.
func (h *EventsHandler) CanNotify(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireControlRole(w, r); !ok {
		return
	}

	q := r.URL.Query()
	eventType := domain.NotificationType(q.Get("type"))
	project := q.Get("project")
	gh := q.Get("gh")

	var allowed bool
	var err error

	switch eventType {
	case domain.TypeSensorOffline:
		allowed, err = h.events.CanCreateSensorOfflineSummary(r.Context(), project, gh)
	case domain.TypeSensorAlert:
		sensorKey := q.Get("sensorKey")
		triggered := q.Get("triggered")
		if sensorKey == "" || triggered == "" {
			writeJSON(w, http.StatusBadRequest, Fail("sensorKey and triggered are required"))
			return
		}
		allowed, err = h.events.CanCreateSensorAlert(r.Context(), project, gh, sensorKey, triggered)
	default:
		// Other types are never deduped; always worth building.
		allowed = true
	}

	if err != nil {
		writeJSON(w, http.StatusInternalServerError, Fail(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, Ok(map[string]bool{"canNotify": allowed}))
}
