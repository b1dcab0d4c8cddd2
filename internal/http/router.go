package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Router uses the standard library ServeMux to avoid a third-party
// routing dependency.
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func methodOnly(method string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if req.Method != method {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h(w, req)
	}
}

// RegisterControlRoutes registers the device control surface. /rpc and
// /device-status keep their exact paths and response shapes for the
// frontend.
func (r *Router) RegisterControlRoutes(c *ControlHandler) {
	r.Handle("/rpc", methodOnly(http.MethodPost, c.Rpc))
	r.Handle("/device-status", methodOnly(http.MethodGet, c.DeviceStatus))
	r.Handle("/telemetry", methodOnly(http.MethodGet, c.Telemetry))
	r.Handle("/control-history", methodOnly(http.MethodGet, c.ControlHistory))
}

// RegisterNotificationRoutes registers the per-user notification surface.
func (r *Router) RegisterNotificationRoutes(n *NotificationHandler) {
	r.Handle("/notifications", methodOnly(http.MethodGet, n.List))
	r.Handle("/notifications/read-all", methodOnly(http.MethodPost, n.MarkAllRead))

	// /notifications/{id}/read
	r.Handle("/notifications/", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		rest := strings.TrimPrefix(req.URL.Path, "/notifications/")
		id, action, found := strings.Cut(rest, "/")
		if !found || id == "" || action != "read" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		n.MarkRead(w, req, id)
	})

	r.Handle("/notification-settings", func(w http.ResponseWriter, req *http.Request) {
		switch req.Method {
		case http.MethodGet:
			n.GetSettings(w, req)
		case http.MethodPut:
			n.UpdateSettings(w, req)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}

// RegisterEventRoutes registers the monitor-facing event intake.
func (r *Router) RegisterEventRoutes(e *EventsHandler) {
	r.Handle("/events", methodOnly(http.MethodPost, e.Create))
	r.Handle("/events/can-notify", methodOnly(http.MethodGet, e.CanNotify))
}
