package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/anusitsrb-glitch/greenhouse-pro-sub001/internal/dispatch"
	"github.com/anusitsrb-glitch/greenhouse-pro-sub001/internal/domain"
	"github.com/anusitsrb-glitch/greenhouse-pro-sub001/internal/registry"
	"github.com/anusitsrb-glitch/greenhouse-pro-sub001/internal/repository"
	"github.com/anusitsrb-glitch/greenhouse-pro-sub001/internal/service"
	"github.com/anusitsrb-glitch/greenhouse-pro-sub001/internal/store"
)

// deviceOfflineMessage is part of the frontend contract; do not reword.
const deviceOfflineMessage = "Device is offline. Command not sent."

const deviceStatusCacheTTL = 10 * time.Second

type ControlExecutor interface {
	Execute(ctx context.Context, req service.ControlRequest) (*service.ControlResult, error)
	ListHistory(ctx context.Context, filters repository.ControlHistoryFilters, page, size int) ([]*domain.ControlHistoryEntry, int, error)
}

type DeviceStatusClient interface {
	IsDeviceOnline(ctx context.Context, project, device string) (bool, error)
	GetLatestTelemetry(ctx context.Context, project, device string, keys []string) (map[string]any, error)
}

type ControlHandler struct {
	control ControlExecutor
	status  DeviceStatusClient
	cache   store.KV // nil when redis is disabled
	logger  *zap.Logger
}

func NewControlHandler(control ControlExecutor, status DeviceStatusClient, cache store.KV, logger *zap.Logger) *ControlHandler {
	return &ControlHandler{control: control, status: status, cache: cache, logger: logger}
}

type rpcBody struct {
	Project string          `json:"project"`
	Gh      string          `json:"gh"`
	Method  string          `json:"method"`
	Params  any             `json:"params"`
	Timeout int    `json:"timeout"` // milliseconds
	Source  string `json:"source"`
}

// Rpc handles POST /rpc. The response shapes here are pinned by the
// frontend: 200 {rpcResponse, message}, 503/502 {message}.
func (h *ControlHandler) Rpc(w http.ResponseWriter, r *http.Request) {
	id, ok := requireControlRole(w, r)
	if !ok {
		return
	}

	var body rpcBody
	if err := readBodyJSON(r, 1<<20, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "invalid request body"})
		return
	}
	if body.Project == "" || body.Gh == "" || body.Method == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "project, gh and method are required"})
		return
	}

	source := domain.ControlSource(body.Source)
	if source == "" {
		source = domain.SourceManual
	}

	result, err := h.control.Execute(r.Context(), service.ControlRequest{
		ProjectKey:    body.Project,
		GreenhouseKey: body.Gh,
		Method:        body.Method,
		Params:        body.Params,
		Timeout:       time.Duration(body.Timeout) * time.Millisecond,
		Source:        source,
		UserID:        id.UserID,
		Username:      id.Username,
		IPAddress:     clientIP(r),
	})
	if err != nil {
		if errors.Is(err, dispatch.ErrDeviceOffline) {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"message": deviceOfflineMessage})
			return
		}
		var ue *dispatch.UpstreamError
		if errors.As(err, &ue) {
			writeJSON(w, http.StatusBadGateway, map[string]any{"message": ue.Message})
			return
		}
		writeJSON(w, http.StatusBadGateway, map[string]any{"message": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"rpcResponse": result.Response,
		"message":     result.Message,
	})
}

// DeviceStatus handles GET /device-status?project=&gh=. The liveness
// answer is cached briefly so a dashboard polling several widgets does
// not hammer the upstream connectivity endpoint. The RPC path never
// reads this cache.
func (h *ControlHandler) DeviceStatus(w http.ResponseWriter, r *http.Request) {
	project := r.URL.Query().Get("project")
	gh := r.URL.Query().Get("gh")
	if project == "" || gh == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "project and gh are required"})
		return
	}

	if h.cache != nil {
		if cached, err := h.cache.Get(r.Context(), store.DeviceStatusKey(project, gh)); err == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(cached))
			return
		}
	}

	online, err := h.status.IsDeviceOnline(r.Context(), project, gh)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]any{"message": err.Error()})
		return
	}

	payload := deviceStatusPayload(online)
	if h.cache != nil {
		if raw, err := json.Marshal(payload); err == nil {
			if err := h.cache.Set(r.Context(), store.DeviceStatusKey(project, gh), string(raw), deviceStatusCacheTTL); err != nil {
				h.logger.Warn("failed to cache device status", zap.Error(err))
			}
		}
	}

	writeJSON(w, http.StatusOK, payload)
}

func deviceStatusPayload(online bool) map[string]any {
	status := "Offline"
	statusTh := "ออฟไลน์"
	if online {
		status = "Online"
		statusTh = "ออนไลน์"
	}
	return map[string]any{"online": online, "status": status, "statusTh": statusTh}
}

// Telemetry handles GET /telemetry?project=&gh= and returns the latest
// value for every known telemetry key.
func (h *ControlHandler) Telemetry(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireIdentity(w, r); !ok {
		return
	}

	project := r.URL.Query().Get("project")
	gh := r.URL.Query().Get("gh")
	if project == "" || gh == "" {
		writeJSON(w, http.StatusBadRequest, Fail("project and gh are required"))
		return
	}

	values, err := h.status.GetLatestTelemetry(r.Context(), project, gh, registry.TelemetryKeys())
	if err != nil {
		writeJSON(w, http.StatusBadGateway, Fail(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, Ok(values))
}

type controlHistoryPage struct {
	Items []*domain.ControlHistoryEntry `json:"items"`
	Total int                           `json:"total"`
	Page  int                           `json:"page"`
	Size  int                           `json:"size"`
}

// ControlHistory handles GET /control-history with optional filters.
func (h *ControlHandler) ControlHistory(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireIdentity(w, r); !ok {
		return
	}

	q := r.URL.Query()
	filters := repository.ControlHistoryFilters{}
	if v := q.Get("gh"); v != "" {
		filters.GreenhouseID = &v
	}
	if v := q.Get("controlKey"); v != "" {
		filters.ControlKey = &v
	}
	if v := q.Get("source"); v != "" {
		filters.Source = &v
	}
	if v := q.Get("success"); v != "" {
		success := v == "true"
		filters.Success = &success
	}
	if v := q.Get("start"); v != "" {
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			filters.StartTime = &ts
		}
	}
	if v := q.Get("end"); v != "" {
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			filters.EndTime = &ts
		}
	}

	page := parseInt(q.Get("page"), 1)
	size := parseInt(q.Get("size"), 20)

	items, total, err := h.control.ListHistory(r.Context(), filters, page, size)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, Fail(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, Ok(controlHistoryPage{Items: items, Total: total, Page: page, Size: size}))
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i > 0 {
		host = host[:i]
	}
	return host
}
