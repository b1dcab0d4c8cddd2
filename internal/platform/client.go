// Package platform is the client for the upstream IoT device-management
// platform: telemetry, attributes and remote procedure calls over HTTP
// with bearer-token auth. The platform itself is a black box; only this
// surface is consumed.
package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// APIError a non-2xx response from the platform.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("platform API error: %s (status: %d)", e.Message, e.Status)
}

// Client upstream platform HTTP client.
type Client struct {
	httpClient      *resty.Client
	livenessTimeout time.Duration
	logger          *zap.Logger
}

// NewClient builds the client. Read-only requests retry on transient
// failures; RPC sends never retry (a retried command could double-act
// on a relay).
func NewClient(baseURL, token string, livenessTimeout time.Duration, logger *zap.Logger) *Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(token).
		SetTimeout(30 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if r == nil || r.Request == nil {
				return false
			}
			if r.Request.Method != http.MethodGet {
				return false
			}
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		}).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{
		httpClient:      client,
		livenessTimeout: livenessTimeout,
		logger:          logger,
	}
}

type connectivityResponse struct {
	Online       bool  `json:"online"`
	LastActivity int64 `json:"lastActivity"`
}

// IsDeviceOnline asks the platform whether the device is currently
// reporting as connected.
func (c *Client) IsDeviceOnline(ctx context.Context, project, device string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, c.livenessTimeout)
	defer cancel()

	var out connectivityResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(&out).
		Get(fmt.Sprintf("/api/v1/projects/%s/devices/%s/connectivity", project, device))
	if err != nil {
		return false, fmt.Errorf("connectivity check failed: %w", err)
	}
	if resp.IsError() {
		return false, apiError(resp)
	}
	return out.Online, nil
}

type rpcRequest struct {
	Method    string `json:"method"`
	Params    any    `json:"params"`
	TimeoutMs int64  `json:"timeoutMs,omitempty"`
}

// SendRPC issues a remote procedure call to a device. oneWay selects
// the platform's fire-and-forget endpoint: the HTTP send still
// completes synchronously but the platform does not wait for a
// device-side acknowledgement. timeout bounds the whole round trip.
func (c *Client) SendRPC(ctx context.Context, project, device, method string, params any, timeout time.Duration, oneWay bool) (json.RawMessage, error) {
	mode := "twoway"
	if oneWay {
		mode = "oneway"
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body := rpcRequest{Method: method, Params: params}
	if !oneWay {
		body.TimeoutMs = timeout.Milliseconds()
	}

	c.logger.Debug("Sending platform RPC",
		zap.String("project", project),
		zap.String("device", device),
		zap.String("method", method),
		zap.String("mode", mode),
	)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(body).
		Post(fmt.Sprintf("/api/v1/projects/%s/devices/%s/rpc/%s", project, device, mode))
	if err != nil {
		return nil, fmt.Errorf("rpc %s failed: %w", method, err)
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}

	raw := resp.Body()
	if len(raw) == 0 {
		raw = []byte("null")
	}
	return json.RawMessage(raw), nil
}

// GetAttributes reads current device-state attributes by key.
func (c *Client) GetAttributes(ctx context.Context, project, device string, keys []string) (map[string]any, error) {
	return c.getKeyed(ctx, fmt.Sprintf("/api/v1/projects/%s/devices/%s/attributes", project, device), keys)
}

// GetLatestTelemetry reads the newest value of each telemetry series.
func (c *Client) GetLatestTelemetry(ctx context.Context, project, device string, keys []string) (map[string]any, error) {
	return c.getKeyed(ctx, fmt.Sprintf("/api/v1/projects/%s/devices/%s/telemetry/latest", project, device), keys)
}

func (c *Client) getKeyed(ctx context.Context, path string, keys []string) (map[string]any, error) {
	var out map[string]any
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("keys", strings.Join(keys, ",")).
		SetResult(&out).
		Get(path)
	if err != nil {
		return nil, fmt.Errorf("platform read failed: %w", err)
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}
	return out, nil
}

func apiError(resp *resty.Response) error {
	msg := strings.TrimSpace(string(resp.Body()))
	if msg == "" {
		msg = http.StatusText(resp.StatusCode())
	}
	return &APIError{Status: resp.StatusCode(), Message: msg}
}
