// Package dispatch turns abstract control commands into upstream
// platform RPCs: liveness short-circuit, one-way classification,
// bounded timeouts, and soft-timeout absorption.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/anusitsrb-glitch/greenhouse-pro-sub001/internal/platform"

	"go.uber.org/zap"
)

// ErrDeviceOffline the liveness check failed; the RPC was never
// attempted upstream.
var ErrDeviceOffline = errors.New("device offline")

// UpstreamError the platform was reachable but rejected or failed the
// call in a non-timeout way.
type UpstreamError struct {
	Status  int
	Message string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error: %s", e.Message)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Command an ephemeral control request, consumed entirely within one
// dispatch cycle.
type Command struct {
	ProjectKey    string
	GreenhouseKey string
	Method        string
	Params        any
	Timeout       time.Duration // two-way ack timeout; zero means the default
}

// Outcome a successful dispatch. Confirmed=false means the command was
// accepted but the device-side acknowledgement is pending; attribute
// polling confirms it later.
type Outcome struct {
	Response  json.RawMessage
	Confirmed bool
	Message   string
}

// PlatformClient the slice of the platform surface the dispatcher
// needs.
type PlatformClient interface {
	IsDeviceOnline(ctx context.Context, project, device string) (bool, error)
	SendRPC(ctx context.Context, project, device, method string, params any, timeout time.Duration, oneWay bool) (json.RawMessage, error)
}

// oneWaySendTimeout bounds the HTTP send of a fire-and-forget command.
// Deliberately independent of any caller-supplied ack timeout.
const oneWaySendTimeout = 5 * time.Second

type Dispatcher struct {
	platform       PlatformClient
	defaultTimeout time.Duration
	logger         *zap.Logger
}

func NewDispatcher(platform PlatformClient, defaultTimeout time.Duration, logger *zap.Logger) *Dispatcher {
	if defaultTimeout <= 0 {
		defaultTimeout = 10 * time.Second
	}
	return &Dispatcher{
		platform:       platform,
		defaultTimeout: defaultTimeout,
		logger:         logger,
	}
}

// Dispatch runs one command through the full cycle:
//  1. liveness check — offline devices fail immediately with
//     ErrDeviceOffline and no RPC is issued
//  2. one-way commands are sent without waiting for an acknowledgement
//  3. two-way commands wait for an ack within the bounded timeout;
//     gateway/request timeouts are absorbed as accepted-but-unconfirmed
//     because the command was almost certainly delivered
//  4. any other upstream failure surfaces as *UpstreamError
func (d *Dispatcher) Dispatch(ctx context.Context, cmd Command) (*Outcome, error) {
	online, err := d.platform.IsDeviceOnline(ctx, cmd.ProjectKey, cmd.GreenhouseKey)
	if err != nil {
		return nil, upstreamError(err)
	}
	if !online {
		return nil, ErrDeviceOffline
	}

	if IsOneWay(cmd.Method) {
		resp, err := d.platform.SendRPC(ctx, cmd.ProjectKey, cmd.GreenhouseKey, cmd.Method, cmd.Params, oneWaySendTimeout, true)
		if err != nil {
			if isSoftTimeout(err) {
				d.logger.Warn("One-way send timed out upstream; treating as accepted",
					zap.String("method", cmd.Method),
					zap.String("gh", cmd.GreenhouseKey),
					zap.Error(err),
				)
				return &Outcome{Confirmed: false, Message: "command accepted, confirmation pending"}, nil
			}
			return nil, upstreamError(err)
		}
		return &Outcome{Response: resp, Confirmed: false, Message: "command accepted, confirmation pending"}, nil
	}

	timeout := cmd.Timeout
	if timeout <= 0 {
		timeout = d.defaultTimeout
	}

	resp, err := d.platform.SendRPC(ctx, cmd.ProjectKey, cmd.GreenhouseKey, cmd.Method, cmd.Params, timeout, false)
	if err != nil {
		if isSoftTimeout(err) {
			d.logger.Warn("Acknowledgement lost to an upstream timeout; treating as accepted",
				zap.String("method", cmd.Method),
				zap.String("gh", cmd.GreenhouseKey),
				zap.Error(err),
			)
			return &Outcome{Confirmed: false, Message: "command accepted, confirmation pending"}, nil
		}
		return nil, upstreamError(err)
	}

	return &Outcome{Response: resp, Confirmed: true, Message: "command acknowledged"}, nil
}

var timeoutMsgRe = regexp.MustCompile(`(?i)(timed?[ -]?out|timeout|deadline exceeded)`)

// isSoftTimeout classifies gateway/request-timeout failures: the
// command was almost certainly delivered and only the acknowledgement
// round-trip was lost.
func isSoftTimeout(err error) bool {
	var apiErr *platform.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Status == http.StatusGatewayTimeout || apiErr.Status == http.StatusRequestTimeout {
			return true
		}
		return timeoutMsgRe.MatchString(apiErr.Message)
	}
	return timeoutMsgRe.MatchString(err.Error())
}

func upstreamError(err error) error {
	var apiErr *platform.APIError
	if errors.As(err, &apiErr) {
		return &UpstreamError{Status: apiErr.Status, Message: apiErr.Message, Err: err}
	}
	return &UpstreamError{Message: err.Error(), Err: err}
}
