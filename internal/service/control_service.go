package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/anusitsrb-glitch/greenhouse-pro-sub001/internal/audit"
	"github.com/anusitsrb-glitch/greenhouse-pro-sub001/internal/dispatch"
	"github.com/anusitsrb-glitch/greenhouse-pro-sub001/internal/domain"
	"github.com/anusitsrb-glitch/greenhouse-pro-sub001/internal/registry"
	"github.com/anusitsrb-glitch/greenhouse-pro-sub001/internal/repository"
)

const controlActionDismissSeconds = 10

// CommandDispatcher issues a control command upstream.
type CommandDispatcher interface {
	Dispatch(ctx context.Context, cmd dispatch.Command) (*dispatch.Outcome, error)
}

// Notifier fans an event out to entitled recipients, best-effort.
type Notifier interface {
	Create(ctx context.Context, event domain.NotificationEvent)
}

// ControlRequest one inbound control action.
type ControlRequest struct {
	ProjectKey    string
	GreenhouseKey string
	Method        string
	Params        any
	Timeout       time.Duration
	Source        domain.ControlSource
	UserID        string
	Username      string
	IPAddress     string
}

// ControlResult what the HTTP layer returns to the caller.
type ControlResult struct {
	Response json.RawMessage
	Message  string
}

// ControlService runs the full control cycle: audit, dispatch, history,
// notification. History and notification failures never fail the
// caller; only dispatch failures do.
type ControlService struct {
	dispatcher CommandDispatcher
	history    repository.ControlHistoryRepository
	auditor    audit.Recorder
	notifier   Notifier
	logger     *zap.Logger
	now        func() time.Time
}

func NewControlService(
	dispatcher CommandDispatcher,
	history repository.ControlHistoryRepository,
	auditor audit.Recorder,
	notifier Notifier,
	logger *zap.Logger,
) *ControlService {
	return &ControlService{
		dispatcher: dispatcher,
		history:    history,
		auditor:    auditor,
		notifier:   notifier,
		logger:     logger,
		now:        time.Now,
	}
}

// Execute dispatches the command and records the outcome. The returned
// error is dispatch.ErrDeviceOffline, a *dispatch.UpstreamError, or nil.
func (s *ControlService) Execute(ctx context.Context, req ControlRequest) (*ControlResult, error) {
	s.auditor.Record(ctx, audit.Entry{
		Action:        audit.ActionRPCSent,
		UserID:        req.UserID,
		Username:      req.Username,
		ProjectKey:    req.ProjectKey,
		GreenhouseKey: req.GreenhouseKey,
		Method:        req.Method,
		Params:        req.Params,
	})

	outcome, err := s.dispatcher.Dispatch(ctx, dispatch.Command{
		ProjectKey:    req.ProjectKey,
		GreenhouseKey: req.GreenhouseKey,
		Method:        req.Method,
		Params:        req.Params,
		Timeout:       req.Timeout,
	})
	if err != nil {
		s.auditor.Record(ctx, audit.Entry{
			Action:        audit.ActionRPCFailed,
			UserID:        req.UserID,
			Username:      req.Username,
			ProjectKey:    req.ProjectKey,
			GreenhouseKey: req.GreenhouseKey,
			Method:        req.Method,
			Params:        req.Params,
			Error:         err.Error(),
		})
		s.recordHistory(ctx, req, false, err.Error())
		return nil, err
	}

	s.auditor.Record(ctx, audit.Entry{
		Action:        audit.ActionRPCSuccess,
		UserID:        req.UserID,
		Username:      req.Username,
		ProjectKey:    req.ProjectKey,
		GreenhouseKey: req.GreenhouseKey,
		Method:        req.Method,
		Params:        req.Params,
		Response:      outcome.Response,
	})

	// Absorbed soft timeouts are recorded as success with no error
	// message: the command was almost certainly delivered.
	s.recordHistory(ctx, req, true, "")
	s.notifyControlAction(ctx, req)

	return &ControlResult{Response: outcome.Response, Message: outcome.Message}, nil
}

// recordHistory persists the outcome. It never fails the caller.
func (s *ControlService) recordHistory(ctx context.Context, req ControlRequest, success bool, errMsg string) {
	controlKey := registry.ControlKeyForMethod(req.Method)

	entry := &domain.ControlHistoryEntry{
		ID:           uuid.NewString(),
		GreenhouseID: req.GreenhouseKey,
		ControlKey:   controlKey,
		ControlName:  registry.DisplayName(controlKey),
		Action:       req.Method,
		Value:        fmt.Sprintf("%v", req.Params),
		Source:       req.Source,
		Success:      success,
		CreatedAt:    s.now(),
	}
	if req.UserID != "" {
		entry.UserID = &req.UserID
	}
	if req.IPAddress != "" {
		entry.IPAddress = &req.IPAddress
	}
	if errMsg != "" {
		entry.ErrorMessage = &errMsg
	}

	if err := s.history.Insert(ctx, entry); err != nil {
		s.logger.Error("failed to record control history",
			zap.String("control_key", entry.ControlKey),
			zap.String("gh", req.GreenhouseKey),
			zap.Error(err))
	}
}

func (s *ControlService) notifyControlAction(ctx context.Context, req ControlRequest) {
	controlKey := registry.ControlKeyForMethod(req.Method)
	name := registry.DisplayName(controlKey)
	actor := req.Username
	if actor == "" {
		actor = "system"
	}

	s.notifier.Create(ctx, domain.NotificationEvent{
		Type:     domain.TypeControlAction,
		Severity: domain.SeverityInfo,
		Title:    name,
		Message:  fmt.Sprintf("%s set %s to %v", actor, name, req.Params),
		Metadata: map[string]any{
			"controlKey": controlKey,
			"action":     req.Method,
			"value":      fmt.Sprintf("%v", req.Params),
			"username":   actor,
		},
		ProjectID:           req.ProjectKey,
		GreenhouseID:        req.GreenhouseKey,
		ExcludeUserID:       req.UserID,
		AutoDismiss:         true,
		DismissAfterSeconds: controlActionDismissSeconds,
	})
}

// ListHistory pages through recorded control outcomes.
func (s *ControlService) ListHistory(ctx context.Context, filters repository.ControlHistoryFilters, page, size int) ([]*domain.ControlHistoryEntry, int, error) {
	return s.history.List(ctx, filters, page, size)
}
