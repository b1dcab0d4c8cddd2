// Package audit is the fire-and-forget audit side channel: one entry
// when an RPC is sent and one for its outcome. Audit failures must
// never fail the triggering control action, so Record returns nothing.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Audit actions for the RPC path.
const (
	ActionRPCSent    = "RPC_SENT"
	ActionRPCSuccess = "RPC_SUCCESS"
	ActionRPCFailed  = "RPC_FAILED"
)

// Entry one audit record.
type Entry struct {
	ID            string
	Action        string
	UserID        string
	Username      string
	ProjectKey    string
	GreenhouseKey string
	Method        string
	Params        any
	Response      json.RawMessage
	Error         string
	CreatedAt     time.Time
}

// Recorder consumes audit entries best-effort.
type Recorder interface {
	Record(ctx context.Context, e Entry)
}

// LogRecorder writes audit entries to the structured log, where the
// external audit pipeline picks them up.
type LogRecorder struct {
	logger *zap.Logger
}

func NewLogRecorder(logger *zap.Logger) *LogRecorder {
	return &LogRecorder{logger: logger.Named("audit")}
}

func (r *LogRecorder) Record(_ context.Context, e Entry) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	fields := []zap.Field{
		zap.String("audit_id", e.ID),
		zap.String("action", e.Action),
		zap.String("user_id", e.UserID),
		zap.String("username", e.Username),
		zap.String("project", e.ProjectKey),
		zap.String("gh", e.GreenhouseKey),
		zap.String("method", e.Method),
		zap.Any("params", e.Params),
		zap.Time("created_at", e.CreatedAt),
	}
	if len(e.Response) > 0 {
		fields = append(fields, zap.ByteString("response", e.Response))
	}
	if e.Error != "" {
		fields = append(fields, zap.String("error", e.Error))
	}

	r.logger.Info("audit", fields...)
}
