package repository

import (
	"context"
	"time"

	"github.com/anusitsrb-glitch/greenhouse-pro-sub001/internal/domain"
)

// ControlHistoryFilters filter conditions for history listing.
type ControlHistoryFilters struct {
	GreenhouseID *string
	ControlKey   *string
	Source       *string
	Success      *bool
	StartTime    *time.Time // created_at >= StartTime
	EndTime      *time.Time // created_at <= EndTime
}

// ControlHistoryRepository persisted control-command outcomes.
type ControlHistoryRepository interface {
	Insert(ctx context.Context, e *domain.ControlHistoryEntry) error
	List(ctx context.Context, filters ControlHistoryFilters, page, size int) ([]*domain.ControlHistoryEntry, int, error)
}
