package repository

import (
	"context"

	"github.com/anusitsrb-glitch/greenhouse-pro-sub001/internal/domain"
)

// NotificationSettingsRepository per-user delivery preferences.
type NotificationSettingsRepository interface {
	// GetOrCreate returns the user's settings, creating the default row
	// on first access.
	GetOrCreate(ctx context.Context, userID string) (*domain.NotificationSettings, error)
	Update(ctx context.Context, s *domain.NotificationSettings) error
}
