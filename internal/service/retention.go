package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/anusitsrb-glitch/greenhouse-pro-sub001/internal/repository"
)

// RetentionSweeper periodically deletes read notifications older than
// the retention horizon. Unread notifications are never swept.
type RetentionSweeper struct {
	notifications repository.NotificationsRepository
	retention     time.Duration
	interval      time.Duration
	logger        *zap.Logger
	now           func() time.Time
}

func NewRetentionSweeper(
	notifications repository.NotificationsRepository,
	retentionDays int,
	interval time.Duration,
	logger *zap.Logger,
) *RetentionSweeper {
	if retentionDays <= 0 {
		retentionDays = 30
	}
	if interval <= 0 {
		interval = time.Hour
	}
	return &RetentionSweeper{
		notifications: notifications,
		retention:     time.Duration(retentionDays) * 24 * time.Hour,
		interval:      interval,
		logger:        logger,
		now:           time.Now,
	}
}

// Run sweeps once immediately, then on every tick until ctx is done.
func (s *RetentionSweeper) Run(ctx context.Context) {
	s.sweepOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepOnce(ctx)
		}
	}
}

func (s *RetentionSweeper) sweepOnce(ctx context.Context) {
	cutoff := s.now().Add(-s.retention)

	deleted, err := s.notifications.DeleteReadBefore(ctx, cutoff)
	if err != nil {
		s.logger.Error("notification retention sweep failed", zap.Error(err))
		return
	}
	if deleted > 0 {
		s.logger.Info("notification retention sweep",
			zap.Int64("deleted", deleted),
			zap.Time("cutoff", cutoff))
	}
}
