package store

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// ExpiryRunner expires stale pending payments every interval until ctx is
// done. A payment is stale once it has been pending for longer than ttl.
func (d *DB) ExpiryRunner(ctx context.Context, interval, ttl time.Duration, log *zap.Logger) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		n, err := d.ExpirePendingPayments(ctx, d.Now().Add(-ttl))
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Error("expiring pending payments", zap.Error(err))
			continue
		}
		if n > 0 {
			log.Info("expired pending payments", zap.Int64("count", n), zap.Duration("ttl", ttl))
		}
	}
}

// StatsRunner logs connection pool statistics every interval until ctx is
// done.
func (d *DB) StatsRunner(ctx context.Context, interval time.Duration, log *zap.Logger) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s := d.Db.Stats()
			log.Info("database stats",
				zap.Int("open", s.OpenConnections),
				zap.Int("in_use", s.InUse),
				zap.Int("idle", s.Idle),
				zap.Int64("wait_count", s.WaitCount),
				zap.Duration("wait_duration", s.WaitDuration))
		}
	}
}
