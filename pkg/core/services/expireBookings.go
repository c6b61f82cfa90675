package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/gurdwarasoft/seva-scheduler/pkg/core/model"
	"github.com/gurdwarasoft/seva-scheduler/pkg/db"
)

// expireSweepLockKey identifies the advisory lock serializing the sweep.
// Concurrent triggers firing together run it at most once.
const expireSweepLockKey int64 = 0x53455641 // "SEVA"

// ExpireDatabase defines the database access the expiry sweep needs: the
// advisory lock plus one transaction for the status flips.
type ExpireDatabase interface {
	db.Locker
	WithTx(ctx context.Context, fn func(db.Store) error) error
}

// ExpireStaleBookings marks PENDING bookings older than maxAge as EXPIRED.
// The sweep runs behind a non-blocking try-lock: if another trigger already
// holds it, this call skips and reports zero without waiting. Returns the
// number of bookings expired.
func ExpireStaleBookings(
	ctx context.Context,
	database ExpireDatabase,
	clock db.Clock,
	logger *zap.Logger,
	maxAge time.Duration,
) (int, error) {
	release, acquired, err := database.TryLock(ctx, expireSweepLockKey)
	if err != nil {
		return 0, fmt.Errorf("failed to acquire sweep lock: %w", err)
	}
	if !acquired {
		logger.Debug("Expiry sweep already running, skipping")
		return 0, nil
	}
	defer release()

	cutoff := clock.Now().Add(-maxAge)
	logger.Debug("Starting expiry sweep", zap.Time("cutoff", cutoff))

	expired := 0
	err = database.WithTx(ctx, func(s db.Store) error {
		stale, err := s.ListPendingBookingsBefore(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("failed to list stale bookings: %w", err)
		}
		for _, booking := range stale {
			if err := s.UpdateBookingStatus(ctx, booking.ID, string(model.BookingExpired)); err != nil {
				return fmt.Errorf("failed to expire booking %s: %w", booking.ID, err)
			}
			expired++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if expired > 0 {
		logger.Info("Expired stale bookings", zap.Int("count", expired))
	}
	return expired, nil
}
