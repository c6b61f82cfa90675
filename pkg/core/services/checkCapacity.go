package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/gurdwarasoft/seva-scheduler/pkg/core/model"
	"github.com/gurdwarasoft/seva-scheduler/pkg/core/scheduling"
)

// CapacityStore defines the database operations the capacity check needs.
type CapacityStore interface {
	ListItemCategoriesOverlapping(ctx context.Context, start, end time.Time) ([]string, error)
}

// CheckCapacity validates the venue-wide category caps for a candidate
// booking window and its requested program categories. Booking creation and
// edit flows call this once before anything is persisted; a violation blocks
// the booking outright with a descriptive error.
func CheckCapacity(
	ctx context.Context,
	store CapacityStore,
	logger *zap.Logger,
	window model.Window,
	requested []model.ProgramCategory,
) error {
	if !window.Start.Before(window.End) {
		return fmt.Errorf("%w: window start must be before end", scheduling.ErrInvalidInput)
	}
	for _, c := range requested {
		if !c.IsValid() {
			return fmt.Errorf("%w: unknown program category %q", scheduling.ErrInvalidInput, c)
		}
	}

	existingRaw, err := store.ListItemCategoriesOverlapping(ctx, window.Start, window.End)
	if err != nil {
		return fmt.Errorf("failed to load overlapping items: %w", err)
	}
	existing := make([]model.ProgramCategory, 0, len(existingRaw))
	for _, c := range existingRaw {
		existing = append(existing, model.ProgramCategory(c))
	}

	if err := scheduling.CheckCategoryCaps(existing, requested); err != nil {
		logger.Debug("Capacity check failed", zap.Error(err))
		return err
	}
	return nil
}
