package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/gurdwarasoft/seva-scheduler/pkg/core/model"
	"github.com/gurdwarasoft/seva-scheduler/pkg/core/scheduling"
	"github.com/gurdwarasoft/seva-scheduler/pkg/db"
)

// SwapDatabase defines the database access the swap protocol needs.
type SwapDatabase interface {
	WithTx(ctx context.Context, fn func(db.Store) error) error
}

// SwapAssignments atomically exchanges the staff of two existing
// assignments. Preconditions are checked in order and the first failure
// wins:
//
//  1. both assignments exist
//  2. both belong to the same booking, when sameBookingOnly is set
//  3. both are PROPOSED, or the assignments sit on different bookings whose
//     programs share a category
//  4. the two rows do not occupy the identical (item, window) slot — that
//     swap is a no-op that would still trip the store's uniqueness rule, so
//     it is rejected with a pointer at the per-row override instead
//
// A uniqueness race at commit time (someone edited one of the rows
// concurrently) surfaces as a retryable conflict, never a generic failure.
// On any failure neither row changes.
func SwapAssignments(
	ctx context.Context,
	database SwapDatabase,
	logger *zap.Logger,
	assignmentIDA, assignmentIDB string,
	sameBookingOnly bool,
) error {
	logger.Debug("Starting swap",
		zap.String("assignment_a", assignmentIDA),
		zap.String("assignment_b", assignmentIDB),
		zap.Bool("same_booking_only", sameBookingOnly))

	if assignmentIDA == assignmentIDB {
		return fmt.Errorf("%w: cannot swap an assignment with itself", scheduling.ErrInvalidInput)
	}

	return database.WithTx(ctx, func(s db.Store) error {
		a, err := s.GetAssignment(ctx, assignmentIDA)
		if err != nil {
			return fmt.Errorf("assignment %s: %w", assignmentIDA, err)
		}
		b, err := s.GetAssignment(ctx, assignmentIDB)
		if err != nil {
			return fmt.Errorf("assignment %s: %w", assignmentIDB, err)
		}

		if sameBookingOnly && a.BookingID != b.BookingID {
			return &scheduling.RuleError{
				Rule:   scheduling.RuleSwapScope,
				Reason: "assignments belong to different bookings",
			}
		}

		bothProposed := a.State == string(model.AssignmentProposed) && b.State == string(model.AssignmentProposed)
		if !bothProposed {
			if a.BookingID == b.BookingID {
				return &scheduling.RuleError{
					Rule:   scheduling.RuleSwapStatePolicy,
					Reason: "confirmed assignments within one booking cannot be swapped",
				}
			}
			programs, err := s.ListProgramTypes(ctx)
			if err != nil {
				return fmt.Errorf("failed to load program types: %w", err)
			}
			catalog := toModelPrograms(programs)
			if catalog[a.ProgramTypeID].Category != catalog[b.ProgramTypeID].Category {
				return &scheduling.RuleError{
					Rule:   scheduling.RuleSwapStatePolicy,
					Reason: "cross-booking swaps require programs of the same category",
				}
			}
		}

		if a.BookingItemID == b.BookingItemID &&
			a.EffectiveStart().Equal(b.EffectiveStart()) &&
			a.EffectiveEnd().Equal(b.EffectiveEnd()) {
			return &scheduling.RuleError{
				Rule:   scheduling.RuleSwapSameSlot,
				Reason: "assignments occupy the identical item and window; use per-row override instead",
			}
		}

		if err := s.SwapAssignmentStaff(ctx, assignmentIDA, assignmentIDB); err != nil {
			return fmt.Errorf("swap failed: %w", err)
		}

		logger.Info("Assignments swapped",
			zap.String("assignment_a", assignmentIDA),
			zap.String("assignment_b", assignmentIDB))
		return nil
	})
}
