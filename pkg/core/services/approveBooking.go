package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/gurdwarasoft/seva-scheduler/pkg/core/model"
	"github.com/gurdwarasoft/seva-scheduler/pkg/core/scheduling"
	"github.com/gurdwarasoft/seva-scheduler/pkg/db"
)

// ApproveDatabase defines the database access booking approval needs.
type ApproveDatabase interface {
	WithTx(ctx context.Context, fn func(db.Store) error) error
}

// ApproveBooking confirms a PENDING booking and promotes its PROPOSED
// assignments to CONFIRMED, both in one transaction. This is the only path
// by which assignments become CONFIRMED.
func ApproveBooking(ctx context.Context, database ApproveDatabase, logger *zap.Logger, bookingID string) error {
	logger.Debug("Starting approve", zap.String("booking_id", bookingID))

	return database.WithTx(ctx, func(s db.Store) error {
		booking, err := s.GetBooking(ctx, bookingID)
		if err != nil {
			return fmt.Errorf("booking %s: %w", bookingID, err)
		}
		if booking.Status != string(model.BookingPending) {
			return &scheduling.RuleError{
				Rule:   scheduling.RuleBookingState,
				Reason: fmt.Sprintf("booking %s is %s, only PENDING bookings can be approved", bookingID, booking.Status),
			}
		}

		if err := s.UpdateBookingStatus(ctx, bookingID, string(model.BookingConfirmed)); err != nil {
			return fmt.Errorf("failed to confirm booking: %w", err)
		}
		if err := s.PromoteBookingAssignments(ctx, bookingID); err != nil {
			return fmt.Errorf("failed to promote assignments: %w", err)
		}

		logger.Info("Booking approved", zap.String("booking_id", bookingID))
		return nil
	})
}
