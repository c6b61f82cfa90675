package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gurdwarasoft/seva-scheduler/pkg/core/fairness"
	"github.com/gurdwarasoft/seva-scheduler/pkg/core/model"
	"github.com/gurdwarasoft/seva-scheduler/pkg/core/scheduling"
	"github.com/gurdwarasoft/seva-scheduler/pkg/db"
)

// AutoAssignDatabase defines the database access auto-assign needs: one
// transaction covering all its reads and writes.
type AutoAssignDatabase interface {
	WithTx(ctx context.Context, fn func(db.Store) error) error
}

// AssignmentNotice is one line of the notification sent after auto-assign.
type AssignmentNotice struct {
	StaffName   string
	Email       string
	ProgramName string
	Location    string
	Start       time.Time
	End         time.Time
}

// Notifier delivers assignment notices. Delivery is fire-and-forget:
// failures are logged and never roll back assignments.
type Notifier interface {
	SendAssignmentNotices(ctx context.Context, notices []AssignmentNotice) error
}

// AutoAssignResult contains the outcome of one auto-assign run.
type AutoAssignResult struct {
	BookingID string
	Created   []model.Assignment
	Shortages []scheduling.Shortage
}

// AutoAssign staffs one booking: it computes unmet needs per item, fills
// each unit from the fairness ranking, persists the PROPOSED assignments,
// and reports every shortage it could not fill. All reads and writes happen
// in one transaction; an unexpected storage error aborts the whole run with
// nothing committed. Shortages are a normal outcome, not an error.
//
// When dryRun is set the plan is computed and returned but nothing is
// written and nobody is notified.
func AutoAssign(
	ctx context.Context,
	database AutoAssignDatabase,
	notifier Notifier,
	clock db.Clock,
	logger *zap.Logger,
	bookingID string,
	windowWeeks int,
	dryRun bool,
) (*AutoAssignResult, error) {
	logger.Debug("Starting autoAssign",
		zap.String("booking_id", bookingID),
		zap.Bool("dry_run", dryRun))

	var result *AutoAssignResult
	var notices []AssignmentNotice

	err := database.WithTx(ctx, func(s db.Store) error {
		// Step 1: load the booking and check it is staffable
		bookingRec, err := s.GetBooking(ctx, bookingID)
		if err != nil {
			return fmt.Errorf("failed to load booking: %w", err)
		}
		booking := toModelBooking(*bookingRec)
		if !booking.Status.IsActive() {
			return &scheduling.RuleError{
				Rule:   scheduling.RuleBookingState,
				Reason: fmt.Sprintf("booking %s is %s and cannot be staffed", bookingID, booking.Status),
			}
		}

		// Step 2: load items, catalog, roster and assignment history
		itemRecs, err := s.ListBookingItems(ctx, bookingID)
		if err != nil {
			return fmt.Errorf("failed to load booking items: %w", err)
		}
		logger.Debug("Loaded booking items", zap.Int("count", len(itemRecs)))

		programRecs, err := s.ListProgramTypes(ctx)
		if err != nil {
			return fmt.Errorf("failed to load program types: %w", err)
		}
		staffRecs, err := s.ListStaff(ctx)
		if err != nil {
			return fmt.Errorf("failed to load staff: %w", err)
		}
		details, err := s.ListAssignmentDetails(ctx)
		if err != nil {
			return fmt.Errorf("failed to load assignments: %w", err)
		}

		items := toModelItems(itemRecs)
		programs := toModelPrograms(programRecs)
		staff := toModelStaffList(staffRecs)

		// Step 3: index availability and existing placements
		index := scheduling.BuildAvailabilityIndex(commitments(details))
		assignedByItem := make(map[string][]string)
		for _, d := range details {
			assignedByItem[d.BookingItemID] = append(assignedByItem[d.BookingItemID], d.StaffID)
		}

		// Step 4: credit snapshot for the ranker, as of now
		credits := fairness.BuildCreditSnapshot(creditedAssignments(details), programs, clock.Now(), windowWeeks)

		// Step 5: run the planning pass
		plan, err := scheduling.PlanAssignments(scheduling.PlanInput{
			Booking:        booking,
			Items:          items,
			Programs:       programs,
			Staff:          staff,
			Index:          index,
			AssignedByItem: assignedByItem,
			Credits:        credits,
			NewID:          uuid.NewString,
		})
		if err != nil {
			return fmt.Errorf("planning failed: %w", err)
		}
		logger.Info("Planning completed",
			zap.String("booking_id", bookingID),
			zap.Int("created", len(plan.Created)),
			zap.Int("shortages", len(plan.Shortages)))

		// Step 6: persist, unless dry-running
		if !dryRun && len(plan.Created) > 0 {
			if err := s.InsertAssignments(ctx, toDBAssignments(plan.Created)); err != nil {
				return fmt.Errorf("failed to save assignments: %w", err)
			}
		}

		result = &AutoAssignResult{
			BookingID: bookingID,
			Created:   plan.Created,
			Shortages: plan.Shortages,
		}
		notices = buildNotices(booking, plan.Created, items, programs, staffRecs)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if dryRun {
		logger.Info("Dry run mode - assignments not saved")
		return result, nil
	}

	// Notification failure never unwinds assignments.
	if notifier != nil && len(notices) > 0 {
		if err := notifier.SendAssignmentNotices(ctx, notices); err != nil {
			logger.Warn("Failed to send assignment notices", zap.Error(err))
		}
	}

	return result, nil
}

func buildNotices(
	booking model.Booking,
	created []model.Assignment,
	items []model.BookingItem,
	programs map[string]model.ProgramType,
	staffRecs []db.Staff,
) []AssignmentNotice {
	staffByID := make(map[string]db.Staff, len(staffRecs))
	for _, rec := range staffRecs {
		staffByID[rec.ID] = rec
	}
	itemsByID := make(map[string]model.BookingItem, len(items))
	for _, item := range items {
		itemsByID[item.ID] = item
	}

	notices := make([]AssignmentNotice, 0, len(created))
	for _, a := range created {
		rec, ok := staffByID[a.StaffID]
		if !ok || rec.Email == "" {
			continue
		}
		programName := ""
		if item, found := itemsByID[a.BookingItemID]; found {
			if program, known := programs[item.ProgramTypeID]; known {
				programName = program.Name
			}
		}
		notices = append(notices, AssignmentNotice{
			StaffName:   rec.Name,
			Email:       rec.Email,
			ProgramName: programName,
			Location:    booking.Location,
			Start:       booking.Start,
			End:         booking.End,
		})
	}
	return notices
}
