package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/gurdwarasoft/seva-scheduler/pkg/core/model"
	"github.com/gurdwarasoft/seva-scheduler/pkg/core/scheduling"
	"github.com/gurdwarasoft/seva-scheduler/pkg/db"
)

// OverrideDatabase defines the database access the override protocol needs.
type OverrideDatabase interface {
	WithTx(ctx context.Context, fn func(db.Store) error) error
}

// OverrideAssignment replaces fromStaff with toStaff on one booking item.
// Validations, in order: the from-assignment exists; toStaff is not already
// on the item; toStaff exists and is active; toStaff is free for the
// assignment's effective window; on rotation programs toStaff belongs to the
// same jatha as fromStaff; and the replacement does not drop the item's
// skill counts below the program minimums (the counts are recomputed as if
// the swap had already happened). The row update happens in one transaction;
// a uniqueness race on commit is a retryable conflict.
func OverrideAssignment(
	ctx context.Context,
	database OverrideDatabase,
	logger *zap.Logger,
	itemID, fromStaffID, toStaffID string,
) error {
	logger.Debug("Starting override",
		zap.String("item_id", itemID),
		zap.String("from_staff", fromStaffID),
		zap.String("to_staff", toStaffID))

	if fromStaffID == toStaffID {
		return fmt.Errorf("%w: replacement staff is the same as the current staff", scheduling.ErrInvalidInput)
	}

	return database.WithTx(ctx, func(s db.Store) error {
		item, err := s.GetBookingItem(ctx, itemID)
		if err != nil {
			return fmt.Errorf("booking item %s: %w", itemID, err)
		}
		bookingRec, err := s.GetBooking(ctx, item.BookingID)
		if err != nil {
			return fmt.Errorf("booking %s: %w", item.BookingID, err)
		}
		booking := toModelBooking(*bookingRec)

		itemAssignments, err := s.ListItemAssignments(ctx, itemID)
		if err != nil {
			return fmt.Errorf("failed to load item assignments: %w", err)
		}

		var fromAssignment *db.Assignment
		for i := range itemAssignments {
			if itemAssignments[i].StaffID == toStaffID {
				return &scheduling.RuleError{
					Rule:   scheduling.RuleDuplicateStaff,
					Reason: fmt.Sprintf("staff %s is already assigned to this item", toStaffID),
				}
			}
			if itemAssignments[i].StaffID == fromStaffID {
				fromAssignment = &itemAssignments[i]
			}
		}
		if fromAssignment == nil {
			return fmt.Errorf("no assignment for staff %s on item %s: %w", fromStaffID, itemID, scheduling.ErrNotFound)
		}

		toStaffRec, err := s.GetStaff(ctx, toStaffID)
		if err != nil {
			return fmt.Errorf("staff %s: %w", toStaffID, err)
		}
		toStaff := toModelStaff(*toStaffRec)
		if !toStaff.Active {
			return &scheduling.RuleError{
				Rule:   scheduling.RuleStaffInactive,
				Reason: fmt.Sprintf("staff %s is not active", toStaffID),
			}
		}

		// Availability: the replacement must be free for the slot being
		// handed over. The row being rewritten is excluded from the index.
		window := model.Window{
			Start: bookingRec.StartAt,
			End:   bookingRec.EndAt,
		}
		if fromAssignment.OverrideStart != nil && fromAssignment.OverrideEnd != nil {
			window = model.Window{Start: *fromAssignment.OverrideStart, End: *fromAssignment.OverrideEnd}
		}
		details, err := s.ListAssignmentDetails(ctx)
		if err != nil {
			return fmt.Errorf("failed to load assignments: %w", err)
		}
		index := scheduling.BuildAvailabilityIndex(commitments(details, fromAssignment.ID))
		if index.IsBusy(toStaffID, window, nil) {
			return &scheduling.RuleError{
				Rule:   scheduling.RuleStaffBusy,
				Reason: fmt.Sprintf("staff %s has an overlapping assignment in that window", toStaffID),
			}
		}

		// Skill feasibility: recompute assigned-skill counts with the
		// replacement's skills in place of the outgoing staff's. The item
		// may already be short; the override just must not make it shorter.
		programRecs, err := s.ListProgramTypes(ctx)
		if err != nil {
			return fmt.Errorf("failed to load program types: %w", err)
		}
		program, ok := toModelPrograms(programRecs)[item.ProgramTypeID]
		if !ok {
			return fmt.Errorf("program type %s: %w", item.ProgramTypeID, scheduling.ErrNotFound)
		}
		staffRecs, err := s.ListStaff(ctx)
		if err != nil {
			return fmt.Errorf("failed to load staff: %w", err)
		}
		staffByID := make(map[string]model.Staff, len(staffRecs))
		for _, rec := range staffRecs {
			staffByID[rec.ID] = toModelStaff(rec)
		}

		before := make([]model.Staff, 0, len(itemAssignments))
		after := make([]model.Staff, 0, len(itemAssignments))
		for _, a := range itemAssignments {
			if staff, known := staffByID[a.StaffID]; known {
				before = append(before, staff)
			}
			if a.StaffID == fromStaffID {
				after = append(after, toStaff)
			} else if staff, known := staffByID[a.StaffID]; known {
				after = append(after, staff)
			}
		}
		// Rotation programs are staffed by whole jathas; an override must
		// not splice an outsider into the group.
		if program.RotationTeam {
			fromStaff, known := staffByID[fromStaffID]
			if !known || toStaff.Jatha == "" || toStaff.Jatha != fromStaff.Jatha {
				return &scheduling.RuleError{
					Rule:   scheduling.RuleGroupIncomplete,
					Reason: fmt.Sprintf("staff %s is not in the same jatha as %s", toStaffID, fromStaffID),
				}
			}
		}

		needsBefore := scheduling.UnmetNeeds(program, before)
		needsAfter := scheduling.UnmetNeeds(program, after)
		for _, skill := range []model.Skill{model.SkillPath, model.SkillKirtan} {
			if needsAfter.ForSkill(skill) > needsBefore.ForSkill(skill) {
				return &scheduling.RuleError{
					Rule:   scheduling.RuleSkillFeasibility,
					Reason: fmt.Sprintf("replacing %s with %s would drop %s coverage below the program minimum", fromStaffID, toStaffID, skill),
				}
			}
		}

		if err := s.UpdateAssignmentStaff(ctx, fromAssignment.ID, toStaffID); err != nil {
			return fmt.Errorf("override failed: %w", err)
		}

		logger.Info("Assignment overridden",
			zap.String("booking_id", booking.ID),
			zap.String("item_id", itemID),
			zap.String("from_staff", fromStaffID),
			zap.String("to_staff", toStaffID))
		return nil
	})
}
