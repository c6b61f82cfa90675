package services

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/gurdwarasoft/seva-scheduler/pkg/core/model"
	"github.com/gurdwarasoft/seva-scheduler/pkg/core/scheduling"
	"github.com/gurdwarasoft/seva-scheduler/pkg/db"
)

// InspectStore defines the read-only database operations the inspection
// helpers need.
type InspectStore interface {
	GetBookingItem(ctx context.Context, id string) (*db.BookingItem, error)
	ListItemAssignments(ctx context.Context, itemID string) ([]db.Assignment, error)
	ListProgramTypes(ctx context.Context) ([]db.ProgramType, error)
	ListStaff(ctx context.Context) ([]db.Staff, error)
	ListAssignmentDetails(ctx context.Context) ([]db.AssignmentDetail, error)
}

// BusyStaffIDs returns the staff committed during the query window,
// according to current PROPOSED and CONFIRMED assignments on active
// bookings.
func BusyStaffIDs(ctx context.Context, store InspectStore, logger *zap.Logger, window model.Window) ([]string, error) {
	if !window.Start.Before(window.End) {
		return nil, fmt.Errorf("%w: window start must be before end", scheduling.ErrInvalidInput)
	}

	details, err := store.ListAssignmentDetails(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load assignments: %w", err)
	}

	index := scheduling.BuildAvailabilityIndex(commitments(details))
	busy := index.BusyStaff(window, nil)
	ids := make([]string, 0, len(busy))
	for id := range busy {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	logger.Debug("Busy staff computed", zap.Int("count", len(ids)))
	return ids, nil
}

// ItemNeeds returns an item's unmet role requirements given its current
// assignments.
func ItemNeeds(ctx context.Context, store InspectStore, logger *zap.Logger, itemID string) (scheduling.Needs, error) {
	item, err := store.GetBookingItem(ctx, itemID)
	if err != nil {
		return scheduling.Needs{}, fmt.Errorf("booking item %s: %w", itemID, err)
	}

	programRecs, err := store.ListProgramTypes(ctx)
	if err != nil {
		return scheduling.Needs{}, fmt.Errorf("failed to load program types: %w", err)
	}
	program, ok := toModelPrograms(programRecs)[item.ProgramTypeID]
	if !ok {
		return scheduling.Needs{}, fmt.Errorf("program type %s: %w", item.ProgramTypeID, scheduling.ErrNotFound)
	}

	assignments, err := store.ListItemAssignments(ctx, itemID)
	if err != nil {
		return scheduling.Needs{}, fmt.Errorf("failed to load item assignments: %w", err)
	}
	staffRecs, err := store.ListStaff(ctx)
	if err != nil {
		return scheduling.Needs{}, fmt.Errorf("failed to load staff: %w", err)
	}
	staffByID := make(map[string]model.Staff, len(staffRecs))
	for _, rec := range staffRecs {
		staffByID[rec.ID] = toModelStaff(rec)
	}

	assigned := make([]model.Staff, 0, len(assignments))
	for _, a := range assignments {
		if staff, known := staffByID[a.StaffID]; known {
			assigned = append(assigned, staff)
		}
	}
	return scheduling.UnmetNeeds(program, assigned), nil
}
