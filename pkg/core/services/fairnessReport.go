package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/gurdwarasoft/seva-scheduler/pkg/core/fairness"
	"github.com/gurdwarasoft/seva-scheduler/pkg/db"
)

// ReportStore defines the read-only database operations the fairness report
// needs. No transaction: the report never locks, and a snapshot that is a
// beat behind a concurrent auto-assign is fine.
type ReportStore interface {
	ListStaff(ctx context.Context) ([]db.Staff, error)
	ListProgramTypes(ctx context.Context) ([]db.ProgramType, error)
	ListAssignmentDetails(ctx context.Context) ([]db.AssignmentDetail, error)
}

// FairnessReport computes per-sevadar credit totals over the rolling window
// and lifetime, with a per-program breakdown, sorted most-credited first.
func FairnessReport(
	ctx context.Context,
	store ReportStore,
	clock db.Clock,
	logger *zap.Logger,
	windowWeeks int,
	filters fairness.Filters,
) ([]fairness.ReportRow, error) {
	logger.Debug("Building fairness report", zap.Int("window_weeks", windowWeeks))

	staffRecs, err := store.ListStaff(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load staff: %w", err)
	}
	programRecs, err := store.ListProgramTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load program types: %w", err)
	}
	details, err := store.ListAssignmentDetails(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load assignments: %w", err)
	}

	rows := fairness.BuildReport(
		toModelStaffList(staffRecs),
		creditedAssignments(details),
		toModelPrograms(programRecs),
		clock.Now(),
		windowWeeks,
		filters,
	)
	logger.Debug("Fairness report built", zap.Int("rows", len(rows)))
	return rows, nil
}
