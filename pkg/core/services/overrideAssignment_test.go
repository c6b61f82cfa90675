package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gurdwarasoft/seva-scheduler/pkg/core/scheduling"
	"github.com/gurdwarasoft/seva-scheduler/pkg/db"
)

func overrideFixture() *mockDatabase {
	return &mockDatabase{
		mockStore: mockStore{
			bookings: []db.Booking{
				{ID: "b1", StartAt: bookingStart, EndAt: bookingEnd, Status: "PENDING"},
			},
			items: []db.BookingItem{
				{ID: "i1", BookingID: "b1", ProgramTypeID: "p1"},
			},
			programs: []db.ProgramType{
				{ID: "p1", Category: "PATH", MinPathers: 1, MinKirtanis: 1},
			},
			staff: []db.Staff{
				{ID: "sX", Name: "Xara", Active: true, Skills: []string{"PATH", "KIRTAN"}},
				{ID: "sY", Name: "Yadvinder", Active: true, Skills: []string{"KIRTAN"}},
				{ID: "sZ", Name: "Zorawar", Active: true, Skills: []string{"PATH", "KIRTAN"}},
			},
			itemAssignments: map[string][]db.Assignment{
				"i1": {
					{ID: "a1", BookingItemID: "i1", StaffID: "sX", State: "PROPOSED"},
				},
			},
			details: []db.AssignmentDetail{
				{
					Assignment:    db.Assignment{ID: "a1", BookingItemID: "i1", StaffID: "sX", State: "PROPOSED"},
					BookingID:     "b1",
					BookingStatus: "PENDING",
					BookingStart:  bookingStart,
					BookingEnd:    bookingEnd,
					ProgramTypeID: "p1",
				},
			},
		},
	}
}

func TestOverrideAssignment_Success(t *testing.T) {
	mock := overrideFixture()

	err := OverrideAssignment(context.Background(), mock, zap.NewNop(), "i1", "sX", "sZ")
	require.NoError(t, err)
	assert.Equal(t, "sZ", mock.staffUpdates["a1"])
}

func TestOverrideAssignment_SameStaffRejected(t *testing.T) {
	mock := overrideFixture()

	err := OverrideAssignment(context.Background(), mock, zap.NewNop(), "i1", "sX", "sX")
	require.Error(t, err)
	assert.ErrorIs(t, err, scheduling.ErrInvalidInput)
}

func TestOverrideAssignment_SkillRegressionRejected(t *testing.T) {
	// sX covers both the path and kirtan minimums. Swapping in
	// kirtan-only sY would open a PATH gap, so the override is refused.
	mock := overrideFixture()

	err := OverrideAssignment(context.Background(), mock, zap.NewNop(), "i1", "sX", "sY")
	require.Error(t, err)

	ruleErr, ok := scheduling.IsRuleError(err)
	require.True(t, ok)
	assert.Equal(t, scheduling.RuleSkillFeasibility, ruleErr.Rule)
	assert.Empty(t, mock.staffUpdates)
}

func TestOverrideAssignment_AlreadyShortItemAllowsLateralMove(t *testing.T) {
	// The item is short a kirtani either way; replacing one pather with
	// another must not be blocked by the pre-existing gap.
	mock := overrideFixture()
	mock.staff = []db.Staff{
		{ID: "sX", Name: "Xara", Active: true, Skills: []string{"PATH"}},
		{ID: "sZ", Name: "Zorawar", Active: true, Skills: []string{"PATH"}},
	}

	err := OverrideAssignment(context.Background(), mock, zap.NewNop(), "i1", "sX", "sZ")
	require.NoError(t, err)
	assert.Equal(t, "sZ", mock.staffUpdates["a1"])
}

func TestOverrideAssignment_DuplicateStaffRejected(t *testing.T) {
	mock := overrideFixture()
	mock.itemAssignments["i1"] = append(mock.itemAssignments["i1"],
		db.Assignment{ID: "a2", BookingItemID: "i1", StaffID: "sZ", State: "PROPOSED"})

	err := OverrideAssignment(context.Background(), mock, zap.NewNop(), "i1", "sX", "sZ")
	require.Error(t, err)

	ruleErr, ok := scheduling.IsRuleError(err)
	require.True(t, ok)
	assert.Equal(t, scheduling.RuleDuplicateStaff, ruleErr.Rule)
}

func TestOverrideAssignment_FromStaffNotOnItem(t *testing.T) {
	mock := overrideFixture()

	err := OverrideAssignment(context.Background(), mock, zap.NewNop(), "i1", "sY", "sZ")
	require.Error(t, err)
	assert.ErrorIs(t, err, scheduling.ErrNotFound)
}

func TestOverrideAssignment_InactiveReplacementRejected(t *testing.T) {
	mock := overrideFixture()
	mock.staff[2].Active = false // sZ

	err := OverrideAssignment(context.Background(), mock, zap.NewNop(), "i1", "sX", "sZ")
	require.Error(t, err)

	ruleErr, ok := scheduling.IsRuleError(err)
	require.True(t, ok)
	assert.Equal(t, scheduling.RuleStaffInactive, ruleErr.Rule)
}

func TestOverrideAssignment_BusyReplacementRejected(t *testing.T) {
	mock := overrideFixture()
	// sZ holds an overlapping confirmed slot on another active booking.
	mock.details = append(mock.details, db.AssignmentDetail{
		Assignment:    db.Assignment{ID: "other", BookingItemID: "otherItem", StaffID: "sZ", State: "CONFIRMED"},
		BookingID:     "b2",
		BookingStatus: "CONFIRMED",
		BookingStart:  bookingStart.Add(time.Hour),
		BookingEnd:    bookingEnd.Add(time.Hour),
		ProgramTypeID: "p1",
	})

	err := OverrideAssignment(context.Background(), mock, zap.NewNop(), "i1", "sX", "sZ")
	require.Error(t, err)

	ruleErr, ok := scheduling.IsRuleError(err)
	require.True(t, ok)
	assert.Equal(t, scheduling.RuleStaffBusy, ruleErr.Rule)
}

func TestOverrideAssignment_CancelledBookingCommitmentIgnored(t *testing.T) {
	mock := overrideFixture()
	// The overlapping slot sits on a cancelled booking, which blocks nobody.
	mock.details = append(mock.details, db.AssignmentDetail{
		Assignment:    db.Assignment{ID: "other", BookingItemID: "otherItem", StaffID: "sZ", State: "CONFIRMED"},
		BookingID:     "b2",
		BookingStatus: "CANCELLED",
		BookingStart:  bookingStart,
		BookingEnd:    bookingEnd,
		ProgramTypeID: "p1",
	})

	err := OverrideAssignment(context.Background(), mock, zap.NewNop(), "i1", "sX", "sZ")
	require.NoError(t, err)
	assert.Equal(t, "sZ", mock.staffUpdates["a1"])
}

func TestOverrideAssignment_RotationRequiresSameJatha(t *testing.T) {
	mock := overrideFixture()
	mock.programs[0].RotationTeam = true
	mock.staff[0].Jatha = "alpha" // sX
	mock.staff[2].Jatha = "beta"  // sZ

	err := OverrideAssignment(context.Background(), mock, zap.NewNop(), "i1", "sX", "sZ")
	require.Error(t, err)

	ruleErr, ok := scheduling.IsRuleError(err)
	require.True(t, ok)
	assert.Equal(t, scheduling.RuleGroupIncomplete, ruleErr.Rule)
}

func TestOverrideAssignment_RotationSameJathaAllowed(t *testing.T) {
	mock := overrideFixture()
	mock.programs[0].RotationTeam = true
	mock.staff[0].Jatha = "alpha" // sX
	mock.staff[2].Jatha = "alpha" // sZ

	err := OverrideAssignment(context.Background(), mock, zap.NewNop(), "i1", "sX", "sZ")
	require.NoError(t, err)
	assert.Equal(t, "sZ", mock.staffUpdates["a1"])
}

func TestOverrideAssignment_UnknownItem(t *testing.T) {
	mock := overrideFixture()

	err := OverrideAssignment(context.Background(), mock, zap.NewNop(), "missing", "sX", "sZ")
	require.Error(t, err)
	assert.ErrorIs(t, err, scheduling.ErrNotFound)
}
