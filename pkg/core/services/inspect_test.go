package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gurdwarasoft/seva-scheduler/pkg/core/model"
	"github.com/gurdwarasoft/seva-scheduler/pkg/core/scheduling"
	"github.com/gurdwarasoft/seva-scheduler/pkg/db"
)

func TestBusyStaffIDs(t *testing.T) {
	mock := &mockStore{
		details: []db.AssignmentDetail{
			{
				Assignment:    db.Assignment{ID: "a1", StaffID: "s1", State: "CONFIRMED"},
				BookingID:     "b1",
				BookingStatus: "CONFIRMED",
				BookingStart:  bookingStart,
				BookingEnd:    bookingEnd,
			},
			{
				// On a cancelled booking, so it blocks nobody.
				Assignment:    db.Assignment{ID: "a2", StaffID: "s2", State: "CONFIRMED"},
				BookingID:     "b2",
				BookingStatus: "CANCELLED",
				BookingStart:  bookingStart,
				BookingEnd:    bookingEnd,
			},
		},
	}

	ids, err := BusyStaffIDs(context.Background(), mock, zap.NewNop(), model.Window{Start: bookingStart, End: bookingEnd})
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, ids)
}

func TestBusyStaffIDs_SortedOutput(t *testing.T) {
	commitment := func(id, staffID string) db.AssignmentDetail {
		return db.AssignmentDetail{
			Assignment:    db.Assignment{ID: id, StaffID: staffID, State: "CONFIRMED"},
			BookingID:     "b1",
			BookingStatus: "CONFIRMED",
			BookingStart:  bookingStart,
			BookingEnd:    bookingEnd,
		}
	}
	mock := &mockStore{
		details: []db.AssignmentDetail{
			commitment("a1", "s3"),
			commitment("a2", "s1"),
			commitment("a3", "s2"),
		},
	}

	// Results come out of a set, so they are sorted for stable output.
	ids, err := BusyStaffIDs(context.Background(), mock, zap.NewNop(), model.Window{Start: bookingStart, End: bookingEnd})
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s2", "s3"}, ids)
}

func TestBusyStaffIDs_InvalidWindow(t *testing.T) {
	_, err := BusyStaffIDs(context.Background(), &mockStore{}, zap.NewNop(), model.Window{Start: bookingEnd, End: bookingStart})
	require.Error(t, err)
	assert.ErrorIs(t, err, scheduling.ErrInvalidInput)
}

func TestItemNeeds(t *testing.T) {
	mock := &mockStore{
		items: []db.BookingItem{
			{ID: "i1", BookingID: "b1", ProgramTypeID: "p1"},
		},
		programs: []db.ProgramType{
			{ID: "p1", Category: "PATH", MinPathers: 2, MinKirtanis: 1},
		},
		staff: []db.Staff{
			{ID: "s1", Name: "Amar", Active: true, Skills: []string{"PATH", "KIRTAN"}},
		},
		itemAssignments: map[string][]db.Assignment{
			"i1": {{ID: "a1", BookingItemID: "i1", StaffID: "s1", State: "PROPOSED"}},
		},
	}

	needs, err := ItemNeeds(context.Background(), mock, zap.NewNop(), "i1")
	require.NoError(t, err)
	assert.Equal(t, scheduling.Needs{Path: 1, Kirtan: 0}, needs)
}

func TestItemNeeds_UnknownItem(t *testing.T) {
	_, err := ItemNeeds(context.Background(), &mockStore{}, zap.NewNop(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, scheduling.ErrNotFound)
}
