package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func win(startHour, endHour int) Window {
	day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	return Window{
		Start: day.Add(time.Duration(startHour) * time.Hour),
		End:   day.Add(time.Duration(endHour) * time.Hour),
	}
}

func TestWindowOverlaps(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Window
		expected bool
	}{
		{"disjoint", win(9, 10), win(11, 12), false},
		{"overlapping", win(9, 11), win(10, 12), true},
		{"contained", win(9, 12), win(10, 11), true},
		{"identical", win(9, 11), win(9, 11), true},
		{"touching boundaries do not overlap", win(9, 10), win(10, 11), false},
		{"touching boundaries reversed", win(10, 11), win(9, 10), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.expected, tt.b.Overlaps(tt.a), "overlap must be symmetric")
		})
	}
}

func TestStaffHasSkill(t *testing.T) {
	s := Staff{ID: "s1", Skills: []Skill{SkillPath, SkillKirtan}}
	assert.True(t, s.HasSkill(SkillPath))
	assert.True(t, s.HasSkill(SkillKirtan))

	pathOnly := Staff{ID: "s2", Skills: []Skill{SkillPath}}
	assert.True(t, pathOnly.HasSkill(SkillPath))
	assert.False(t, pathOnly.HasSkill(SkillKirtan))
}

func TestBookingStatusIsActive(t *testing.T) {
	assert.True(t, BookingPending.IsActive())
	assert.True(t, BookingConfirmed.IsActive())
	assert.False(t, BookingCancelled.IsActive())
	assert.False(t, BookingExpired.IsActive())
}

func TestAssignmentEffectiveWindow(t *testing.T) {
	booking := Booking{
		ID:    "b1",
		Start: time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC),
	}

	t.Run("no override uses booking window", func(t *testing.T) {
		a := Assignment{ID: "a1", BookingItemID: "i1", StaffID: "s1"}
		assert.Equal(t, booking.Window(), a.EffectiveWindow(booking))
	})

	t.Run("override narrows the window", func(t *testing.T) {
		start := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
		end := time.Date(2026, 9, 1, 11, 0, 0, 0, time.UTC)
		a := Assignment{ID: "a1", OverrideStart: &start, OverrideEnd: &end}

		got := a.EffectiveWindow(booking)
		assert.Equal(t, start, got.Start)
		assert.Equal(t, end, got.End)
	})
}

func TestProgramTypeMinForSkill(t *testing.T) {
	p := ProgramType{MinPathers: 2, MinKirtanis: 3}
	assert.Equal(t, 2, p.MinForSkill(SkillPath))
	assert.Equal(t, 3, p.MinForSkill(SkillKirtan))
	assert.Equal(t, 0, p.MinForSkill(Skill("UNKNOWN")))
}
