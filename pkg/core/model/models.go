package model

import "time"

// Skill is a sevadar capability.
type Skill string

const (
	SkillPath   Skill = "PATH"
	SkillKirtan Skill = "KIRTAN"
)

func (s Skill) IsValid() bool {
	return s == SkillPath || s == SkillKirtan
}

// ProgramCategory classifies a program for the venue-wide concurrency caps
// and for auto-assign processing order.
type ProgramCategory string

const (
	CategoryPath   ProgramCategory = "PATH"
	CategoryKirtan ProgramCategory = "KIRTAN"
	CategoryOther  ProgramCategory = "OTHER"
)

func (c ProgramCategory) IsValid() bool {
	return c == CategoryPath || c == CategoryKirtan || c == CategoryOther
}

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
	BookingExpired   BookingStatus = "EXPIRED"
)

// ActiveBookingStatuses are the statuses that hold venue capacity and earn
// fairness credit. Cancelled and expired bookings count for nothing.
var ActiveBookingStatuses = []BookingStatus{BookingPending, BookingConfirmed}

func (s BookingStatus) IsActive() bool {
	return s == BookingPending || s == BookingConfirmed
}

// AssignmentState is the lifecycle state of an assignment. A PROPOSED
// assignment is a tentative pick pending booking approval; CONFIRMED is
// locked in once the parent booking is approved.
type AssignmentState string

const (
	AssignmentProposed  AssignmentState = "PROPOSED"
	AssignmentConfirmed AssignmentState = "CONFIRMED"
)

// Staff represents a sevadar. Staff records are owned by admin tooling and
// are read-only to the scheduling core.
type Staff struct {
	ID     string
	Name   string
	Skills []Skill
	Jatha  string // empty if not part of a rotating group
	Active bool
}

// HasSkill reports whether the staff member holds the given skill.
func (s Staff) HasSkill(skill Skill) bool {
	for _, have := range s.Skills {
		if have == skill {
			return true
		}
	}
	return false
}

// ProgramType describes a schedulable program and its staffing minimums.
type ProgramType struct {
	ID          string
	Name        string
	Category    ProgramCategory
	MinPathers  int
	MinKirtanis int
	Duration    time.Duration

	// CompWeight is the fairness credit one assignment of this program
	// contributes to a sevadar's ledger. Defaults to 1.
	CompWeight int

	// RotationTeam marks continuous-recitation style programs that must be
	// staffed by a complete jatha rather than individuals.
	RotationTeam bool
}

// MinForSkill returns the required count for the given skill.
func (p ProgramType) MinForSkill(skill Skill) int {
	switch skill {
	case SkillPath:
		return p.MinPathers
	case SkillKirtan:
		return p.MinKirtanis
	}
	return 0
}

// Booking is a time-boxed facility reservation owning one or more items.
type Booking struct {
	ID       string
	Start    time.Time
	End      time.Time
	Status   BookingStatus
	Location string
}

// Window returns the booking's half-open time window.
func (b Booking) Window() Window {
	return Window{Start: b.Start, End: b.End}
}

// BookingItem is one program instance within a booking.
type BookingItem struct {
	ID            string
	BookingID     string
	ProgramTypeID string
	CreatedAt     time.Time
}

// Assignment links a booking item to one staff member. OverrideStart and
// OverrideEnd narrow or shift the effective window; when nil the parent
// booking's window applies.
type Assignment struct {
	ID            string
	BookingItemID string
	StaffID       string
	State         AssignmentState
	OverrideStart *time.Time
	OverrideEnd   *time.Time
}

// EffectiveWindow resolves the assignment's window against its parent
// booking's window.
func (a Assignment) EffectiveWindow(booking Booking) Window {
	if a.OverrideStart != nil && a.OverrideEnd != nil {
		return Window{Start: *a.OverrideStart, End: *a.OverrideEnd}
	}
	return booking.Window()
}

// Window is a half-open time interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two half-open windows intersect.
func (w Window) Overlaps(other Window) bool {
	return w.Start.Before(other.End) && w.End.After(other.Start)
}
