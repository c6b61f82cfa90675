package db

import "time"

// Staff represents a database sevadar record.
type Staff struct {
	ID     string
	Name   string
	Email  string
	Skills []string
	Jatha  string
	Active bool
}

// ProgramType represents a database program type record.
type ProgramType struct {
	ID              string
	Name            string
	Category        string
	MinPathers      int
	MinKirtanis     int
	DurationMinutes int
	CompWeight      int
	RotationTeam    bool
}

// Booking represents a database booking record.
type Booking struct {
	ID        string
	StartAt   time.Time
	EndAt     time.Time
	Status    string
	Location  string
	CreatedAt time.Time
}

// BookingItem represents a database booking item record.
type BookingItem struct {
	ID            string
	BookingID     string
	ProgramTypeID string
	CreatedAt     time.Time
}

// Assignment represents a database assignment record. OverrideStart and
// OverrideEnd are nil when the assignment follows its booking's window.
type Assignment struct {
	ID            string
	BookingItemID string
	StaffID       string
	State         string
	OverrideStart *time.Time
	OverrideEnd   *time.Time
}

// AssignmentDetail joins an assignment with its item and parent booking, the
// shape every scheduling read needs (effective windows resolve against the
// booking, credit needs the booking status).
type AssignmentDetail struct {
	Assignment
	BookingID     string
	BookingStatus string
	BookingStart  time.Time
	BookingEnd    time.Time
	ProgramTypeID string
}

// EffectiveStart returns the start of the assignment's effective window.
func (d AssignmentDetail) EffectiveStart() time.Time {
	if d.OverrideStart != nil {
		return *d.OverrideStart
	}
	return d.BookingStart
}

// EffectiveEnd returns the end of the assignment's effective window.
func (d AssignmentDetail) EffectiveEnd() time.Time {
	if d.OverrideEnd != nil {
		return *d.OverrideEnd
	}
	return d.BookingEnd
}
