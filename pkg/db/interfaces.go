package db

import (
	"context"
	"time"
)

// Store is the full read/write contract the scheduling core runs against.
// Services declare the narrow slice they actually use; postgres.DB
// implements the whole thing, both directly and inside a transaction.
type Store interface {
	GetBooking(ctx context.Context, id string) (*Booking, error)
	ListBookingsOverlapping(ctx context.Context, start, end time.Time, statuses []string) ([]Booking, error)
	ListPendingBookingsBefore(ctx context.Context, cutoff time.Time) ([]Booking, error)
	UpdateBookingStatus(ctx context.Context, id, status string) error

	GetBookingItem(ctx context.Context, id string) (*BookingItem, error)
	ListBookingItems(ctx context.Context, bookingID string) ([]BookingItem, error)
	ListItemCategoriesOverlapping(ctx context.Context, start, end time.Time) ([]string, error)

	ListStaff(ctx context.Context) ([]Staff, error)
	GetStaff(ctx context.Context, id string) (*Staff, error)

	ListProgramTypes(ctx context.Context) ([]ProgramType, error)

	GetAssignment(ctx context.Context, id string) (*AssignmentDetail, error)
	ListAssignmentDetails(ctx context.Context) ([]AssignmentDetail, error)
	ListItemAssignments(ctx context.Context, itemID string) ([]Assignment, error)
	InsertAssignments(ctx context.Context, assignments []Assignment) error
	UpdateAssignmentStaff(ctx context.Context, id, staffID string) error
	SwapAssignmentStaff(ctx context.Context, idA, idB string) error
	PromoteBookingAssignments(ctx context.Context, bookingID string) error
}

// Database is a Store that can also run a function inside one transaction.
// The Store handed to fn sees uncommitted writes; returning an error rolls
// everything back.
type Database interface {
	Store
	WithTx(ctx context.Context, fn func(Store) error) error
}

// Locker is the store's non-blocking advisory lock primitive. TryLock
// returns acquired=false without waiting when another holder has the key;
// release must always be called when acquired.
type Locker interface {
	TryLock(ctx context.Context, key int64) (release func(), acquired bool, err error)
}

// Clock supplies "now" so windowing and expiry are testable with a fixed
// time.
type Clock interface {
	Now() time.Time
}

// SystemClock is the real wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
