package services

import (
	"context"
	"fmt"
	"time"

	"github.com/gurdwarasoft/seva-scheduler/pkg/core/scheduling"
	"github.com/gurdwarasoft/seva-scheduler/pkg/db"
)

// mockStore is an in-memory test double for db.Store. Reads serve the seeded
// fixtures; writes are recorded for assertions.
type mockStore struct {
	bookings        []db.Booking
	items           []db.BookingItem
	staff           []db.Staff
	programs        []db.ProgramType
	details         []db.AssignmentDetail
	itemAssignments map[string][]db.Assignment
	categories      []string

	insertedAssignments []db.Assignment
	statusUpdates       map[string]string
	staffUpdates        map[string]string
	swaps               [][2]string
	promotedBookings    []string

	insertErr error
	swapErr   error
	updateErr error
}

func (m *mockStore) GetBooking(ctx context.Context, id string) (*db.Booking, error) {
	for i := range m.bookings {
		if m.bookings[i].ID == id {
			return &m.bookings[i], nil
		}
	}
	return nil, fmt.Errorf("booking %s: %w", id, scheduling.ErrNotFound)
}

func (m *mockStore) ListBookingsOverlapping(ctx context.Context, start, end time.Time, statuses []string) ([]db.Booking, error) {
	allowed := make(map[string]struct{}, len(statuses))
	for _, s := range statuses {
		allowed[s] = struct{}{}
	}
	out := make([]db.Booking, 0)
	for _, b := range m.bookings {
		if _, ok := allowed[b.Status]; !ok {
			continue
		}
		if b.StartAt.Before(end) && b.EndAt.After(start) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *mockStore) ListPendingBookingsBefore(ctx context.Context, cutoff time.Time) ([]db.Booking, error) {
	out := make([]db.Booking, 0)
	for _, b := range m.bookings {
		if b.Status == "PENDING" && b.CreatedAt.Before(cutoff) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *mockStore) UpdateBookingStatus(ctx context.Context, id, status string) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if m.statusUpdates == nil {
		m.statusUpdates = make(map[string]string)
	}
	m.statusUpdates[id] = status
	return nil
}

func (m *mockStore) GetBookingItem(ctx context.Context, id string) (*db.BookingItem, error) {
	for i := range m.items {
		if m.items[i].ID == id {
			return &m.items[i], nil
		}
	}
	return nil, fmt.Errorf("booking item %s: %w", id, scheduling.ErrNotFound)
}

func (m *mockStore) ListBookingItems(ctx context.Context, bookingID string) ([]db.BookingItem, error) {
	out := make([]db.BookingItem, 0)
	for _, item := range m.items {
		if item.BookingID == bookingID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (m *mockStore) ListItemCategoriesOverlapping(ctx context.Context, start, end time.Time) ([]string, error) {
	return m.categories, nil
}

func (m *mockStore) ListStaff(ctx context.Context) ([]db.Staff, error) {
	return m.staff, nil
}

func (m *mockStore) GetStaff(ctx context.Context, id string) (*db.Staff, error) {
	for i := range m.staff {
		if m.staff[i].ID == id {
			return &m.staff[i], nil
		}
	}
	return nil, fmt.Errorf("staff %s: %w", id, scheduling.ErrNotFound)
}

func (m *mockStore) ListProgramTypes(ctx context.Context) ([]db.ProgramType, error) {
	return m.programs, nil
}

func (m *mockStore) GetAssignment(ctx context.Context, id string) (*db.AssignmentDetail, error) {
	for i := range m.details {
		if m.details[i].ID == id {
			return &m.details[i], nil
		}
	}
	return nil, fmt.Errorf("assignment %s: %w", id, scheduling.ErrNotFound)
}

func (m *mockStore) ListAssignmentDetails(ctx context.Context) ([]db.AssignmentDetail, error) {
	return m.details, nil
}

func (m *mockStore) ListItemAssignments(ctx context.Context, itemID string) ([]db.Assignment, error) {
	return m.itemAssignments[itemID], nil
}

func (m *mockStore) InsertAssignments(ctx context.Context, assignments []db.Assignment) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.insertedAssignments = append(m.insertedAssignments, assignments...)
	return nil
}

func (m *mockStore) UpdateAssignmentStaff(ctx context.Context, id, staffID string) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if m.staffUpdates == nil {
		m.staffUpdates = make(map[string]string)
	}
	m.staffUpdates[id] = staffID
	return nil
}

func (m *mockStore) SwapAssignmentStaff(ctx context.Context, idA, idB string) error {
	if m.swapErr != nil {
		return m.swapErr
	}
	m.swaps = append(m.swaps, [2]string{idA, idB})
	return nil
}

func (m *mockStore) PromoteBookingAssignments(ctx context.Context, bookingID string) error {
	m.promotedBookings = append(m.promotedBookings, bookingID)
	return nil
}

// mockDatabase runs the transaction function directly against the embedded
// store, so writes are visible to the test afterwards.
type mockDatabase struct {
	mockStore
	txErr error
}

func (m *mockDatabase) WithTx(ctx context.Context, fn func(db.Store) error) error {
	if m.txErr != nil {
		return m.txErr
	}
	return fn(&m.mockStore)
}

// mockClock returns a fixed instant.
type mockClock struct {
	now time.Time
}

func (c mockClock) Now() time.Time { return c.now }

// mockNotifier records the notices it was asked to send.
type mockNotifier struct {
	sent    [][]AssignmentNotice
	sendErr error
}

func (m *mockNotifier) SendAssignmentNotices(ctx context.Context, notices []AssignmentNotice) error {
	m.sent = append(m.sent, notices)
	return m.sendErr
}
