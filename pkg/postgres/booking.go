package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/gurdwarasoft/seva-scheduler/pkg/core/scheduling"
	"github.com/gurdwarasoft/seva-scheduler/pkg/db"
)

// GetBooking retrieves one booking by id.
func (s *store) GetBooking(ctx context.Context, id string) (*db.Booking, error) {
	var b db.Booking
	err := s.q.QueryRow(ctx, `
		SELECT id, start_at, end_at, status, location, created_at
		FROM booking
		WHERE id = $1
	`, id).Scan(&b.ID, &b.StartAt, &b.EndAt, &b.Status, &b.Location, &b.CreatedAt)
	if err != nil {
		return nil, mapError(fmt.Errorf("failed to get booking %s: %w", id, err))
	}
	return &b, nil
}

// ListBookingsOverlapping returns bookings in the given statuses whose
// half-open window overlaps [start, end).
func (s *store) ListBookingsOverlapping(ctx context.Context, start, end time.Time, statuses []string) ([]db.Booking, error) {
	rows, err := s.q.Query(ctx, `
		SELECT id, start_at, end_at, status, location, created_at
		FROM booking
		WHERE start_at < $2 AND end_at > $1 AND status = ANY($3)
	`, start, end, statuses)
	if err != nil {
		return nil, fmt.Errorf("failed to query overlapping bookings: %w", err)
	}
	defer rows.Close()

	var bookings []db.Booking
	for rows.Next() {
		var b db.Booking
		if err := rows.Scan(&b.ID, &b.StartAt, &b.EndAt, &b.Status, &b.Location, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bookings: %w", err)
	}
	return bookings, nil
}

// ListPendingBookingsBefore returns PENDING bookings created before cutoff.
func (s *store) ListPendingBookingsBefore(ctx context.Context, cutoff time.Time) ([]db.Booking, error) {
	rows, err := s.q.Query(ctx, `
		SELECT id, start_at, end_at, status, location, created_at
		FROM booking
		WHERE status = 'PENDING' AND created_at < $1
	`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query stale pending bookings: %w", err)
	}
	defer rows.Close()

	var bookings []db.Booking
	for rows.Next() {
		var b db.Booking
		if err := rows.Scan(&b.ID, &b.StartAt, &b.EndAt, &b.Status, &b.Location, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bookings: %w", err)
	}
	return bookings, nil
}

// UpdateBookingStatus sets a booking's status.
func (s *store) UpdateBookingStatus(ctx context.Context, id, status string) error {
	tag, err := s.q.Exec(ctx, `UPDATE booking SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return mapError(fmt.Errorf("failed to update booking %s status: %w", id, err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("booking %s: %w", id, scheduling.ErrNotFound)
	}
	return nil
}

// GetBookingItem retrieves one booking item by id.
func (s *store) GetBookingItem(ctx context.Context, id string) (*db.BookingItem, error) {
	var item db.BookingItem
	err := s.q.QueryRow(ctx, `
		SELECT id, booking_id, program_type_id, created_at
		FROM booking_item
		WHERE id = $1
	`, id).Scan(&item.ID, &item.BookingID, &item.ProgramTypeID, &item.CreatedAt)
	if err != nil {
		return nil, mapError(fmt.Errorf("failed to get booking item %s: %w", id, err))
	}
	return &item, nil
}

// ListBookingItems returns a booking's items in creation order.
func (s *store) ListBookingItems(ctx context.Context, bookingID string) ([]db.BookingItem, error) {
	rows, err := s.q.Query(ctx, `
		SELECT id, booking_id, program_type_id, created_at
		FROM booking_item
		WHERE booking_id = $1
		ORDER BY created_at, id
	`, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to query booking items: %w", err)
	}
	defer rows.Close()

	var items []db.BookingItem
	for rows.Next() {
		var item db.BookingItem
		if err := rows.Scan(&item.ID, &item.BookingID, &item.ProgramTypeID, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan booking item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating booking items: %w", err)
	}
	return items, nil
}

// ListItemCategoriesOverlapping returns the program category of every item
// on an active booking overlapping [start, end), one entry per item. Feeds
// the venue-wide category cap check.
func (s *store) ListItemCategoriesOverlapping(ctx context.Context, start, end time.Time) ([]string, error) {
	rows, err := s.q.Query(ctx, `
		SELECT pt.category
		FROM booking_item bi
		JOIN booking b ON b.id = bi.booking_id
		JOIN program_type pt ON pt.id = bi.program_type_id
		WHERE b.start_at < $2 AND b.end_at > $1
		  AND b.status IN ('PENDING', 'CONFIRMED')
	`, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query overlapping item categories: %w", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}
	return categories, nil
}
