package postgres

import (
	"context"
	"fmt"

	"github.com/gurdwarasoft/seva-scheduler/pkg/core/scheduling"
	"github.com/gurdwarasoft/seva-scheduler/pkg/db"
)

const assignmentDetailSelect = `
	SELECT a.id, a.booking_item_id, a.staff_id, a.state, a.override_start, a.override_end,
	       b.id, b.status, b.start_at, b.end_at, bi.program_type_id
	FROM assignment a
	JOIN booking_item bi ON bi.id = a.booking_item_id
	JOIN booking b ON b.id = bi.booking_id
`

func scanAssignmentDetail(row interface{ Scan(...any) error }) (db.AssignmentDetail, error) {
	var d db.AssignmentDetail
	err := row.Scan(
		&d.ID, &d.BookingItemID, &d.StaffID, &d.State, &d.OverrideStart, &d.OverrideEnd,
		&d.BookingID, &d.BookingStatus, &d.BookingStart, &d.BookingEnd, &d.ProgramTypeID,
	)
	return d, err
}

// GetAssignment retrieves one assignment joined with its item and booking.
func (s *store) GetAssignment(ctx context.Context, id string) (*db.AssignmentDetail, error) {
	d, err := scanAssignmentDetail(s.q.QueryRow(ctx, assignmentDetailSelect+` WHERE a.id = $1`, id))
	if err != nil {
		return nil, mapError(fmt.Errorf("failed to get assignment %s: %w", id, err))
	}
	return &d, nil
}

// ListAssignmentDetails retrieves every assignment joined with its item and
// booking. Availability indexing and credit aggregation both start here.
func (s *store) ListAssignmentDetails(ctx context.Context) ([]db.AssignmentDetail, error) {
	rows, err := s.q.Query(ctx, assignmentDetailSelect)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignment details: %w", err)
	}
	defer rows.Close()

	var details []db.AssignmentDetail
	for rows.Next() {
		d, err := scanAssignmentDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assignment detail: %w", err)
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assignment details: %w", err)
	}
	return details, nil
}

// ListItemAssignments retrieves a single item's assignments.
func (s *store) ListItemAssignments(ctx context.Context, itemID string) ([]db.Assignment, error) {
	rows, err := s.q.Query(ctx, `
		SELECT id, booking_item_id, staff_id, state, override_start, override_end
		FROM assignment
		WHERE booking_item_id = $1
		ORDER BY id
	`, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to query item assignments: %w", err)
	}
	defer rows.Close()

	var assignments []db.Assignment
	for rows.Next() {
		var a db.Assignment
		if err := rows.Scan(&a.ID, &a.BookingItemID, &a.StaffID, &a.State, &a.OverrideStart, &a.OverrideEnd); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assignments: %w", err)
	}
	return assignments, nil
}

// InsertAssignments writes new assignment rows. A duplicate (item, staff)
// pair surfaces as a retryable conflict.
func (s *store) InsertAssignments(ctx context.Context, assignments []db.Assignment) error {
	for _, a := range assignments {
		_, err := s.q.Exec(ctx, `
			INSERT INTO assignment (id, booking_item_id, staff_id, state, override_start, override_end)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, a.ID, a.BookingItemID, a.StaffID, a.State, a.OverrideStart, a.OverrideEnd)
		if err != nil {
			return mapError(fmt.Errorf("failed to insert assignment %s: %w", a.ID, err))
		}
	}
	return nil
}

// UpdateAssignmentStaff replaces the staff on one assignment row.
func (s *store) UpdateAssignmentStaff(ctx context.Context, id, staffID string) error {
	tag, err := s.q.Exec(ctx, `UPDATE assignment SET staff_id = $2 WHERE id = $1`, id, staffID)
	if err != nil {
		return mapError(fmt.Errorf("failed to update assignment %s staff: %w", id, err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("assignment %s: %w", id, scheduling.ErrNotFound)
	}
	return nil
}

// SwapAssignmentStaff exchanges the staff ids of two assignment rows in a
// single statement, so either both change or neither does. The uniqueness
// check is deferred to commit: two assignments on the same item pass
// through a transient duplicate mid-update, and the final state is unique
// again once both rows have traded.
func (s *store) SwapAssignmentStaff(ctx context.Context, idA, idB string) error {
	_, err := s.q.Exec(ctx, `SET CONSTRAINTS assignment_item_staff_key DEFERRED`)
	if err != nil {
		return fmt.Errorf("failed to defer assignment uniqueness check: %w", err)
	}

	tag, err := s.q.Exec(ctx, `
		UPDATE assignment a
		SET staff_id = CASE a.id
			WHEN $1 THEN (SELECT staff_id FROM assignment WHERE id = $2)
			WHEN $2 THEN (SELECT staff_id FROM assignment WHERE id = $1)
		END
		WHERE a.id IN ($1, $2)
	`, idA, idB)
	if err != nil {
		return mapError(fmt.Errorf("failed to swap assignments %s and %s: %w", idA, idB, err))
	}
	if tag.RowsAffected() != 2 {
		return fmt.Errorf("swap %s/%s touched %d rows: %w", idA, idB, tag.RowsAffected(), scheduling.ErrNotFound)
	}
	return nil
}

// PromoteBookingAssignments flips a booking's PROPOSED assignments to
// CONFIRMED.
func (s *store) PromoteBookingAssignments(ctx context.Context, bookingID string) error {
	_, err := s.q.Exec(ctx, `
		UPDATE assignment a
		SET state = 'CONFIRMED'
		FROM booking_item bi
		WHERE bi.id = a.booking_item_id
		  AND bi.booking_id = $1
		  AND a.state = 'PROPOSED'
	`, bookingID)
	if err != nil {
		return mapError(fmt.Errorf("failed to promote assignments for booking %s: %w", bookingID, err))
	}
	return nil
}
