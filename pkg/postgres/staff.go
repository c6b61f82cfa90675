package postgres

import (
	"context"
	"fmt"

	"github.com/gurdwarasoft/seva-scheduler/pkg/db"
)

// ListStaff retrieves all staff records, active and inactive.
func (s *store) ListStaff(ctx context.Context) ([]db.Staff, error) {
	rows, err := s.q.Query(ctx, `
		SELECT id, name, email, skills, jatha, active
		FROM staff
		ORDER BY name, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query staff: %w", err)
	}
	defer rows.Close()

	var staff []db.Staff
	for rows.Next() {
		var rec db.Staff
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Email, &rec.Skills, &rec.Jatha, &rec.Active); err != nil {
			return nil, fmt.Errorf("failed to scan staff: %w", err)
		}
		staff = append(staff, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating staff: %w", err)
	}
	return staff, nil
}

// GetStaff retrieves one staff record by id.
func (s *store) GetStaff(ctx context.Context, id string) (*db.Staff, error) {
	var rec db.Staff
	err := s.q.QueryRow(ctx, `
		SELECT id, name, email, skills, jatha, active
		FROM staff
		WHERE id = $1
	`, id).Scan(&rec.ID, &rec.Name, &rec.Email, &rec.Skills, &rec.Jatha, &rec.Active)
	if err != nil {
		return nil, mapError(fmt.Errorf("failed to get staff %s: %w", id, err))
	}
	return &rec, nil
}

// ListProgramTypes retrieves the program catalog.
func (s *store) ListProgramTypes(ctx context.Context) ([]db.ProgramType, error) {
	rows, err := s.q.Query(ctx, `
		SELECT id, name, category, min_pathers, min_kirtanis, duration_minutes, comp_weight, rotation_team
		FROM program_type
		ORDER BY name, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query program types: %w", err)
	}
	defer rows.Close()

	var programs []db.ProgramType
	for rows.Next() {
		var p db.ProgramType
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.MinPathers, &p.MinKirtanis, &p.DurationMinutes, &p.CompWeight, &p.RotationTeam); err != nil {
			return nil, fmt.Errorf("failed to scan program type: %w", err)
		}
		programs = append(programs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating program types: %w", err)
	}
	return programs, nil
}
