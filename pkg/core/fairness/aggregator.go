// Package fairness computes sevadar assignment-credit totals. The ledger is
// derived, never stored: every call rescans assignment history, so edits to
// old bookings can never leave the figures drifting. It is read-only and
// safe to run while the assignment engine is planning; a slightly stale
// snapshot feeding the ranker is acceptable.
package fairness

import (
	"sort"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/gurdwarasoft/seva-scheduler/pkg/core/model"
	"github.com/gurdwarasoft/seva-scheduler/pkg/core/scheduling"
)

// DefaultWindowWeeks is the rolling window used when the caller does not ask
// for a specific one.
const DefaultWindowWeeks = 8

// CreditedAssignment is one assignment joined with everything credit
// calculation needs: its parent booking's status and the effective window.
type CreditedAssignment struct {
	StaffID       string
	State         model.AssignmentState
	BookingStatus model.BookingStatus
	ProgramTypeID string
	Window        model.Window
}

// Filters narrows the report to matching staff. Zero values match everyone.
type Filters struct {
	Skill *model.Skill
	Jatha string
	Name  string // case-insensitive substring match
}

func (f Filters) matches(s model.Staff) bool {
	if f.Skill != nil && !s.HasSkill(*f.Skill) {
		return false
	}
	if f.Jatha != "" && s.Jatha != f.Jatha {
		return false
	}
	if f.Name != "" && !strings.Contains(strings.ToLower(s.Name), strings.ToLower(f.Name)) {
		return false
	}
	return true
}

// ProgramBreakdown is the per-program slice of one staff member's credit.
type ProgramBreakdown struct {
	ProgramTypeID   string
	ProgramName     string
	CountWindow     int
	CountLifetime   int
	CreditsWindow   int
	CreditsLifetime int
}

// ReportRow is one staff member's line in the fairness report.
type ReportRow struct {
	StaffID         string
	Name            string
	CreditsWindow   int
	CreditsLifetime int
	CountWindow     int
	CountLifetime   int
	Programs        []ProgramBreakdown
}

// weekAnchor is an arbitrary Monday; the weekly rule pinned to it yields
// week boundaries for any instant.
var weekAnchor = time.Date(2000, time.January, 3, 0, 0, 0, 0, time.UTC)

// WindowBounds returns the rolling credit window: weeks whole weeks ending
// at the current week boundary (the end of the ISO week containing now).
func WindowBounds(now time.Time, weeks int) (start, end time.Time) {
	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Dtstart:   weekAnchor,
		Byweekday: []rrule.Weekday{rrule.MO},
	})
	if err != nil {
		// The rule is a constant; this cannot fail at runtime.
		panic(err)
	}
	weekStart := rule.Before(now.UTC(), true)
	end = weekStart.AddDate(0, 0, 7)
	start = end.AddDate(0, 0, -7*weeks)
	return start, end
}

// creditable reports whether an assignment earns credit at all: it must be
// CONFIRMED and its booking still standing. Work that never happened, or was
// reversed, counts for nothing.
func creditable(a CreditedAssignment) bool {
	return a.State == model.AssignmentConfirmed && a.BookingStatus.IsActive()
}

// inWindow applies closed-interval containment of the assignment's effective
// timestamp (its window start).
func inWindow(a CreditedAssignment, start, end time.Time) bool {
	t := a.Window.Start
	return !t.Before(start) && !t.After(end)
}

// BuildCreditSnapshot produces the per-staff credit totals the ranker sorts
// by, evaluated as of now.
func BuildCreditSnapshot(assignments []CreditedAssignment, programs map[string]model.ProgramType, now time.Time, weeks int) scheduling.CreditSnapshot {
	if weeks <= 0 {
		weeks = DefaultWindowWeeks
	}
	windowStart, windowEnd := WindowBounds(now, weeks)

	snapshot := make(scheduling.CreditSnapshot)
	for _, a := range assignments {
		if !creditable(a) {
			continue
		}
		weight := compWeight(programs, a.ProgramTypeID)
		c := snapshot[a.StaffID]
		c.Lifetime += weight
		if inWindow(a, windowStart, windowEnd) {
			c.Window += weight
		}
		snapshot[a.StaffID] = c
	}
	return snapshot
}

// BuildReport produces the fairness report: one row per active staff member
// matching the filters, sorted most-credited first so the heaviest load
// reads from the top. The same ordering applies inside each row's program
// breakdown.
func BuildReport(staff []model.Staff, assignments []CreditedAssignment, programs map[string]model.ProgramType, now time.Time, weeks int, filters Filters) []ReportRow {
	if weeks <= 0 {
		weeks = DefaultWindowWeeks
	}
	windowStart, windowEnd := WindowBounds(now, weeks)

	byStaff := make(map[string][]CreditedAssignment)
	for _, a := range assignments {
		if !creditable(a) {
			continue
		}
		byStaff[a.StaffID] = append(byStaff[a.StaffID], a)
	}

	rows := make([]ReportRow, 0, len(staff))
	for _, s := range staff {
		if !s.Active || !filters.matches(s) {
			continue
		}

		row := ReportRow{StaffID: s.ID, Name: s.Name}
		perProgram := make(map[string]*ProgramBreakdown)

		for _, a := range byStaff[s.ID] {
			weight := compWeight(programs, a.ProgramTypeID)
			windowed := inWindow(a, windowStart, windowEnd)

			row.CreditsLifetime += weight
			row.CountLifetime++
			if windowed {
				row.CreditsWindow += weight
				row.CountWindow++
			}

			pb, ok := perProgram[a.ProgramTypeID]
			if !ok {
				pb = &ProgramBreakdown{ProgramTypeID: a.ProgramTypeID}
				if program, found := programs[a.ProgramTypeID]; found {
					pb.ProgramName = program.Name
				}
				perProgram[a.ProgramTypeID] = pb
			}
			pb.CreditsLifetime += weight
			pb.CountLifetime++
			if windowed {
				pb.CreditsWindow += weight
				pb.CountWindow++
			}
		}

		row.Programs = make([]ProgramBreakdown, 0, len(perProgram))
		for _, pb := range perProgram {
			row.Programs = append(row.Programs, *pb)
		}
		sort.Slice(row.Programs, func(i, j int) bool {
			if row.Programs[i].CreditsWindow != row.Programs[j].CreditsWindow {
				return row.Programs[i].CreditsWindow > row.Programs[j].CreditsWindow
			}
			if row.Programs[i].CreditsLifetime != row.Programs[j].CreditsLifetime {
				return row.Programs[i].CreditsLifetime > row.Programs[j].CreditsLifetime
			}
			return row.Programs[i].ProgramName < row.Programs[j].ProgramName
		})

		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].CreditsWindow != rows[j].CreditsWindow {
			return rows[i].CreditsWindow > rows[j].CreditsWindow
		}
		if rows[i].CreditsLifetime != rows[j].CreditsLifetime {
			return rows[i].CreditsLifetime > rows[j].CreditsLifetime
		}
		return rows[i].Name < rows[j].Name
	})
	return rows
}

func compWeight(programs map[string]model.ProgramType, programTypeID string) int {
	if program, ok := programs[programTypeID]; ok && program.CompWeight > 0 {
		return program.CompWeight
	}
	return 1
}
