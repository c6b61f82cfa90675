package services

import (
	"time"

	"github.com/gurdwarasoft/seva-scheduler/pkg/core/fairness"
	"github.com/gurdwarasoft/seva-scheduler/pkg/core/model"
	"github.com/gurdwarasoft/seva-scheduler/pkg/core/scheduling"
	"github.com/gurdwarasoft/seva-scheduler/pkg/db"
)

// Record-to-domain conversions. Services load db records, hand domain
// values to the pure core, and convert back for writes.

func toModelStaff(rec db.Staff) model.Staff {
	skills := make([]model.Skill, 0, len(rec.Skills))
	for _, s := range rec.Skills {
		skill := model.Skill(s)
		if skill.IsValid() {
			skills = append(skills, skill)
		}
	}
	return model.Staff{
		ID:     rec.ID,
		Name:   rec.Name,
		Skills: skills,
		Jatha:  rec.Jatha,
		Active: rec.Active,
	}
}

func toModelStaffList(recs []db.Staff) []model.Staff {
	staff := make([]model.Staff, len(recs))
	for i, rec := range recs {
		staff[i] = toModelStaff(rec)
	}
	return staff
}

func toModelBooking(rec db.Booking) model.Booking {
	return model.Booking{
		ID:       rec.ID,
		Start:    rec.StartAt,
		End:      rec.EndAt,
		Status:   model.BookingStatus(rec.Status),
		Location: rec.Location,
	}
}

func toModelItems(recs []db.BookingItem) []model.BookingItem {
	items := make([]model.BookingItem, len(recs))
	for i, rec := range recs {
		items[i] = model.BookingItem{
			ID:            rec.ID,
			BookingID:     rec.BookingID,
			ProgramTypeID: rec.ProgramTypeID,
			CreatedAt:     rec.CreatedAt,
		}
	}
	return items
}

func toModelPrograms(recs []db.ProgramType) map[string]model.ProgramType {
	programs := make(map[string]model.ProgramType, len(recs))
	for _, rec := range recs {
		programs[rec.ID] = model.ProgramType{
			ID:           rec.ID,
			Name:         rec.Name,
			Category:     model.ProgramCategory(rec.Category),
			MinPathers:   rec.MinPathers,
			MinKirtanis:  rec.MinKirtanis,
			Duration:     time.Duration(rec.DurationMinutes) * time.Minute,
			CompWeight:   rec.CompWeight,
			RotationTeam: rec.RotationTeam,
		}
	}
	return programs
}

func toDBAssignments(assignments []model.Assignment) []db.Assignment {
	recs := make([]db.Assignment, len(assignments))
	for i, a := range assignments {
		recs[i] = db.Assignment{
			ID:            a.ID,
			BookingItemID: a.BookingItemID,
			StaffID:       a.StaffID,
			State:         string(a.State),
			OverrideStart: a.OverrideStart,
			OverrideEnd:   a.OverrideEnd,
		}
	}
	return recs
}

// commitments converts assignment details into availability commitments:
// PROPOSED and CONFIRMED assignments on bookings that are still standing.
// Assignment ids in exclude are skipped, which lets the override flow ignore
// the very row it is about to rewrite.
func commitments(details []db.AssignmentDetail, exclude ...string) []scheduling.StaffCommitment {
	skip := make(map[string]struct{}, len(exclude))
	for _, id := range exclude {
		skip[id] = struct{}{}
	}

	out := make([]scheduling.StaffCommitment, 0, len(details))
	for _, d := range details {
		if _, skipped := skip[d.ID]; skipped {
			continue
		}
		if !model.BookingStatus(d.BookingStatus).IsActive() {
			continue
		}
		state := model.AssignmentState(d.State)
		if state != model.AssignmentProposed && state != model.AssignmentConfirmed {
			continue
		}
		out = append(out, scheduling.StaffCommitment{
			AssignmentID: d.ID,
			StaffID:      d.StaffID,
			Window:       model.Window{Start: d.EffectiveStart(), End: d.EffectiveEnd()},
		})
	}
	return out
}

// creditedAssignments converts assignment details into the fairness
// aggregator's input shape.
func creditedAssignments(details []db.AssignmentDetail) []fairness.CreditedAssignment {
	out := make([]fairness.CreditedAssignment, 0, len(details))
	for _, d := range details {
		out = append(out, fairness.CreditedAssignment{
			StaffID:       d.StaffID,
			State:         model.AssignmentState(d.State),
			BookingStatus: model.BookingStatus(d.BookingStatus),
			ProgramTypeID: d.ProgramTypeID,
			Window:        model.Window{Start: d.EffectiveStart(), End: d.EffectiveEnd()},
		})
	}
	return out
}
