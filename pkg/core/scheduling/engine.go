package scheduling

import (
	"fmt"
	"sort"

	"github.com/gurdwarasoft/seva-scheduler/pkg/core/model"
)

// Shortage reports one unmet staffing requirement left after auto-assign
// exhausted the eligible pool. Needed is the true remaining gap, never a
// partial figure.
type Shortage struct {
	ItemID string
	Role   model.Skill
	Needed int
}

// Plan is the outcome of one auto-assign planning pass: the PROPOSED
// assignments to create plus every shortage encountered. A non-empty
// shortage list is a normal, reportable outcome, not an error.
type Plan struct {
	Created   []model.Assignment
	Shortages []Shortage
}

// PlanInput is the snapshot one planning pass runs over. The pass itself is
// pure: it reads the snapshot, tracks its own picks in an overlay, and
// returns a plan without touching any store.
type PlanInput struct {
	Booking  model.Booking
	Items    []model.BookingItem
	Programs map[string]model.ProgramType

	// Staff is the full candidate roster, active and inactive; the
	// eligibility pre-filter handles the rest.
	Staff []model.Staff

	// Index answers availability for staff committed on other bookings.
	Index *AvailabilityIndex

	// AssignedByItem holds staff ids already assigned to each item before
	// this pass, so re-running auto-assign tops a booking up instead of
	// double-placing people.
	AssignedByItem map[string][]string

	Credits CreditSnapshot

	// NewID mints assignment ids.
	NewID func() string
}

// rolesInOrder is the fixed role processing order within an item. Order
// matters: it decides who gets served first when the eligible pool is shared.
var rolesInOrder = []model.Skill{model.SkillPath, model.SkillKirtan}

// PlanAssignments runs the greedy auto-assign pass for one booking.
//
// Items are processed in canonical order (PATH category before KIRTAN before
// OTHER, then creation order), and within an item the PATH role before
// KIRTAN. Each unmet unit takes the head of the fairness ranking; an empty
// pool records the remaining gap as a shortage and moves on to the next
// role. There is no backtracking and no global optimization.
func PlanAssignments(in PlanInput) (*Plan, error) {
	if in.NewID == nil {
		return nil, fmt.Errorf("%w: NewID generator is required", ErrInvalidInput)
	}

	items := make([]model.BookingItem, len(in.Items))
	copy(items, in.Items)
	for _, item := range items {
		if _, ok := in.Programs[item.ProgramTypeID]; !ok {
			return nil, fmt.Errorf("%w: program type %s for item %s", ErrNotFound, item.ProgramTypeID, item.ID)
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		ri := categoryRank(in.Programs[items[i].ProgramTypeID].Category)
		rj := categoryRank(in.Programs[items[j].ProgramTypeID].Category)
		if ri != rj {
			return ri < rj
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})

	p := &planner{
		in:      in,
		overlay: NewOverlay(),
		plan:    &Plan{Created: []model.Assignment{}, Shortages: []Shortage{}},
	}
	p.staffByID = make(map[string]model.Staff, len(in.Staff))
	for _, s := range in.Staff {
		p.staffByID[s.ID] = s
	}

	for _, item := range items {
		p.planItem(item, in.Programs[item.ProgramTypeID])
	}
	return p.plan, nil
}

func categoryRank(c model.ProgramCategory) int {
	switch c {
	case model.CategoryPath:
		return 0
	case model.CategoryKirtan:
		return 1
	default:
		return 2
	}
}

// planner carries the in-pass state: the shared busy overlay and the plan
// being built.
type planner struct {
	in        PlanInput
	staffByID map[string]model.Staff
	overlay   Overlay
	plan      *Plan
}

func (p *planner) planItem(item model.BookingItem, program model.ProgramType) {
	win := p.in.Booking.Window()

	assigned := make([]model.Staff, 0)
	onItem := make(map[string]struct{})
	for _, staffID := range p.in.AssignedByItem[item.ID] {
		onItem[staffID] = struct{}{}
		if s, ok := p.staffByID[staffID]; ok {
			assigned = append(assigned, s)
		}
	}

	for _, role := range rolesInOrder {
		if program.RotationTeam {
			assigned = p.fillRotationRole(item, program, role, win, assigned, onItem)
		} else {
			assigned = p.fillRole(item, program, role, win, assigned, onItem)
		}
	}
}

// fillRole satisfies one role on one item a unit at a time. Needs are
// recomputed after every placement because a dual-skill pick can shrink the
// other role's gap too.
func (p *planner) fillRole(item model.BookingItem, program model.ProgramType, role model.Skill, win model.Window, assigned []model.Staff, onItem map[string]struct{}) []model.Staff {
	for {
		needed := UnmetNeeds(program, assigned).ForSkill(role)
		if needed == 0 {
			return assigned
		}

		busy := p.in.Index.BusyStaff(win, p.overlay)
		ranked := Rank(EligiblePool(p.in.Staff, role, busy, onItem), p.in.Credits)
		if len(ranked) == 0 {
			p.plan.Shortages = append(p.plan.Shortages, Shortage{ItemID: item.ID, Role: role, Needed: needed})
			return assigned
		}

		pick := ranked[0]
		p.place(item, pick, win, onItem)
		assigned = append(assigned, pick)
	}
}

// fillRotationRole satisfies a role on a rotation-style item whole jathas at
// a time. A jatha only counts while at least MinJathaSize of its active,
// skill-qualified members are free for the window; everyone who clears the
// filter is placed together.
func (p *planner) fillRotationRole(item model.BookingItem, program model.ProgramType, role model.Skill, win model.Window, assigned []model.Staff, onItem map[string]struct{}) []model.Staff {
	for {
		needed := UnmetNeeds(program, assigned).ForSkill(role)
		if needed == 0 {
			return assigned
		}

		busy := p.in.Index.BusyStaff(win, p.overlay)
		candidates := make([]Jatha, 0)
		for _, jatha := range EligibleJathas(p.in.Staff, role) {
			free := make([]model.Staff, 0, len(jatha.Members))
			for _, m := range jatha.Members {
				if _, isBusy := busy[m.ID]; isBusy {
					continue
				}
				if _, taken := onItem[m.ID]; taken {
					continue
				}
				free = append(free, m)
			}
			if len(free) >= MinJathaSize {
				candidates = append(candidates, Jatha{Name: jatha.Name, Members: free})
			}
		}

		ranked := RankJathas(candidates, p.in.Credits)
		if len(ranked) == 0 {
			p.plan.Shortages = append(p.plan.Shortages, Shortage{ItemID: item.ID, Role: role, Needed: needed})
			return assigned
		}

		for _, member := range ranked[0].Members {
			p.place(item, member, win, onItem)
			assigned = append(assigned, member)
		}
	}
}

func (p *planner) place(item model.BookingItem, staff model.Staff, win model.Window, onItem map[string]struct{}) {
	p.plan.Created = append(p.plan.Created, model.Assignment{
		ID:            p.in.NewID(),
		BookingItemID: item.ID,
		StaffID:       staff.ID,
		State:         model.AssignmentProposed,
	})
	onItem[staff.ID] = struct{}{}
	p.overlay.Add(staff.ID, win)
}
