package scheduling

import (
	"fmt"
	"sort"

	"github.com/gurdwarasoft/seva-scheduler/pkg/core/model"
)

// Venue-wide physical capacity: how many program stations of each category
// can run at the same time, independent of staffing.
const (
	MaxConcurrentKirtan = 2
	MaxConcurrentPath   = 1
)

// MinJathaSize is the smallest complete rotating group. A jatha with fewer
// active, skill-qualified members is not eligible at all, even for partial
// use.
const MinJathaSize = 3

// Needs is the unmet staffing requirement of one booking item.
type Needs struct {
	Path   int
	Kirtan int
}

// ForSkill returns the unmet count for the given skill.
func (n Needs) ForSkill(skill model.Skill) int {
	switch skill {
	case model.SkillPath:
		return n.Path
	case model.SkillKirtan:
		return n.Kirtan
	}
	return 0
}

// Satisfied reports whether nothing is owed.
func (n Needs) Satisfied() bool {
	return n.Path == 0 && n.Kirtan == 0
}

// UnmetNeeds computes how many more pathers and kirtanis an item needs given
// the staff already assigned to it. A sevadar holding both skills counts
// toward both minimums; that is a deliberate policy (one person can cover a
// path turn and a kirtan turn within the same program), not double counting
// by accident.
func UnmetNeeds(program model.ProgramType, assigned []model.Staff) Needs {
	pathers := 0
	kirtanis := 0
	for _, s := range assigned {
		if s.HasSkill(model.SkillPath) {
			pathers++
		}
		if s.HasSkill(model.SkillKirtan) {
			kirtanis++
		}
	}
	return Needs{
		Path:   max(0, program.MinPathers-pathers),
		Kirtan: max(0, program.MinKirtanis-kirtanis),
	}
}

// CheckCategoryCaps validates the venue's concurrency caps for a candidate
// booking window. existing holds the categories of every item on bookings
// overlapping that window; requested holds the categories the candidate
// booking wants to add. Evaluated once at booking creation/edit time; a
// violation blocks the booking outright.
func CheckCategoryCaps(existing, requested []model.ProgramCategory) error {
	kirtan := 0
	path := 0
	for _, c := range existing {
		switch c {
		case model.CategoryKirtan:
			kirtan++
		case model.CategoryPath:
			path++
		}
	}
	for _, c := range requested {
		switch c {
		case model.CategoryKirtan:
			kirtan++
		case model.CategoryPath:
			path++
		}
	}

	if kirtan > MaxConcurrentKirtan {
		return &RuleError{
			Rule:   RuleCategoryCap,
			Reason: fmt.Sprintf("%d kirtan programs would run concurrently, the hall supports %d", kirtan, MaxConcurrentKirtan),
		}
	}
	if path > MaxConcurrentPath {
		return &RuleError{
			Rule:   RuleCategoryCap,
			Reason: fmt.Sprintf("%d path programs would run concurrently, the hall supports %d", path, MaxConcurrentPath),
		}
	}
	return nil
}

// Jatha is a complete rotating group eligible for a rotation-style program.
type Jatha struct {
	Name    string
	Members []model.Staff
}

// EligibleJathas groups the given staff by jatha tag and keeps only complete
// groups: at least MinJathaSize members who are active and hold the required
// skill. Members failing the filter are dropped before the size check, so a
// five-person jatha with two inactive members still qualifies with three.
// Groups are returned sorted by name for deterministic iteration.
func EligibleJathas(staff []model.Staff, skill model.Skill) []Jatha {
	byName := make(map[string][]model.Staff)
	for _, s := range staff {
		if s.Jatha == "" || !s.Active || !s.HasSkill(skill) {
			continue
		}
		byName[s.Jatha] = append(byName[s.Jatha], s)
	}

	jathas := make([]Jatha, 0, len(byName))
	for name, members := range byName {
		if len(members) < MinJathaSize {
			continue
		}
		sort.Slice(members, func(i, j int) bool { return members[i].Name < members[j].Name })
		jathas = append(jathas, Jatha{Name: name, Members: members})
	}
	sort.Slice(jathas, func(i, j int) bool { return jathas[i].Name < jathas[j].Name })
	return jathas
}
