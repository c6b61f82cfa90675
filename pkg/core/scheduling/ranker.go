package scheduling

import (
	"sort"

	"github.com/gurdwarasoft/seva-scheduler/pkg/core/model"
)

// Credits is one sevadar's fairness credit, split into a rolling recent
// window and a lifetime total.
type Credits struct {
	Window   int
	Lifetime int
}

// CreditSnapshot maps staff id to credits as of some instant. Snapshots are
// produced by the fairness aggregator; a slightly stale snapshot is
// acceptable during planning.
type CreditSnapshot map[string]Credits

// EligiblePool filters staff down to candidates for one unmet unit of a
// role: active, holding the skill, not busy in the target window, and not
// already placed on the item.
func EligiblePool(staff []model.Staff, skill model.Skill, busy map[string]struct{}, onItem map[string]struct{}) []model.Staff {
	pool := make([]model.Staff, 0, len(staff))
	for _, s := range staff {
		if !s.Active || !s.HasSkill(skill) {
			continue
		}
		if _, isBusy := busy[s.ID]; isBusy {
			continue
		}
		if _, taken := onItem[s.ID]; taken {
			continue
		}
		pool = append(pool, s)
	}
	return pool
}

// Rank orders candidates least-credit first: window credit approximates
// recent load, lifetime credit breaks ties, name breaks the rest. The sort
// is a pure function of its inputs; identical pool and snapshot always yield
// the same order, which is what lets an admin ask "why was X picked" and get
// a stable answer.
func Rank(pool []model.Staff, credits CreditSnapshot) []model.Staff {
	ranked := make([]model.Staff, len(pool))
	copy(ranked, pool)
	sort.SliceStable(ranked, func(i, j int) bool {
		ci := credits[ranked[i].ID]
		cj := credits[ranked[j].ID]
		if ci.Window != cj.Window {
			return ci.Window < cj.Window
		}
		if ci.Lifetime != cj.Lifetime {
			return ci.Lifetime < cj.Lifetime
		}
		return ranked[i].Name < ranked[j].Name
	})
	return ranked
}

// RankJathas orders complete groups by their combined credit, least-loaded
// team first, so rotation programs also rotate fairly across jathas.
func RankJathas(jathas []Jatha, credits CreditSnapshot) []Jatha {
	ranked := make([]Jatha, len(jathas))
	copy(ranked, jathas)
	sort.SliceStable(ranked, func(i, j int) bool {
		wi, li := jathaCredits(ranked[i], credits)
		wj, lj := jathaCredits(ranked[j], credits)
		if wi != wj {
			return wi < wj
		}
		if li != lj {
			return li < lj
		}
		return ranked[i].Name < ranked[j].Name
	})
	return ranked
}

func jathaCredits(j Jatha, credits CreditSnapshot) (window, lifetime int) {
	for _, m := range j.Members {
		c := credits[m.ID]
		window += c.Window
		lifetime += c.Lifetime
	}
	return window, lifetime
}
