package scheduling

import (
	"github.com/gurdwarasoft/seva-scheduler/pkg/core/model"
)

// StaffCommitment is one existing assignment's effective window, resolved
// against its parent booking. The availability index is built from these.
type StaffCommitment struct {
	AssignmentID string
	StaffID      string
	Window       model.Window
}

// Overlay holds windows a planning pass has claimed locally, so staff picked
// earlier in the pass are excluded from later picks without mutating the
// shared index. The zero value is not usable; create with NewOverlay.
type Overlay map[string][]model.Window

// NewOverlay creates an empty overlay.
func NewOverlay() Overlay {
	return make(Overlay)
}

// Add marks staffID as busy for the given window.
func (o Overlay) Add(staffID string, w model.Window) {
	o[staffID] = append(o[staffID], w)
}

// AvailabilityIndex answers "who is committed elsewhere" for arbitrary query
// windows. It is built once from a snapshot of assignments and has no side
// effects, so one index serves an entire planning pass.
type AvailabilityIndex struct {
	windows map[string][]model.Window
}

// BuildAvailabilityIndex indexes the given commitments by staff. Callers are
// expected to pass only commitments that actually block a sevadar: PROPOSED
// and CONFIRMED assignments whose parent booking is still active.
func BuildAvailabilityIndex(commitments []StaffCommitment) *AvailabilityIndex {
	windows := make(map[string][]model.Window)
	for _, c := range commitments {
		windows[c.StaffID] = append(windows[c.StaffID], c.Window)
	}
	return &AvailabilityIndex{windows: windows}
}

// IsBusy reports whether staffID has any commitment, indexed or overlaid,
// overlapping the query window.
func (ix *AvailabilityIndex) IsBusy(staffID string, w model.Window, overlay Overlay) bool {
	for _, busy := range ix.windows[staffID] {
		if busy.Overlaps(w) {
			return true
		}
	}
	for _, busy := range overlay[staffID] {
		if busy.Overlaps(w) {
			return true
		}
	}
	return false
}

// BusyStaff returns the set of staff ids committed during the query window.
// The overlay contributes as if its windows were indexed.
func (ix *AvailabilityIndex) BusyStaff(w model.Window, overlay Overlay) map[string]struct{} {
	busy := make(map[string]struct{})
	for staffID, windows := range ix.windows {
		for _, b := range windows {
			if b.Overlaps(w) {
				busy[staffID] = struct{}{}
				break
			}
		}
	}
	for staffID, windows := range overlay {
		if _, done := busy[staffID]; done {
			continue
		}
		for _, b := range windows {
			if b.Overlaps(w) {
				busy[staffID] = struct{}{}
				break
			}
		}
	}
	return busy
}
