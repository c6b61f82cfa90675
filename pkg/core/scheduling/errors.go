package scheduling

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates a referenced booking, item, assignment or staff
// record does not exist. Not retryable.
var ErrNotFound = errors.New("not found")

// ErrConflict indicates a concurrent modification lost the race at commit
// time (typically a uniqueness violation in the store). Callers should
// re-read and retry; the core never retries on its own.
var ErrConflict = errors.New("concurrent modification conflict")

// ErrInvalidInput indicates malformed input. Not retryable.
var ErrInvalidInput = errors.New("invalid input")

// RuleError is a business rule violation. It carries the rule that was
// violated and a human-readable reason. Rule errors are surfaced to the
// caller and never retried; they are not fatal to the booking.
type RuleError struct {
	Rule   string
	Reason string
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("rule %s violated: %s", e.Rule, e.Reason)
}

// Rule names used across the scheduling core.
const (
	RuleCategoryCap      = "category-cap"
	RuleDuplicateStaff   = "duplicate-staff"
	RuleGroupIncomplete  = "group-incomplete"
	RuleSkillFeasibility = "skill-feasibility"
	RuleSwapSameSlot     = "swap-same-slot"
	RuleSwapScope        = "swap-scope"
	RuleSwapStatePolicy  = "swap-state-policy"
	RuleStaffInactive    = "staff-inactive"
	RuleStaffBusy        = "staff-busy"
	RuleBookingState     = "booking-state"
)

// IsRuleError reports whether err is a business rule violation and returns it.
func IsRuleError(err error) (*RuleError, bool) {
	var re *RuleError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
