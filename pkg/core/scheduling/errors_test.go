package scheduling

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleErrorMessage(t *testing.T) {
	err := &RuleError{Rule: RuleCategoryCap, Reason: "too many concurrent programs"}
	assert.Equal(t, "rule category-cap violated: too many concurrent programs", err.Error())
}

func TestIsRuleError(t *testing.T) {
	base := &RuleError{Rule: RuleStaffBusy, Reason: "overlap"}

	t.Run("direct", func(t *testing.T) {
		re, ok := IsRuleError(base)
		require.True(t, ok)
		assert.Equal(t, RuleStaffBusy, re.Rule)
	})

	t.Run("wrapped", func(t *testing.T) {
		wrapped := fmt.Errorf("swap failed: %w", base)
		re, ok := IsRuleError(wrapped)
		require.True(t, ok)
		assert.Equal(t, RuleStaffBusy, re.Rule)
	})

	t.Run("other errors", func(t *testing.T) {
		_, ok := IsRuleError(ErrNotFound)
		assert.False(t, ok)
		_, ok = IsRuleError(nil)
		assert.False(t, ok)
	})
}
