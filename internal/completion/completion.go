// Package completion holds the pure completion-detection rules: percentage
// recomputation, the completion transition predicate and the grade policy.
// Nothing here touches storage.
package completion

import "math"

// Complete is the percentage at which a course counts as finished.
const Complete = 100

// Recompute returns floor(completed / total * 100), clamped to [0, 100].
// A course with no lessons is never complete.
func Recompute(completed, total int) int {
	if total <= 0 || completed <= 0 {
		return 0
	}
	if completed >= total {
		return Complete
	}
	return completed * 100 / total
}

// CrossesCompletion reports whether a change from oldPct to newPct is the
// completion transition.
func CrossesCompletion(oldPct, newPct int) bool {
	return oldPct < Complete && newPct == Complete
}

// Advance recomputes the percentage but never returns less than oldPct, so a
// catalog that grows after the fact cannot move a learner backwards.
func Advance(oldPct, completed, total int) int {
	pct := Recompute(completed, total)
	if pct < oldPct {
		return oldPct
	}
	return pct
}

// AddMinutes adds minutes to total, saturating at math.MaxInt so the total
// can only grow. Negative input is ignored.
func AddMinutes(total, minutes int) int {
	if minutes <= 0 {
		return total
	}
	if total > math.MaxInt-minutes {
		return math.MaxInt
	}
	return total + minutes
}
