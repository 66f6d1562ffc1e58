package rbac

// Threshold returns the minimum hierarchy level among the allowed roles.
// Access is granted to any caller at or above this level, so the binding
// constraint is the lowest-ranked role in the set. An empty set has
// threshold 0 and denies everyone via Allowed.
func Threshold(allowed ...Role) int {
	min := 0
	for _, r := range allowed {
		lvl := r.Level()
		if lvl == 0 {
			continue
		}
		if min == 0 || lvl < min {
			min = lvl
		}
	}
	return min
}

// Allowed reports whether caller meets the easiest of the allowed roles'
// thresholds. Role insufficiency is a Forbidden outcome; a missing identity
// is the earlier Unauthorized failure and never reaches this gate.
func Allowed(caller Role, allowed ...Role) bool {
	threshold := Threshold(allowed...)
	if threshold == 0 {
		return false
	}
	return caller.Level() >= threshold
}
