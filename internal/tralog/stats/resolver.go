package stats

import (
	"github.com/ponta-ta-taro/tralog4/internal/tralog/records"
)

const (
	legacyTypeTime   = "time"
	legacyTypeWeight = "weight"
)

// ResolveType decides how an exercise is measured. A valid declared menu type
// always wins; otherwise the type is inferred from the recorded sets. Distance
// is checked before weight since legacy distance sets look like time-only sets.
func ResolveType(ex records.Exercise) records.MenuType {
	if ex.MenuType.IsValid() {
		return ex.MenuType
	}

	if anySet(ex.Sets, func(s records.Set) bool { return s.Distance.Positive() }) {
		return records.MenuTypeDistance
	}

	if ex.LegacyType == legacyTypeTime {
		return records.MenuTypeTime
	}

	weighted := anySet(ex.Sets, func(s records.Set) bool {
		return s.Weight.Positive() && s.Reps.Positive()
	})
	if weighted || ex.LegacyType == legacyTypeWeight {
		return records.MenuTypeWeight
	}

	if anySet(ex.Sets, func(s records.Set) bool { return s.Seconds() > 0 }) {
		return records.MenuTypeTime
	}

	// reps without weight, or nothing usable at all
	return records.MenuTypeBodyweight
}

func anySet(sets []records.Set, pred func(records.Set) bool) bool {
	for _, s := range sets {
		if pred(s) {
			return true
		}
	}
	return false
}
