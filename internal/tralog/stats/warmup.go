package stats

import (
	"math"
	"strings"

	"github.com/ponta-ta-taro/tralog4/internal/tralog/records"
)

const (
	DefaultWarmupKeyword   = "ウォームアップ"
	DefaultCooldownKeyword = "クールダウン"
)

type Keywords struct {
	Warmup   string
	Cooldown string
}

func DefaultKeywords() Keywords {
	return Keywords{
		Warmup:   DefaultWarmupKeyword,
		Cooldown: DefaultCooldownKeyword,
	}
}

type WarmupCooldown struct {
	WarmupSeconds   float64
	CooldownSeconds float64
}

// Reconcile totals a workout's warmup and cooldown time from both sources:
// the explicit duration fields and time exercises whose name carries the
// keyword. The two sources are added together.
func Reconcile(w records.Workout, kw Keywords) WarmupCooldown {
	var wc WarmupCooldown
	if w.WarmupDurationSeconds.Positive() {
		wc.WarmupSeconds = w.WarmupDurationSeconds.Float()
	}
	if w.CooldownDurationSeconds.Positive() {
		wc.CooldownSeconds = w.CooldownDurationSeconds.Float()
	}

	for _, ex := range w.Exercises {
		if ResolveType(ex) != records.MenuTypeTime {
			continue
		}
		isWarmup := kw.Warmup != "" && strings.Contains(ex.Name, kw.Warmup)
		isCooldown := kw.Cooldown != "" && strings.Contains(ex.Name, kw.Cooldown)
		if !isWarmup && !isCooldown {
			continue
		}

		seconds := Volume(records.MenuTypeTime, ex.Sets)
		if isWarmup {
			wc.WarmupSeconds += seconds
		}
		if isCooldown {
			wc.CooldownSeconds += seconds
		}
	}

	return wc
}

// Minutes rounds seconds to whole minutes, halves rounding up.
func Minutes(seconds float64) int {
	return int(math.Floor(seconds/60 + 0.5))
}
