package stats

import (
	"strings"

	"github.com/ponta-ta-taro/tralog4/internal/tralog/loose"
	"github.com/ponta-ta-taro/tralog4/internal/tralog/records"
)

type WeeklyStats struct {
	Count           int          `json:"count"`
	TotalVolume     float64      `json:"totalVolume"`
	UniqueDays      int          `json:"uniqueDays"`
	UniqueExercises int          `json:"uniqueExercises"`
	VolumeByType    VolumeByType `json:"volumeByType"`

	WarmupTotalMinutes   int     `json:"warmupTotalMinutes"`
	CooldownTotalMinutes int     `json:"cooldownTotalMinutes"`
	WarmupTotalSeconds   float64 `json:"warmupTotalSeconds"`
	CooldownTotalSeconds float64 `json:"cooldownTotalSeconds"`

	DataQuality DataQuality `json:"dataQuality"`
}

// DataQuality reports how many of the scanned records had a date that could
// not be read and was replaced with the current time.
type DataQuality struct {
	Scanned       int `json:"scanned"`
	FallbackDates int `json:"fallbackDates"`
}

type Aggregator struct {
	normalizer *loose.Normalizer
	calendar   Calendar
	keywords   Keywords
}

func NewAggregator(normalizer *loose.Normalizer, calendar Calendar, keywords Keywords) *Aggregator {
	return &Aggregator{
		normalizer: normalizer,
		calendar:   calendar,
		keywords:   keywords,
	}
}

func (a *Aggregator) Calendar() Calendar {
	return a.calendar
}

// Date returns the normalized date of a workout.
func (a *Aggregator) Date(w records.Workout) loose.Normalized {
	return a.normalizer.Normalize(w.Date)
}

// Aggregate folds the workouts dated within the window into weekly stats.
// Malformed records never fail the fold: unreadable dates become "now" and
// unreadable numbers count as zero.
func (a *Aggregator) Aggregate(workouts []records.Workout, window Window) WeeklyStats {
	var st WeeklyStats
	days := make(map[string]struct{})
	exerciseNames := make(map[string]struct{})

	for _, w := range workouts {
		st.DataQuality.Scanned++
		date := a.normalizer.Normalize(w.Date)
		if date.IsFallback() {
			st.DataQuality.FallbackDates++
		}
		if !window.Contains(date.Time) {
			continue
		}

		st.Count++
		st.TotalVolume += w.TotalVolume.Float()
		days[a.calendar.DayKey(date.Time)] = struct{}{}

		for _, ex := range w.Exercises {
			if name := strings.TrimSpace(ex.Name); name != "" {
				exerciseNames[name] = struct{}{}
			}
			t := ResolveType(ex)
			st.VolumeByType.Add(t, Volume(t, ex.Sets))
		}

		wc := Reconcile(w, a.keywords)
		st.WarmupTotalSeconds += wc.WarmupSeconds
		st.CooldownTotalSeconds += wc.CooldownSeconds
	}

	st.UniqueDays = len(days)
	st.UniqueExercises = len(exerciseNames)
	st.WarmupTotalMinutes = Minutes(st.WarmupTotalSeconds)
	st.CooldownTotalMinutes = Minutes(st.CooldownTotalSeconds)

	return st
}
