package stats

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ponta-ta-taro/tralog4/internal/telemetry/metrics"
	"github.com/ponta-ta-taro/tralog4/internal/telemetry/tracing"
	"github.com/ponta-ta-taro/tralog4/internal/tralog/loose"
	"github.com/ponta-ta-taro/tralog4/internal/tralog/records"
)

//go:generate mockgen -source=$GOFILE -destination=stats_mocks_test.go -package=stats_test

const DefaultTrendWeeks = 8

// ErrRecordsUnavailable is returned when the workouts could not be fetched.
// Nothing is aggregated in that case.
var ErrRecordsUnavailable = errors.New("workout records unavailable")

type workoutsSource interface {
	ListAll(ctx context.Context, userID string) ([]records.Workout, error)
}

type WeeklyReport struct {
	WeekStart time.Time   `json:"weekStart"`
	WeekEnd   time.Time   `json:"weekEnd"`
	ThisWeek  WeeklyStats `json:"thisWeek"`
	LastWeek  WeeklyStats `json:"lastWeek"`
}

type WeekPoint struct {
	WeekStart    time.Time    `json:"weekStart"`
	Count        int          `json:"count"`
	UniqueDays   int          `json:"uniqueDays"`
	VolumeByType VolumeByType `json:"volumeByType"`
}

type Dashboard struct {
	TotalWorkouts   int          `json:"totalWorkouts"`
	LastWorkoutDate *time.Time   `json:"lastWorkoutDate"`
	WeekStart       time.Time    `json:"weekStart"`
	WeekEnd         time.Time    `json:"weekEnd"`
	ThisWeek        WeeklyStats  `json:"thisWeek"`
	LastWeek        WeeklyStats  `json:"lastWeek"`
	VolumeChange    VolumeByType `json:"volumeChange"`
	Trend           []WeekPoint  `json:"trend"`
	DataQuality     DataQuality  `json:"dataQuality"`
}

type NewServiceParams struct {
	Calendar       Calendar
	Keywords       Keywords
	TrendWeeks     int
	MetricsManager *metrics.Manager
	// Now is the clock for "this week" and for unreadable dates, time.Now if nil
	Now func() time.Time
}

type Service struct {
	source         workoutsSource
	aggregator     *Aggregator
	metricsManager *metrics.Manager
	trendWeeks     int
	now            func() time.Time
}

func NewService(source workoutsSource, params NewServiceParams) *Service {
	now := params.Now
	if now == nil {
		now = time.Now
	}
	if params.TrendWeeks <= 0 {
		params.TrendWeeks = DefaultTrendWeeks
	}
	if params.Keywords == (Keywords{}) {
		params.Keywords = DefaultKeywords()
	}

	normalizer := loose.NewNormalizer(now, params.Calendar.Location())
	return &Service{
		source:         source,
		aggregator:     NewAggregator(normalizer, params.Calendar, params.Keywords),
		metricsManager: params.MetricsManager,
		trendWeeks:     params.TrendWeeks,
		now:            now,
	}
}

func (s *Service) Calendar() Calendar {
	return s.aggregator.Calendar()
}

// Weekly returns the stats of the week containing anchor and of the week
// before it. A zero anchor means now.
func (s *Service) Weekly(ctx context.Context, userID string, anchor time.Time) (_ *WeeklyReport, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.stats.weekly")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user.id", userID))

	workouts, err := s.fetch(ctx, userID)
	if err != nil {
		return nil, err
	}

	defer s.observe("weekly", time.Now())

	if anchor.IsZero() {
		anchor = s.now()
	}
	cal := s.aggregator.Calendar()
	thisWeek := cal.ThisWeek(anchor)

	report := &WeeklyReport{
		WeekStart: thisWeek.Start,
		WeekEnd:   thisWeek.End,
		ThisWeek:  s.aggregator.Aggregate(workouts, thisWeek),
		LastWeek:  s.aggregator.Aggregate(workouts, cal.LastWeek(anchor)),
	}
	s.reportQuality(userID, report.ThisWeek.DataQuality)

	return report, nil
}

func (s *Service) Dashboard(ctx context.Context, userID string) (_ *Dashboard, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.stats.dashboard")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user.id", userID))

	workouts, err := s.fetch(ctx, userID)
	if err != nil {
		return nil, err
	}

	defer s.observe("dashboard", time.Now())

	now := s.now()
	cal := s.aggregator.Calendar()
	thisWeek := cal.ThisWeek(now)

	d := &Dashboard{
		TotalWorkouts: len(workouts),
		WeekStart:     thisWeek.Start,
		WeekEnd:       thisWeek.End,
		ThisWeek:      s.aggregator.Aggregate(workouts, thisWeek),
		LastWeek:      s.aggregator.Aggregate(workouts, cal.LastWeek(now)),
	}
	d.VolumeChange = d.ThisWeek.VolumeByType.Sub(d.LastWeek.VolumeByType)
	d.DataQuality = d.ThisWeek.DataQuality

	for _, w := range workouts {
		date := s.aggregator.Date(w)
		// a substituted "now" says nothing about when the user trained
		if date.IsFallback() {
			continue
		}
		if d.LastWorkoutDate == nil || date.Time.After(*d.LastWorkoutDate) {
			t := date.Time.In(cal.Location())
			d.LastWorkoutDate = &t
		}
	}

	for _, window := range cal.Weeks(now, s.trendWeeks) {
		ws := s.aggregator.Aggregate(workouts, window)
		d.Trend = append(d.Trend, WeekPoint{
			WeekStart:    window.Start,
			Count:        ws.Count,
			UniqueDays:   ws.UniqueDays,
			VolumeByType: ws.VolumeByType,
		})
	}

	s.reportQuality(userID, d.DataQuality)

	return d, nil
}

// WorkoutsIn returns the workouts dated within the window, newest first.
// Dates are read the same way the weekly stats read them.
func (s *Service) WorkoutsIn(ctx context.Context, userID string, window Window) (_ []records.Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.stats.workouts_in")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user.id", userID))

	workouts, err := s.fetch(ctx, userID)
	if err != nil {
		return nil, err
	}

	type dated struct {
		at      time.Time
		workout records.Workout
	}
	var in []dated
	for _, w := range workouts {
		date := s.aggregator.Date(w)
		if window.Contains(date.Time) {
			in = append(in, dated{at: date.Time, workout: w})
		}
	}
	sort.SliceStable(in, func(i, j int) bool {
		return in[i].at.After(in[j].at)
	})

	result := make([]records.Workout, 0, len(in))
	for _, d := range in {
		result = append(result, d.workout)
	}
	span.SetAttributes(attribute.Int("workouts.count", len(result)))
	return result, nil
}

// Aggregate folds already fetched workouts; used where the records do not
// come from the store, e.g. an exported file.
func (s *Service) Aggregate(workouts []records.Workout, window Window) WeeklyStats {
	return s.aggregator.Aggregate(workouts, window)
}

func (s *Service) fetch(ctx context.Context, userID string) ([]records.Workout, error) {
	workouts, err := s.source.ListAll(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRecordsUnavailable, err)
	}
	return workouts, nil
}

func (s *Service) observe(kind string, begin time.Time) {
	if s.metricsManager == nil {
		return
	}
	s.metricsManager.HistStatsComputeDuration.WithLabelValues(kind).Observe(time.Since(begin).Seconds())
}

func (s *Service) reportQuality(userID string, q DataQuality) {
	if q.FallbackDates == 0 {
		return
	}
	log.WithFields(log.Fields{
		"user":     userID,
		"scanned":  q.Scanned,
		"fallback": q.FallbackDates,
	}).Warn("stats: workouts with unreadable dates were counted as today")
	if s.metricsManager != nil {
		s.metricsManager.CounterStatsFallbackDates.Add(float64(q.FallbackDates))
	}
}
