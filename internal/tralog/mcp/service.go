package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ponta-ta-taro/tralog4/internal/tralog/records"
	"github.com/ponta-ta-taro/tralog4/internal/tralog/stats"
)

var (
	ErrMissingUser  = errors.New("user_id is required")
	ErrInvalidDate  = errors.New("invalid date, use YYYY-MM-DD")
	ErrInvalidRange = errors.New("to_date is before from_date")
)

// statsService is implemented by stats.Service.
type statsService interface {
	Calendar() stats.Calendar
	Weekly(ctx context.Context, userID string, anchor time.Time) (*stats.WeeklyReport, error)
	Dashboard(ctx context.Context, userID string) (*stats.Dashboard, error)
	WorkoutsIn(ctx context.Context, userID string, window stats.Window) ([]records.Workout, error)
}

// contextService provides the data behind the tools. Used by Handler for testability.
type contextService interface {
	WeeklyStats(ctx context.Context, userID, week string) (*stats.WeeklyReport, error)
	Dashboard(ctx context.Context, userID string) (*stats.Dashboard, error)
	Workouts(ctx context.Context, userID, fromDate, toDate string) ([]records.Workout, error)
}

// ContextService reads dates in the stats calendar and delegates to the stats service.
type ContextService struct {
	stats statsService
}

func NewContextService(statsSvc statsService) *ContextService {
	return &ContextService{
		stats: statsSvc,
	}
}

// WeeklyStats returns the stats of the week containing the given day, or of
// the current week when week is empty.
func (s *ContextService) WeeklyStats(ctx context.Context, userID, week string) (*stats.WeeklyReport, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}

	var anchor time.Time
	if week != "" {
		day, err := s.stats.Calendar().ParseDay(week)
		if err != nil {
			return nil, fmt.Errorf("%w: week %q", ErrInvalidDate, week)
		}
		anchor = day
	}

	return s.stats.Weekly(ctx, userID, anchor)
}

func (s *ContextService) Dashboard(ctx context.Context, userID string) (*stats.Dashboard, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}
	return s.stats.Dashboard(ctx, userID)
}

// Workouts returns the workouts done from fromDate through toDate, both days included.
func (s *ContextService) Workouts(ctx context.Context, userID, fromDate, toDate string) ([]records.Workout, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}

	cal := s.stats.Calendar()
	from, err := cal.ParseDay(fromDate)
	if err != nil {
		return nil, fmt.Errorf("%w: from_date %q", ErrInvalidDate, fromDate)
	}
	to, err := cal.ParseDay(toDate)
	if err != nil {
		return nil, fmt.Errorf("%w: to_date %q", ErrInvalidDate, toDate)
	}
	if to.Before(from) {
		return nil, ErrInvalidRange
	}

	return s.stats.WorkoutsIn(ctx, userID, stats.Window{
		Start: from,
		End:   to.AddDate(0, 0, 1),
	})
}
