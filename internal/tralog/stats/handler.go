package stats

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ponta-ta-taro/tralog4/internal/auth"
	"github.com/ponta-ta-taro/tralog4/internal/telemetry/tracing"
	"github.com/ponta-ta-taro/tralog4/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=stats_test

type statsService interface {
	Weekly(ctx context.Context, userID string, anchor time.Time) (*WeeklyReport, error)
	Dashboard(ctx context.Context, userID string) (*Dashboard, error)
}

const unavailableMessage = "statistics are temporarily unavailable, please try again"

type Handler struct {
	service  statsService
	calendar Calendar
}

func NewHandler(service statsService, calendar Calendar) *Handler {
	return &Handler{
		service:  service,
		calendar: calendar,
	}
}

// HandleWeekly returns this week's and last week's stats. The optional week
// query param (YYYY-MM-DD) selects the week containing that day instead.
func (handler *Handler) HandleWeekly(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.stats.weekly")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	var anchor time.Time
	if weekParam := r.URL.Query().Get("week"); weekParam != "" {
		day, err := handler.calendar.ParseDay(weekParam)
		if err != nil {
			http.Error(w, "invalid week parameter (use YYYY-MM-DD)", http.StatusBadRequest)
			return
		}
		anchor = day
	}

	report, err := handler.service.Weekly(ctx, userID, anchor)
	if err != nil {
		handler.writeServiceErr(w, "weekly", userID, err)
		return
	}

	reportJson, err := json.Marshal(report)
	if err != nil {
		log.Errorf("failed to marshal weekly stats: %s", err)
		http.Error(w, "failed to marshal response", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, reportJson, http.StatusOK)
}

func (handler *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.stats.dashboard")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	dashboard, err := handler.service.Dashboard(ctx, userID)
	if err != nil {
		handler.writeServiceErr(w, "dashboard", userID, err)
		return
	}

	dashboardJson, err := json.Marshal(dashboard)
	if err != nil {
		log.Errorf("failed to marshal dashboard: %s", err)
		http.Error(w, "failed to marshal response", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, dashboardJson, http.StatusOK)
}

func (handler *Handler) writeServiceErr(w http.ResponseWriter, what, userID string, err error) {
	log.Errorf("failed to compute %s stats for user [%s]: %s", what, userID, err)
	if errors.Is(err, ErrRecordsUnavailable) {
		http.Error(w, unavailableMessage, http.StatusServiceUnavailable)
		return
	}
	http.Error(w, "failed to compute statistics", http.StatusInternalServerError)
}
