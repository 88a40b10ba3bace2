package workouts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/ponta-ta-taro/tralog4/internal/auth"
	"github.com/ponta-ta-taro/tralog4/internal/events"
	"github.com/ponta-ta-taro/tralog4/internal/telemetry/metrics"
	"github.com/ponta-ta-taro/tralog4/internal/telemetry/tracing"
	"github.com/ponta-ta-taro/tralog4/internal/tralog/records"
	"github.com/ponta-ta-taro/tralog4/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=workouts_test

const (
	MaxImportSize   = 1000
	maxRequestBytes = 8 << 20
)

type workoutsRepo interface {
	Add(ctx context.Context, userID string, workout records.Workout) (*records.Workout, error)
	Get(ctx context.Context, userID, id string) (*records.Workout, error)
	Update(ctx context.Context, userID, id string, workout records.Workout) (*records.Workout, error)
	Delete(ctx context.Context, userID, id string) error
	ListAll(ctx context.Context, userID string) ([]records.Workout, error)
	Import(ctx context.Context, userID string, workouts []records.Workout) ([]string, error)
}

type eventPublisher interface {
	Publish(ctx context.Context, event events.WorkoutEvent) error
}

type DeleteWorkoutResponse struct {
	DeletedID string `json:"deletedId"`
}

type ImportResponse struct {
	Imported int      `json:"imported"`
	IDs      []string `json:"ids"`
}

type Handler struct {
	repo           workoutsRepo
	publisher      eventPublisher
	metricsManager *metrics.Manager
	now            func() time.Time
}

func NewHandler(repo workoutsRepo, publisher eventPublisher, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		repo:           repo,
		publisher:      publisher,
		metricsManager: metricsManager,
		now:            time.Now,
	}
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.add")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	var workout records.Workout
	if !decodeBody(w, r, &workout) {
		return
	}

	added, err := handler.repo.Add(ctx, userID, workout)
	if err != nil {
		log.Errorf("failed to add workout for user %s: %s", userID, err)
		http.Error(w, "error, failed to add workout", http.StatusInternalServerError)
		return
	}

	handler.written(ctx, events.TypeWorkoutCreated, "create", userID, added.ID)
	writeJSON(w, added, http.StatusCreated)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.get")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	id := mux.Vars(r)["id"]
	if id == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}

	workout, err := handler.repo.Get(ctx, userID, id)
	if err != nil {
		if errors.Is(err, ErrWorkoutNotFound) {
			http.Error(w, "error, workout not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to get workout %s: %s", id, err)
		http.Error(w, "error, failed to get workout", http.StatusInternalServerError)
		return
	}

	writeJSON(w, workout, http.StatusOK)
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.list")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	workouts, err := handler.repo.ListAll(ctx, userID)
	if err != nil {
		log.Errorf("failed to list workouts of user %s: %s", userID, err)
		http.Error(w, "error, failed to list workouts", http.StatusInternalServerError)
		return
	}
	if workouts == nil {
		workouts = []records.Workout{}
	}

	writeJSON(w, workouts, http.StatusOK)
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.update")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	id := mux.Vars(r)["id"]
	if id == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}

	var workout records.Workout
	if !decodeBody(w, r, &workout) {
		return
	}

	updated, err := handler.repo.Update(ctx, userID, id, workout)
	if err != nil {
		if errors.Is(err, ErrWorkoutNotFound) {
			http.Error(w, "error, workout not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to update workout %s: %s", id, err)
		http.Error(w, "error, failed to update workout", http.StatusInternalServerError)
		return
	}

	handler.written(ctx, events.TypeWorkoutUpdated, "update", userID, id)
	writeJSON(w, updated, http.StatusOK)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.delete")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	id := mux.Vars(r)["id"]
	if id == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}

	if err := handler.repo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, ErrWorkoutNotFound) {
			http.Error(w, "error, workout not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to delete workout %s: %s", id, err)
		http.Error(w, "error, failed to delete workout", http.StatusInternalServerError)
		return
	}

	handler.written(ctx, events.TypeWorkoutDeleted, "delete", userID, id)
	writeJSON(w, DeleteWorkoutResponse{DeletedID: id}, http.StatusOK)
}

// HandleImport stores a JSON array of workouts, e.g. an export of another
// account or of an older version of the app.
func (handler *Handler) HandleImport(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.import")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	var workouts []records.Workout
	if !decodeBody(w, r, &workouts) {
		return
	}
	if len(workouts) == 0 {
		http.Error(w, "error, nothing to import", http.StatusBadRequest)
		return
	}
	if len(workouts) > MaxImportSize {
		http.Error(w, "error, too many workouts in one import", http.StatusRequestEntityTooLarge)
		return
	}

	ids, err := handler.repo.Import(ctx, userID, workouts)
	if err != nil {
		log.Errorf("failed to import %d workouts for user %s: %s", len(workouts), userID, err)
		http.Error(w, "error, import failed", http.StatusInternalServerError)
		return
	}

	log.Debugf("imported %d workouts for user %s", len(ids), userID)
	handler.written(ctx, events.TypeWorkoutImported, "import", userID, ids...)
	writeJSON(w, ImportResponse{Imported: len(ids), IDs: ids}, http.StatusCreated)
}

// written reports a successful write; event failures are only logged.
func (handler *Handler) written(ctx context.Context, eventType events.Type, op, userID string, ids ...string) {
	if handler.metricsManager != nil {
		handler.metricsManager.CounterWorkoutWrites.WithLabelValues(op).Add(float64(len(ids)))
	}
	if handler.publisher == nil {
		return
	}
	event := events.NewWorkoutEvent(eventType, userID, handler.now(), ids...)
	if err := handler.publisher.Publish(ctx, event); err != nil {
		log.Errorf("publish %s event for user %s: %s", eventType, userID, err)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return false
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(v); err != nil {
		log.Tracef("workouts, unmarshal request body: %s", err)
		http.Error(w, "error, invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, v any, status int) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Errorf("workouts, marshal response: %s", err)
		http.Error(w, "error, internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, b, status)
}
