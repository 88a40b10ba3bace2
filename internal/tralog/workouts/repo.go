package workouts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ponta-ta-taro/tralog4/internal/docstore"
	"github.com/ponta-ta-taro/tralog4/internal/telemetry/tracing"
	"github.com/ponta-ta-taro/tralog4/internal/tralog/loose"
	"github.com/ponta-ta-taro/tralog4/internal/tralog/records"
	"github.com/ponta-ta-taro/tralog4/internal/tralog/stats"
)

const Collection = "workouts"

var ErrWorkoutNotFound = errors.New("workout not found")

type documentStore interface {
	Create(ctx context.Context, userID, collection, id string, data json.RawMessage) (*docstore.Document, error)
	Get(ctx context.Context, userID, collection, id string) (*docstore.Document, error)
	Update(ctx context.Context, userID, collection, id string, data json.RawMessage) (*docstore.Document, error)
	Delete(ctx context.Context, userID, collection, id string) error
	List(ctx context.Context, userID, collection string) ([]docstore.Document, error)
	BatchWrite(ctx context.Context, userID string, ops []docstore.Op) error
}

type Repo struct {
	store documentStore
	Now   func() time.Time
}

func NewRepo(store documentStore) *Repo {
	return &Repo{
		store: store,
		Now:   time.Now,
	}
}

func (r *Repo) Add(ctx context.Context, userID string, workout records.Workout) (_ *records.Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	now := r.Now()
	workout.ID = ""
	workout.CreatedAt = loose.FromTime(now)
	r.prepare(&workout, now)

	data, err := json.Marshal(workout)
	if err != nil {
		return nil, fmt.Errorf("marshal workout: %w", err)
	}

	doc, err := r.store.Create(ctx, userID, Collection, "", data)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("workout.id", doc.ID))

	workout.ID = doc.ID
	return &workout, nil
}

func (r *Repo) Get(ctx context.Context, userID, id string) (_ *records.Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("workout.id", id))

	doc, err := r.store.Get(ctx, userID, Collection, id)
	if errors.Is(err, docstore.ErrDocumentNotFound) {
		return nil, ErrWorkoutNotFound
	}
	if err != nil {
		return nil, err
	}

	workout, err := decode(*doc)
	if err != nil {
		return nil, err
	}
	return &workout, nil
}

// Update replaces the stored workout. The original createdAt is kept when the
// new version does not carry one.
func (r *Repo) Update(ctx context.Context, userID, id string, workout records.Workout) (_ *records.Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("workout.id", id))

	workout.ID = id
	r.prepare(&workout, r.Now())

	data, err := json.Marshal(workout)
	if err != nil {
		return nil, fmt.Errorf("marshal workout: %w", err)
	}

	doc, err := r.store.Update(ctx, userID, Collection, id, data)
	if errors.Is(err, docstore.ErrDocumentNotFound) {
		return nil, ErrWorkoutNotFound
	}
	if err != nil {
		return nil, err
	}

	if workout.CreatedAt.IsZero() {
		workout.CreatedAt = loose.FromTime(doc.CreatedAt)
	}
	return &workout, nil
}

func (r *Repo) Delete(ctx context.Context, userID, id string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("workout.id", id))

	err = r.store.Delete(ctx, userID, Collection, id)
	if errors.Is(err, docstore.ErrDocumentNotFound) {
		return ErrWorkoutNotFound
	}
	return err
}

// ListAll returns every workout of the user, newest first. Documents that
// cannot be decoded are skipped and logged.
func (r *Repo) ListAll(ctx context.Context, userID string) (_ []records.Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.listall")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	docs, err := r.store.List(ctx, userID, Collection)
	if err != nil {
		return nil, err
	}

	workouts := make([]records.Workout, 0, len(docs))
	skipped := 0
	for _, doc := range docs {
		workout, err := decode(doc)
		if err != nil {
			skipped++
			log.Warnf("workouts: skipping undecodable document %s of user %s: %s", doc.ID, userID, err)
			continue
		}
		workouts = append(workouts, workout)
	}
	span.SetAttributes(attribute.Int("workouts.count", len(workouts)))
	span.SetAttributes(attribute.Int("workouts.skipped", skipped))

	return workouts, nil
}

// Import writes all workouts in one batch. Workouts keep their id when they
// have one, so importing the same export twice overwrites instead of
// duplicating. The ids of the written workouts are returned.
func (r *Repo) Import(ctx context.Context, userID string, workouts []records.Workout) (_ []string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.import")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("workouts.count", len(workouts)))

	now := r.Now()
	ops := make([]docstore.Op, 0, len(workouts))
	for i := range workouts {
		workout := workouts[i]
		if workout.CreatedAt.IsZero() {
			workout.CreatedAt = loose.FromTime(now)
		}
		r.prepare(&workout, now)

		data, err := json.Marshal(workout)
		if err != nil {
			return nil, fmt.Errorf("marshal workout %d: %w", i, err)
		}
		ops = append(ops, docstore.SetOp(Collection, workout.ID, data))
	}

	if err := r.store.BatchWrite(ctx, userID, ops); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(ops))
	for _, op := range ops {
		ids = append(ids, op.ID)
	}
	return ids, nil
}

func (r *Repo) prepare(workout *records.Workout, now time.Time) {
	if workout.Date.IsZero() {
		workout.Date = loose.FromTime(now)
	}
	workout.TotalVolume = loose.Num(stats.WeightVolume(workout.Exercises))
	workout.UpdatedAt = loose.FromTime(now)
}

func decode(doc docstore.Document) (records.Workout, error) {
	var workout records.Workout
	if err := json.Unmarshal(doc.Data, &workout); err != nil {
		return records.Workout{}, fmt.Errorf("decode workout %s: %w", doc.ID, err)
	}
	workout.ID = doc.ID
	if workout.CreatedAt.IsZero() {
		workout.CreatedAt = loose.FromTime(doc.CreatedAt)
	}
	if workout.UpdatedAt.IsZero() {
		workout.UpdatedAt = loose.FromTime(doc.UpdatedAt)
	}
	return workout, nil
}
