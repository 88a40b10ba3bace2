package menus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ponta-ta-taro/tralog4/internal/docstore"
	"github.com/ponta-ta-taro/tralog4/internal/telemetry/tracing"
)

const Collection = "menus"

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

// List returns the user's menus sorted by order, then name.
func (r *Repo) List(ctx context.Context, userID string) (_ []Menu, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.menus.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	docs, err := r.store.List(ctx, userID, Collection)
	if err != nil {
		return nil, err
	}

	menus := make([]Menu, 0, len(docs))
	for _, doc := range docs {
		menu, err := decode(doc)
		if err != nil {
			log.Warnf("menus: skipping undecodable document %s of user %s: %s", doc.ID, userID, err)
			continue
		}
		menus = append(menus, menu)
	}

	sort.SliceStable(menus, func(i, j int) bool {
		if menus[i].Order != menus[j].Order {
			return menus[i].Order < menus[j].Order
		}
		return menus[i].Name < menus[j].Name
	})
	span.SetAttributes(attribute.Int("menus.count", len(menus)))

	return menus, nil
}

// Add stores a new menu at the end of the list.
func (r *Repo) Add(ctx context.Context, userID string, menu Menu) (_ *Menu, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.menus.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := menu.Validate(); err != nil {
		return nil, err
	}

	existing, err := r.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list menus: %w", err)
	}
	menu.Order = len(existing)
	for _, m := range existing {
		if m.Order >= menu.Order {
			menu.Order = m.Order + 1
		}
	}
	menu.ID = ""
	menu.CreatedAt = r.Now().UTC()

	data, err := json.Marshal(menu)
	if err != nil {
		return nil, fmt.Errorf("marshal menu: %w", err)
	}

	doc, err := r.store.Create(ctx, userID, Collection, "", data)
	if err != nil {
		return nil, err
	}

	menu.ID = doc.ID
	return &menu, nil
}

// Update changes name and type; order is only changed through Reorder.
func (r *Repo) Update(ctx context.Context, userID, id string, menu Menu) (_ *Menu, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.menus.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("menu.id", id))

	if err := menu.Validate(); err != nil {
		return nil, err
	}

	doc, err := r.store.Get(ctx, userID, Collection, id)
	if errors.Is(err, docstore.ErrDocumentNotFound) {
		return nil, ErrMenuNotFound
	}
	if err != nil {
		return nil, err
	}
	current, err := decode(*doc)
	if err != nil {
		return nil, err
	}

	current.Name = menu.Name
	current.Type = menu.Type

	data, err := json.Marshal(current)
	if err != nil {
		return nil, fmt.Errorf("marshal menu: %w", err)
	}
	if _, err := r.store.Update(ctx, userID, Collection, id, data); err != nil {
		if errors.Is(err, docstore.ErrDocumentNotFound) {
			return nil, ErrMenuNotFound
		}
		return nil, err
	}

	return &current, nil
}

func (r *Repo) Delete(ctx context.Context, userID, id string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.menus.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("menu.id", id))

	err = r.store.Delete(ctx, userID, Collection, id)
	if errors.Is(err, docstore.ErrDocumentNotFound) {
		return ErrMenuNotFound
	}
	return err
}

// Reorder gives the listed menus the order of their position in ids, in one
// batch. Menus not listed keep their order after the listed ones.
func (r *Repo) Reorder(ctx context.Context, userID string, ids []string) (_ []Menu, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.menus.reorder")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("menus.count", len(ids)))

	menus, err := r.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]int, len(menus))
	for i, m := range menus {
		byID[m.ID] = i
	}

	position := make(map[string]int, len(ids))
	for i, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMenuNotFound, id)
		}
		if _, dup := position[id]; dup {
			return nil, fmt.Errorf("%w: duplicate id %s", ErrInvalidMenu, id)
		}
		position[id] = i
	}

	next := len(ids)
	ops := make([]docstore.Op, 0, len(menus))
	for i := range menus {
		m := &menus[i]
		if p, ok := position[m.ID]; ok {
			m.Order = p
		} else {
			m.Order = next
			next++
		}
		data, err := json.Marshal(m)
		if err != nil {
			return nil, fmt.Errorf("marshal menu: %w", err)
		}
		ops = append(ops, docstore.SetOp(Collection, m.ID, data))
	}

	if err := r.store.BatchWrite(ctx, userID, ops); err != nil {
		return nil, err
	}

	sort.SliceStable(menus, func(i, j int) bool {
		return menus[i].Order < menus[j].Order
	})
	return menus, nil
}

func decode(doc docstore.Document) (Menu, error) {
	var menu Menu
	if err := json.Unmarshal(doc.Data, &menu); err != nil {
		return Menu{}, fmt.Errorf("decode menu %s: %w", doc.ID, err)
	}
	menu.ID = doc.ID
	if menu.CreatedAt.IsZero() {
		menu.CreatedAt = doc.CreatedAt
	}
	return menu, nil
}
