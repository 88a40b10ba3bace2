package menus

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/ponta-ta-taro/tralog4/internal/auth"
	"github.com/ponta-ta-taro/tralog4/internal/telemetry/tracing"
	"github.com/ponta-ta-taro/tralog4/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=menus_test

type menusRepo interface {
	List(ctx context.Context, userID string) ([]Menu, error)
	Add(ctx context.Context, userID string, menu Menu) (*Menu, error)
	Update(ctx context.Context, userID, id string, menu Menu) (*Menu, error)
	Delete(ctx context.Context, userID, id string) error
	Reorder(ctx context.Context, userID string, ids []string) ([]Menu, error)
}

type ReorderRequest struct {
	IDs []string `json:"ids"`
}

type DeleteMenuResponse struct {
	DeletedID string `json:"deletedId"`
}

type Handler struct {
	repo menusRepo
}

func NewHandler(repo menusRepo) *Handler {
	return &Handler{
		repo: repo,
	}
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.menus.list")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	menus, err := handler.repo.List(ctx, userID)
	if err != nil {
		log.Errorf("failed to list menus of user %s: %s", userID, err)
		http.Error(w, "error, failed to list menus", http.StatusInternalServerError)
		return
	}
	if menus == nil {
		menus = []Menu{}
	}

	writeJSON(w, menus, http.StatusOK)
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.menus.add")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	var menu Menu
	if !decodeBody(w, r, &menu) {
		return
	}

	added, err := handler.repo.Add(ctx, userID, menu)
	if err != nil {
		if errors.Is(err, ErrInvalidMenu) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Errorf("failed to add menu for user %s: %s", userID, err)
		http.Error(w, "error, failed to add menu", http.StatusInternalServerError)
		return
	}

	writeJSON(w, added, http.StatusCreated)
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.menus.update")
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

	var menu Menu
	if !decodeBody(w, r, &menu) {
		return
	}

	updated, err := handler.repo.Update(ctx, userID, id, menu)
	if err != nil {
		handler.writeRepoError(w, "update", id, err)
		return
	}

	writeJSON(w, updated, http.StatusOK)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.menus.delete")
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
		handler.writeRepoError(w, "delete", id, err)
		return
	}

	writeJSON(w, DeleteMenuResponse{DeletedID: id}, http.StatusOK)
}

func (handler *Handler) HandleReorder(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.menus.reorder")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	var req ReorderRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.IDs) == 0 {
		http.Error(w, "error, ids empty", http.StatusBadRequest)
		return
	}

	menus, err := handler.repo.Reorder(ctx, userID, req.IDs)
	if err != nil {
		handler.writeRepoError(w, "reorder", strings.Join(req.IDs, ","), err)
		return
	}

	writeJSON(w, menus, http.StatusOK)
}

func (handler *Handler) writeRepoError(w http.ResponseWriter, op, id string, err error) {
	switch {
	case errors.Is(err, ErrMenuNotFound):
		http.Error(w, "error, menu not found", http.StatusNotFound)
	case errors.Is(err, ErrInvalidMenu):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.Errorf("failed to %s menu %s: %s", op, id, err)
		http.Error(w, "error, failed to "+op+" menu", http.StatusInternalServerError)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return false
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(v); err != nil {
		log.Tracef("menus, unmarshal request body: %s", err)
		http.Error(w, "error, invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, v any, status int) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Errorf("menus, marshal response: %s", err)
		http.Error(w, "error, internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, b, status)
}
