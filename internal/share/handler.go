package share

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/ponta-ta-taro/tralog4/internal/auth"
	"github.com/ponta-ta-taro/tralog4/internal/telemetry/metrics"
	"github.com/ponta-ta-taro/tralog4/internal/telemetry/tracing"
	"github.com/ponta-ta-taro/tralog4/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=share_test

const DefaultAccessPerMin = 10

type shareService interface {
	Create(ctx context.Context, userID string, req CreateRequest) (*Link, error)
	List(ctx context.Context, userID string) ([]Link, error)
	Delete(ctx context.Context, userID, token string) error
	Access(ctx context.Context, token, password string) (*ViewerAccess, error)
	Viewer(ctx context.Context, shareToken, viewerToken string) (string, error)
}

type rateLimiter interface {
	Allow(ctx context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error)
}

type Handler struct {
	service        shareService
	limiter        rateLimiter
	accessPerMin   int
	metricsManager *metrics.Manager
}

func NewHandler(
	service shareService,
	limiter rateLimiter,
	accessPerMin int,
	metricsManager *metrics.Manager,
) *Handler {
	if accessPerMin <= 0 {
		accessPerMin = DefaultAccessPerMin
	}
	return &Handler{
		service:        service,
		limiter:        limiter,
		accessPerMin:   accessPerMin,
		metricsManager: metricsManager,
	}
}

func (handler *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.share.create")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	var req CreateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		http.Error(w, "error, invalid request body", http.StatusBadRequest)
		return
	}

	link, err := handler.service.Create(ctx, userID, req)
	if err != nil {
		if errors.Is(err, ErrInvalidRequest) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Errorf("failed to create share link for user %s: %s", userID, err)
		http.Error(w, "error, failed to create share link", http.StatusInternalServerError)
		return
	}

	writeJSON(w, link, http.StatusCreated)
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.share.list")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	links, err := handler.service.List(ctx, userID)
	if err != nil {
		log.Errorf("failed to list share links of user %s: %s", userID, err)
		http.Error(w, "error, failed to list share links", http.StatusInternalServerError)
		return
	}
	if links == nil {
		links = []Link{}
	}

	writeJSON(w, links, http.StatusOK)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.share.delete")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	token := mux.Vars(r)["token"]
	if token == "" {
		http.Error(w, "error, token empty", http.StatusBadRequest)
		return
	}

	if err := handler.service.Delete(ctx, userID, token); err != nil {
		if errors.Is(err, ErrLinkNotFound) {
			http.Error(w, "error, share link not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to delete share link of user %s: %s", userID, err)
		http.Error(w, "error, failed to delete share link", http.StatusInternalServerError)
		return
	}

	pkg.WriteTextResponseOK(w, "deleted")
}

// HandleAccess exchanges the link password for a viewer token.
func (handler *Handler) HandleAccess(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.share.access")
	defer span.End()

	token := mux.Vars(r)["token"]
	if token == "" {
		http.Error(w, "error, token empty", http.StatusBadRequest)
		return
	}

	if handler.limiter != nil {
		res, err := handler.limiter.Allow(ctx, "share-access::"+token, redis_rate.PerMinute(handler.accessPerMin))
		if err != nil {
			log.Errorf("share access rate limit: %s", err)
			http.Error(w, "rate limit internal error", http.StatusInternalServerError)
			return
		}
		if res.Allowed == 0 {
			handler.count("rate_limited")
			http.Error(w, fmt.Sprintf("retry after %f seconds", res.RetryAfter.Seconds()), http.StatusTooManyRequests)
			return
		}
	}

	password, ok := readPassword(w, r)
	if !ok {
		return
	}

	access, err := handler.service.Access(ctx, token, password)
	if err != nil {
		switch {
		case errors.Is(err, ErrLinkNotFound):
			handler.count("not_found")
			http.Error(w, "error, share link not found", http.StatusNotFound)
		case errors.Is(err, ErrLinkExpired):
			handler.count("expired")
			http.Error(w, "error, share link expired", http.StatusGone)
		case errors.Is(err, ErrWrongPassword):
			handler.count("denied")
			http.Error(w, "error, wrong password", http.StatusUnauthorized)
		default:
			log.Errorf("share link access failed: %s", err)
			http.Error(w, "error, share link access failed", http.StatusInternalServerError)
		}
		return
	}

	handler.count("granted")
	writeJSON(w, access, http.StatusOK)
}

// ViewerAuth lets a request through only with a valid viewer token for the
// link in the path. The link owner becomes the user of the request, so the
// regular read handlers can serve it.
func (handler *Handler) ViewerAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracing.GlobalTracer.Start(r.Context(), "middleware.share.viewer")
		defer span.End()

		if r.Method != http.MethodGet {
			http.Error(w, "read only", http.StatusMethodNotAllowed)
			return
		}

		shareToken := mux.Vars(r)["token"]
		viewerToken := auth.BearerToken(r)
		if shareToken == "" || viewerToken == "" {
			http.Error(w, "no can do", http.StatusUnauthorized)
			return
		}

		ownerID, err := handler.service.Viewer(ctx, shareToken, viewerToken)
		if err != nil {
			switch {
			case errors.Is(err, ErrLinkExpired):
				handler.count("expired")
				http.Error(w, "error, share link expired", http.StatusGone)
			case errors.Is(err, ErrLinkNotFound), errors.Is(err, ErrInvalidViewer):
				log.Tracef("share viewer rejected: %s", err)
				handler.count("invalid_viewer")
				http.Error(w, "no can do", http.StatusUnauthorized)
			default:
				log.Errorf("share viewer check failed: %s", err)
				http.Error(w, "error, share link check failed", http.StatusInternalServerError)
			}
			return
		}

		handler.count("viewed")
		next.ServeHTTP(w, r.WithContext(auth.ContextWithUserID(ctx, ownerID)))
	})
}

func (handler *Handler) count(result string) {
	if handler.metricsManager != nil {
		handler.metricsManager.CounterShareAccess.WithLabelValues(result).Inc()
	}
}

func readPassword(w http.ResponseWriter, r *http.Request) (string, bool) {
	var password string
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body struct {
			Password string `json:"password"`
		}
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<12)).Decode(&body); err != nil {
			http.Error(w, "error, invalid request body", http.StatusBadRequest)
			return "", false
		}
		password = body.Password
	} else {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "parse form error", http.StatusBadRequest)
			return "", false
		}
		password = r.Form.Get("password")
	}

	if password == "" {
		http.Error(w, "error, password empty", http.StatusBadRequest)
		return "", false
	}
	return password, true
}

func writeJSON(w http.ResponseWriter, v any, status int) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Errorf("share, marshal response: %s", err)
		http.Error(w, "error, internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, b, status)
}
