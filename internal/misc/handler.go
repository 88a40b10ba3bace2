package misc

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ponta-ta-taro/tralog4/internal/auth"
	"github.com/ponta-ta-taro/tralog4/internal/middleware"
	"github.com/ponta-ta-taro/tralog4/internal/telemetry/metrics"
	"github.com/ponta-ta-taro/tralog4/pkg"
)

type Handler struct {
	versionInfo string
	authHandler *auth.Handler
}

func NewHandler(versionInfo string, authHandler *auth.Handler) *Handler {
	return &Handler{
		versionInfo: versionInfo,
		authHandler: authHandler,
	}
}

func (handler *Handler) SetupRoutes(
	mainRouter *mux.Router,
	rateLimiter middleware.RequestRateLimiter,
	metricsManager *metrics.Manager,
	loginAllowedPerMin int,
) {
	mainRouter.HandleFunc("/", handler.handleRoot).Methods("GET", "POST", "OPTIONS").Name("root")
	mainRouter.HandleFunc("/version", handler.handleGetVersionInfo).Methods("GET").Name("version")

	loginSubrouter := mainRouter.PathPrefix("/a").Subrouter()
	loginSubrouter.
		HandleFunc("/signup", handler.authHandler.HandleSignup).
		Methods("POST", "OPTIONS").Name("signup")
	loginSubrouter.
		HandleFunc("/login", handler.authHandler.HandleLogin).
		Methods("POST", "OPTIONS").Name("login")
	loginSubrouter.
		HandleFunc("/logout", handler.authHandler.HandleLogout).
		Methods("GET", "OPTIONS").Name("logout")

	// rate limit the auth endpoints to prevent credential guessing
	loginSubrouter.Use(middleware.RateLimit(rateLimiter, "login", loginAllowedPerMin, metricsManager))
}

func (handler *Handler) handleRoot(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, "I'm OK, thanks ;)")
}

func (handler *Handler) handleGetVersionInfo(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, handler.versionInfo)
}
