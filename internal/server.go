package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/ponta-ta-taro/tralog4/internal/auth"
	"github.com/ponta-ta-taro/tralog4/internal/config"
	"github.com/ponta-ta-taro/tralog4/internal/db"
	"github.com/ponta-ta-taro/tralog4/internal/docstore"
	"github.com/ponta-ta-taro/tralog4/internal/events"
	"github.com/ponta-ta-taro/tralog4/internal/middleware"
	"github.com/ponta-ta-taro/tralog4/internal/misc"
	"github.com/ponta-ta-taro/tralog4/internal/share"
	"github.com/ponta-ta-taro/tralog4/internal/telemetry/metrics"
	"github.com/ponta-ta-taro/tralog4/internal/telemetry/tracing"
	"github.com/ponta-ta-taro/tralog4/internal/tralog/mcp"
	"github.com/ponta-ta-taro/tralog4/internal/tralog/menus"
	"github.com/ponta-ta-taro/tralog4/internal/tralog/stats"
	"github.com/ponta-ta-taro/tralog4/internal/tralog/workouts"
)

const sessionsCleanupInterval = 8 * time.Hour

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string
	mcpSecret         string // shared with the MCP clients, X-MCP-Secret header

	config      *config.Config
	dbPool      *pgxpool.Pool
	redisClient *redis.Client
	rateLimiter middleware.RequestRateLimiter

	loginChecker auth.Checker
	authService  *auth.Service
	workoutsRepo *workouts.Repo
	menusRepo    *menus.Repo
	statsService *stats.Service
	shareService *share.Service
	publisher    events.Publisher

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	VersionInfo             string
	DBUser                  string
	DBPassword              string
	RedisPassword           string
	ShareJWTSecret          string
	MCPSecret               string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	if params.ShareJWTSecret == "" {
		return nil, errors.New("share jwt secret not set")
	}

	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         params.Config.PostgresHost,
		DBPort:         params.Config.PostgresPort,
		DBName:         params.Config.PostgresDBName,
		DBUser:         params.DBUser,
		DBPassword:     params.DBPassword,
		TracingEnabled: params.HoneycombTracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Warnf("failed to ping db: %s", err)
	} else if err := db.Migrate(ctx, dbPool); err != nil {
		return nil, fmt.Errorf("migrate db: %w", err)
	}

	pgxpoolCollector := pgxpoolprometheus.NewCollector(
		dbPool,
		map[string]string{"db_name": params.Config.PostgresDBName},
	)
	promRegistry := metrics.SetupPrometheus(pgxpoolCollector)
	metricsManager := metrics.NewManager("backend", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0) // set to 1 once the servers are up

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(params.Config.RedisHost, params.Config.RedisPort),
		Password: params.RedisPassword,
		DB:       0, // use default DB
	})

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	sessionTTL := params.Config.SessionTTL.Duration
	authService := auth.NewAuthService(auth.NewUsersRepo(dbPool), sessionTTL, rdb)
	go func() {
		ticker := time.NewTicker(sessionsCleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				authService.ScanAndClean(ctx)
			}
		}
	}()

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "tralog-backend", rdb)
	if err != nil {
		return nil, err
	}

	store := docstore.NewStore(dbPool)
	workoutsRepo := workouts.NewRepo(store)
	statsService := stats.NewService(workoutsRepo, stats.NewServiceParams{
		Calendar:       stats.NewFixedOffsetCalendar(params.Config.TimezoneOffsetHours()),
		Keywords:       statsKeywords(params.Config),
		TrendWeeks:     params.Config.DashboardTrendWeeks,
		MetricsManager: metricsManager,
	})

	return &Server{
		config:      params.Config,
		dbPool:      dbPool,
		versionInfo: params.VersionInfo,
		mcpSecret:   params.MCPSecret,

		redisClient:  rdb,
		rateLimiter:  redis_rate.NewLimiter(rdb),
		authService:  authService,
		loginChecker: auth.NewLoginChecker(sessionTTL, rdb),

		workoutsRepo: workoutsRepo,
		menusRepo:    menus.NewRepo(store),
		statsService: statsService,
		shareService: share.NewService(
			share.NewRepo(dbPool),
			params.ShareJWTSecret,
			params.Config.ShareViewerTokenTTL.Duration,
		),
		publisher: events.NewPublisher(
			params.Config.KafkaBrokers,
			params.Config.KafkaWorkoutsTopic,
			metricsManager,
		),

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

func statsKeywords(cfg *config.Config) stats.Keywords {
	keywords := stats.DefaultKeywords()
	if cfg.WarmupKeyword != "" {
		keywords.Warmup = cfg.WarmupKeyword
	}
	if cfg.CooldownKeyword != "" {
		keywords.Cooldown = cfg.CooldownKeyword
	}
	return keywords
}

func (s *Server) routerSetup() (*mux.Router, error) {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	miscHandler := misc.NewHandler(s.versionInfo, auth.NewHandler(s.authService))
	miscHandler.SetupRoutes(r, s.rateLimiter, s.metricsManager, s.config.LoginRateLimitAllowedPerMin)

	statsHandler := stats.NewHandler(s.statsService, s.statsService.Calendar())
	r.HandleFunc("/stats/weekly", statsHandler.HandleWeekly).Methods("GET", "OPTIONS").Name("stats-weekly")
	r.HandleFunc("/stats/dashboard", statsHandler.HandleDashboard).Methods("GET", "OPTIONS").Name("stats-dashboard")

	workoutsHandler := workouts.NewHandler(s.workoutsRepo, s.publisher, s.metricsManager)
	r.HandleFunc("/workouts", workoutsHandler.HandleList).Methods("GET", "OPTIONS").Name("list-workouts")
	r.HandleFunc("/workouts", workoutsHandler.HandleAdd).Methods("POST", "OPTIONS").Name("new-workout")
	r.HandleFunc("/workouts/import", workoutsHandler.HandleImport).Methods("POST", "OPTIONS").Name("import-workouts")
	r.HandleFunc("/workouts/{id}", workoutsHandler.HandleGet).Methods("GET", "OPTIONS").Name("get-workout")
	r.HandleFunc("/workouts/{id}", workoutsHandler.HandleUpdate).Methods("PUT", "OPTIONS").Name("update-workout")
	r.HandleFunc("/workouts/{id}", workoutsHandler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-workout")

	menusHandler := menus.NewHandler(s.menusRepo)
	r.HandleFunc("/menus", menusHandler.HandleList).Methods("GET", "OPTIONS").Name("list-menus")
	r.HandleFunc("/menus", menusHandler.HandleAdd).Methods("POST", "OPTIONS").Name("new-menu")
	// before /menus/{id}, otherwise "order" is taken for an id
	r.HandleFunc("/menus/order", menusHandler.HandleReorder).Methods("PUT", "OPTIONS").Name("reorder-menus")
	r.HandleFunc("/menus/{id}", menusHandler.HandleUpdate).Methods("PUT", "OPTIONS").Name("update-menu")
	r.HandleFunc("/menus/{id}", menusHandler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-menu")

	shareHandler := share.NewHandler(s.shareService, s.rateLimiter, s.config.ShareAccessRateLimitPerMin, s.metricsManager)
	r.HandleFunc("/share", shareHandler.HandleList).Methods("GET", "OPTIONS").Name("list-share-links")
	r.HandleFunc("/share", shareHandler.HandleCreate).Methods("POST", "OPTIONS").Name("new-share-link")
	r.HandleFunc("/share/{token}", shareHandler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-share-link")
	r.HandleFunc("/s/{token}/access", shareHandler.HandleAccess).Methods("POST", "OPTIONS").Name("share-access")

	// read-only views of the link owner's data
	viewerRouter := r.PathPrefix("/s/{token}").Subrouter()
	viewerRouter.HandleFunc("/stats/weekly", statsHandler.HandleWeekly).Methods("GET", "OPTIONS").Name("shared-stats-weekly")
	viewerRouter.HandleFunc("/stats/dashboard", statsHandler.HandleDashboard).Methods("GET", "OPTIONS").Name("shared-stats-dashboard")
	viewerRouter.HandleFunc("/workouts", workoutsHandler.HandleList).Methods("GET", "OPTIONS").Name("shared-workouts")
	viewerRouter.Use(shareHandler.ViewerAuth)

	mcpServer := mcp.NewServer(s.statsService)
	r.PathPrefix("/mcp").Handler(mcp.NewHTTPHandler(mcpServer, s.mcpSecret)).Name("mcp")

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "DELETE", "OPTIONS").Name("unknown")

	authMiddleware := middleware.NewAuthMiddlewareHandler(s.loginChecker)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.config.AllowedOrigins))
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.DrainAndCloseRequest())

	return r, nil
}

func (s *Server) Serve(host string, port int) {
	router, err := s.routerSetup()
	if err != nil {
		log.Fatalf("failed to setup router: %s", err)
	}

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.InstrumentMetricHandler(
		s.promRegistry,
		promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{}),
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	// stop taking requests first, the handlers still need the stores
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown http server")
		}
		log.Warnln("server shut down")
	}

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			log.Errorf("failed to close workout events publisher: %s", err)
		}
	}

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown metrics http server")
		}
		log.Warnln("metrics server shut down")
	}
}
