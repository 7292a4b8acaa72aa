package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
	"go.uber.org/zap"

	handlers "github.com/chungquantin/chaseOS/internal/api/http"
	"github.com/chungquantin/chaseOS/internal/api/middleware"
	"github.com/chungquantin/chaseOS/internal/api/ws"
	"github.com/chungquantin/chaseOS/internal/domain/content"
	"github.com/chungquantin/chaseOS/internal/domain/desktop"
	"github.com/chungquantin/chaseOS/internal/infrastructure/config"
	"github.com/chungquantin/chaseOS/internal/infrastructure/logging"
	"github.com/chungquantin/chaseOS/internal/infrastructure/monitoring"
	"github.com/chungquantin/chaseOS/internal/infrastructure/tracing"
	"github.com/chungquantin/chaseOS/internal/providers/github"
	"github.com/chungquantin/chaseOS/internal/shared/paths"
	"github.com/chungquantin/chaseOS/internal/shared/types"
	"github.com/chungquantin/chaseOS/internal/shared/utils"
	"github.com/chungquantin/chaseOS/internal/storage/kv"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	router   *gin.Engine
	http     *http.Server
	store    *kv.Store
	desktops *desktop.Registry
	github   *github.Client
	tracer   *tracing.Tracer
	logger   *logging.Logger
	config   *config.Config
	metrics  *monitoring.Metrics

	stopSweep context.CancelFunc
}

// NewServer creates a new server instance. Relative content and store
// paths in cfg resolve against layout.
func NewServer(cfg *config.Config, layout paths.Layout) (*Server, error) {
	var logger *logging.Logger
	if cfg.Logging.Development {
		logger = logging.NewDevelopment()
	} else {
		l, err := logging.New(logging.Config{Level: cfg.Logging.Level})
		if err != nil {
			return nil, fmt.Errorf("create logger: %w", err)
		}
		logger = l
	}

	logger.Info("Initializing ChaseOS server",
		zap.String("port", cfg.Server.Port),
		zap.String("root", layout.Root),
		zap.String("store_driver", cfg.Store.Driver),
	)

	metrics := monitoring.NewMetrics()
	tracer := tracing.New("chaseos", logger.Logger)

	store, err := openStore(cfg.Store, layout, logger, metrics)
	if err != nil {
		metrics.Close()
		tracer.Close()
		return nil, err
	}

	library, err := openLibrary(cfg.Content, layout, logger)
	if err != nil {
		store.Close()
		metrics.Close()
		tracer.Close()
		return nil, err
	}

	gh := github.NewClient(github.Config{
		Username:   cfg.GitHub.Username,
		BaseURL:    cfg.GitHub.BaseURL,
		Token:      cfg.GitHub.Token,
		Timeout:    cfg.GitHub.Timeout,
		CacheTTL:   cfg.GitHub.CacheTTL,
		RateLimit:  cfg.GitHub.RateLimit,
		MaxRetries: 2,
	}, logger.Component("github").Logger).
		WithMetrics(metrics).
		WithTracer(tracer)

	desktops := desktop.NewRegistry(store, library, desktop.Options{
		Viewport: types.Viewport{Width: cfg.Desktop.ViewportWidth, Height: cfg.Desktop.ViewportHeight},
		Debounce: cfg.Store.Debounce,
		Logger:   logger.Component("desktop").Logger,
		Metrics:  metrics,
	}, cfg.Desktop.IdleTTL)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))

	cors := middleware.DefaultCORSConfig()
	if len(cfg.Server.AllowOrigins) > 0 {
		cors.AllowOrigins = cfg.Server.AllowOrigins
	}
	router.Use(middleware.CORS(cors))
	router.Use(middleware.JSONBody(utils.DefaultJSONValidator()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	h := handlers.NewHandlers(desktops, library, gh, handlers.Options{
		MediaDir: layout.Resolve(cfg.Content.MediaDir),
		Logger:   logger.Component("http").Logger,
		Metrics:  metrics,
	})
	wsHandler := ws.NewHandler(desktops, originChecker(cors.AllowOrigins), logger.Component("ws").Logger).
		WithMetrics(metrics)

	desktopCfg := middleware.DefaultDesktopConfig()
	desktopCfg.Secure = cfg.Desktop.SecureCookie
	h.Register(router, middleware.Desktop(desktopCfg))
	router.GET("/api/desktop/stream", middleware.Desktop(desktopCfg), wsHandler.HandleConnection)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	logger.Info("Server initialized successfully")

	return &Server{
		router:   router,
		store:    store,
		desktops: desktops,
		github:   gh,
		tracer:   tracer,
		logger:   logger,
		config:   cfg,
		metrics:  metrics,
	}, nil
}

func openStore(cfg config.StoreConfig, layout paths.Layout, logger *logging.Logger, metrics *monitoring.Metrics) (*kv.Store, error) {
	path := cfg.Path
	if cfg.Driver != "memory" {
		path = layout.Resolve(path)
	}
	backend, err := kv.Open(cfg.Driver, path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	codec, err := kv.NewCodec(cfg.CompressThreshold)
	if err != nil {
		backend.Close()
		return nil, fmt.Errorf("create store codec: %w", err)
	}
	logger.Info("Desktop store opened", zap.String("driver", cfg.Driver), zap.String("path", path))
	return kv.New(backend, codec, logger.Component("store").Logger).WithMetrics(metrics), nil
}

func openLibrary(cfg config.ContentConfig, layout paths.Layout, logger *logging.Logger) (*content.Library, error) {
	contentLogger := logger.Component("content").Logger

	posts, err := content.NewPosts(layout.Resolve(cfg.PostsDir), cfg.PostsGlob, contentLogger)
	if err != nil {
		return nil, fmt.Errorf("open posts: %w", err)
	}
	catalog, err := content.LoadCatalog(layout.Resolve(cfg.CompaniesFile))
	if err != nil {
		return nil, err
	}
	return content.NewLibrary(posts, catalog, layout.Resolve(cfg.MediaDir), contentLogger), nil
}

// originChecker mirrors the CORS origins for WebSocket upgrades.
func originChecker(origins []string) func(*http.Request) bool {
	for _, o := range origins {
		if o == "*" {
			return nil
		}
	}
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := allowed[origin]
		return ok
	}
}

// Handler returns the root handler with response compression.
func (s *Server) Handler() http.Handler {
	return gzhttp.GzipHandler(s.router)
}

// Run starts the HTTP server and the idle desktop sweeper. It blocks until
// the server stops.
func (s *Server) Run() error {
	addr := s.config.Server.Host + ":" + s.config.Server.Port

	ctx, cancel := context.WithCancel(context.Background())
	s.stopSweep = cancel
	go s.desktops.Run(ctx, s.config.Desktop.SweepInterval)

	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting HTTP server", zap.String("addr", addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close gracefully shuts down the server. Pending desktop writes are
// flushed before the store closes.
func (s *Server) Close(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	var errs []error
	if s.http != nil {
		if err := s.http.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown http: %w", err))
		}
	}
	if s.stopSweep != nil {
		s.stopSweep()
	}

	s.desktops.Close()
	if err := s.store.Close(); err != nil {
		s.logger.Error("Failed to close store", zap.Error(err))
		errs = append(errs, fmt.Errorf("close store: %w", err))
	}
	s.tracer.Close()
	s.metrics.Close()

	s.logger.Sync()
	return errors.Join(errs...)
}
