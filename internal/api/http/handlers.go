package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/chungquantin/chaseOS/internal/api/middleware"
	"github.com/chungquantin/chaseOS/internal/domain/content"
	"github.com/chungquantin/chaseOS/internal/domain/desktop"
	"github.com/chungquantin/chaseOS/internal/infrastructure/monitoring"
	"github.com/chungquantin/chaseOS/internal/infrastructure/resilience"
	"github.com/chungquantin/chaseOS/internal/providers/github"
	"github.com/chungquantin/chaseOS/internal/shared/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RepositorySource lists GitHub repositories.
type RepositorySource interface {
	Repositories(ctx context.Context) ([]github.Repository, error)
}

// Options configures the handlers.
type Options struct {
	MediaDir string
	Now      func() time.Time
	Logger   *zap.Logger
	Metrics  *monitoring.Metrics
}

// Handlers contains all HTTP handlers
type Handlers struct {
	desktops  *desktop.Registry
	library   *content.Library
	repos     RepositorySource
	mediaDir  string
	now       func() time.Time
	logger    *zap.Logger
	metrics   *monitoring.Metrics
	hasher    *utils.Hasher
	startTime time.Time
}

// NewHandlers creates a new handler set
func NewHandlers(desktops *desktop.Registry, library *content.Library, repos RepositorySource, opts Options) *Handlers {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Handlers{
		desktops:  desktops,
		library:   library,
		repos:     repos,
		mediaDir:  opts.MediaDir,
		now:       opts.Now,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
		hasher:    utils.DefaultHasher(),
		startTime: opts.Now(),
	}
}

// Root handles the service banner
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "ChaseOS desktop",
		"version": "1.0.0",
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	body := gin.H{
		"status":   "healthy",
		"uptime":   h.now().Sub(h.startTime).Round(time.Second).String(),
		"desktops": h.desktops.Len(),
		"metrics":  h.metrics.Snapshot(),
	}
	if b, ok := h.repos.(interface{ Breaker() *resilience.Breaker }); ok {
		body["github"] = gin.H{"breaker": b.Breaker().State().String()}
	}
	c.JSON(http.StatusOK, body)
}

// desktop returns the desktop bound to the request's cookie.
func (h *Handlers) desktop(c *gin.Context) *desktop.Desktop {
	return h.desktops.Get(c.Request.Context(), middleware.DesktopID(c))
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, desktop.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, desktop.ErrUnknownContent),
		errors.Is(err, desktop.ErrUnknownPanel),
		errors.Is(err, desktop.ErrUnknownShortcut),
		errors.Is(err, content.ErrPostNotFound),
		errors.Is(err, content.ErrUnknownCompany):
		return http.StatusNotFound
	case errors.Is(err, context.Canceled):
		return 499
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handlers) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.Error(err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// respondCached writes v with a weak ETag, answering 304 when the client
// already holds it.
func (h *Handlers) respondCached(c *gin.Context, v any) {
	etag, err := h.hasher.ETag(v)
	if err != nil {
		c.JSON(http.StatusOK, v)
		return
	}
	c.Header("ETag", etag)
	if c.GetHeader("If-None-Match") == etag {
		c.Status(http.StatusNotModified)
		return
	}
	c.JSON(http.StatusOK, v)
}
