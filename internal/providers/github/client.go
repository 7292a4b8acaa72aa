package github

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/chungquantin/chaseOS/internal/infrastructure/monitoring"
	"github.com/chungquantin/chaseOS/internal/infrastructure/resilience"
	"github.com/chungquantin/chaseOS/internal/infrastructure/tracing"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrUpstream wraps every failure talking to the GitHub API.
var ErrUpstream = errors.New("github upstream error")

const (
	sourceOwned  = "owned"
	sourceEvents = "events"

	pageSize  = "100"
	userAgent = "ChaseOS-Portfolio"
)

// Config configures the client.
type Config struct {
	Username string
	BaseURL  string
	Token    string
	Timeout  time.Duration
	CacheTTL time.Duration
	// RateLimit is the number of upstream requests per second. Zero
	// disables limiting.
	RateLimit  float64
	MaxRetries int
	RetryWait  time.Duration
}

// Client fetches and merges repositories for one user.
type Client struct {
	cfg     Config
	resty   *resty.Client
	limiter *rate.Limiter
	breaker *resilience.Breaker
	logger  *zap.Logger
	metrics *monitoring.Metrics
	tracer  *tracing.Tracer
	now     func() time.Time

	mu      sync.Mutex
	cached  []Repository // Protected by mu
	expires time.Time    // Protected by mu
}

// NewClient creates a client. Retries happen in the transport; the breaker
// sees one outcome per logical request.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RetryWait <= 0 {
		cfg.RetryWait = 500 * time.Millisecond
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.MaxRetries
	retryClient.RetryWaitMin = cfg.RetryWait
	retryClient.RetryWaitMax = 8 * cfg.RetryWait
	retryClient.Logger = nil

	restyClient := resty.NewWithClient(retryClient.StandardClient()).
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/vnd.github.v3+json").
		SetHeader("User-Agent", userAgent).
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal)
	if cfg.Token != "" {
		restyClient.SetAuthToken(cfg.Token)
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	breaker := resilience.New("github", resilience.Settings{
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Client{
		cfg:     cfg,
		resty:   restyClient,
		limiter: rate.NewLimiter(limit, 1),
		breaker: breaker,
		logger:  logger,
		now:     time.Now,
	}
}

// WithMetrics adds metrics tracking to the client
func (c *Client) WithMetrics(metrics *monitoring.Metrics) *Client {
	c.metrics = metrics
	return c
}

// WithTracer records a span per fetch.
func (c *Client) WithTracer(tracer *tracing.Tracer) *Client {
	c.tracer = tracer
	return c
}

// WithClock overrides the clock used for cache expiry.
func (c *Client) WithClock(now func() time.Time) *Client {
	c.now = now
	return c
}

// Breaker exposes the circuit breaker for health reporting.
func (c *Client) Breaker() *resilience.Breaker {
	return c.breaker
}

// Repositories returns owned and contributed repositories, newest first.
// A failure to list owned repositories is an error; a failure to read push
// events only drops the contributed ones.
func (c *Client) Repositories(ctx context.Context) ([]Repository, error) {
	c.mu.Lock()
	if c.cached != nil && c.now().Before(c.expires) {
		out := slices.Clone(c.cached)
		c.mu.Unlock()
		return out, nil
	}
	c.mu.Unlock()

	var span *tracing.Span
	if c.tracer != nil {
		span, ctx = c.tracer.StartSpan(ctx, "github.repositories")
		span.SetTag("user", c.cfg.Username)
		defer c.tracer.Submit(span)
	}

	eventsCh := make(chan []apiEvent, 1)
	go func() {
		var events []apiEvent
		if err := c.get(ctx, sourceEvents, "/users/{user}/events/public", map[string]string{
			"per_page": pageSize,
		}, &events); err != nil {
			c.logger.Warn("failed to fetch push events, listing owned repositories only", zap.Error(err))
			events = nil
		}
		eventsCh <- events
	}()

	var owned []apiRepo
	err := c.get(ctx, sourceOwned, "/users/{user}/repos", map[string]string{
		"sort":     "updated",
		"per_page": pageSize,
	}, &owned)
	events := <-eventsCh
	if err != nil {
		if span != nil {
			span.SetError(err)
		}
		return nil, err
	}

	repos := merge(owned, events)
	if span != nil {
		span.SetTag("repositories", strconv.Itoa(len(repos)))
	}

	if c.cfg.CacheTTL > 0 {
		c.mu.Lock()
		c.cached = repos
		c.expires = c.now().Add(c.cfg.CacheTTL)
		c.mu.Unlock()
	}
	return slices.Clone(repos), nil
}

// Invalidate drops the cached result.
func (c *Client) Invalidate() {
	c.mu.Lock()
	c.cached = nil
	c.mu.Unlock()
}

func (c *Client) get(ctx context.Context, source, path string, params map[string]string, result any) error {
	timer := monitoring.NewTimer()
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		resp, err := c.resty.R().
			SetContext(ctx).
			SetPathParam("user", c.cfg.Username).
			SetQueryParams(params).
			SetResult(result).
			Get(path)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrUpstream, source, err)
		}
		if resp.IsError() {
			return fmt.Errorf("%w: %s returned %d", ErrUpstream, source, resp.StatusCode())
		}
		return nil
	})
	c.metrics.RecordGitHubFetch(source, err, timer.Elapsed())
	return err
}

// merge combines owned repositories with repositories reconstructed from
// push events. Owned entries win on full name; the first push event seen
// for a repository wins among contributions.
func merge(owned []apiRepo, events []apiEvent) []Repository {
	byName := make(map[string]int, len(owned)+len(events))
	out := make([]Repository, 0, len(owned)+len(events))

	for _, r := range owned {
		repo := r.repository()
		if i, ok := byName[repo.FullName]; ok {
			out[i] = repo
			continue
		}
		byName[repo.FullName] = len(out)
		out = append(out, repo)
	}

	for _, ev := range events {
		if ev.Type != "PushEvent" || ev.Repo == nil || ev.Repo.Name == "" {
			continue
		}
		if _, ok := byName[ev.Repo.Name]; ok {
			continue
		}
		name := ev.Repo.Name
		if _, short, ok := strings.Cut(name, "/"); ok {
			name = short
		}
		byName[ev.Repo.Name] = len(out)
		out = append(out, Repository{
			ID:            ev.Repo.ID,
			Name:          name,
			FullName:      ev.Repo.Name,
			UpdatedAt:     ev.CreatedAt,
			URL:           "https://github.com/" + ev.Repo.Name,
			IsContributed: true,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out
}
