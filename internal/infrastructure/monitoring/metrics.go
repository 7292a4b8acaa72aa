package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics. All record methods are nil-safe so
// domain packages can run without a collector.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Desktop metrics
	DesktopsActive   prometheus.Gauge
	WindowsOpen      prometheus.Gauge
	WindowOperations *prometheus.CounterVec
	Gestures         *prometheus.CounterVec

	// Store metrics
	StoreWrites    *prometheus.CounterVec
	StoreErrors    *prometheus.CounterVec
	StoreDuration  *prometheus.HistogramVec
	StoreFallbacks *prometheus.CounterVec

	// Upstream metrics
	GitHubFetches  *prometheus.CounterVec
	GitHubDuration *prometheus.HistogramVec

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time

	snapshot Snapshot
	mu       sync.RWMutex
	stop     chan struct{}
	stopOnce sync.Once
}

// Snapshot holds current metric values for the JSON health endpoint.
type Snapshot struct {
	TotalRequests  int64   `json:"total_requests"`
	TotalErrors    int64   `json:"total_errors"`
	WindowsOpen    int64   `json:"windows_open"`
	DesktopsActive int64   `json:"desktops_active"`
	WSConnections  int64   `json:"ws_connections"`
	AvgLatencyMS   float64 `json:"avg_latency_ms"`
	UptimeSeconds  float64 `json:"uptime_seconds"`

	totalDuration float64
}

// NewMetrics creates a new metrics collector on its own registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),
		stop:      make(chan struct{}),

		RequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chaseos_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chaseos_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		ResponseSize: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chaseos_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"method", "path"},
		),

		DesktopsActive: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "chaseos_desktops_active",
				Help: "Number of desktops held in memory",
			},
		),
		WindowsOpen: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "chaseos_windows_open",
				Help: "Number of open windows across all desktops",
			},
		),
		WindowOperations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chaseos_window_operations_total",
				Help: "Window manager operations by kind and outcome",
			},
			[]string{"op", "outcome"},
		),
		Gestures: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chaseos_gestures_total",
				Help: "Completed drag and resize gestures",
			},
			[]string{"kind"},
		),

		StoreWrites: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chaseos_store_writes_total",
				Help: "Persisted key writes",
			},
			[]string{"key"},
		),
		StoreErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chaseos_store_errors_total",
				Help: "Persistence failures swallowed by the store adapter",
			},
			[]string{"key", "op"},
		),
		StoreDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chaseos_store_duration_seconds",
				Help:    "Store operation duration in seconds",
				Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5},
			},
			[]string{"op"},
		),
		StoreFallbacks: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chaseos_store_fallbacks_total",
				Help: "Loads that fell back to the default value",
			},
			[]string{"key", "reason"},
		),

		GitHubFetches: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chaseos_github_fetches_total",
				Help: "GitHub API fetches by source and outcome",
			},
			[]string{"source", "outcome"},
		),
		GitHubDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chaseos_github_fetch_duration_seconds",
				Help:    "GitHub API fetch duration in seconds",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"source"},
		),

		WSConnections: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "chaseos_ws_connections",
				Help: "Number of active WebSocket connections",
			},
		),
		WSMessages: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chaseos_ws_messages_total",
				Help: "Total number of WebSocket messages",
			},
			[]string{"direction", "type"},
		),

		Uptime: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "chaseos_uptime_seconds",
				Help: "Server uptime in seconds",
			},
		),
	}

	go m.updateUptime()

	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Close stops the uptime updater.
func (m *Metrics) Close() {
	if m == nil {
		return
	}
	m.stopOnce.Do(func() { close(m.stop) })
}

func (m *Metrics) updateUptime() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Uptime.Set(time.Since(m.startTime).Seconds())
		case <-m.stop:
			return
		}
	}
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, respSize int64) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.totalDuration += duration.Seconds()
	if status != "" && (status[0] == '4' || status[0] == '5') {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordWindowOp records a window manager operation. Outcome is "applied"
// or "noop" for unknown ids.
func (m *Metrics) RecordWindowOp(op string, applied bool) {
	if m == nil {
		return
	}
	outcome := "applied"
	if !applied {
		outcome = "noop"
	}
	m.WindowOperations.WithLabelValues(op, outcome).Inc()
}

// AddWindowsOpen adjusts the open windows gauge by delta.
func (m *Metrics) AddWindowsOpen(delta int) {
	if m == nil || delta == 0 {
		return
	}
	m.WindowsOpen.Add(float64(delta))
	m.mu.Lock()
	m.snapshot.WindowsOpen += int64(delta)
	m.mu.Unlock()
}

// SetDesktopsActive sets the number of live desktops.
func (m *Metrics) SetDesktopsActive(count int) {
	if m == nil {
		return
	}
	m.DesktopsActive.Set(float64(count))
	m.mu.Lock()
	m.snapshot.DesktopsActive = int64(count)
	m.mu.Unlock()
}

// RecordGesture records a completed drag or resize.
func (m *Metrics) RecordGesture(kind string) {
	if m == nil {
		return
	}
	m.Gestures.WithLabelValues(kind).Inc()
}

// RecordStoreWrite records a persisted key write.
func (m *Metrics) RecordStoreWrite(key string, duration time.Duration) {
	if m == nil {
		return
	}
	m.StoreWrites.WithLabelValues(key).Inc()
	m.StoreDuration.WithLabelValues("save").Observe(duration.Seconds())
}

// RecordStoreRead records a persisted key read.
func (m *Metrics) RecordStoreRead(duration time.Duration) {
	if m == nil {
		return
	}
	m.StoreDuration.WithLabelValues("load").Observe(duration.Seconds())
}

// RecordStoreError records a swallowed persistence failure.
func (m *Metrics) RecordStoreError(key, op string) {
	if m == nil {
		return
	}
	m.StoreErrors.WithLabelValues(key, op).Inc()
}

// RecordStoreFallback records a load that returned the default value.
func (m *Metrics) RecordStoreFallback(key, reason string) {
	if m == nil {
		return
	}
	m.StoreFallbacks.WithLabelValues(key, reason).Inc()
}

// RecordGitHubFetch records an upstream GitHub call.
func (m *Metrics) RecordGitHubFetch(source string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.GitHubFetches.WithLabelValues(source, outcome).Inc()
	m.GitHubDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	if m == nil {
		return
	}
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Inc()
	m.mu.Lock()
	m.snapshot.WSConnections++
	m.mu.Unlock()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Dec()
	m.mu.Lock()
	m.snapshot.WSConnections--
	m.mu.Unlock()
}

// Snapshot returns the current counters for JSON consumers.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := m.snapshot
	if s.TotalRequests > 0 {
		s.AvgLatencyMS = s.totalDuration / float64(s.TotalRequests) * 1000
	}
	s.UptimeSeconds = time.Since(m.startTime).Seconds()
	return s
}
