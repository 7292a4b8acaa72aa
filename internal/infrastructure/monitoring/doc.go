/*
Package monitoring provides Prometheus metrics for the desktop service.

# Overview

Each Metrics value owns its own registry, so several servers (or tests) can
coexist in one process. Every recording method accepts a nil receiver.

# Tracked

- HTTP requests by route template (count, latency, response size)
- Window manager operations, split into applied and no-op
- Drag and resize gestures
- Store writes, swallowed errors and default fallbacks
- GitHub fetches by source (repos, events)
- WebSocket connections and messages

# Usage

	metrics := monitoring.NewMetrics()
	defer metrics.Close()

	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	metrics.RecordWindowOp("focus", true)
*/
package monitoring
