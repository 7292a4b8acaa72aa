// Package main is the entry point for the ChaseOS desktop server.
//
// The server keeps one window manager per browser, bound by a cookie, and
// persists each desktop's layout so a reload restores it. It also serves
// the blog posts and GitHub repositories the desktop windows display.
//
// Configuration:
//   - Environment variables, optionally from a .env file
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	# Production mode
//	./server -port 8000 -root /srv/chaseos
//
//	# Development mode (colored logs, debug level, in-memory store)
//	./server -dev -store memory
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown, flushing pending layout writes
package main
