// Package server assembles the ChaseOS HTTP server: the desktop store,
// content library, GitHub client and desktop registry behind a gin router
// with tracing, metrics, CORS and rate limiting.
package server
