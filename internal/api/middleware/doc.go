// Package middleware provides the HTTP middleware of the desktop API.
//
//   - CORS: cross-origin access for the renderer, with credentials so the
//     desktop cookie travels
//   - RateLimit: per-IP token buckets; idle buckets are dropped
//   - Desktop: binds each browser to a desktop id through the
//     chaseos_desktop cookie
//   - JSONBody: rejects oversized or malformed JSON bodies
//
// Example Usage:
//
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
//	api.Use(middleware.Desktop(middleware.DefaultDesktopConfig()))
package middleware
