// Package config provides 12-factor configuration management for the ChaseOS backend.
//
// Configuration is loaded from environment variables with sensible defaults.
// A .env file in the working directory is read first when present.
// CLI flags can override environment variables for development flexibility.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host)
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting configuration
//   - Store: Desktop layout persistence backend and write debounce
//   - Content: Blog posts, company catalog and media locations
//   - GitHub: Repositories data source
//   - Desktop: Default viewport and idle eviction
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Server running on %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//
// Environment Variables:
//   - PORT, HOST
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//   - STORE_DRIVER, STORE_PATH, STORE_DEBOUNCE, STORE_COMPRESS_THRESHOLD
//   - CONTENT_POSTS_DIR, CONTENT_POSTS_GLOB, CONTENT_COMPANIES_FILE, CONTENT_MEDIA_DIR
//   - GITHUB_USERNAME, GITHUB_API_URL, GITHUB_TOKEN, GITHUB_TIMEOUT, GITHUB_CACHE_TTL, GITHUB_RPS
//   - DESKTOP_VIEWPORT_WIDTH, DESKTOP_VIEWPORT_HEIGHT, DESKTOP_IDLE_TTL
package config
