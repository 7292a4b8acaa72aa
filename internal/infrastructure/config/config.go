package config

import (
	"fmt"
	"time"

	// Loads a .env file from the working directory before envconfig runs.
	_ "github.com/joho/godotenv/autoload"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	Store     StoreConfig
	Content   ContentConfig
	GitHub    GitHubConfig
	Desktop   DesktopConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
	// AllowOrigins lists CORS origins. "*" allows any.
	AllowOrigins    []string      `envconfig:"CORS_ORIGINS" default:"*"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// StoreConfig selects and tunes the persisted desktop layout backend.
type StoreConfig struct {
	Driver            string        `envconfig:"STORE_DRIVER" default:"sqlite"`
	Path              string        `envconfig:"STORE_PATH" default:"data/chaseos.db"`
	Debounce          time.Duration `envconfig:"STORE_DEBOUNCE" default:"500ms"`
	CompressThreshold int           `envconfig:"STORE_COMPRESS_THRESHOLD" default:"4096"`
}

// ContentConfig points at the blog, company and media sources.
type ContentConfig struct {
	PostsDir      string `envconfig:"CONTENT_POSTS_DIR" default:"content/posts"`
	PostsGlob     string `envconfig:"CONTENT_POSTS_GLOB" default:"**/*.{md,mdx}"`
	CompaniesFile string `envconfig:"CONTENT_COMPANIES_FILE" default:"content/companies.toml"`
	MediaDir      string `envconfig:"CONTENT_MEDIA_DIR" default:"content/media"`
}

// GitHubConfig holds the repositories data source settings.
type GitHubConfig struct {
	Username  string        `envconfig:"GITHUB_USERNAME" default:"chungquantin"`
	BaseURL   string        `envconfig:"GITHUB_API_URL" default:"https://api.github.com"`
	Token     string        `envconfig:"GITHUB_TOKEN"`
	Timeout   time.Duration `envconfig:"GITHUB_TIMEOUT" default:"10s"`
	CacheTTL  time.Duration `envconfig:"GITHUB_CACHE_TTL" default:"5m"`
	RateLimit float64       `envconfig:"GITHUB_RPS" default:"2"`
}

// DesktopConfig holds per-client desktop session settings.
type DesktopConfig struct {
	ViewportWidth  int           `envconfig:"DESKTOP_VIEWPORT_WIDTH" default:"1440"`
	ViewportHeight int           `envconfig:"DESKTOP_VIEWPORT_HEIGHT" default:"900"`
	IdleTTL        time.Duration `envconfig:"DESKTOP_IDLE_TTL" default:"30m"`
	SweepInterval  time.Duration `envconfig:"DESKTOP_SWEEP_INTERVAL" default:"1m"`
	SecureCookie   bool          `envconfig:"DESKTOP_SECURE_COOKIE" default:"false"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8000",
			Host:            "0.0.0.0",
			AllowOrigins:    []string{"*"},
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Store: StoreConfig{
			Driver:            "sqlite",
			Path:              "data/chaseos.db",
			Debounce:          500 * time.Millisecond,
			CompressThreshold: 4096,
		},
		Content: ContentConfig{
			PostsDir:      "content/posts",
			PostsGlob:     "**/*.{md,mdx}",
			CompaniesFile: "content/companies.toml",
			MediaDir:      "content/media",
		},
		GitHub: GitHubConfig{
			Username:  "chungquantin",
			BaseURL:   "https://api.github.com",
			Timeout:   10 * time.Second,
			CacheTTL:  5 * time.Minute,
			RateLimit: 2,
		},
		Desktop: DesktopConfig{
			ViewportWidth:  1440,
			ViewportHeight: 900,
			IdleTTL:        30 * time.Minute,
			SweepInterval:  time.Minute,
		},
	}
}
