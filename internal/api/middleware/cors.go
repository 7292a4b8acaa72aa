package middleware

import (
	"slices"
	"time"

	"github.com/chungquantin/chaseOS/internal/infrastructure/tracing"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSConfig defines CORS configuration options.
type CORSConfig struct {
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	ExposeHeaders    []string
	AllowCredentials bool
	MaxAge           time.Duration
}

// DefaultCORSConfig allows any origin. The desktop cookie needs
// credentials, so production deployments should list their origins.
//
// The renderer sends JSON bodies, revalidates cached lists with
// If-None-Match and may carry a trace id across requests.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type",
			"Accept",
			"If-None-Match",
			tracing.HeaderTraceID,
		},
		ExposeHeaders:    []string{DesktopHeader, tracing.HeaderTraceID, "ETag"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
}

// CORS creates a CORS middleware with the provided configuration. A "*"
// origin echoes the request origin instead, since browsers drop
// credentialed responses that allow every origin.
func CORS(cfg CORSConfig) gin.HandlerFunc {
	conf := cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     cfg.AllowMethods,
		AllowHeaders:     cfg.AllowHeaders,
		ExposeHeaders:    cfg.ExposeHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}
	if slices.Contains(cfg.AllowOrigins, "*") {
		conf.AllowOrigins = nil
		conf.AllowOriginFunc = func(string) bool { return true }
	}
	return cors.New(conf)
}
