package middleware

import (
	"net/http"
	"time"

	"github.com/chungquantin/chaseOS/internal/shared/id"
	"github.com/gin-gonic/gin"
)

const (
	// DesktopCookie binds a browser to its desktop.
	DesktopCookie = "chaseos_desktop"
	// DesktopHeader echoes the bound desktop id.
	DesktopHeader = "X-Desktop-ID"

	desktopKey = "desktop_id"
)

// DesktopConfig configures the desktop cookie.
type DesktopConfig struct {
	MaxAge time.Duration
	Secure bool
}

// DefaultDesktopConfig keeps the binding for a year.
func DefaultDesktopConfig() DesktopConfig {
	return DesktopConfig{MaxAge: 365 * 24 * time.Hour}
}

// Desktop reads the desktop cookie and issues a fresh id when it is absent
// or malformed. Handlers read the id with DesktopID.
func Desktop(cfg DesktopConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(DesktopCookie)
		desktopID, perr := id.ParseDesktopID(raw)
		if err != nil || perr != nil {
			desktopID = id.NewDesktopID()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(DesktopCookie, desktopID.String(), int(cfg.MaxAge.Seconds()), "/", "", cfg.Secure, true)
		}

		c.Set(desktopKey, desktopID.String())
		c.Header(DesktopHeader, desktopID.String())
		c.Next()
	}
}

// DesktopID returns the desktop bound by the Desktop middleware.
func DesktopID(c *gin.Context) string {
	return c.GetString(desktopKey)
}
