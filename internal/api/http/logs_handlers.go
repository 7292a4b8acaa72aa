package http

import (
	"fmt"
	"net/http"

	"github.com/chungquantin/chaseOS/internal/api/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxLogEntries caps one batch from the renderer.
const maxLogEntries = 100

// ClientLogEntry is one log line from the desktop renderer.
type ClientLogEntry struct {
	Level     string         `json:"level"`
	Message   string         `json:"message" binding:"required"`
	Context   map[string]any `json:"context"`
	Timestamp string         `json:"timestamp"`
}

// ClientLogRequest is a batch of renderer logs.
type ClientLogRequest struct {
	Entries []ClientLogEntry `json:"entries" binding:"required"`
}

// IngestLogs writes renderer log lines into the server log, tagged with the
// desktop they came from.
func (h *Handlers) IngestLogs(c *gin.Context) {
	var req ClientLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, fmt.Errorf("invalid log request: %w", err))
		return
	}
	if len(req.Entries) == 0 {
		badRequest(c, fmt.Errorf("no log entries provided"))
		return
	}
	if len(req.Entries) > maxLogEntries {
		badRequest(c, fmt.Errorf("at most %d log entries per request", maxLogEntries))
		return
	}

	logger := h.logger.With(
		zap.String("source", "client"),
		zap.String("desktop_id", middleware.DesktopID(c)),
	)
	for _, entry := range req.Entries {
		logClientEntry(logger, entry)
	}

	c.JSON(http.StatusOK, gin.H{"received": len(req.Entries)})
}

func logClientEntry(logger *zap.Logger, entry ClientLogEntry) {
	fields := make([]zap.Field, 0, len(entry.Context)+1)
	if entry.Timestamp != "" {
		fields = append(fields, zap.String("client_timestamp", entry.Timestamp))
	}
	for key, value := range entry.Context {
		switch v := value.(type) {
		case string:
			fields = append(fields, zap.String(key, v))
		case float64:
			fields = append(fields, zap.Float64(key, v))
		case bool:
			fields = append(fields, zap.Bool(key, v))
		default:
			fields = append(fields, zap.Any(key, v))
		}
	}

	switch entry.Level {
	case "error":
		logger.Error(entry.Message, fields...)
	case "warn":
		logger.Warn(entry.Message, fields...)
	case "debug", "verbose":
		logger.Debug(entry.Message, fields...)
	default:
		logger.Info(entry.Message, fields...)
	}
}
