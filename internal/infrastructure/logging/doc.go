// Package logging builds the server's zap loggers.
//
// Production loggers write JSON at the configured level; development
// loggers write colored console output at debug level. Every entry carries
// service=chaseos, and Component names a child logger per subsystem:
//
//	logger := logging.NewDefault()
//	store := logger.Component("store")
//	store.Warn("failed to persist key", zap.String("key", "windows"), zap.Error(err))
package logging
