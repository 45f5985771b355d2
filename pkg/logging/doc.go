// Package logging configures the structured loggers used across nspass-mockd.
//
// It is a thin layer over log/slog. Components accept a *slog.Logger and
// fall back to Nop() when none is given:
//
//	log := logging.New(logging.Config{Level: logging.LevelDebug, Format: logging.FormatJSON})
//	log.Info("mock server listening", "addr", ":8080")
//
// Request scoped loggers travel in the context. The engine middleware stores
// one tagged with the request id, and handlers retrieve it with FromContext.
package logging
