package infrastructure

import (
	"log/slog"
)

// WithComponent creates a logger with a component field. A nil logger falls
// back to the global one.
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = GetLogger()
	}
	return logger.With(slog.String("component", component))
}
