package observability

import (
	"log/slog"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/disaster-resilience-api/internal/config"
)

// NewLogger builds the service logger from LOG_LEVEL and LOG_FORMAT and makes
// it the slog default, tagged with the service name and version.
func NewLogger(cfg *config.Config) *slog.Logger {
	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat).
		With("service", cfg.ServiceName, "version", cfg.ServiceVersion)
	slog.SetDefault(logger)
	return logger
}
