// Package providers contains dependency injection providers for the library
// query server.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/listenup-library/internal/config"
	"github.com/listenupapp/listenup-library/internal/logger"
)

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.LoadConfig()
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Info("Starting ListenUp Library",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"db_path", cfg.Database.Path,
		"ignore_prefix", cfg.Sorting.IgnorePrefix,
	)

	return log, nil
}
