// Package providers contains dependency injection providers for hardcover-sync.
package providers

import (
	"os"

	"github.com/samber/do/v2"

	"github.com/listenupapp/hardcover-sync/internal/config"
	"github.com/listenupapp/hardcover-sync/internal/id"
	"github.com/listenupapp/hardcover-sync/internal/logger"
)

const (
	logMaxSizeMB  = 1
	logMaxBackups = 3
	logMaxAgeDays = 30
)

// ProvideLogger provides the structured logger. Every record carries the
// run id so one invocation can be picked out of the shared log file.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Writer:    os.Stderr,
		Format:    cfg.Logger.Format,
		Level:     logger.ParseLevel(cfg.Logger.Level),
		AddSource: cfg.Logger.Debug,
		File: logger.FileConfig{
			Path:       cfg.Logger.File,
			MaxSizeMB:  logMaxSizeMB,
			MaxBackups: logMaxBackups,
			MaxAgeDays: logMaxAgeDays,
		},
	}).WithField("run_id", id.RunID())

	log.Debug("Starting hardcover-sync",
		"config", cfg.Path,
		"log_level", cfg.Logger.Level,
		"sqlite_path", cfg.Kobo.SQLitePath,
		"sync_bookmarks", cfg.Sync.Bookmarks,
	)

	return log, nil
}
