package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/perchdesk/perch/internal/logger"
	"github.com/perchdesk/perch/internal/settings"
	"github.com/perchdesk/perch/internal/store/file"
)

// ConfigReloader handles periodic reloading of the config file, so edits
// made outside this process (another instance, a text editor) get picked
// up without a restart.
type ConfigReloader struct {
	store         *file.Store
	settings      *settings.Service
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewConfigReloader creates a new config reloader
func NewConfigReloader(
	store *file.Store,
	svc *settings.Service,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *ConfigReloader {
	return &ConfigReloader{
		store:         store,
		settings:      svc,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start begins the periodic reload process. A broken file at startup is
// not fatal: the settings service already loaded defaults, so the first
// reload just logs and the live state stands.
func (cr *ConfigReloader) Start(ctx context.Context) error {
	if err := cr.Reload(); err != nil {
		cr.logger.Warn("initial config reload failed",
			logger.Error(err))
	}

	ticker := time.NewTicker(cr.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := cr.Reload(); err != nil {
					cr.logger.Error("failed to reload config",
						logger.Error(err))
				}
			case <-cr.manualTrigger:
				cr.logger.Info("manual reload triggered")
				if err := cr.Reload(); err != nil {
					cr.logger.Error("failed to reload config",
						logger.Error(err))
				}
			case <-cr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader
func (cr *ConfigReloader) Stop() {
	close(cr.stopCh)
}

// Reload re-reads the config file and swaps it into the settings service
// when it changed. A rejected or half-written file keeps the live record:
// defaults never replace a running configuration because a disk read went
// bad.
func (cr *ConfigReloader) Reload() error {
	rec, err := cr.store.ReadConfig()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// Nothing on disk yet. First save will create it.
			return nil
		}
		return fmt.Errorf("failed to reload config: %w", err)
	}

	if cr.settings.ReplaceConfig(rec) {
		cr.logger.Info("config reloaded from disk",
			logger.String("file", "config.json"))
	}
	return nil
}
