package scheduler

import (
	"context"
	"time"

	"github.com/perchdesk/perch/internal/logger"
	"github.com/perchdesk/perch/internal/store/file"
)

const (
	// DefaultSweepInterval is how often the janitor scans the data dir
	DefaultSweepInterval = 1 * time.Hour
	// DefaultSweepThreshold is the age at which an orphaned temp file is removed
	DefaultSweepThreshold = 24 * time.Hour
)

// Janitor removes temp files that interrupted record writes left behind
// in the data directory.
type Janitor struct {
	store     *file.Store
	logger    logger.Logger
	interval  time.Duration
	threshold time.Duration
	stopCh    chan struct{}
}

// NewJanitor creates a new janitor
func NewJanitor(
	store *file.Store,
	log logger.Logger,
	interval time.Duration,
	threshold time.Duration,
) *Janitor {
	if interval == 0 {
		interval = DefaultSweepInterval
	}
	if threshold == 0 {
		threshold = DefaultSweepThreshold
	}

	return &Janitor{
		store:     store,
		logger:    log,
		interval:  interval,
		threshold: threshold,
		stopCh:    make(chan struct{}),
	}
}

// Start begins the periodic sweep process
func (j *Janitor) Start(ctx context.Context) error {
	// Run immediately on start
	if err := j.Sweep(); err != nil {
		j.logger.Warn("initial temp file sweep failed",
			logger.Error(err))
	}

	// Start periodic sweeping
	ticker := time.NewTicker(j.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := j.Sweep(); err != nil {
					j.logger.Error("temp file sweep failed",
						logger.Error(err))
				}
			case <-j.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the janitor
func (j *Janitor) Stop() {
	close(j.stopCh)
}

// Sweep removes temp files older than the threshold. Recent temp files
// stay alone, a save may be between write and rename right now.
func (j *Janitor) Sweep() error {
	removed, err := j.store.SweepTempFiles(j.threshold)
	if err != nil {
		return err
	}

	if removed > 0 {
		j.logger.Info("sweep completed",
			logger.Int("temp_files_removed", removed))
	} else {
		j.logger.Debug("no stale temp files to sweep")
	}

	return nil
}
