package deps

import (
	"time"

	"github.com/perchdesk/perch/internal/logger"
	"github.com/perchdesk/perch/internal/settings"
	"github.com/perchdesk/perch/internal/store/file"
)

type Deps struct {
	Logger          logger.Logger
	StartTime       time.Time
	Version         string
	Commit          string
	BuildDate       string
	GoVersion       string
	AllowedHosts    []string          // Host headers allowed to reach the settings surface
	EnforceLoopback bool              // Reject peers outside the loopback interface
	Settings        *settings.Service // Live validated record state
	Store           *file.Store       // Record files, probed by diagnostics
	ReloadTrigger   chan struct{}     // Channel to trigger a manual config reload
	// Add more shared deps later (metrics, update checker, etc.)
}
