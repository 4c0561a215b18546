package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/perchdesk/perch/internal/config"
	"github.com/perchdesk/perch/internal/domain"
	"github.com/perchdesk/perch/internal/httpserver"
	"github.com/perchdesk/perch/internal/httpserver/deps"
	"github.com/perchdesk/perch/internal/logger"
	"github.com/perchdesk/perch/internal/scheduler"
	"github.com/perchdesk/perch/internal/settings"
	"github.com/perchdesk/perch/internal/sources/provision"
	"github.com/perchdesk/perch/internal/store/file"
	"github.com/perchdesk/perch/internal/version"
)

type App struct {
	cfg      *config.Config
	logger   logger.Logger
	server   *httpserver.Server
	settings *settings.Service
	reloader *scheduler.ConfigReloader
	janitor  *scheduler.Janitor
}

// New wires the daemon together. args is the validated launch-argument
// record from the shell; a nil record means no recognized arguments.
func New(args map[string]any) *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// A dataDir launch argument overrides the configured directory, so a
	// portable install can keep its records next to the binary.
	if dir, ok := args["dataDir"].(string); ok && dir != "" {
		cfg.DataDir = dir
	}
	if hidden, ok := args["hidden"].(bool); ok && hidden {
		loggerClient.Info("shell starts hidden, window restore is up to the tray")
	}
	if disabled, ok := args["disableDevMode"].(bool); ok && disabled {
		loggerClient.Info("developer mode disabled by launch argument")
	}

	validator := domain.NewValidator(loggerClient)
	store := file.NewStore(cfg.DataDir, validator, loggerClient)

	// Load every record kind up front. Broken or missing files degrade to
	// defaults here, so the daemon always starts with a usable state.
	settingsSvc := settings.NewService(store, validator, loggerClient)
	settingsSvc.Load()
	loggerClient.Info("records loaded",
		logger.String("data_dir", cfg.DataDir))

	if cfg.ProvisionFile != "" {
		seedProvisionedServers(cfg.ProvisionFile, settingsSvc, loggerClient)
	}

	// Create manual reload trigger channel
	reloadTrigger := make(chan struct{}, 1)

	// Initialize config reloader
	reloader := scheduler.NewConfigReloader(
		store,
		settingsSvc,
		loggerClient,
		cfg.ReloadInterval,
		reloadTrigger,
	)

	// Initialize temp file janitor
	janitor := scheduler.NewJanitor(
		store,
		loggerClient,
		scheduler.DefaultSweepInterval,
		scheduler.DefaultSweepThreshold,
	)

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:          loggerClient,
		StartTime:       time.Now(),
		Version:         version.Version,
		Commit:          version.Commit,
		BuildDate:       version.BuildDate,
		GoVersion:       version.GoVersion,
		AllowedHosts:    cfg.AllowedHosts,
		EnforceLoopback: cfg.EnforceLoopback,
		Settings:        settingsSvc,
		Store:           store,
		ReloadTrigger:   reloadTrigger,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:      cfg,
		logger:   loggerClient,
		server:   server,
		settings: settingsSvc,
		reloader: reloader,
		janitor:  janitor,
	}
}

// seedProvisionedServers folds admin-provisioned servers into the config.
// Provisioning is best effort: a broken file or a rejected merge is the
// admin's problem to fix, the user's own servers keep working either way.
func seedProvisionedServers(path string, svc *settings.Service, log logger.Logger) {
	f, err := provision.NewLoader(path).Load()
	if err != nil {
		log.Warn("failed to load provision file",
			logger.String("file", path),
			logger.Error(err))
		return
	}

	teams, err := provision.NewMapper().MapTeams(f)
	if err != nil {
		log.Warn("provision file has no usable servers",
			logger.String("file", path),
			logger.Error(err))
		return
	}

	added, err := svc.SeedProvisionedTeams(teams)
	if err != nil {
		log.Warn("provisioned servers rejected",
			logger.String("file", path),
			logger.Error(err))
		return
	}
	if added > 0 {
		log.Info("provisioned servers added",
			logger.Int("count", added),
			logger.String("file", path))
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting perchd v%s on %s", version.Version, a.cfg.ListenAddr)
	a.logger.Info(version.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start config reloader (initial read plus periodic refresh)
	if err := a.reloader.Start(ctx); err != nil {
		return fmt.Errorf("failed to start config reloader: %w", err)
	}
	a.logger.Info("config reloader started",
		logger.Duration("interval", a.cfg.ReloadInterval))

	// Start temp file janitor
	if err := a.janitor.Start(ctx); err != nil {
		return fmt.Errorf("failed to start janitor: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	// Stop background schedulers
	a.reloader.Stop()
	a.janitor.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	a.logger.Info("✅ perchd stopped cleanly")
	return nil
}
