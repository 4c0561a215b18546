package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ListenAddr      string        // ex: "127.0.0.1:8867"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	DataDir        string        // directory holding the per-kind JSON record files
	ReloadInterval time.Duration // interval to re-read config.json (default: 5m)
	ProvisionFile  string        // optional YAML file of admin-provisioned servers

	AllowedHosts    []string // Host headers accepted by the settings API
	EnforceLoopback bool     // false only for tests that dial from synthetic addresses
}

// Load resolves the daemon options. Later sources win: built-in defaults,
// then the optional YAML options file, then PERCH_* environment variables.
// Every option has a default so a bare `perchd serve` works on first run.
func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenAddr:      "127.0.0.1:8867",
		ShutdownTimeout: 5 * time.Second,

		// Logging
		LogLevel:  "info",
		PrettyLog: true,

		// Record storage
		DataDir:        defaultDataDir(),
		ReloadInterval: 5 * time.Minute,

		// Access restrictions
		AllowedHosts:    []string{"localhost", "127.0.0.1", "::1"},
		EnforceLoopback: true,
	}

	if path := os.Getenv("PERCH_OPTIONS_FILE"); path != "" {
		applyOptionsFile(cfg, path)
	}

	// Environment wins over the options file.
	cfg.ListenAddr = getenv("PERCH_LISTEN_ADDR", cfg.ListenAddr)
	cfg.ShutdownTimeout = mustDuration("PERCH_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	cfg.LogLevel = getenv("PERCH_LOG_LEVEL", cfg.LogLevel)
	cfg.PrettyLog = mustBool("PERCH_PRETTY_LOG", cfg.PrettyLog)
	cfg.DataDir = getenv("PERCH_DATA_DIR", cfg.DataDir)
	cfg.ReloadInterval = mustDuration("PERCH_RELOAD_INTERVAL", cfg.ReloadInterval)
	cfg.ProvisionFile = getenv("PERCH_PROVISION_FILE", cfg.ProvisionFile)
	if v := os.Getenv("PERCH_ALLOWED_HOSTS"); v != "" {
		cfg.AllowedHosts = splitAndTrim(v)
	}
	cfg.EnforceLoopback = mustBool("PERCH_ENFORCE_LOOPBACK", cfg.EnforceLoopback)

	// Log config only in debug mode
	if cfg.LogLevel == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", *cfg)
	}

	return cfg
}

// optionsFile mirrors Config with YAML-friendly types. Pointer booleans
// and empty strings mark fields the file left out.
type optionsFile struct {
	ListenAddr      string   `yaml:"listen_addr"`
	ShutdownTimeout string   `yaml:"shutdown_timeout"`
	LogLevel        string   `yaml:"log_level"`
	PrettyLog       *bool    `yaml:"pretty_log"`
	DataDir         string   `yaml:"data_dir"`
	ReloadInterval  string   `yaml:"reload_interval"`
	ProvisionFile   string   `yaml:"provision_file"`
	AllowedHosts    []string `yaml:"allowed_hosts"`
	EnforceLoopback *bool    `yaml:"enforce_loopback"`
}

// applyOptionsFile overlays one YAML options file onto cfg. Pointing
// PERCH_OPTIONS_FILE at a broken file is an operator error, not something
// to silently skip.
func applyOptionsFile(cfg *Config, path string) {
	raw, err := os.ReadFile(path)
	if err != nil {
		panic(fmt.Sprintf("❌ FATAL: Cannot read options file %s: %v", path, err))
	}

	var opts optionsFile
	if err := yaml.Unmarshal(raw, &opts); err != nil {
		panic(fmt.Sprintf("❌ FATAL: Invalid YAML in options file %s: %v", path, err))
	}

	if opts.ListenAddr != "" {
		cfg.ListenAddr = opts.ListenAddr
	}
	if opts.ShutdownTimeout != "" {
		cfg.ShutdownTimeout = parseFileDuration(path, "shutdown_timeout", opts.ShutdownTimeout)
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}
	if opts.PrettyLog != nil {
		cfg.PrettyLog = *opts.PrettyLog
	}
	if opts.DataDir != "" {
		cfg.DataDir = opts.DataDir
	}
	if opts.ReloadInterval != "" {
		cfg.ReloadInterval = parseFileDuration(path, "reload_interval", opts.ReloadInterval)
	}
	if opts.ProvisionFile != "" {
		cfg.ProvisionFile = opts.ProvisionFile
	}
	if len(opts.AllowedHosts) > 0 {
		cfg.AllowedHosts = opts.AllowedHosts
	}
	if opts.EnforceLoopback != nil {
		cfg.EnforceLoopback = *opts.EnforceLoopback
	}
}

func parseFileDuration(path, field, value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		panic(fmt.Sprintf("❌ FATAL: Invalid duration for %s in options file %s: %s", field, path, value))
	}
	return d
}

// defaultDataDir places the record files under the OS user config
// directory. The relative fallback only triggers when the environment
// has no home at all.
func defaultDataDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return "perch-data"
	}
	return filepath.Join(base, "perch")
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
