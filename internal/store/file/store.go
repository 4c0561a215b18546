package file

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/perchdesk/perch/internal/domain"
	"github.com/perchdesk/perch/internal/logger"
	"github.com/perchdesk/perch/internal/utils"
)

// One JSON resource per record kind.
const (
	configFile           = "config.json"
	boundsFile           = "bounds.json"
	appStateFile         = "app-state.json"
	certificatesFile     = "certificates.json"
	trustedOriginsFile   = "trusted-origins.json"
	allowedProtocolsFile = "allowed-protocols.json"
)

// Store reads and writes the per-kind JSON files under the data directory.
// Nothing the validator rejects is ever persisted. A broken file is left
// on disk for the user to repair; loads degrade to the schema defaults
// instead, so a bad file behaves like a first run.
type Store struct {
	dir       string
	validator *domain.Validator
	logger    logger.Logger
}

func NewStore(dir string, v *domain.Validator, log logger.Logger) *Store {
	return &Store{
		dir:       dir,
		validator: v,
		logger:    log,
	}
}

// Dir returns the data directory the store works in.
func (s *Store) Dir() string {
	return s.dir
}

// Probe checks that the data directory exists and accepts writes, by
// creating and removing a scratch file. Diagnostics use this as the
// store health signal.
func (s *Store) Probe() error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	probe, err := os.CreateTemp(s.dir, "probe-*")
	if err != nil {
		return fmt.Errorf("data dir is not writable: %w", err)
	}
	name := probe.Name()
	utils.Close(probe)
	if err := os.Remove(name); err != nil {
		return fmt.Errorf("failed to remove probe file: %w", err)
	}
	return nil
}

// SweepTempFiles removes temp files that an interrupted write left in the
// data dir longer than olderThan ago. Fresh temp files stay: a save may be
// mid-rename right now.
func (s *Store) SweepTempFiles(olderThan time.Duration) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read data dir: %w", err)
	}

	cutoff := time.Now().Add(-olderThan)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.Contains(entry.Name(), ".tmp-") {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			s.logger.Warn("failed to remove stale temp file",
				logger.String("file", entry.Name()),
				logger.Error(err))
			continue
		}
		removed++
	}
	return removed, nil
}

// ReadConfig reads config.json and migrates older versions to the latest
// schema. Unlike LoadConfig it does not degrade: a missing, unreadable,
// or rejected file is an error, which lets the reload path keep the live
// record instead of swapping defaults over it.
func (s *Store) ReadConfig() (map[string]any, error) {
	raw, err := os.ReadFile(filepath.Join(s.dir, configFile))
	if err != nil {
		return nil, err
	}
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("%s is not valid JSON: %w", configFile, err)
	}
	rec := s.validator.MigrateConfig(data)
	if rec == nil {
		return nil, fmt.Errorf("%s failed validation", configFile)
	}
	return rec, nil
}

// LoadConfig reads config.json and migrates older versions to the latest
// schema. Missing file means first run; unreadable JSON and rejected
// records both fall back to the defaults.
func (s *Store) LoadConfig() map[string]any {
	rec, err := s.ReadConfig()
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("config file rejected, using defaults",
				logger.Error(err))
		}
		return domain.DefaultConfigData()
	}
	return rec
}

// SaveConfig persists a config record after re-validating it at the
// latest version.
func (s *Store) SaveConfig(m map[string]any) error {
	rec := s.validator.ConfigData(domain.LatestConfigVersion, m)
	if rec == nil {
		return fmt.Errorf("refusing to persist invalid config record")
	}
	return s.writeFile(configFile, rec)
}

func (s *Store) LoadBounds() map[string]any {
	return s.loadRecord(boundsFile, s.validator.BoundsInfo, domain.DefaultBoundsInfo)
}

func (s *Store) SaveBounds(m map[string]any) error {
	return s.saveRecord(boundsFile, m, s.validator.BoundsInfo)
}

func (s *Store) LoadAppState() map[string]any {
	return s.loadRecord(appStateFile, s.validator.AppState, domain.DefaultAppState)
}

func (s *Store) SaveAppState(m map[string]any) error {
	return s.saveRecord(appStateFile, m, s.validator.AppState)
}

func (s *Store) LoadCertificates() map[string]any {
	return s.loadRecord(certificatesFile, s.validator.CertificateStore, domain.DefaultCertificateStore)
}

func (s *Store) SaveCertificates(m map[string]any) error {
	return s.saveRecord(certificatesFile, m, s.validator.CertificateStore)
}

func (s *Store) LoadTrustedOrigins() map[string]any {
	return s.loadRecord(trustedOriginsFile, s.validator.TrustedOrigins, domain.DefaultTrustedOrigins)
}

func (s *Store) SaveTrustedOrigins(m map[string]any) error {
	return s.saveRecord(trustedOriginsFile, m, s.validator.TrustedOrigins)
}

func (s *Store) LoadAllowedProtocols() []string {
	data, ok := s.readJSON(allowedProtocolsFile)
	if !ok {
		return domain.DefaultAllowedProtocols()
	}
	list := s.validator.AllowedProtocols(data)
	if list == nil {
		s.logger.Warn("state file rejected, using defaults",
			logger.String("file", allowedProtocolsFile))
		return domain.DefaultAllowedProtocols()
	}
	return list
}

func (s *Store) SaveAllowedProtocols(list []string) error {
	raw := make([]any, len(list))
	for i, p := range list {
		raw[i] = p
	}
	validated := s.validator.AllowedProtocols(raw)
	if validated == nil {
		return fmt.Errorf("refusing to persist invalid %s record", allowedProtocolsFile)
	}
	return s.writeFile(allowedProtocolsFile, validated)
}

// loadRecord is the shared load path for the unversioned object kinds.
func (s *Store) loadRecord(name string, validate func(any) map[string]any, defaults func() map[string]any) map[string]any {
	data, ok := s.readJSON(name)
	if !ok {
		return defaults()
	}
	rec := validate(data)
	if rec == nil {
		s.logger.Warn("state file rejected, using defaults",
			logger.String("file", name))
		return defaults()
	}
	return rec
}

func (s *Store) saveRecord(name string, m map[string]any, validate func(any) map[string]any) error {
	rec := validate(m)
	if rec == nil {
		return fmt.Errorf("refusing to persist invalid %s record", name)
	}
	return s.writeFile(name, rec)
}

// readJSON reads and decodes one state file. False means "use defaults":
// the file is absent, unreadable, or not JSON at all.
func (s *Store) readJSON(name string) (any, bool) {
	raw, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("failed to read state file",
				logger.String("file", name),
				logger.Error(err))
		}
		return nil, false
	}
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		s.logger.Warn("state file is not valid JSON, using defaults",
			logger.String("file", name),
			logger.Error(err))
		return nil, false
	}
	return data, true
}

// writeFile writes through a temp file and rename so a crash cannot leave
// a half-written record behind.
func (s *Store) writeFile(name string, v any) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		utils.Close(tmp)
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to set mode on %s: %w", name, err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}
	return nil
}
