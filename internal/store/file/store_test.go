package file

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/perchdesk/perch/internal/domain"
	"github.com/perchdesk/perch/internal/logger"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	log := logger.New("error", false)
	return NewStore(t.TempDir(), domain.NewValidator(log), log)
}

func writeRaw(t *testing.T, s *Store, name, content string) {
	t.Helper()
	if err := os.MkdirAll(s.Dir(), 0o700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(s.Dir(), name), []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func readRaw(t *testing.T, s *Store, name string) string {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join(s.Dir(), name))
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	return string(raw)
}

func TestLoadConfigFirstRun(t *testing.T) {
	s := newTestStore(t)

	got := s.LoadConfig()

	if diff := cmp.Diff(domain.DefaultConfigData(), got); diff != "" {
		t.Errorf("LoadConfig() on empty dir mismatch (-want +got):\n%s", diff)
	}
	if _, err := os.Stat(filepath.Join(s.Dir(), "config.json")); !os.IsNotExist(err) {
		t.Errorf("LoadConfig() on empty dir created config.json")
	}
}

func TestLoadConfigMigratesOldVersions(t *testing.T) {
	s := newTestStore(t)
	writeRaw(t, s, "config.json", `{"url": "https://chat.example.com"}`)

	got := s.LoadConfig()

	if got["version"] != 3 {
		t.Fatalf("version = %v, want 3", got["version"])
	}
	teams, ok := got["teams"].([]any)
	if !ok || len(teams) != 1 {
		t.Fatalf("teams = %v, want one migrated entry", got["teams"])
	}
	team := teams[0].(map[string]any)
	if team["url"] != "https://chat.example.com" {
		t.Errorf("team url = %v", team["url"])
	}

	// Loading migrates in memory only. The old file stays until a save.
	if readRaw(t, s, "config.json") != `{"url": "https://chat.example.com"}` {
		t.Errorf("LoadConfig() rewrote config.json")
	}
}

func TestLoadConfigFallsBackToDefaults(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "truncated json", content: `{"version": 3, "teams": [`},
		{name: "not an object", content: `"just a string"`},
		{name: "structurally invalid", content: `{"version": 2, "teams": {"not": "an array"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			writeRaw(t, s, "config.json", tt.content)

			got := s.LoadConfig()

			if diff := cmp.Diff(domain.DefaultConfigData(), got); diff != "" {
				t.Errorf("LoadConfig() mismatch (-want +got):\n%s", diff)
			}
			// The broken file is kept for inspection, never deleted.
			if readRaw(t, s, "config.json") != tt.content {
				t.Errorf("LoadConfig() modified the broken file")
			}
		})
	}
}

func TestReadConfigDoesNotDegrade(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.ReadConfig(); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("ReadConfig() on empty dir error = %v, want fs.ErrNotExist", err)
	}

	writeRaw(t, s, "config.json", `{"version": 2, "teams": {"not": "an array"}}`)
	if _, err := s.ReadConfig(); err == nil {
		t.Error("ReadConfig() accepted a structurally invalid file")
	}

	writeRaw(t, s, "config.json", `{"url": "https://chat.example.com"}`)
	rec, err := s.ReadConfig()
	if err != nil {
		t.Fatalf("ReadConfig() error: %v", err)
	}
	if rec["version"] != 3 {
		t.Errorf("ReadConfig() version = %v, want migrated 3", rec["version"])
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	s := newTestStore(t)

	cfg := domain.DefaultConfigData()
	cfg["darkMode"] = true
	cfg["teams"] = []any{
		map[string]any{
			"name":          "Work",
			"url":           "https://chat.example.com",
			"order":         0,
			"lastActiveTab": 0,
			"tabs":          []any{},
		},
	}

	if err := s.SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig() error: %v", err)
	}

	got := s.LoadConfig()
	if got["darkMode"] != true {
		t.Errorf("darkMode = %v after reload", got["darkMode"])
	}
	if len(got["teams"].([]any)) != 1 {
		t.Errorf("teams = %v after reload", got["teams"])
	}

	var onDisk map[string]any
	if err := json.Unmarshal([]byte(readRaw(t, s, "config.json")), &onDisk); err != nil {
		t.Fatalf("config.json is not valid JSON: %v", err)
	}
}

func TestSaveConfigRejectsInvalidRecord(t *testing.T) {
	s := newTestStore(t)

	cfg := domain.DefaultConfigData()
	cfg["teams"] = map[string]any{"not": "an array"}

	if err := s.SaveConfig(cfg); err == nil {
		t.Fatal("SaveConfig() accepted an invalid record")
	}
	if _, err := os.Stat(filepath.Join(s.Dir(), "config.json")); !os.IsNotExist(err) {
		t.Errorf("SaveConfig() persisted an invalid record")
	}
}

func TestSaveConfigFilePermissions(t *testing.T) {
	s := newTestStore(t)

	if err := s.SaveConfig(domain.DefaultConfigData()); err != nil {
		t.Fatalf("SaveConfig() error: %v", err)
	}

	info, err := os.Stat(filepath.Join(s.Dir(), "config.json"))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("config.json mode = %o, want 600", perm)
	}
}

func TestBoundsRoundTrip(t *testing.T) {
	s := newTestStore(t)

	bounds := map[string]any{
		"x": 50, "y": 60, "width": 1280, "height": 720,
		"maximized": false, "fullscreen": false,
	}
	if err := s.SaveBounds(bounds); err != nil {
		t.Fatalf("SaveBounds() error: %v", err)
	}

	want := map[string]any{
		"x": 50, "y": 60, "width": 1280, "height": 720,
		"maximized": false, "fullscreen": false,
	}
	if diff := cmp.Diff(want, s.LoadBounds()); diff != "" {
		t.Errorf("LoadBounds() mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveBoundsRejectsTinyWindow(t *testing.T) {
	s := newTestStore(t)

	err := s.SaveBounds(map[string]any{
		"x": 0, "y": 0, "width": 100, "height": 720,
		"maximized": false, "fullscreen": false,
	})
	if err == nil {
		t.Fatal("SaveBounds() accepted a window below the minimum size")
	}
	if diff := cmp.Diff(domain.DefaultBoundsInfo(), s.LoadBounds()); diff != "" {
		t.Errorf("LoadBounds() after rejected save mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadBoundsRejectedFileFallsBack(t *testing.T) {
	s := newTestStore(t)
	writeRaw(t, s, "bounds.json", `{"x": 0, "y": 0, "width": 100, "height": 700, "maximized": false, "fullscreen": false}`)

	if diff := cmp.Diff(domain.DefaultBoundsInfo(), s.LoadBounds()); diff != "" {
		t.Errorf("LoadBounds() mismatch (-want +got):\n%s", diff)
	}
}

func TestAllowedProtocolsRoundTrip(t *testing.T) {
	s := newTestStore(t)

	if got := s.LoadAllowedProtocols(); len(got) != 0 {
		t.Fatalf("LoadAllowedProtocols() on empty dir = %v, want empty", got)
	}

	if err := s.SaveAllowedProtocols([]string{"spotify:", "mailto:"}); err != nil {
		t.Fatalf("SaveAllowedProtocols() error: %v", err)
	}
	want := []string{"spotify:", "mailto:"}
	if diff := cmp.Diff(want, s.LoadAllowedProtocols()); diff != "" {
		t.Errorf("LoadAllowedProtocols() mismatch (-want +got):\n%s", diff)
	}

	if err := s.SaveAllowedProtocols([]string{"not a protocol"}); err == nil {
		t.Fatal("SaveAllowedProtocols() accepted a malformed scheme")
	}
}

func TestCertificatesRoundTrip(t *testing.T) {
	s := newTestStore(t)

	certs := map[string]any{
		"https://chat.example.com": map[string]any{
			"data":       "pem-blob",
			"issuerName": "Example CA",
		},
	}
	if err := s.SaveCertificates(certs); err != nil {
		t.Fatalf("SaveCertificates() error: %v", err)
	}
	if diff := cmp.Diff(certs, s.LoadCertificates()); diff != "" {
		t.Errorf("LoadCertificates() mismatch (-want +got):\n%s", diff)
	}
}

func TestProbe(t *testing.T) {
	s := newTestStore(t)

	if err := s.Probe(); err != nil {
		t.Fatalf("Probe() error: %v", err)
	}

	// Probe must not leave scratch files around.
	entries, err := os.ReadDir(s.Dir())
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Probe() left %d files behind", len(entries))
	}
}

func TestSweepTempFiles(t *testing.T) {
	s := newTestStore(t)

	if err := s.SaveBounds(map[string]any{"width": 800, "height": 600}); err != nil {
		t.Fatalf("SaveBounds() error: %v", err)
	}
	writeRaw(t, s, "config.json.tmp-123456", "{half writ")
	writeRaw(t, s, "config.json.tmp-654321", "{fresh")

	// Age one of the temp files past the cutoff.
	stale := filepath.Join(s.Dir(), "config.json.tmp-123456")
	old := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(stale, old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	removed, err := s.SweepTempFiles(24 * time.Hour)
	if err != nil {
		t.Fatalf("SweepTempFiles() error: %v", err)
	}
	if removed != 1 {
		t.Errorf("SweepTempFiles() removed %d files, want 1", removed)
	}

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("stale temp file still present")
	}
	if _, err := os.Stat(filepath.Join(s.Dir(), "config.json.tmp-654321")); err != nil {
		t.Errorf("fresh temp file was swept: %v", err)
	}
	if _, err := os.Stat(filepath.Join(s.Dir(), "bounds.json")); err != nil {
		t.Errorf("record file was swept: %v", err)
	}
}

func TestSweepTempFilesMissingDir(t *testing.T) {
	log := logger.New("error", false)
	s := NewStore(filepath.Join(t.TempDir(), "never-created"), domain.NewValidator(log), log)

	removed, err := s.SweepTempFiles(time.Hour)
	if err != nil {
		t.Fatalf("SweepTempFiles() error: %v", err)
	}
	if removed != 0 {
		t.Errorf("SweepTempFiles() removed %d files from a missing dir", removed)
	}
}
