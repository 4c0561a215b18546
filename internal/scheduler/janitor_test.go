package scheduler

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/perchdesk/perch/internal/domain"
	"github.com/perchdesk/perch/internal/logger"
	"github.com/perchdesk/perch/internal/store/file"
)

func TestJanitor_Sweep(t *testing.T) {
	log := logger.New("error", false)
	dir := t.TempDir()
	store := file.NewStore(dir, domain.NewValidator(log), log)

	// A real record plus two orphaned temp files, one old and one fresh.
	if err := store.SaveBounds(map[string]any{"width": 800, "height": 600}); err != nil {
		t.Fatalf("SaveBounds() error: %v", err)
	}
	stale := filepath.Join(dir, "config.json.tmp-111")
	fresh := filepath.Join(dir, "config.json.tmp-222")
	for _, name := range []string{stale, fresh} {
		if err := os.WriteFile(name, []byte("{"), 0o600); err != nil {
			t.Fatalf("write temp file: %v", err)
		}
	}
	old := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(stale, old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	j := NewJanitor(store, log, time.Hour, 24*time.Hour)

	if err := j.Sweep(); err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}

	// Old orphan gone, fresh orphan and the record still there.
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("stale temp file was not swept")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Errorf("fresh temp file was incorrectly swept: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "bounds.json")); err != nil {
		t.Errorf("record file was incorrectly swept: %v", err)
	}
}

func TestJanitor_Defaults(t *testing.T) {
	log := logger.New("error", false)
	store := file.NewStore(t.TempDir(), domain.NewValidator(log), log)

	j := NewJanitor(store, log, 0, 0)

	if j.interval != DefaultSweepInterval {
		t.Errorf("interval = %v, want %v", j.interval, DefaultSweepInterval)
	}
	if j.threshold != DefaultSweepThreshold {
		t.Errorf("threshold = %v, want %v", j.threshold, DefaultSweepThreshold)
	}
}
