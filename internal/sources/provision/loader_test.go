package provision

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoaderLoad(t *testing.T) {
	tmpDir := t.TempDir()
	yamlPath := filepath.Join(tmpDir, "provision.yaml")

	yamlContent := `---
servers:
  - name: Work Chat
    url: https://chat.example.com
  - name: Community
    url: https://community.example.com
`

	err := os.WriteFile(yamlPath, []byte(yamlContent), 0o644)
	if err != nil {
		t.Fatalf("Failed to create test YAML file: %v", err)
	}

	loader := NewLoader(yamlPath)
	f, err := loader.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(f.Servers) != 2 {
		t.Fatalf("Load() returned %d servers, want 2", len(f.Servers))
	}
	if f.Servers[0].Name != "Work Chat" {
		t.Errorf("first server name = %q, want %q", f.Servers[0].Name, "Work Chat")
	}
	if f.Servers[1].URL != "https://community.example.com" {
		t.Errorf("second server url = %q, want %q", f.Servers[1].URL, "https://community.example.com")
	}
}

func TestLoaderLoadFileNotFound(t *testing.T) {
	loader := NewLoader("/nonexistent/path/provision.yaml")
	_, err := loader.Load()
	if err == nil {
		t.Error("Load() with non-existent file should return error")
	}
}

func TestLoaderLoadBrokenYAML(t *testing.T) {
	tmpDir := t.TempDir()
	yamlPath := filepath.Join(tmpDir, "provision.yaml")

	err := os.WriteFile(yamlPath, []byte("servers: ["), 0o644)
	if err != nil {
		t.Fatalf("Failed to create test YAML file: %v", err)
	}

	loader := NewLoader(yamlPath)
	_, err = loader.Load()
	if err == nil {
		t.Error("Load() with broken YAML should return error")
	}
}
