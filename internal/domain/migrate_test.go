package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDetectConfigVersion(t *testing.T) {
	tests := []struct {
		name string
		data map[string]any
		want int
	}{
		{
			name: "explicit version marker",
			data: map[string]any{"version": float64(3)},
			want: 3,
		},
		{
			name: "bare url means the single-server format",
			data: map[string]any{"url": "https://chat.example.com"},
			want: 0,
		},
		{
			name: "no marker and no url is the first team-list release",
			data: map[string]any{"teams": []any{}},
			want: 1,
		},
		{
			name: "non-integral version is ignored",
			data: map[string]any{"version": "two", "url": "https://chat.example.com"},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectConfigVersion(tt.data); got != tt.want {
				t.Errorf("DetectConfigVersion() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMigrateConfigFromV0(t *testing.T) {
	v := newTestValidator()

	got := v.MigrateConfig(map[string]any{"url": "https://chat.example.com"})
	if got == nil {
		t.Fatal("MigrateConfig() rejected a valid V0 record")
	}

	want := map[string]any{
		"version": 3,
		"teams": []any{
			map[string]any{
				"name":          "Primary server",
				"url":           "https://chat.example.com",
				"order":         0,
				"lastActiveTab": 0,
				"tabs": []any{
					map[string]any{"name": "chat", "order": 0, "isClosed": false},
				},
			},
		},
		"showTrayIcon":   false,
		"trayIconTheme":  "light",
		"minimizeToTray": false,
		"notifications": map[string]any{
			"flashWindow":    0,
			"bounceIcon":     false,
			"bounceIconType": "informational",
		},
		"showUnreadBadge":            true,
		"useSpellChecker":            true,
		"enableHardwareAcceleration": true,
		"autostart":                  true,
		"darkMode":                   false,
		"downloadLocation":           "",
		"lastActiveTeam":             0,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("MigrateConfig() mismatch (-want +got):\n%s", diff)
	}
}

func TestMigrateConfigFromV1(t *testing.T) {
	v := newTestValidator()

	got := v.MigrateConfig(map[string]any{
		"version": float64(1),
		"teams": []any{
			map[string]any{"name": "work", "url": "https://work.example.com"},
			map[string]any{"name": "home", "url": "https://home.example.com"},
		},
		"darkMode": true, // not a V1 field: stripped at V1, back at default after upgrade
	})
	if got == nil {
		t.Fatal("MigrateConfig() rejected a valid V1 record")
	}

	if got["version"] != 3 {
		t.Errorf("version = %v, want 3", got["version"])
	}
	if got["darkMode"] != false {
		t.Errorf("darkMode = %v, want the V2 default false", got["darkMode"])
	}

	teams := got["teams"].([]any)
	if len(teams) != 2 {
		t.Fatalf("teams length = %d, want 2", len(teams))
	}
	for i, raw := range teams {
		team := raw.(map[string]any)
		if team["order"] != i {
			t.Errorf("teams[%d].order = %v, want %v", i, team["order"], i)
		}
		if team["lastActiveTab"] != 0 {
			t.Errorf("teams[%d].lastActiveTab = %v, want 0", i, team["lastActiveTab"])
		}
		tabs := team["tabs"].([]any)
		if len(tabs) != 1 {
			t.Fatalf("teams[%d].tabs length = %d, want 1", i, len(tabs))
		}
		tab := tabs[0].(map[string]any)
		if tab["name"] != "chat" || tab["order"] != 0 || tab["isClosed"] != false {
			t.Errorf("teams[%d].tabs[0] = %v", i, tab)
		}
	}
}

func TestMigrateConfigAlreadyLatest(t *testing.T) {
	v := newTestValidator()

	input := map[string]any{
		"version": float64(3),
		"teams": []any{
			map[string]any{
				"name":  "work",
				"url":   "https://work.example.com",
				"order": float64(0),
				"tabs": []any{
					map[string]any{"name": "chat", "order": float64(0), "isClosed": true},
				},
			},
		},
	}

	migrated := v.MigrateConfig(input)
	validated := v.ConfigData(3, input)
	if diff := cmp.Diff(validated, migrated); diff != "" {
		t.Errorf("MigrateConfig() should equal plain validation at the latest version (-validated +migrated):\n%s", diff)
	}
}

func TestMigrateConfigSanitizesBeforeUpgrading(t *testing.T) {
	v := newTestValidator()

	got := v.MigrateConfig(map[string]any{
		"version": float64(2),
		"teams": []any{
			map[string]any{"name": "ok", "url": "https://ok.example.com", "order": float64(0)},
			map[string]any{"name": "bad", "url": "not a url", "order": float64(1)},
		},
	})
	if got == nil {
		t.Fatal("MigrateConfig() rejected a repairable record")
	}
	teams := got["teams"].([]any)
	if len(teams) != 1 {
		t.Fatalf("teams length = %d, want 1 after dropping the bad entry", len(teams))
	}
	if teams[0].(map[string]any)["name"] != "ok" {
		t.Errorf("surviving team = %v", teams[0])
	}
}

func TestMigrateConfigRejections(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name string
		data any
	}{
		{name: "not a record", data: "nope"},
		{name: "nil input", data: nil},
		{name: "v0 without url field", data: map[string]any{"version": float64(0)}},
		{name: "structural failure at declared version", data: map[string]any{
			"version": float64(2),
			"teams": []any{
				map[string]any{"url": "https://ok.example.com"}, // name missing
			},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := v.MigrateConfig(tt.data); got != nil {
				t.Errorf("MigrateConfig() = %v, want nil", got)
			}
		})
	}
}

func TestUpgradeV1toV2AssignsOrder(t *testing.T) {
	v := newTestValidator()

	v1 := v.ConfigData(1, map[string]any{
		"teams": []any{
			map[string]any{"name": "a", "url": "https://a.example.com"},
			map[string]any{"name": "b", "url": "https://b.example.com"},
			map[string]any{"name": "c", "url": "https://c.example.com"},
		},
	})
	if v1 == nil {
		t.Fatal("ConfigData() rejected a valid V1 record")
	}

	v2 := UpgradeV1toV2(v1)
	if v2["version"] != 2 {
		t.Errorf("version = %v, want 2", v2["version"])
	}
	for i, raw := range v2["teams"].([]any) {
		if got := raw.(map[string]any)["order"]; got != i {
			t.Errorf("teams[%d].order = %v, want %v", i, got, i)
		}
	}
	if _, ok := v2["downloadLocation"]; !ok {
		t.Error("downloadLocation default missing after upgrade")
	}
}
