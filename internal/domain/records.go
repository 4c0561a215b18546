package domain

import (
	"encoding/json"
	"fmt"
)

// Config is the typed view of a latest-version config record.
//
// The persisted format stays the normalized map the engine returns; these
// structs exist for in-process consumers (the shell, the CLI, logging)
// that want field access instead of map lookups. JSON tags match the
// persisted field names exactly.
type Config struct {
	// ─────────────────────────────
	// Schema identity
	// ─────────────────────────────

	// Version is the schema version this record satisfies.
	Version int `json:"version"`

	// ─────────────────────────────
	// Servers
	// ─────────────────────────────

	// Teams lists the chat servers the shell connects to, in display order.
	Teams []Team `json:"teams"`

	// LastActiveTeam indexes into Teams.
	LastActiveTeam int `json:"lastActiveTeam"`

	// ─────────────────────────────
	// Appearance & tray
	// ─────────────────────────────

	ShowTrayIcon   bool   `json:"showTrayIcon"`
	TrayIconTheme  string `json:"trayIconTheme"`
	MinimizeToTray bool   `json:"minimizeToTray"`
	DarkMode       bool   `json:"darkMode"`

	// ─────────────────────────────
	// Behavior
	// ─────────────────────────────

	Notifications              Notifications `json:"notifications"`
	ShowUnreadBadge            bool          `json:"showUnreadBadge"`
	UseSpellChecker            bool          `json:"useSpellChecker"`
	SpellCheckerURL            string        `json:"spellCheckerURL,omitempty"`
	EnableHardwareAcceleration bool          `json:"enableHardwareAcceleration"`
	Autostart                  bool          `json:"autostart"`
	DownloadLocation           string        `json:"downloadLocation"`
}

// Team is one configured chat server.
type Team struct {
	Name          string `json:"name"`
	URL           string `json:"url"`
	Order         int    `json:"order"`
	LastActiveTab int    `json:"lastActiveTab"`
	Tabs          []Tab  `json:"tabs"`
}

// Tab is one view inside a team.
type Tab struct {
	Name     string `json:"name"`
	Order    int    `json:"order"`
	IsClosed bool   `json:"isClosed"`
}

type Notifications struct {
	FlashWindow    int    `json:"flashWindow"`
	BounceIcon     bool   `json:"bounceIcon"`
	BounceIconType string `json:"bounceIconType"`
}

// BoundsInfo is the persisted main-window geometry.
type BoundsInfo struct {
	X          int  `json:"x"`
	Y          int  `json:"y"`
	Width      int  `json:"width"`
	Height     int  `json:"height"`
	Maximized  bool `json:"maximized"`
	Fullscreen bool `json:"fullscreen"`
}

// AppState carries update-related bookkeeping between runs.
type AppState struct {
	LastAppVersion    string `json:"lastAppVersion,omitempty"`
	SkippedVersion    string `json:"skippedVersion,omitempty"`
	UpdateCheckedDate string `json:"updateCheckedDate,omitempty"`
}

// CertificateEntry is one remembered certificate decision, keyed by origin
// in the store.
type CertificateEntry struct {
	Data       string `json:"data"`
	IssuerName string `json:"issuerName"`
}

// OriginPermissions is the per-origin grant record.
type OriginPermissions struct {
	CanBasicAuth bool `json:"canBasicAuth"`
}

// Args are the process launch options accepted on the command line.
type Args struct {
	Hidden         bool   `json:"hidden,omitempty"`
	DisableDevMode bool   `json:"disableDevMode,omitempty"`
	DataDir        string `json:"dataDir,omitempty"`
	Version        bool   `json:"version,omitempty"`
}

// ConfigFromMap converts a normalized config record into its typed view.
// It is only ever fed engine output, so decoding cannot drop fields.
func ConfigFromMap(m map[string]any) (*Config, error) {
	var c Config
	if err := decodeRecord(m, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func BoundsFromMap(m map[string]any) (*BoundsInfo, error) {
	var b BoundsInfo
	if err := decodeRecord(m, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func AppStateFromMap(m map[string]any) (*AppState, error) {
	var a AppState
	if err := decodeRecord(m, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func ArgsFromMap(m map[string]any) (*Args, error) {
	var a Args
	if err := decodeRecord(m, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func decodeRecord(m map[string]any, dst any) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to decode record: %w", err)
	}
	return nil
}
