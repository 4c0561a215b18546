package handlers

import (
	"net/http"

	"github.com/perchdesk/perch/internal/httpserver/deps"
)

type componentStatus struct {
	OK       bool   `json:"ok"`
	Count    *int   `json:"count,omitempty"`
	LastLoad string `json:"last_load,omitempty"`
	Path     string `json:"path,omitempty"`
	Error    string `json:"error,omitempty"`
}

type diagnosticsResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
}

// Diagnostics reports per-component health: the record store, the loaded
// records, and the trust surface. The shell's troubleshooting page
// renders this directly.
func Diagnostics(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		components := map[string]componentStatus{
			"store":   checkStore(d),
			"records": checkRecords(d),
			"trust":   checkTrust(d),
		}

		writeJSON(w, http.StatusOK, diagnosticsResponse{
			Mode:       determineMode(components),
			Components: components,
		})
	}
}

func checkStore(d deps.Deps) componentStatus {
	st := componentStatus{OK: true, Path: d.Store.Dir()}
	if err := d.Store.Probe(); err != nil {
		st.OK = false
		st.Error = err.Error()
	}
	return st
}

func checkRecords(d deps.Deps) componentStatus {
	lastLoad := d.Settings.LastLoad()
	st := componentStatus{OK: !lastLoad.IsZero()}
	if !lastLoad.IsZero() {
		st.LastLoad = lastLoad.Format("2006-01-02 15:04:05")
	}

	teams, _ := d.Settings.ConfigData()["teams"].([]any)
	count := len(teams)
	st.Count = &count
	return st
}

func checkTrust(d deps.Deps) componentStatus {
	count := len(d.Settings.TrustedOrigins()) +
		len(d.Settings.Certificates()) +
		len(d.Settings.AllowedProtocols())
	return componentStatus{OK: true, Count: &count}
}

// determineMode condenses the component map into one word for the tray:
// records never loaded is critical, a store that rejects writes means the
// daemon serves from memory only and is degraded.
func determineMode(components map[string]componentStatus) string {
	if records, exists := components["records"]; exists && !records.OK {
		return "critical"
	}

	if store, exists := components["store"]; exists && !store.OK {
		return "degraded"
	}

	// All systems operational
	return "ok"
}
