package handlers

import (
	"net/http"

	"github.com/perchdesk/perch/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready bool `json:"ready"`
}

// Readyz reports whether the settings service has loaded its records yet.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ready := !d.Settings.LastLoad().IsZero()
		status := http.StatusOK
		if !ready {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, readyzResponse{Ready: ready})
	}
}
