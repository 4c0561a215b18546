package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/perchdesk/perch/internal/httpserver/deps"
	"github.com/perchdesk/perch/internal/logger"
)

// GetBounds serves the saved window geometry.
func GetBounds(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, d.Settings.Bounds())
	}
}

// PutBounds replaces the saved window geometry. A record below the
// minimum window size is rejected whole; there is no clamping.
func PutBounds(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var m map[string]any
		if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
			writeError(w, http.StatusBadRequest, "request body must be a JSON object")
			return
		}

		if err := d.Settings.SetBounds(m); err != nil {
			d.Logger.Warn("bounds update rejected",
				logger.Error(err))
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, d.Settings.Bounds())
	}
}
