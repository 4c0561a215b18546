package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/perchdesk/perch/internal/httpserver/deps"
	"github.com/perchdesk/perch/internal/logger"
)

// GetAppState serves the window runtime state record.
func GetAppState(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, d.Settings.AppState())
	}
}

// PutAppState replaces the window runtime state record.
func PutAppState(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var m map[string]any
		if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
			writeError(w, http.StatusBadRequest, "request body must be a JSON object")
			return
		}

		if err := d.Settings.SetAppState(m); err != nil {
			d.Logger.Warn("app state update rejected",
				logger.Error(err))
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, d.Settings.AppState())
	}
}
