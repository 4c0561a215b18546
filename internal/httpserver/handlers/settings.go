package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/perchdesk/perch/internal/httpserver/deps"
	"github.com/perchdesk/perch/internal/logger"
	"github.com/perchdesk/perch/internal/settings"
)

// Settings applies a batch of field updates from the settings UI. The
// whole batch lands or none of it does; a structural rejection comes back
// as 400 with the reason, never as a half-applied record.
func Settings(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var updates []settings.FieldUpdate
		if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
			writeError(w, http.StatusBadRequest, "request body must be a JSON array of field updates")
			return
		}

		updated, err := d.Settings.Apply(updates)
		if err != nil {
			d.Logger.Warn("settings update rejected",
				logger.Error(err))
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}
