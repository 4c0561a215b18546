package handlers

import (
	"net/http"

	"github.com/perchdesk/perch/internal/httpserver/deps"
)

// Config serves the current configuration record, already validated and
// with every default filled in. The renderer never sees raw file content.
func Config(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, d.Settings.ConfigData())
	}
}
