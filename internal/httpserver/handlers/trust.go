package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/perchdesk/perch/internal/httpserver/deps"
	"github.com/perchdesk/perch/internal/logger"
)

// The trust surface: per-origin permission grants, pinned certificates
// and the external protocol allowlist. Grants are additive through this
// API; revocation means editing the file and reloading.

type originRequest struct {
	Origin       string `json:"origin"`
	CanBasicAuth bool   `json:"canBasicAuth"`
}

type certificateRequest struct {
	Origin     string `json:"origin"`
	Data       string `json:"data"`
	IssuerName string `json:"issuerName"`
}

type protocolRequest struct {
	Scheme string `json:"scheme"`
}

// GetOrigins serves the trusted-origins record.
func GetOrigins(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, d.Settings.TrustedOrigins())
	}
}

// PostOrigin grants or updates the permissions for one origin.
func PostOrigin(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req originRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "request body must be a JSON object")
			return
		}

		perms := map[string]any{"canBasicAuth": req.CanBasicAuth}
		if err := d.Settings.SetOriginPermissions(req.Origin, perms); err != nil {
			d.Logger.Warn("origin grant rejected",
				logger.String("origin", req.Origin),
				logger.Error(err))
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, d.Settings.TrustedOrigins())
	}
}

// GetCertificates serves the pinned certificate store.
func GetCertificates(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, d.Settings.Certificates())
	}
}

// PostCertificate pins a certificate for one origin.
func PostCertificate(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req certificateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "request body must be a JSON object")
			return
		}

		if err := d.Settings.AddCertificate(req.Origin, req.Data, req.IssuerName); err != nil {
			d.Logger.Warn("certificate pin rejected",
				logger.String("origin", req.Origin),
				logger.Error(err))
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, d.Settings.Certificates())
	}
}

// GetProtocols serves the external protocol allowlist.
func GetProtocols(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, d.Settings.AllowedProtocols())
	}
}

// PostProtocol adds one scheme to the external protocol allowlist.
func PostProtocol(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req protocolRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "request body must be a JSON object")
			return
		}

		if err := d.Settings.AddAllowedProtocol(req.Scheme); err != nil {
			d.Logger.Warn("protocol grant rejected",
				logger.String("scheme", req.Scheme),
				logger.Error(err))
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, d.Settings.AllowedProtocols())
	}
}
