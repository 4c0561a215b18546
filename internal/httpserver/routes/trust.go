package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/perchdesk/perch/internal/httpserver/deps"
	"github.com/perchdesk/perch/internal/httpserver/handlers"
)

func init() { Register(registerTrust) }

func registerTrust(r chi.Router, d deps.Deps) {
	r.Get("/api/v1/origins", handlers.GetOrigins(d))
	r.Post("/api/v1/origins", handlers.PostOrigin(d))
	r.Get("/api/v1/certificates", handlers.GetCertificates(d))
	r.Post("/api/v1/certificates", handlers.PostCertificate(d))
	r.Get("/api/v1/protocols", handlers.GetProtocols(d))
	r.Post("/api/v1/protocols", handlers.PostProtocol(d))
}
