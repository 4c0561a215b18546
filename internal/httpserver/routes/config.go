package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/perchdesk/perch/internal/httpserver/deps"
	"github.com/perchdesk/perch/internal/httpserver/handlers"
)

func init() { Register(registerConfig) }

func registerConfig(r chi.Router, d deps.Deps) {
	r.Get("/api/v1/config", handlers.Config(d))
}
