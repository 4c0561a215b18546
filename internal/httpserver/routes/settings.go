package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/perchdesk/perch/internal/httpserver/deps"
	"github.com/perchdesk/perch/internal/httpserver/handlers"
)

func init() { Register(registerSettings) }

func registerSettings(r chi.Router, d deps.Deps) {
	r.Post("/api/v1/settings", handlers.Settings(d))
}
