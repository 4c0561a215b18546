package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/perchdesk/perch/internal/httpserver/deps"
	"github.com/perchdesk/perch/internal/httpserver/handlers"
)

func init() { Register(registerReload) }

func registerReload(r chi.Router, d deps.Deps) {
	r.Post("/api/v1/reload", handlers.Reload(d))
}
