package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/perchdesk/perch/internal/httpserver/deps"
	"github.com/perchdesk/perch/internal/httpserver/handlers"
)

func init() { Register(registerBounds) }

func registerBounds(r chi.Router, d deps.Deps) {
	r.Get("/api/v1/bounds", handlers.GetBounds(d))
	r.Put("/api/v1/bounds", handlers.PutBounds(d))
}
