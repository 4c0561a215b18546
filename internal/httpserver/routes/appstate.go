package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/perchdesk/perch/internal/httpserver/deps"
	"github.com/perchdesk/perch/internal/httpserver/handlers"
)

func init() { Register(registerAppState) }

func registerAppState(r chi.Router, d deps.Deps) {
	r.Get("/api/v1/app-state", handlers.GetAppState(d))
	r.Put("/api/v1/app-state", handlers.PutAppState(d))
}
