package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/linemark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linemark/internal/httpserver/handlers"
)

func init() { Register(registerStore) }

func registerStore(r chi.Router, d deps.Deps) {
	api := guarded(r, d)
	api.Post("/api/clear", handlers.ClearAll(d))
	api.Post("/api/maintenance/renumber", handlers.Renumber(d))
}
