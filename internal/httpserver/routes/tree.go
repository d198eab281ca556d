package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/linemark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linemark/internal/httpserver/handlers"
)

func init() { Register(registerTree) }

func registerTree(r chi.Router, d deps.Deps) {
	api := guarded(r, d)
	api.Get("/api/tree", handlers.Tree(d))
	api.Post("/api/tree/drop", handlers.Drop(d))
	api.Get("/api/decorations", handlers.Decorations(d))
}
