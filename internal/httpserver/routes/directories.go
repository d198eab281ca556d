package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/linemark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linemark/internal/httpserver/handlers"
)

func init() { Register(registerDirectories) }

func registerDirectories(r chi.Router, d deps.Deps) {
	api := guarded(r, d)
	api.Get("/api/directories", handlers.ListDirectories(d))
	api.Post("/api/directories", handlers.CreateDirectory(d))
	api.Patch("/api/directories/{id}", handlers.RenameDirectory(d))
	api.Delete("/api/directories/{id}", handlers.RemoveDirectory(d))
	api.Post("/api/directories/{id}/reorder", handlers.ReorderDirectory(d))
}
