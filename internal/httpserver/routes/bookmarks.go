package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/linemark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linemark/internal/httpserver/handlers"
)

func init() { Register(registerBookmarks) }

func registerBookmarks(r chi.Router, d deps.Deps) {
	api := guarded(r, d)
	api.Get("/api/bookmarks", handlers.ListBookmarks(d))
	api.Post("/api/bookmarks", handlers.CreateBookmark(d))
	api.Get("/api/bookmarks/{id}", handlers.GetBookmark(d))
	api.Patch("/api/bookmarks/{id}", handlers.RenameBookmark(d))
	api.Delete("/api/bookmarks/{id}", handlers.RemoveBookmark(d))
	api.Post("/api/bookmarks/{id}/move", handlers.MoveBookmark(d))
	api.Post("/api/bookmarks/{id}/reorder", handlers.ReorderBookmark(d))
}
