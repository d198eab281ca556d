package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/linemark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linemark/internal/logger"
	"github.com/MrSnakeDoc/linemark/internal/messages"
)

type renumberResponse struct {
	Changed     bool     `json:"changed"`
	MinGapAfter *float64 `json:"min_gap_after,omitempty"`
}

// ClearAll removes every bookmark and directory.
func ClearAll(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bookmarks, directories := d.Index.Count()
		d.Index.ClearAll()
		d.Logger.Info("store cleared",
			logger.Int("bookmarks", bookmarks),
			logger.Int("directories", directories),
			logger.String("remote_ip", r.RemoteAddr))
		reply(w, r, d, http.StatusOK, nil, messages.StoreCleared)
	}
}

// Renumber resets order keys to consecutive integers.
func Renumber(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		changed := d.Index.Renumber()
		key := messages.StoreRenumbered
		if !changed {
			key = messages.StoreUnchanged
		}
		reply(w, r, d, http.StatusOK, renumberResponse{
			Changed:     changed,
			MinGapAfter: finite(d.Index.MinOrderGap()),
		}, key)
	}
}
