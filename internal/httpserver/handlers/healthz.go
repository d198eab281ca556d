package handlers

import (
	"net/http"
	"time"

	"github.com/MrSnakeDoc/linemark/internal/httpserver/deps"
)

type healthzResponse struct {
	Status        string  `json:"status"`
	Restored      bool    `json:"restored"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Version       string  `json:"version,omitempty"`
	Commit        string  `json:"commit,omitempty"`
}

// Healthz answers as long as the process serves requests; restored turns true
// once persisted bookmarks are loaded.
func Healthz(d deps.Deps) http.HandlerFunc {
	now := d.TimeNow
	if now == nil {
		now = time.Now
	}
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, healthzResponse{
			Status:        "ok",
			Restored:      d.Ready == nil || d.Ready(),
			UptimeSeconds: now().Sub(d.StartTime).Seconds(),
			Version:       d.Version,
			Commit:        d.Commit,
		})
	}
}
