package handlers

import (
	"context"
	"math"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/linemark/internal/httpserver/deps"
)

const infraTimeFormat = "2006-01-02 15:04:05"

type componentStatus struct {
	OK          bool     `json:"ok"`
	Bookmarks   *int     `json:"bookmarks,omitempty"`
	Directories *int     `json:"directories,omitempty"`
	MinOrderGap *float64 `json:"min_order_gap,omitempty"`
	LastChange  string   `json:"last_change,omitempty"`
	LastSave    string   `json:"last_save,omitempty"`
	Failures    *int     `json:"failures,omitempty"`
	Mode        string   `json:"mode,omitempty"`
	Impact      string   `json:"impact,omitempty"`
	Error       string   `json:"error,omitempty"`
}

type infraResponse struct {
	Status     string                     `json:"status"`
	Components map[string]componentStatus `json:"components"`
}

// Infra reports the state of the store, Redis and the saver.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		components := map[string]componentStatus{
			"store":       checkStore(d),
			"redis":       checkRedis(r.Context(), d),
			"persistence": checkPersistence(d),
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Status:     determineStatus(components),
			Components: components,
		})
	}
}

func determineStatus(components map[string]componentStatus) string {
	for _, c := range components {
		if !c.OK {
			// memory stays authoritative, so nothing here is fatal
			return "degraded"
		}
	}
	return "ok"
}

func checkStore(d deps.Deps) componentStatus {
	bookmarks, directories := d.Index.Count()
	return componentStatus{
		OK:          true,
		Bookmarks:   &bookmarks,
		Directories: &directories,
		MinOrderGap: finite(d.Index.MinOrderGap()),
		LastChange:  formatTime(d.Index.LastChange()),
	}
}

func checkRedis(ctx context.Context, d deps.Deps) componentStatus {
	if d.Redis == nil {
		return componentStatus{
			OK:     false,
			Mode:   "memory-only",
			Impact: "bookmarks-not-persisted",
			Error:  "client not initialized",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := d.Redis.Ping(ctx); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   "memory-only",
			Impact: "bookmarks-not-persisted",
			Error:  err.Error(),
		}
	}

	return componentStatus{
		OK:   true,
		Mode: "persistent",
	}
}

func checkPersistence(d deps.Deps) componentStatus {
	if d.Saver == nil {
		return componentStatus{
			OK:     false,
			Mode:   "disabled",
			Impact: "bookmarks-not-persisted",
		}
	}

	st := d.Saver.Status()
	failures := st.Failures
	return componentStatus{
		OK:       st.LastError == "",
		LastSave: formatTime(st.LastSave),
		Failures: &failures,
		Error:    st.LastError,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Format(infraTimeFormat)
}

// finite drops values JSON cannot encode.
func finite(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}
