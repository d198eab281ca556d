package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/linemark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linemark/internal/logger"
	"github.com/MrSnakeDoc/linemark/internal/messages"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// messageResponse is the body of every mutation response.
type messageResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// reply writes a localized message with an optional payload.
func reply(w http.ResponseWriter, r *http.Request, d deps.Deps, status int, data any, key messages.Key, args ...any) {
	writeJSON(w, status, messageResponse{
		Message: printer(d, r).Sprintf(key, args...),
		Data:    data,
	})
}

func printer(d deps.Deps, r *http.Request) *messages.Printer {
	return d.Messages.For(r.Header.Get("Accept-Language"))
}

// decodeJSON reads a single JSON value into v. An empty body leaves v
// untouched; anything after the value is rejected.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("invalid JSON body: unexpected data after the JSON value")
	}
	return nil
}

func badRequest(w http.ResponseWriter, r *http.Request, d deps.Deps, err error) {
	d.Logger.Debug("rejected request",
		logger.String("path", r.URL.Path),
		logger.Error(err))
	reply(w, r, d, http.StatusBadRequest, nil, messages.RequestInvalid, err.Error())
}

// pathID returns the unescaped {id} route parameter. Bookmark ids contain
// slashes, so clients send them percent-encoded. chi matches on RawPath when
// the URL has one and on the decoded Path otherwise, so only the former is
// unescaped here.
func pathID(r *http.Request) (string, error) {
	raw := chi.URLParam(r, "id")
	id := raw
	if r.URL.RawPath != "" {
		var err error
		if id, err = url.PathUnescape(raw); err != nil {
			return "", fmt.Errorf("invalid id %q: %w", raw, err)
		}
	}
	if id == "" {
		return "", errors.New("missing id")
	}
	return id, nil
}
