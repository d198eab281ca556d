package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/linemark/internal/decoration"
	"github.com/MrSnakeDoc/linemark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linemark/internal/messages"
	"github.com/MrSnakeDoc/linemark/internal/tree"
)

type treeResponse struct {
	Nodes []tree.Node `json:"nodes"`
}

type dropRequest struct {
	Dragged []tree.Ref `json:"dragged"`
	Target  *tree.Ref  `json:"target"`
}

type dropResponse struct {
	Handled bool        `json:"handled"`
	Message string      `json:"message,omitempty"`
	Nodes   []tree.Node `json:"nodes"`
}

type decorationsResponse struct {
	File    string              `json:"file"`
	Markers []decoration.Marker `json:"markers"`
}

// Tree returns the sidebar tree.
func Tree(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, treeResponse{Nodes: d.Tree.Roots()})
	}
}

// Drop applies a drag-and-drop gesture and returns the updated tree.
// Gestures the tree does not handle are not errors.
func Drop(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dropRequest
		if err := decodeJSON(r, &req); err != nil {
			badRequest(w, r, d, err)
			return
		}

		resp := dropResponse{Handled: d.Tree.Drop(req.Dragged, req.Target)}
		if !resp.Handled {
			resp.Message = printer(d, r).Sprintf(messages.TreeDropIgnored)
		}
		resp.Nodes = d.Tree.Roots()
		writeJSON(w, http.StatusOK, resp)
	}
}

// Decorations returns the gutter markers for ?file=.
func Decorations(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		file := r.URL.Query().Get("file")
		if file == "" {
			reply(w, r, d, http.StatusBadRequest, nil, messages.RequestInvalid, "file is required")
			return
		}
		writeJSON(w, http.StatusOK, decorationsResponse{
			File:    file,
			Markers: d.Decorations.Markers(file),
		})
	}
}
