package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/linemark/internal/domain"
	"github.com/MrSnakeDoc/linemark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linemark/internal/logger"
	"github.com/MrSnakeDoc/linemark/internal/messages"
)

type directoriesResponse struct {
	Directories []domain.Directory `json:"directories"`
}

type createDirectoryRequest struct {
	Name string `json:"name"`
}

func ListDirectories(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, directoriesResponse{Directories: d.Index.ListDirectories()})
	}
}

// CreateDirectory appends a directory. An empty name is rejected.
func CreateDirectory(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createDirectoryRequest
		if err := decodeJSON(r, &req); err != nil {
			badRequest(w, r, d, err)
			return
		}

		dir, ok := d.Index.CreateDirectory(req.Name)
		if !ok {
			reply(w, r, d, http.StatusBadRequest, nil, messages.DirectoryNameRequired)
			return
		}

		d.Logger.Info("directory created",
			logger.String("id", dir.ID),
			logger.String("name", dir.Name))
		reply(w, r, d, http.StatusCreated, dir, messages.DirectoryAdded, dir.Name)
	}
}

// RenameDirectory renames a directory. A body without "name" changes nothing.
func RenameDirectory(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dir, ok := lookupDirectory(w, r, d)
		if !ok {
			return
		}
		var req renameRequest
		if err := decodeJSON(r, &req); err != nil {
			badRequest(w, r, d, err)
			return
		}
		if req.Name == nil {
			reply(w, r, d, http.StatusOK, dir, messages.StoreUnchanged)
			return
		}

		d.Index.RenameDirectory(dir.ID, req.Name)
		dir, _ = d.Index.Directory(dir.ID)
		reply(w, r, d, http.StatusOK, dir, messages.DirectoryRenamed, dir.Name)
	}
}

// RemoveDirectory deletes a directory; its bookmarks move to root.
func RemoveDirectory(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dir, ok := lookupDirectory(w, r, d)
		if !ok {
			return
		}
		d.Index.RemoveDirectory(dir.ID)
		reply(w, r, d, http.StatusOK, nil, messages.DirectoryRemoved, dir.Name)
	}
}

// ReorderDirectory moves a directory next to targetId.
func ReorderDirectory(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dir, ok := lookupDirectory(w, r, d)
		if !ok {
			return
		}
		var req reorderRequest
		if err := decodeJSON(r, &req); err != nil {
			badRequest(w, r, d, err)
			return
		}
		if _, ok := d.Index.Directory(req.TargetID); !ok {
			reply(w, r, d, http.StatusNotFound, nil, messages.DirectoryNotFound, req.TargetID)
			return
		}

		d.Index.ReorderDirectories(dir.ID, req.TargetID)
		writeJSON(w, http.StatusOK, directoriesResponse{Directories: d.Index.ListDirectories()})
	}
}

func lookupDirectory(w http.ResponseWriter, r *http.Request, d deps.Deps) (domain.Directory, bool) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, r, d, err)
		return domain.Directory{}, false
	}
	dir, ok := d.Index.Directory(id)
	if !ok {
		reply(w, r, d, http.StatusNotFound, nil, messages.DirectoryNotFound, id)
		return domain.Directory{}, false
	}
	return dir, true
}
