package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/MrSnakeDoc/linemark/internal/domain"
	"github.com/MrSnakeDoc/linemark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linemark/internal/index"
	"github.com/MrSnakeDoc/linemark/internal/logger"
	"github.com/MrSnakeDoc/linemark/internal/messages"
)

type bookmarksResponse struct {
	Bookmarks []domain.Bookmark `json:"bookmarks"`
}

type createBookmarkRequest struct {
	FilePath    string  `json:"filePath"`
	LineNumber  *int    `json:"lineNumber"`
	LineText    string  `json:"lineText"`
	FullText    string  `json:"fullText"`
	CustomName  string  `json:"customName"`
	DirectoryID *string `json:"directoryId"`
}

// renameRequest distinguishes a missing name (prompt cancelled) from "".
type renameRequest struct {
	Name *string `json:"name"`
}

type moveRequest struct {
	DirectoryID *string `json:"directoryId"`
}

type reorderRequest struct {
	TargetID string `json:"targetId"`
}

// ListBookmarks returns bookmarks in display order, optionally filtered by
// ?file=, ?directory= or ?root=true.
func ListBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		var list []domain.Bookmark
		switch {
		case q.Get("file") != "":
			list = d.Index.BookmarksInFile(q.Get("file"))
		case q.Get("directory") != "":
			dir := q.Get("directory")
			list = d.Index.BookmarksIn(&dir)
		case q.Get("root") != "":
			root, err := strconv.ParseBool(q.Get("root"))
			if err != nil {
				badRequest(w, r, d, err)
				return
			}
			if !root {
				list = d.Index.ListBookmarks()
				break
			}
			list = d.Index.BookmarksIn(nil)
		default:
			list = d.Index.ListBookmarks()
		}

		writeJSON(w, http.StatusOK, bookmarksResponse{Bookmarks: list})
	}
}

// GetBookmark returns one bookmark.
func GetBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, ok := lookupBookmark(w, r, d)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, b)
	}
}

// CreateBookmark marks a line. Line text is read from disk when the request
// carries none.
func CreateBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createBookmarkRequest
		if err := decodeJSON(r, &req); err != nil {
			badRequest(w, r, d, err)
			return
		}
		if req.FilePath == "" || req.LineNumber == nil || *req.LineNumber < 0 {
			reply(w, r, d, http.StatusBadRequest, nil, messages.BookmarkInvalid, "filePath and lineNumber >= 0 are required")
			return
		}
		if req.DirectoryID != nil {
			if _, ok := d.Index.Directory(*req.DirectoryID); !ok {
				reply(w, r, d, http.StatusNotFound, nil, messages.DirectoryNotFound, *req.DirectoryID)
				return
			}
		}

		nb := index.NewBookmark{
			FilePath:    req.FilePath,
			LineNumber:  *req.LineNumber,
			LineText:    req.LineText,
			FullText:    req.FullText,
			CustomName:  req.CustomName,
			DirectoryID: req.DirectoryID,
		}
		if d.Lines != nil {
			if err := d.Lines.Fill(&nb); err != nil {
				d.Logger.Warn("failed to read line for bookmark",
					logger.String("file", nb.FilePath),
					logger.Int("line", nb.LineNumber),
					logger.Error(err))
				reply(w, r, d, http.StatusUnprocessableEntity, nil, messages.BookmarkInvalid, err.Error())
				return
			}
		}

		b, err := d.Index.CreateBookmark(nb)
		if errors.Is(err, index.ErrBookmarkExists) {
			reply(w, r, d, http.StatusConflict, nil, messages.BookmarkExists)
			return
		}
		if err != nil {
			d.Logger.Error("failed to create bookmark", logger.Error(err))
			writeJSON(w, http.StatusInternalServerError, messageResponse{Message: err.Error()})
			return
		}

		d.Logger.Info("bookmark created",
			logger.String("id", b.ID))
		reply(w, r, d, http.StatusCreated, b, messages.BookmarkAdded, b.DisplayName())
	}
}

// RenameBookmark sets or clears the custom name. A body without "name"
// is a cancelled prompt and changes nothing.
func RenameBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, ok := lookupBookmark(w, r, d)
		if !ok {
			return
		}
		var req renameRequest
		if err := decodeJSON(r, &req); err != nil {
			badRequest(w, r, d, err)
			return
		}
		if req.Name == nil {
			reply(w, r, d, http.StatusOK, b, messages.StoreUnchanged)
			return
		}

		d.Index.RenameBookmark(b.ID, req.Name)
		b, _ = d.Index.Bookmark(b.ID)
		reply(w, r, d, http.StatusOK, b, messages.BookmarkRenamed, b.DisplayName())
	}
}

// RemoveBookmark deletes a bookmark.
func RemoveBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, ok := lookupBookmark(w, r, d)
		if !ok {
			return
		}
		d.Index.RemoveBookmark(b.ID)
		reply(w, r, d, http.StatusOK, nil, messages.BookmarkRemoved, b.DisplayName())
	}
}

// MoveBookmark assigns a bookmark to a directory, or to root when
// directoryId is null or absent.
func MoveBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, ok := lookupBookmark(w, r, d)
		if !ok {
			return
		}
		var req moveRequest
		if err := decodeJSON(r, &req); err != nil {
			badRequest(w, r, d, err)
			return
		}
		if req.DirectoryID != nil {
			if _, ok := d.Index.Directory(*req.DirectoryID); !ok {
				reply(w, r, d, http.StatusNotFound, nil, messages.DirectoryNotFound, *req.DirectoryID)
				return
			}
		}

		d.Index.MoveToDirectory(b.ID, req.DirectoryID)
		b, _ = d.Index.Bookmark(b.ID)
		reply(w, r, d, http.StatusOK, b, messages.BookmarkMoved, b.DisplayName())
	}
}

// ReorderBookmark moves a bookmark next to targetId.
func ReorderBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, ok := lookupBookmark(w, r, d)
		if !ok {
			return
		}
		var req reorderRequest
		if err := decodeJSON(r, &req); err != nil {
			badRequest(w, r, d, err)
			return
		}
		if _, ok := d.Index.Bookmark(req.TargetID); !ok {
			reply(w, r, d, http.StatusNotFound, nil, messages.BookmarkNotFound, req.TargetID)
			return
		}

		d.Index.ReorderBookmarks(b.ID, req.TargetID)
		b, _ = d.Index.Bookmark(b.ID)
		reply(w, r, d, http.StatusOK, b, messages.BookmarkMoved, b.DisplayName())
	}
}

func lookupBookmark(w http.ResponseWriter, r *http.Request, d deps.Deps) (domain.Bookmark, bool) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, r, d, err)
		return domain.Bookmark{}, false
	}
	b, ok := d.Index.Bookmark(id)
	if !ok {
		reply(w, r, d, http.StatusNotFound, nil, messages.BookmarkNotFound, id)
		return domain.Bookmark{}, false
	}
	return b, true
}
