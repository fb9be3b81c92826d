package bookmark

import (
	"encoding/json"
	"errors"
	"net/http"

	"markhub/internal/bookmark/model"
	"markhub/internal/bookmark/service"
	"markhub/internal/title"
	"markhub/middleware"
	"markhub/pkg/logger"
	"markhub/pkg/utils"

	"github.com/go-chi/chi/v5"
)

type BookmarkHandler struct {
	Service *service.BookmarkService
	Titles  *title.Resolver
}

func NewBookmarkHandler(svc *service.BookmarkService, titles *title.Resolver) *BookmarkHandler {
	return &BookmarkHandler{Service: svc, Titles: titles}
}

func (h *BookmarkHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID := r.Context().Value(middleware.UserIDKey).(string)

	bookmarks, err := h.Service.List(ownerID)
	if err != nil {
		logger.Sugar.Errorf("Handler: failed to list bookmarks: %v", err)
		writeDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, bookmarks)
}

func (h *BookmarkHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID := r.Context().Value(middleware.UserIDKey).(string)

	var req model.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	b, err := h.Service.Create(ownerID, req.URL, req.Title)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, b)
}

func (h *BookmarkHandler) Update(w http.ResponseWriter, r *http.Request) {
	ownerID := r.Context().Value(middleware.UserIDKey).(string)

	id := chi.URLParam(r, "id")

	var patch model.UpdatePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	b, err := h.Service.Update(ownerID, id, patch)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, b)
}

func (h *BookmarkHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID := r.Context().Value(middleware.UserIDKey).(string)

	id := chi.URLParam(r, "id")

	if err := h.Service.Delete(ownerID, id); err != nil {
		writeDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ResolveTitle fetches a display title for the given url. Fetch failures are
// not errors here: the resolver already fell back to the host name.
func (h *BookmarkHandler) ResolveTitle(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("url")
	if raw == "" {
		utils.WriteError(w, http.StatusBadRequest, "INVALID_REQUEST", "Missing url parameter")
		return
	}

	resolved, err := h.Titles.Resolve(r.Context(), raw)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, model.TitleResponse{Title: resolved})
}

// writeDomainError maps the domain taxonomy to HTTP. Anything outside the
// taxonomy becomes a generic 500 so store internals never reach the client.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidRequest):
		utils.WriteError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
	case errors.Is(err, model.ErrInvalidURL):
		utils.WriteError(w, http.StatusBadRequest, "INVALID_URL", err.Error())
	case errors.Is(err, model.ErrNotFound):
		utils.WriteError(w, http.StatusNotFound, "NOT_FOUND", "Bookmark not found")
	case errors.Is(err, model.ErrDuplicateURL):
		utils.WriteError(w, http.StatusConflict, "DUPLICATE_URL", "You already bookmarked this URL")
	case errors.Is(err, model.ErrUnavailable):
		utils.WriteError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "Temporarily unavailable, please retry")
	default:
		logger.Sugar.Errorf("Unexpected error: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
	}
}
