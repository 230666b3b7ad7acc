package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jugnunagar/folio/internal/posts"
	"go.uber.org/zap"
)

// maxPostBody bounds an admin save; contentHtml carries the whole article.
const maxPostBody = 5 << 20

type PostsHandler struct {
	svc    *posts.Service
	logger *zap.Logger
}

func NewPostsHandler(svc *posts.Service, logger *zap.Logger) *PostsHandler {
	return &PostsHandler{
		svc:    svc,
		logger: logger,
	}
}

type listResponse struct {
	OK    bool         `json:"ok"`
	Posts []posts.Post `json:"posts"`
}

type postResponse struct {
	OK   bool       `json:"ok"`
	Post posts.Post `json:"post"`
}

func (h *PostsHandler) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, listResponse{OK: true, Posts: h.svc.ListPublished(r.Context())})
	}
}

func (h *PostsHandler) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		post, err := h.svc.GetPublished(r.Context(), mux.Vars(r)["key"])
		if err != nil {
			writeError(w, http.StatusNotFound, "Post not found", "")
			return
		}
		writeJSON(w, http.StatusOK, postResponse{OK: true, Post: post})
	}
}

func (h *PostsHandler) AdminList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, listResponse{OK: true, Posts: h.svc.ListAll(r.Context())})
	}
}

func (h *PostsHandler) Save() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var post posts.Post
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPostBody)).Decode(&post); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON body", "")
			return
		}

		saved, err := h.svc.SavePost(r.Context(), post)
		if err != nil {
			if errors.Is(err, posts.ErrMissingFields) {
				writeError(w, http.StatusBadRequest, "Missing required fields", "")
				return
			}
			writeError(w, http.StatusInternalServerError, "Failed to save post", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, postResponse{OK: true, Post: saved})
	}
}

func (h *PostsHandler) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := h.svc.DeletePost(r.Context(), mux.Vars(r)["id"])
		switch {
		case errors.Is(err, posts.ErrNotFound):
			writeError(w, http.StatusNotFound, "Post not found", "")
		case err != nil:
			writeError(w, http.StatusInternalServerError, "Failed to delete post", err.Error())
		default:
			writeJSON(w, http.StatusOK, okResponse{OK: true})
		}
	}
}
