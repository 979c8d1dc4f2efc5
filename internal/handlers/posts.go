package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"sns/internal/models"
)

func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.store.ListPosts(r.Context())
	if err != nil {
		h.handleStoreError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, posts)
}

func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var in models.PostInput
	if !h.decode(w, r, &in) {
		return
	}
	p, err := h.store.CreatePost(r.Context(), in)
	if err != nil {
		h.handleStoreError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.GetPost(r.Context(), chi.URLParam(r, "postId"))
	if err != nil {
		h.handleStoreError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, p)
}

func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	var in models.PostInput
	if !h.decode(w, r, &in) {
		return
	}
	p, err := h.store.UpdatePost(r.Context(), chi.URLParam(r, "postId"), in)
	if err != nil {
		h.handleStoreError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, p)
}

func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeletePost(r.Context(), chi.URLParam(r, "postId")); err != nil {
		h.handleStoreError(w, r, err)
		return
	}
	noContent(w)
}
