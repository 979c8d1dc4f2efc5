package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"sns/internal/models"
)

func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.store.ListComments(r.Context(), chi.URLParam(r, "postId"))
	if err != nil {
		h.handleStoreError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, comments)
}

func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	var in models.CommentInput
	if !h.decode(w, r, &in) {
		return
	}
	c, err := h.store.CreateComment(r.Context(), chi.URLParam(r, "postId"), in)
	if err != nil {
		h.handleStoreError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, c)
}

func (h *Handler) GetComment(w http.ResponseWriter, r *http.Request) {
	c, err := h.store.GetComment(r.Context(), chi.URLParam(r, "postId"), chi.URLParam(r, "commentId"))
	if err != nil {
		h.handleStoreError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, c)
}

func (h *Handler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	var in models.CommentInput
	if !h.decode(w, r, &in) {
		return
	}
	c, err := h.store.UpdateComment(r.Context(), chi.URLParam(r, "postId"), chi.URLParam(r, "commentId"), in)
	if err != nil {
		h.handleStoreError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, c)
}

func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	err := h.store.DeleteComment(r.Context(), chi.URLParam(r, "postId"), chi.URLParam(r, "commentId"))
	if err != nil {
		h.handleStoreError(w, r, err)
		return
	}
	noContent(w)
}
