package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"sns/internal/models"
)

// Like handles POST /posts/{postId}/likes.
func (h *Handler) Like(w http.ResponseWriter, r *http.Request) {
	var in models.LikeInput
	if !h.decode(w, r, &in) {
		return
	}
	res, err := h.store.Like(r.Context(), chi.URLParam(r, "postId"), in.Username)
	if err != nil {
		h.handleStoreError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, res)
}

// Unlike handles DELETE /posts/{postId}/likes. The username comes in the body.
func (h *Handler) Unlike(w http.ResponseWriter, r *http.Request) {
	var in models.LikeInput
	if !h.decode(w, r, &in) {
		return
	}
	if err := h.store.Unlike(r.Context(), chi.URLParam(r, "postId"), in.Username); err != nil {
		h.handleStoreError(w, r, err)
		return
	}
	noContent(w)
}

func (h *Handler) ListLikes(w http.ResponseWriter, r *http.Request) {
	names, err := h.store.Likers(r.Context(), chi.URLParam(r, "postId"))
	if err != nil {
		h.handleStoreError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, names)
}
