package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"sns/internal/models"
	"sns/internal/store"
)

// maxBodyBytes caps request bodies; content itself is capped lower by validation.
const maxBodyBytes = 64 << 10

// Store is the persistence the handlers need. *store.Store implements it.
type Store interface {
	ListPosts(ctx context.Context) ([]models.Post, error)
	CreatePost(ctx context.Context, in models.PostInput) (*models.Post, error)
	GetPost(ctx context.Context, id string) (*models.Post, error)
	UpdatePost(ctx context.Context, id string, in models.PostInput) (*models.Post, error)
	DeletePost(ctx context.Context, id string) error

	ListComments(ctx context.Context, postID string) ([]models.Comment, error)
	CreateComment(ctx context.Context, postID string, in models.CommentInput) (*models.Comment, error)
	GetComment(ctx context.Context, postID, commentID string) (*models.Comment, error)
	UpdateComment(ctx context.Context, postID, commentID string, in models.CommentInput) (*models.Comment, error)
	DeleteComment(ctx context.Context, postID, commentID string) error

	Like(ctx context.Context, postID, username string) (*models.LikeResult, error)
	Unlike(ctx context.Context, postID, username string) error
	Likers(ctx context.Context, postID string) ([]string, error)
}

type Handler struct {
	store Store
	log   *slog.Logger
}

func New(s Store, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Handler{store: s, log: logger}
}

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, ErrorBody{Code: status, Message: message})
}

// noContent writes a 204 with zero body bytes.
func noContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// handleStoreError converts store errors to responses. Unknown errors are
// logged and reported as a generic 500 so no storage detail leaks.
func (h *Handler) handleStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrPostNotFound):
		h.writeError(w, http.StatusNotFound, "post not found")
	case errors.Is(err, store.ErrCommentNotFound):
		h.writeError(w, http.StatusNotFound, "comment not found")
	case errors.Is(err, store.ErrAlreadyLiked):
		h.writeError(w, http.StatusBadRequest, "post already liked by this user")
	case errors.Is(err, store.ErrNotLiked):
		h.writeError(w, http.StatusBadRequest, "post not liked by this user")
	default:
		h.log.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

type validator interface {
	Validate() error
}

// decode reads a single JSON object into dst and validates it. On failure it
// writes a 400 and returns false.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst validator) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %s", describeDecodeError(err)))
		return false
	}
	if dec.More() {
		h.writeError(w, http.StatusBadRequest, "invalid request body: trailing data")
		return false
	}
	if err := dst.Validate(); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func describeDecodeError(err error) string {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		maxErr    *http.MaxBytesError
	)
	switch {
	case errors.Is(err, io.EOF):
		return "empty body"
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return "malformed JSON"
	case errors.As(err, &typeErr):
		return fmt.Sprintf("field %q has the wrong type", typeErr.Field)
	case errors.As(err, &maxErr):
		return "body too large"
	}
	// DisallowUnknownFields reports `json: unknown field "x"`.
	return err.Error()
}
