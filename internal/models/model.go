package models

import (
	"errors"
	"strings"
	"time"
)

const (
	MaxUsernameLen = 100
	MaxContentLen  = 10000
)

type Post struct {
	ID            string     `json:"id"`
	Username      string     `json:"username"`
	Content       string     `json:"content"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     *time.Time `json:"updatedAt"`
	Likes         int        `json:"likes"`
	CommentsCount int        `json:"commentsCount"`
}

type Comment struct {
	ID        string     `json:"id"`
	PostID    string     `json:"postId"`
	Username  string     `json:"username"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt"`
}

// LikeResult is returned after a successful like.
type LikeResult struct {
	PostID     string `json:"postId"`
	Username   string `json:"username"`
	TotalLikes int    `json:"totalLikes"`
}

// PostInput is the body of POST and PATCH on a post. Comments use the same shape.
type PostInput struct {
	Username string `json:"username"`
	Content  string `json:"content"`
}

type CommentInput = PostInput

type LikeInput struct {
	Username string `json:"username"`
}

var (
	ErrUsernameRequired = errors.New("username is required")
	ErrContentRequired  = errors.New("content is required")
	ErrUsernameTooLong  = errors.New("username is too long")
	ErrContentTooLong   = errors.New("content is too long")
)

// Validate trims both fields in place and checks they are present.
func (in *PostInput) Validate() error {
	in.Username = strings.TrimSpace(in.Username)
	in.Content = strings.TrimSpace(in.Content)
	if err := validateUsername(in.Username); err != nil {
		return err
	}
	if in.Content == "" {
		return ErrContentRequired
	}
	if len(in.Content) > MaxContentLen {
		return ErrContentTooLong
	}
	return nil
}

func (in *LikeInput) Validate() error {
	in.Username = strings.TrimSpace(in.Username)
	return validateUsername(in.Username)
}

func validateUsername(u string) error {
	if u == "" {
		return ErrUsernameRequired
	}
	if len(u) > MaxUsernameLen {
		return ErrUsernameTooLong
	}
	return nil
}
