package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"sns/internal/models"
)

const commentColumns = `id, post_id, username, content, created_at, updated_at`

func scanComment(row rowScanner) (*models.Comment, error) {
	var (
		c       models.Comment
		created string
		updated sql.NullString
	)
	if err := row.Scan(&c.ID, &c.PostID, &c.Username, &c.Content, &created, &updated); err != nil {
		return nil, err
	}
	var err error
	if c.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = parseNullTime(updated); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListComments returns the comments of a post, oldest first.
func (s *Store) ListComments(ctx context.Context, postID string) ([]models.Comment, error) {
	comments := []models.Comment{}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.postExists(ctx, tx, postID); err != nil {
			return err
		}
		rows, err := tx.QueryContext(ctx,
			s.q(`SELECT `+commentColumns+` FROM comments WHERE post_id = ? ORDER BY created_at ASC, id ASC`), postID)
		if err != nil {
			return fmt.Errorf("list comments: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			c, err := scanComment(rows)
			if err != nil {
				return fmt.Errorf("scan comment: %w", err)
			}
			comments = append(comments, *c)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// CreateComment inserts a comment and bumps the post's commentsCount.
func (s *Store) CreateComment(ctx context.Context, postID string, in models.CommentInput) (*models.Comment, error) {
	c := &models.Comment{
		ID:        s.newID(),
		PostID:    postID,
		Username:  in.Username,
		Content:   in.Content,
		CreatedAt: s.timestamp(),
	}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		// The counter update doubles as the existence check and locks the post row.
		res, err := tx.ExecContext(ctx,
			s.q(`UPDATE posts SET comments_count = comments_count + 1 WHERE id = ?`), postID)
		if err != nil {
			return fmt.Errorf("increment comments count: %w", err)
		}
		n, err := affected(res)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrPostNotFound
		}

		_, err = tx.ExecContext(ctx,
			s.q(`INSERT INTO comments (id, post_id, username, content, created_at) VALUES (?, ?, ?, ?, ?)`),
			c.ID, c.PostID, c.Username, c.Content, formatTime(c.CreatedAt))
		if err != nil {
			return fmt.Errorf("insert comment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// GetComment fails with ErrPostNotFound when the post is missing and with
// ErrCommentNotFound when the comment is missing or belongs to another post.
func (s *Store) GetComment(ctx context.Context, postID, commentID string) (*models.Comment, error) {
	var c *models.Comment
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.postExists(ctx, tx, postID); err != nil {
			return err
		}
		var err error
		c, err = scanComment(tx.QueryRowContext(ctx,
			s.q(`SELECT `+commentColumns+` FROM comments WHERE id = ? AND post_id = ?`), commentID, postID))
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCommentNotFound
		} else if err != nil {
			return fmt.Errorf("get comment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Store) UpdateComment(ctx context.Context, postID, commentID string, in models.CommentInput) (*models.Comment, error) {
	c, err := scanComment(s.db.QueryRowContext(ctx,
		s.q(`UPDATE comments SET username = ?, content = ?, updated_at = ? WHERE id = ? AND post_id = ? RETURNING `+commentColumns),
		in.Username, in.Content, formatTime(s.timestamp()), commentID, postID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCommentNotFound
	} else if err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	return c, nil
}

// DeleteComment removes the comment and decrements the post's commentsCount.
func (s *Store) DeleteComment(ctx context.Context, postID, commentID string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			s.q(`DELETE FROM comments WHERE id = ? AND post_id = ?`), commentID, postID)
		if err != nil {
			return fmt.Errorf("delete comment: %w", err)
		}
		n, err := affected(res)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrCommentNotFound
		}

		if _, err := tx.ExecContext(ctx,
			s.q(`UPDATE posts SET comments_count = comments_count - 1 WHERE id = ?`), postID); err != nil {
			return fmt.Errorf("decrement comments count: %w", err)
		}
		return nil
	})
}
