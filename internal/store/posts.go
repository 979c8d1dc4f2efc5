package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"sns/internal/models"
)

const postColumns = `id, username, content, created_at, updated_at, likes, comments_count`

func scanPost(row rowScanner) (*models.Post, error) {
	var (
		p       models.Post
		created string
		updated sql.NullString
	)
	if err := row.Scan(&p.ID, &p.Username, &p.Content, &created, &updated, &p.Likes, &p.CommentsCount); err != nil {
		return nil, err
	}
	var err error
	if p.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseNullTime(updated); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPosts returns every post, newest first.
func (s *Store) ListPosts(ctx context.Context) ([]models.Post, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+postColumns+` FROM posts ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

func (s *Store) CreatePost(ctx context.Context, in models.PostInput) (*models.Post, error) {
	p := &models.Post{
		ID:        s.newID(),
		Username:  in.Username,
		Content:   in.Content,
		CreatedAt: s.timestamp(),
	}
	_, err := s.db.ExecContext(ctx,
		s.q(`INSERT INTO posts (id, username, content, created_at, likes, comments_count) VALUES (?, ?, ?, ?, 0, 0)`),
		p.ID, p.Username, p.Content, formatTime(p.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("insert post: %w", err)
	}
	return p, nil
}

func (s *Store) GetPost(ctx context.Context, id string) (*models.Post, error) {
	p, err := scanPost(s.db.QueryRowContext(ctx,
		s.q(`SELECT `+postColumns+` FROM posts WHERE id = ?`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPostNotFound
	} else if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	return p, nil
}

// UpdatePost overwrites username and content and stamps updatedAt.
// createdAt and both counters are left alone.
func (s *Store) UpdatePost(ctx context.Context, id string, in models.PostInput) (*models.Post, error) {
	p, err := scanPost(s.db.QueryRowContext(ctx,
		s.q(`UPDATE posts SET username = ?, content = ?, updated_at = ? WHERE id = ? RETURNING `+postColumns),
		in.Username, in.Content, formatTime(s.timestamp()), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPostNotFound
	} else if err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	return p, nil
}

// DeletePost removes the post together with its comments and likes.
func (s *Store) DeletePost(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM comments WHERE post_id = ?`), id); err != nil {
			return fmt.Errorf("delete comments of post: %w", err)
		}
		if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM likes WHERE post_id = ?`), id); err != nil {
			return fmt.Errorf("delete likes of post: %w", err)
		}
		res, err := tx.ExecContext(ctx, s.q(`DELETE FROM posts WHERE id = ?`), id)
		if err != nil {
			return fmt.Errorf("delete post: %w", err)
		}
		n, err := affected(res)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrPostNotFound
		}
		return nil
	})
}

func (s *Store) postExists(ctx context.Context, tx *sql.Tx, id string) error {
	var one int
	err := tx.QueryRowContext(ctx, s.q(`SELECT 1 FROM posts WHERE id = ?`), id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrPostNotFound
	} else if err != nil {
		return fmt.Errorf("check post: %w", err)
	}
	return nil
}
