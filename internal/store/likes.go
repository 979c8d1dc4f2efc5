package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"sns/internal/models"
)

// Like records that username likes the post and returns the new total.
// A second like by the same user fails with ErrAlreadyLiked and changes nothing.
func (s *Store) Like(ctx context.Context, postID, username string) (*models.LikeResult, error) {
	var total int
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx,
			s.q(`UPDATE posts SET likes = likes + 1 WHERE id = ? RETURNING likes`), postID).Scan(&total)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrPostNotFound
		} else if err != nil {
			return fmt.Errorf("increment likes: %w", err)
		}

		// The primary key on (post_id, username) decides races; the loser
		// inserts nothing and its increment is rolled back.
		res, err := tx.ExecContext(ctx,
			s.q(`INSERT INTO likes (post_id, username) VALUES (?, ?) ON CONFLICT (post_id, username) DO NOTHING`),
			postID, username)
		if err != nil {
			return fmt.Errorf("insert like: %w", err)
		}
		n, err := affected(res)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrAlreadyLiked
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &models.LikeResult{PostID: postID, Username: username, TotalLikes: total}, nil
}

// Unlike removes username's like and decrements the post's likes.
func (s *Store) Unlike(ctx context.Context, postID, username string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.postExists(ctx, tx, postID); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx,
			s.q(`DELETE FROM likes WHERE post_id = ? AND username = ?`), postID, username)
		if err != nil {
			return fmt.Errorf("delete like: %w", err)
		}
		n, err := affected(res)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotLiked
		}

		if _, err := tx.ExecContext(ctx,
			s.q(`UPDATE posts SET likes = likes - 1 WHERE id = ?`), postID); err != nil {
			return fmt.Errorf("decrement likes: %w", err)
		}
		return nil
	})
}

// Likers lists the usernames that like a post in alphabetical order.
func (s *Store) Likers(ctx context.Context, postID string) ([]string, error) {
	names := []string{}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.postExists(ctx, tx, postID); err != nil {
			return err
		}
		rows, err := tx.QueryContext(ctx,
			s.q(`SELECT username FROM likes WHERE post_id = ? ORDER BY username ASC`), postID)
		if err != nil {
			return fmt.Errorf("list likes: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
				return fmt.Errorf("scan like: %w", err)
			}
			names = append(names, name)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}
