package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sns/internal/db"
	"sns/internal/models"
)

// fakeClock advances one second per reading so createdAt values never tie.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

func newTestStore(t *testing.T) (*Store, *sql.DB) {
	t.Helper()
	ctx := context.Background()

	conn, err := db.Open(ctx, db.DriverSQLite, filepath.Join(t.TempDir(), "sns.db"))
	require.NoError(t, err, "Failed to open test database")
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, db.Reset(ctx, conn, db.DriverSQLite, nil))

	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	return New(conn, db.DriverSQLite, WithClock(clock.Now)), conn
}

// assertCounters checks both denormalized counters against the child tables.
func assertCounters(t *testing.T, conn *sql.DB, postID string) {
	t.Helper()
	var likes, likeRows, comments, commentRows int
	require.NoError(t, conn.QueryRow(`SELECT likes, comments_count FROM posts WHERE id = ?`, postID).Scan(&likes, &comments))
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM likes WHERE post_id = ?`, postID).Scan(&likeRows))
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM comments WHERE post_id = ?`, postID).Scan(&commentRows))
	assert.Equal(t, likeRows, likes, "likes counter drifted")
	assert.Equal(t, commentRows, comments, "commentsCount counter drifted")
}

func mustPost(t *testing.T, s *Store, username, content string) *models.Post {
	t.Helper()
	p, err := s.CreatePost(context.Background(), models.PostInput{Username: username, Content: content})
	require.NoError(t, err)
	return p
}

func TestCreatePost(t *testing.T) {
	s, _ := newTestStore(t)

	p := mustPost(t, s, "a", "hi")
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "a", p.Username)
	assert.Equal(t, "hi", p.Content)
	assert.Nil(t, p.UpdatedAt)
	assert.Zero(t, p.Likes)
	assert.Zero(t, p.CommentsCount)
	assert.Equal(t, time.UTC, p.CreatedAt.Location())

	got, err := s.GetPost(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestGetPost_NotFound(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.GetPost(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrPostNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListPosts_NewestFirst(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	empty, err := s.ListPosts(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	first := mustPost(t, s, "a", "1")
	second := mustPost(t, s, "b", "2")
	third := mustPost(t, s, "c", "3")

	posts, err := s.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, []string{third.ID, second.ID, first.ID}, []string{posts[0].ID, posts[1].ID, posts[2].ID})
}

func TestUpdatePost(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	p := mustPost(t, s, "a", "hi")
	_, err := s.Like(ctx, p.ID, "b")
	require.NoError(t, err)
	_, err = s.CreateComment(ctx, p.ID, models.CommentInput{Username: "c", Content: "nice"})
	require.NoError(t, err)

	updated, err := s.UpdatePost(ctx, p.ID, models.PostInput{Username: "a2", Content: "edited"})
	require.NoError(t, err)
	assert.Equal(t, "a2", updated.Username)
	assert.Equal(t, "edited", updated.Content)
	assert.Equal(t, p.CreatedAt, updated.CreatedAt)
	require.NotNil(t, updated.UpdatedAt)
	assert.True(t, updated.UpdatedAt.After(p.CreatedAt))
	assert.Equal(t, 1, updated.Likes)
	assert.Equal(t, 1, updated.CommentsCount)

	_, err = s.UpdatePost(ctx, "missing", models.PostInput{Username: "x", Content: "y"})
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestDeletePost_Cascades(t *testing.T) {
	s, conn := newTestStore(t)
	ctx := context.Background()

	p := mustPost(t, s, "a", "hi")
	other := mustPost(t, s, "z", "keep")
	_, err := s.CreateComment(ctx, p.ID, models.CommentInput{Username: "b", Content: "c1"})
	require.NoError(t, err)
	_, err = s.Like(ctx, p.ID, "b")
	require.NoError(t, err)
	_, err = s.Like(ctx, other.ID, "b")
	require.NoError(t, err)

	require.NoError(t, s.DeletePost(ctx, p.ID))

	_, err = s.GetPost(ctx, p.ID)
	assert.ErrorIs(t, err, ErrPostNotFound)
	_, err = s.ListComments(ctx, p.ID)
	assert.ErrorIs(t, err, ErrPostNotFound)

	var n int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM comments WHERE post_id = ?`, p.ID).Scan(&n))
	assert.Zero(t, n)
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM likes WHERE post_id = ?`, p.ID).Scan(&n))
	assert.Zero(t, n)

	kept, err := s.GetPost(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, kept.Likes)
	assertCounters(t, conn, other.ID)

	assert.ErrorIs(t, s.DeletePost(ctx, p.ID), ErrPostNotFound)
}

func TestComments_Lifecycle(t *testing.T) {
	s, conn := newTestStore(t)
	ctx := context.Background()
	p := mustPost(t, s, "a", "hi")

	c1, err := s.CreateComment(ctx, p.ID, models.CommentInput{Username: "b", Content: "first"})
	require.NoError(t, err)
	assert.Equal(t, p.ID, c1.PostID)
	assert.Nil(t, c1.UpdatedAt)
	c2, err := s.CreateComment(ctx, p.ID, models.CommentInput{Username: "c", Content: "second"})
	require.NoError(t, err)

	post, err := s.GetPost(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, post.CommentsCount)
	assertCounters(t, conn, p.ID)

	list, err := s.ListComments(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, c1.ID, list[0].ID, "comments are oldest first")
	assert.Equal(t, c2.ID, list[1].ID)

	got, err := s.GetComment(ctx, p.ID, c1.ID)
	require.NoError(t, err)
	assert.Equal(t, c1, got)

	updated, err := s.UpdateComment(ctx, p.ID, c1.ID, models.CommentInput{Username: "b2", Content: "edited"})
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)
	assert.Equal(t, c1.CreatedAt, updated.CreatedAt)
	require.NotNil(t, updated.UpdatedAt)

	require.NoError(t, s.DeleteComment(ctx, p.ID, c1.ID))
	post, err = s.GetPost(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, post.CommentsCount)
	assertCounters(t, conn, p.ID)

	assert.ErrorIs(t, s.DeleteComment(ctx, p.ID, c1.ID), ErrCommentNotFound)
	post, err = s.GetPost(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, post.CommentsCount, "failed delete must not touch the counter")
}

func TestComments_NotFound(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	p := mustPost(t, s, "a", "hi")
	other := mustPost(t, s, "b", "other")
	c, err := s.CreateComment(ctx, p.ID, models.CommentInput{Username: "b", Content: "x"})
	require.NoError(t, err)

	_, err = s.ListComments(ctx, "missing")
	assert.ErrorIs(t, err, ErrPostNotFound)

	_, err = s.CreateComment(ctx, "missing", models.CommentInput{Username: "b", Content: "x"})
	assert.ErrorIs(t, err, ErrPostNotFound)

	_, err = s.GetComment(ctx, "missing", c.ID)
	assert.ErrorIs(t, err, ErrPostNotFound)

	// a comment is only reachable under its own post
	_, err = s.GetComment(ctx, other.ID, c.ID)
	assert.ErrorIs(t, err, ErrCommentNotFound)
	_, err = s.UpdateComment(ctx, other.ID, c.ID, models.CommentInput{Username: "b", Content: "y"})
	assert.ErrorIs(t, err, ErrCommentNotFound)
	assert.ErrorIs(t, s.DeleteComment(ctx, other.ID, c.ID), ErrCommentNotFound)

	otherPost, err := s.GetPost(ctx, other.ID)
	require.NoError(t, err)
	assert.Zero(t, otherPost.CommentsCount)
}

func TestLike_Twice(t *testing.T) {
	s, conn := newTestStore(t)
	ctx := context.Background()
	p := mustPost(t, s, "a", "hi")

	res, err := s.Like(ctx, p.ID, "b")
	require.NoError(t, err)
	assert.Equal(t, models.LikeResult{PostID: p.ID, Username: "b", TotalLikes: 1}, *res)

	_, err = s.Like(ctx, p.ID, "b")
	assert.ErrorIs(t, err, ErrAlreadyLiked)

	post, err := s.GetPost(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, post.Likes)
	assertCounters(t, conn, p.ID)

	res, err = s.Like(ctx, p.ID, "c")
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalLikes)
}

func TestUnlike(t *testing.T) {
	s, conn := newTestStore(t)
	ctx := context.Background()
	p := mustPost(t, s, "a", "hi")

	assert.ErrorIs(t, s.Unlike(ctx, p.ID, "b"), ErrNotLiked)

	_, err := s.Like(ctx, p.ID, "b")
	require.NoError(t, err)
	require.NoError(t, s.Unlike(ctx, p.ID, "b"))

	post, err := s.GetPost(ctx, p.ID)
	require.NoError(t, err)
	assert.Zero(t, post.Likes)
	assertCounters(t, conn, p.ID)

	assert.ErrorIs(t, s.Unlike(ctx, p.ID, "b"), ErrNotLiked)
	post, err = s.GetPost(ctx, p.ID)
	require.NoError(t, err)
	assert.Zero(t, post.Likes)
}

func TestLikes_PostNotFound(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.Like(ctx, "missing", "b")
	assert.ErrorIs(t, err, ErrPostNotFound)
	assert.ErrorIs(t, s.Unlike(ctx, "missing", "b"), ErrPostNotFound)
	_, err = s.Likers(ctx, "missing")
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestLikers(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	p := mustPost(t, s, "a", "hi")

	names, err := s.Likers(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, names)

	for _, u := range []string{"zed", "amy", "kim"} {
		_, err := s.Like(ctx, p.ID, u)
		require.NoError(t, err)
	}
	names, err = s.Likers(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"amy", "kim", "zed"}, names)
}

func TestLike_ConcurrentSameUser(t *testing.T) {
	s, conn := newTestStore(t)
	ctx := context.Background()
	p := mustPost(t, s, "a", "hi")

	const workers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
		already int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Like(ctx, p.ID, "b")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				success++
			case assert.ErrorIs(t, err, ErrAlreadyLiked):
				already++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, success)
	assert.Equal(t, workers-1, already)
	assertCounters(t, conn, p.ID)
}

func TestRebind(t *testing.T) {
	pg := &Store{postgres: true}
	assert.Equal(t, "SELECT 1 FROM posts WHERE id = $1 AND x = $2", pg.q("SELECT 1 FROM posts WHERE id = ? AND x = ?"))

	lite := &Store{}
	assert.Equal(t, "WHERE id = ?", lite.q("WHERE id = ?"))
}

func TestTimeRoundTrip(t *testing.T) {
	ts := time.Date(2024, 3, 4, 5, 6, 7, 8000, time.UTC)
	s := formatTime(ts)
	assert.Equal(t, "2024-03-04T05:06:07.000008Z", s)

	back, err := parseTime(s)
	require.NoError(t, err)
	assert.True(t, ts.Equal(back))

	_, err = parseTime("yesterday")
	assert.Error(t, err)
}

func TestStore_Postgres(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	conn, err := db.Open(ctx, db.DriverPostgres, dsn)
	require.NoError(t, err, "Failed to connect to test database")
	defer func() { _ = conn.Close() }()
	require.NoError(t, db.Reset(ctx, conn, db.DriverPostgres, nil))

	s := New(conn, db.DriverPostgres)
	p := mustPost(t, s, "a", "hi")

	_, err = s.CreateComment(ctx, p.ID, models.CommentInput{Username: "b", Content: "x"})
	require.NoError(t, err)
	res, err := s.Like(ctx, p.ID, "b")
	require.NoError(t, err)
	assert.Equal(t, 1, res.TotalLikes)
	_, err = s.Like(ctx, p.ID, "b")
	assert.ErrorIs(t, err, ErrAlreadyLiked)

	got, err := s.GetPost(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Likes)
	assert.Equal(t, 1, got.CommentsCount)

	require.NoError(t, s.DeletePost(ctx, p.ID))
	_, err = s.GetPost(ctx, p.ID)
	assert.ErrorIs(t, err, ErrPostNotFound)
}
