package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var columns = []string{"id", "title", "content", "author", "published", "created_at", "updated_at"}

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresStore(db), mock
}

func TestPostgresStoreListAll(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	first, second := uuid.New(), uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + postColumns + " FROM posts ORDER BY created_at DESC")).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(second.String(), "newer", "c2", "a2", false, now, now).
			AddRow(first.String(), "older", "c1", "a1", true, now.Add(-time.Hour), now))

	posts, err := s.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, second, posts[0].ID)
	assert.Equal(t, "newer", posts[0].Title)
	assert.False(t, posts[0].Published)
	assert.Equal(t, first, posts[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreListAllEmpty(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery("SELECT .* FROM posts").WillReturnRows(sqlmock.NewRows(columns))

	posts, err := s.ListAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)
}

func TestPostgresStoreGetByID(t *testing.T) {
	s, mock := newMockStore(t)
	id := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT .* FROM posts WHERE id = \\$1").
		WithArgs(id.String()).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(id.String(), "t", "c", "a", true, now, now))

	post, err := s.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, post.ID)
	assert.Equal(t, "t", post.Title)
	assert.True(t, post.Published)

	mock.ExpectQuery("SELECT .* FROM posts WHERE id = \\$1").
		WithArgs(id.String()).
		WillReturnError(sql.ErrNoRows)
	_, err = s.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, ErrNotFound)

	mock.ExpectQuery("SELECT .* FROM posts WHERE id = \\$1").
		WithArgs(id.String()).
		WillReturnError(errors.New("connection reset"))
	_, err = s.GetByID(context.Background(), id)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreInsert(t *testing.T) {
	s, mock := newMockStore(t)
	post := newPost("hello", time.Now().UTC())

	mock.ExpectExec("INSERT INTO posts").
		WithArgs(post.ID.String(), post.Title, post.Content, post.Author, post.Published, post.CreatedAt, post.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	created, err := s.Insert(context.Background(), post)
	require.NoError(t, err)
	assert.Equal(t, post, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreUpdateByID(t *testing.T) {
	s, mock := newMockStore(t)
	post := newPost("hello", time.Now().UTC().Add(-time.Hour))
	post.Title = "changed"
	post.UpdatedAt = time.Now().UTC()

	mock.ExpectQuery("UPDATE posts").
		WithArgs(post.ID.String(), "changed", post.Content, post.Author, post.Published, post.UpdatedAt).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(post.ID.String(), "changed", post.Content, post.Author, post.Published, post.CreatedAt, post.UpdatedAt))

	updated, err := s.UpdateByID(context.Background(), post.ID, post)
	require.NoError(t, err)
	assert.Equal(t, post, updated)

	mock.ExpectQuery("UPDATE posts").WillReturnRows(sqlmock.NewRows(columns))
	_, err = s.UpdateByID(context.Background(), post.ID, post)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreDeleteByID(t *testing.T) {
	s, mock := newMockStore(t)
	id := uuid.New()

	mock.ExpectExec("DELETE FROM posts WHERE id = \\$1").
		WithArgs(id.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, s.DeleteByID(context.Background(), id))

	mock.ExpectExec("DELETE FROM posts WHERE id = \\$1").
		WithArgs(id.String()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, s.DeleteByID(context.Background(), id), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
