package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"blog-api/models"
	"blog-api/store"
	"blog-api/validation"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock advances by step on every read.
type fakeClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

func newTestService(t *testing.T, step time.Duration) (*PostService, *store.MemoryStore, *fakeClock) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	clock := &fakeClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), step: step}
	st := store.NewMemoryStore()
	return NewPostService(st, log, WithClock(clock.Now)), st, clock
}

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }

func validInput() models.CreatePostInput {
	return models.CreatePostInput{Title: "Hi", Content: "World", Author: "A"}
}

func TestCreateDefaultsAndTimestamps(t *testing.T) {
	svc, _, _ := newTestService(t, time.Second)
	ctx := context.Background()

	post, err := svc.Create(ctx, validInput())
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, post.ID)
	assert.True(t, post.Published, "published defaults to true")
	assert.Equal(t, post.CreatedAt, post.UpdatedAt)
	assert.Equal(t, time.UTC, post.CreatedAt.Location())

	in := validInput()
	in.Published = boolPtr(false)
	draft, err := svc.Create(ctx, in)
	require.NoError(t, err)
	assert.False(t, draft.Published)
	assert.NotEqual(t, post.ID, draft.ID)
}

func TestCreateGeneratesUniqueIDs(t *testing.T) {
	svc, _, _ := newTestService(t, time.Millisecond)
	ctx := context.Background()

	seen := make(map[uuid.UUID]bool)
	for i := 0; i < 50; i++ {
		post, err := svc.Create(ctx, validInput())
		require.NoError(t, err)
		assert.False(t, seen[post.ID])
		seen[post.ID] = true
	}
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	svc, st, _ := newTestService(t, time.Second)
	ctx := context.Background()

	_, err := svc.Create(ctx, models.CreatePostInput{Title: strings.Repeat("x", 201), Content: "c", Author: "a"})
	var verr *validation.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "title", verr.Errors[0].Field)

	posts, err := st.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, posts, "invalid input must not be persisted")
}

func TestGetByIDNotFound(t *testing.T) {
	svc, _, _ := newTestService(t, time.Second)
	_, err := svc.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestUpdateAppliesOnlyProvidedFields(t *testing.T) {
	svc, _, _ := newTestService(t, time.Second)
	ctx := context.Background()

	created, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, models.UpdatePostInput{Published: boolPtr(false)})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.Equal(t, "Hi", updated.Title)
	assert.Equal(t, "World", updated.Content)
	assert.Equal(t, "A", updated.Author)
	assert.False(t, updated.Published)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

	got, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got)

	updated, err = svc.Update(ctx, created.ID, models.UpdatePostInput{Title: strPtr("Hello"), Author: strPtr("B")})
	require.NoError(t, err)
	assert.Equal(t, "Hello", updated.Title)
	assert.Equal(t, "B", updated.Author)
	assert.False(t, updated.Published)
}

func TestUpdateNeverMovesUpdatedAtBackwards(t *testing.T) {
	svc, _, clock := newTestService(t, 0)
	ctx := context.Background()

	created, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	clock.mu.Lock()
	clock.now = clock.now.Add(-time.Hour)
	clock.mu.Unlock()

	updated, err := svc.Update(ctx, created.ID, models.UpdatePostInput{Title: strPtr("skewed")})
	require.NoError(t, err)
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))
	assert.False(t, updated.CreatedAt.After(updated.UpdatedAt))
}

func TestUpdateErrors(t *testing.T) {
	svc, _, _ := newTestService(t, time.Second)
	ctx := context.Background()

	_, err := svc.Update(ctx, uuid.New(), models.UpdatePostInput{Title: strPtr("x")})
	assert.ErrorIs(t, err, ErrPostNotFound)

	created, err := svc.Create(ctx, validInput())
	require.NoError(t, err)
	_, err = svc.Update(ctx, created.ID, models.UpdatePostInput{Content: strPtr("")})
	var verr *validation.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "content", verr.Errors[0].Field)
}

func TestDelete(t *testing.T) {
	svc, _, _ := newTestService(t, time.Second)
	ctx := context.Background()

	created, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, ErrPostNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, created.ID), ErrPostNotFound)
	_, err = svc.Update(ctx, created.ID, models.UpdatePostInput{})
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestListAllNewestFirst(t *testing.T) {
	svc, _, _ := newTestService(t, time.Second)
	ctx := context.Background()

	for _, title := range []string{"one", "two", "three"} {
		in := validInput()
		in.Title = title
		_, err := svc.Create(ctx, in)
		require.NoError(t, err)
	}

	posts, err := svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, []string{"three", "two", "one"}, []string{posts[0].Title, posts[1].Title, posts[2].Title})
	for i := 1; i < len(posts); i++ {
		assert.False(t, posts[i].CreatedAt.After(posts[i-1].CreatedAt))
	}
}

type failingStore struct {
	store.Store
	err error
}

func (f failingStore) ListAll(context.Context) ([]models.Post, error) { return nil, f.err }
func (f failingStore) GetByID(context.Context, uuid.UUID) (models.Post, error) {
	return models.Post{}, f.err
}
func (f failingStore) Ping(context.Context) error { return f.err }

func TestStoreFailuresPropagate(t *testing.T) {
	boom := errors.New("store unavailable")
	svc := NewPostService(failingStore{err: boom}, logrus.New())
	ctx := context.Background()

	_, err := svc.ListAll(ctx)
	assert.ErrorIs(t, err, boom)

	_, err = svc.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrPostNotFound)

	assert.ErrorIs(t, svc.Ping(ctx), boom)
}

func TestOperationsAreCounted(t *testing.T) {
	svc, _, _ := newTestService(t, time.Second)
	ctx := context.Background()

	before := testutil.ToFloat64(postOperations.WithLabelValues("get", "not_found"))
	_, _ = svc.GetByID(ctx, uuid.New())
	assert.Equal(t, before+1, testutil.ToFloat64(postOperations.WithLabelValues("get", "not_found")))

	before = testutil.ToFloat64(postOperations.WithLabelValues("create", "invalid"))
	_, _ = svc.Create(ctx, models.CreatePostInput{})
	assert.Equal(t, before+1, testutil.ToFloat64(postOperations.WithLabelValues("create", "invalid")))
}
