package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"blog-api/middlewares"
	"blog-api/models"
	"blog-api/routes"
	"blog-api/services"
	"blog-api/store"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	handler := routes.SetupRoutes(routes.Options{
		Service: services.NewPostService(store.NewMemoryStore(), log),
		Log:     log,
		Metrics: middlewares.NewMetrics(),
		Cors:    middlewares.DefaultCorsConfig(nil),
	})
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", srv.Client())
}

func strPtr(s string) *string { return &s }

func TestClientLifecycle(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	posts, err := c.ListPosts(ctx)
	require.NoError(t, err)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)

	created, err := c.CreatePost(ctx, models.CreatePostInput{Title: "Hi", Content: "World", Author: "A"})
	require.NoError(t, err)
	assert.True(t, created.Published)
	assert.NotEqual(t, uuid.Nil, created.ID)

	got, err := c.GetPost(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	off := false
	updated, err := c.UpdatePost(ctx, created.ID, models.UpdatePostInput{Title: strPtr("Hello"), Published: &off})
	require.NoError(t, err)
	assert.Equal(t, "Hello", updated.Title)
	assert.False(t, updated.Published)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)

	require.NoError(t, c.DeletePost(ctx, created.ID))

	_, err = c.GetPost(ctx, created.ID)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Post not found.", apiErr.Message)
}

func TestClientValidationError(t *testing.T) {
	c := newTestClient(t)

	_, err := c.CreatePost(context.Background(), models.CreatePostInput{Title: "t"})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Validation failed", apiErr.Message)
	assert.Len(t, apiErr.Errors, 2)
	assert.False(t, IsNotFound(err))
}

func TestClientNonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL, nil).ListPosts(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "Bad Gateway", apiErr.Message)
}

func TestClientTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url, nil).ListPosts(context.Background())
	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestBaseURLFromEnv(t *testing.T) {
	t.Setenv("BLOG_API_URL", "")
	assert.Equal(t, DefaultBaseURL, BaseURLFromEnv())

	t.Setenv("BLOG_API_URL", "http://api.example.test")
	assert.Equal(t, "http://api.example.test", BaseURLFromEnv())
}
