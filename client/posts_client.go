// Package client talks to the posts API over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"blog-api/models"
	"blog-api/validation"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// DefaultBaseURL is used when BLOG_API_URL is unset.
const DefaultBaseURL = "http://localhost:3001"

// BaseURLFromEnv returns BLOG_API_URL or DefaultBaseURL.
func BaseURLFromEnv() string {
	if v := strings.TrimSpace(os.Getenv("BLOG_API_URL")); v != "" {
		return v
	}
	return DefaultBaseURL
}

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int                     `json:"statusCode"`
	Message    string                  `json:"message"`
	Errors     []validation.FieldError `json:"errors,omitempty"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New returns a client for baseURL. A nil httpClient means http.DefaultClient.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) ListPosts(ctx context.Context) ([]models.Post, error) {
	posts := []models.Post{}
	if err := c.do(ctx, http.MethodGet, "/posts", nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (c *Client) GetPost(ctx context.Context, id uuid.UUID) (models.Post, error) {
	var post models.Post
	err := c.do(ctx, http.MethodGet, "/posts/"+id.String(), nil, &post)
	return post, err
}

func (c *Client) CreatePost(ctx context.Context, in models.CreatePostInput) (models.Post, error) {
	var post models.Post
	err := c.do(ctx, http.MethodPost, "/posts", in, &post)
	return post, err
}

func (c *Client) UpdatePost(ctx context.Context, id uuid.UUID, in models.UpdatePostInput) (models.Post, error) {
	var post models.Post
	err := c.do(ctx, http.MethodPatch, "/posts/"+id.String(), in, &post)
	return post, err
}

func (c *Client) DeletePost(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/posts/"+id.String(), nil, nil)
}

// do sends one request and decodes a 2xx body into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "marshal request")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, "create request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "read response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{}
		if len(respBody) == 0 || json.Unmarshal(respBody, apiErr) != nil {
			apiErr = &APIError{Message: http.StatusText(resp.StatusCode)}
		}
		apiErr.StatusCode = resp.StatusCode
		return apiErr
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return errors.Wrap(err, "decode response")
	}
	return nil
}
