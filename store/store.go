// Package store persists posts. Implementations are interchangeable behind Store.
package store

import (
	"context"
	"errors"

	"blog-api/models"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no post has the requested id.
var ErrNotFound = errors.New("post not found")

// Store is the persistence capability the post service depends on.
type Store interface {
	// ListAll returns every post, newest first.
	ListAll(ctx context.Context) ([]models.Post, error)
	GetByID(ctx context.Context, id uuid.UUID) (models.Post, error)
	Insert(ctx context.Context, post models.Post) (models.Post, error)
	// UpdateByID overwrites the mutable columns of the post with the given id.
	UpdateByID(ctx context.Context, id uuid.UUID, post models.Post) (models.Post, error)
	DeleteByID(ctx context.Context, id uuid.UUID) error
}

// Pinger is implemented by stores that can report backend reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}
