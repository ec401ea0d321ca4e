package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"blog-api/models"

	"github.com/google/uuid"
)

// MemoryStore keeps posts in a map. It is safe for concurrent use and is
// meant for tests and local development.
type MemoryStore struct {
	mu    sync.RWMutex
	posts map[uuid.UUID]models.Post
}

var _ Store = (*MemoryStore)(nil)
var _ Pinger = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{posts: make(map[uuid.UUID]models.Post)}
}

func (s *MemoryStore) ListAll(_ context.Context) ([]models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	posts := make([]models.Post, 0, len(s.posts))
	for _, p := range s.posts {
		posts = append(posts, p)
	}
	sort.SliceStable(posts, func(i, j int) bool {
		if posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].ID.String() > posts[j].ID.String()
		}
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

func (s *MemoryStore) GetByID(_ context.Context, id uuid.UUID) (models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	post, ok := s.posts[id]
	if !ok {
		return models.Post{}, fmt.Errorf("post %s: %w", id, ErrNotFound)
	}
	return post, nil
}

func (s *MemoryStore) Insert(_ context.Context, post models.Post) (models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.posts[post.ID]; exists {
		return models.Post{}, fmt.Errorf("post %s already exists", post.ID)
	}
	s.posts[post.ID] = post
	return post, nil
}

func (s *MemoryStore) UpdateByID(_ context.Context, id uuid.UUID, post models.Post) (models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.posts[id]
	if !ok {
		return models.Post{}, fmt.Errorf("post %s: %w", id, ErrNotFound)
	}
	post.ID = id
	post.CreatedAt = existing.CreatedAt
	s.posts[id] = post
	return post, nil
}

func (s *MemoryStore) DeleteByID(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[id]; !ok {
		return fmt.Errorf("post %s: %w", id, ErrNotFound)
	}
	delete(s.posts, id)
	return nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }
