// Package services holds the post business rules on top of a store.Store.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"blog-api/models"
	"blog-api/store"
	"blog-api/validation"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// ErrPostNotFound is returned for reads and writes against an unknown id.
var ErrPostNotFound = errors.New("post not found")

var postOperations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "blog",
		Subsystem: "posts",
		Name:      "operations_total",
		Help:      "Post service operations by outcome.",
	},
	[]string{"op", "result"},
)

// Collectors returns the service metrics for registration.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{postOperations}
}

type PostService struct {
	store store.Store
	log   logrus.FieldLogger
	now   func() time.Time
	newID func() uuid.UUID
}

type Option func(*PostService)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *PostService) { s.now = now }
}

func NewPostService(st store.Store, log logrus.FieldLogger, opts ...Option) *PostService {
	s := &PostService{
		store: st,
		log:   log,
		now:   time.Now,
		newID: uuid.New,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// timestamp matches postgres timestamptz precision so a value handed back
// from a write equals the value read later.
func (s *PostService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// ListAll returns every post, newest first.
func (s *PostService) ListAll(ctx context.Context) ([]models.Post, error) {
	posts, err := s.store.ListAll(ctx)
	record("list", err)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

func (s *PostService) GetByID(ctx context.Context, id uuid.UUID) (models.Post, error) {
	post, err := s.getByID(ctx, id)
	record("get", err)
	return post, err
}

func (s *PostService) getByID(ctx context.Context, id uuid.UUID) (models.Post, error) {
	post, err := s.store.GetByID(ctx, id)
	if err != nil {
		return models.Post{}, translate(err, "get post %s", id)
	}
	return post, nil
}

// Create validates the input, fills in id, timestamps and the published
// default, and persists the post.
func (s *PostService) Create(ctx context.Context, in models.CreatePostInput) (models.Post, error) {
	if err := validation.ValidateCreatePost(in); err != nil {
		record("create", err)
		return models.Post{}, err
	}

	now := s.timestamp()
	post := models.Post{
		ID:        s.newID(),
		Title:     in.Title,
		Content:   in.Content,
		Author:    in.Author,
		Published: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.Published != nil {
		post.Published = *in.Published
	}

	created, err := s.store.Insert(ctx, post)
	record("create", err)
	if err != nil {
		return models.Post{}, fmt.Errorf("create post: %w", err)
	}

	s.log.WithField("post_id", created.ID).Debug("post created")
	return created, nil
}

// Update applies only the provided fields. Concurrent updates are last write wins.
func (s *PostService) Update(ctx context.Context, id uuid.UUID, in models.UpdatePostInput) (models.Post, error) {
	post, err := s.update(ctx, id, in)
	record("update", err)
	return post, err
}

func (s *PostService) update(ctx context.Context, id uuid.UUID, in models.UpdatePostInput) (models.Post, error) {
	if err := validation.ValidateUpdatePost(in); err != nil {
		return models.Post{}, err
	}

	post, err := s.getByID(ctx, id)
	if err != nil {
		return models.Post{}, err
	}

	in.Apply(&post)
	now := s.timestamp()
	if now.Before(post.UpdatedAt) {
		now = post.UpdatedAt
	}
	post.UpdatedAt = now

	updated, err := s.store.UpdateByID(ctx, id, post)
	if err != nil {
		return models.Post{}, translate(err, "update post %s", id)
	}

	s.log.WithField("post_id", id).Debug("post updated")
	return updated, nil
}

// Delete removes the post permanently.
func (s *PostService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.delete(ctx, id)
	record("delete", err)
	return err
}

func (s *PostService) delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.getByID(ctx, id); err != nil {
		return err
	}
	if err := s.store.DeleteByID(ctx, id); err != nil {
		return translate(err, "delete post %s", id)
	}

	s.log.WithField("post_id", id).Debug("post deleted")
	return nil
}

// Ping reports whether the backing store is reachable.
func (s *PostService) Ping(ctx context.Context) error {
	if p, ok := s.store.(store.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func translate(err error, format string, args ...interface{}) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrPostNotFound
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

func record(op string, err error) {
	result := "ok"
	var verr *validation.ValidationError
	switch {
	case err == nil:
	case errors.Is(err, ErrPostNotFound):
		result = "not_found"
	case errors.As(err, &verr):
		result = "invalid"
	default:
		result = "error"
	}
	postOperations.WithLabelValues(op, result).Inc()
}
