package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"blog-api/models"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	listCacheKey  = "posts"
	postKeyPrefix = "post:"

	// CacheTime bounds how long an entry another instance failed to
	// invalidate can be served.
	CacheTime = 5 * time.Minute
)

// CachedStore is a read-through Redis cache in front of another Store.
// Writes drop the affected keys before and after the wrapped write.
// Redis failures never fail a request; they are logged and the wrapped store answers.
type CachedStore struct {
	next   Store
	client *redis.Client
	ttl    time.Duration
	log    logrus.FieldLogger
	keys   *keyTracker
}

var _ Store = (*CachedStore)(nil)
var _ Pinger = (*CachedStore)(nil)

func NewCachedStore(next Store, client *redis.Client, log logrus.FieldLogger) *CachedStore {
	return &CachedStore{next: next, client: client, ttl: CacheTime, log: log, keys: newKeyTracker()}
}

func postKey(id uuid.UUID) string {
	return postKeyPrefix + id.String()
}

func (s *CachedStore) ListAll(ctx context.Context) ([]models.Post, error) {
	gen := s.keys.generation(listCacheKey)

	var posts []models.Post
	if s.get(ctx, listCacheKey, &posts) {
		return posts, nil
	}

	posts, err := s.next.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	s.set(ctx, listCacheKey, posts, gen)
	return posts, nil
}

func (s *CachedStore) GetByID(ctx context.Context, id uuid.UUID) (models.Post, error) {
	key := postKey(id)
	gen := s.keys.generation(key)

	var post models.Post
	if s.get(ctx, key, &post) {
		return post, nil
	}

	post, err := s.next.GetByID(ctx, id)
	if err != nil {
		return models.Post{}, err
	}
	s.set(ctx, key, post, gen)
	return post, nil
}

func (s *CachedStore) Insert(ctx context.Context, post models.Post) (models.Post, error) {
	var created models.Post
	err := s.write(ctx, func() (err error) {
		created, err = s.next.Insert(ctx, post)
		return err
	}, postKey(post.ID), listCacheKey)
	return created, err
}

func (s *CachedStore) UpdateByID(ctx context.Context, id uuid.UUID, post models.Post) (models.Post, error) {
	var updated models.Post
	err := s.write(ctx, func() (err error) {
		updated, err = s.next.UpdateByID(ctx, id, post)
		return err
	}, postKey(id), listCacheKey)
	return updated, err
}

func (s *CachedStore) DeleteByID(ctx context.Context, id uuid.UUID) error {
	return s.write(ctx, func() error {
		return s.next.DeleteByID(ctx, id)
	}, postKey(id), listCacheKey)
}

func (s *CachedStore) Ping(ctx context.Context) error {
	if p, ok := s.next.(Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			return err
		}
	}
	return s.client.Ping(ctx).Err()
}

// write runs fn between two invalidations of keys. Generations are bumped on
// both sides of fn so a read that raced the write drops what it cached.
func (s *CachedStore) write(ctx context.Context, fn func() error, keys ...string) error {
	s.keys.bump(keys...)
	s.invalidate(ctx, keys...)

	err := fn()

	s.keys.bump(keys...)
	s.invalidate(ctx, keys...)
	return err
}

func (s *CachedStore) get(ctx context.Context, key string, dest interface{}) bool {
	if s.keys.isDirty(key) {
		// A failed invalidation left this key possibly stale in Redis.
		if !s.invalidate(ctx, key) {
			return false
		}
	}

	cached, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.WithError(err).WithField("key", key).Warn("error reading from Redis cache")
		}
		return false
	}
	if err := json.Unmarshal(cached, dest); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("error unmarshalling cached data")
		return false
	}
	return true
}

// set caches value unless a write to key started after gen was read.
func (s *CachedStore) set(ctx context.Context, key string, value interface{}, gen uint64) {
	if s.keys.generation(key) != gen || s.keys.isDirty(key) {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("error setting Redis cache")
		return
	}

	if s.keys.generation(key) != gen {
		s.invalidate(ctx, key)
	}
}

// invalidate deletes keys from Redis. Keys it could not delete are marked
// dirty and bypass the cache until a later delete succeeds.
func (s *CachedStore) invalidate(ctx context.Context, keys ...string) bool {
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		s.log.WithError(err).WithField("keys", keys).Warn("error clearing Redis cache")
		s.keys.markDirty(keys...)
		return false
	}
	s.keys.clearDirty(keys...)
	return true
}

// keyTracker holds per key write generations and the keys whose last
// invalidation failed.
type keyTracker struct {
	mu    sync.Mutex
	gens  map[string]uint64
	dirty map[string]struct{}
}

func newKeyTracker() *keyTracker {
	return &keyTracker{gens: make(map[string]uint64), dirty: make(map[string]struct{})}
}

func (k *keyTracker) generation(key string) uint64 {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.gens[key]
}

func (k *keyTracker) bump(keys ...string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	for _, key := range keys {
		k.gens[key]++
	}
}

func (k *keyTracker) isDirty(key string) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	_, ok := k.dirty[key]
	return ok
}

func (k *keyTracker) markDirty(keys ...string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	for _, key := range keys {
		k.dirty[key] = struct{}{}
	}
}

func (k *keyTracker) clearDirty(keys ...string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	for _, key := range keys {
		delete(k.dirty, key)
	}
}
