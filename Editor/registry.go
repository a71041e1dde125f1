package Editor

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

var ErrSessionNotFound = errors.New("La sesión de edición expiró o no existe")

// Registry keeps open editor sessions between requests.
type Registry interface {
	Get(ctx context.Context, id string) (*Session, error)
	Put(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

// MemoryRegistry keeps sessions in process. Every Put restarts the TTL.
type MemoryRegistry struct {
	cache *gocache.Cache
	ttl   time.Duration
}

func NewMemoryRegistry(ttl time.Duration) *MemoryRegistry {
	return &MemoryRegistry{
		cache: gocache.New(ttl, ttl),
		ttl:   ttl,
	}
}

func (r *MemoryRegistry) Get(_ context.Context, id string) (*Session, error) {
	v, ok := r.cache.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return v.(*Session).Clone(), nil
}

func (r *MemoryRegistry) Put(_ context.Context, s *Session) error {
	r.cache.Set(s.ID, s.Clone(), r.ttl)
	return nil
}

func (r *MemoryRegistry) Delete(_ context.Context, id string) error {
	r.cache.Delete(id)
	return nil
}

// RedisRegistry shares sessions between server instances.
type RedisRegistry struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisRegistry(client *redis.Client, ttl time.Duration) *RedisRegistry {
	return &RedisRegistry{client: client, ttl: ttl}
}

func sessionKey(id string) string {
	return "riderbross:editor:" + id
}

func (r *RedisRegistry) Get(ctx context.Context, id string) (*Session, error) {
	data, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *RedisRegistry) Put(ctx context.Context, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, sessionKey(s.ID), data, r.ttl).Err()
}

func (r *RedisRegistry) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, sessionKey(id)).Err()
}
