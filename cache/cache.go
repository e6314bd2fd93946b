// Package cache holds rendered public GET responses until their path or one of
// their tags is revalidated.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rpupo63/portfolio-cms/config"
)

// Entry is a stored response.
type Entry struct {
	Status      int       `json:"status"`
	ContentType string    `json:"content_type"`
	Body        []byte    `json:"body"`
	StoredAt    time.Time `json:"stored_at"`
}

// ErrStale is returned by Set when the path or a tag was invalidated after the
// caller read its generation.
var ErrStale = errors.New("cache entry is stale")

// Store keeps entries indexed by request path and by tag so either can be
// invalidated in one call. Every invalidation bumps a generation counter for
// the path or tag.
type Store interface {
	Get(ctx context.Context, key string) (*Entry, bool, error)
	// Generation sums the counters of path and tags. Take it before rendering a
	// response and hand it to Set.
	Generation(ctx context.Context, path string, tags []string) (int64, error)
	// Set stores entry unless the generation moved since the caller read it, in
	// which case it returns ErrStale and stores nothing.
	Set(ctx context.Context, key, path string, tags []string, entry Entry, ttl time.Duration, generation int64) error
	// InvalidatePath drops every entry stored under path and reports how many went.
	InvalidatePath(ctx context.Context, path string) (int, error)
	// InvalidateTag drops every entry carrying tag and reports how many went.
	InvalidateTag(ctx context.Context, tag string) (int, error)
	Close() error
}

// New builds the store named by CACHE_DRIVER.
func New(ctx context.Context, settings config.Settings) (Store, error) {
	switch settings.CacheDriver {
	case "", "memory":
		return NewMemory(), nil
	case "redis":
		client, err := NewRedisClient(ctx, settings.RedisURL)
		if err != nil {
			return nil, err
		}
		return NewRedis(client, "portfolio:cache"), nil
	default:
		return nil, fmt.Errorf("unknown CACHE_DRIVER %q", settings.CacheDriver)
	}
}

// NewRedisClient accepts either a redis:// URL or a bare host:port.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	if addr == "" {
		return nil, fmt.Errorf("REDIS_URL is not set for the redis cache driver")
	}

	var client *redis.Client
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		opt, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{Addr: addr})
	}

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func pathGeneration(path string) string { return "path:" + path }
func tagGeneration(tag string) string   { return "tag:" + tag }

// NormalizePath trims trailing slashes so "/api/projects/" and "/api/projects" share entries.
func NormalizePath(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
		if p == "" {
			p = "/"
		}
	}
	return p
}
