package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Redis stores entries as JSON strings and keeps one set per path and per tag
// listing the entry keys that belong to it.
type Redis struct {
	rdb    *redis.Client
	prefix string
}

func NewRedis(rdb *redis.Client, prefix string) *Redis {
	return &Redis{rdb: rdb, prefix: prefix}
}

func (c *Redis) entryKey(key string) string { return c.prefix + ":entry:" + key }
func (c *Redis) pathKey(path string) string { return c.prefix + ":path:" + NormalizePath(path) }
func (c *Redis) tagKey(tag string) string   { return c.prefix + ":tag:" + tag }
func (c *Redis) genKey(name string) string  { return c.prefix + ":gen:" + name }

func (c *Redis) genKeys(path string, tags []string) []string {
	keys := make([]string, 0, len(tags)+1)
	keys = append(keys, c.genKey(pathGeneration(NormalizePath(path))))
	for _, tag := range tags {
		keys = append(keys, c.genKey(tagGeneration(tag)))
	}
	return keys
}

type multiGetter interface {
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
}

func sumGenerations(ctx context.Context, rdb multiGetter, keys []string) (int64, error) {
	vals, err := rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return 0, err
	}
	var gen int64
	for _, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, err
		}
		gen += n
	}
	return gen, nil
}

func (c *Redis) Get(ctx context.Context, key string) (*Entry, bool, error) {
	s, err := c.rdb.Get(ctx, c.entryKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var entry Entry
	if err := json.Unmarshal(s, &entry); err != nil {
		// corrupt entry: treat as a miss
		log.Warn().Err(err).Str("key", key).Msg("Dropping unreadable cache entry")
		_ = c.rdb.Del(ctx, c.entryKey(key)).Err()
		return nil, false, nil
	}
	return &entry, true, nil
}

func (c *Redis) Generation(ctx context.Context, path string, tags []string) (int64, error) {
	return sumGenerations(ctx, c.rdb, c.genKeys(path, tags))
}

// Set watches the generation keys so an invalidation racing the write aborts it.
func (c *Redis) Set(ctx context.Context, key, path string, tags []string, entry Entry, ttl time.Duration, generation int64) error {
	b, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	genKeys := c.genKeys(path, tags)
	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := sumGenerations(ctx, tx, genKeys)
		if err != nil {
			return err
		}
		if current != generation {
			return ErrStale
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, c.entryKey(key), b, ttl)
			c.indexKey(ctx, pipe, c.pathKey(path), key, ttl)
			for _, tag := range tags {
				c.indexKey(ctx, pipe, c.tagKey(tag), key, ttl)
			}
			return nil
		})
		return err
	}, genKeys...)
	if errors.Is(err, redis.TxFailedErr) {
		return ErrStale
	}
	return err
}

// index sets outlive their entries by at most one ttl; stale members only cost a no-op DEL
func (c *Redis) indexKey(ctx context.Context, pipe redis.Pipeliner, set, key string, ttl time.Duration) {
	pipe.SAdd(ctx, set, key)
	if ttl > 0 {
		pipe.Expire(ctx, set, ttl)
	}
}

func (c *Redis) InvalidatePath(ctx context.Context, path string) (int, error) {
	if err := c.rdb.Incr(ctx, c.genKey(pathGeneration(NormalizePath(path)))).Err(); err != nil {
		return 0, err
	}
	return c.dropSet(ctx, c.pathKey(path))
}

func (c *Redis) InvalidateTag(ctx context.Context, tag string) (int, error) {
	if err := c.rdb.Incr(ctx, c.genKey(tagGeneration(tag))).Err(); err != nil {
		return 0, err
	}
	return c.dropSet(ctx, c.tagKey(tag))
}

func (c *Redis) dropSet(ctx context.Context, set string) (int, error) {
	members, err := c.rdb.SMembers(ctx, set).Result()
	if err != nil {
		return 0, err
	}

	keys := make([]string, 0, len(members)+1)
	for _, m := range members {
		keys = append(keys, c.entryKey(m))
	}
	keys = append(keys, set)

	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		return 0, err
	}
	return len(members), nil
}

func (c *Redis) Close() error { return c.rdb.Close() }
