// Package cache is a write-through invalidation cache over redis: reads are
// addressed by deterministic keys, mutations remove whole key prefixes, and
// every entry expires after a fixed staleness window regardless. There is no
// capacity bound and no eviction policy below prefix granularity.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyspace = "talangin"

type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(rdb *redis.Client, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl}
}

// Key builds "talangin:<part>:<part>...". Struct params are serialized to
// JSON so that distinct filters address distinct entries.
func Key(parts ...any) string {
	var b strings.Builder
	b.WriteString(keyspace)
	for _, p := range parts {
		b.WriteByte(':')
		switch v := p.(type) {
		case string:
			b.WriteString(v)
		case fmt.Stringer:
			b.WriteString(v.String())
		case uint, uint64, int, int64:
			fmt.Fprint(&b, v)
		default:
			raw, err := json.Marshal(v)
			if err != nil {
				fmt.Fprintf(&b, "%v", v)
				continue
			}
			b.Write(raw)
		}
	}
	return b.String()
}

// Get probes the cache. A miss is (false, nil); decode problems are treated
// as a miss so a poisoned entry just repopulates.
func (c *Cache) Get(ctx context.Context, key string, dest any) (bool, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, nil
	}
	return true, nil
}

func (c *Cache) Set(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, raw, c.ttl).Err()
}

// GetRaw reads a plain string value, for persisted state that is not a query
// result (e.g. per-user notification check timestamps).
func (c *Cache) GetRaw(ctx context.Context, key string) (string, bool, error) {
	v, err := c.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// SetRaw stores a plain string value. ttl 0 means no expiry.
func (c *Cache) SetRaw(ctx context.Context, key, val string, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, val, ttl).Err()
}

// Invalidate removes every entry under the given key prefixes. A prefix
// matches its exact key and any key continuing with a ":" segment, so
// "talangin:userRooms:1" never touches user 10. The next read for any
// removed key repopulates from the database.
func (c *Cache) Invalidate(ctx context.Context, prefixes ...string) error {
	for _, p := range prefixes {
		iter := c.rdb.Scan(ctx, 0, p+"*", 0).Iterator()
		var keys []string
		for iter.Next(ctx) {
			if k := iter.Val(); k == p || strings.HasPrefix(k, p+":") {
				keys = append(keys, k)
			}
		}
		if err := iter.Err(); err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
	}
	return nil
}
