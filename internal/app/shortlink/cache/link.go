package cache

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"base62num.local/internal/platform/metrics"
	"github.com/redis/go-redis/v9"
)

// 负缓存哨兵，URL 不可能等于它
const notFoundSentinel = "__nil__"

// Result 区分未命中和命中了负缓存。
type Result int

const (
	Miss Result = iota
	Hit
	HitNegative
)

// LinkCache 两级缓存：L1 ristretto，L2 Redis。client 为 nil 时只用 L1。
type LinkCache struct {
	client   redis.Cmdable
	local    *LocalCache
	ttl      time.Duration
	emptyTTL time.Duration
}

func NewLinkCache(client redis.Cmdable, local *LocalCache) *LinkCache {
	return &LinkCache{
		client:   client,
		local:    local,
		ttl:      time.Hour,
		emptyTTL: 30 * time.Second,
	}
}

func redisKey(id int64) string {
	return "link:" + strconv.FormatInt(id, 10)
}

func classify(v string) Result {
	if v == notFoundSentinel {
		return HitNegative
	}
	return Hit
}

func (r Result) label() string {
	switch r {
	case Hit:
		return "hit"
	case HitNegative:
		return "hit_negative"
	default:
		return "miss"
	}
}

// Get 返回 (url, Hit)、("", HitNegative) 或 ("", Miss)。
// Redis 出错时返回 Miss 和错误，调用方可以继续回源。
func (c *LinkCache) Get(ctx context.Context, id int64) (string, Result, error) {
	if c.local != nil {
		if v, ok := c.local.Get(id); ok {
			res := classify(v)
			metrics.CacheOperations.WithLabelValues("l1", res.label()).Inc()
			if res == HitNegative {
				return "", res, nil
			}
			return v, res, nil
		}
		metrics.CacheOperations.WithLabelValues("l1", "miss").Inc()
	}
	if c.client == nil {
		return "", Miss, nil
	}

	v, err := c.client.Get(ctx, redisKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		metrics.CacheOperations.WithLabelValues("l2", "miss").Inc()
		return "", Miss, nil
	}
	if err != nil {
		return "", Miss, err
	}
	res := classify(v)
	metrics.CacheOperations.WithLabelValues("l2", res.label()).Inc()

	// 回填 L1
	if c.local != nil {
		if res == HitNegative {
			c.local.SetNotFound(id)
		} else {
			c.local.Set(id, v)
		}
	}
	if res == HitNegative {
		return "", res, nil
	}
	return v, res, nil
}

func (c *LinkCache) Set(ctx context.Context, id int64, url string) error {
	if c.local != nil {
		c.local.Set(id, url)
	}
	if c.client == nil {
		return nil
	}
	return c.client.Set(ctx, redisKey(id), url, c.ttl).Err()
}

// SetNotFound 写负缓存，防止不存在的 id 反复打到 DB。
func (c *LinkCache) SetNotFound(ctx context.Context, id int64) error {
	if c.local != nil {
		c.local.SetNotFound(id)
	}
	if c.client == nil {
		return nil
	}
	return c.client.Set(ctx, redisKey(id), notFoundSentinel, c.emptyTTL).Err()
}

func (c *LinkCache) Delete(ctx context.Context, id int64) error {
	if c.local != nil {
		c.local.Del(id)
	}
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, redisKey(id)).Err()
}

func (c *LinkCache) Close() {
	if c.local != nil {
		c.local.Close()
		slog.Info("local cache closed")
	}
}
