package cache

import (
	"time"

	"github.com/dgraph-io/ristretto"
)

// LocalCache 基于 ristretto 的进程内缓存，key 为 link id，value 为目标 URL。
type LocalCache struct {
	cache    *ristretto.Cache
	ttl      time.Duration
	emptyTTL time.Duration
}

// NewLocalCache maxItems 最大条目数；每条 cost 记 1，所以 MaxCost 就是条目上限。
func NewLocalCache(maxItems int64) (*LocalCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters:        maxItems * 10, // ristretto 建议为条目数的 10 倍
		MaxCost:            maxItems,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, err
	}
	return &LocalCache{
		cache:    c,
		ttl:      5 * time.Minute, // 多实例之间只靠 TTL 收敛，不宜太长
		emptyTTL: 10 * time.Second,
	}, nil
}

func (l *LocalCache) Get(id int64) (string, bool) {
	v, ok := l.cache.Get(id)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func (l *LocalCache) Set(id int64, url string) {
	l.cache.SetWithTTL(id, url, 1, l.ttl)
}

func (l *LocalCache) SetNotFound(id int64) {
	l.cache.SetWithTTL(id, notFoundSentinel, 1, l.emptyTTL)
}

func (l *LocalCache) Del(id int64) {
	l.cache.Del(id)
}

// Wait 等待缓冲中的写入生效，测试里用。
func (l *LocalCache) Wait() {
	l.cache.Wait()
}

func (l *LocalCache) Close() {
	l.cache.Close()
}
