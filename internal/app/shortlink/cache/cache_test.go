package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func newLocal(t *testing.T) *LocalCache {
	t.Helper()
	l, err := NewLocalCache(1000)
	if err != nil {
		t.Fatalf("NewLocalCache: %v", err)
	}
	t.Cleanup(l.Close)
	return l
}

func TestLocalCacheSetGet(t *testing.T) {
	l := newLocal(t)
	l.Set(123, "https://example.com")
	l.SetNotFound(124)
	l.Wait()

	if got, ok := l.Get(123); !ok || got != "https://example.com" {
		t.Fatalf("Get(123): got %q,%v", got, ok)
	}
	if got, ok := l.Get(124); !ok || got != notFoundSentinel {
		t.Fatalf("Get(124): got %q,%v, want sentinel", got, ok)
	}
	l.Del(123)
	if _, ok := l.Get(123); ok {
		t.Fatal("Get(123) after Del should miss")
	}
}

func TestLinkCacheLocalOnly(t *testing.T) {
	ctx := context.Background()
	l := newLocal(t)
	c := NewLinkCache(nil, l)

	if _, res, err := c.Get(ctx, 1); err != nil || res != Miss {
		t.Fatalf("Get on empty cache: got %v,%v, want Miss", res, err)
	}

	if err := c.Set(ctx, 1, "https://a.example"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := c.SetNotFound(ctx, 2); err != nil {
		t.Fatalf("SetNotFound: %v", err)
	}
	l.Wait()

	if url, res, _ := c.Get(ctx, 1); res != Hit || url != "https://a.example" {
		t.Fatalf("Get(1): got %q,%v, want Hit", url, res)
	}
	if url, res, _ := c.Get(ctx, 2); res != HitNegative || url != "" {
		t.Fatalf("Get(2): got %q,%v, want HitNegative", url, res)
	}

	if err := c.Delete(ctx, 1); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, res, _ := c.Get(ctx, 1); res != Miss {
		t.Fatalf("Get(1) after Delete: got %v, want Miss", res)
	}
}

func TestLinkCacheRedisError(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	defer client.Close()

	c := NewLinkCache(client, nil)
	_, res, err := c.Get(context.Background(), 7)
	if err == nil || errors.Is(err, redis.Nil) {
		t.Fatalf("Get: got err %v, want a connection error", err)
	}
	if res != Miss {
		t.Fatalf("Get: got %v, want Miss", res)
	}
}

func redisOrSkip(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: os.Getenv("REDIS_PASSWORD")})
	ctx, cancel := context.WithTimeout(context.Background(), 800*time.Millisecond)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skip: cannot connect to redis at %s: %v", addr, err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestLinkCacheRedisBackfillsLocal(t *testing.T) {
	client := redisOrSkip(t)
	ctx := context.Background()
	id := time.Now().UnixNano()
	t.Cleanup(func() { client.Del(context.Background(), redisKey(id), redisKey(id+1)) })

	writer := NewLinkCache(client, nil)
	if err := writer.Set(ctx, id, "https://b.example"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := writer.SetNotFound(ctx, id+1); err != nil {
		t.Fatalf("SetNotFound: %v", err)
	}

	local := newLocal(t)
	reader := NewLinkCache(client, local)
	if url, res, err := reader.Get(ctx, id); err != nil || res != Hit || url != "https://b.example" {
		t.Fatalf("Get via L2: got %q,%v,%v", url, res, err)
	}
	if _, res, _ := reader.Get(ctx, id+1); res != HitNegative {
		t.Fatalf("negative via L2: got %v", res)
	}

	local.Wait()
	if v, ok := local.Get(id); !ok || v != "https://b.example" {
		t.Fatalf("L1 backfill: got %q,%v", v, ok)
	}

	ttl, err := client.TTL(ctx, redisKey(id+1)).Result()
	if err != nil || ttl <= 0 || ttl > 30*time.Second {
		t.Fatalf("negative ttl: got %v,%v", ttl, err)
	}
}

func TestBloomFilter(t *testing.T) {
	b := NewBloomFilter(1000, 0.01)
	b.SetSafetyMargin(0)

	// 没有 Rebuild 过，ceiling 为 0，所有正 id 都要回源
	if !b.MightExist(42) {
		t.Fatal("empty filter must not reject ids above ceiling")
	}

	err := b.Rebuild(func(add func(int64)) error {
		for _, id := range []int64{1, 2, 3, 10} {
			add(id)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	for _, id := range []int64{1, 2, 3, 10} {
		if !b.MightExist(id) {
			t.Fatalf("MightExist(%d): got false", id)
		}
	}
	if !b.MightExist(11) {
		t.Fatal("id above ceiling must pass")
	}

	rejected := 0
	for id := int64(4); id < 10; id++ {
		if !b.MightExist(id) {
			rejected++
		}
	}
	if rejected == 0 {
		t.Fatal("expected at least one absent id below ceiling to be rejected")
	}

	b.Add(5)
	if !b.MightExist(5) {
		t.Fatal("MightExist(5) after Add: got false")
	}
}

func TestBloomRebuildKeepsOldOnError(t *testing.T) {
	b := NewBloomFilter(100, 0.01)
	b.SetSafetyMargin(0)
	_ = b.Rebuild(func(add func(int64)) error { add(7); return nil })

	boom := errors.New("db down")
	if err := b.Rebuild(func(add func(int64)) error { add(99); return boom }); !errors.Is(err, boom) {
		t.Fatalf("Rebuild: got %v, want %v", err, boom)
	}
	if !b.MightExist(7) {
		t.Fatal("old filter should be kept after failed rebuild")
	}
}

func TestBloomRebuildKeepsConcurrentAdds(t *testing.T) {
	b := NewBloomFilter(1000, 0.01)
	b.SetSafetyMargin(0)

	// 快照已经看到 101，而 100 在快照之后才提交并 Add
	err := b.Rebuild(func(add func(int64)) error {
		add(101)
		b.Add(100)
		return nil
	})
	if err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if !b.MightExist(100) {
		t.Fatal("MightExist(100): id added during rebuild reported absent")
	}
	if !b.MightExist(101) {
		t.Fatal("MightExist(101): got false")
	}

	// Rebuild 结束后 Add 不再记 pending
	b.Add(102)
	if len(b.pending) != 0 {
		t.Fatalf("pending after rebuild: got %v", b.pending)
	}
}

func TestBloomSafetyMargin(t *testing.T) {
	b := NewBloomFilter(1000, 0.01)
	b.SetSafetyMargin(50)

	err := b.Rebuild(func(add func(int64)) error {
		add(1)
		add(100)
		return nil
	})
	if err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	// 51..99 在安全边界内，可能是快照时还没提交的 id
	for id := int64(51); id < 100; id++ {
		if !b.MightExist(id) {
			t.Fatalf("MightExist(%d): id within margin must fall through", id)
		}
	}
	rejected := 0
	for id := int64(2); id <= 50; id++ {
		if !b.MightExist(id) {
			rejected++
		}
	}
	if rejected == 0 {
		t.Fatal("expected absent ids below the margin to be rejected")
	}
}
