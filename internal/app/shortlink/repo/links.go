package repo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"base62num.local/internal/app/shortlink"
	"base62num.local/internal/app/shortlink/cache"
	"base62num.local/internal/platform/metrics"
	"base62num.local/internal/platform/trace"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrLinkNotFound    = shortlink.ErrLinkNotFound
	ErrAlreadyDisabled = shortlink.ErrAlreadyDisabled
)

// LinksRepo 在 links 表上实现 shortlink 的各个用例接口。
// cache 和 bloom 都可以为 nil。
type LinksRepo struct {
	db    *pgxpool.Pool
	cache *cache.LinkCache
	bloom *cache.BloomFilter
}

func NewLinksRepo(db *pgxpool.Pool, cache *cache.LinkCache, bloom *cache.BloomFilter) *LinksRepo {
	return &LinksRepo{db: db, cache: cache, bloom: bloom}
}

// Create 同一 URL 只占一个 id。已存在且被禁用时返回 ErrLinkDisabled。
func (r *LinksRepo) Create(ctx context.Context, url string) (shortlink.Link, error) {
	ctx, span := trace.Start(ctx, "LinksRepo.Create")
	defer span.End()

	dbctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var (
		id       int64
		disabled bool
		inserted bool
	)
	// DO UPDATE 让冲突时也能 RETURNING 已有行；xmax = 0 表示本次插入
	err := r.db.QueryRow(dbctx, `
INSERT INTO links (url) VALUES ($1)
ON CONFLICT (url) DO UPDATE SET url = EXCLUDED.url
RETURNING id, disabled, (xmax = 0)`, url).Scan(&id, &disabled, &inserted)
	if err != nil {
		slog.Error("create link failed", "err", err)
		return shortlink.Link{}, err
	}
	if disabled {
		return shortlink.Link{}, shortlink.ErrLinkDisabled
	}
	if inserted {
		metrics.LinksCreated.Inc()
	}

	if r.bloom != nil {
		r.bloom.Add(id)
	}
	// 覆盖之前可能写入的负缓存
	if r.cache != nil {
		cacheCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()
		if err := r.cache.Set(cacheCtx, id, url); err != nil {
			slog.Warn("cache set failed", "id", id, "err", err)
		}
	}
	return shortlink.Link{ID: id, Code: shortlink.CodeOf(id), URL: url}, nil
}

// Resolve 查询顺序：bloom -> L1 -> L2 -> DB。
func (r *LinksRepo) Resolve(ctx context.Context, id int64) (string, error) {
	ctx, span := trace.Start(ctx, "LinksRepo.Resolve")
	defer span.End()

	if r.bloom != nil && !r.bloom.MightExist(id) {
		metrics.CacheOperations.WithLabelValues("bloom", "reject").Inc()
		return "", ErrLinkNotFound
	}

	if r.cache != nil {
		url, res, err := r.cache.Get(ctx, id)
		switch {
		case err != nil:
			// 缓存不可用时降级到 DB
			slog.Warn("cache get failed", "id", id, "err", err)
		case res == cache.Hit:
			return url, nil
		case res == cache.HitNegative:
			return "", ErrLinkNotFound
		}
	}

	dbctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	var url string
	err := r.db.QueryRow(dbctx, `SELECT url FROM links WHERE id = $1 AND disabled = false`, id).Scan(&url)
	if errors.Is(err, pgx.ErrNoRows) {
		if r.cache != nil {
			_ = r.cache.SetNotFound(ctx, id)
		}
		return "", ErrLinkNotFound
	}
	if err != nil {
		slog.Error("resolve link failed", "id", id, "err", err)
		return "", err
	}

	if r.cache != nil {
		_ = r.cache.Set(ctx, id, url)
	}
	return url, nil
}

func (r *LinksRepo) Find(ctx context.Context, id int64) (shortlink.Meta, error) {
	dbctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	m := shortlink.Meta{ID: id, Code: shortlink.CodeOf(id)}
	err := r.db.QueryRow(dbctx,
		`SELECT url, disabled, click_count, created_at, updated_at FROM links WHERE id = $1`, id,
	).Scan(&m.URL, &m.Disabled, &m.ClickCount, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return shortlink.Meta{}, ErrLinkNotFound
	}
	if err != nil {
		slog.Error("find link failed", "id", id, "err", err)
		return shortlink.Meta{}, err
	}
	return m, nil
}

func (r *LinksRepo) Disable(ctx context.Context, id int64) error {
	dbctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	tag, err := r.db.Exec(dbctx,
		`UPDATE links SET disabled = true, updated_at = now() WHERE id = $1 AND disabled = false`, id)
	if err != nil {
		slog.Error("disable link failed", "id", id, "err", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		// 没更新到：不存在或已禁用
		var disabled bool
		err := r.db.QueryRow(dbctx, `SELECT disabled FROM links WHERE id = $1`, id).Scan(&disabled)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrLinkNotFound
		}
		if err != nil {
			return err
		}
		if disabled {
			return ErrAlreadyDisabled
		}
		return errors.New("disable link: no rows updated")
	}

	if r.cache != nil {
		if err := r.cache.Delete(ctx, id); err != nil {
			slog.Warn("cache delete failed", "id", id, "err", err)
		}
	}
	return nil
}

func (r *LinksRepo) ListStats(ctx context.Context, id int64, limit int, cursor int64) (shortlink.StatsPage, error) {
	dbctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var page shortlink.StatsPage
	err := r.db.QueryRow(dbctx, `SELECT click_count FROM links WHERE id = $1`, id).Scan(&page.TotalClicks)
	if errors.Is(err, pgx.ErrNoRows) {
		return page, ErrLinkNotFound
	}
	if err != nil {
		slog.Error("count clicks failed", "id", id, "err", err)
		return page, err
	}

	// cursor 为 0 表示第一页
	rows, err := r.db.Query(dbctx, `
SELECT id, clicked_at, referer, user_agent FROM click_stats
WHERE link_id = $1 AND ($2::bigint = 0 OR id < $2::bigint)
ORDER BY id DESC LIMIT $3`, id, cursor, limit)
	if err != nil {
		slog.Error("list clicks failed", "id", id, "err", err)
		return page, err
	}
	clicks, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (shortlink.Click, error) {
		var c shortlink.Click
		err := row.Scan(&c.ID, &c.ClickedAt, &c.Referer, &c.UserAgent)
		return c, err
	})
	if err != nil {
		slog.Error("scan clicks failed", "id", id, "err", err)
		return page, err
	}
	page.RecentClicks = clicks
	if len(clicks) == limit && limit > 0 {
		next := clicks[len(clicks)-1].ID
		page.NextCursor = &next
	}
	return page, nil
}

// WarmBloom 用 links 表里的全部 id 重建布隆过滤器。
func (r *LinksRepo) WarmBloom(ctx context.Context) error {
	if r.bloom == nil {
		return nil
	}
	start := time.Now()
	err := r.bloom.Rebuild(func(add func(int64)) error {
		rows, err := r.db.Query(ctx, `SELECT id FROM links`)
		if err != nil {
			return err
		}
		var id int64
		_, err = pgx.ForEachRow(rows, []any{&id}, func() error {
			add(id)
			return nil
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("warm bloom: %w", err)
	}
	slog.Info("bloom filter warmed", "items", r.bloom.Count(), "took", time.Since(start))
	return nil
}

// Ping 给 /readyz 用
func (r *LinksRepo) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
