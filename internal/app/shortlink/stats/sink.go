package stats

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Sink 持久化一批点击事件。
type Sink interface {
	Write(ctx context.Context, batch []ClickEvent) error
}

// PGSink 一个事务内写 click_stats 明细并累加 links.click_count。
type PGSink struct {
	db *pgxpool.Pool
}

func NewPGSink(db *pgxpool.Pool) *PGSink {
	return &PGSink{db: db}
}

func (s *PGSink) Write(ctx context.Context, batch []ClickEvent) error {
	if len(batch) == 0 {
		return nil
	}
	b := &pgx.Batch{}
	counts := make(map[int64]int64)
	for _, e := range batch {
		b.Queue(`INSERT INTO click_stats (link_id, code, clicked_at, ip, user_agent, referer) VALUES ($1,$2,$3,$4,$5,$6)`,
			e.ID, e.Code, e.ClickedAt, e.IP, e.UserAgent, e.Referer)
		counts[e.ID]++
	}
	// 同一个 link 只更新一次
	for id, n := range counts {
		b.Queue(`UPDATE links SET click_count = click_count + $2 WHERE id = $1`, id, n)
	}

	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		br := tx.SendBatch(ctx, b)
		for i := 0; i < b.Len(); i++ {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				return fmt.Errorf("click stats batch item %d: %w", i, err)
			}
		}
		return br.Close()
	})
}
