package stats

import (
	"context"
	"log/slog"
	"time"
)

const (
	defaultBatchSize = 100
	defaultInterval  = time.Second
	flushTimeout     = 5 * time.Second
)

// batcher 攒批写入 sink：满 size 条或每隔 interval 刷一次，
// events 关闭或 ctx 结束时把剩余的刷掉再返回。
type batcher struct {
	sink     Sink
	size     int
	interval time.Duration
	name     string
}

func (b batcher) run(ctx context.Context, events <-chan ClickEvent) {
	batch := make([]ClickEvent, 0, b.size)
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			b.flush(batch)
			return
		case e, ok := <-events:
			if !ok {
				b.flush(batch)
				return
			}
			batch = append(batch, e)
			if len(batch) >= b.size {
				b.flush(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				b.flush(batch)
				batch = batch[:0]
			}
		}
	}
}

// flush 用独立 context，退出时 ctx 已经取消也要写完
func (b batcher) flush(batch []ClickEvent) {
	if len(batch) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	if err := b.sink.Write(ctx, batch); err != nil {
		slog.Error(b.name+": flush failed", "count", len(batch), "err", err)
		return
	}
	slog.Debug(b.name+": flushed", "count", len(batch))
}
