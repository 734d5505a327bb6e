package stats

import (
	"sync"
	"time"

	"base62num.local/internal/platform/metrics"
)

// ClickEvent 一次成功跳转。json tag 用于 Kafka 消息体。
type ClickEvent struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	ClickedAt time.Time `json:"clicked_at"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"user_agent"`
	Referer   string    `json:"referer"`
}

// Collector 在请求路径上调用，不能阻塞。
type Collector interface {
	Collect(event ClickEvent)
	Close()
}

// ChannelCollector 进程内 channel 缓冲，满了就丢。
type ChannelCollector struct {
	mu     sync.RWMutex
	ch     chan ClickEvent
	closed bool
}

func NewChannelCollector(bufferSize int) *ChannelCollector {
	return &ChannelCollector{ch: make(chan ClickEvent, bufferSize)}
}

func (c *ChannelCollector) Collect(event ClickEvent) {
	// 读锁保证不会向已关闭的 channel 发送
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		metrics.ClickEventsDropped.Inc()
		return
	}
	select {
	case c.ch <- event:
	default:
		metrics.ClickEventsDropped.Inc()
	}
}

func (c *ChannelCollector) Events() <-chan ClickEvent {
	return c.ch
}

// Close 可重复调用。
func (c *ChannelCollector) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.ch)
}
