package shortlink

import (
	"context"
	"errors"
	"time"
)

var (
	ErrLinkNotFound    = errors.New("link not found")
	ErrAlreadyDisabled = errors.New("link already disabled")
	// ErrLinkDisabled 同一个 URL 再次创建时，已有记录处于禁用状态
	ErrLinkDisabled = errors.New("link disabled")
)

// Link 是短链的领域对象。Code 总是 CodeOf(ID)，不单独存储。
type Link struct {
	ID   int64
	Code string
	URL  string
}

// Meta 是短链的完整元数据。
type Meta struct {
	ID         int64     `json:"id"`
	Code       string    `json:"code"`
	URL        string    `json:"url"`
	Disabled   bool      `json:"disabled"`
	ClickCount int64     `json:"click_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Click struct {
	ID        int64     `json:"id"` // 下一页的 cursor
	ClickedAt time.Time `json:"clicked_at"`
	Referer   string    `json:"referer"`
	UserAgent string    `json:"user_agent"`
}

type StatsPage struct {
	TotalClicks  int64   `json:"total_clicks"`
	RecentClicks []Click `json:"recent_clicks"`
	NextCursor   *int64  `json:"next_cursor,omitempty"`
}

// Creator 为 URL 分配 id。同一 URL 重复创建返回同一个 Link。
type Creator interface {
	Create(ctx context.Context, url string) (Link, error)
}

// Resolver 返回 id 对应的目标 URL，未知或已禁用返回 ErrLinkNotFound。
type Resolver interface {
	Resolve(ctx context.Context, id int64) (string, error)
}

type Finder interface {
	Find(ctx context.Context, id int64) (Meta, error)
}

type Disabler interface {
	Disable(ctx context.Context, id int64) error
}

// StatsLister 按点击 id 倒序分页，cursor 为 0 表示第一页。
type StatsLister interface {
	ListStats(ctx context.Context, id int64, limit int, cursor int64) (StatsPage, error)
}
