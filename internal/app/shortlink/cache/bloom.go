package cache

import (
	"encoding/binary"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

// DefaultSafetyMargin 快照里最大 id 往下这么多个 id 不给"一定不存在"的结论。
// BIGSERIAL 按分配顺序给号，但事务提交顺序不同，快照时可能还有更小的 id 没提交。
const DefaultSafetyMargin int64 = 10_000

// BloomFilter 记录已存在的 link id，用来挡掉对不存在 id 的查询。
//
// 只对 id <= ceiling 给出"一定不存在"，ceiling = 最近一次 Rebuild 见过的最大 id - margin。
// 更大的 id 一律回源，包括其它实例在快照之后创建的。
type BloomFilter struct {
	rebuildMu sync.Mutex // 同一时间只有一个 Rebuild

	mu         sync.RWMutex
	filter     *bloom.BloomFilter
	ceiling    int64
	margin     int64
	rebuilding bool
	pending    []int64 // Rebuild 期间 Add 的 id，换入前补进新过滤器

	expectedItems uint
	fpRate        float64
}

// NewBloomFilter expectedItems 预期元素数量，falsePositiveRate 误判率（建议 0.01）
func NewBloomFilter(expectedItems uint, falsePositiveRate float64) *BloomFilter {
	return &BloomFilter{
		filter:        bloom.NewWithEstimates(expectedItems, falsePositiveRate),
		margin:        DefaultSafetyMargin,
		expectedItems: expectedItems,
		fpRate:        falsePositiveRate,
	}
}

// SetSafetyMargin 下次 Rebuild 起生效，负数按 0 处理。
func (b *BloomFilter) SetSafetyMargin(margin int64) {
	if margin < 0 {
		margin = 0
	}
	b.mu.Lock()
	b.margin = margin
	b.mu.Unlock()
}

func idKey(id int64) []byte {
	var k [8]byte
	binary.BigEndian.PutUint64(k[:], uint64(id))
	return k[:]
}

// Add 加入一个 id，不改变 ceiling。
func (b *BloomFilter) Add(id int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.filter.Add(idKey(id))
	if b.rebuilding {
		b.pending = append(b.pending, id)
	}
}

// MightExist 返回 false 表示一定不存在。
func (b *BloomFilter) MightExist(id int64) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if id > b.ceiling {
		return true
	}
	return b.filter.Test(idKey(id))
}

// Rebuild 用 fill 提供的 id 构建新的过滤器后整体替换；fill 出错时保留旧过滤器。
// fill 执行期间的 Add 会同时进入新旧两个过滤器。
func (b *BloomFilter) Rebuild(fill func(add func(id int64)) error) error {
	b.rebuildMu.Lock()
	defer b.rebuildMu.Unlock()

	b.mu.Lock()
	b.rebuilding = true
	b.pending = nil
	b.mu.Unlock()

	next := bloom.NewWithEstimates(b.expectedItems, b.fpRate)
	var maxID int64
	err := fill(func(id int64) {
		next.Add(idKey(id))
		if id > maxID {
			maxID = id
		}
	})

	b.mu.Lock()
	defer b.mu.Unlock()
	pending := b.pending
	b.rebuilding = false
	b.pending = nil
	if err != nil {
		return err
	}
	for _, id := range pending {
		next.Add(idKey(id))
	}
	b.filter = next
	b.ceiling = maxID - b.margin
	return nil
}

// Count 返回已添加元素数量（估算）
func (b *BloomFilter) Count() uint32 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.filter.ApproximatedSize()
}
