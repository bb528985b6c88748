package ratelimit

import (
	"sync"
	"time"
)

// DefaultLimit 每窗口默认请求上限
const DefaultLimit = 10

// Decision 单次限流判定结果
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration // 仅在拒绝时有意义
}

// window 某个 key 的固定窗口计数。
// 同一时刻每个 key 只有一个窗口，过期后整体替换而不是合并。
type window struct {
	start time.Time
	count int
}

// Limiter 按 key 的固定窗口限流器。
// 固定窗口允许在窗口边界出现突发（最坏 2x limit），这里不追求精确滑动窗口。
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window
	limit   int
	size    time.Duration

	now func() time.Time // 测试时可替换
}

// New 创建限流器，size 为窗口长度（通常 1 小时）
func New(limit int, size time.Duration) *Limiter {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if size <= 0 {
		size = time.Hour
	}
	return &Limiter{
		windows: make(map[string]*window),
		limit:   limit,
		size:    size,
		now:     time.Now,
	}
}

// Limit 返回每窗口请求上限
func (l *Limiter) Limit() int {
	return l.limit
}

// Allow 判定并记录一次请求。对同一 key 的读改写在锁内完成，保证原子性
func (l *Limiter) Allow(key string) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= l.size {
		// 新窗口，计数从 1 开始
		w = &window{start: now, count: 1}
		l.windows[key] = w
		return Decision{
			Allowed:   true,
			Limit:     l.limit,
			Remaining: l.limit - 1,
			ResetAt:   w.start.Add(l.size),
		}
	}

	resetAt := w.start.Add(l.size)
	if w.count >= l.limit {
		return Decision{
			Allowed:    false,
			Limit:      l.limit,
			Remaining:  0,
			ResetAt:    resetAt,
			RetryAfter: resetAt.Sub(now),
		}
	}

	w.count++
	return Decision{
		Allowed:   true,
		Limit:     l.limit,
		Remaining: l.limit - w.count,
		ResetAt:   resetAt,
	}
}

// Cleanup 删除已过期的窗口，返回删除数量
func (l *Limiter) Cleanup() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for k, w := range l.windows {
		if now.Sub(w.start) >= l.size {
			delete(l.windows, k)
			removed++
		}
	}
	return removed
}
