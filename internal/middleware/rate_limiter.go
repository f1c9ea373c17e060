package middleware

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ==================== RateLimiter 按键限流器 ====================

// RateLimiter 按键（通常为客户端 IP）分配令牌桶
// 公开报名接口无需登录，用它挡住脚本刷量
type RateLimiter struct {
	limit   rate.Limit
	burst   int
	idleTTL time.Duration

	entries sync.Map // key -> *limiterEntry
	now     func() time.Time
}

// limiterEntry 令牌桶条目
type limiterEntry struct {
	limiter  *rate.Limiter
	mu       sync.Mutex
	lastSeen time.Time
}

// NewRateLimiter 创建限流器
// rps: 每秒补充的令牌数；burst: 桶容量
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if rps <= 0 {
		rps = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		limit:   rate.Limit(rps),
		burst:   burst,
		idleTTL: 10 * time.Minute,
		now:     time.Now,
	}
}

// ==================== 限流检查 ====================

// CheckResult 检查结果
type CheckResult struct {
	Allowed    bool          // 是否允许
	RetryAfter time.Duration // 需等待时间
}

// Check 消耗一个令牌
func (r *RateLimiter) Check(key string) CheckResult {
	actual, _ := r.entries.LoadOrStore(key, &limiterEntry{
		limiter: rate.NewLimiter(r.limit, r.burst),
	})
	entry := actual.(*limiterEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	now := r.now()
	entry.lastSeen = now

	reservation := entry.limiter.ReserveN(now, 1)
	if !reservation.OK() {
		return CheckResult{Allowed: false, RetryAfter: time.Second}
	}
	if delay := reservation.DelayFrom(now); delay > 0 {
		// 不排队，直接拒绝并归还令牌
		reservation.CancelAt(now)
		return CheckResult{Allowed: false, RetryAfter: delay}
	}
	return CheckResult{Allowed: true}
}

// Reset 重置指定 key
func (r *RateLimiter) Reset(key string) {
	r.entries.Delete(key)
}

// Sweep 清理长时间未访问的条目，返回清理数量
func (r *RateLimiter) Sweep() int {
	cutoff := r.now().Add(-r.idleTTL)
	removed := 0
	r.entries.Range(func(key, value interface{}) bool {
		entry := value.(*limiterEntry)
		entry.mu.Lock()
		idle := entry.lastSeen.Before(cutoff)
		entry.mu.Unlock()
		if idle {
			r.entries.Delete(key)
			removed++
		}
		return true
	})
	return removed
}
