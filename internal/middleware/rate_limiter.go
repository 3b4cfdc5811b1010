package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// RateLimiter 限制单位时间窗口内的出站请求数量
type RateLimiter struct {
	mu            sync.RWMutex
	requestsCount int64
	lastReset     time.Time
	window        time.Duration
	maxRequests   int64
}

// NewRateLimiter 创建新的速率限制器
func NewRateLimiter(maxRequests int64, window time.Duration) *RateLimiter {
	return &RateLimiter{
		maxRequests: maxRequests,
		window:      window,
		lastReset:   time.Now(),
	}
}

// Check 检查是否超过限额，未超过时计数加一
func (rl *RateLimiter) Check() bool {
	if rl.maxRequests <= 0 {
		return true // 未配置上限时不限流
	}

	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	// 重置窗口周期
	if now.Sub(rl.lastReset) >= rl.window {
		rl.requestsCount = 0
		rl.lastReset = now
	}

	if rl.requestsCount < rl.maxRequests {
		rl.requestsCount++
		return true
	}

	return false
}

// Status 速率限制状态
type Status struct {
	Limit       int64
	Used        int64
	Remaining   int64
	PercentUsed float64
	ResetIn     time.Duration
}

// GetStatus 获取当前状态
func (rl *RateLimiter) GetStatus() Status {
	now := time.Now()

	rl.mu.RLock()
	defer rl.mu.RUnlock()

	remaining := rl.maxRequests - rl.requestsCount
	if remaining < 0 {
		remaining = 0
	}

	percentUsed := float64(0)
	if rl.maxRequests > 0 {
		percentUsed = float64(rl.requestsCount) / float64(rl.maxRequests) * 100
	}

	return Status{
		Limit:       rl.maxRequests,
		Used:        rl.requestsCount,
		Remaining:   remaining,
		PercentUsed: percentUsed,
		ResetIn:     rl.window - now.Sub(rl.lastReset),
	}
}

// RateLimitError 限流错误
type RateLimitError struct {
	Status Status
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded: %d/%d used, reset in %v",
		e.Status.Used, e.Status.Limit, e.Status.ResetIn.Round(time.Second))
}

// RetryWithBackoff 带退避重试的辅助函数
func RetryWithBackoff(ctx context.Context, maxRetries int, baseDelay time.Duration, fn func() error) error {
	if maxRetries <= 0 {
		maxRetries = 3
	}

	if baseDelay <= 0 {
		baseDelay = time.Second
	}

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		if lastErr = fn(); lastErr == nil {
			return nil
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		// 最后一次失败后不再等待
		if i == maxRetries-1 {
			break
		}

		// 指数退避，每次重试等待时间翻倍
		delay := time.Duration(1<<i) * baseDelay
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("已达到最大重试次数(%d): %w", maxRetries, lastErr)
}
