package middleware

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// ==================== 限流中间件 ====================

// KeyFunc 从请求中取限流键
type KeyFunc func(c *gin.Context) string

// ClientIPKey 按客户端 IP 限流
func ClientIPKey(c *gin.Context) string {
	return "ip:" + c.ClientIP()
}

// RateLimit 限流中间件
//
// 使用示例:
//
//	limiter := middleware.NewRateLimiter(5, 10)
//	public.Use(middleware.RateLimit(limiter, middleware.ClientIPKey))
func RateLimit(limiter *RateLimiter, keyFn KeyFunc) gin.HandlerFunc {
	if keyFn == nil {
		keyFn = ClientIPKey
	}
	return func(c *gin.Context) {
		result := limiter.Check(keyFn(c))
		if !result.Allowed {
			seconds := int(math.Ceil(result.RetryAfter.Seconds()))
			c.Header("Retry-After", strconv.Itoa(seconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":        http.StatusTooManyRequests,
				"error":       formatRetryMessage(result.RetryAfter),
				"retry_after": seconds,
			})
			return
		}
		c.Next()
	}
}

// ==================== 辅助函数 ====================

// formatRetryMessage 格式化重试提示信息
func formatRetryMessage(d time.Duration) string {
	seconds := int(math.Ceil(d.Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	if seconds < 60 {
		return fmt.Sprintf("リクエストが多すぎます。%d 秒後に再試行してください", seconds)
	}
	return fmt.Sprintf("リクエストが多すぎます。%d 分後に再試行してください", (seconds+59)/60)
}
