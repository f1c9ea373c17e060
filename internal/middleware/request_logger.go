package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ==================== 请求日志 ====================

const (
	ContextKeyLogger    = "logger"
	ContextKeyRequestID = "request_id"
	HeaderRequestID     = "X-Request-ID"
)

// maxLoggedPath 路径过长时截断，避免伪造超长 path 撑大日志
const maxLoggedPath = 1024

// RequestLogger 访问日志中间件
// 每个请求分配 request_id，并把带 request_id 的 logger 放入上下文
func RequestLogger(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(HeaderRequestID, requestID)

		path := c.Request.URL.Path
		if len(path) > maxLoggedPath {
			path = path[:maxLoggedPath]
		}

		reqLogger := base.With(zap.String("request_id", requestID))
		c.Set(ContextKeyRequestID, requestID)
		c.Set(ContextKeyLogger, reqLogger)

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", c.Request.URL.RawQuery),
			zap.Int("status", c.Writer.Status()),
			zap.String("client_ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
		}
		if userID := GetUserID(c); userID > 0 {
			fields = append(fields, zap.Int64("user_id", userID))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			reqLogger.Error("请求处理失败", fields...)
		case status >= 400:
			reqLogger.Warn("请求被拒绝", fields...)
		default:
			reqLogger.Info("请求完成", fields...)
		}
	}
}

// GetLogger 获取请求级 logger，未经过 RequestLogger 时返回全局 logger
func GetLogger(c *gin.Context) *zap.Logger {
	if l, ok := c.Get(ContextKeyLogger); ok {
		if logger, ok := l.(*zap.Logger); ok {
			return logger
		}
	}
	return zap.L()
}
