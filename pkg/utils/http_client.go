package utils

import (
	"time"

	"github.com/go-resty/resty/v2"
)

// ClientOptions 出站 HTTP 客户端参数
type ClientOptions struct {
	Timeout    time.Duration
	RetryCount int
	ProxyURL   string // 为空则直连
	Debug      bool
}

// NewHTTPClient 创建配置好超时、重试和代理的 Resty 客户端
// 它是全系统统一的出站请求入口
func NewHTTPClient(opts ClientOptions) *resty.Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	client := resty.New().
		SetDebug(opts.Debug).
		SetTimeout(opts.Timeout).
		SetHeader("User-Agent", "Engage/1.0")

	if opts.RetryCount > 0 {
		client.SetRetryCount(opts.RetryCount).
			SetRetryWaitTime(200 * time.Millisecond).
			AddRetryCondition(func(r *resty.Response, err error) bool {
				return err != nil || r.StatusCode() >= 500
			})
	}

	if opts.ProxyURL != "" {
		client.SetProxy(opts.ProxyURL)
	}

	return client
}
