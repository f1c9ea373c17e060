package utils

import (
	"sync"
	"time"
)

// 使用 sync.Map 保证并发安全
var (
	memoryCache sync.Map
)

// cacheItem 内部结构，包含值和过期时间
type cacheItem struct {
	value      string
	expiration int64
}

// stateTTL 登录 state 有效期，足够完成一次授权流程
const stateTTL = 10 * time.Minute

// SetCache 设置缓存
// key: OAuth state
// value: PKCE verifier
func SetCache(key string, value string) {
	exp := time.Now().Add(stateTTL).Unix()

	memoryCache.Store(key, cacheItem{
		value:      value,
		expiration: exp,
	})
}

// GetCache 获取缓存并验证是否过期
func GetCache(key string) (string, bool) {
	val, ok := memoryCache.Load(key)
	if !ok {
		return "", false
	}

	item := val.(cacheItem)

	// 检查是否过期
	if time.Now().Unix() > item.expiration {
		memoryCache.Delete(key) // 懒删除
		return "", false
	}

	return item.value, true
}

// DeleteCache 删除缓存 (用完即焚)
func DeleteCache(key string) {
	memoryCache.Delete(key)
}

// SweepCache 清理已过期但从未读取的 state，返回清理数量
func SweepCache() int {
	now := time.Now().Unix()
	n := 0
	memoryCache.Range(func(key, val interface{}) bool {
		if item, ok := val.(cacheItem); ok && now > item.expiration {
			memoryCache.Delete(key)
			n++
		}
		return true
	})
	return n
}
