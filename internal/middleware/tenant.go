package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"engage/internal/model"
	"engage/internal/service"
)

// ==================== 租户上下文 ====================

const (
	ContextKeyTenant = "tenant"
	ContextKeyUser   = "user"
)

// abortWithError 以统一格式中止请求
func abortWithError(c *gin.Context, err error) {
	appErr := service.AsAppError(err)
	if appErr.Kind == service.KindInternal {
		GetLogger(c).Error("租户解析失败", zap.Error(err))
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(appErr.HTTPStatus(), gin.H{
		"code":  appErr.HTTPStatus(),
		"error": appErr.Message,
	})
}

// CurrentUser 解析会话对应的用户，不要求已加入组织
// 用于 /me、创建组织等入口
func CurrentUser(tenants *service.TenantService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := tenants.LookupUser(c.Request.Context(), GetEmail(c))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.Set(ContextKeyUser, user)
		c.Next()
	}
}

// TenantContext 解析 (用户, 组织)，之后的处理器都在该组织范围内
// 未加入组织返回 404，前端据此引导创建组织
func TenantContext(tenants *service.TenantService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenant, err := tenants.Resolve(c.Request.Context(), GetEmail(c))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.Set(ContextKeyUser, tenant.User)
		c.Set(ContextKeyTenant, tenant)
		c.Next()
	}
}

// GetTenant 获取当前租户（TenantContext 之后可用）
func GetTenant(c *gin.Context) *service.Tenant {
	if v, ok := c.Get(ContextKeyTenant); ok {
		if t, ok := v.(*service.Tenant); ok {
			return t
		}
	}
	return nil
}

// GetUser 获取当前用户
func GetUser(c *gin.Context) *model.User {
	if v, ok := c.Get(ContextKeyUser); ok {
		if u, ok := v.(*model.User); ok {
			return u
		}
	}
	return nil
}
