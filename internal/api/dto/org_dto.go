package dto

import (
	"time"

	"engage/internal/model"
)

// ==================== 登录 ====================

// LoginResp 登录响应
type LoginResp struct {
	AccessToken string      `json:"access_token"`
	ExpiresAt   time.Time   `json:"expires_at"`
	User        *model.User `json:"user"`
}

// MeResp 当前用户
type MeResp struct {
	User         *model.User         `json:"user"`
	Organization *model.Organization `json:"organization"`
}

// ==================== 组织 ====================

// OrganizationReq 创建/更新组织
type OrganizationReq struct {
	Name string `json:"name" binding:"required,max=200"`
}

// ==================== 成员 ====================

// UserInviteReq 邀请用户加入组织
type UserInviteReq struct {
	Email string `json:"email" binding:"required,email,max=255"`
	Role  string `json:"role" binding:"omitempty,user_role"`
}

// UserRoleReq 修改角色
type UserRoleReq struct {
	Role string `json:"role" binding:"required,user_role"`
}
