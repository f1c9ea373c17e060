package service

import (
	"context"
	"errors"
	"strings"

	"engage/internal/model"
	"engage/internal/repository"
)

// ==================== Tenant 调用方身份 ====================

// Tenant 已解析的调用方：用户 + 所属组织
// 所有业务操作都以它为入口，组织 ID 只从这里取
type Tenant struct {
	User         *model.User
	Organization *model.Organization
}

// OrgID 组织 ID
func (t *Tenant) OrgID() int64 {
	return t.Organization.ID
}

// UserID 用户 ID
func (t *Tenant) UserID() int64 {
	return t.User.ID
}

// Role 用户在组织内的角色
func (t *Tenant) Role() model.UserRole {
	return t.User.Role
}

// HasRole 是否具备任一角色
func (t *Tenant) HasRole(roles ...model.UserRole) bool {
	for _, r := range roles {
		if t.User.Role == r {
			return true
		}
	}
	return false
}

// ==================== TenantService ====================

// TenantService 租户解析服务
type TenantService struct {
	store *repository.Store
}

// NewTenantService 创建租户解析服务
func NewTenantService(store *repository.Store) *TenantService {
	return &TenantService{store: store}
}

// LookupUser 按会话邮箱查找用户，不要求已加入组织
func (s *TenantService) LookupUser(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, ErrUnauthenticated
	}

	user, err := s.store.Users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, Internal("lookup user", err)
	}
	return user, nil
}

// Resolve 会话邮箱 -> (用户, 组织)
// 无会话或用户不存在返回 ErrUnauthenticated，未加入组织返回 ErrTenantNotFound
func (s *TenantService) Resolve(ctx context.Context, email string) (*Tenant, error) {
	user, err := s.LookupUser(ctx, email)
	if err != nil {
		return nil, err
	}
	if user.OrganizationID == nil || user.Organization == nil {
		return nil, ErrTenantNotFound
	}
	return &Tenant{User: user, Organization: user.Organization}, nil
}
