package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"engage/internal/api/dto"
	"engage/internal/model"
	"engage/internal/repository"
)

// ==================== OrganizationService 组织 ====================

// OrganizationService 组织的创建、维护与删除
type OrganizationService struct {
	store  *repository.Store
	guard  *AccessGuard
	logger *zap.Logger
}

// NewOrganizationService 创建组织服务
func NewOrganizationService(store *repository.Store, guard *AccessGuard, logger *zap.Logger) *OrganizationService {
	return &OrganizationService{store: store, guard: guard, logger: logger}
}

// Create 未加入组织的用户创建组织并成为 admin
// 同时写入「入金」活动类型，入金登记依赖它
func (s *OrganizationService) Create(ctx context.Context, user *model.User, req *dto.OrganizationReq) (*model.Organization, error) {
	if user.OrganizationID != nil {
		return nil, ErrAlreadyInOrganization
	}

	org := &model.Organization{Name: strings.TrimSpace(req.Name)}
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Organizations.Create(ctx, org); err != nil {
			return Internal("create organization", err)
		}
		paymentType := &model.ActivityType{
			TenantScoped: model.TenantScoped{OrganizationID: org.ID},
			Name:         model.PaymentActivityTypeName,
			Point:        1,
			Color:        "#f59e0b",
		}
		if err := tx.ActivityTypes.Create(ctx, paymentType); err != nil {
			return Internal("seed payment activity type", err)
		}
		orgID := org.ID
		if err := tx.Users.Assign(ctx, user.ID, &orgID, model.RoleAdmin); err != nil {
			return Internal("assign creator", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("组织已创建", zap.Int64("org_id", org.ID), zap.Int64("user_id", user.ID))
	return org, nil
}

// Get 当前组织
func (s *OrganizationService) Get(ctx context.Context, tenant *Tenant) (*model.Organization, error) {
	org, err := s.store.Organizations.GetByID(ctx, tenant.OrgID())
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrTenantNotFound
	}
	if err != nil {
		return nil, Internal("get organization", err)
	}
	return org, nil
}

// Update 修改组织名称（admin）
func (s *OrganizationService) Update(ctx context.Context, tenant *Tenant, req *dto.OrganizationReq) (*model.Organization, error) {
	if err := s.guard.RequireRole(tenant, model.RoleAdmin); err != nil {
		return nil, err
	}
	if err := s.store.Organizations.UpdateName(ctx, tenant.OrgID(), strings.TrimSpace(req.Name)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTenantNotFound
		}
		return nil, Internal("update organization", err)
	}
	return s.Get(ctx, tenant)
}

// Delete 删除组织及全部业务数据，成员解除归属（admin）
func (s *OrganizationService) Delete(ctx context.Context, tenant *Tenant) error {
	if err := s.guard.RequireRole(tenant, model.RoleAdmin); err != nil {
		return err
	}
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		return tx.Organizations.DeleteCascade(ctx, tenant.OrgID())
	})
	if errors.Is(err, repository.ErrNotFound) {
		return ErrTenantNotFound
	}
	if err != nil {
		return Internal("delete organization", err)
	}
	s.logger.Warn("组织已删除", zap.Int64("org_id", tenant.OrgID()), zap.Int64("by", tenant.UserID()))
	return nil
}

// ==================== MemberService 成员管理（admin） ====================

// MemberService 组织成员管理
type MemberService struct {
	store *repository.Store
	guard *AccessGuard
}

// NewMemberService 创建成员服务
func NewMemberService(store *repository.Store, guard *AccessGuard) *MemberService {
	return &MemberService{store: store, guard: guard}
}

// List 成员列表
func (s *MemberService) List(ctx context.Context, tenant *Tenant) ([]model.User, error) {
	if err := s.guard.RequireRole(tenant, model.RoleAdmin); err != nil {
		return nil, err
	}
	users, err := s.store.Users.ListByOrg(ctx, tenant.OrgID())
	if err != nil {
		return nil, Internal("list users", err)
	}
	return users, nil
}

// Invite 按邮箱邀请：不存在则预建用户，未加入组织的用户直接加入
func (s *MemberService) Invite(ctx context.Context, tenant *Tenant, req *dto.UserInviteReq) (*model.User, error) {
	if err := s.guard.RequireRole(tenant, model.RoleAdmin); err != nil {
		return nil, err
	}
	role := model.UserRole(req.Role)
	if role == "" {
		role = model.RoleUser
	}
	if !role.Valid() {
		return nil, Validation("不正なロールです")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	orgID := tenant.OrgID()

	user, err := s.store.Users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		user = &model.User{Email: email, Role: role, OrganizationID: &orgID}
		if err := s.store.Users.Create(ctx, user); err != nil {
			return nil, Internal("create invited user", err)
		}
		return user, nil
	case err != nil:
		return nil, Internal("get user", err)
	}

	if user.OrganizationID != nil {
		if *user.OrganizationID == orgID {
			return nil, ErrAlreadyInOrganization
		}
		return nil, ErrUserInOtherOrganization
	}
	if err := s.store.Users.Assign(ctx, user.ID, &orgID, role); err != nil {
		return nil, Internal("assign user", err)
	}
	user.OrganizationID, user.Role, user.Organization = &orgID, role, nil
	return user, nil
}

// UpdateRole 修改成员角色，不能修改自己的角色
func (s *MemberService) UpdateRole(ctx context.Context, tenant *Tenant, id int64, role model.UserRole) (*model.User, error) {
	if err := s.guard.RequireRole(tenant, model.RoleAdmin); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, Validation("不正なロールです")
	}
	if id == tenant.UserID() {
		return nil, DomainRule("自分のロールは変更できません")
	}
	if err := s.store.Users.UpdateRole(ctx, tenant.OrgID(), id, role); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, Internal("update role", err)
	}
	user, err := s.store.Users.GetInOrg(ctx, tenant.OrgID(), id)
	if err != nil {
		return nil, mapRepoErr("get user", err, ErrUserNotFound)
	}
	return user, nil
}

// Detach 将成员移出组织（不删除用户）
func (s *MemberService) Detach(ctx context.Context, tenant *Tenant, id int64) error {
	if err := s.guard.RequireRole(tenant, model.RoleAdmin); err != nil {
		return err
	}
	if id == tenant.UserID() {
		return ErrCannotDetachSelf
	}
	if _, err := s.store.Users.GetInOrg(ctx, tenant.OrgID(), id); err != nil {
		return mapRepoErr("get user", err, ErrUserNotFound)
	}
	if err := s.store.Users.Assign(ctx, id, nil, model.RoleUser); err != nil {
		return Internal("detach user", err)
	}
	return nil
}
