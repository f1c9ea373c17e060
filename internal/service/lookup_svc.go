package service

import (
	"context"
	"errors"
	"strings"

	"engage/internal/api/dto"
	"engage/internal/model"
	"engage/internal/repository"
)

// ==================== LookupService 字典维护 ====================

// LookupService 线索状态、活动类型、入金方式
// 读取所有成员可用，增删改需要 manager 以上
type LookupService struct {
	store *repository.Store
	guard *AccessGuard
}

// NewLookupService 创建字典服务
func NewLookupService(store *repository.Store, guard *AccessGuard) *LookupService {
	return &LookupService{store: store, guard: guard}
}

func (s *LookupService) requireEditor(tenant *Tenant) error {
	return s.guard.RequireRole(tenant, model.RoleAdmin, model.RoleManager)
}

// mapRepoErr 仓储错误 -> 业务错误
func mapRepoErr(op string, err error, notFound *AppError) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return notFound
	}
	return Internal(op, err)
}

// ---------- LeadStatus ----------

// ListLeadStatuses 线索状态列表（按 sort_order）
func (s *LookupService) ListLeadStatuses(ctx context.Context, tenant *Tenant) ([]model.LeadStatus, error) {
	list, err := s.store.LeadStatuses.List(ctx, tenant.OrgID())
	if err != nil {
		return nil, Internal("list lead statuses", err)
	}
	return list, nil
}

// CreateLeadStatus 创建线索状态
func (s *LookupService) CreateLeadStatus(ctx context.Context, tenant *Tenant, req *dto.LeadStatusReq) (*model.LeadStatus, error) {
	if err := s.requireEditor(tenant); err != nil {
		return nil, err
	}
	status := &model.LeadStatus{
		TenantScoped: model.TenantScoped{OrganizationID: tenant.OrgID()},
		Name:         strings.TrimSpace(req.Name),
		Color:        req.Color,
		SortOrder:    req.SortOrder,
	}
	if err := s.store.LeadStatuses.Create(ctx, status); err != nil {
		return nil, Internal("create lead status", err)
	}
	return status, nil
}

// UpdateLeadStatus 更新线索状态
func (s *LookupService) UpdateLeadStatus(ctx context.Context, tenant *Tenant, id int64, req *dto.LeadStatusReq) (*model.LeadStatus, error) {
	if err := s.requireEditor(tenant); err != nil {
		return nil, err
	}
	err := s.store.LeadStatuses.UpdateFields(ctx, tenant.OrgID(), id, map[string]interface{}{
		"name":       strings.TrimSpace(req.Name),
		"color":      req.Color,
		"sort_order": req.SortOrder,
	})
	if err := mapRepoErr("update lead status", err, ErrLeadStatusNotFound); err != nil {
		return nil, err
	}
	status, err := s.store.LeadStatuses.GetByID(ctx, tenant.OrgID(), id)
	return status, mapRepoErr("get lead status", err, ErrLeadStatusNotFound)
}

// DeleteLeadStatus 删除线索状态，引用它的线索状态置空
func (s *LookupService) DeleteLeadStatus(ctx context.Context, tenant *Tenant, id int64) error {
	if err := s.requireEditor(tenant); err != nil {
		return err
	}
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Leads.ClearStatus(ctx, tenant.OrgID(), id); err != nil {
			return err
		}
		return tx.LeadStatuses.Delete(ctx, tenant.OrgID(), id)
	})
	return mapRepoErr("delete lead status", err, ErrLeadStatusNotFound)
}

// ---------- ActivityType ----------

// ListActivityTypes 活动类型列表
func (s *LookupService) ListActivityTypes(ctx context.Context, tenant *Tenant) ([]model.ActivityType, error) {
	list, err := s.store.ActivityTypes.ListAll(ctx, tenant.OrgID())
	if err != nil {
		return nil, Internal("list activity types", err)
	}
	return list, nil
}

// CreateActivityType 创建活动类型（point >= 1）
func (s *LookupService) CreateActivityType(ctx context.Context, tenant *Tenant, req *dto.ActivityTypeReq) (*model.ActivityType, error) {
	if err := s.requireEditor(tenant); err != nil {
		return nil, err
	}
	if req.Point < 1 {
		return nil, Validation("ポイントは1以上で入力してください")
	}
	name := strings.TrimSpace(req.Name)
	if name == model.PaymentActivityTypeName {
		return nil, ErrReservedActivityType
	}
	t := &model.ActivityType{
		TenantScoped: model.TenantScoped{OrganizationID: tenant.OrgID()},
		Name:         name,
		Point:        req.Point,
		Color:        req.Color,
	}
	if err := s.store.ActivityTypes.Create(ctx, t); err != nil {
		return nil, Internal("create activity type", err)
	}
	return t, nil
}

// UpdateActivityType 更新活动类型，「入金」不可修改
func (s *LookupService) UpdateActivityType(ctx context.Context, tenant *Tenant, id int64, req *dto.ActivityTypeReq) (*model.ActivityType, error) {
	if err := s.requireEditor(tenant); err != nil {
		return nil, err
	}
	if req.Point < 1 {
		return nil, Validation("ポイントは1以上で入力してください")
	}
	current, err := s.store.ActivityTypes.GetByID(ctx, tenant.OrgID(), id)
	if err := mapRepoErr("get activity type", err, ErrActivityTypeNotFound); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if current.Name == model.PaymentActivityTypeName || name == model.PaymentActivityTypeName {
		return nil, ErrReservedActivityType
	}

	err = s.store.ActivityTypes.UpdateFields(ctx, tenant.OrgID(), id, map[string]interface{}{
		"name":  name,
		"point": req.Point,
		"color": req.Color,
	})
	if err := mapRepoErr("update activity type", err, ErrActivityTypeNotFound); err != nil {
		return nil, err
	}
	t, err := s.store.ActivityTypes.GetByID(ctx, tenant.OrgID(), id)
	return t, mapRepoErr("get activity type", err, ErrActivityTypeNotFound)
}

// DeleteActivityType 删除未被引用的活动类型
func (s *LookupService) DeleteActivityType(ctx context.Context, tenant *Tenant, id int64) error {
	if err := s.requireEditor(tenant); err != nil {
		return err
	}
	return s.store.Transaction(ctx, func(tx *repository.Store) error {
		current, err := tx.ActivityTypes.GetByID(ctx, tenant.OrgID(), id)
		if err := mapRepoErr("get activity type", err, ErrActivityTypeNotFound); err != nil {
			return err
		}
		if current.Name == model.PaymentActivityTypeName {
			return ErrReservedActivityType
		}
		n, err := tx.ActivityTypes.CountUsage(ctx, tenant.OrgID(), id)
		if err != nil {
			return Internal("count activity type usage", err)
		}
		if n > 0 {
			return ErrTypeInUse
		}
		return mapRepoErr("delete activity type", tx.ActivityTypes.Delete(ctx, tenant.OrgID(), id), ErrActivityTypeNotFound)
	})
}

// ---------- PaymentType ----------

// ListPaymentTypes 入金方式列表
func (s *LookupService) ListPaymentTypes(ctx context.Context, tenant *Tenant) ([]model.PaymentType, error) {
	list, err := s.store.PaymentTypes.ListAll(ctx, tenant.OrgID())
	if err != nil {
		return nil, Internal("list payment types", err)
	}
	return list, nil
}

// CreatePaymentType 创建入金方式
func (s *LookupService) CreatePaymentType(ctx context.Context, tenant *Tenant, req *dto.PaymentTypeReq) (*model.PaymentType, error) {
	if err := s.requireEditor(tenant); err != nil {
		return nil, err
	}
	t := &model.PaymentType{
		TenantScoped: model.TenantScoped{OrganizationID: tenant.OrgID()},
		Name:         strings.TrimSpace(req.Name),
	}
	if err := s.store.PaymentTypes.Create(ctx, t); err != nil {
		return nil, Internal("create payment type", err)
	}
	return t, nil
}

// UpdatePaymentType 更新入金方式
func (s *LookupService) UpdatePaymentType(ctx context.Context, tenant *Tenant, id int64, req *dto.PaymentTypeReq) (*model.PaymentType, error) {
	if err := s.requireEditor(tenant); err != nil {
		return nil, err
	}
	err := s.store.PaymentTypes.UpdateFields(ctx, tenant.OrgID(), id, map[string]interface{}{
		"name": strings.TrimSpace(req.Name),
	})
	if err := mapRepoErr("update payment type", err, ErrPaymentTypeNotFound); err != nil {
		return nil, err
	}
	t, err := s.store.PaymentTypes.GetByID(ctx, tenant.OrgID(), id)
	return t, mapRepoErr("get payment type", err, ErrPaymentTypeNotFound)
}

// DeletePaymentType 删除未被引用的入金方式
func (s *LookupService) DeletePaymentType(ctx context.Context, tenant *Tenant, id int64) error {
	if err := s.requireEditor(tenant); err != nil {
		return err
	}
	return s.store.Transaction(ctx, func(tx *repository.Store) error {
		n, err := tx.PaymentTypes.CountUsage(ctx, tenant.OrgID(), id)
		if err != nil {
			return Internal("count payment type usage", err)
		}
		if n > 0 {
			return ErrTypeInUse
		}
		return mapRepoErr("delete payment type", tx.PaymentTypes.Delete(ctx, tenant.OrgID(), id), ErrPaymentTypeNotFound)
	})
}

// ==================== GroupService 分组 ====================

// GroupService 分组维护（所有成员可用）
type GroupService struct {
	store *repository.Store
}

// NewGroupService 创建分组服务
func NewGroupService(store *repository.Store) *GroupService {
	return &GroupService{store: store}
}

// GroupDetail 分组及成员
type GroupDetail struct {
	*model.Group
	Leads []model.Lead `json:"leads"`
}

// List 分组列表
func (s *GroupService) List(ctx context.Context, tenant *Tenant) ([]model.Group, error) {
	list, err := s.store.Groups.ListAll(ctx, tenant.OrgID())
	if err != nil {
		return nil, Internal("list groups", err)
	}
	return list, nil
}

// Get 分组详情（含成员）
func (s *GroupService) Get(ctx context.Context, tenant *Tenant, id int64) (*GroupDetail, error) {
	group, err := s.store.Groups.GetByID(ctx, tenant.OrgID(), id)
	if err := mapRepoErr("get group", err, ErrGroupNotFound); err != nil {
		return nil, err
	}
	leads, err := s.store.Memberships.LeadsByGroup(ctx, tenant.OrgID(), id)
	if err != nil {
		return nil, Internal("list group leads", err)
	}
	return &GroupDetail{Group: group, Leads: leads}, nil
}

// Create 创建分组
func (s *GroupService) Create(ctx context.Context, tenant *Tenant, req *dto.GroupReq) (*model.Group, error) {
	g := &model.Group{
		TenantScoped: model.TenantScoped{OrganizationID: tenant.OrgID()},
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
	}
	if err := s.store.Groups.Create(ctx, g); err != nil {
		return nil, Internal("create group", err)
	}
	return g, nil
}

// Update 更新分组
func (s *GroupService) Update(ctx context.Context, tenant *Tenant, id int64, req *dto.GroupReq) (*model.Group, error) {
	err := s.store.Groups.UpdateFields(ctx, tenant.OrgID(), id, map[string]interface{}{
		"name":        strings.TrimSpace(req.Name),
		"description": req.Description,
	})
	if err := mapRepoErr("update group", err, ErrGroupNotFound); err != nil {
		return nil, err
	}
	g, err := s.store.Groups.GetByID(ctx, tenant.OrgID(), id)
	return g, mapRepoErr("get group", err, ErrGroupNotFound)
}

// Delete 删除分组及成员关系（线索本身保留）
func (s *GroupService) Delete(ctx context.Context, tenant *Tenant, id int64) error {
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		return tx.Groups.DeleteWithMembers(ctx, tenant.OrgID(), id)
	})
	return mapRepoErr("delete group", err, ErrGroupNotFound)
}
