package service

import (
	"context"

	"engage/internal/model"
	"engage/internal/repository"
)

// ==================== 资源类型 ====================

// ResourceType 受租户隔离保护的资源类型
type ResourceType string

const (
	ResourceLead          ResourceType = "lead"
	ResourceGroup         ResourceType = "group"
	ResourceActivityType  ResourceType = "activity_type"
	ResourceLeadStatus    ResourceType = "lead_status"
	ResourcePaymentType   ResourceType = "payment_type"
	ResourceEvent         ResourceType = "event"
	ResourceParticipation ResourceType = "participation"
	ResourcePayment       ResourceType = "payment"
	ResourceActivity      ResourceType = "activity"
)

type resourceSpec struct {
	model    interface{}
	notFound *AppError
}

var resources = map[ResourceType]resourceSpec{
	ResourceLead:          {&model.Lead{}, ErrLeadNotFound},
	ResourceGroup:         {&model.Group{}, ErrGroupNotFound},
	ResourceActivityType:  {&model.ActivityType{}, ErrActivityTypeNotFound},
	ResourceLeadStatus:    {&model.LeadStatus{}, ErrLeadStatusNotFound},
	ResourcePaymentType:   {&model.PaymentType{}, ErrPaymentTypeNotFound},
	ResourceEvent:         {&model.Event{}, ErrEventNotFound},
	ResourceParticipation: {&model.EventParticipation{}, ErrParticipationNotFound},
	ResourcePayment:       {&model.Payment{}, ErrPaymentNotFound},
	ResourceActivity:      {&model.LeadActivity{}, ErrActivityNotFound},
}

// ==================== AccessGuard ====================

// AccessGuard 租户归属检查
// 资源不存在与属于其他租户一律视为不存在（404），不区分
type AccessGuard struct {
	store *repository.Store
}

// NewAccessGuard 创建归属检查
func NewAccessGuard(store *repository.Store) *AccessGuard {
	return &AccessGuard{store: store}
}

// WithTx 绑定到事务内的仓储，检查与后续写入看到同一快照
func (g *AccessGuard) WithTx(tx *repository.Store) *AccessGuard {
	return &AccessGuard{store: tx}
}

// CheckAccess 资源是否属于调用方组织
func (g *AccessGuard) CheckAccess(ctx context.Context, tenant *Tenant, id int64, rt ResourceType) (bool, error) {
	spec, ok := resources[rt]
	if !ok {
		return false, Internal("check access", errUnknownResource(rt))
	}
	if id <= 0 {
		return false, nil
	}
	n, err := g.store.Scope.CountOwned(ctx, spec.model, tenant.OrgID(), []int64{id})
	if err != nil {
		return false, Internal("check access", err)
	}
	return n == 1, nil
}

// Require 资源不属于调用方组织时返回对应的 NotFound
func (g *AccessGuard) Require(ctx context.Context, tenant *Tenant, id int64, rt ResourceType) error {
	ok, err := g.CheckAccess(ctx, tenant, id, rt)
	if err != nil {
		return err
	}
	if !ok {
		return resources[rt].notFound
	}
	return nil
}

// RequireAll 一组 ID 必须全部属于调用方组织
// 返回去重后的 ID 列表（保持首次出现的顺序）
func (g *AccessGuard) RequireAll(ctx context.Context, tenant *Tenant, ids []int64, rt ResourceType) ([]int64, error) {
	spec, ok := resources[rt]
	if !ok {
		return nil, Internal("check access", errUnknownResource(rt))
	}

	unique := dedupeIDs(ids)
	if len(unique) == 0 {
		return unique, nil
	}
	for _, id := range unique {
		if id <= 0 {
			return nil, spec.notFound
		}
	}

	n, err := g.store.Scope.CountOwned(ctx, spec.model, tenant.OrgID(), unique)
	if err != nil {
		return nil, Internal("check access", err)
	}
	if n != int64(len(unique)) {
		return nil, spec.notFound
	}
	return unique, nil
}

// RequireRole 同租户内角色校验，不满足返回 403
func (g *AccessGuard) RequireRole(tenant *Tenant, roles ...model.UserRole) error {
	if !tenant.HasRole(roles...) {
		return ErrRoleDenied
	}
	return nil
}

func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

type errUnknownResource ResourceType

func (e errUnknownResource) Error() string {
	return "unknown resource type: " + string(e)
}
