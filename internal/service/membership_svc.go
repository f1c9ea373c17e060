package service

import (
	"context"

	"go.uber.org/zap"

	"engage/internal/model"
	"engage/internal/repository"
)

// MembershipService 线索-分组关系整体替换
type MembershipService struct {
	store  *repository.Store
	guard  *AccessGuard
	logger *zap.Logger
}

// NewMembershipService 创建关系服务
func NewMembershipService(store *repository.Store, guard *AccessGuard, logger *zap.Logger) *MembershipService {
	return &MembershipService{store: store, guard: guard, logger: logger}
}

// SetLeadGroups 用 groupIDs 整体替换线索所属分组
// nil 视为缺参（400），空切片清空全部关系
func (s *MembershipService) SetLeadGroups(ctx context.Context, tenant *Tenant, leadID int64, groupIDs []int64) ([]model.Group, error) {
	if groupIDs == nil {
		return nil, Validation("groupIds は必須です")
	}

	var groups []model.Group
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		guard := s.guard.WithTx(tx)
		if err := guard.Require(ctx, tenant, leadID, ResourceLead); err != nil {
			return err
		}
		ids, err := guard.RequireAll(ctx, tenant, groupIDs, ResourceGroup)
		if err != nil {
			return err
		}

		if err := tx.Memberships.ReplaceForLead(ctx, tenant.OrgID(), leadID, ids); err != nil {
			return Internal("replace lead groups", err)
		}
		groups, err = tx.Memberships.GroupsByLead(ctx, tenant.OrgID(), leadID)
		if err != nil {
			return Internal("list lead groups", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("线索分组已替换", zap.Int64("lead_id", leadID), zap.Int("count", len(groups)))
	return groups, nil
}

// SetGroupLeads 用 leadIDs 整体替换分组成员
func (s *MembershipService) SetGroupLeads(ctx context.Context, tenant *Tenant, groupID int64, leadIDs []int64) ([]model.Lead, error) {
	if leadIDs == nil {
		return nil, Validation("leadIds は必須です")
	}

	var leads []model.Lead
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		guard := s.guard.WithTx(tx)
		if err := guard.Require(ctx, tenant, groupID, ResourceGroup); err != nil {
			return err
		}
		ids, err := guard.RequireAll(ctx, tenant, leadIDs, ResourceLead)
		if err != nil {
			return err
		}

		if err := tx.Memberships.ReplaceForGroup(ctx, tenant.OrgID(), groupID, ids); err != nil {
			return Internal("replace group leads", err)
		}
		leads, err = tx.Memberships.LeadsByGroup(ctx, tenant.OrgID(), groupID)
		if err != nil {
			return Internal("list group leads", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("分组成员已替换", zap.Int64("group_id", groupID), zap.Int("count", len(leads)))
	return leads, nil
}
