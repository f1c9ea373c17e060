package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"engage/internal/model"
	"engage/internal/repository"
)

// GroupActivityService 分组批量活动
type GroupActivityService struct {
	store  *repository.Store
	guard  *AccessGuard
	logger *zap.Logger
}

// NewGroupActivityService 创建分组批量活动服务
func NewGroupActivityService(store *repository.Store, guard *AccessGuard, logger *zap.Logger) *GroupActivityService {
	return &GroupActivityService{store: store, guard: guard, logger: logger}
}

// ApplyGroupActivityInput 批量活动参数
type ApplyGroupActivityInput struct {
	GroupID     int64
	TypeID      int64
	Content     string
	Type        string
	ScheduledAt *time.Time
}

// Apply 为分组内每个成员记录同一活动
// 全部成员在一个事务内完成，任一成员失败则整批回滚；空分组返回空列表
func (s *GroupActivityService) Apply(ctx context.Context, tenant *Tenant, in ApplyGroupActivityInput) ([]model.LeadActivity, error) {
	if in.GroupID <= 0 || in.TypeID <= 0 {
		return nil, Validation("groupId と typeId は必須です")
	}
	if strings.TrimSpace(in.Content) == "" || strings.TrimSpace(in.Type) == "" {
		return nil, Validation("content と type は必須です")
	}

	created := make([]model.LeadActivity, 0)
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := s.guard.WithTx(tx).Require(ctx, tenant, in.GroupID, ResourceGroup); err != nil {
			return err
		}
		// 活动类型同样按组织过滤
		activityType, err := loadActivityType(ctx, tx, tenant.OrgID(), in.TypeID)
		if err != nil {
			return err
		}

		leadIDs, err := tx.Memberships.LeadIDsByGroup(ctx, tenant.OrgID(), in.GroupID)
		if err != nil {
			return Internal("list group members", err)
		}

		for _, leadID := range leadIDs {
			activity, err := recordInTx(ctx, tx, tenant, leadID, activityType, in.Content, in.Type, in.ScheduledAt)
			if err != nil {
				return err
			}
			created = append(created, *activity)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("分组活动已记录",
		zap.Int64("org_id", tenant.OrgID()),
		zap.Int64("group_id", in.GroupID),
		zap.Int("count", len(created)),
	)
	return created, nil
}
