package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"engage/internal/model"
	"engage/internal/repository"
)

// ==================== ActivityService 活动记录 ====================

// ActivityService 活动记录与评价分累计
type ActivityService struct {
	store  *repository.Store
	guard  *AccessGuard
	logger *zap.Logger
}

// NewActivityService 创建活动服务
func NewActivityService(store *repository.Store, guard *AccessGuard, logger *zap.Logger) *ActivityService {
	return &ActivityService{store: store, guard: guard, logger: logger}
}

// RecordActivityInput 记录活动参数
type RecordActivityInput struct {
	LeadID      int64
	TypeID      int64
	Description string
	Type        string
	ScheduledAt *time.Time
}

func (in RecordActivityInput) validate() error {
	if in.LeadID <= 0 || in.TypeID <= 0 {
		return Validation("leadId と typeId は必須です")
	}
	if strings.TrimSpace(in.Description) == "" || strings.TrimSpace(in.Type) == "" {
		return Validation("description と type は必須です")
	}
	return nil
}

// Record 记录一条活动并累加评价分
// 插入活动与 evaluation 自增在同一事务内，任一步失败整体回滚
func (s *ActivityService) Record(ctx context.Context, tenant *Tenant, in RecordActivityInput) (*model.LeadActivity, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var created *model.LeadActivity
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := s.guard.WithTx(tx).Require(ctx, tenant, in.LeadID, ResourceLead); err != nil {
			return err
		}
		activityType, err := loadActivityType(ctx, tx, tenant.OrgID(), in.TypeID)
		if err != nil {
			return err
		}

		created, err = recordInTx(ctx, tx, tenant, in.LeadID, activityType, in.Description, in.Type, in.ScheduledAt)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("活动已记录",
		zap.Int64("org_id", tenant.OrgID()),
		zap.Int64("lead_id", in.LeadID),
		zap.Int64("activity_id", created.ID),
		zap.Int("point", created.Point),
	)
	return created, nil
}

// List 活动列表，指定 lead 时先做归属检查
func (s *ActivityService) List(ctx context.Context, tenant *Tenant, filter repository.ActivityFilter) ([]model.LeadActivity, int64, error) {
	if filter.LeadID > 0 {
		if err := s.guard.Require(ctx, tenant, filter.LeadID, ResourceLead); err != nil {
			return nil, 0, err
		}
	}
	filter.OrgID = tenant.OrgID()

	list, total, err := s.store.Activities.List(ctx, filter)
	if err != nil {
		return nil, 0, Internal("list activities", err)
	}
	return list, total, nil
}

// Delete 删除活动并扣回其贡献的评价分
// 入金生成的活动从未计分，也不允许单独删除（随入金一起删除）
func (s *ActivityService) Delete(ctx context.Context, tenant *Tenant, id int64) error {
	return s.store.Transaction(ctx, func(tx *repository.Store) error {
		activity, err := tx.Activities.GetByID(ctx, tenant.OrgID(), id)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrActivityNotFound
		}
		if err != nil {
			return Internal("get activity", err)
		}
		if activity.PaymentID != nil {
			return DomainRule("入金に紐づく活動は入金から削除してください")
		}

		if err := tx.Activities.Delete(ctx, tenant.OrgID(), id); err != nil {
			return Internal("delete activity", err)
		}
		// 按记录时的分值扣回，活动类型分值之后的修改不影响
		if activity.Point == 0 {
			return nil
		}
		if err := tx.Leads.IncrementEvaluation(ctx, tenant.OrgID(), activity.LeadID, -activity.Point); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrLeadNotFound
			}
			return Internal("revert evaluation", err)
		}
		return nil
	})
}

// ==================== 事务内辅助 ====================

// loadActivityType 按组织读取活动类型
func loadActivityType(ctx context.Context, tx *repository.Store, orgID, typeID int64) (*model.ActivityType, error) {
	activityType, err := tx.ActivityTypes.GetByID(ctx, orgID, typeID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrActivityTypeNotFound
	}
	if err != nil {
		return nil, Internal("get activity type", err)
	}
	return activityType, nil
}

// recordInTx 插入活动并原子累加 evaluation，调用方负责事务与归属检查
func recordInTx(ctx context.Context, tx *repository.Store, tenant *Tenant, leadID int64,
	activityType *model.ActivityType, description, typ string, scheduledAt *time.Time) (*model.LeadActivity, error) {

	activity := &model.LeadActivity{
		TenantScoped:   model.TenantScoped{OrganizationID: tenant.OrgID()},
		LeadID:         leadID,
		ActivityTypeID: activityType.ID,
		Description:    description,
		Type:           typ,
		Point:          activityType.Point,
	}
	if scheduledAt != nil {
		activity.UpdatedAt = *scheduledAt
	}

	if err := tx.Activities.Create(ctx, activity); err != nil {
		return nil, Internal("create activity", err)
	}
	if err := tx.Leads.IncrementEvaluation(ctx, tenant.OrgID(), leadID, activityType.Point); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrLeadNotFound
		}
		return nil, Internal("increment evaluation", err)
	}

	activity.ActivityType = activityType
	return activity, nil
}
