package repository

import (
	"context"

	"gorm.io/gorm"

	"engage/internal/model"
)

// ==================== LeadStatus ====================

// LeadStatusRepository 线索状态仓储
type LeadStatusRepository interface {
	Create(ctx context.Context, status *model.LeadStatus) error
	GetByID(ctx context.Context, orgID, id int64) (*model.LeadStatus, error)
	List(ctx context.Context, orgID int64) ([]model.LeadStatus, error)
	UpdateFields(ctx context.Context, orgID, id int64, fields map[string]interface{}) error
	Delete(ctx context.Context, orgID, id int64) error
}

type leadStatusRepo struct {
	tenantRepo[model.LeadStatus]
}

// NewLeadStatusRepository 创建线索状态仓储
func NewLeadStatusRepository(db *gorm.DB) LeadStatusRepository {
	return &leadStatusRepo{tenantRepo[model.LeadStatus]{db: db}}
}

func (r *leadStatusRepo) List(ctx context.Context, orgID int64) ([]model.LeadStatus, error) {
	var list []model.LeadStatus
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Order("sort_order ASC, id ASC").
		Find(&list).Error
	return list, err
}

// ==================== ActivityType ====================

// ActivityTypeRepository 活动类型仓储
type ActivityTypeRepository interface {
	Create(ctx context.Context, t *model.ActivityType) error
	GetByID(ctx context.Context, orgID, id int64) (*model.ActivityType, error)
	GetByName(ctx context.Context, orgID int64, name string) (*model.ActivityType, error)
	ListAll(ctx context.Context, orgID int64) ([]model.ActivityType, error)
	UpdateFields(ctx context.Context, orgID, id int64, fields map[string]interface{}) error
	Delete(ctx context.Context, orgID, id int64) error
	// CountUsage 引用该类型的活动数
	CountUsage(ctx context.Context, orgID, id int64) (int64, error)
}

type activityTypeRepo struct {
	tenantRepo[model.ActivityType]
}

// NewActivityTypeRepository 创建活动类型仓储
func NewActivityTypeRepository(db *gorm.DB) ActivityTypeRepository {
	return &activityTypeRepo{tenantRepo[model.ActivityType]{db: db}}
}

// GetByName 精确匹配名称
func (r *activityTypeRepo) GetByName(ctx context.Context, orgID int64, name string) (*model.ActivityType, error) {
	var t model.ActivityType
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND name = ?", orgID, name).
		Order("id ASC").
		First(&t).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (r *activityTypeRepo) CountUsage(ctx context.Context, orgID, id int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.LeadActivity{}).
		Where("organization_id = ? AND activity_type_id = ?", orgID, id).
		Count(&count).Error
	return count, err
}

// ==================== PaymentType ====================

// PaymentTypeRepository 入金方式仓储
type PaymentTypeRepository interface {
	Create(ctx context.Context, t *model.PaymentType) error
	GetByID(ctx context.Context, orgID, id int64) (*model.PaymentType, error)
	ListAll(ctx context.Context, orgID int64) ([]model.PaymentType, error)
	UpdateFields(ctx context.Context, orgID, id int64, fields map[string]interface{}) error
	Delete(ctx context.Context, orgID, id int64) error
	CountUsage(ctx context.Context, orgID, id int64) (int64, error)
}

type paymentTypeRepo struct {
	tenantRepo[model.PaymentType]
}

// NewPaymentTypeRepository 创建入金方式仓储
func NewPaymentTypeRepository(db *gorm.DB) PaymentTypeRepository {
	return &paymentTypeRepo{tenantRepo[model.PaymentType]{db: db}}
}

func (r *paymentTypeRepo) CountUsage(ctx context.Context, orgID, id int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Payment{}).
		Where("organization_id = ? AND payment_type_id = ?", orgID, id).
		Count(&count).Error
	return count, err
}

// ==================== Group ====================

// GroupRepository 分组仓储
type GroupRepository interface {
	Create(ctx context.Context, g *model.Group) error
	GetByID(ctx context.Context, orgID, id int64) (*model.Group, error)
	ListAll(ctx context.Context, orgID int64) ([]model.Group, error)
	UpdateFields(ctx context.Context, orgID, id int64, fields map[string]interface{}) error
	// DeleteWithMembers 删除分组及其成员关系（需在事务内调用）
	DeleteWithMembers(ctx context.Context, orgID, id int64) error
}

type groupRepo struct {
	tenantRepo[model.Group]
}

// NewGroupRepository 创建分组仓储
func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepo{tenantRepo[model.Group]{db: db}}
}

func (r *groupRepo) DeleteWithMembers(ctx context.Context, orgID, id int64) error {
	if err := r.db.WithContext(ctx).
		Where("group_id = ? AND organization_id = ?", id, orgID).
		Delete(&model.LeadGroup{}).Error; err != nil {
		return err
	}
	return r.Delete(ctx, orgID, id)
}
