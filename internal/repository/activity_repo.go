package repository

import (
	"context"

	"gorm.io/gorm"

	"engage/internal/model"
)

// ActivityRepository 活动仓储接口
type ActivityRepository interface {
	Create(ctx context.Context, activity *model.LeadActivity) error
	GetByID(ctx context.Context, orgID, id int64) (*model.LeadActivity, error)
	List(ctx context.Context, filter ActivityFilter) ([]model.LeadActivity, int64, error)
	Delete(ctx context.Context, orgID, id int64) error
	DeleteByPayment(ctx context.Context, orgID, paymentID int64) error
}

// ActivityFilter 活动筛选条件
type ActivityFilter struct {
	OrgID  int64
	LeadID int64
	TypeID int64
	Page
}

type activityRepo struct {
	db *gorm.DB
}

// NewActivityRepository 创建活动仓储
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepo{db: db}
}

func (r *activityRepo) Create(ctx context.Context, activity *model.LeadActivity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

func (r *activityRepo) GetByID(ctx context.Context, orgID, id int64) (*model.LeadActivity, error) {
	var a model.LeadActivity
	err := r.db.WithContext(ctx).
		Preload("ActivityType").
		Where("id = ? AND organization_id = ?", id, orgID).
		First(&a).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func (r *activityRepo) List(ctx context.Context, filter ActivityFilter) ([]model.LeadActivity, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&model.LeadActivity{}).
		Where("organization_id = ?", filter.OrgID)

	if filter.LeadID > 0 {
		query = query.Where("lead_id = ?", filter.LeadID)
	}
	if filter.TypeID > 0 {
		query = query.Where("activity_type_id = ?", filter.TypeID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, limit := filter.Page.normalize()
	var list []model.LeadActivity
	err := query.
		Preload("ActivityType").
		Order("updated_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&list).Error
	return list, total, err
}

func (r *activityRepo) Delete(ctx context.Context, orgID, id int64) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND organization_id = ?", id, orgID).
		Delete(&model.LeadActivity{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *activityRepo) DeleteByPayment(ctx context.Context, orgID, paymentID int64) error {
	return r.db.WithContext(ctx).
		Where("payment_id = ? AND organization_id = ?", paymentID, orgID).
		Delete(&model.LeadActivity{}).Error
}
