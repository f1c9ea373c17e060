package repository

import (
	"context"

	"gorm.io/gorm"

	"engage/internal/model"
)

// ==================== 仓储接口 ====================

// LeadRepository 线索仓储接口
type LeadRepository interface {
	Create(ctx context.Context, lead *model.Lead) error
	GetByID(ctx context.Context, orgID, id int64) (*model.Lead, error)
	GetWithStatus(ctx context.Context, orgID, id int64) (*model.Lead, error)
	// FindByEmail 租户内按邮箱匹配（不区分大小写），多条时取最早创建的
	FindByEmail(ctx context.Context, orgID int64, email string) (*model.Lead, error)
	UpdateFields(ctx context.Context, orgID, id int64, fields map[string]interface{}) error
	List(ctx context.Context, filter LeadFilter) ([]model.Lead, int64, error)

	// IncrementEvaluation 原子自增评价分：evaluation = COALESCE(evaluation, 0) + delta
	IncrementEvaluation(ctx context.Context, orgID, id int64, delta int) error

	// DeleteCascade 删除线索及其活动、入金、分组关系；活动报名保留但解除关联（需在事务内调用）
	DeleteCascade(ctx context.Context, orgID, id int64) error

	// ClearStatus 状态被删除时清空引用
	ClearStatus(ctx context.Context, orgID, statusID int64) error
}

// LeadFilter 线索筛选条件
type LeadFilter struct {
	OrgID    int64
	Keyword  string
	StatusID int64
	Type     string
	GroupID  int64
	Page
}

// ==================== 实现 ====================

type leadRepo struct {
	tenantRepo[model.Lead]
}

// NewLeadRepository 创建线索仓储
func NewLeadRepository(db *gorm.DB) LeadRepository {
	return &leadRepo{tenantRepo[model.Lead]{db: db}}
}

func (r *leadRepo) GetWithStatus(ctx context.Context, orgID, id int64) (*model.Lead, error) {
	var lead model.Lead
	err := r.db.WithContext(ctx).
		Preload("Status").
		Where("id = ? AND organization_id = ?", id, orgID).
		First(&lead).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &lead, nil
}

func (r *leadRepo) FindByEmail(ctx context.Context, orgID int64, email string) (*model.Lead, error) {
	var lead model.Lead
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND LOWER(email) = LOWER(?)", orgID, email).
		Order("id ASC").
		First(&lead).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &lead, nil
}

func (r *leadRepo) List(ctx context.Context, filter LeadFilter) ([]model.Lead, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&model.Lead{}).
		Where("organization_id = ?", filter.OrgID)

	// 关键词搜索
	if filter.Keyword != "" {
		keyword := "%" + filter.Keyword + "%"
		query = query.Where("name LIKE ? OR kana LIKE ? OR email LIKE ? OR phone LIKE ?",
			keyword, keyword, keyword, keyword)
	}
	if filter.StatusID > 0 {
		query = query.Where("status_id = ?", filter.StatusID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.GroupID > 0 {
		sub := r.db.Model(&model.LeadGroup{}).
			Select("lead_id").
			Where("group_id = ? AND organization_id = ?", filter.GroupID, filter.OrgID)
		query = query.Where("id IN (?)", sub)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, limit := filter.Page.normalize()
	var leads []model.Lead
	err := query.
		Preload("Status").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&leads).Error
	return leads, total, err
}

func (r *leadRepo) IncrementEvaluation(ctx context.Context, orgID, id int64, delta int) error {
	res := r.db.WithContext(ctx).
		Model(&model.Lead{}).
		Where("id = ? AND organization_id = ?", id, orgID).
		UpdateColumn("evaluation", gorm.Expr("COALESCE(evaluation, 0) + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *leadRepo) DeleteCascade(ctx context.Context, orgID, id int64) error {
	db := r.db.WithContext(ctx)

	for _, table := range []interface{}{&model.LeadActivity{}, &model.Payment{}, &model.LeadGroup{}} {
		if err := db.Where("lead_id = ? AND organization_id = ?", id, orgID).Delete(table).Error; err != nil {
			return err
		}
	}
	if err := db.Model(&model.EventParticipation{}).
		Where("lead_id = ? AND organization_id = ?", id, orgID).
		Update("lead_id", nil).Error; err != nil {
		return err
	}

	return r.Delete(ctx, orgID, id)
}

func (r *leadRepo) ClearStatus(ctx context.Context, orgID, statusID int64) error {
	return r.db.WithContext(ctx).
		Model(&model.Lead{}).
		Where("status_id = ? AND organization_id = ?", statusID, orgID).
		Update("status_id", nil).Error
}
