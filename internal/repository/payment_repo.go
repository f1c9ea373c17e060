package repository

import (
	"context"

	"gorm.io/gorm"

	"engage/internal/model"
)

// PaymentRepository 入金仓储接口
type PaymentRepository interface {
	Create(ctx context.Context, p *model.Payment) error
	GetByID(ctx context.Context, orgID, id int64) (*model.Payment, error)
	List(ctx context.Context, filter PaymentFilter) ([]model.Payment, int64, error)
	Delete(ctx context.Context, orgID, id int64) error
	// SumByLead 线索累计入金额
	SumByLead(ctx context.Context, orgID, leadID int64) (int64, error)
}

// PaymentFilter 入金筛选条件
type PaymentFilter struct {
	OrgID  int64
	LeadID int64
	Page
}

type paymentRepo struct {
	tenantRepo[model.Payment]
}

// NewPaymentRepository 创建入金仓储
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepo{tenantRepo[model.Payment]{db: db}}
}

func (r *paymentRepo) GetByID(ctx context.Context, orgID, id int64) (*model.Payment, error) {
	var p model.Payment
	err := r.db.WithContext(ctx).
		Preload("PaymentType").
		Where("id = ? AND organization_id = ?", id, orgID).
		First(&p).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *paymentRepo) List(ctx context.Context, filter PaymentFilter) ([]model.Payment, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&model.Payment{}).
		Where("organization_id = ?", filter.OrgID)
	if filter.LeadID > 0 {
		query = query.Where("lead_id = ?", filter.LeadID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, limit := filter.Page.normalize()
	var list []model.Payment
	err := query.
		Preload("PaymentType").
		Order("payment_date DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&list).Error
	return list, total, err
}

func (r *paymentRepo) SumByLead(ctx context.Context, orgID, leadID int64) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).
		Model(&model.Payment{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("organization_id = ? AND lead_id = ?", orgID, leadID).
		Scan(&sum).Error
	return sum, err
}
