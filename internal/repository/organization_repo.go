package repository

import (
	"context"

	"gorm.io/gorm"

	"engage/internal/model"
)

// ==================== OrganizationRepository 租户仓库 ====================

// OrganizationRepository 租户仓库接口
type OrganizationRepository interface {
	Create(ctx context.Context, org *model.Organization) error
	GetByID(ctx context.Context, id int64) (*model.Organization, error)
	UpdateName(ctx context.Context, id int64, name string) error
	// DeleteCascade 删除租户及其全部业务数据，用户解除归属（需在事务内调用）
	DeleteCascade(ctx context.Context, id int64) error
}

type organizationRepo struct {
	db *gorm.DB
}

// NewOrganizationRepository 创建租户仓库
func NewOrganizationRepository(db *gorm.DB) OrganizationRepository {
	return &organizationRepo{db: db}
}

func (r *organizationRepo) Create(ctx context.Context, org *model.Organization) error {
	return r.db.WithContext(ctx).Create(org).Error
}

func (r *organizationRepo) GetByID(ctx context.Context, id int64) (*model.Organization, error) {
	var org model.Organization
	if err := r.db.WithContext(ctx).First(&org, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &org, nil
}

func (r *organizationRepo) UpdateName(ctx context.Context, id int64, name string) error {
	res := r.db.WithContext(ctx).
		Model(&model.Organization{}).
		Where("id = ?", id).
		Update("name", name)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// tenantTables 按依赖顺序（子表在前）
var tenantTables = []interface{}{
	&model.EventParticipation{},
	&model.Event{},
	&model.LeadActivity{},
	&model.Payment{},
	&model.PaymentType{},
	&model.LeadGroup{},
	&model.Group{},
	&model.ActivityType{},
	&model.Lead{},
	&model.LeadStatus{},
}

func (r *organizationRepo) DeleteCascade(ctx context.Context, id int64) error {
	db := r.db.WithContext(ctx)
	for _, table := range tenantTables {
		if err := db.Where("organization_id = ?", id).Delete(table).Error; err != nil {
			return err
		}
	}

	if err := db.Model(&model.User{}).
		Where("organization_id = ?", id).
		Updates(map[string]interface{}{"organization_id": nil, "role": model.RoleUser}).Error; err != nil {
		return err
	}

	res := db.Delete(&model.Organization{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
