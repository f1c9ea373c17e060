package repository

import (
	"context"

	"gorm.io/gorm"
)

// ==================== 租户隔离的通用仓储 ====================

// tenantRepo 按 organization_id 过滤的基础 CRUD
// T 必须带 organization_id 列（嵌入 model.TenantScoped）
type tenantRepo[T any] struct {
	db *gorm.DB
}

// GetByID 按 ID 获取，不属于该租户时返回 ErrNotFound
func (r *tenantRepo[T]) GetByID(ctx context.Context, orgID, id int64) (*T, error) {
	var v T
	err := r.db.WithContext(ctx).
		Where("id = ? AND organization_id = ?", id, orgID).
		First(&v).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &v, nil
}

// ListAll 租户下全部记录
func (r *tenantRepo[T]) ListAll(ctx context.Context, orgID int64) ([]T, error) {
	var list []T
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Order("id ASC").
		Find(&list).Error
	return list, err
}

func (r *tenantRepo[T]) Create(ctx context.Context, v *T) error {
	return r.db.WithContext(ctx).Create(v).Error
}

// UpdateFields 更新指定字段，未命中时返回 ErrNotFound
func (r *tenantRepo[T]) UpdateFields(ctx context.Context, orgID, id int64, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).
		Model(new(T)).
		Where("id = ? AND organization_id = ?", id, orgID).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete 删除，未命中时返回 ErrNotFound
func (r *tenantRepo[T]) Delete(ctx context.Context, orgID, id int64) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND organization_id = ?", id, orgID).
		Delete(new(T))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ==================== ScopeRepository 归属检查 ====================

// ScopeRepository 检查一组 ID 是否全部属于某个租户
type ScopeRepository interface {
	// CountOwned 返回 ids 中属于 orgID 的记录数（ids 需已去重）
	CountOwned(ctx context.Context, table interface{}, orgID int64, ids []int64) (int64, error)
}

type scopeRepo struct {
	db *gorm.DB
}

// NewScopeRepository 创建归属检查仓储
func NewScopeRepository(db *gorm.DB) ScopeRepository {
	return &scopeRepo{db: db}
}

func (r *scopeRepo) CountOwned(ctx context.Context, table interface{}, orgID int64, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.WithContext(ctx).
		Model(table).
		Where("organization_id = ? AND id IN ?", orgID, ids).
		Count(&count).Error
	return count, err
}
