package repository

import (
	"context"

	"gorm.io/gorm"

	"engage/internal/model"
)

// ==================== UserRepository 用户仓库 ====================

// UserRepository 用户仓库接口
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetInOrg(ctx context.Context, orgID, id int64) (*model.User, error)
	ListByOrg(ctx context.Context, orgID int64) ([]model.User, error)
	UpdateProfile(ctx context.Context, id int64, name, picture string) error
	Assign(ctx context.Context, id int64, orgID *int64, role model.UserRole) error
	UpdateRole(ctx context.Context, orgID, id int64, role model.UserRole) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓库
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create 创建用户
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetByID 根据 ID 获取用户
func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// GetByEmail 根据邮箱获取用户（带所属租户）
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Preload("Organization").
		Where("email = ?", email).
		First(&user).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// GetInOrg 获取租户内用户
func (r *userRepository) GetInOrg(ctx context.Context, orgID, id int64) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("id = ? AND organization_id = ?", id, orgID).
		First(&user).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// ListByOrg 租户内用户列表
func (r *userRepository) ListByOrg(ctx context.Context, orgID int64) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Order("id ASC").
		Find(&users).Error
	return users, err
}

// UpdateProfile 同步 IdP 返回的资料
func (r *userRepository) UpdateProfile(ctx context.Context, id int64, name, picture string) error {
	return r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"name": name, "picture": picture}).Error
}

// Assign 设置用户所属租户与角色（orgID 为 nil 表示解除归属）
func (r *userRepository) Assign(ctx context.Context, id int64, orgID *int64, role model.UserRole) error {
	res := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"organization_id": orgID, "role": role})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateRole 修改租户内用户角色
func (r *userRepository) UpdateRole(ctx context.Context, orgID, id int64, role model.UserRole) error {
	res := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ? AND organization_id = ?", id, orgID).
		Update("role", role)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
