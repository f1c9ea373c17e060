package repository

import (
	"context"

	"gorm.io/gorm"

	"engage/internal/model"
)

// MembershipRepository 线索-分组关系仓储
// Replace* 为先删后插的整体替换，调用方负责包在事务里
type MembershipRepository interface {
	ReplaceForLead(ctx context.Context, orgID, leadID int64, groupIDs []int64) error
	ReplaceForGroup(ctx context.Context, orgID, groupID int64, leadIDs []int64) error
	LeadIDsByGroup(ctx context.Context, orgID, groupID int64) ([]int64, error)
	GroupsByLead(ctx context.Context, orgID, leadID int64) ([]model.Group, error)
	LeadsByGroup(ctx context.Context, orgID, groupID int64) ([]model.Lead, error)
}

type membershipRepo struct {
	db *gorm.DB
}

// NewMembershipRepository 创建关系仓储
func NewMembershipRepository(db *gorm.DB) MembershipRepository {
	return &membershipRepo{db: db}
}

func (r *membershipRepo) ReplaceForLead(ctx context.Context, orgID, leadID int64, groupIDs []int64) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("lead_id = ? AND organization_id = ?", leadID, orgID).
		Delete(&model.LeadGroup{}).Error; err != nil {
		return err
	}
	if len(groupIDs) == 0 {
		return nil
	}

	rows := make([]model.LeadGroup, 0, len(groupIDs))
	for _, gid := range groupIDs {
		rows = append(rows, model.LeadGroup{
			TenantScoped: model.TenantScoped{OrganizationID: orgID},
			LeadID:       leadID,
			GroupID:      gid,
		})
	}
	return db.CreateInBatches(&rows, 500).Error
}

func (r *membershipRepo) ReplaceForGroup(ctx context.Context, orgID, groupID int64, leadIDs []int64) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("group_id = ? AND organization_id = ?", groupID, orgID).
		Delete(&model.LeadGroup{}).Error; err != nil {
		return err
	}
	if len(leadIDs) == 0 {
		return nil
	}

	rows := make([]model.LeadGroup, 0, len(leadIDs))
	for _, lid := range leadIDs {
		rows = append(rows, model.LeadGroup{
			TenantScoped: model.TenantScoped{OrganizationID: orgID},
			LeadID:       lid,
			GroupID:      groupID,
		})
	}
	return db.CreateInBatches(&rows, 500).Error
}

func (r *membershipRepo) LeadIDsByGroup(ctx context.Context, orgID, groupID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&model.LeadGroup{}).
		Where("group_id = ? AND organization_id = ?", groupID, orgID).
		Order("lead_id ASC").
		Pluck("lead_id", &ids).Error
	return ids, err
}

func (r *membershipRepo) GroupsByLead(ctx context.Context, orgID, leadID int64) ([]model.Group, error) {
	var groups []model.Group
	sub := r.db.Model(&model.LeadGroup{}).
		Select("group_id").
		Where("lead_id = ? AND organization_id = ?", leadID, orgID)
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND id IN (?)", orgID, sub).
		Order("id ASC").
		Find(&groups).Error
	return groups, err
}

func (r *membershipRepo) LeadsByGroup(ctx context.Context, orgID, groupID int64) ([]model.Lead, error) {
	var leads []model.Lead
	sub := r.db.Model(&model.LeadGroup{}).
		Select("lead_id").
		Where("group_id = ? AND organization_id = ?", groupID, orgID)
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND id IN (?)", orgID, sub).
		Order("id ASC").
		Find(&leads).Error
	return leads, err
}
