package model

import "time"

// Group 线索分组
type Group struct {
	BaseModel
	TenantScoped
	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
}

func (Group) TableName() string {
	return "groups"
}

// LeadGroup 线索与分组的关联表
// 更新时整体替换（先删后插），不做差量合并
type LeadGroup struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	TenantScoped
	LeadID  int64 `gorm:"not null;uniqueIndex:idx_lead_group" json:"lead_id"`
	GroupID int64 `gorm:"not null;uniqueIndex:idx_lead_group;index" json:"group_id"`
}

func (LeadGroup) TableName() string {
	return "lead_groups"
}
