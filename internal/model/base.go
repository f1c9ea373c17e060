package model

import (
	"time"
)

type BaseModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AuditMixin 审计字段 (由 GORM 回调从请求上下文填充，只记录，不参与权限判断)
type AuditMixin struct {
	CreatedBy int64 `gorm:"index;comment:创建人ID" json:"created_by"`
	UpdatedBy int64 `gorm:"comment:更新人ID" json:"updated_by"`
}

// TenantScoped 租户隔离字段
// 所有业务表都必须带 organization_id，读写路径一律按它过滤
type TenantScoped struct {
	OrganizationID int64 `gorm:"index;not null" json:"organization_id"`
}

// AllModels 需要 AutoMigrate 的模型
func AllModels() []interface{} {
	return []interface{}{
		&Organization{}, &User{},
		&LeadStatus{}, &Lead{},
		&ActivityType{}, &LeadActivity{},
		&Group{}, &LeadGroup{},
		&PaymentType{}, &Payment{},
		&Event{}, &EventParticipation{},
	}
}
