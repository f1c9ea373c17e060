package model

import "time"

// PaymentActivityTypeName 入金时自动生成活动所用的保留活动类型名
const PaymentActivityTypeName = "入金"

// ActivityType 活动类型
type ActivityType struct {
	BaseModel
	TenantScoped
	Name  string `gorm:"size:100;not null" json:"name"`
	Point int    `gorm:"not null;default:1" json:"point"` // >= 1
	Color string `gorm:"size:20" json:"color"`
}

func (ActivityType) TableName() string {
	return "activity_types"
}

// LeadActivity 线索活动记录
// 创建即意味着 lead.evaluation += point（入金活动除外）
type LeadActivity struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt 为活动发生时间：预定时间或创建时间。活动创建后不再更新
	UpdatedAt time.Time `json:"updated_at"`
	AuditMixin
	TenantScoped

	LeadID         int64  `gorm:"index;not null" json:"lead_id"`
	ActivityTypeID int64  `gorm:"index;not null" json:"activity_type_id"`
	Description    string `gorm:"type:text" json:"description"`
	Type           string `gorm:"size:50" json:"type"`

	// Point 记录时计入 evaluation 的分值，删除时按此扣回；入金活动为 0
	Point int `gorm:"not null;default:0" json:"point"`

	// 入金自动生成的活动才有值
	PaymentID *int64 `gorm:"index" json:"payment_id"`

	ActivityType *ActivityType `gorm:"foreignKey:ActivityTypeID" json:"activity_type,omitempty"`
}

func (LeadActivity) TableName() string {
	return "lead_activities"
}
