package model

import "time"

// PaymentType 入金方式（振込、現金 ...）
type PaymentType struct {
	BaseModel
	TenantScoped
	Name string `gorm:"size:100;not null" json:"name"`
}

func (PaymentType) TableName() string {
	return "payment_types"
}

// Payment 入金记录
// 创建时同步生成一条「入金」活动，但不计入 evaluation
type Payment struct {
	BaseModel
	AuditMixin
	TenantScoped
	LeadID        int64     `gorm:"index;not null" json:"lead_id"`
	Amount        int64     `gorm:"not null" json:"amount"` // 日元，整数
	PaymentDate   time.Time `gorm:"not null" json:"payment_date"`
	PaymentTypeID int64     `gorm:"index;not null" json:"payment_type_id"`
	Description   string    `gorm:"type:text" json:"description"`

	PaymentType *PaymentType `gorm:"foreignKey:PaymentTypeID" json:"payment_type,omitempty"`
}

func (Payment) TableName() string {
	return "payments"
}
