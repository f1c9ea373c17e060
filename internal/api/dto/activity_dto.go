package dto

import "time"

// ==================== Activity ====================

// ActivityCreateReq 记录活动
type ActivityCreateReq struct {
	LeadID      int64      `json:"leadId" binding:"required,gt=0"`
	TypeID      int64      `json:"typeId" binding:"required,gt=0"`
	Description string     `json:"description" binding:"required"`
	Type        string     `json:"type" binding:"required,max=50"`
	ScheduledAt *time.Time `json:"scheduledAt"`
}

// LeadActivityCreateReq 线索详情页记录活动（lead 取自路径）
type LeadActivityCreateReq struct {
	TypeID      int64      `json:"typeId" binding:"required,gt=0"`
	Description string     `json:"description" binding:"required"`
	Type        string     `json:"type" binding:"required,max=50"`
	ScheduledAt *time.Time `json:"scheduledAt"`
}

// ActivityListReq 活动列表
type ActivityListReq struct {
	PageReq
	LeadID int64 `form:"lead_id"`
	TypeID int64 `form:"type_id"`
}

// GroupActivityCreateReq 分组批量活动
type GroupActivityCreateReq struct {
	GroupID     int64      `json:"groupId" binding:"required,gt=0"`
	TypeID      int64      `json:"typeId" binding:"required,gt=0"`
	Content     string     `json:"content" binding:"required"`
	Type        string     `json:"type" binding:"required,max=50"`
	ScheduledAt *time.Time `json:"scheduledAt"`
}

// ==================== Payment ====================

// PaymentCreateReq 登记入金
type PaymentCreateReq struct {
	LeadID        int64     `json:"leadId" binding:"required,gt=0"`
	Amount        int64     `json:"amount" binding:"required,gt=0"`
	PaymentDate   time.Time `json:"paymentDate" binding:"required"`
	PaymentTypeID int64     `json:"paymentTypeId" binding:"required,gt=0"`
	Description   string    `json:"description"`
}

// PaymentListReq 入金列表
type PaymentListReq struct {
	PageReq
	LeadID int64 `form:"lead_id"`
}
