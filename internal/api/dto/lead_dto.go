package dto

import "engage/internal/model"

// ==================== Lead ====================

// LeadListReq 线索列表请求
type LeadListReq struct {
	PageReq
	Keyword  string `form:"keyword"`
	StatusID int64  `form:"status_id"`
	Type     string `form:"type" binding:"omitempty,lead_type"`
	GroupID  int64  `form:"group_id"`
}

// LeadCreateReq 创建线索
type LeadCreateReq struct {
	Name     string   `json:"name" binding:"required,max=200"`
	Kana     string   `json:"kana" binding:"max=200"`
	Email    string   `json:"email" binding:"omitempty,email,max=255"`
	Phone    string   `json:"phone" binding:"max=50"`
	Address  string   `json:"address" binding:"max=500"`
	Type     string   `json:"type" binding:"omitempty,lead_type"`
	Memo     string   `json:"memo"`
	Tags     []string `json:"tags" binding:"omitempty,dive,max=50"`
	StatusID *int64   `json:"statusId"`
}

// LeadUpdateReq 更新线索（只更新非空字段）
// evaluation 只能通过活动累加，不在此处修改
type LeadUpdateReq struct {
	Name    *string  `json:"name" binding:"omitempty,min=1,max=200"`
	Kana    *string  `json:"kana" binding:"omitempty,max=200"`
	Email   *string  `json:"email" binding:"omitempty,max=255"`
	Phone   *string  `json:"phone" binding:"omitempty,max=50"`
	Address *string  `json:"address" binding:"omitempty,max=500"`
	Type    *string  `json:"type" binding:"omitempty,lead_type"`
	Memo    *string  `json:"memo"`
	Tags    []string `json:"tags" binding:"omitempty,dive,max=50"`
}

// LeadStatusUpdateReq 修改线索状态（null 清空）
type LeadStatusUpdateReq struct {
	StatusID *int64 `json:"statusId"`
}

// LeadGroupsReq 整体替换线索所属分组
// 缺省或 null 校验失败，[] 表示清空
type LeadGroupsReq struct {
	GroupIDs []int64 `json:"groupIds" binding:"required"`
}

// GroupLeadsReq 整体替换分组成员
type GroupLeadsReq struct {
	LeadIDs []int64 `json:"leadIds" binding:"required"`
}

// LeadDetailResp 线索详情
type LeadDetailResp struct {
	*model.Lead
	Groups       []model.Group        `json:"groups"`
	Activities   []model.LeadActivity `json:"activities"`
	Payments     []model.Payment      `json:"payments"`
	PaymentTotal int64                `json:"payment_total"`
}
