package dto

import (
	"encoding/json"
	"time"
)

// ==================== Event（后台） ====================

// EventCreateReq 创建活动
type EventCreateReq struct {
	Title             string     `json:"title" binding:"required,max=200"`
	Description       string     `json:"description"`
	Location          string     `json:"location" binding:"max=300"`
	StartAt           time.Time  `json:"startAt" binding:"required"`
	EndAt             time.Time  `json:"endAt" binding:"required,gtefield=StartAt"`
	MaxParticipants   *int       `json:"maxParticipants" binding:"omitempty,min=1"`
	RegistrationStart *time.Time `json:"registrationStart"`
	RegistrationEnd   *time.Time `json:"registrationEnd"`
	IsPublic          bool       `json:"isPublic"`
}

// EventUpdateReq 更新活动（只更新非空字段）
type EventUpdateReq struct {
	Title             *string    `json:"title" binding:"omitempty,min=1,max=200"`
	Description       *string    `json:"description"`
	Location          *string    `json:"location" binding:"omitempty,max=300"`
	StartAt           *time.Time `json:"startAt"`
	EndAt             *time.Time `json:"endAt"`
	MaxParticipants   *int       `json:"maxParticipants" binding:"omitempty,min=1"`
	RegistrationStart *time.Time `json:"registrationStart"`
	RegistrationEnd   *time.Time `json:"registrationEnd"`
	IsPublic          *bool      `json:"isPublic"`
	Status            *string    `json:"status" binding:"omitempty,oneof=OPEN CLOSED"`
}

// EventListReq 活动列表
type EventListReq struct {
	PageReq
	Status string `form:"status" binding:"omitempty,oneof=OPEN CLOSED"`
}

// ParticipationAddReq 后台添加报名（按线索）
type ParticipationAddReq struct {
	LeadID int64  `json:"leadId" binding:"required,gt=0"`
	Note   string `json:"note"`
}

// ParticipationStatusReq 修改报名状态
type ParticipationStatusReq struct {
	Status string `json:"status" binding:"required,participation_status"`
}

// ==================== 公开报名 ====================

// PublicEventResp 公开活动信息（不含内部字段）
type PublicEventResp struct {
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	Location          string     `json:"location"`
	StartAt           time.Time  `json:"start_at"`
	EndAt             time.Time  `json:"end_at"`
	MaxParticipants   *int       `json:"max_participants"`
	ConfirmedCount    int64      `json:"confirmed_count"`
	RegistrationStart *time.Time `json:"registration_start"`
	RegistrationEnd   *time.Time `json:"registration_end"`
	RegistrationOpen  bool       `json:"registration_open"`
	Status            string     `json:"status"`
}

// ParticipateReq 公开报名
type ParticipateReq struct {
	Name    string          `json:"name" binding:"required,max=200"`
	Email   string          `json:"email" binding:"required,email,max=255"`
	Phone   string          `json:"phone" binding:"max=50"`
	Note    string          `json:"note"`
	Answers json.RawMessage `json:"answers"`
}

// ParticipateResp 报名结果
type ParticipateResp struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

// CheckParticipationReq 查询是否已报名
type CheckParticipationReq struct {
	Email string `form:"email" binding:"required,email"`
}

// CheckParticipationResp 查询结果
type CheckParticipationResp struct {
	Participating   bool   `json:"participating"`
	ParticipationID int64  `json:"participation_id,omitempty"`
	Status          string `json:"status,omitempty"`
}

// CancelParticipationReq 公开取消，email 须与报名一致
type CancelParticipationReq struct {
	Email string `json:"email" binding:"required,email"`
}
