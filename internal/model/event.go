package model

import (
	"time"

	"gorm.io/datatypes"
)

// EventStatus 活动状态
type EventStatus string

const (
	EventStatusOpen   EventStatus = "OPEN"
	EventStatusClosed EventStatus = "CLOSED" // 已结束，不再接受报名
)

// Event 活动 / 集会
type Event struct {
	BaseModel
	AuditMixin
	TenantScoped

	Title       string    `gorm:"size:200;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Location    string    `gorm:"size:300" json:"location"`
	StartAt     time.Time `gorm:"not null" json:"start_at"`
	EndAt       time.Time `gorm:"not null;index" json:"end_at"`

	// 为空表示不限人数
	MaxParticipants *int `json:"max_participants"`

	// 报名窗口，任一端为空表示该端不限制
	RegistrationStart *time.Time `json:"registration_start"`
	RegistrationEnd   *time.Time `json:"registration_end"`

	// 公开报名页使用的访问令牌（无需登录）
	AccessToken string      `gorm:"size:64;uniqueIndex;not null" json:"access_token"`
	IsPublic    bool        `gorm:"default:false" json:"is_public"`
	Status      EventStatus `gorm:"size:20;default:'OPEN';index" json:"status"`
}

func (Event) TableName() string {
	return "events"
}

// RegistrationOpenAt 判断给定时刻是否在报名窗口内（两端闭区间）
func (e *Event) RegistrationOpenAt(now time.Time) bool {
	if e.RegistrationStart != nil && now.Before(*e.RegistrationStart) {
		return false
	}
	if e.RegistrationEnd != nil && now.After(*e.RegistrationEnd) {
		return false
	}
	return true
}

// ==================== 报名 ====================

// ParticipationStatus 报名状态
type ParticipationStatus string

const (
	ParticipationPending   ParticipationStatus = "PENDING"
	ParticipationWaitlist  ParticipationStatus = "WAITLIST"
	ParticipationConfirmed ParticipationStatus = "CONFIRMED"
	ParticipationDeclined  ParticipationStatus = "DECLINED"
	ParticipationCancelled ParticipationStatus = "CANCELLED"
)

// participationTransitions 状态迁移表
// 后台状态变更按此表校验；公开取消见 PublicCancellable
var participationTransitions = map[ParticipationStatus][]ParticipationStatus{
	ParticipationPending: {
		ParticipationConfirmed, ParticipationDeclined, ParticipationWaitlist, ParticipationCancelled,
	},
	ParticipationWaitlist:  {ParticipationConfirmed, ParticipationCancelled},
	ParticipationConfirmed: {ParticipationCancelled},
	ParticipationDeclined:  {},
	ParticipationCancelled: {},
}

// Valid 是否为合法状态
func (s ParticipationStatus) Valid() bool {
	_, ok := participationTransitions[s]
	return ok
}

// CanTransitionTo 是否允许从当前状态迁移到 next
func (s ParticipationStatus) CanTransitionTo(next ParticipationStatus) bool {
	for _, to := range participationTransitions[s] {
		if to == next {
			return true
		}
	}
	return false
}

// PublicCancellable 公开取消接口是否允许取消：CONFIRMED、CANCELLED 以外的合法状态
// DECLINED 的报名者也可自行撤回
func (s ParticipationStatus) PublicCancellable() bool {
	return s.Valid() && s != ParticipationConfirmed && s != ParticipationCancelled
}

// EventParticipation 活动报名
// 外部报名以 (event_id, email) 判重；后台报名以 (event_id, lead_id) 判重
type EventParticipation struct {
	BaseModel
	TenantScoped
	EventID int64  `gorm:"index;not null" json:"event_id"`
	LeadID  *int64 `gorm:"index" json:"lead_id"`

	Name  string `gorm:"size:200" json:"name"`
	Email string `gorm:"size:255;index" json:"email"`
	Phone string `gorm:"size:50" json:"phone"`
	Note  string `gorm:"type:text" json:"note"`

	// 报名表单的自由回答
	Answers datatypes.JSON `gorm:"type:jsonb" json:"answers,omitempty"`

	Status      ParticipationStatus `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	RespondedAt *time.Time          `json:"responded_at"`

	Event *Event `gorm:"foreignKey:EventID" json:"event,omitempty"`
}

func (EventParticipation) TableName() string {
	return "event_participations"
}
