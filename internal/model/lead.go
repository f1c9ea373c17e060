package model

import (
	"database/sql/driver"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// LeadType 线索类型
type LeadType string

const (
	LeadTypeIndividual   LeadType = "individual"
	LeadTypeOrganization LeadType = "organization"
)

// LeadStatus 线索状态（租户自定义）
type LeadStatus struct {
	BaseModel
	TenantScoped
	Name      string `gorm:"size:100;not null" json:"name"`
	Color     string `gorm:"size:20" json:"color"`
	SortOrder int    `gorm:"default:0" json:"sort_order"`
}

func (LeadStatus) TableName() string {
	return "lead_statuses"
}

// Lead 线索 / 支援者
type Lead struct {
	BaseModel
	AuditMixin
	TenantScoped

	Name    string   `gorm:"size:200;not null" json:"name"`
	Kana    string   `gorm:"size:200" json:"kana"`
	Email   string   `gorm:"size:255;index" json:"email"`
	Phone   string   `gorm:"size:50" json:"phone"`
	Address string   `gorm:"size:500" json:"address"`
	Type    LeadType `gorm:"size:20;default:'individual'" json:"type"`
	Memo    string   `gorm:"type:text" json:"memo"`

	// 评价分：只通过原子自增修改，NULL 视为 0
	Evaluation *int `json:"evaluation"`

	Tags TagList `json:"tags"`

	StatusID *int64      `gorm:"index" json:"status_id"`
	Status   *LeadStatus `gorm:"foreignKey:StatusID" json:"status,omitempty"`
}

func (Lead) TableName() string {
	return "leads"
}

// EvaluationValue 评价分（NULL 返回 0）
func (l *Lead) EvaluationValue() int {
	if l.Evaluation == nil {
		return 0
	}
	return *l.Evaluation
}

// TagList 标签，Postgres 下为 text[]，其他方言退化为 text（保存数组字面量）
type TagList pq.StringArray

func (t TagList) Value() (driver.Value, error) {
	return pq.StringArray(t).Value()
}

func (t *TagList) Scan(src interface{}) error {
	return (*pq.StringArray)(t).Scan(src)
}

func (TagList) GormDataType() string {
	return "text[]"
}

func (TagList) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}
