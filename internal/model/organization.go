package model

// Organization 租户
type Organization struct {
	BaseModel
	Name string `gorm:"size:200;not null" json:"name"`
}

func (Organization) TableName() string {
	return "organizations"
}
