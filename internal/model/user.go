package model

// UserRole 租户内角色
type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleManager UserRole = "manager"
	RoleUser    UserRole = "user"
)

// Valid 是否为合法角色
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleUser:
		return true
	}
	return false
}

// User 登录用户
// OrganizationID 在首次登录时为空，由邀请或管理员设置
type User struct {
	BaseModel
	Email          string   `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Name           string   `gorm:"size:100" json:"name"`
	Picture        string   `gorm:"size:500" json:"picture"`
	Role           UserRole `gorm:"size:20;default:'user'" json:"role"`
	OrganizationID *int64   `gorm:"index" json:"organization_id"`

	Organization *Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
}

func (User) TableName() string {
	return "users"
}
