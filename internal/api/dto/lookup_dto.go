package dto

// ==================== 字典类（租户自定义） ====================

// LeadStatusReq 线索状态
type LeadStatusReq struct {
	Name      string `json:"name" binding:"required,max=100"`
	Color     string `json:"color" binding:"max=20"`
	SortOrder int    `json:"sortOrder"`
}

// ActivityTypeReq 活动类型
type ActivityTypeReq struct {
	Name  string `json:"name" binding:"required,max=100"`
	Point int    `json:"point" binding:"required,min=1"`
	Color string `json:"color" binding:"max=20"`
}

// PaymentTypeReq 入金方式
type PaymentTypeReq struct {
	Name string `json:"name" binding:"required,max=100"`
}

// GroupReq 分组
type GroupReq struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description"`
}
