package dto

import (
	"github.com/go-playground/validator/v10"

	"engage/internal/model"
)

// ==================== 通用 ====================

// PageReq 分页请求
type PageReq struct {
	Page     int `form:"page,default=1" binding:"min=1"`
	PageSize int `form:"page_size,default=20" binding:"min=1,max=200"`
}

// ListResp 列表响应
type ListResp struct {
	Total int64       `json:"total"`
	List  interface{} `json:"list"`
}

// ==================== 自定义校验 ====================

// RegisterValidators 注册自定义 binding 校验规则
func RegisterValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("participation_status", func(fl validator.FieldLevel) bool {
		return model.ParticipationStatus(fl.Field().String()).Valid()
	}); err != nil {
		return err
	}
	if err := v.RegisterValidation("lead_type", func(fl validator.FieldLevel) bool {
		switch model.LeadType(fl.Field().String()) {
		case model.LeadTypeIndividual, model.LeadTypeOrganization:
			return true
		}
		return false
	}); err != nil {
		return err
	}
	return v.RegisterValidation("user_role", func(fl validator.FieldLevel) bool {
		return model.UserRole(fl.Field().String()).Valid()
	})
}
