package controller

import (
	"github.com/gin-gonic/gin"

	"engage/internal/api/dto"
	"engage/internal/service"
)

// LookupController 字典：线索状态、活动类型、入金方式
// 读取所有成员可用，增删改需要 manager 以上
type LookupController struct {
	lookupService *service.LookupService
}

// NewLookupController 创建字典控制器
func NewLookupController(s *service.LookupService) *LookupController {
	return &LookupController{lookupService: s}
}

// ==================== 线索状态 ====================

// ListLeadStatuses 线索状态列表
// @Summary 线索状态列表
// @Tags Lookup
// @Produce json
// @Success 200 {array} model.LeadStatus
// @Router /api/lead-statuses [get]
func (ctrl *LookupController) ListLeadStatuses(c *gin.Context) {
	tenant, ok := tenantOf(c)
	if !ok {
		return
	}
	list, err := ctrl.lookupService.ListLeadStatuses(c.Request.Context(), tenant)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, list)
}

// CreateLeadStatus 创建线索状态
// @Summary 创建线索状态
// @Tags Lookup
// @Accept json
// @Produce json
// @Param body body dto.LeadStatusReq true "状态"
// @Success 201 {object} model.LeadStatus
// @Failure 403 {object} map[string]interface{}
// @Router /api/lead-statuses [post]
func (ctrl *LookupController) CreateLeadStatus(c *gin.Context) {
	tenant, ok := tenantOf(c)
	if !ok {
		return
	}
	var req dto.LeadStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	status, err := ctrl.lookupService.CreateLeadStatus(c.Request.Context(), tenant, &req)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, status)
}

// UpdateLeadStatus 更新线索状态
// @Summary 更新线索状态
// @Tags Lookup
// @Accept json
// @Produce json
// @Param id path int true "状态ID"
// @Param body body dto.LeadStatusReq true "状态"
// @Success 200 {object} model.LeadStatus
// @Router /api/lead-statuses/{id} [patch]
func (ctrl *LookupController) UpdateLeadStatus(c *gin.Context) {
	tenant, ok := tenantOf(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.LeadStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	status, err := ctrl.lookupService.UpdateLeadStatus(c.Request.Context(), tenant, id, &req)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, status)
}

// DeleteLeadStatus 删除线索状态
// @Summary 删除线索状态（引用的线索状态置空）
// @Tags Lookup
// @Param id path int true "状态ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/lead-statuses/{id} [delete]
func (ctrl *LookupController) DeleteLeadStatus(c *gin.Context) {
	tenant, ok := tenantOf(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := ctrl.lookupService.DeleteLeadStatus(c.Request.Context(), tenant, id); err != nil {
		fail(c, err)
		return
	}
	success(c, gin.H{"id": id})
}

// ==================== 活动类型 ====================

// ListActivityTypes 活动类型列表
// @Summary 活动类型列表
// @Tags Lookup
// @Produce json
// @Success 200 {array} model.ActivityType
// @Router /api/activity-types [get]
func (ctrl *LookupController) ListActivityTypes(c *gin.Context) {
	tenant, ok := tenantOf(c)
	if !ok {
		return
	}
	list, err := ctrl.lookupService.ListActivityTypes(c.Request.Context(), tenant)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, list)
}

// CreateActivityType 创建活动类型
// @Summary 创建活动类型
// @Tags Lookup
// @Accept json
// @Produce json
// @Param body body dto.ActivityTypeReq true "活动类型"
// @Success 201 {object} model.ActivityType
// @Router /api/activity-types [post]
func (ctrl *LookupController) CreateActivityType(c *gin.Context) {
	tenant, ok := tenantOf(c)
	if !ok {
		return
	}
	var req dto.ActivityTypeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	t, err := ctrl.lookupService.CreateActivityType(c.Request.Context(), tenant, &req)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, t)
}

// UpdateActivityType 更新活动类型
// @Summary 更新活动类型（「入金」不可修改）
// @Tags Lookup
// @Accept json
// @Produce json
// @Param id path int true "活动类型ID"
// @Param body body dto.ActivityTypeReq true "活动类型"
// @Success 200 {object} model.ActivityType
// @Router /api/activity-types/{id} [patch]
func (ctrl *LookupController) UpdateActivityType(c *gin.Context) {
	tenant, ok := tenantOf(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.ActivityTypeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	t, err := ctrl.lookupService.UpdateActivityType(c.Request.Context(), tenant, id, &req)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, t)
}

// DeleteActivityType 删除活动类型
// @Summary 删除活动类型（被引用时 409）
// @Tags Lookup
// @Param id path int true "活动类型ID"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /api/activity-types/{id} [delete]
func (ctrl *LookupController) DeleteActivityType(c *gin.Context) {
	tenant, ok := tenantOf(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := ctrl.lookupService.DeleteActivityType(c.Request.Context(), tenant, id); err != nil {
		fail(c, err)
		return
	}
	success(c, gin.H{"id": id})
}

// ==================== 入金方式 ====================

// ListPaymentTypes 入金方式列表
// @Summary 入金方式列表
// @Tags Lookup
// @Produce json
// @Success 200 {array} model.PaymentType
// @Router /api/payment-types [get]
func (ctrl *LookupController) ListPaymentTypes(c *gin.Context) {
	tenant, ok := tenantOf(c)
	if !ok {
		return
	}
	list, err := ctrl.lookupService.ListPaymentTypes(c.Request.Context(), tenant)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, list)
}

// CreatePaymentType 创建入金方式
// @Summary 创建入金方式
// @Tags Lookup
// @Accept json
// @Produce json
// @Param body body dto.PaymentTypeReq true "入金方式"
// @Success 201 {object} model.PaymentType
// @Router /api/payment-types [post]
func (ctrl *LookupController) CreatePaymentType(c *gin.Context) {
	tenant, ok := tenantOf(c)
	if !ok {
		return
	}
	var req dto.PaymentTypeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	t, err := ctrl.lookupService.CreatePaymentType(c.Request.Context(), tenant, &req)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, t)
}

// UpdatePaymentType 更新入金方式
// @Summary 更新入金方式
// @Tags Lookup
// @Accept json
// @Produce json
// @Param id path int true "入金方式ID"
// @Param body body dto.PaymentTypeReq true "入金方式"
// @Success 200 {object} model.PaymentType
// @Router /api/payment-types/{id} [patch]
func (ctrl *LookupController) UpdatePaymentType(c *gin.Context) {
	tenant, ok := tenantOf(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.PaymentTypeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	t, err := ctrl.lookupService.UpdatePaymentType(c.Request.Context(), tenant, id, &req)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, t)
}

// DeletePaymentType 删除入金方式
// @Summary 删除入金方式（被引用时 409）
// @Tags Lookup
// @Param id path int true "入金方式ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/payment-types/{id} [delete]
func (ctrl *LookupController) DeletePaymentType(c *gin.Context) {
	tenant, ok := tenantOf(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := ctrl.lookupService.DeletePaymentType(c.Request.Context(), tenant, id); err != nil {
		fail(c, err)
		return
	}
	success(c, gin.H{"id": id})
}
