package controller

import (
	"github.com/gin-gonic/gin"

	"engage/internal/api/dto"
	"engage/internal/service"
)

// PaymentController 入金
type PaymentController struct {
	paymentService *service.PaymentService
}

// NewPaymentController 创建入金控制器
func NewPaymentController(s *service.PaymentService) *PaymentController {
	return &PaymentController{paymentService: s}
}

// List 入金列表
// @Summary 入金列表
// @Tags Payment
// @Produce json
// @Param lead_id query int false "线索"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} dto.ListResp
// @Router /api/payments [get]
func (ctrl *PaymentController) List(c *gin.Context) {
	tenant, ok := tenantOf(c)
	if !ok {
		return
	}
	var req dto.PaymentListReq
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}
	list, total, err := ctrl.paymentService.List(c.Request.Context(), tenant, &req)
	if err != nil {
		fail(c, err)
		return
	}
	successList(c, list, total)
}

// Create 登记入金
// @Summary 登记入金（同时生成「入金」活动，不计评价分）
// @Tags Payment
// @Accept json
// @Produce json
// @Param body body dto.PaymentCreateReq true "入金"
// @Success 201 {object} model.Payment
// @Failure 400 {object} map[string]interface{} "未配置「入金」活动类型"
// @Router /api/payments [post]
func (ctrl *PaymentController) Create(c *gin.Context) {
	tenant, ok := tenantOf(c)
	if !ok {
		return
	}
	var req dto.PaymentCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	payment, err := ctrl.paymentService.Record(c.Request.Context(), tenant, &req)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, payment)
}

// Delete 删除入金及其活动
// @Summary 删除入金
// @Tags Payment
// @Param id path int true "入金ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/payments/{id} [delete]
func (ctrl *PaymentController) Delete(c *gin.Context) {
	tenant, ok := tenantOf(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := ctrl.paymentService.Delete(c.Request.Context(), tenant, id); err != nil {
		fail(c, err)
		return
	}
	success(c, gin.H{"id": id})
}
