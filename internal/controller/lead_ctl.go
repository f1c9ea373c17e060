package controller

import (
	"github.com/gin-gonic/gin"

	"engage/internal/api/dto"
	"engage/internal/repository"
	"engage/internal/service"
)

// LeadController 线索
type LeadController struct {
	leadService       *service.LeadService
	activityService   *service.ActivityService
	membershipService *service.MembershipService
}

// NewLeadController 创建线索控制器
func NewLeadController(lead *service.LeadService, activity *service.ActivityService, membership *service.MembershipService) *LeadController {
	return &LeadController{leadService: lead, activityService: activity, membershipService: membership}
}

// ==================== CRUD ====================

// List 线索列表
// @Summary 线索列表
// @Tags Lead
// @Produce json
// @Param keyword query string false "姓名/邮箱/电话"
// @Param status_id query int false "状态"
// @Param type query string false "individual / organization"
// @Param group_id query int false "分组"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} dto.ListResp
// @Router /api/leads [get]
func (ctrl *LeadController) List(c *gin.Context) {
	tenant, ok := tenantOf(c)
	if !ok {
		return
	}
	var req dto.LeadListReq
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}
	list, total, err := ctrl.leadService.List(c.Request.Context(), tenant, &req)
	if err != nil {
		fail(c, err)
		return
	}
	successList(c, list, total)
}

// Create 创建线索
// @Summary 创建线索
// @Tags Lead
// @Accept json
// @Produce json
// @Param body body dto.LeadCreateReq true "线索"
// @Success 201 {object} model.Lead
// @Failure 400 {object} map[string]interface{}
// @Router /api/leads [post]
func (ctrl *LeadController) Create(c *gin.Context) {
	tenant, ok := tenantOf(c)
	if !ok {
		return
	}
	var req dto.LeadCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	lead, err := ctrl.leadService.Create(c.Request.Context(), tenant, &req)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, lead)
}

// Get 线索详情（含分组、最近活动、入金）
// @Summary 线索详情
// @Tags Lead
// @Produce json
// @Param id path int true "线索ID"
// @Success 200 {object} dto.LeadDetailResp
// @Failure 404 {object} map[string]interface{}
// @Router /api/leads/{id} [get]
func (ctrl *LeadController) Get(c *gin.Context) {
	tenant, ok := tenantOf(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	detail, err := ctrl.leadService.Get(c.Request.Context(), tenant, id)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, detail)
}

// Update 更新线索
// @Summary 更新线索
// @Tags Lead
// @Accept json
// @Produce json
// @Param id path int true "线索ID"
// @Param body body dto.LeadUpdateReq true "更新字段"
// @Success 200 {object} model.Lead
// @Router /api/leads/{id} [patch]
func (ctrl *LeadController) Update(c *gin.Context) {
	tenant, ok := tenantOf(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.LeadUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	lead, err := ctrl.leadService.Update(c.Request.Context(), tenant, id, &req)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, lead)
}

// Delete 删除线索及其活动、入金、分组关系
// @Summary 删除线索
// @Tags Lead
// @Param id path int true "线索ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/leads/{id} [delete]
func (ctrl *LeadController) Delete(c *gin.Context) {
	tenant, ok := tenantOf(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := ctrl.leadService.Delete(c.Request.Context(), tenant, id); err != nil {
		fail(c, err)
		return
	}
	success(c, gin.H{"id": id})
}

// ==================== 状态 / 分组 ====================

// SetStatus 修改线索状态
// @Summary 修改线索状态（statusId 为 null 时清空）
// @Tags Lead
// @Accept json
// @Produce json
// @Param id path int true "线索ID"
// @Param body body dto.LeadStatusUpdateReq true "状态"
// @Success 200 {object} model.Lead
// @Router /api/leads/{id}/status [patch]
func (ctrl *LeadController) SetStatus(c *gin.Context) {
	tenant, ok := tenantOf(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.LeadStatusUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	lead, err := ctrl.leadService.SetStatus(c.Request.Context(), tenant, id, req.StatusID)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, lead)
}

// SetGroups 整体替换线索所属分组
// @Summary 替换线索所属分组（[] 清空）
// @Tags Lead
// @Accept json
// @Produce json
// @Param id path int true "线索ID"
// @Param body body dto.LeadGroupsReq true "分组ID列表"
// @Success 200 {array} model.Group
// @Failure 404 {object} map[string]interface{}
// @Router /api/leads/{id}/groups [patch]
func (ctrl *LeadController) SetGroups(c *gin.Context) {
	tenant, ok := tenantOf(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.LeadGroupsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	groups, err := ctrl.membershipService.SetLeadGroups(c.Request.Context(), tenant, id, req.GroupIDs)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, groups)
}

// ==================== 线索活动 ====================

// ListActivities 线索的活动记录
// @Summary 线索活动列表
// @Tags Lead
// @Produce json
// @Param id path int true "线索ID"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} dto.ListResp
// @Router /api/leads/{id}/activities [get]
func (ctrl *LeadController) ListActivities(c *gin.Context) {
	tenant, ok := tenantOf(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var page dto.PageReq
	if err := c.ShouldBindQuery(&page); err != nil {
		badRequest(c, err)
		return
	}
	list, total, err := ctrl.activityService.List(c.Request.Context(), tenant, repository.ActivityFilter{
		LeadID: id,
		Page:   repository.Page{Page: page.Page, PageSize: page.PageSize},
	})
	if err != nil {
		fail(c, err)
		return
	}
	successList(c, list, total)
}

// CreateActivity 为线索记录活动
// @Summary 记录线索活动（累加评价分）
// @Tags Lead
// @Accept json
// @Produce json
// @Param id path int true "线索ID"
// @Param body body dto.LeadActivityCreateReq true "活动"
// @Success 201 {object} model.LeadActivity
// @Router /api/leads/{id}/activities [post]
func (ctrl *LeadController) CreateActivity(c *gin.Context) {
	tenant, ok := tenantOf(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.LeadActivityCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	activity, err := ctrl.activityService.Record(c.Request.Context(), tenant, service.RecordActivityInput{
		LeadID:      id,
		TypeID:      req.TypeID,
		Description: req.Description,
		Type:        req.Type,
		ScheduledAt: req.ScheduledAt,
	})
	if err != nil {
		fail(c, err)
		return
	}
	created(c, activity)
}
