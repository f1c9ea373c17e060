package controller

import (
	"github.com/gin-gonic/gin"

	"engage/internal/api/dto"
	"engage/internal/service"
)

// GroupController 分组
type GroupController struct {
	groupService      *service.GroupService
	membershipService *service.MembershipService
}

// NewGroupController 创建分组控制器
func NewGroupController(group *service.GroupService, membership *service.MembershipService) *GroupController {
	return &GroupController{groupService: group, membershipService: membership}
}

// List 分组列表
// @Summary 分组列表
// @Tags Group
// @Produce json
// @Success 200 {array} model.Group
// @Router /api/groups [get]
func (ctrl *GroupController) List(c *gin.Context) {
	tenant, ok := tenantOf(c)
	if !ok {
		return
	}
	groups, err := ctrl.groupService.List(c.Request.Context(), tenant)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, groups)
}

// Get 分组详情（含成员）
// @Summary 分组详情
// @Tags Group
// @Produce json
// @Param id path int true "分组ID"
// @Success 200 {object} service.GroupDetail
// @Router /api/groups/{id} [get]
func (ctrl *GroupController) Get(c *gin.Context) {
	tenant, ok := tenantOf(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	detail, err := ctrl.groupService.Get(c.Request.Context(), tenant, id)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, detail)
}

// Create 创建分组
// @Summary 创建分组
// @Tags Group
// @Accept json
// @Produce json
// @Param body body dto.GroupReq true "分组"
// @Success 201 {object} model.Group
// @Router /api/groups [post]
func (ctrl *GroupController) Create(c *gin.Context) {
	tenant, ok := tenantOf(c)
	if !ok {
		return
	}
	var req dto.GroupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	group, err := ctrl.groupService.Create(c.Request.Context(), tenant, &req)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, group)
}

// Update 更新分组
// @Summary 更新分组
// @Tags Group
// @Accept json
// @Produce json
// @Param id path int true "分组ID"
// @Param body body dto.GroupReq true "分组"
// @Success 200 {object} model.Group
// @Router /api/groups/{id} [patch]
func (ctrl *GroupController) Update(c *gin.Context) {
	tenant, ok := tenantOf(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.GroupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	group, err := ctrl.groupService.Update(c.Request.Context(), tenant, id, &req)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, group)
}

// Delete 删除分组（成员关系一并删除）
// @Summary 删除分组
// @Tags Group
// @Param id path int true "分组ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/groups/{id} [delete]
func (ctrl *GroupController) Delete(c *gin.Context) {
	tenant, ok := tenantOf(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := ctrl.groupService.Delete(c.Request.Context(), tenant, id); err != nil {
		fail(c, err)
		return
	}
	success(c, gin.H{"id": id})
}

// SetLeads 整体替换分组成员
// @Summary 替换分组成员（[] 清空）
// @Tags Group
// @Accept json
// @Produce json
// @Param id path int true "分组ID"
// @Param body body dto.GroupLeadsReq true "线索ID列表"
// @Success 200 {array} model.Lead
// @Router /api/groups/{id}/leads [patch]
func (ctrl *GroupController) SetLeads(c *gin.Context) {
	tenant, ok := tenantOf(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.GroupLeadsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	leads, err := ctrl.membershipService.SetGroupLeads(c.Request.Context(), tenant, id, req.LeadIDs)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, leads)
}
