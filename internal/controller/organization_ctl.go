package controller

import (
	"github.com/gin-gonic/gin"

	"engage/internal/api/dto"
	"engage/internal/middleware"
	"engage/internal/service"
)

// OrganizationController 组织
type OrganizationController struct {
	orgService *service.OrganizationService
}

// NewOrganizationController 创建组织控制器
func NewOrganizationController(s *service.OrganizationService) *OrganizationController {
	return &OrganizationController{orgService: s}
}

// Create 创建组织
// @Summary 创建组织（创建者成为 admin，并生成「入金」活动类型）
// @Tags Organization
// @Accept json
// @Produce json
// @Param body body dto.OrganizationReq true "组织"
// @Success 201 {object} model.Organization
// @Failure 409 {object} map[string]interface{} "已加入组织"
// @Router /api/organizations [post]
func (ctrl *OrganizationController) Create(c *gin.Context) {
	user := middleware.GetUser(c)
	if user == nil {
		fail(c, service.ErrUnauthenticated)
		return
	}
	var req dto.OrganizationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	org, err := ctrl.orgService.Create(c.Request.Context(), user, &req)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, org)
}

// Get 当前组织
// @Summary 当前组织
// @Tags Organization
// @Produce json
// @Success 200 {object} model.Organization
// @Router /api/organization [get]
func (ctrl *OrganizationController) Get(c *gin.Context) {
	tenant, ok := tenantOf(c)
	if !ok {
		return
	}
	org, err := ctrl.orgService.Get(c.Request.Context(), tenant)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, org)
}

// Update 修改组织名称
// @Summary 修改组织（admin）
// @Tags Organization
// @Accept json
// @Produce json
// @Param body body dto.OrganizationReq true "组织"
// @Success 200 {object} model.Organization
// @Router /api/organization [patch]
func (ctrl *OrganizationController) Update(c *gin.Context) {
	tenant, ok := tenantOf(c)
	if !ok {
		return
	}
	var req dto.OrganizationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	org, err := ctrl.orgService.Update(c.Request.Context(), tenant, &req)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, org)
}

// Delete 删除组织
// @Summary 删除组织（admin，删除全部租户数据并解除成员）
// @Tags Organization
// @Success 200 {object} map[string]interface{}
// @Router /api/organization [delete]
func (ctrl *OrganizationController) Delete(c *gin.Context) {
	tenant, ok := tenantOf(c)
	if !ok {
		return
	}
	if err := ctrl.orgService.Delete(c.Request.Context(), tenant); err != nil {
		fail(c, err)
		return
	}
	success(c, gin.H{"id": tenant.OrgID()})
}
