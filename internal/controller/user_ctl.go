package controller

import (
	"github.com/gin-gonic/gin"

	"engage/internal/api/dto"
	"engage/internal/model"
	"engage/internal/service"
)

// ==================== UserController 组织成员 ====================

// UserController 组织成员管理（admin）
type UserController struct {
	memberService *service.MemberService
}

// NewUserController 创建成员控制器
func NewUserController(s *service.MemberService) *UserController {
	return &UserController{memberService: s}
}

// List 成员列表
// @Summary 成员列表
// @Tags User
// @Produce json
// @Success 200 {array} model.User
// @Router /api/users [get]
func (ctrl *UserController) List(c *gin.Context) {
	tenant, ok := tenantOf(c)
	if !ok {
		return
	}
	users, err := ctrl.memberService.List(c.Request.Context(), tenant)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, users)
}

// Invite 邀请成员
// @Summary 按邮箱邀请成员（未登录过的邮箱会预先创建用户）
// @Tags User
// @Accept json
// @Produce json
// @Param body body dto.UserInviteReq true "邮箱与角色"
// @Success 201 {object} model.User
// @Failure 409 {object} map[string]interface{} "已属于其他组织"
// @Router /api/users [post]
func (ctrl *UserController) Invite(c *gin.Context) {
	tenant, ok := tenantOf(c)
	if !ok {
		return
	}
	var req dto.UserInviteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	user, err := ctrl.memberService.Invite(c.Request.Context(), tenant, &req)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, user)
}

// UpdateRole 修改角色
// @Summary 修改成员角色
// @Tags User
// @Accept json
// @Produce json
// @Param id path int true "用户ID"
// @Param body body dto.UserRoleReq true "角色"
// @Success 200 {object} model.User
// @Router /api/users/{id}/role [patch]
func (ctrl *UserController) UpdateRole(c *gin.Context) {
	tenant, ok := tenantOf(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UserRoleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	user, err := ctrl.memberService.UpdateRole(c.Request.Context(), tenant, id, model.UserRole(req.Role))
	if err != nil {
		fail(c, err)
		return
	}
	success(c, user)
}

// Detach 移出组织
// @Summary 将成员移出组织（不能移出自己）
// @Tags User
// @Param id path int true "用户ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/users/{id} [delete]
func (ctrl *UserController) Detach(c *gin.Context) {
	tenant, ok := tenantOf(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := ctrl.memberService.Detach(c.Request.Context(), tenant, id); err != nil {
		fail(c, err)
		return
	}
	success(c, gin.H{"id": id})
}
