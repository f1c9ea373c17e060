package controller

import (
	"github.com/gin-gonic/gin"

	"engage/internal/api/dto"
	"engage/internal/service"
)

// PublicController 公开报名（无需登录，按 IP 限流）
type PublicController struct {
	participationService *service.ParticipationService
}

// NewPublicController 创建公开报名控制器
func NewPublicController(s *service.ParticipationService) *PublicController {
	return &PublicController{participationService: s}
}

// GetEvent 公开活动信息
// @Summary 公开活动信息
// @Tags Public
// @Produce json
// @Param accessToken path string true "访问令牌"
// @Success 200 {object} dto.PublicEventResp
// @Failure 404 {object} map[string]interface{}
// @Router /api/public/events/{accessToken} [get]
func (ctrl *PublicController) GetEvent(c *gin.Context) {
	resp, err := ctrl.participationService.GetEvent(c.Request.Context(), c.Param("accessToken"))
	if err != nil {
		fail(c, err)
		return
	}
	success(c, resp)
}

// Participate 报名
// @Summary 公开报名（满员时进入候补）
// @Tags Public
// @Accept json
// @Produce json
// @Param accessToken path string true "访问令牌"
// @Param body body dto.ParticipateReq true "报名信息"
// @Success 201 {object} dto.ParticipateResp
// @Failure 409 {object} map[string]interface{} "已报名，返回 participation_id 与 status"
// @Failure 400 {object} map[string]interface{} "不在报名期间或活动已结束"
// @Router /api/public/events/{accessToken}/participate [post]
func (ctrl *PublicController) Participate(c *gin.Context) {
	var req dto.ParticipateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := ctrl.participationService.Participate(c.Request.Context(), c.Param("accessToken"), &req)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, dto.ParticipateResp{ID: p.ID, Status: string(p.Status)})
}

// CheckParticipation 查询邮箱是否已报名
// @Summary 查询报名状态
// @Tags Public
// @Produce json
// @Param accessToken path string true "访问令牌"
// @Param email query string true "邮箱"
// @Success 200 {object} dto.CheckParticipationResp
// @Router /api/public/events/{accessToken}/check-participation [get]
func (ctrl *PublicController) CheckParticipation(c *gin.Context) {
	var req dto.CheckParticipationReq
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}
	resp, err := ctrl.participationService.Check(c.Request.Context(), c.Param("accessToken"), req.Email)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, resp)
}

// Cancel 取消报名
// @Summary 公开取消报名（已确认的报名需联系主办方）
// @Tags Public
// @Accept json
// @Produce json
// @Param id path int true "报名ID"
// @Param body body dto.CancelParticipationReq true "报名时填写的邮箱"
// @Success 200 {object} dto.ParticipateResp
// @Failure 400 {object} map[string]interface{}
// @Router /api/public/participation/{id}/cancel [post]
func (ctrl *PublicController) Cancel(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.CancelParticipationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := ctrl.participationService.Cancel(c.Request.Context(), id, req.Email)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, dto.ParticipateResp{ID: p.ID, Status: string(p.Status)})
}
