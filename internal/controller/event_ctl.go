package controller

import (
	"github.com/gin-gonic/gin"

	"engage/internal/api/dto"
	"engage/internal/model"
	"engage/internal/service"
)

// EventController 活动（后台）
type EventController struct {
	eventService *service.EventService
}

// NewEventController 创建活动控制器
func NewEventController(s *service.EventService) *EventController {
	return &EventController{eventService: s}
}

// ==================== 活动 CRUD ====================

// List 活动列表
// @Summary 活动列表
// @Tags Event
// @Produce json
// @Param status query string false "OPEN / CLOSED"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} dto.ListResp
// @Router /api/events [get]
func (ctrl *EventController) List(c *gin.Context) {
	tenant, ok := tenantOf(c)
	if !ok {
		return
	}
	var req dto.EventListReq
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}
	list, total, err := ctrl.eventService.List(c.Request.Context(), tenant, &req)
	if err != nil {
		fail(c, err)
		return
	}
	successList(c, list, total)
}

// Get 活动详情
// @Summary 活动详情
// @Tags Event
// @Produce json
// @Param id path int true "活动ID"
// @Success 200 {object} model.Event
// @Router /api/events/{id} [get]
func (ctrl *EventController) Get(c *gin.Context) {
	tenant, ok := tenantOf(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	event, err := ctrl.eventService.Get(c.Request.Context(), tenant, id)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, event)
}

// Create 创建活动
// @Summary 创建活动（自动生成公开访问令牌）
// @Tags Event
// @Accept json
// @Produce json
// @Param body body dto.EventCreateReq true "活动"
// @Success 201 {object} model.Event
// @Router /api/events [post]
func (ctrl *EventController) Create(c *gin.Context) {
	tenant, ok := tenantOf(c)
	if !ok {
		return
	}
	var req dto.EventCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	event, err := ctrl.eventService.Create(c.Request.Context(), tenant, &req)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, event)
}

// Update 更新活动
// @Summary 更新活动
// @Tags Event
// @Accept json
// @Produce json
// @Param id path int true "活动ID"
// @Param body body dto.EventUpdateReq true "更新字段"
// @Success 200 {object} model.Event
// @Router /api/events/{id} [patch]
func (ctrl *EventController) Update(c *gin.Context) {
	tenant, ok := tenantOf(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.EventUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	event, err := ctrl.eventService.Update(c.Request.Context(), tenant, id, &req)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, event)
}

// Delete 删除活动及报名
// @Summary 删除活动
// @Tags Event
// @Param id path int true "活动ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/events/{id} [delete]
func (ctrl *EventController) Delete(c *gin.Context) {
	tenant, ok := tenantOf(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := ctrl.eventService.Delete(c.Request.Context(), tenant, id); err != nil {
		fail(c, err)
		return
	}
	success(c, gin.H{"id": id})
}

// RegenerateToken 重新生成访问令牌
// @Summary 重新生成公开访问令牌（旧链接失效）
// @Tags Event
// @Produce json
// @Param id path int true "活动ID"
// @Success 200 {object} model.Event
// @Router /api/events/{id}/regenerate-token [post]
func (ctrl *EventController) RegenerateToken(c *gin.Context) {
	tenant, ok := tenantOf(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	event, err := ctrl.eventService.RegenerateToken(c.Request.Context(), tenant, id)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, event)
}

// ==================== 报名管理 ====================

// ListParticipations 活动报名列表
// @Summary 活动报名列表
// @Tags Event
// @Produce json
// @Param id path int true "活动ID"
// @Success 200 {array} model.EventParticipation
// @Router /api/events/{id}/participations [get]
func (ctrl *EventController) ListParticipations(c *gin.Context) {
	tenant, ok := tenantOf(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	list, err := ctrl.eventService.ListParticipations(c.Request.Context(), tenant, id)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, list)
}

// AddParticipant 按线索添加报名
// @Summary 后台添加报名
// @Tags Event
// @Accept json
// @Produce json
// @Param id path int true "活动ID"
// @Param body body dto.ParticipationAddReq true "线索"
// @Success 201 {object} model.EventParticipation
// @Failure 409 {object} map[string]interface{} "该线索已报名"
// @Router /api/events/{id}/participations [post]
func (ctrl *EventController) AddParticipant(c *gin.Context) {
	tenant, ok := tenantOf(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.ParticipationAddReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := ctrl.eventService.AddParticipant(c.Request.Context(), tenant, id, &req)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, p)
}

// UpdateParticipationStatus 修改报名状态
// @Summary 修改报名状态（遵循状态迁移，确认时检查定员）
// @Tags Event
// @Accept json
// @Produce json
// @Param id path int true "报名ID"
// @Param body body dto.ParticipationStatusReq true "状态"
// @Success 200 {object} model.EventParticipation
// @Failure 400 {object} map[string]interface{} "不允许的迁移或已满员"
// @Router /api/participations/{id}/status [patch]
func (ctrl *EventController) UpdateParticipationStatus(c *gin.Context) {
	tenant, ok := tenantOf(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.ParticipationStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := ctrl.eventService.UpdateParticipationStatus(c.Request.Context(), tenant, id, model.ParticipationStatus(req.Status))
	if err != nil {
		fail(c, err)
		return
	}
	success(c, p)
}
