package controller

import (
	"github.com/gin-gonic/gin"

	"engage/internal/api/dto"
	"engage/internal/repository"
	"engage/internal/service"
)

// ActivityController 活动记录与分组批量活动
type ActivityController struct {
	activityService      *service.ActivityService
	groupActivityService *service.GroupActivityService
}

// NewActivityController 创建活动控制器
func NewActivityController(activity *service.ActivityService, groupActivity *service.GroupActivityService) *ActivityController {
	return &ActivityController{activityService: activity, groupActivityService: groupActivity}
}

// List 活动列表
// @Summary 活动列表
// @Tags Activity
// @Produce json
// @Param lead_id query int false "线索"
// @Param type_id query int false "活动类型"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} dto.ListResp
// @Router /api/activities [get]
func (ctrl *ActivityController) List(c *gin.Context) {
	tenant, ok := tenantOf(c)
	if !ok {
		return
	}
	var req dto.ActivityListReq
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}
	list, total, err := ctrl.activityService.List(c.Request.Context(), tenant, repository.ActivityFilter{
		LeadID: req.LeadID,
		TypeID: req.TypeID,
		Page:   repository.Page{Page: req.Page, PageSize: req.PageSize},
	})
	if err != nil {
		fail(c, err)
		return
	}
	successList(c, list, total)
}

// Create 记录活动
// @Summary 记录活动（按活动类型点数累加线索评价分）
// @Tags Activity
// @Accept json
// @Produce json
// @Param body body dto.ActivityCreateReq true "活动"
// @Success 201 {object} model.LeadActivity
// @Failure 404 {object} map[string]interface{} "线索或活动类型不存在"
// @Router /api/activities [post]
func (ctrl *ActivityController) Create(c *gin.Context) {
	tenant, ok := tenantOf(c)
	if !ok {
		return
	}
	var req dto.ActivityCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	activity, err := ctrl.activityService.Record(c.Request.Context(), tenant, service.RecordActivityInput{
		LeadID:      req.LeadID,
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

// Delete 删除活动并扣回评价分
// @Summary 删除活动
// @Tags Activity
// @Param id path int true "活动ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{} "入金活动需从入金删除"
// @Router /api/activities/{id} [delete]
func (ctrl *ActivityController) Delete(c *gin.Context) {
	tenant, ok := tenantOf(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := ctrl.activityService.Delete(c.Request.Context(), tenant, id); err != nil {
		fail(c, err)
		return
	}
	success(c, gin.H{"id": id})
}

// CreateGroupActivity 对分组全体成员记录活动
// @Summary 分组批量活动（全部成功或全部失败）
// @Tags Activity
// @Accept json
// @Produce json
// @Param body body dto.GroupActivityCreateReq true "批量活动"
// @Success 201 {array} model.LeadActivity
// @Router /api/group-activities [post]
func (ctrl *ActivityController) CreateGroupActivity(c *gin.Context) {
	tenant, ok := tenantOf(c)
	if !ok {
		return
	}
	var req dto.GroupActivityCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	activities, err := ctrl.groupActivityService.Apply(c.Request.Context(), tenant, service.ApplyGroupActivityInput{
		GroupID:     req.GroupID,
		TypeID:      req.TypeID,
		Content:     req.Content,
		Type:        req.Type,
		ScheduledAt: req.ScheduledAt,
	})
	if err != nil {
		fail(c, err)
		return
	}
	created(c, gin.H{"count": len(activities), "activities": activities})
}
