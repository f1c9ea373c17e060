package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"engage/internal/api/dto"
	"engage/internal/middleware"
	"engage/internal/model"
	"engage/internal/repository"
	"engage/internal/service"
)

// ==================== 测试辅助 ====================

type ctlEnv struct {
	db    *gorm.DB
	store *repository.Store
	guard *service.AccessGuard
}

func setupCtlEnv(t *testing.T) *ctlEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		require.NoError(t, dto.RegisterValidators(v))
	}

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:ctl_%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err, "连接测试数据库失败")
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(model.AllModels()...))

	store := repository.NewStore(db)
	return &ctlEnv{db: db, store: store, guard: service.NewAccessGuard(store)}
}

func (e *ctlEnv) newTenant(t *testing.T, orgName string, role model.UserRole) *service.Tenant {
	t.Helper()
	ctx := context.Background()
	org := &model.Organization{Name: orgName}
	require.NoError(t, e.store.Organizations.Create(ctx, org))
	orgID := org.ID
	user := &model.User{
		Email:          strings.ToLower(orgName) + "@example.com",
		Role:           role,
		OrganizationID: &orgID,
	}
	require.NoError(t, e.store.Users.Create(ctx, user))
	return &service.Tenant{User: user, Organization: org}
}

func (e *ctlEnv) newLead(t *testing.T, tenant *service.Tenant, name string) *model.Lead {
	t.Helper()
	lead := &model.Lead{
		TenantScoped: model.TenantScoped{OrganizationID: tenant.OrgID()},
		Name:         name,
		Email:        strings.ToLower(name) + "@lead.example.com",
		Type:         model.LeadTypeIndividual,
	}
	require.NoError(t, e.store.Leads.Create(context.Background(), lead))
	return lead
}

func (e *ctlEnv) newActivityType(t *testing.T, tenant *service.Tenant, name string, point int) *model.ActivityType {
	t.Helper()
	at := &model.ActivityType{
		TenantScoped: model.TenantScoped{OrganizationID: tenant.OrgID()},
		Name:         name,
		Point:        point,
	}
	require.NoError(t, e.store.ActivityTypes.Create(context.Background(), at))
	return at
}

// engine 以给定租户身份挂载路由；tenant 为 nil 时模拟未登录
func (e *ctlEnv) engine(tenant *service.Tenant) *gin.Engine {
	nop := zap.NewNop()
	activity := service.NewActivityService(e.store, e.guard, nop)
	membership := service.NewMembershipService(e.store, e.guard, nop)

	leadCtl := NewLeadController(service.NewLeadService(e.store, e.guard, nop), activity, membership)
	activityCtl := NewActivityController(activity, service.NewGroupActivityService(e.store, e.guard, nop))
	groupCtl := NewGroupController(service.NewGroupService(e.store), membership)
	paymentCtl := NewPaymentController(service.NewPaymentService(e.store, e.guard, nop))
	eventCtl := NewEventController(service.NewEventService(e.store, e.guard, nop))
	publicCtl := NewPublicController(service.NewParticipationService(e.store, nop))
	authCtl := NewAuthController(nil)

	r := gin.New()
	r.Use(middleware.RequestLogger(nop))

	pub := r.Group("/api/public")
	pub.POST("/events/:accessToken/participate", publicCtl.Participate)
	pub.GET("/events/:accessToken/check-participation", publicCtl.CheckParticipation)
	pub.POST("/participation/:id/cancel", publicCtl.Cancel)

	api := r.Group("/api", func(c *gin.Context) {
		if tenant != nil {
			c.Set(middleware.ContextKeyTenant, tenant)
			c.Set(middleware.ContextKeyUser, tenant.User)
		}
		c.Next()
	})
	api.GET("/auth/me", authCtl.Me)
	api.GET("/leads/:id", leadCtl.Get)
	api.POST("/leads", leadCtl.Create)
	api.POST("/leads/:id/activities", leadCtl.CreateActivity)
	api.GET("/leads/:id/activities", leadCtl.ListActivities)
	api.DELETE("/activities/:id", activityCtl.Delete)
	api.POST("/group-activities", activityCtl.CreateGroupActivity)
	api.POST("/groups", groupCtl.Create)
	api.PATCH("/groups/:id/leads", groupCtl.SetLeads)
	api.POST("/payments", paymentCtl.Create)
	api.POST("/events", eventCtl.Create)
	api.PATCH("/participations/:id/status", eventCtl.UpdateParticipationStatus)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "响应不是 JSON: %s", w.Body.String())
	}
	return w, resp
}

func dataOf(t *testing.T, resp map[string]interface{}) map[string]interface{} {
	t.Helper()
	data, ok := resp["data"].(map[string]interface{})
	require.True(t, ok, "响应缺少 data: %v", resp)
	return data
}

// ==================== 通用响应 ====================

func TestResponse_Envelope(t *testing.T) {
	env := setupCtlEnv(t)
	tenant := env.newTenant(t, "Acme", model.RoleAdmin)
	r := env.engine(tenant)

	t.Run("未登录返回 401", func(t *testing.T) {
		w, resp := doJSON(t, env.engine(nil), http.MethodGet, "/api/leads/1", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, float64(401), resp["code"])
		assert.NotEmpty(t, resp["error"])
	})

	t.Run("非法 ID 返回 400", func(t *testing.T) {
		w, resp := doJSON(t, r, http.MethodGet, "/api/leads/abc", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "不正なIDです", resp["error"])
	})

	t.Run("校验失败返回字段信息", func(t *testing.T) {
		w, resp := doJSON(t, r, http.MethodPost, "/api/leads", map[string]interface{}{"email": "bad"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		fields, ok := resp["fields"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "required", fields["Name"])
		assert.Equal(t, "email", fields["Email"])
	})

	t.Run("JSON 格式错误只返回本地化文案", func(t *testing.T) {
		w, resp := doJSON(t, r, http.MethodPost, "/api/leads", "{broken")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "JSON の形式が正しくありません", resp["error"])
		assert.NotContains(t, w.Body.String(), "invalid character")
		assert.NotContains(t, resp, "detail")
	})

	t.Run("字段类型错误", func(t *testing.T) {
		w, resp := doJSON(t, r, http.MethodPost, "/api/leads", map[string]interface{}{"name": 123})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "値の型が正しくありません", resp["error"])
		assert.NotContains(t, w.Body.String(), "Go struct")
	})

	t.Run("成功响应 code 为 0", func(t *testing.T) {
		w, resp := doJSON(t, r, http.MethodPost, "/api/leads", map[string]interface{}{"name": "山田太郎"})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.Equal(t, float64(0), resp["code"])
		assert.Equal(t, "山田太郎", dataOf(t, resp)["name"])
	})

	t.Run("请求 ID 回写到响应头", func(t *testing.T) {
		w, _ := doJSON(t, r, http.MethodGet, "/api/auth/me", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get(middleware.HeaderRequestID))
	})
}

// ==================== 活动记录 ====================

func TestLeadController_CreateActivity(t *testing.T) {
	env := setupCtlEnv(t)
	tenant := env.newTenant(t, "Acme", model.RoleUser)
	other := env.newTenant(t, "Other", model.RoleUser)
	lead := env.newLead(t, tenant, "Sato")
	call := env.newActivityType(t, tenant, "電話", 3)
	foreign := env.newActivityType(t, other, "訪問", 5)
	r := env.engine(tenant)

	t.Run("记录活动并累加评价", func(t *testing.T) {
		w, resp := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/leads/%d/activities", lead.ID), map[string]interface{}{
			"typeId":      call.ID,
			"description": "初回ヒアリング",
			"type":        "call",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.Equal(t, float64(lead.ID), dataOf(t, resp)["lead_id"])

		_, detail := doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/leads/%d", lead.ID), nil)
		assert.Equal(t, float64(3), dataOf(t, detail)["evaluation"])
	})

	t.Run("其他组织的活动类型视为不存在", func(t *testing.T) {
		w, resp := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/leads/%d/activities", lead.ID), map[string]interface{}{
			"typeId":      foreign.ID,
			"description": "x",
			"type":        "visit",
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, float64(404), resp["code"])
	})

	t.Run("其他组织访问线索返回 404", func(t *testing.T) {
		w, _ := doJSON(t, env.engine(other), http.MethodGet, fmt.Sprintf("/api/leads/%d", lead.ID), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("活动列表", func(t *testing.T) {
		w, resp := doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/leads/%d/activities?page=1&page_size=10", lead.ID), nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(1), dataOf(t, resp)["total"])
	})
}

// ==================== 分组 ====================

func TestGroupController_SetLeadsAndFanOut(t *testing.T) {
	env := setupCtlEnv(t)
	tenant := env.newTenant(t, "Acme", model.RoleUser)
	a := env.newLead(t, tenant, "A")
	b := env.newLead(t, tenant, "B")
	seminar := env.newActivityType(t, tenant, "セミナー", 2)
	r := env.engine(tenant)

	w, resp := doJSON(t, r, http.MethodPost, "/api/groups", map[string]interface{}{"name": "VIP"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	groupID := int64(dataOf(t, resp)["id"].(float64))
	path := fmt.Sprintf("/api/groups/%d/leads", groupID)

	t.Run("缺少 leadIds 返回 400", func(t *testing.T) {
		w, _ := doJSON(t, r, http.MethodPatch, path, map[string]interface{}{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("替换成员", func(t *testing.T) {
		w, resp := doJSON(t, r, http.MethodPatch, path, map[string]interface{}{"leadIds": []int64{a.ID, b.ID, a.ID}})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Len(t, resp["data"], 2)
	})

	t.Run("批量活动", func(t *testing.T) {
		w, resp := doJSON(t, r, http.MethodPost, "/api/group-activities", map[string]interface{}{
			"groupId": groupID,
			"typeId":  seminar.ID,
			"content": "新春セミナー参加",
			"type":    "seminar",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.Equal(t, float64(2), dataOf(t, resp)["count"])
	})

	t.Run("空数组清空成员", func(t *testing.T) {
		w, resp := doJSON(t, r, http.MethodPatch, path, map[string]interface{}{"leadIds": []int64{}})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Len(t, resp["data"], 0)
	})
}

// ==================== 入金 ====================

func TestPaymentController_Create(t *testing.T) {
	env := setupCtlEnv(t)
	tenant := env.newTenant(t, "Acme", model.RoleUser)
	lead := env.newLead(t, tenant, "Suzuki")
	env.newActivityType(t, tenant, model.PaymentActivityTypeName, 0)
	pt := &model.PaymentType{TenantScoped: model.TenantScoped{OrganizationID: tenant.OrgID()}, Name: "年会費"}
	require.NoError(t, env.store.PaymentTypes.Create(context.Background(), pt))
	r := env.engine(tenant)

	w, _ := doJSON(t, r, http.MethodPost, "/api/payments", map[string]interface{}{
		"leadId":        lead.ID,
		"amount":        12000,
		"paymentDate":   time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		"paymentTypeId": pt.ID,
		"description":   "年会費",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var activity model.LeadActivity
	require.NoError(t, env.db.Where("lead_id = ?", lead.ID).First(&activity).Error)
	assert.Equal(t, "入金 ¥12,000 / 年会費", activity.Description)

	t.Run("无备注时只有金额", func(t *testing.T) {
		w, resp := doJSON(t, r, http.MethodPost, "/api/payments", map[string]interface{}{
			"leadId":        lead.ID,
			"amount":        5000,
			"paymentDate":   time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
			"paymentTypeId": pt.ID,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		paymentID := int64(dataOf(t, resp)["id"].(float64))

		var plain model.LeadActivity
		require.NoError(t, env.db.Where("payment_id = ?", paymentID).First(&plain).Error)
		assert.Equal(t, "入金 ¥5,000", plain.Description)
	})

	t.Run("入金活动不能直接删除", func(t *testing.T) {
		w, resp := doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/activities/%d", activity.ID), nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.NotEmpty(t, resp["error"])
	})
}

// ==================== 公开报名 ====================

func TestPublicController_Flow(t *testing.T) {
	env := setupCtlEnv(t)
	tenant := env.newTenant(t, "Acme", model.RoleAdmin)
	r := env.engine(tenant)

	start := time.Now().Add(24 * time.Hour)
	w, resp := doJSON(t, r, http.MethodPost, "/api/events", map[string]interface{}{
		"title":           "説明会",
		"startAt":         start,
		"endAt":           start.Add(2 * time.Hour),
		"maxParticipants": 1,
		"isPublic":        true,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	token := dataOf(t, resp)["access_token"].(string)
	base := "/api/public/events/" + token

	var firstID float64
	t.Run("报名成功", func(t *testing.T) {
		w, resp := doJSON(t, r, http.MethodPost, base+"/participate", map[string]interface{}{
			"name":  "田中",
			"email": "tanaka@example.com",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		data := dataOf(t, resp)
		assert.Equal(t, string(model.ParticipationPending), data["status"])
		firstID = data["id"].(float64)
	})

	t.Run("重复报名返回 409 与已有报名", func(t *testing.T) {
		w, resp := doJSON(t, r, http.MethodPost, base+"/participate", map[string]interface{}{
			"name":  "田中",
			"email": "TANAKA@example.com",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, firstID, resp["participation_id"])
		assert.Equal(t, string(model.ParticipationPending), resp["status"])
	})

	t.Run("确认后满员的新报名进入候补", func(t *testing.T) {
		w, _ := doJSON(t, r, http.MethodPatch, fmt.Sprintf("/api/participations/%d/status", int64(firstID)),
			map[string]interface{}{"status": "CONFIRMED"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w, resp := doJSON(t, r, http.MethodPost, base+"/participate", map[string]interface{}{
			"name":  "佐藤",
			"email": "sato@example.com",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.Equal(t, string(model.ParticipationWaitlist), dataOf(t, resp)["status"])
	})

	t.Run("非法状态返回 400", func(t *testing.T) {
		w, _ := doJSON(t, r, http.MethodPatch, fmt.Sprintf("/api/participations/%d/status", int64(firstID)),
			map[string]interface{}{"status": "DONE"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("查询报名状态", func(t *testing.T) {
		w, resp := doJSON(t, r, http.MethodGet, base+"/check-participation?email=tanaka@example.com", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		data := dataOf(t, resp)
		assert.Equal(t, true, data["participating"])
		assert.Equal(t, string(model.ParticipationConfirmed), data["status"])
	})

	t.Run("已确认的报名不能公开取消", func(t *testing.T) {
		w, resp := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/public/participation/%d/cancel", int64(firstID)),
			map[string]interface{}{"email": "tanaka@example.com"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "この参加はキャンセルできません", resp["error"])
	})

	t.Run("候补凭邮箱取消，邮箱缺失或不一致时拒绝", func(t *testing.T) {
		var waitlisted model.EventParticipation
		require.NoError(t, env.db.Where("email = ?", "sato@example.com").First(&waitlisted).Error)
		path := fmt.Sprintf("/api/public/participation/%d/cancel", waitlisted.ID)

		w, _ := doJSON(t, r, http.MethodPost, path, map[string]interface{}{"email": "other@example.com"})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		// 不带邮箱无法取消他人的报名
		w, resp := doJSON(t, r, http.MethodPost, path, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "リクエスト本文がありません", resp["error"])

		w, resp = doJSON(t, r, http.MethodPost, path, map[string]interface{}{"email": "sato@example.com"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, string(model.ParticipationCancelled), dataOf(t, resp)["status"])
	})

	t.Run("未知令牌返回 404", func(t *testing.T) {
		w, _ := doJSON(t, r, http.MethodPost, "/api/public/events/unknown/participate", map[string]interface{}{
			"name":  "x",
			"email": "x@example.com",
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

// ==================== 当前用户 ====================

func TestAuthController_Me(t *testing.T) {
	env := setupCtlEnv(t)
	tenant := env.newTenant(t, "Acme", model.RoleAdmin)
	tenant.User.Organization = tenant.Organization

	w, resp := doJSON(t, env.engine(tenant), http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := dataOf(t, resp)
	assert.Equal(t, "acme@example.com", data["user"].(map[string]interface{})["email"])
	assert.Equal(t, "Acme", data["organization"].(map[string]interface{})["name"])
}
