package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"engage/internal/api/dto"
	"engage/internal/controller"
	"engage/internal/middleware"
	"engage/internal/service"

	_ "engage/docs"
)

// Controllers 控制器集合
type Controllers struct {
	Auth         *controller.AuthController
	Organization *controller.OrganizationController
	User         *controller.UserController
	Lead         *controller.LeadController
	Lookup       *controller.LookupController
	Group        *controller.GroupController
	Activity     *controller.ActivityController
	Payment      *controller.PaymentController
	Event        *controller.EventController
	Public       *controller.PublicController
}

// Options 路由依赖的中间件组件
type Options struct {
	Mode          string
	Logger        *zap.Logger
	JWT           *middleware.JWT
	Tenants       *service.TenantService
	PublicLimiter *middleware.RateLimiter
	// HealthCheck 为空时 /health 只返回 ok
	HealthCheck func(ctx context.Context) error
	// EnableSwagger 挂载 /swagger
	EnableSwagger bool
}

// SetupRouter 创建 gin 引擎并注册所有路由
func SetupRouter(ctrls *Controllers, opts Options) (*gin.Engine, error) {
	if opts.Mode != "" {
		gin.SetMode(opts.Mode)
	}
	if err := registerValidators(); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.PublicLimiter == nil {
		opts.PublicLimiter = middleware.NewRateLimiter(5, 10)
	}

	r := gin.New()
	r.Use(middleware.RequestLogger(opts.Logger), gin.Recovery())

	// 1. 健康检查
	r.GET("/health", healthHandler(opts.HealthCheck))

	// 2. Swagger 文档路由
	// 访问 http://localhost:8080/swagger/index.html 即可查看
	if opts.EnableSwagger {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// 3. API 路由组
	api := r.Group("/api")
	{
		// 登录（无需会话）
		auth := api.Group("/auth")
		{
			auth.GET("/google/login", ctrls.Auth.Login)
			auth.GET("/google/callback", ctrls.Auth.Callback)
		}

		// 公开报名（无需会话，按 IP 限流）
		public := api.Group("/public", middleware.RateLimit(opts.PublicLimiter, middleware.ClientIPKey))
		{
			public.GET("/events/:accessToken", ctrls.Public.GetEvent)
			public.POST("/events/:accessToken/participate", ctrls.Public.Participate)
			public.GET("/events/:accessToken/check-participation", ctrls.Public.CheckParticipation)
			public.POST("/participation/:id/cancel", ctrls.Public.Cancel)
		}

		// 已登录但可能尚未加入组织
		session := api.Group("", middleware.JWTAuth(opts.JWT), middleware.AuditContext())
		{
			account := session.Group("", middleware.CurrentUser(opts.Tenants))
			{
				account.GET("/auth/me", ctrls.Auth.Me)
				account.POST("/organizations", ctrls.Organization.Create)
			}

			// 组织范围内的业务接口
			tenant := session.Group("", middleware.TenantContext(opts.Tenants))
			registerTenantRoutes(tenant, ctrls)
		}
	}

	return r, nil
}

// registerTenantRoutes 租户内路由
func registerTenantRoutes(api *gin.RouterGroup, ctrls *Controllers) {
	org := api.Group("/organization")
	{
		org.GET("", ctrls.Organization.Get)
		org.PATCH("", ctrls.Organization.Update)
		org.DELETE("", ctrls.Organization.Delete)
	}

	users := api.Group("/users")
	{
		users.GET("", ctrls.User.List)
		users.POST("", ctrls.User.Invite)
		users.PATCH("/:id/role", ctrls.User.UpdateRole)
		users.DELETE("/:id", ctrls.User.Detach)
	}

	leads := api.Group("/leads")
	{
		leads.GET("", ctrls.Lead.List)
		leads.POST("", ctrls.Lead.Create)
		leads.GET("/:id", ctrls.Lead.Get)
		leads.PATCH("/:id", ctrls.Lead.Update)
		leads.DELETE("/:id", ctrls.Lead.Delete)
		leads.PATCH("/:id/status", ctrls.Lead.SetStatus)
		leads.PATCH("/:id/groups", ctrls.Lead.SetGroups)
		leads.GET("/:id/activities", ctrls.Lead.ListActivities)
		leads.POST("/:id/activities", ctrls.Lead.CreateActivity)
	}

	statuses := api.Group("/lead-statuses")
	{
		statuses.GET("", ctrls.Lookup.ListLeadStatuses)
		statuses.POST("", ctrls.Lookup.CreateLeadStatus)
		statuses.PATCH("/:id", ctrls.Lookup.UpdateLeadStatus)
		statuses.DELETE("/:id", ctrls.Lookup.DeleteLeadStatus)
	}

	activityTypes := api.Group("/activity-types")
	{
		activityTypes.GET("", ctrls.Lookup.ListActivityTypes)
		activityTypes.POST("", ctrls.Lookup.CreateActivityType)
		activityTypes.PATCH("/:id", ctrls.Lookup.UpdateActivityType)
		activityTypes.DELETE("/:id", ctrls.Lookup.DeleteActivityType)
	}

	paymentTypes := api.Group("/payment-types")
	{
		paymentTypes.GET("", ctrls.Lookup.ListPaymentTypes)
		paymentTypes.POST("", ctrls.Lookup.CreatePaymentType)
		paymentTypes.PATCH("/:id", ctrls.Lookup.UpdatePaymentType)
		paymentTypes.DELETE("/:id", ctrls.Lookup.DeletePaymentType)
	}

	groups := api.Group("/groups")
	{
		groups.GET("", ctrls.Group.List)
		groups.POST("", ctrls.Group.Create)
		groups.GET("/:id", ctrls.Group.Get)
		groups.PATCH("/:id", ctrls.Group.Update)
		groups.DELETE("/:id", ctrls.Group.Delete)
		groups.PATCH("/:id/leads", ctrls.Group.SetLeads)
	}

	activities := api.Group("/activities")
	{
		activities.GET("", ctrls.Activity.List)
		activities.POST("", ctrls.Activity.Create)
		activities.DELETE("/:id", ctrls.Activity.Delete)
	}
	api.POST("/group-activities", ctrls.Activity.CreateGroupActivity)

	payments := api.Group("/payments")
	{
		payments.GET("", ctrls.Payment.List)
		payments.POST("", ctrls.Payment.Create)
		payments.DELETE("/:id", ctrls.Payment.Delete)
	}

	events := api.Group("/events")
	{
		events.GET("", ctrls.Event.List)
		events.POST("", ctrls.Event.Create)
		events.GET("/:id", ctrls.Event.Get)
		events.PATCH("/:id", ctrls.Event.Update)
		events.DELETE("/:id", ctrls.Event.Delete)
		events.POST("/:id/regenerate-token", ctrls.Event.RegenerateToken)
		events.GET("/:id/participations", ctrls.Event.ListParticipations)
		events.POST("/:id/participations", ctrls.Event.AddParticipant)
	}
	api.PATCH("/participations/:id/status", ctrls.Event.UpdateParticipationStatus)
}

// registerValidators 注册自定义校验标签
func registerValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return dto.RegisterValidators(v)
}

// healthHandler 健康检查
func healthHandler(check func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if check != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
