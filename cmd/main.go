package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"

	"engage/internal/config"
	"engage/internal/controller"
	"engage/internal/middleware"
	"engage/internal/model"
	"engage/internal/repository"
	"engage/internal/router"
	"engage/internal/service"
	"engage/internal/task"
	"engage/pkg/database"
	"engage/pkg/logger"
	"engage/pkg/utils"
)

// @title Engage CRM API
// @version 1.0
// @description 多租户线索管理、活动评价与活动报名 API
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	// 2. 初始化日志
	zl, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "engage")
	if err != nil {
		panic(err)
	}
	defer func() { _ = zl.Sync() }()
	zap.ReplaceGlobals(zl)

	// 3. 初始化数据库
	db, err := initDatabase(cfg, zl)
	if err != nil {
		zl.Fatal("数据库初始化失败", zap.Error(err))
	}

	// 4. 初始化依赖
	deps := initDependencies(cfg, db, zl)

	// 5. 启动定时任务
	tasks := initTasks(cfg, deps, zl)
	if err := tasks.Start(); err != nil {
		zl.Fatal("定时任务启动失败", zap.Error(err))
	}
	defer tasks.Stop()

	// 6. 初始化路由
	r, err := router.SetupRouter(deps.Controllers, router.Options{
		Mode:          cfg.Server.Mode,
		Logger:        zl,
		JWT:           deps.JWT,
		Tenants:       deps.Services.Tenant,
		PublicLimiter: deps.PublicLimiter,
		HealthCheck:   deps.Store.Ping,
		EnableSwagger: cfg.Server.Mode != "release",
	})
	if err != nil {
		zl.Fatal("路由初始化失败", zap.Error(err))
	}

	// 7. 启动服务
	startServer(cfg, otelhttp.NewHandler(r, "engage"), zl)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB            *gorm.DB
	Store         *repository.Store
	JWT           *middleware.JWT
	PublicLimiter *middleware.RateLimiter
	Controllers   *router.Controllers
	Services      *Services
}

// Services 服务集合
type Services struct {
	Tenant        *service.TenantService
	Auth          *service.AuthService
	Organization  *service.OrganizationService
	Member        *service.MemberService
	Lead          *service.LeadService
	Lookup        *service.LookupService
	Group         *service.GroupService
	Membership    *service.MembershipService
	Activity      *service.ActivityService
	GroupActivity *service.GroupActivityService
	Payment       *service.PaymentService
	Event         *service.EventService
	Participation *service.ParticipationService
}

// ==================== 初始化函数 ====================

// initDatabase 连接数据库、注册审计回调并迁移
func initDatabase(cfg *config.Config, zl *zap.Logger) (*gorm.DB, error) {
	db, err := database.InitDB(database.Options{
		DSN:             cfg.Database.DSN,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        cfg.Database.LogLevel,
	}, zl, model.AllModels()...)
	if err != nil {
		return nil, err
	}
	if err := middleware.RegisterAuditCallbacks(db); err != nil {
		return nil, err
	}
	return db, nil
}

// initDependencies 初始化所有依赖
func initDependencies(cfg *config.Config, db *gorm.DB, zl *zap.Logger) *Dependencies {
	// -------- Repo 层 --------
	store := repository.NewStore(db)
	guard := service.NewAccessGuard(store)

	// -------- 会话 --------
	jwt := middleware.NewJWT(middleware.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenTTL: cfg.JWT.AccessTTL,
		Issuer:         cfg.JWT.Issuer,
	})
	oauthCfg := &oauth2.Config{
		ClientID:     cfg.OAuth.Google.ClientID,
		ClientSecret: cfg.OAuth.Google.ClientSecret,
		RedirectURL:  cfg.OAuth.Google.RedirectURL,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint:     google.Endpoint,
	}

	// -------- 业务服务 --------
	services := &Services{
		Tenant:        service.NewTenantService(store),
		Auth:          service.NewAuthService(store, jwt, oauthCfg, cfg.OAuth.Google.UserInfoURL, cfg.Auth.AdminEmails, zl),
		Organization:  service.NewOrganizationService(store, guard, zl),
		Member:        service.NewMemberService(store, guard),
		Lead:          service.NewLeadService(store, guard, zl),
		Lookup:        service.NewLookupService(store, guard),
		Group:         service.NewGroupService(store),
		Membership:    service.NewMembershipService(store, guard, zl),
		Activity:      service.NewActivityService(store, guard, zl),
		GroupActivity: service.NewGroupActivityService(store, guard, zl),
		Payment:       service.NewPaymentService(store, guard, zl),
		Event:         service.NewEventService(store, guard, zl),
		Participation: service.NewParticipationService(store, zl),
	}

	return &Dependencies{
		DB:            db,
		Store:         store,
		JWT:           jwt,
		PublicLimiter: middleware.NewRateLimiter(cfg.Public.RateLimit, cfg.Public.Burst),
		Controllers:   initControllers(services),
		Services:      services,
	}
}

// initControllers 初始化所有控制器
func initControllers(svc *Services) *router.Controllers {
	return &router.Controllers{
		Auth:         controller.NewAuthController(svc.Auth),
		Organization: controller.NewOrganizationController(svc.Organization),
		User:         controller.NewUserController(svc.Member),
		Lead:         controller.NewLeadController(svc.Lead, svc.Activity, svc.Membership),
		Lookup:       controller.NewLookupController(svc.Lookup),
		Group:        controller.NewGroupController(svc.Group, svc.Membership),
		Activity:     controller.NewActivityController(svc.Activity, svc.GroupActivity),
		Payment:      controller.NewPaymentController(svc.Payment),
		Event:        controller.NewEventController(svc.Event),
		Public:       controller.NewPublicController(svc.Participation),
	}
}

// ==================== 定时任务 ====================

// initTasks 初始化定时任务
func initTasks(cfg *config.Config, deps *Dependencies, zl *zap.Logger) *task.TaskManager {
	taskCfg := task.DefaultConfig()
	taskCfg.EventCloseEnabled = cfg.Task.EventClose.Enabled
	taskCfg.EventCloseSpec = cfg.Task.EventClose.Spec

	return task.NewTaskManager(&task.TaskManagerDeps{
		EventCloser: deps.Services.Event,
		Sweepers:    []task.Sweeper{deps.PublicLimiter, task.SweeperFunc(utils.SweepCache)},
		Logger:      zl,
	}, taskCfg)
}

// ==================== 服务启动 ====================

// startServer 启动服务并等待退出信号
func startServer(cfg *config.Config, handler http.Handler, zl *zap.Logger) {
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 异步启动服务
	go func() {
		zl.Info("服务启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("服务启动失败", zap.Error(err))
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zl.Error("服务强制关闭", zap.Error(err))
		return
	}

	zl.Info("服务已退出")
}
