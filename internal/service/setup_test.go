package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"engage/internal/model"
	"engage/internal/repository"
)

// ==================== 测试辅助 ====================

type testEnv struct {
	db    *gorm.DB
	store *repository.Store
	guard *AccessGuard
	log   *zap.Logger
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
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
	return &testEnv{db: db, store: store, guard: NewAccessGuard(store), log: zap.NewNop()}
}

// newTenant 创建组织与其成员，返回已解析的 Tenant
func (e *testEnv) newTenant(t *testing.T, orgName string, role model.UserRole) *Tenant {
	t.Helper()
	ctx := context.Background()
	org := &model.Organization{Name: orgName}
	require.NoError(t, e.store.Organizations.Create(ctx, org))

	orgID := org.ID
	user := &model.User{
		Email:          fmt.Sprintf("%s-%s@example.com", strings.ToLower(orgName), role),
		Name:           orgName + " " + string(role),
		Role:           role,
		OrganizationID: &orgID,
	}
	require.NoError(t, e.store.Users.Create(ctx, user))
	return &Tenant{User: user, Organization: org}
}

func (e *testEnv) newLead(t *testing.T, tenant *Tenant, name string) *model.Lead {
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

func (e *testEnv) newActivityType(t *testing.T, tenant *Tenant, name string, point int) *model.ActivityType {
	t.Helper()
	at := &model.ActivityType{
		TenantScoped: model.TenantScoped{OrganizationID: tenant.OrgID()},
		Name:         name,
		Point:        point,
	}
	require.NoError(t, e.store.ActivityTypes.Create(context.Background(), at))
	return at
}

func (e *testEnv) newGroup(t *testing.T, tenant *Tenant, name string, leads ...*model.Lead) *model.Group {
	t.Helper()
	ctx := context.Background()
	g := &model.Group{TenantScoped: model.TenantScoped{OrganizationID: tenant.OrgID()}, Name: name}
	require.NoError(t, e.store.Groups.Create(ctx, g))
	ids := make([]int64, 0, len(leads))
	for _, l := range leads {
		ids = append(ids, l.ID)
	}
	require.NoError(t, e.store.Memberships.ReplaceForGroup(ctx, tenant.OrgID(), g.ID, ids))
	return g
}

func (e *testEnv) evaluation(t *testing.T, lead *model.Lead) int {
	t.Helper()
	got, err := e.store.Leads.GetByID(context.Background(), lead.OrganizationID, lead.ID)
	require.NoError(t, err)
	return got.EvaluationValue()
}

func (e *testEnv) count(t *testing.T, m interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(m).Where(query, args...).Count(&n).Error)
	return n
}

// fixedClock 固定时间，用于报名窗口测试
func fixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}
