package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"engage/internal/api/dto"
	"engage/internal/model"
	"engage/internal/repository"
)

func TestActivityService_Record(t *testing.T) {
	env := setupTestEnv(t)
	svc := NewActivityService(env.store, env.guard, env.log)
	ctx := context.Background()

	tenant := env.newTenant(t, "A", model.RoleUser)
	lead := env.newLead(t, tenant, "tanaka")
	call := env.newActivityType(t, tenant, "電話", 3)

	t.Run("记录活动并累加评价分", func(t *testing.T) {
		activity, err := svc.Record(ctx, tenant, RecordActivityInput{
			LeadID: lead.ID, TypeID: call.ID, Description: "初回連絡", Type: "call",
		})
		require.NoError(t, err)
		assert.Equal(t, lead.ID, activity.LeadID)
		assert.Equal(t, tenant.OrgID(), activity.OrganizationID)
		assert.Equal(t, 3, env.evaluation(t, lead))
	})

	t.Run("scheduledAt 作为活动时间", func(t *testing.T) {
		at := time.Date(2030, 1, 2, 10, 0, 0, 0, time.UTC)
		activity, err := svc.Record(ctx, tenant, RecordActivityInput{
			LeadID: lead.ID, TypeID: call.ID, Description: "訪問予定", Type: "visit", ScheduledAt: &at,
		})
		require.NoError(t, err)

		stored, err := env.store.Activities.GetByID(ctx, tenant.OrgID(), activity.ID)
		require.NoError(t, err)
		assert.True(t, stored.UpdatedAt.Equal(at), "活动时间应为预定时间，实际 %v", stored.UpdatedAt)
		assert.Equal(t, 6, env.evaluation(t, lead))
	})

	t.Run("缺少必填字段", func(t *testing.T) {
		_, err := svc.Record(ctx, tenant, RecordActivityInput{LeadID: lead.ID, TypeID: call.ID, Type: "call"})
		var appErr *AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, KindValidation, appErr.Kind)
	})

	t.Run("活动类型不存在", func(t *testing.T) {
		_, err := svc.Record(ctx, tenant, RecordActivityInput{
			LeadID: lead.ID, TypeID: 9999, Description: "x", Type: "call",
		})
		assert.ErrorIs(t, err, ErrActivityTypeNotFound)
		assert.Equal(t, 6, env.evaluation(t, lead))
	})
}

func TestActivityService_Record_Concurrent(t *testing.T) {
	env := setupTestEnv(t)
	svc := NewActivityService(env.store, env.guard, env.log)
	ctx := context.Background()

	tenant := env.newTenant(t, "A", model.RoleUser)
	lead := env.newLead(t, tenant, "tanaka")
	call := env.newActivityType(t, tenant, "電話", 3)
	visit := env.newActivityType(t, tenant, "訪問", 5)

	const n = 10
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := svc.Record(ctx, tenant, RecordActivityInput{LeadID: lead.ID, TypeID: call.ID, Description: "c", Type: "call"})
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := svc.Record(ctx, tenant, RecordActivityInput{LeadID: lead.ID, TypeID: visit.ID, Description: "v", Type: "visit"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, n*3+n*5, env.evaluation(t, lead))
	assert.Equal(t, int64(2*n), env.count(t, &model.LeadActivity{}, "lead_id = ?", lead.ID))
}

func TestActivityService_CrossTenant(t *testing.T) {
	env := setupTestEnv(t)
	svc := NewActivityService(env.store, env.guard, env.log)
	ctx := context.Background()

	tenantA := env.newTenant(t, "A", model.RoleAdmin)
	tenantB := env.newTenant(t, "B", model.RoleAdmin)
	leadB := env.newLead(t, tenantB, "sato")
	typeA := env.newActivityType(t, tenantA, "電話", 3)
	typeB := env.newActivityType(t, tenantB, "電話", 3)

	t.Run("其他租户的线索", func(t *testing.T) {
		_, err := svc.Record(ctx, tenantA, RecordActivityInput{
			LeadID: leadB.ID, TypeID: typeA.ID, Description: "x", Type: "call",
		})
		assert.ErrorIs(t, err, ErrLeadNotFound)
	})

	t.Run("其他租户的活动类型", func(t *testing.T) {
		leadA := env.newLead(t, tenantA, "suzuki")
		_, err := svc.Record(ctx, tenantA, RecordActivityInput{
			LeadID: leadA.ID, TypeID: typeB.ID, Description: "x", Type: "call",
		})
		assert.ErrorIs(t, err, ErrActivityTypeNotFound)
		assert.Equal(t, 0, env.evaluation(t, leadA))
	})

	t.Run("其他租户列表与删除", func(t *testing.T) {
		activity, err := svc.Record(ctx, tenantB, RecordActivityInput{
			LeadID: leadB.ID, TypeID: typeB.ID, Description: "x", Type: "call",
		})
		require.NoError(t, err)

		_, _, err = svc.List(ctx, tenantA, repository.ActivityFilter{LeadID: leadB.ID})
		assert.ErrorIs(t, err, ErrLeadNotFound)

		assert.ErrorIs(t, svc.Delete(ctx, tenantA, activity.ID), ErrActivityNotFound)
		assert.Equal(t, 3, env.evaluation(t, leadB))
	})

	assert.Equal(t, int64(1), env.count(t, &model.LeadActivity{}, "1 = 1"))
}

func TestActivityService_Delete(t *testing.T) {
	env := setupTestEnv(t)
	svc := NewActivityService(env.store, env.guard, env.log)
	ctx := context.Background()

	tenant := env.newTenant(t, "A", model.RoleUser)
	lead := env.newLead(t, tenant, "tanaka")
	call := env.newActivityType(t, tenant, "電話", 4)

	a1, err := svc.Record(ctx, tenant, RecordActivityInput{LeadID: lead.ID, TypeID: call.ID, Description: "1", Type: "call"})
	require.NoError(t, err)
	_, err = svc.Record(ctx, tenant, RecordActivityInput{LeadID: lead.ID, TypeID: call.ID, Description: "2", Type: "call"})
	require.NoError(t, err)
	require.Equal(t, 8, env.evaluation(t, lead))

	require.NoError(t, svc.Delete(ctx, tenant, a1.ID))
	assert.Equal(t, 4, env.evaluation(t, lead))

	assert.ErrorIs(t, svc.Delete(ctx, tenant, a1.ID), ErrActivityNotFound)
}

func TestActivityService_Delete_AfterPointChange(t *testing.T) {
	env := setupTestEnv(t)
	svc := NewActivityService(env.store, env.guard, env.log)
	lookups := NewLookupService(env.store, env.guard)
	ctx := context.Background()

	tenant := env.newTenant(t, "A", model.RoleManager)
	lead := env.newLead(t, tenant, "tanaka")
	call := env.newActivityType(t, tenant, "電話", 3)

	activity, err := svc.Record(ctx, tenant, RecordActivityInput{LeadID: lead.ID, TypeID: call.ID, Description: "1", Type: "call"})
	require.NoError(t, err)
	assert.Equal(t, 3, activity.Point)
	require.Equal(t, 3, env.evaluation(t, lead))

	// 修改活动类型分值后再删除，按记录时的分值扣回
	_, err = lookups.UpdateActivityType(ctx, tenant, call.ID, &dto.ActivityTypeReq{Name: "電話", Point: 10})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, tenant, activity.ID))
	assert.Equal(t, 0, env.evaluation(t, lead))
}

// failNthActivityInsert 第 n 次插入活动时注入错误
func failNthActivityInsert(t *testing.T, db *gorm.DB, n int) {
	t.Helper()
	count := 0
	err := db.Callback().Create().Before("gorm:create").Register("test:fail_activity", func(tx *gorm.DB) {
		if tx.Statement.Table != "lead_activities" {
			return
		}
		count++
		if count == n {
			_ = tx.AddError(errors.New("injected failure"))
		}
	})
	require.NoError(t, err)
}
