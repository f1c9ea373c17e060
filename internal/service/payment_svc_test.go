package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"engage/internal/api/dto"
	"engage/internal/model"
)

func newPaymentType(t *testing.T, env *testEnv, tenant *Tenant) *model.PaymentType {
	t.Helper()
	pt := &model.PaymentType{TenantScoped: model.TenantScoped{OrganizationID: tenant.OrgID()}, Name: "振込"}
	require.NoError(t, env.store.PaymentTypes.Create(context.Background(), pt))
	return pt
}

func TestPaymentService_Record(t *testing.T) {
	env := setupTestEnv(t)
	svc := NewPaymentService(env.store, env.guard, env.log)
	ctx := context.Background()

	tenant := env.newTenant(t, "A", model.RoleUser)
	lead := env.newLead(t, tenant, "tanaka")
	env.newActivityType(t, tenant, model.PaymentActivityTypeName, 10)
	pt := newPaymentType(t, env, tenant)
	paidAt := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	payment, err := svc.Record(ctx, tenant, &dto.PaymentCreateReq{
		LeadID: lead.ID, Amount: 12000, PaymentDate: paidAt, PaymentTypeID: pt.ID, Description: "年会費",
	})
	require.NoError(t, err)
	assert.NotZero(t, payment.ID)

	// 入金不计分
	assert.Equal(t, 0, env.evaluation(t, lead))

	var activities []model.LeadActivity
	require.NoError(t, env.db.Where("payment_id = ?", payment.ID).Find(&activities).Error)
	require.Len(t, activities, 1, "应生成且仅生成一条入金活动")
	assert.Equal(t, "入金 ¥12,000 / 年会費", activities[0].Description)
	assert.Equal(t, model.PaymentActivityTypeName, activities[0].Type)
	assert.True(t, activities[0].UpdatedAt.Equal(paidAt))

	t.Run("入金活动不可单独删除", func(t *testing.T) {
		activitySvc := NewActivityService(env.store, env.guard, env.log)
		err := activitySvc.Delete(ctx, tenant, activities[0].ID)
		var appErr *AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, KindDomainRule, appErr.Kind)
	})

	t.Run("删除入金连带删除活动", func(t *testing.T) {
		require.NoError(t, svc.Delete(ctx, tenant, payment.ID))
		assert.Equal(t, int64(0), env.count(t, &model.LeadActivity{}, "payment_id = ?", payment.ID))
		assert.Equal(t, int64(0), env.count(t, &model.Payment{}, "id = ?", payment.ID))
		assert.Equal(t, 0, env.evaluation(t, lead))
	})
}

func TestPaymentService_Record_MissingActivityType(t *testing.T) {
	env := setupTestEnv(t)
	svc := NewPaymentService(env.store, env.guard, env.log)
	ctx := context.Background()

	tenant := env.newTenant(t, "A", model.RoleUser)
	lead := env.newLead(t, tenant, "tanaka")
	pt := newPaymentType(t, env, tenant)

	_, err := svc.Record(ctx, tenant, &dto.PaymentCreateReq{
		LeadID: lead.ID, Amount: 5000, PaymentDate: time.Now(), PaymentTypeID: pt.ID,
	})
	assert.ErrorIs(t, err, ErrPaymentActivityTypeMissing)

	// 整体回滚，入金记录不残留
	assert.Equal(t, int64(0), env.count(t, &model.Payment{}, "lead_id = ?", lead.ID))
	assert.Equal(t, int64(0), env.count(t, &model.LeadActivity{}, "lead_id = ?", lead.ID))
}

func TestPaymentService_CrossTenant(t *testing.T) {
	env := setupTestEnv(t)
	svc := NewPaymentService(env.store, env.guard, env.log)
	ctx := context.Background()

	tenantA := env.newTenant(t, "A", model.RoleUser)
	tenantB := env.newTenant(t, "B", model.RoleUser)
	env.newActivityType(t, tenantA, model.PaymentActivityTypeName, 1)
	leadA := env.newLead(t, tenantA, "a")
	leadB := env.newLead(t, tenantB, "b")
	ptA := newPaymentType(t, env, tenantA)
	ptB := newPaymentType(t, env, tenantB)

	_, err := svc.Record(ctx, tenantA, &dto.PaymentCreateReq{
		LeadID: leadB.ID, Amount: 100, PaymentDate: time.Now(), PaymentTypeID: ptA.ID,
	})
	assert.ErrorIs(t, err, ErrLeadNotFound)

	_, err = svc.Record(ctx, tenantA, &dto.PaymentCreateReq{
		LeadID: leadA.ID, Amount: 100, PaymentDate: time.Now(), PaymentTypeID: ptB.ID,
	})
	assert.ErrorIs(t, err, ErrPaymentTypeNotFound)

	assert.Equal(t, int64(0), env.count(t, &model.Payment{}, "1 = 1"))
}
