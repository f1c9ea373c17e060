package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"engage/internal/model"
)

func groupIDs(groups []model.Group) []int64 {
	ids := make([]int64, 0, len(groups))
	for _, g := range groups {
		ids = append(ids, g.ID)
	}
	return ids
}

func TestMembershipService_SetLeadGroups(t *testing.T) {
	env := setupTestEnv(t)
	svc := NewMembershipService(env.store, env.guard, env.log)
	ctx := context.Background()

	tenant := env.newTenant(t, "A", model.RoleUser)
	lead := env.newLead(t, tenant, "tanaka")
	g1 := env.newGroup(t, tenant, "g1")
	g2 := env.newGroup(t, tenant, "g2")
	g3 := env.newGroup(t, tenant, "g3")

	t.Run("相同输入幂等", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			groups, err := svc.SetLeadGroups(ctx, tenant, lead.ID, []int64{g1.ID, g2.ID})
			require.NoError(t, err)
			assert.Equal(t, []int64{g1.ID, g2.ID}, groupIDs(groups))
		}
		assert.Equal(t, int64(2), env.count(t, &model.LeadGroup{}, "lead_id = ?", lead.ID))
	})

	t.Run("重复 ID 去重", func(t *testing.T) {
		groups, err := svc.SetLeadGroups(ctx, tenant, lead.ID, []int64{g3.ID, g3.ID, g1.ID})
		require.NoError(t, err)
		assert.Equal(t, []int64{g1.ID, g3.ID}, groupIDs(groups))
	})

	t.Run("空列表清空", func(t *testing.T) {
		groups, err := svc.SetLeadGroups(ctx, tenant, lead.ID, []int64{})
		require.NoError(t, err)
		assert.Empty(t, groups)
		assert.Equal(t, int64(0), env.count(t, &model.LeadGroup{}, "lead_id = ?", lead.ID))
	})

	t.Run("nil 视为缺参", func(t *testing.T) {
		_, err := svc.SetLeadGroups(ctx, tenant, lead.ID, nil)
		var appErr *AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, KindValidation, appErr.Kind)
	})
}

func TestMembershipService_CrossTenant(t *testing.T) {
	env := setupTestEnv(t)
	svc := NewMembershipService(env.store, env.guard, env.log)
	ctx := context.Background()

	tenantA := env.newTenant(t, "A", model.RoleUser)
	tenantB := env.newTenant(t, "B", model.RoleUser)
	leadA := env.newLead(t, tenantA, "a")
	gA := env.newGroup(t, tenantA, "ga")
	gB := env.newGroup(t, tenantB, "gb")

	_, err := svc.SetLeadGroups(ctx, tenantA, leadA.ID, []int64{gA.ID})
	require.NoError(t, err)

	t.Run("列表中含其他租户分组时整体拒绝", func(t *testing.T) {
		_, err := svc.SetLeadGroups(ctx, tenantA, leadA.ID, []int64{gA.ID, gB.ID})
		assert.ErrorIs(t, err, ErrGroupNotFound)

		// 原有关系不变
		groups, err := env.store.Memberships.GroupsByLead(ctx, tenantA.OrgID(), leadA.ID)
		require.NoError(t, err)
		assert.Equal(t, []int64{gA.ID}, groupIDs(groups))
	})

	t.Run("其他租户的分组成员替换", func(t *testing.T) {
		_, err := svc.SetGroupLeads(ctx, tenantA, gB.ID, []int64{leadA.ID})
		assert.ErrorIs(t, err, ErrGroupNotFound)
		assert.Equal(t, int64(0), env.count(t, &model.LeadGroup{}, "group_id = ?", gB.ID))
	})
}

func TestMembershipService_SetGroupLeads(t *testing.T) {
	env := setupTestEnv(t)
	svc := NewMembershipService(env.store, env.guard, env.log)
	ctx := context.Background()

	tenant := env.newTenant(t, "A", model.RoleUser)
	l1 := env.newLead(t, tenant, "l1")
	l2 := env.newLead(t, tenant, "l2")
	g := env.newGroup(t, tenant, "g", l1)

	leads, err := svc.SetGroupLeads(ctx, tenant, g.ID, []int64{l2.ID, l1.ID})
	require.NoError(t, err)
	assert.Len(t, leads, 2)

	leads, err = svc.SetGroupLeads(ctx, tenant, g.ID, []int64{})
	require.NoError(t, err)
	assert.Empty(t, leads)

	_, err = svc.SetGroupLeads(ctx, tenant, g.ID, nil)
	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, KindValidation, appErr.Kind)
}
