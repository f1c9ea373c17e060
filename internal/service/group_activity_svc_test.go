package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"engage/internal/model"
)

func TestGroupActivityService_Apply(t *testing.T) {
	env := setupTestEnv(t)
	svc := NewGroupActivityService(env.store, env.guard, env.log)
	ctx := context.Background()

	tenant := env.newTenant(t, "A", model.RoleUser)
	l1 := env.newLead(t, tenant, "l1")
	l2 := env.newLead(t, tenant, "l2")
	l3 := env.newLead(t, tenant, "l3")
	group := env.newGroup(t, tenant, "後援会", l1, l2, l3)
	mail := env.newActivityType(t, tenant, "郵送", 2)

	created, err := svc.Apply(ctx, tenant, ApplyGroupActivityInput{
		GroupID: group.ID, TypeID: mail.ID, Content: "会報送付", Type: "mail",
	})
	require.NoError(t, err)
	assert.Len(t, created, 3)
	for _, l := range []*model.Lead{l1, l2, l3} {
		assert.Equal(t, 2, env.evaluation(t, l))
	}

	t.Run("空分组返回空列表", func(t *testing.T) {
		empty := env.newGroup(t, tenant, "空")
		created, err := svc.Apply(ctx, tenant, ApplyGroupActivityInput{
			GroupID: empty.ID, TypeID: mail.ID, Content: "x", Type: "mail",
		})
		require.NoError(t, err)
		assert.NotNil(t, created)
		assert.Empty(t, created)
	})
}

func TestGroupActivityService_Apply_AllOrNothing(t *testing.T) {
	env := setupTestEnv(t)
	svc := NewGroupActivityService(env.store, env.guard, env.log)
	ctx := context.Background()

	tenant := env.newTenant(t, "A", model.RoleUser)
	l1 := env.newLead(t, tenant, "l1")
	l2 := env.newLead(t, tenant, "l2")
	l3 := env.newLead(t, tenant, "l3")
	group := env.newGroup(t, tenant, "後援会", l1, l2, l3)
	mail := env.newActivityType(t, tenant, "郵送", 2)

	// 第二个成员插入失败
	failNthActivityInsert(t, env.db, 2)

	_, err := svc.Apply(ctx, tenant, ApplyGroupActivityInput{
		GroupID: group.ID, TypeID: mail.ID, Content: "会報送付", Type: "mail",
	})
	require.Error(t, err)

	for _, l := range []*model.Lead{l1, l2, l3} {
		assert.Equal(t, 0, env.evaluation(t, l), "lead %d 不应被计分", l.ID)
	}
	assert.Equal(t, int64(0), env.count(t, &model.LeadActivity{}, "organization_id = ?", tenant.OrgID()))
}

func TestGroupActivityService_CrossTenant(t *testing.T) {
	env := setupTestEnv(t)
	svc := NewGroupActivityService(env.store, env.guard, env.log)
	ctx := context.Background()

	tenantA := env.newTenant(t, "A", model.RoleUser)
	tenantB := env.newTenant(t, "B", model.RoleUser)
	leadA := env.newLead(t, tenantA, "a")
	groupA := env.newGroup(t, tenantA, "g", leadA)
	groupB := env.newGroup(t, tenantB, "g", env.newLead(t, tenantB, "b"))
	typeA := env.newActivityType(t, tenantA, "郵送", 2)
	typeB := env.newActivityType(t, tenantB, "郵送", 2)

	t.Run("其他租户的分组", func(t *testing.T) {
		_, err := svc.Apply(ctx, tenantA, ApplyGroupActivityInput{GroupID: groupB.ID, TypeID: typeA.ID, Content: "x", Type: "mail"})
		assert.ErrorIs(t, err, ErrGroupNotFound)
	})

	t.Run("其他租户的活动类型", func(t *testing.T) {
		_, err := svc.Apply(ctx, tenantA, ApplyGroupActivityInput{GroupID: groupA.ID, TypeID: typeB.ID, Content: "x", Type: "mail"})
		assert.ErrorIs(t, err, ErrActivityTypeNotFound)
		assert.Equal(t, 0, env.evaluation(t, leadA))
	})
}
