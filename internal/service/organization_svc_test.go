package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"engage/internal/api/dto"
	"engage/internal/model"
)

func TestOrganizationService_Create(t *testing.T) {
	env := setupTestEnv(t)
	svc := NewOrganizationService(env.store, env.guard, env.log)
	ctx := context.Background()

	user := &model.User{Email: "founder@example.com", Role: model.RoleUser}
	require.NoError(t, env.store.Users.Create(ctx, user))

	org, err := svc.Create(ctx, user, &dto.OrganizationReq{Name: " 後援会 "})
	require.NoError(t, err)
	assert.Equal(t, "後援会", org.Name)

	got, err := env.store.Users.GetByEmail(ctx, user.Email)
	require.NoError(t, err)
	require.NotNil(t, got.OrganizationID)
	assert.Equal(t, org.ID, *got.OrganizationID)
	assert.Equal(t, model.RoleAdmin, got.Role)

	// 入金活动类型随组织一起创建
	at, err := env.store.ActivityTypes.GetByName(ctx, org.ID, model.PaymentActivityTypeName)
	require.NoError(t, err)
	assert.Equal(t, org.ID, at.OrganizationID)

	_, err = svc.Create(ctx, got, &dto.OrganizationReq{Name: "second"})
	assert.ErrorIs(t, err, ErrAlreadyInOrganization)
}

func TestOrganizationService_Delete(t *testing.T) {
	env := setupTestEnv(t)
	svc := NewOrganizationService(env.store, env.guard, env.log)
	ctx := context.Background()

	admin := env.newTenant(t, "A", model.RoleAdmin)
	other := env.newTenant(t, "B", model.RoleAdmin)
	env.newGroup(t, admin, "g", env.newLead(t, admin, "a"))
	keep := env.newLead(t, other, "b")

	member := &Tenant{User: &model.User{BaseModel: model.BaseModel{ID: 999}, Role: model.RoleUser}, Organization: admin.Organization}
	assert.ErrorIs(t, svc.Delete(ctx, member), ErrRoleDenied)

	require.NoError(t, svc.Delete(ctx, admin))
	assert.Equal(t, int64(0), env.count(t, &model.Lead{}, "organization_id = ?", admin.OrgID()))
	assert.Equal(t, int64(0), env.count(t, &model.LeadGroup{}, "1 = 1"))
	assert.Equal(t, 0, env.evaluation(t, keep))

	user, err := env.store.Users.GetByEmail(ctx, admin.User.Email)
	require.NoError(t, err)
	assert.Nil(t, user.OrganizationID, "成员应解除归属")
}

func TestMemberService(t *testing.T) {
	env := setupTestEnv(t)
	svc := NewMemberService(env.store, env.guard)
	ctx := context.Background()

	admin := env.newTenant(t, "A", model.RoleAdmin)
	outsider := env.newTenant(t, "B", model.RoleUser)

	invited, err := svc.Invite(ctx, admin, &dto.UserInviteReq{Email: "New@Example.com"})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", invited.Email)
	assert.Equal(t, model.RoleUser, invited.Role)

	t.Run("重复邀请", func(t *testing.T) {
		_, err := svc.Invite(ctx, admin, &dto.UserInviteReq{Email: "new@example.com"})
		assert.ErrorIs(t, err, ErrAlreadyInOrganization)
		_, err = svc.Invite(ctx, admin, &dto.UserInviteReq{Email: outsider.User.Email})
		assert.ErrorIs(t, err, ErrUserInOtherOrganization)
	})

	t.Run("修改角色", func(t *testing.T) {
		updated, err := svc.UpdateRole(ctx, admin, invited.ID, model.RoleManager)
		require.NoError(t, err)
		assert.Equal(t, model.RoleManager, updated.Role)

		_, err = svc.UpdateRole(ctx, admin, admin.UserID(), model.RoleUser)
		var appErr *AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, KindDomainRule, appErr.Kind)

		_, err = svc.UpdateRole(ctx, admin, outsider.UserID(), model.RoleManager)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("非管理员", func(t *testing.T) {
		_, err := svc.List(ctx, outsider)
		assert.ErrorIs(t, err, ErrRoleDenied)
	})

	t.Run("移出成员", func(t *testing.T) {
		assert.ErrorIs(t, svc.Detach(ctx, admin, admin.UserID()), ErrCannotDetachSelf)
		require.NoError(t, svc.Detach(ctx, admin, invited.ID))

		users, err := svc.List(ctx, admin)
		require.NoError(t, err)
		assert.Len(t, users, 1)
	})
}

func TestLookupService(t *testing.T) {
	env := setupTestEnv(t)
	svc := NewLookupService(env.store, env.guard)
	activitySvc := NewActivityService(env.store, env.guard, env.log)
	ctx := context.Background()

	manager := env.newTenant(t, "A", model.RoleManager)
	member := &Tenant{User: &model.User{Role: model.RoleUser}, Organization: manager.Organization}

	t.Run("普通成员不可修改", func(t *testing.T) {
		_, err := svc.CreateActivityType(ctx, member, &dto.ActivityTypeReq{Name: "電話", Point: 1})
		assert.ErrorIs(t, err, ErrRoleDenied)
	})

	t.Run("入金类型保留", func(t *testing.T) {
		_, err := svc.CreateActivityType(ctx, manager, &dto.ActivityTypeReq{Name: model.PaymentActivityTypeName, Point: 1})
		assert.ErrorIs(t, err, ErrReservedActivityType)
	})

	t.Run("被引用的活动类型不可删除", func(t *testing.T) {
		at, err := svc.CreateActivityType(ctx, manager, &dto.ActivityTypeReq{Name: "電話", Point: 2})
		require.NoError(t, err)
		lead := env.newLead(t, manager, "tanaka")
		_, err = activitySvc.Record(ctx, manager, RecordActivityInput{LeadID: lead.ID, TypeID: at.ID, Description: "x", Type: "call"})
		require.NoError(t, err)

		assert.ErrorIs(t, svc.DeleteActivityType(ctx, manager, at.ID), ErrTypeInUse)
	})

	t.Run("删除状态时线索状态置空", func(t *testing.T) {
		status, err := svc.CreateLeadStatus(ctx, manager, &dto.LeadStatusReq{Name: "見込み"})
		require.NoError(t, err)
		lead := env.newLead(t, manager, "suzuki")
		require.NoError(t, env.store.Leads.UpdateFields(ctx, manager.OrgID(), lead.ID, map[string]interface{}{"status_id": status.ID}))

		require.NoError(t, svc.DeleteLeadStatus(ctx, manager, status.ID))
		got, err := env.store.Leads.GetByID(ctx, manager.OrgID(), lead.ID)
		require.NoError(t, err)
		assert.Nil(t, got.StatusID)
	})
}
