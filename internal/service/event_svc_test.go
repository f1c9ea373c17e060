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

func TestEventService_Create(t *testing.T) {
	env := setupTestEnv(t)
	svc := NewEventService(env.store, env.guard, env.log)
	ctx := context.Background()
	tenant := env.newTenant(t, "A", model.RoleUser)

	e1 := newEvent(t, env, tenant, nil, true)
	e2 := newEvent(t, env, tenant, nil, true)
	assert.Len(t, e1.AccessToken, 32)
	assert.NotEqual(t, e1.AccessToken, e2.AccessToken)
	assert.Equal(t, model.EventStatusOpen, e1.Status)

	t.Run("报名窗口倒置", func(t *testing.T) {
		start := time.Now()
		end := start.Add(-time.Hour)
		_, err := svc.Create(ctx, tenant, &dto.EventCreateReq{
			Title: "x", StartAt: start, EndAt: start.Add(time.Hour),
			RegistrationStart: &start, RegistrationEnd: &end,
		})
		var appErr *AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, KindValidation, appErr.Kind)
	})

	t.Run("重新生成令牌", func(t *testing.T) {
		old := e1.AccessToken
		updated, err := svc.RegenerateToken(ctx, tenant, e1.ID)
		require.NoError(t, err)
		assert.NotEqual(t, old, updated.AccessToken)

		_, err = env.store.Events.GetByAccessToken(ctx, old)
		assert.Error(t, err)
	})
}

func TestEventService_AddParticipant(t *testing.T) {
	env := setupTestEnv(t)
	svc := NewEventService(env.store, env.guard, env.log)
	ctx := context.Background()

	tenantA := env.newTenant(t, "A", model.RoleUser)
	tenantB := env.newTenant(t, "B", model.RoleUser)
	lead := env.newLead(t, tenantA, "tanaka")
	otherLead := env.newLead(t, tenantB, "sato")
	event := newEvent(t, env, tenantA, intPtr(1), false)

	p, err := svc.AddParticipant(ctx, tenantA, event.ID, &dto.ParticipationAddReq{LeadID: lead.ID})
	require.NoError(t, err)
	assert.Equal(t, lead.Email, p.Email)
	assert.Equal(t, model.ParticipationPending, p.Status)

	t.Run("同一线索重复", func(t *testing.T) {
		_, err := svc.AddParticipant(ctx, tenantA, event.ID, &dto.ParticipationAddReq{LeadID: lead.ID})
		var appErr *AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, KindConflict, appErr.Kind)
	})

	t.Run("其他租户的线索与活动", func(t *testing.T) {
		_, err := svc.AddParticipant(ctx, tenantA, event.ID, &dto.ParticipationAddReq{LeadID: otherLead.ID})
		assert.ErrorIs(t, err, ErrLeadNotFound)

		_, err = svc.AddParticipant(ctx, tenantB, event.ID, &dto.ParticipationAddReq{LeadID: otherLead.ID})
		assert.ErrorIs(t, err, ErrEventNotFound)

		_, err = svc.UpdateParticipationStatus(ctx, tenantB, p.ID, model.ParticipationConfirmed)
		assert.ErrorIs(t, err, ErrParticipationNotFound)
	})
}

func TestEventService_UpdateParticipationStatus(t *testing.T) {
	env := setupTestEnv(t)
	svc := NewEventService(env.store, env.guard, env.log)
	ctx := context.Background()

	tenant := env.newTenant(t, "A", model.RoleUser)
	event := newEvent(t, env, tenant, nil, false)
	lead := env.newLead(t, tenant, "tanaka")

	p, err := svc.AddParticipant(ctx, tenant, event.ID, &dto.ParticipationAddReq{LeadID: lead.ID})
	require.NoError(t, err)

	updated, err := svc.UpdateParticipationStatus(ctx, tenant, p.ID, model.ParticipationDeclined)
	require.NoError(t, err)
	assert.Equal(t, model.ParticipationDeclined, updated.Status)
	assert.NotNil(t, updated.RespondedAt)

	// DECLINED 为终态
	_, err = svc.UpdateParticipationStatus(ctx, tenant, p.ID, model.ParticipationConfirmed)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.UpdateParticipationStatus(ctx, tenant, p.ID, model.ParticipationStatus("MAYBE"))
	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, KindValidation, appErr.Kind)
}

func TestEventService_CloseEnded(t *testing.T) {
	env := setupTestEnv(t)
	svc := NewEventService(env.store, env.guard, env.log)
	ctx := context.Background()

	tenant := env.newTenant(t, "A", model.RoleUser)
	event := newEvent(t, env, tenant, nil, true)

	n, err := svc.CloseEnded(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	svc.now = fixedClock(event.EndAt.Add(time.Minute))
	n, err = svc.CloseEnded(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := svc.Get(ctx, tenant, event.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EventStatusClosed, got.Status)
}
