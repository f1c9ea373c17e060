package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"engage/internal/api/dto"
	"engage/internal/model"
	"engage/internal/repository"
)

// ==================== EventService 活动（后台） ====================

// EventService 活动维护与后台报名管理
type EventService struct {
	store  *repository.Store
	guard  *AccessGuard
	logger *zap.Logger
	now    func() time.Time
}

// NewEventService 创建活动服务
func NewEventService(store *repository.Store, guard *AccessGuard, logger *zap.Logger) *EventService {
	return &EventService{store: store, guard: guard, logger: logger, now: time.Now}
}

// newAccessToken 公开报名链接令牌
func newAccessToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func validateWindow(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return Validation("申込終了日時は申込開始日時より後にしてください")
	}
	return nil
}

// List 活动列表
func (s *EventService) List(ctx context.Context, tenant *Tenant, req *dto.EventListReq) ([]model.Event, int64, error) {
	list, total, err := s.store.Events.List(ctx, repository.EventFilter{
		OrgID:  tenant.OrgID(),
		Status: req.Status,
		Page:   repository.Page{Page: req.Page, PageSize: req.PageSize},
	})
	if err != nil {
		return nil, 0, Internal("list events", err)
	}
	return list, total, nil
}

// Get 活动详情
func (s *EventService) Get(ctx context.Context, tenant *Tenant, id int64) (*model.Event, error) {
	event, err := s.store.Events.GetByID(ctx, tenant.OrgID(), id)
	if err := mapRepoErr("get event", err, ErrEventNotFound); err != nil {
		return nil, err
	}
	return event, nil
}

// Create 创建活动，自动生成访问令牌
func (s *EventService) Create(ctx context.Context, tenant *Tenant, req *dto.EventCreateReq) (*model.Event, error) {
	if req.EndAt.Before(req.StartAt) {
		return nil, Validation("終了日時は開始日時より後にしてください")
	}
	if err := validateWindow(req.RegistrationStart, req.RegistrationEnd); err != nil {
		return nil, err
	}

	event := &model.Event{
		TenantScoped:      model.TenantScoped{OrganizationID: tenant.OrgID()},
		Title:             strings.TrimSpace(req.Title),
		Description:       req.Description,
		Location:          req.Location,
		StartAt:           req.StartAt,
		EndAt:             req.EndAt,
		MaxParticipants:   req.MaxParticipants,
		RegistrationStart: req.RegistrationStart,
		RegistrationEnd:   req.RegistrationEnd,
		AccessToken:       newAccessToken(),
		IsPublic:          req.IsPublic,
		Status:            model.EventStatusOpen,
	}
	if err := s.store.Events.Create(ctx, event); err != nil {
		return nil, Internal("create event", err)
	}
	return event, nil
}

// Update 更新活动
func (s *EventService) Update(ctx context.Context, tenant *Tenant, id int64, req *dto.EventUpdateReq) (*model.Event, error) {
	current, err := s.Get(ctx, tenant, id)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]interface{})
	if req.Title != nil {
		fields["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Location != nil {
		fields["location"] = *req.Location
	}
	start, end := current.StartAt, current.EndAt
	if req.StartAt != nil {
		start = *req.StartAt
		fields["start_at"] = start
	}
	if req.EndAt != nil {
		end = *req.EndAt
		fields["end_at"] = end
	}
	if end.Before(start) {
		return nil, Validation("終了日時は開始日時より後にしてください")
	}
	if req.MaxParticipants != nil {
		fields["max_participants"] = *req.MaxParticipants
	}
	regStart, regEnd := current.RegistrationStart, current.RegistrationEnd
	if req.RegistrationStart != nil {
		regStart = req.RegistrationStart
		fields["registration_start"] = *regStart
	}
	if req.RegistrationEnd != nil {
		regEnd = req.RegistrationEnd
		fields["registration_end"] = *regEnd
	}
	if err := validateWindow(regStart, regEnd); err != nil {
		return nil, err
	}
	if req.IsPublic != nil {
		fields["is_public"] = *req.IsPublic
	}
	if req.Status != nil {
		fields["status"] = model.EventStatus(*req.Status)
	}

	err = s.store.Events.UpdateFields(ctx, tenant.OrgID(), id, fields)
	if err := mapRepoErr("update event", err, ErrEventNotFound); err != nil {
		return nil, err
	}
	return s.Get(ctx, tenant, id)
}

// Delete 删除活动及其报名
func (s *EventService) Delete(ctx context.Context, tenant *Tenant, id int64) error {
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		return tx.Events.DeleteWithParticipations(ctx, tenant.OrgID(), id)
	})
	return mapRepoErr("delete event", err, ErrEventNotFound)
}

// RegenerateToken 重新生成访问令牌，旧链接立即失效
func (s *EventService) RegenerateToken(ctx context.Context, tenant *Tenant, id int64) (*model.Event, error) {
	err := s.store.Events.UpdateFields(ctx, tenant.OrgID(), id, map[string]interface{}{
		"access_token": newAccessToken(),
	})
	if err := mapRepoErr("regenerate token", err, ErrEventNotFound); err != nil {
		return nil, err
	}
	return s.Get(ctx, tenant, id)
}

// CloseEnded 关闭已结束的活动（定时任务调用）
func (s *EventService) CloseEnded(ctx context.Context) (int64, error) {
	n, err := s.store.Events.CloseEnded(ctx, s.now())
	if err != nil {
		return 0, Internal("close ended events", err)
	}
	return n, nil
}

// ==================== 后台报名管理 ====================

// ListParticipations 活动的报名列表
func (s *EventService) ListParticipations(ctx context.Context, tenant *Tenant, eventID int64) ([]model.EventParticipation, error) {
	if err := s.guard.Require(ctx, tenant, eventID, ResourceEvent); err != nil {
		return nil, err
	}
	list, err := s.store.Participations.ListByEvent(ctx, tenant.OrgID(), eventID)
	if err != nil {
		return nil, Internal("list participations", err)
	}
	return list, nil
}

// AddParticipant 后台按线索添加报名
// 同一线索已有未取消的报名时返回冲突；容量判断与外部报名一致
func (s *EventService) AddParticipant(ctx context.Context, tenant *Tenant, eventID int64, req *dto.ParticipationAddReq) (*model.EventParticipation, error) {
	var created *model.EventParticipation
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		event, err := tx.Events.LockByID(ctx, tenant.OrgID(), eventID)
		if err := mapRepoErr("lock event", err, ErrEventNotFound); err != nil {
			return err
		}
		if event.Status == model.EventStatusClosed {
			return ErrEventClosed
		}

		lead, err := tx.Leads.GetByID(ctx, tenant.OrgID(), req.LeadID)
		if err := mapRepoErr("get lead", err, ErrLeadNotFound); err != nil {
			return err
		}

		existing, err := tx.Participations.FindActiveByLead(ctx, eventID, lead.ID)
		if err == nil {
			return alreadyParticipating(existing)
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return Internal("find participation", err)
		}

		status, err := initialStatus(ctx, tx, event)
		if err != nil {
			return err
		}

		leadID := lead.ID
		created = &model.EventParticipation{
			TenantScoped: model.TenantScoped{OrganizationID: tenant.OrgID()},
			EventID:      eventID,
			LeadID:       &leadID,
			Name:         lead.Name,
			Email:        lead.Email,
			Phone:        lead.Phone,
			Note:         req.Note,
			Status:       status,
		}
		if err := tx.Participations.Create(ctx, created); err != nil {
			return Internal("create participation", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateParticipationStatus 后台修改报名状态
// 遵循状态迁移表；变更为 CONFIRMED 时检查定员
func (s *EventService) UpdateParticipationStatus(ctx context.Context, tenant *Tenant, id int64, next model.ParticipationStatus) (*model.EventParticipation, error) {
	if !next.Valid() {
		return nil, Validation("不正なステータスです")
	}

	var updated *model.EventParticipation
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		p, err := tx.Participations.GetInOrg(ctx, tenant.OrgID(), id)
		if err := mapRepoErr("get participation", err, ErrParticipationNotFound); err != nil {
			return err
		}
		if !p.Status.CanTransitionTo(next) {
			return ErrInvalidTransition
		}

		if next == model.ParticipationConfirmed {
			event, err := tx.Events.LockByID(ctx, tenant.OrgID(), p.EventID)
			if err := mapRepoErr("lock event", err, ErrEventNotFound); err != nil {
				return err
			}
			full, err := atCapacity(ctx, tx, event)
			if err != nil {
				return err
			}
			if full {
				return ErrCapacityReached
			}
		}

		now := s.now()
		if err := tx.Participations.UpdateStatus(ctx, p.ID, next, now); err != nil {
			return mapRepoErr("update participation status", err, ErrParticipationNotFound)
		}
		p.Status = next
		p.RespondedAt = &now
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("报名状态已变更",
		zap.Int64("org_id", tenant.OrgID()),
		zap.Int64("participation_id", id),
		zap.String("status", string(next)),
	)
	return updated, nil
}

// ==================== 容量判断 ====================

// atCapacity 已确认人数是否达到定员（未设定员时永远 false）
// 只统计 CONFIRMED，PENDING / WAITLIST 不占名额
func atCapacity(ctx context.Context, tx *repository.Store, event *model.Event) (bool, error) {
	if event.MaxParticipants == nil {
		return false, nil
	}
	confirmed, err := tx.Participations.CountByStatus(ctx, event.ID, model.ParticipationConfirmed)
	if err != nil {
		return false, Internal("count confirmed", err)
	}
	return confirmed >= int64(*event.MaxParticipants), nil
}

// initialStatus 新报名的初始状态：满员进入 WAITLIST，否则 PENDING
func initialStatus(ctx context.Context, tx *repository.Store, event *model.Event) (model.ParticipationStatus, error) {
	full, err := atCapacity(ctx, tx, event)
	if err != nil {
		return "", err
	}
	if full {
		return model.ParticipationWaitlist, nil
	}
	return model.ParticipationPending, nil
}
