package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"engage/internal/api/dto"
	"engage/internal/model"
	"engage/internal/repository"
)

// ==================== ParticipationService 公开报名 ====================

// ParticipationService 无需登录的报名流程，以访问令牌定位活动
type ParticipationService struct {
	store  *repository.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewParticipationService 创建公开报名服务
func NewParticipationService(store *repository.Store, logger *zap.Logger) *ParticipationService {
	return &ParticipationService{store: store, logger: logger, now: time.Now}
}

// publicEvent 按令牌取公开活动，非公开活动视为不存在
func (s *ParticipationService) publicEvent(ctx context.Context, store *repository.Store, token string, lock bool) (*model.Event, error) {
	var (
		event *model.Event
		err   error
	)
	if lock {
		event, err = store.Events.LockByAccessToken(ctx, token)
	} else {
		event, err = store.Events.GetByAccessToken(ctx, token)
	}
	if err := mapRepoErr("get public event", err, ErrEventNotFound); err != nil {
		return nil, err
	}
	if !event.IsPublic {
		return nil, ErrEventNotPublic
	}
	return event, nil
}

// GetEvent 公开活动信息
func (s *ParticipationService) GetEvent(ctx context.Context, token string) (*dto.PublicEventResp, error) {
	event, err := s.publicEvent(ctx, s.store, token, false)
	if err != nil {
		return nil, err
	}
	confirmed, err := s.store.Participations.CountByStatus(ctx, event.ID, model.ParticipationConfirmed)
	if err != nil {
		return nil, Internal("count confirmed", err)
	}

	return &dto.PublicEventResp{
		Title:             event.Title,
		Description:       event.Description,
		Location:          event.Location,
		StartAt:           event.StartAt,
		EndAt:             event.EndAt,
		MaxParticipants:   event.MaxParticipants,
		ConfirmedCount:    confirmed,
		RegistrationStart: event.RegistrationStart,
		RegistrationEnd:   event.RegistrationEnd,
		RegistrationOpen:  event.Status == model.EventStatusOpen && event.RegistrationOpenAt(s.now()),
		Status:            string(event.Status),
	}, nil
}

// Participate 外部报名
// 活动行加锁后依次检查：状态、报名窗口、(event, email) 判重、定员
func (s *ParticipationService) Participate(ctx context.Context, token string, req *dto.ParticipateReq) (*model.EventParticipation, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || strings.TrimSpace(req.Name) == "" {
		return nil, Validation("name と email は必須です")
	}
	var answers datatypes.JSON
	if len(req.Answers) > 0 && string(req.Answers) != "null" {
		if !json.Valid(req.Answers) {
			return nil, Validation("answers の形式が正しくありません")
		}
		answers = datatypes.JSON(req.Answers)
	}

	var created *model.EventParticipation
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		event, err := s.publicEvent(ctx, tx, token, true)
		if err != nil {
			return err
		}
		if event.Status == model.EventStatusClosed {
			return ErrEventClosed
		}
		if !event.RegistrationOpenAt(s.now()) {
			return ErrRegistrationNotOpen
		}

		existing, err := tx.Participations.FindActiveByEmail(ctx, event.ID, email)
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

		created = &model.EventParticipation{
			TenantScoped: model.TenantScoped{OrganizationID: event.OrganizationID},
			EventID:      event.ID,
			Name:         strings.TrimSpace(req.Name),
			Email:        email,
			Phone:        req.Phone,
			Note:         req.Note,
			Answers:      answers,
			Status:       status,
		}
		// 同组织内邮箱一致的线索自动关联
		lead, err := tx.Leads.FindByEmail(ctx, event.OrganizationID, email)
		switch {
		case err == nil:
			created.LeadID = &lead.ID
		case !errors.Is(err, repository.ErrNotFound):
			return Internal("find lead by email", err)
		}

		if err := tx.Participations.Create(ctx, created); err != nil {
			return Internal("create participation", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("外部报名",
		zap.Int64("event_id", created.EventID),
		zap.Int64("participation_id", created.ID),
		zap.String("status", string(created.Status)),
	)
	return created, nil
}

// Check 查询邮箱在该活动的最新报名
func (s *ParticipationService) Check(ctx context.Context, token, email string) (*dto.CheckParticipationResp, error) {
	event, err := s.publicEvent(ctx, s.store, token, false)
	if err != nil {
		return nil, err
	}
	p, err := s.store.Participations.FindByEmail(ctx, event.ID, strings.TrimSpace(email))
	if errors.Is(err, repository.ErrNotFound) {
		return &dto.CheckParticipationResp{Participating: false}, nil
	}
	if err != nil {
		return nil, Internal("find participation", err)
	}
	return &dto.CheckParticipationResp{
		Participating:   p.Status != model.ParticipationCancelled,
		ParticipationID: p.ID,
		Status:          string(p.Status),
	}, nil
}

// Cancel 公开取消报名
// email 必须与报名一致，不一致时不透露报名状态；CONFIRMED 与 CANCELLED 不可通过公开接口取消
func (s *ParticipationService) Cancel(ctx context.Context, id int64, email string) (*model.EventParticipation, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, Validation("メールアドレスを入力してください")
	}

	var cancelled *model.EventParticipation
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		p, err := tx.Participations.GetByID(ctx, id)
		if err := mapRepoErr("get participation", err, ErrParticipationNotFound); err != nil {
			return err
		}
		if !strings.EqualFold(email, p.Email) {
			return ErrParticipationEmailMatch
		}
		if !p.Status.PublicCancellable() {
			return ErrCancelNotAllowed
		}

		now := s.now()
		if err := tx.Participations.UpdateStatus(ctx, p.ID, model.ParticipationCancelled, now); err != nil {
			return mapRepoErr("cancel participation", err, ErrParticipationNotFound)
		}
		p.Status = model.ParticipationCancelled
		p.RespondedAt = &now
		cancelled = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}
