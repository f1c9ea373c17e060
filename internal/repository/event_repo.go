package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"engage/internal/model"
)

// ==================== EventRepository ====================

// EventRepository 活动仓储接口
type EventRepository interface {
	Create(ctx context.Context, e *model.Event) error
	GetByID(ctx context.Context, orgID, id int64) (*model.Event, error)
	GetByAccessToken(ctx context.Context, token string) (*model.Event, error)
	List(ctx context.Context, filter EventFilter) ([]model.Event, int64, error)
	UpdateFields(ctx context.Context, orgID, id int64, fields map[string]interface{}) error
	// DeleteWithParticipations 删除活动及报名（需在事务内调用）
	DeleteWithParticipations(ctx context.Context, orgID, id int64) error

	// LockByID / LockByAccessToken 行锁读取（SELECT ... FOR UPDATE），需在事务内调用
	// 同一活动的报名请求在此串行化，保证容量判断与判重的一致性
	LockByID(ctx context.Context, orgID, id int64) (*model.Event, error)
	LockByAccessToken(ctx context.Context, token string) (*model.Event, error)

	// CloseEnded 关闭所有已结束的活动，返回关闭数量
	CloseEnded(ctx context.Context, now time.Time) (int64, error)
}

// EventFilter 活动筛选条件
type EventFilter struct {
	OrgID  int64
	Status string
	Page
}

type eventRepo struct {
	tenantRepo[model.Event]
}

// NewEventRepository 创建活动仓储
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepo{tenantRepo[model.Event]{db: db}}
}

func (r *eventRepo) GetByAccessToken(ctx context.Context, token string) (*model.Event, error) {
	var e model.Event
	if err := r.db.WithContext(ctx).Where("access_token = ?", token).First(&e).Error; err != nil {
		return nil, notFound(err)
	}
	return &e, nil
}

func (r *eventRepo) List(ctx context.Context, filter EventFilter) ([]model.Event, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&model.Event{}).
		Where("organization_id = ?", filter.OrgID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, limit := filter.Page.normalize()
	var list []model.Event
	err := query.Order("start_at DESC, id DESC").Offset(offset).Limit(limit).Find(&list).Error
	return list, total, err
}

func (r *eventRepo) DeleteWithParticipations(ctx context.Context, orgID, id int64) error {
	if err := r.db.WithContext(ctx).
		Where("event_id = ? AND organization_id = ?", id, orgID).
		Delete(&model.EventParticipation{}).Error; err != nil {
		return err
	}
	return r.Delete(ctx, orgID, id)
}

func (r *eventRepo) LockByID(ctx context.Context, orgID, id int64) (*model.Event, error) {
	var e model.Event
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND organization_id = ?", id, orgID).
		First(&e).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &e, nil
}

func (r *eventRepo) LockByAccessToken(ctx context.Context, token string) (*model.Event, error) {
	var e model.Event
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("access_token = ?", token).
		First(&e).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &e, nil
}

func (r *eventRepo) CloseEnded(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Event{}).
		Where("status = ? AND end_at < ?", model.EventStatusOpen, now).
		Update("status", model.EventStatusClosed)
	return res.RowsAffected, res.Error
}

// ==================== ParticipationRepository ====================

// ParticipationRepository 活动报名仓储接口
type ParticipationRepository interface {
	Create(ctx context.Context, p *model.EventParticipation) error
	// GetByID 不带租户过滤，仅供公开取消接口使用
	GetByID(ctx context.Context, id int64) (*model.EventParticipation, error)
	GetInOrg(ctx context.Context, orgID, id int64) (*model.EventParticipation, error)
	ListByEvent(ctx context.Context, orgID, eventID int64) ([]model.EventParticipation, error)
	// FindByEmail 最新一条报名（含已取消）
	FindByEmail(ctx context.Context, eventID int64, email string) (*model.EventParticipation, error)
	// FindActiveByEmail 未取消的报名，用于外部报名判重
	FindActiveByEmail(ctx context.Context, eventID int64, email string) (*model.EventParticipation, error)
	// FindActiveByLead 未取消的报名，用于后台报名判重
	FindActiveByLead(ctx context.Context, eventID, leadID int64) (*model.EventParticipation, error)
	CountByStatus(ctx context.Context, eventID int64, status model.ParticipationStatus) (int64, error)
	UpdateStatus(ctx context.Context, id int64, status model.ParticipationStatus, respondedAt time.Time) error
}

type participationRepo struct {
	db *gorm.DB
}

// NewParticipationRepository 创建报名仓储
func NewParticipationRepository(db *gorm.DB) ParticipationRepository {
	return &participationRepo{db: db}
}

func (r *participationRepo) Create(ctx context.Context, p *model.EventParticipation) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *participationRepo) GetByID(ctx context.Context, id int64) (*model.EventParticipation, error) {
	var p model.EventParticipation
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *participationRepo) GetInOrg(ctx context.Context, orgID, id int64) (*model.EventParticipation, error) {
	var p model.EventParticipation
	err := r.db.WithContext(ctx).
		Where("id = ? AND organization_id = ?", id, orgID).
		First(&p).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *participationRepo) ListByEvent(ctx context.Context, orgID, eventID int64) ([]model.EventParticipation, error) {
	var list []model.EventParticipation
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND organization_id = ?", eventID, orgID).
		Order("id ASC").
		Find(&list).Error
	return list, err
}

func (r *participationRepo) FindByEmail(ctx context.Context, eventID int64, email string) (*model.EventParticipation, error) {
	var p model.EventParticipation
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND LOWER(email) = LOWER(?)", eventID, email).
		Order("id DESC").
		First(&p).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *participationRepo) FindActiveByEmail(ctx context.Context, eventID int64, email string) (*model.EventParticipation, error) {
	var p model.EventParticipation
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND LOWER(email) = LOWER(?) AND status <> ?", eventID, email, model.ParticipationCancelled).
		Order("id ASC").
		First(&p).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *participationRepo) FindActiveByLead(ctx context.Context, eventID, leadID int64) (*model.EventParticipation, error) {
	var p model.EventParticipation
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND lead_id = ? AND status <> ?", eventID, leadID, model.ParticipationCancelled).
		Order("id ASC").
		First(&p).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *participationRepo) CountByStatus(ctx context.Context, eventID int64, status model.ParticipationStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.EventParticipation{}).
		Where("event_id = ? AND status = ?", eventID, status).
		Count(&count).Error
	return count, err
}

func (r *participationRepo) UpdateStatus(ctx context.Context, id int64, status model.ParticipationStatus, respondedAt time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&model.EventParticipation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "responded_at": respondedAt})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
