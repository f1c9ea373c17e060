package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound 记录不存在（包括不属于当前租户的记录）
var ErrNotFound = errors.New("record not found")

// ==================== 事务支持 ====================

// Store 仓储集合（工作单元）
// 同一个 Store 内的所有仓储共享同一个 *gorm.DB，事务内则共享同一个 tx
type Store struct {
	db *gorm.DB

	Organizations  OrganizationRepository
	Users          UserRepository
	Leads          LeadRepository
	LeadStatuses   LeadStatusRepository
	ActivityTypes  ActivityTypeRepository
	Activities     ActivityRepository
	Groups         GroupRepository
	Memberships    MembershipRepository
	PaymentTypes   PaymentTypeRepository
	Payments       PaymentRepository
	Events         EventRepository
	Participations ParticipationRepository
	Scope          ScopeRepository
}

// NewStore 创建仓储集合
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:             db,
		Organizations:  NewOrganizationRepository(db),
		Users:          NewUserRepository(db),
		Leads:          NewLeadRepository(db),
		LeadStatuses:   NewLeadStatusRepository(db),
		ActivityTypes:  NewActivityTypeRepository(db),
		Activities:     NewActivityRepository(db),
		Groups:         NewGroupRepository(db),
		Memberships:    NewMembershipRepository(db),
		PaymentTypes:   NewPaymentTypeRepository(db),
		Payments:       NewPaymentRepository(db),
		Events:         NewEventRepository(db),
		Participations: NewParticipationRepository(db),
		Scope:          NewScopeRepository(db),
	}
}

// DB 底层连接（仅供健康检查等场景）
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Transaction 执行事务
// fn 返回错误或 panic 时整体回滚
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

// Ping 检查数据库连通性
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// ==================== 分页 ====================

// Page 分页参数
type Page struct {
	Page     int
	PageSize int
}

func (p Page) normalize() (offset, limit int) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 200 {
		p.PageSize = 200
	}
	return (p.Page - 1) * p.PageSize, p.PageSize
}

// notFound 将 gorm.ErrRecordNotFound 统一转换为 ErrNotFound
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
