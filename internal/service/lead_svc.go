package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"engage/internal/api/dto"
	"engage/internal/model"
	"engage/internal/repository"
)

// ==================== LeadService 线索服务 ====================

// LeadService 线索服务
type LeadService struct {
	store  *repository.Store
	guard  *AccessGuard
	logger *zap.Logger
}

// NewLeadService 创建线索服务
func NewLeadService(store *repository.Store, guard *AccessGuard, logger *zap.Logger) *LeadService {
	return &LeadService{store: store, guard: guard, logger: logger}
}

// 详情页最近活动条数
const leadDetailActivityLimit = 50

// List 线索列表
func (s *LeadService) List(ctx context.Context, tenant *Tenant, req *dto.LeadListReq) ([]model.Lead, int64, error) {
	list, total, err := s.store.Leads.List(ctx, repository.LeadFilter{
		OrgID:    tenant.OrgID(),
		Keyword:  strings.TrimSpace(req.Keyword),
		StatusID: req.StatusID,
		Type:     req.Type,
		GroupID:  req.GroupID,
		Page:     repository.Page{Page: req.Page, PageSize: req.PageSize},
	})
	if err != nil {
		return nil, 0, Internal("list leads", err)
	}
	return list, total, nil
}

// Create 创建线索
func (s *LeadService) Create(ctx context.Context, tenant *Tenant, req *dto.LeadCreateReq) (*model.Lead, error) {
	if req.StatusID != nil {
		if err := s.guard.Require(ctx, tenant, *req.StatusID, ResourceLeadStatus); err != nil {
			return nil, err
		}
	}

	leadType := model.LeadType(req.Type)
	if leadType == "" {
		leadType = model.LeadTypeIndividual
	}
	lead := &model.Lead{
		TenantScoped: model.TenantScoped{OrganizationID: tenant.OrgID()},
		Name:         strings.TrimSpace(req.Name),
		Kana:         req.Kana,
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:        req.Phone,
		Address:      req.Address,
		Type:         leadType,
		Memo:         req.Memo,
		Tags:         model.TagList(req.Tags),
		StatusID:     req.StatusID,
	}
	if err := s.store.Leads.Create(ctx, lead); err != nil {
		return nil, Internal("create lead", err)
	}
	return lead, nil
}

// Get 线索详情：分组、最近活动、入金并发加载
func (s *LeadService) Get(ctx context.Context, tenant *Tenant, id int64) (*dto.LeadDetailResp, error) {
	lead, err := s.store.Leads.GetWithStatus(ctx, tenant.OrgID(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrLeadNotFound
	}
	if err != nil {
		return nil, Internal("get lead", err)
	}

	resp := &dto.LeadDetailResp{Lead: lead}
	orgID := tenant.OrgID()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		groups, err := s.store.Memberships.GroupsByLead(gctx, orgID, id)
		resp.Groups = groups
		return err
	})
	g.Go(func() error {
		activities, _, err := s.store.Activities.List(gctx, repository.ActivityFilter{
			OrgID:  orgID,
			LeadID: id,
			Page:   repository.Page{Page: 1, PageSize: leadDetailActivityLimit},
		})
		resp.Activities = activities
		return err
	})
	g.Go(func() error {
		payments, _, err := s.store.Payments.List(gctx, repository.PaymentFilter{
			OrgID:  orgID,
			LeadID: id,
			Page:   repository.Page{Page: 1, PageSize: 200},
		})
		resp.Payments = payments
		return err
	})
	g.Go(func() error {
		total, err := s.store.Payments.SumByLead(gctx, orgID, id)
		resp.PaymentTotal = total
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, Internal("load lead detail", err)
	}
	return resp, nil
}

// Update 更新线索基本信息
func (s *LeadService) Update(ctx context.Context, tenant *Tenant, id int64, req *dto.LeadUpdateReq) (*model.Lead, error) {
	fields := make(map[string]interface{})
	if req.Name != nil {
		fields["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Kana != nil {
		fields["kana"] = *req.Kana
	}
	if req.Email != nil {
		fields["email"] = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Phone != nil {
		fields["phone"] = *req.Phone
	}
	if req.Address != nil {
		fields["address"] = *req.Address
	}
	if req.Type != nil {
		fields["type"] = *req.Type
	}
	if req.Memo != nil {
		fields["memo"] = *req.Memo
	}
	if req.Tags != nil {
		fields["tags"] = model.TagList(req.Tags)
	}

	if err := s.store.Leads.UpdateFields(ctx, tenant.OrgID(), id, fields); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrLeadNotFound
		}
		return nil, Internal("update lead", err)
	}
	return s.reload(ctx, tenant, id)
}

// SetStatus 修改线索状态，statusID 为 nil 时清空
func (s *LeadService) SetStatus(ctx context.Context, tenant *Tenant, id int64, statusID *int64) (*model.Lead, error) {
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		guard := s.guard.WithTx(tx)
		if err := guard.Require(ctx, tenant, id, ResourceLead); err != nil {
			return err
		}
		if statusID != nil {
			if err := guard.Require(ctx, tenant, *statusID, ResourceLeadStatus); err != nil {
				return err
			}
		}
		if err := tx.Leads.UpdateFields(ctx, tenant.OrgID(), id, map[string]interface{}{"status_id": statusID}); err != nil {
			return Internal("update lead status", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, tenant, id)
}

// Delete 删除线索及其活动、入金、分组关系
func (s *LeadService) Delete(ctx context.Context, tenant *Tenant, id int64) error {
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		return tx.Leads.DeleteCascade(ctx, tenant.OrgID(), id)
	})
	if errors.Is(err, repository.ErrNotFound) {
		return ErrLeadNotFound
	}
	if err != nil {
		return Internal("delete lead", err)
	}
	s.logger.Info("线索已删除", zap.Int64("org_id", tenant.OrgID()), zap.Int64("lead_id", id))
	return nil
}

func (s *LeadService) reload(ctx context.Context, tenant *Tenant, id int64) (*model.Lead, error) {
	lead, err := s.store.Leads.GetWithStatus(ctx, tenant.OrgID(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrLeadNotFound
	}
	if err != nil {
		return nil, Internal("get lead", err)
	}
	return lead, nil
}
