package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"engage/internal/api/dto"
	"engage/internal/model"
	"engage/internal/repository"
)

// ==================== PaymentService 入金服务 ====================

// PaymentService 入金登记
// 每笔入金同步生成一条「入金」活动，但不计入 evaluation
type PaymentService struct {
	store   *repository.Store
	guard   *AccessGuard
	logger  *zap.Logger
	printer *message.Printer
}

// NewPaymentService 创建入金服务
func NewPaymentService(store *repository.Store, guard *AccessGuard, logger *zap.Logger) *PaymentService {
	return &PaymentService{
		store:   store,
		guard:   guard,
		logger:  logger,
		printer: message.NewPrinter(language.Japanese),
	}
}

// Record 登记入金并生成关联活动
func (s *PaymentService) Record(ctx context.Context, tenant *Tenant, req *dto.PaymentCreateReq) (*model.Payment, error) {
	if req.Amount <= 0 {
		return nil, Validation("金額は1円以上で入力してください")
	}
	if req.PaymentDate.IsZero() {
		return nil, Validation("paymentDate は必須です")
	}

	payment := &model.Payment{
		TenantScoped:  model.TenantScoped{OrganizationID: tenant.OrgID()},
		LeadID:        req.LeadID,
		Amount:        req.Amount,
		PaymentDate:   req.PaymentDate,
		PaymentTypeID: req.PaymentTypeID,
		Description:   strings.TrimSpace(req.Description),
	}

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		guard := s.guard.WithTx(tx)
		if err := guard.Require(ctx, tenant, req.LeadID, ResourceLead); err != nil {
			return err
		}
		if err := guard.Require(ctx, tenant, req.PaymentTypeID, ResourcePaymentType); err != nil {
			return err
		}

		if err := tx.Payments.Create(ctx, payment); err != nil {
			return Internal("create payment", err)
		}

		activityType, err := tx.ActivityTypes.GetByName(ctx, tenant.OrgID(), model.PaymentActivityTypeName)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPaymentActivityTypeMissing
		}
		if err != nil {
			return Internal("get payment activity type", err)
		}

		paymentID := payment.ID
		activity := &model.LeadActivity{
			TenantScoped:   model.TenantScoped{OrganizationID: tenant.OrgID()},
			LeadID:         payment.LeadID,
			ActivityTypeID: activityType.ID,
			Description:    s.describe(payment),
			Type:           model.PaymentActivityTypeName,
			PaymentID:      &paymentID,
		}
		activity.UpdatedAt = payment.PaymentDate
		if err := tx.Activities.Create(ctx, activity); err != nil {
			return Internal("create payment activity", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("入金已登记",
		zap.Int64("org_id", tenant.OrgID()),
		zap.Int64("lead_id", payment.LeadID),
		zap.Int64("payment_id", payment.ID),
		zap.Int64("amount", payment.Amount),
	)
	return payment, nil
}

// describe 活动描述，例如「入金 ¥12,000 / 年会費」
func (s *PaymentService) describe(p *model.Payment) string {
	text := s.printer.Sprintf("%s ¥%d", model.PaymentActivityTypeName, p.Amount)
	if p.Description != "" {
		text += " / " + p.Description
	}
	return text
}

// List 入金列表
func (s *PaymentService) List(ctx context.Context, tenant *Tenant, req *dto.PaymentListReq) ([]model.Payment, int64, error) {
	if req.LeadID > 0 {
		if err := s.guard.Require(ctx, tenant, req.LeadID, ResourceLead); err != nil {
			return nil, 0, err
		}
	}
	list, total, err := s.store.Payments.List(ctx, repository.PaymentFilter{
		OrgID:  tenant.OrgID(),
		LeadID: req.LeadID,
		Page:   repository.Page{Page: req.Page, PageSize: req.PageSize},
	})
	if err != nil {
		return nil, 0, Internal("list payments", err)
	}
	return list, total, nil
}

// Delete 删除入金及其生成的活动（evaluation 不变）
func (s *PaymentService) Delete(ctx context.Context, tenant *Tenant, id int64) error {
	return s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Activities.DeleteByPayment(ctx, tenant.OrgID(), id); err != nil {
			return Internal("delete payment activity", err)
		}
		if err := tx.Payments.Delete(ctx, tenant.OrgID(), id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrPaymentNotFound
			}
			return Internal("delete payment", err)
		}
		return nil
	})
}
