// Package payment records tenant payments and applies rent payments to the
// bill and invoice of the period they name.
package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/application/txn"
	"github.com/rentledger/backend/internal/domain/billing"
	"github.com/rentledger/backend/internal/domain/invoicing"
	"github.com/rentledger/backend/internal/domain/payment"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/rentledger/backend/internal/domain/shared/valueobject"
	"github.com/rentledger/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

const defaultIdempotencyTTL = 24 * time.Hour

// PaymentService posts payments to the ledger
type PaymentService struct {
	scope     txn.TransactionScope
	repos     txn.Repositories
	publisher shared.EventPublisher
	logger    *zap.Logger
	idem      shared.IdempotencyStore
	idemTTL   time.Duration
	now       func() time.Time
}

// NewPaymentService creates a new PaymentService. idem may be nil, in which
// case Idempotency-Key values are ignored.
func NewPaymentService(scope txn.TransactionScope, repos txn.Repositories, publisher shared.EventPublisher, logger *zap.Logger, idem shared.IdempotencyStore, idemTTL time.Duration) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if idemTTL <= 0 {
		idemTTL = defaultIdempotencyTTL
	}
	return &PaymentService{
		scope:     scope,
		repos:     repos,
		publisher: publisher,
		logger:    logger.Named("payment_service"),
		idem:      idem,
		idemTTL:   idemTTL,
		now:       time.Now,
	}
}

// RecordPayment records a payment for a tenant.
//
// A Rent payment is added to the bill for (tenant, unit, period) and the
// linked invoice is re-synced, all in one transaction; the bill must exist.
// A Deposit payment is stored for reconciliation and never touches a bill.
// A non-empty idempotencyKey already seen within the TTL fails with DUPLICATE_REQUEST.
func (s *PaymentService) RecordPayment(ctx context.Context, propertyID uuid.UUID, req RecordPaymentRequest, idempotencyKey string) (*RecordPaymentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "record")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrPropertyID, propertyID.String(),
		telemetry.SpanAttrTenantID, req.TenantID.String(),
		telemetry.SpanAttrPeriod, req.Period,
		telemetry.SpanAttrAmount, req.Amount.String(),
	)

	period, err := txn.ParsePeriod(req.Period)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	req.Amount = valueobject.RoundAmount(req.Amount)
	if !req.Amount.IsPositive() {
		err := shared.NewDomainError(shared.CodeInvalidAmount,
			fmt.Sprintf("Payment amount must be greater than zero, got %s", req.Amount.String()))
		telemetry.RecordError(span, err)
		return nil, err
	}

	key, claimed, err := s.claim(ctx, propertyID, idempotencyKey)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var result *RecordPaymentResponse
	var operationErr error
	telemetry.WithProfilingLabels(ctx, telemetry.LedgerOperationLabels(telemetry.OperationRecordPayment, propertyID.String()), func(c context.Context) {
		var (
			recorded *payment.Payment
			bill     *billing.Bill
			inv      *invoicing.Invoice
		)
		err := s.scope.Execute(c, func(repos txn.Repositories) error {
			recorded, bill, inv = nil, nil, nil

			tenant, err := repos.Tenants().FindByIDForUpdate(c, req.TenantID)
			if err != nil {
				return err
			}
			if tenant.PropertyID != propertyID {
				return shared.NewDomainError(shared.CodeTenantNotFound,
					fmt.Sprintf("Tenant %s does not belong to property %s", req.TenantID, propertyID))
			}
			unitID := req.UnitID
			if unitID == "" {
				unitID = tenant.UnitID
			}
			paidAt := s.now()
			if req.PaidAt != nil {
				paidAt = *req.PaidAt
			}

			p, err := payment.NewPayment(payment.RecordInput{
				PropertyID: propertyID,
				TenantID:   tenant.ID,
				UnitID:     unitID,
				Period:     period,
				Amount:     req.Amount,
				PaidAt:     paidAt,
				Type:       payment.PaymentType(req.Type),
				Method:     payment.Method(req.Method),
				Reference:  req.Reference,
			})
			if err != nil {
				return err
			}

			if p.AppliesToLedger() {
				bill, err = repos.Bills().FindForPeriodForUpdate(c, tenant.ID, unitID, period)
				if err != nil {
					return err
				}
				if err := bill.ApplyPayment(p.Amount); err != nil {
					return err
				}
				if err := repos.Bills().SaveWithLock(c, bill); err != nil {
					return fmt.Errorf("failed to save bill: %w", err)
				}

				found, err := repos.Invoices().FindByBillForUpdate(c, bill.ID)
				switch {
				case err == nil:
					found.SyncWithBill(bill, paidAt)
					if err := repos.Invoices().SaveWithLock(c, found); err != nil {
						return fmt.Errorf("failed to save invoice: %w", err)
					}
					inv = found
				case !txn.IsNotFound(err):
					return fmt.Errorf("failed to load invoice: %w", err)
				}
				p.LinkBill(&bill.ID)
			} else {
				p.LinkBill(nil)
			}

			if err := repos.Payments().Create(c, p); err != nil {
				return fmt.Errorf("failed to create payment: %w", err)
			}
			recorded = p
			return nil
		})
		if err != nil {
			telemetry.RecordError(span, err)
			operationErr = err
			return
		}

		events := shared.CollectEvents(recorded)
		result = &RecordPaymentResponse{Payment: ToPaymentResponse(recorded)}
		if bill != nil {
			events = append(events, shared.CollectEvents(bill)...)
			result.Applied = &AppliedTo{
				BillID:      bill.ID,
				Balance:     bill.Balance,
				Overpayment: bill.Overpayment,
			}
			if inv != nil {
				events = append(events, shared.CollectEvents(inv)...)
				result.Applied.InvoiceID = &inv.ID
				result.Applied.InvoiceStatus = inv.Status.String()
			}
		}
		txn.Publish(c, s.publisher, s.logger, events)

		telemetry.SetAttributes(span,
			telemetry.SpanAttrPaymentID, recorded.ID.String(),
			telemetry.SpanAttrPaymentType, recorded.Type.String(),
		)
		s.logger.Info("payment recorded",
			zap.String("payment_id", recorded.ID.String()),
			zap.String("tenant_id", recorded.TenantID.String()),
			zap.String("period", recorded.Period.String()),
			zap.String("type", recorded.Type.String()),
			zap.String("amount", recorded.Amount.String()),
		)
	})

	if operationErr != nil && claimed {
		if err := s.idem.Release(ctx, key); err != nil {
			s.logger.Warn("failed to release idempotency key", zap.String("key", key), zap.Error(err))
		}
	}
	return result, operationErr
}

// claim takes the idempotency key for this request. A store failure is
// logged and the request proceeds unprotected.
func (s *PaymentService) claim(ctx context.Context, propertyID uuid.UUID, idempotencyKey string) (string, bool, error) {
	if s.idem == nil || idempotencyKey == "" {
		return "", false, nil
	}
	key := fmt.Sprintf("payment:%s:%s", propertyID, idempotencyKey)
	ok, err := s.idem.MarkProcessed(ctx, key, s.idemTTL)
	if err != nil {
		s.logger.Warn("idempotency store unavailable", zap.String("key", key), zap.Error(err))
		return key, false, nil
	}
	if !ok {
		return key, false, shared.NewDomainError(shared.CodeDuplicateRequest,
			fmt.Sprintf("Payment with Idempotency-Key %q was already submitted", idempotencyKey))
	}
	return key, true, nil
}

// ListPayments returns a page of a property's payments, newest first
func (s *PaymentService) ListPayments(ctx context.Context, propertyID uuid.UUID, req ListPaymentsRequest) (*ListPaymentsResponse, error) {
	filter := payment.PaymentFilter{Filter: shared.DefaultFilter(), TenantID: req.TenantID}
	filter.OrderBy = "paid_at"
	filter.OrderDir = "desc"
	filter.Filter = filter.Filter.WithPage(req.Page, req.PageSize)
	period, err := txn.ParseOptionalPeriod(req.Period)
	if err != nil {
		return nil, err
	}
	filter.Period = period
	if req.Type != "" {
		t := payment.PaymentType(req.Type)
		if !t.IsValid() {
			return nil, shared.NewDomainError("INVALID_PAYMENT_TYPE", fmt.Sprintf("Unknown payment type %q", req.Type))
		}
		filter.Type = &t
	}

	payments, err := s.repos.Payments().FindByProperty(ctx, propertyID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	total, err := s.repos.Payments().CountByProperty(ctx, propertyID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count payments: %w", err)
	}
	return &ListPaymentsResponse{
		Items:    toPaymentResponses(payments),
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}

// ListTenantPayments returns every payment from a tenant
func (s *PaymentService) ListTenantPayments(ctx context.Context, tenantID uuid.UUID) ([]PaymentResponse, error) {
	if _, err := s.repos.Tenants().FindByID(ctx, tenantID); err != nil {
		return nil, err
	}
	payments, err := s.repos.Payments().FindByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return toPaymentResponses(payments), nil
}

// DepositStatus compares the tenant's agreed deposit with deposit payments
func (s *PaymentService) DepositStatus(ctx context.Context, tenantID uuid.UUID) (*DepositStatusResponse, error) {
	tenant, err := s.repos.Tenants().FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	payments, err := s.repos.Payments().FindByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return &DepositStatusResponse{
		TenantID:      tenantID,
		DepositStatus: payment.ReconcileDeposit(tenant.Deposit, payments),
	}, nil
}
