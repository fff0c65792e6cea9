// Package billing runs per-period bill generation and exposes the tenant ledger.
package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/application/txn"
	"github.com/rentledger/backend/internal/domain/billing"
	"github.com/rentledger/backend/internal/domain/invoicing"
	"github.com/rentledger/backend/internal/domain/metering"
	"github.com/rentledger/backend/internal/domain/property"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/rentledger/backend/internal/domain/shared/valueobject"
	"github.com/rentledger/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// InvoiceIssuer issues invoices for freshly generated bills inside the
// generation transaction
type InvoiceIssuer interface {
	IssueWithin(ctx context.Context, repos txn.Repositories, p *property.Property, bills []*billing.Bill) ([]*invoicing.Invoice, error)
}

// BillingService generates bills and answers ledger queries
type BillingService struct {
	scope     txn.TransactionScope
	repos     txn.Repositories
	publisher shared.EventPublisher
	logger    *zap.Logger
	issuer    InvoiceIssuer
	autoIssue bool
}

// NewBillingService creates a new BillingService. With autoIssue set and a
// non-nil issuer, every generated bill is invoiced in the same transaction.
func NewBillingService(
	scope txn.TransactionScope,
	repos txn.Repositories,
	publisher shared.EventPublisher,
	logger *zap.Logger,
	issuer InvoiceIssuer,
	autoIssue bool,
) *BillingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BillingService{
		scope:     scope,
		repos:     repos,
		publisher: publisher,
		logger:    logger.Named("billing_service"),
		issuer:    issuer,
		autoIssue: autoIssue,
	}
}

// GenerateBills creates one bill per active tenant for the period, all or
// nothing. Calling it again for a billed period returns the existing bills,
// or PERIOD_ALREADY_BILLED when strict is set.
func (s *BillingService) GenerateBills(ctx context.Context, propertyID uuid.UUID, period string, strict bool) (*GenerateBillsResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "billing", "generate_bills")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrPropertyID, propertyID.String(),
		telemetry.SpanAttrPeriod, period,
		"strict", strict,
	)

	pr, err := txn.ParsePeriod(period)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var result *GenerateBillsResponse
	var operationErr error
	telemetry.WithProfilingLabels(ctx, telemetry.LedgerOperationLabels(telemetry.OperationGenerateBills, propertyID.String()), func(c context.Context) {
		var (
			created  []*billing.Bill
			existing []billing.Bill
			invoices []*invoicing.Invoice
			events   []shared.DomainEvent
		)
		err := s.scope.Execute(c, func(repos txn.Repositories) error {
			created, existing, invoices, events = nil, nil, nil, nil

			p, err := repos.Properties().FindByIDForUpdate(c, propertyID)
			if err != nil {
				return err
			}
			n, err := repos.Bills().CountByPropertyAndPeriod(c, propertyID, pr)
			if err != nil {
				return fmt.Errorf("failed to count bills: %w", err)
			}
			if n > 0 {
				if strict {
					return periodAlreadyBilled(pr)
				}
				existing, err = repos.Bills().FindByPropertyAndPeriod(c, propertyID, pr)
				if err != nil {
					return fmt.Errorf("failed to load bills: %w", err)
				}
				return nil
			}

			in, err := s.snapshot(c, repos, p, pr)
			if err != nil {
				return err
			}
			created, err = billing.GenerateBills(in)
			if err != nil {
				return err
			}
			if len(created) == 0 {
				return nil
			}
			if err := repos.Bills().CreateBatch(c, created); err != nil {
				return err
			}
			for _, b := range created {
				events = append(events, shared.CollectEvents(b)...)
			}

			if s.autoIssue && s.issuer != nil {
				invoices, err = s.issuer.IssueWithin(c, repos, p, created)
				if err != nil {
					return fmt.Errorf("failed to issue invoices: %w", err)
				}
				for _, inv := range invoices {
					events = append(events, shared.CollectEvents(inv)...)
				}
			}
			return nil
		})

		if errors.Is(err, shared.ErrPeriodAlreadyBilled) && !strict {
			// a concurrent call won the unique index; return its bills
			s.logger.Info("period billed concurrently, returning existing bills",
				zap.String("property_id", propertyID.String()),
				zap.String("period", pr.String()),
			)
			existing, err = s.repos.Bills().FindByPropertyAndPeriod(c, propertyID, pr)
			created = nil
		}
		if err != nil {
			telemetry.RecordError(span, err)
			operationErr = err
			return
		}

		result = &GenerateBillsResponse{PropertyID: propertyID, Period: pr.String()}
		if created != nil {
			txn.Publish(c, s.publisher, s.logger, events)
			result.Created = true
			result.InvoicesIssued = len(invoices)
			result.Bills = make([]BillResponse, len(created))
			for i, b := range created {
				result.Bills[i] = ToBillResponse(b)
			}
			s.logger.Info("bills generated",
				zap.String("property_id", propertyID.String()),
				zap.String("period", pr.String()),
				zap.Int("bills", len(created)),
				zap.Int("invoices", len(invoices)),
			)
		} else {
			result.Bills = toBillResponses(existing)
		}
		telemetry.SetAttributes(span,
			telemetry.SpanAttrBillCount, len(result.Bills),
			"created", result.Created,
		)
	})

	return result, operationErr
}

// snapshot loads what the engine bills from: active tenants, their readings
// up to the period end and their latest earlier bills
func (s *BillingService) snapshot(ctx context.Context, repos txn.Repositories, p *property.Property, pr valueobject.Period) (billing.GenerationInput, error) {
	in := billing.GenerationInput{
		Property:   p,
		Period:     pr,
		Readings:   make(map[string][]metering.MeterReading),
		PriorBills: make(map[uuid.UUID]*billing.Bill),
	}

	tenants, err := repos.Tenants().FindActiveByProperty(ctx, p.ID)
	if err != nil {
		return in, fmt.Errorf("failed to load tenants: %w", err)
	}
	in.Tenants = tenants

	// a later bill already carried this tenant's history forward; billing an
	// earlier month now would count that carry twice
	latest, err := repos.Bills().FindLatestByProperty(ctx, p.ID)
	if err != nil {
		return in, fmt.Errorf("failed to load latest bills: %w", err)
	}
	active := make(map[uuid.UUID]struct{}, len(tenants))
	for _, t := range tenants {
		active[t.ID] = struct{}{}
	}
	for _, b := range latest {
		if _, ok := active[b.TenantID]; ok && b.Period.After(pr) {
			return in, shared.NewDomainError(shared.CodePeriodSuperseded,
				fmt.Sprintf("Tenant %s is already billed for %s, after %s", b.TenantID, b.Period, pr))
		}
	}

	end := pr.End()
	for _, t := range tenants {
		if p.IsMetered() {
			readings, err := repos.Readings().FindByUnit(ctx, p.ID, t.UnitID, &end)
			if err != nil {
				return in, fmt.Errorf("failed to load readings for unit %s: %w", t.UnitID, err)
			}
			in.Readings[t.UnitID] = readings
		}

		prior, err := repos.Bills().FindLatestBefore(ctx, t.ID, pr)
		switch {
		case err == nil:
			in.PriorBills[t.ID] = prior
		case !txn.IsNotFound(err):
			return in, fmt.Errorf("failed to load prior bill for tenant %s: %w", t.ID, err)
		}
	}
	return in, nil
}

func periodAlreadyBilled(pr valueobject.Period) error {
	return shared.NewDomainError(shared.CodePeriodAlreadyBilled, fmt.Sprintf("Period %s is already billed", pr))
}

// ListBills returns a property's bills for one period ordered by unit
func (s *BillingService) ListBills(ctx context.Context, propertyID uuid.UUID, period string) ([]BillResponse, error) {
	pr, err := txn.ParsePeriod(period)
	if err != nil {
		return nil, err
	}
	if _, err := s.repos.Properties().FindByID(ctx, propertyID); err != nil {
		return nil, err
	}
	bills, err := s.repos.Bills().FindByPropertyAndPeriod(ctx, propertyID, pr)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	return toBillResponses(bills), nil
}

// ListTenantBills returns a tenant's bills oldest period first
func (s *BillingService) ListTenantBills(ctx context.Context, tenantID uuid.UUID) ([]BillResponse, error) {
	if _, err := s.repos.Tenants().FindByID(ctx, tenantID); err != nil {
		return nil, err
	}
	bills, err := s.repos.Bills().FindByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	return toBillResponses(bills), nil
}

// CarryForward returns what the tenant would carry into period from its
// most recent earlier bill
func (s *BillingService) CarryForward(ctx context.Context, tenantID uuid.UUID, period string) (*CarryForwardResponse, error) {
	pr, err := txn.ParsePeriod(period)
	if err != nil {
		return nil, err
	}
	resp := &CarryForwardResponse{TenantID: tenantID, Period: pr.String()}
	prior, err := s.repos.Bills().FindLatestBefore(ctx, tenantID, pr)
	switch {
	case err == nil:
		resp.FromBillID = &prior.ID
	case txn.IsNotFound(err):
		prior = nil
	default:
		return nil, fmt.Errorf("failed to load prior bill: %w", err)
	}
	resp.CarryForward = billing.ResolveCarryForward(prior)
	return resp, nil
}
