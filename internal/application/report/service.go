// Package report answers read-only questions about a property: occupancy,
// tenant balances, money in and out, water usage and invoice collection.
package report

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/application/txn"
	"github.com/rentledger/backend/internal/domain/billing"
	"github.com/rentledger/backend/internal/domain/invoicing"
	"github.com/rentledger/backend/internal/domain/payment"
	"github.com/rentledger/backend/internal/domain/property"
	"github.com/rentledger/backend/internal/domain/shared/valueobject"
	"github.com/rentledger/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var hundred = decimal.NewFromInt(100)

// ReportService builds property reports
type ReportService struct {
	repos  txn.Repositories
	logger *zap.Logger
}

// NewReportService creates a new ReportService
func NewReportService(repos txn.Repositories, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{repos: repos, logger: logger.Named("report_service")}
}

// Occupancy counts occupied and vacant units. Rate is the occupied share in percent.
func (s *ReportService) Occupancy(ctx context.Context, propertyID uuid.UUID) (*OccupancyReport, error) {
	if _, err := s.repos.Properties().FindByID(ctx, propertyID); err != nil {
		return nil, err
	}
	counts, err := s.repos.Units().CountByStatus(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to count units: %w", err)
	}
	r := &OccupancyReport{
		PropertyID: propertyID,
		Occupied:   counts[property.UnitStatusOccupied],
		Vacant:     counts[property.UnitStatusVacant],
		Rate:       decimal.Zero,
	}
	r.Total = r.Occupied + r.Vacant
	r.Rate = percent(decimal.NewFromInt(r.Occupied), decimal.NewFromInt(r.Total))
	return r, nil
}

// Balances lists every active tenant with the balance or credit left on
// its latest bill. Tenants not yet billed show as settled.
func (s *ReportService) Balances(ctx context.Context, propertyID uuid.UUID, req BalancesRequest) (*BalancesReport, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "report", "balances")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrPropertyID, propertyID.String())

	if _, err := s.repos.Properties().FindByID(ctx, propertyID); err != nil {
		return nil, err
	}
	tenants, err := s.repos.Tenants().FindActiveByProperty(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tenants: %w", err)
	}
	latest, err := s.repos.Bills().FindLatestByProperty(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load bills: %w", err)
	}
	byTenant := make(map[uuid.UUID]*billing.Bill, len(latest))
	for i := range latest {
		byTenant[latest[i].TenantID] = &latest[i]
	}

	r := &BalancesReport{
		PropertyID:       propertyID,
		Items:            make([]TenantBalance, 0, len(tenants)),
		TotalOutstanding: decimal.Zero,
		TotalCredit:      decimal.Zero,
	}
	for _, t := range tenants {
		item := TenantBalance{
			TenantID:    t.ID,
			TenantName:  t.Name,
			UnitID:      t.UnitID,
			Balance:     decimal.Zero,
			Overpayment: decimal.Zero,
			Standing:    StandingSettled,
		}
		if b, ok := byTenant[t.ID]; ok {
			item.Period = b.Period.String()
			item.Balance = b.Balance
			item.Overpayment = b.Overpayment
			switch {
			case b.Balance.IsPositive():
				item.Standing = StandingOwing
			case b.Overpayment.IsPositive():
				item.Standing = StandingCredit
			}
		}
		if req.Standing != "" && item.Standing != req.Standing {
			continue
		}
		if req.MinBalance != nil && item.Balance.LessThan(*req.MinBalance) {
			continue
		}
		r.Items = append(r.Items, item)
		r.TotalOutstanding = r.TotalOutstanding.Add(item.Balance)
		r.TotalCredit = r.TotalCredit.Add(item.Overpayment)
	}
	telemetry.SetAttribute(span, "tenants", len(r.Items))
	return r, nil
}

// Financials totals rent and deposits collected, expenses and the
// management fee. With a period, payments are those made for that period
// and expenses those dated inside it; without one, all time.
func (s *ReportService) Financials(ctx context.Context, propertyID uuid.UUID, period string) (*FinancialReport, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "report", "financials")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrPropertyID, propertyID.String(),
		telemetry.SpanAttrPeriod, period,
	)

	pr, err := txn.ParseOptionalPeriod(period)
	if err != nil {
		return nil, err
	}
	p, err := s.repos.Properties().FindByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	rent, err := s.sumPayments(ctx, propertyID, payment.PaymentTypeRent, pr)
	if err != nil {
		return nil, err
	}
	deposits, err := s.sumPayments(ctx, propertyID, payment.PaymentTypeDeposit, pr)
	if err != nil {
		return nil, err
	}

	r := &FinancialReport{
		PropertyID:        propertyID,
		RentCollected:     rent,
		DepositsCollected: deposits,
		ServiceRateModel:  string(p.ServiceRate.Model),
	}
	if pr != nil {
		r.Period = pr.String()
		from, to := pr.Start(), pr.End()
		r.Expenses, err = s.repos.Expenses().SumByProperty(ctx, propertyID, &from, &to)
	} else {
		r.Expenses, err = s.repos.Expenses().SumByProperty(ctx, propertyID, nil, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to sum expenses: %w", err)
	}
	r.ServiceFee = p.ServiceRate.FeeOn(rent)
	r.NetToLandlord = rent.Sub(r.Expenses).Sub(r.ServiceFee)
	return r, nil
}

func (s *ReportService) sumPayments(ctx context.Context, propertyID uuid.UUID, t payment.PaymentType, pr *valueobject.Period) (decimal.Decimal, error) {
	filter := payment.PaymentFilter{Type: &t, Period: pr}
	sum, err := s.repos.Payments().SumByProperty(ctx, propertyID, filter)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum %s payments: %w", t, err)
	}
	return sum, nil
}

// Utilities reports each billed unit's water consumption and charge for a period
func (s *ReportService) Utilities(ctx context.Context, propertyID uuid.UUID, period string) (*UtilityReport, error) {
	pr, err := txn.ParsePeriod(period)
	if err != nil {
		return nil, err
	}
	p, err := s.repos.Properties().FindByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	bills, err := s.repos.Bills().FindByPropertyAndPeriod(ctx, propertyID, pr)
	if err != nil {
		return nil, fmt.Errorf("failed to load bills: %w", err)
	}

	r := &UtilityReport{
		PropertyID:       propertyID,
		Period:           pr.String(),
		WaterMethod:      p.Utilities.WaterMethod.String(),
		Units:            make([]UnitUtility, 0, len(bills)),
		TotalConsumption: decimal.Zero,
		TotalCharge:      decimal.Zero,
	}
	for _, b := range bills {
		u := UnitUtility{UnitID: b.UnitID, TenantID: b.TenantID, Charge: b.WaterCharge}
		if b.WaterUsage != nil {
			units, prev, cur := b.WaterUsage.Units, b.WaterUsage.PreviousReading, b.WaterUsage.CurrentReading
			u.Consumption, u.PreviousReading, u.CurrentReading = &units, &prev, &cur
			r.TotalConsumption = r.TotalConsumption.Add(units)
		}
		r.TotalCharge = r.TotalCharge.Add(b.WaterCharge)
		r.Units = append(r.Units, u)
	}
	return r, nil
}

// BillingStats counts a period's invoices by status and totals what was
// billed, collected and is still outstanding on its bills
func (s *ReportService) BillingStats(ctx context.Context, propertyID uuid.UUID, period string) (*BillingStats, error) {
	pr, err := txn.ParsePeriod(period)
	if err != nil {
		return nil, err
	}
	if _, err := s.repos.Properties().FindByID(ctx, propertyID); err != nil {
		return nil, err
	}

	r := &BillingStats{
		PropertyID:       propertyID,
		Period:           pr.String(),
		InvoicesByStatus: make(map[string]int64, len(invoicing.AllStatuses)),
		TotalBilled:      decimal.Zero,
		TotalCollected:   decimal.Zero,
		TotalOutstanding: decimal.Zero,
	}
	for _, status := range invoicing.AllStatuses {
		st := status
		n, err := s.repos.Invoices().CountByProperty(ctx, propertyID, invoicing.InvoiceFilter{Period: &pr, Status: &st})
		if err != nil {
			return nil, fmt.Errorf("failed to count %s invoices: %w", status, err)
		}
		r.InvoicesByStatus[status.String()] = n
	}

	bills, err := s.repos.Bills().FindByPropertyAndPeriod(ctx, propertyID, pr)
	if err != nil {
		return nil, fmt.Errorf("failed to load bills: %w", err)
	}
	r.Bills = len(bills)
	for _, b := range bills {
		r.TotalBilled = r.TotalBilled.Add(b.TotalDue)
		r.TotalCollected = r.TotalCollected.Add(b.PaymentsReceived)
		r.TotalOutstanding = r.TotalOutstanding.Add(b.Balance)
	}
	r.CollectionRate = percent(r.TotalCollected, r.TotalBilled)
	return r, nil
}

// percent returns part/whole*100 rounded to two places, zero for an empty whole
func percent(part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return part.Mul(hundred).Div(whole).Round(2)
}
