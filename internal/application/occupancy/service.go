// Package occupancy holds the tenancy use cases: assignment, vacate, transfer
// and the unit occupancy queries.
package occupancy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/application/txn"
	"github.com/rentledger/backend/internal/domain/metering"
	"github.com/rentledger/backend/internal/domain/occupancy"
	"github.com/rentledger/backend/internal/domain/property"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/rentledger/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrInitialReadingRequired is returned when a metered property gets a tenant without a baseline reading
var ErrInitialReadingRequired = shared.NewDomainError("INITIAL_READING_REQUIRED",
	"An initial water reading is required for metered properties")

// TenantService manages tenancies
type TenantService struct {
	scope     txn.TransactionScope
	repos     txn.Repositories
	publisher shared.EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewTenantService creates a new TenantService
func NewTenantService(scope txn.TransactionScope, repos txn.Repositories, publisher shared.EventPublisher, logger *zap.Logger) *TenantService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TenantService{
		scope:     scope,
		repos:     repos,
		publisher: publisher,
		logger:    logger.Named("tenant_service"),
		now:       time.Now,
	}
}

// AssignTenant places a renter in a vacant unit. For metered properties the
// initial water reading is stored as the tenancy's baseline in the same transaction.
func (s *TenantService) AssignTenant(ctx context.Context, req AssignTenantRequest) (*TenantResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "tenant", "assign")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrPropertyID, req.PropertyID.String(),
		telemetry.SpanAttrUnitID, req.UnitID,
	)

	var (
		tenant *occupancy.Tenant
		events []shared.DomainEvent
	)
	err := s.scope.Execute(ctx, func(repos txn.Repositories) error {
		p, err := repos.Properties().FindByID(ctx, req.PropertyID)
		if err != nil {
			return err
		}
		if p.IsMetered() && req.InitialWaterReading == nil {
			return ErrInitialReadingRequired
		}

		unit, err := repos.Units().FindByCodeForUpdate(ctx, p.ID, req.UnitID)
		if err != nil {
			return err
		}
		tenant, err = occupancy.Assign(unit, occupancy.AssignInput{
			Name:            req.Name,
			Phone:           req.Phone,
			Email:           req.Email,
			IDNumber:        req.IDNumber,
			LeaseStart:      req.LeaseStart,
			RentOverride:    req.Rent,
			DepositOverride: req.Deposit,
		})
		if err != nil {
			return err
		}

		if err := repos.Tenants().Save(ctx, tenant); err != nil {
			return fmt.Errorf("failed to save tenant: %w", err)
		}
		if err := repos.Units().SaveWithLock(ctx, unit); err != nil {
			return fmt.Errorf("failed to save unit: %w", err)
		}

		events = shared.CollectEvents(tenant)
		if p.IsMetered() {
			reading, err := recordBaseline(ctx, repos, p.ID, unit.Code, tenant.ID, req.LeaseStart, *req.InitialWaterReading)
			if err != nil {
				return err
			}
			events = append(events, shared.CollectEvents(reading)...)
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	txn.Publish(ctx, s.publisher, s.logger, events)
	telemetry.SetAttributes(span, telemetry.SpanAttrTenantID, tenant.ID.String())
	s.logger.Info("tenant assigned",
		zap.String("property_id", tenant.PropertyID.String()),
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("unit_id", tenant.UnitID),
	)

	resp := ToTenantResponse(tenant)
	return &resp, nil
}

// recordBaseline stores the opening reading of a tenancy on a unit
func recordBaseline(ctx context.Context, repos txn.Repositories, propertyID uuid.UUID, unitCode string, tenantID uuid.UUID, date time.Time, value decimal.Decimal) (*metering.MeterReading, error) {
	latest, err := repos.Readings().Latest(ctx, propertyID, unitCode)
	if err != nil && !txn.IsNotFound(err) {
		return nil, fmt.Errorf("failed to load latest reading: %w", err)
	}
	reading, err := metering.RecordReading(metering.NewReadingInput{
		PropertyID:  propertyID,
		UnitID:      unitCode,
		TenantID:    &tenantID,
		ReadingDate: date,
		Value:       value,
		Baseline:    true,
	}, latest)
	if err != nil {
		return nil, err
	}
	if err := repos.Readings().Save(ctx, reading); err != nil {
		return nil, fmt.Errorf("failed to save reading: %w", err)
	}
	return reading, nil
}

// GetTenant returns a tenant by id
func (s *TenantService) GetTenant(ctx context.Context, id uuid.UUID) (*TenantResponse, error) {
	t, err := s.repos.Tenants().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToTenantResponse(t)
	return &resp, nil
}

// ListTenants returns a page of tenants
func (s *TenantService) ListTenants(ctx context.Context, req ListTenantsRequest) (*ListTenantsResponse, error) {
	filter := occupancy.TenantFilter{Filter: shared.DefaultFilter(), PropertyID: req.PropertyID}
	filter.OrderBy = "unit_id"
	filter.OrderDir = "asc"
	filter.Filter = filter.Filter.WithPage(req.Page, req.PageSize)
	filter.Search = req.Search
	if req.Status != "" {
		status := occupancy.TenantStatus(req.Status)
		if !status.IsValid() {
			return nil, shared.NewDomainError(shared.CodeInvalidStatus, fmt.Sprintf("Unknown tenant status %q", req.Status))
		}
		filter.Status = &status
	}

	tenants, err := s.repos.Tenants().FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	total, err := s.repos.Tenants().Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count tenants: %w", err)
	}

	resp := &ListTenantsResponse{
		Items:    make([]TenantResponse, 0, len(tenants)),
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}
	for i := range tenants {
		resp.Items = append(resp.Items, ToTenantResponse(&tenants[i]))
	}
	return resp, nil
}

// VacateTenant ends a tenancy and frees its unit. Outstanding balances stay on
// the tenant's bills. Vacating twice is a no-op.
func (s *TenantService) VacateTenant(ctx context.Context, id uuid.UUID, req VacateTenantRequest) (*TenantResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "tenant", "vacate")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrTenantID, id.String())

	at := s.now().UTC()
	if req.VacatedAt != nil {
		at = req.VacatedAt.UTC()
	}

	var tenant *occupancy.Tenant
	err := s.scope.Execute(ctx, func(repos txn.Repositories) error {
		t, err := repos.Tenants().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		tenant = t
		if !t.IsActive() {
			return nil
		}

		unit, err := repos.Units().FindByCodeForUpdate(ctx, t.PropertyID, t.UnitID)
		if err != nil && !errors.Is(err, shared.ErrUnitNotFound) {
			return err
		}
		unitVersion := 0
		if unit != nil {
			unitVersion = unit.Version
		}

		t.Vacate(unit, at)
		if err := repos.Tenants().SaveWithLock(ctx, t); err != nil {
			return fmt.Errorf("failed to save tenant: %w", err)
		}
		if unit != nil && unit.Version != unitVersion {
			if err := repos.Units().SaveWithLock(ctx, unit); err != nil {
				return fmt.Errorf("failed to save unit: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if events := shared.CollectEvents(tenant); len(events) > 0 {
		txn.Publish(ctx, s.publisher, s.logger, events)
		s.logger.Info("tenant vacated",
			zap.String("tenant_id", tenant.ID.String()),
			zap.String("unit_id", tenant.UnitID),
		)
	}

	resp := ToTenantResponse(tenant)
	return &resp, nil
}

// TransferTenant moves an active tenant to another vacant unit of the same
// property. The tenant keeps its identity so carried balances follow it.
func (s *TenantService) TransferTenant(ctx context.Context, id uuid.UUID, req TransferTenantRequest) (*TenantResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "tenant", "transfer")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, id.String(),
		telemetry.SpanAttrUnitID, req.UnitID,
	)

	date := s.now().UTC()
	if req.Date != nil {
		date = req.Date.UTC()
	}

	var (
		tenant *occupancy.Tenant
		events []shared.DomainEvent
	)
	err := s.scope.Execute(ctx, func(repos txn.Repositories) error {
		t, err := repos.Tenants().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		p, err := repos.Properties().FindByID(ctx, t.PropertyID)
		if err != nil {
			return err
		}
		if p.IsMetered() && req.InitialWaterReading == nil {
			return ErrInitialReadingRequired
		}

		from, to, err := lockUnitPair(ctx, repos, t.PropertyID, t.UnitID, req.UnitID)
		if err != nil {
			return err
		}
		fromVersion := 0
		if from != nil {
			fromVersion = from.Version
		}

		if err := t.Transfer(from, to); err != nil {
			return err
		}
		if err := repos.Tenants().SaveWithLock(ctx, t); err != nil {
			return fmt.Errorf("failed to save tenant: %w", err)
		}
		if from != nil && from.Version != fromVersion {
			if err := repos.Units().SaveWithLock(ctx, from); err != nil {
				return fmt.Errorf("failed to save unit: %w", err)
			}
		}
		if err := repos.Units().SaveWithLock(ctx, to); err != nil {
			return fmt.Errorf("failed to save unit: %w", err)
		}

		events = shared.CollectEvents(t)
		if p.IsMetered() {
			reading, err := recordBaseline(ctx, repos, p.ID, to.Code, t.ID, date, *req.InitialWaterReading)
			if err != nil {
				return err
			}
			events = append(events, shared.CollectEvents(reading)...)
		}
		tenant = t
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	txn.Publish(ctx, s.publisher, s.logger, events)
	s.logger.Info("tenant transferred",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("unit_id", tenant.UnitID),
	)
	resp := ToTenantResponse(tenant)
	return &resp, nil
}

// lockUnitPair locks both units in code order. The current unit may be missing.
func lockUnitPair(ctx context.Context, repos txn.Repositories, propertyID uuid.UUID, fromCode, toCode string) (*property.Unit, *property.Unit, error) {
	codes := []string{fromCode, toCode}
	if toCode < fromCode {
		codes = []string{toCode, fromCode}
	}
	locked := make(map[string]*property.Unit, 2)
	for _, code := range codes {
		u, err := repos.Units().FindByCodeForUpdate(ctx, propertyID, code)
		if err != nil {
			if code == fromCode && errors.Is(err, shared.ErrUnitNotFound) {
				continue
			}
			return nil, nil, err
		}
		locked[code] = u
	}
	return locked[fromCode], locked[toCode], nil
}

// ListUnits returns a property's units with their current tenants
func (s *TenantService) ListUnits(ctx context.Context, propertyID uuid.UUID, status string) ([]UnitResponse, error) {
	if _, err := s.repos.Properties().FindByID(ctx, propertyID); err != nil {
		return nil, err
	}
	var filter *property.UnitStatus
	if status != "" {
		st := property.UnitStatus(status)
		if !st.IsValid() {
			return nil, shared.NewDomainError(shared.CodeInvalidStatus, fmt.Sprintf("Unknown unit status %q", status))
		}
		filter = &st
	}

	units, err := s.repos.Units().FindByProperty(ctx, propertyID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list units: %w", err)
	}
	tenants, err := s.repos.Tenants().FindActiveByProperty(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	byID := make(map[uuid.UUID]*occupancy.Tenant, len(tenants))
	for i := range tenants {
		byID[tenants[i].ID] = &tenants[i]
	}

	out := make([]UnitResponse, 0, len(units))
	for i := range units {
		resp := ToUnitResponse(&units[i])
		if units[i].TenantID != nil {
			if t, ok := byID[*units[i].TenantID]; ok {
				tr := ToTenantResponse(t)
				resp.Tenant = &tr
			}
		}
		out = append(out, resp)
	}
	return out, nil
}

// VacantUnits returns the units that can take a new tenant
func (s *TenantService) VacantUnits(ctx context.Context, propertyID uuid.UUID) ([]property.Unit, error) {
	status := property.UnitStatusVacant
	return s.repos.Units().FindByProperty(ctx, propertyID, &status)
}

// OccupiedUnits pairs each occupied unit with its active tenant
func (s *TenantService) OccupiedUnits(ctx context.Context, propertyID uuid.UUID) ([]occupancy.OccupiedUnit, error) {
	status := property.UnitStatusOccupied
	units, err := s.repos.Units().FindByProperty(ctx, propertyID, &status)
	if err != nil {
		return nil, err
	}
	tenants, err := s.repos.Tenants().FindActiveByProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	byUnit := make(map[string]occupancy.Tenant, len(tenants))
	for _, t := range tenants {
		byUnit[t.UnitID] = t
	}

	out := make([]occupancy.OccupiedUnit, 0, len(units))
	for _, u := range units {
		t, ok := byUnit[u.Code]
		if !ok {
			s.logger.Warn("occupied unit has no active tenant",
				zap.String("property_id", propertyID.String()),
				zap.String("unit_id", u.Code),
			)
			continue
		}
		out = append(out, occupancy.OccupiedUnit{Unit: u, Tenant: t})
	}
	return out, nil
}
