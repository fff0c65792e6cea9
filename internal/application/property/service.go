// Package property holds the use cases for registering rental properties and
// maintaining their billing configuration.
package property

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/application/txn"
	"github.com/rentledger/backend/internal/domain/property"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/rentledger/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// PropertyService handles property registration and settings
type PropertyService struct {
	scope     txn.TransactionScope
	repos     txn.Repositories
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewPropertyService creates a new PropertyService
func NewPropertyService(scope txn.TransactionScope, repos txn.Repositories, publisher shared.EventPublisher, logger *zap.Logger) *PropertyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PropertyService{
		scope:     scope,
		repos:     repos,
		publisher: publisher,
		logger:    logger.Named("property_service"),
	}
}

// CreateProperty registers a property together with one vacant unit per declared unit id
func (s *PropertyService) CreateProperty(ctx context.Context, req CreatePropertyRequest) (*PropertyResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "property", "create")
	defer span.End()

	unitTypes := make([]property.UnitType, 0, len(req.UnitTypes))
	for _, ut := range req.UnitTypes {
		if ut.Count != 0 && ut.Count != len(ut.UnitIDs) {
			err := shared.NewDomainError("INVALID_UNIT_TYPES",
				fmt.Sprintf("Unit type %s declares %d units but lists %d unit ids", ut.Type, ut.Count, len(ut.UnitIDs)))
			telemetry.RecordError(span, err)
			return nil, err
		}
		unitTypes = append(unitTypes, property.UnitType{
			Type:    ut.Type,
			Rent:    ut.Rent,
			Deposit: ut.Deposit,
			UnitIDs: ut.UnitIDs,
		})
	}

	p, units, err := property.NewProperty(property.NewPropertyInput{
		Name:           req.Name,
		Address:        req.Address,
		PropertyType:   req.PropertyType,
		ServiceRate:    req.ServiceRate.toDomain(),
		PaymentDetails: req.PaymentDetails.toDomain(),
		Landlord:       req.Landlord.toDomain(),
		Utilities:      req.Utilities.toDomain(),
		UnitTypes:      unitTypes,
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrPropertyID, p.ID.String(), "unit_count", len(units))

	err = s.scope.Execute(ctx, func(repos txn.Repositories) error {
		if err := repos.Properties().Save(ctx, p); err != nil {
			return fmt.Errorf("failed to save property: %w", err)
		}
		if err := repos.Units().SaveBatch(ctx, units); err != nil {
			return fmt.Errorf("failed to save units: %w", err)
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	txn.Publish(ctx, s.publisher, s.logger, shared.CollectEvents(p))
	s.logger.Info("property created",
		zap.String("property_id", p.ID.String()),
		zap.String("name", p.Name),
		zap.Int("units", len(units)),
	)

	resp := ToPropertyResponse(p)
	resp.Units = &UnitSummary{Total: int64(len(units)), Vacant: int64(len(units))}
	return &resp, nil
}

// GetProperty returns a property with its unit occupancy summary
func (s *PropertyService) GetProperty(ctx context.Context, id uuid.UUID) (*PropertyResponse, error) {
	p, err := s.repos.Properties().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	counts, err := s.repos.Units().CountByStatus(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to count units: %w", err)
	}

	resp := ToPropertyResponse(p)
	summary := &UnitSummary{
		Occupied: counts[property.UnitStatusOccupied],
		Vacant:   counts[property.UnitStatusVacant],
	}
	summary.Total = summary.Occupied + summary.Vacant
	resp.Units = summary
	return &resp, nil
}

// ListProperties returns a page of properties
func (s *PropertyService) ListProperties(ctx context.Context, req ListPropertiesRequest) (*ListPropertiesResponse, error) {
	filter := shared.DefaultFilter()
	filter = filter.WithPage(req.Page, req.PageSize)
	if req.OrderBy != "" {
		filter.OrderBy = req.OrderBy
	}
	if req.OrderDir != "" {
		filter.OrderDir = req.OrderDir
	}
	filter.Search = req.Search

	items, err := s.repos.Properties().FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	total, err := s.repos.Properties().Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count properties: %w", err)
	}

	resp := &ListPropertiesResponse{
		Items:    make([]PropertyResponse, 0, len(items)),
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}
	for i := range items {
		resp.Items = append(resp.Items, ToPropertyResponse(&items[i]))
	}
	return resp, nil
}

// UpdateSettings applies a partial update to the billing configuration.
// Bills already generated are not affected.
func (s *PropertyService) UpdateSettings(ctx context.Context, id uuid.UUID, req UpdatePropertyRequest) (*PropertyResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "property", "update_settings")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrPropertyID, id.String())

	in := property.UpdateSettingsInput{Name: req.Name, Address: req.Address}
	if req.ServiceRate != nil {
		v := req.ServiceRate.toDomain()
		in.ServiceRate = &v
	}
	if req.PaymentDetails != nil {
		v := req.PaymentDetails.toDomain()
		in.PaymentDetails = &v
	}
	if req.Landlord != nil {
		v := req.Landlord.toDomain()
		in.Landlord = &v
	}
	if req.Utilities != nil {
		v := req.Utilities.toDomain()
		in.Utilities = &v
	}

	var updated *property.Property
	err := s.scope.Execute(ctx, func(repos txn.Repositories) error {
		p, err := repos.Properties().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := p.UpdateSettings(in); err != nil {
			return err
		}
		if err := repos.Properties().SaveWithLock(ctx, p); err != nil {
			return fmt.Errorf("failed to save property: %w", err)
		}
		updated = p
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("property settings updated",
		zap.String("property_id", id.String()),
		zap.Int("version", updated.Version),
	)
	resp := ToPropertyResponse(updated)
	return &resp, nil
}
