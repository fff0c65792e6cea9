// Package metering records water meter readings and answers consumption queries.
package metering

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/application/txn"
	"github.com/rentledger/backend/internal/domain/metering"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/rentledger/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrPropertyNotMetered is returned when readings are submitted for a fixed-water property
var ErrPropertyNotMetered = shared.NewDomainError("PROPERTY_NOT_METERED",
	"Property bills water at a fixed rate and does not take meter readings")

// ReadingService records meter readings
type ReadingService struct {
	scope     txn.TransactionScope
	repos     txn.Repositories
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewReadingService creates a new ReadingService
func NewReadingService(scope txn.TransactionScope, repos txn.Repositories, publisher shared.EventPublisher, logger *zap.Logger) *ReadingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReadingService{
		scope:     scope,
		repos:     repos,
		publisher: publisher,
		logger:    logger.Named("reading_service"),
	}
}

// RecordReadings applies a same-date submission unit by unit. Each unit is
// checked and stored in its own transaction, so one rejected reading does not
// abort its siblings.
func (s *ReadingService) RecordReadings(ctx context.Context, propertyID uuid.UUID, req RecordReadingsRequest) (*RecordReadingsResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "reading", "record_batch")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrPropertyID, propertyID.String(),
		"reading_count", len(req.Readings),
	)

	p, err := s.repos.Properties().FindByID(ctx, propertyID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if !p.IsMetered() {
		telemetry.RecordError(span, ErrPropertyNotMetered)
		return nil, ErrPropertyNotMetered
	}

	resp := &RecordReadingsResponse{Results: make([]ReadingResult, 0, len(req.Readings))}
	for _, in := range req.Readings {
		reading, err := s.recordOne(ctx, propertyID, req.Date, in)
		result := ReadingResult{UnitID: in.UnitID}
		if err != nil {
			var de *shared.DomainError
			if !errors.As(err, &de) {
				// infrastructure failures abort the batch; earlier units stay committed
				telemetry.RecordError(span, err)
				return nil, err
			}
			result.ErrorCode = de.Code
			result.Message = de.Message
			resp.Failed++
			s.logger.Info("meter reading rejected",
				zap.String("property_id", propertyID.String()),
				zap.String("unit_id", in.UnitID),
				zap.String("code", de.Code),
			)
		} else {
			r := ToReadingResponse(reading, nil)
			result.Recorded = true
			result.ReadingID = &reading.ID
			result.Reading = &r
			resp.Recorded++
		}
		resp.Results = append(resp.Results, result)
	}

	telemetry.SetAttributes(span, "recorded", resp.Recorded, "failed", resp.Failed)
	return resp, nil
}

func (s *ReadingService) recordOne(ctx context.Context, propertyID uuid.UUID, date time.Time, in UnitReadingDTO) (*metering.MeterReading, error) {
	var reading *metering.MeterReading
	err := s.scope.Execute(ctx, func(repos txn.Repositories) error {
		// the unit row lock serializes readers of the latest value
		unit, err := repos.Units().FindByCodeForUpdate(ctx, propertyID, in.UnitID)
		if err != nil {
			return err
		}
		latest, err := repos.Readings().Latest(ctx, propertyID, unit.Code)
		if err != nil && !txn.IsNotFound(err) {
			return fmt.Errorf("failed to load latest reading: %w", err)
		}
		reading, err = metering.RecordReading(metering.NewReadingInput{
			PropertyID:  propertyID,
			UnitID:      unit.Code,
			TenantID:    unit.TenantID,
			ReadingDate: date,
			Value:       in.Value,
		}, latest)
		if err != nil {
			return err
		}
		if err := repos.Readings().Save(ctx, reading); err != nil {
			return fmt.Errorf("failed to save reading: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	txn.Publish(ctx, s.publisher, s.logger, shared.CollectEvents(reading))
	return reading, nil
}

// ListReadings returns readings ordered by unit and date, each with the
// consumption since the previous reading of the same unit.
func (s *ReadingService) ListReadings(ctx context.Context, propertyID uuid.UUID, unitID string) ([]ReadingResponse, error) {
	if _, err := s.repos.Properties().FindByID(ctx, propertyID); err != nil {
		return nil, err
	}
	var unit *string
	if unitID != "" {
		unit = &unitID
	}
	readings, err := s.repos.Readings().FindByProperty(ctx, propertyID, unit)
	if err != nil {
		return nil, fmt.Errorf("failed to list readings: %w", err)
	}

	series := metering.ConsumptionSeries(readings)
	out := make([]ReadingResponse, len(readings))
	for i := range readings {
		out[i] = ToReadingResponse(&readings[i], series[i])
	}
	return out, nil
}

// Consumption returns the units consumed up to the reading taken on date
func (s *ReadingService) Consumption(ctx context.Context, propertyID uuid.UUID, unitID string, date time.Time) (decimal.Decimal, error) {
	readings, err := s.repos.Readings().FindByUnit(ctx, propertyID, unitID, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load readings: %w", err)
	}
	return metering.Consumption(readings, date)
}

// WaterCharge returns what a unit owes for water in a period
func (s *ReadingService) WaterCharge(ctx context.Context, propertyID uuid.UUID, unitID, period string) (*WaterChargeResponse, error) {
	pr, err := txn.ParsePeriod(period)
	if err != nil {
		return nil, err
	}
	p, err := s.repos.Properties().FindByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	end := pr.End()
	readings, err := s.repos.Readings().FindByUnit(ctx, propertyID, unitID, &end)
	if err != nil {
		return nil, fmt.Errorf("failed to load readings: %w", err)
	}
	charge, err := metering.ChargeForPeriod(p.Utilities, readings, pr)
	if err != nil {
		return nil, err
	}
	return &WaterChargeResponse{
		UnitID: unitID,
		Period: pr.String(),
		Amount: charge.Amount,
		Usage:  charge.Usage,
	}, nil
}
