package txn

import (
	"context"
	"errors"
	"strings"

	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/rentledger/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// ParsePeriod parses a YYYY-MM string, reporting INVALID_PERIOD on failure
func ParsePeriod(s string) (valueobject.Period, error) {
	p, err := valueobject.ParsePeriod(strings.TrimSpace(s))
	if err != nil {
		return valueobject.Period{}, shared.NewDomainError(shared.CodeInvalidPeriod, err.Error())
	}
	return p, nil
}

// ParseOptionalPeriod parses s when non-empty
func ParseOptionalPeriod(s string) (*valueobject.Period, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	p, err := ParsePeriod(s)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// IsNotFound reports whether err is the generic repository not-found error
func IsNotFound(err error) bool {
	return errors.Is(err, shared.ErrNotFound)
}

// Publish hands events collected inside a committed transaction to the bus.
// The commit stands even if delivery fails.
func Publish(ctx context.Context, publisher shared.EventPublisher, logger *zap.Logger, events []shared.DomainEvent) {
	if publisher == nil || len(events) == 0 {
		return
	}
	if err := publisher.Publish(ctx, events...); err != nil {
		logger.Warn("failed to publish domain events",
			zap.Int("count", len(events)),
			zap.Error(err),
		)
	}
}
