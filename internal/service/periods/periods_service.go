package periods

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dairyops/coop/internal/billing/period"
	"github.com/dairyops/coop/internal/repository/store"
)

// Service exposes the bill-period calendar over the masters held in the
// collection store. The calendar itself is pure; this layer only supplies
// its inputs.
type Service struct {
	store  store.Client
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a new periods service instance.
func NewService(st store.Client, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: st, logger: logger, now: time.Now}
}

// List returns the rolling window of bill periods. Period ids referenced by
// locked bills are folded in as extras so historical references always
// resolve, however far outside the window they fall.
func (s *Service) List(ctx context.Context) ([]period.Period, error) {
	base, err := s.store.BasePeriods(ctx)
	if err != nil {
		return nil, fmt.Errorf("list periods: %w", err)
	}

	locked, err := s.store.LockedPeriodIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list periods: %w", err)
	}

	generated := period.Generate(base, locked, s.now())
	s.logger.Debug("generated bill periods", zap.Int("count", len(generated)), zap.Int("locked", len(locked)))
	return generated, nil
}

// Classify buckets a date into its owning bill period id, "" when no base
// period contains the day.
func (s *Service) Classify(ctx context.Context, date string) (string, error) {
	base, err := s.store.BasePeriods(ctx)
	if err != nil {
		return "", fmt.Errorf("classify date: %w", err)
	}
	return period.ClassifyDate(date, base), nil
}

// DisplayName renders a period id for humans, "-" for unresolvable ids.
func (s *Service) DisplayName(ctx context.Context, id string) (string, error) {
	base, err := s.store.BasePeriods(ctx)
	if err != nil {
		return "", fmt.Errorf("period name: %w", err)
	}
	return period.DisplayName(id, base), nil
}
