package collections

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dairyops/coop/internal/billing/period"
	"github.com/dairyops/coop/internal/billing/valuation"
	"github.com/dairyops/coop/internal/domain/models"
	"github.com/dairyops/coop/internal/repository/store"
	"github.com/dairyops/coop/pkg/clients/pricing"
)

// ErrInvalidEntry indicates the entry payload is missing identity fields.
var ErrInvalidEntry = errors.New("invalid collection entry")

// ErrPricingUnavailable indicates no pricing service is configured.
var ErrPricingUnavailable = errors.New("pricing service not configured")

// Service owns the collection entry lifecycle: derivation of the computed
// fields, stamping the owning bill period, persistence through the store,
// and recalculation triggers against the pricing service.
type Service struct {
	store   store.Client
	pricing pricing.Client
	consts  valuation.Constants
	logger  *zap.Logger
	now     func() time.Time
}

// NewService constructs a collections service.
func NewService(st store.Client, pricingClient pricing.Client, consts valuation.Constants, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !consts.Valid() {
		consts = valuation.DefaultConstants()
	}
	return &Service{
		store:   st,
		pricing: pricingClient,
		consts:  consts,
		logger:  logger,
		now:     time.Now,
	}
}

// ImportSummary reports the outcome of a bulk import.
type ImportSummary struct {
	Saved   int `json:"saved"`
	Skipped int `json:"skipped"`
}

// List returns collection entries matching the query.
func (s *Service) List(ctx context.Context, q store.Query) ([]models.CollectionEntry, error) {
	return s.store.Collections(ctx, q)
}

// Create derives the computed fields, stamps the bill period and persists
// the entry.
func (s *Service) Create(ctx context.Context, entry models.CollectionEntry) (models.CollectionEntry, error) {
	prepared, err := s.prepare(ctx, entry)
	if err != nil {
		return models.CollectionEntry{}, err
	}

	saved, err := s.store.CreateCollection(ctx, prepared)
	if err != nil {
		return models.CollectionEntry{}, fmt.Errorf("create entry: %w", err)
	}

	s.logger.Debug("collection entry created",
		zap.String("date", saved.Date),
		zap.String("shift", saved.Shift),
		zap.String("farmer", saved.FarmerID),
		zap.String("period", saved.BillPeriodID))
	return saved, nil
}

// Update re-derives the computed fields (an upstream raw field may have
// changed) and rewrites the stored entry.
func (s *Service) Update(ctx context.Context, entry models.CollectionEntry) (models.CollectionEntry, error) {
	if entry.ID == "" {
		return models.CollectionEntry{}, ErrInvalidEntry
	}

	prepared, err := s.prepare(ctx, entry)
	if err != nil {
		return models.CollectionEntry{}, err
	}

	saved, err := s.store.UpdateCollection(ctx, prepared)
	if err != nil {
		return models.CollectionEntry{}, fmt.Errorf("update entry: %w", err)
	}
	return saved, nil
}

// Import persists a batch of entries, running each through exactly the same
// derivation as single-entry create. Rows without the identity fields are
// skipped and counted rather than failing the batch.
func (s *Service) Import(ctx context.Context, entries []models.CollectionEntry) (ImportSummary, error) {
	base, err := s.store.BasePeriods(ctx)
	if err != nil {
		return ImportSummary{}, fmt.Errorf("import entries: %w", err)
	}

	var summary ImportSummary
	for _, entry := range entries {
		if !entry.Valid() {
			summary.Skipped++
			continue
		}

		prepared := entry.WithDerived(s.consts)
		prepared.BillPeriodID = period.ClassifyDate(prepared.Date, base)

		if _, err := s.store.CreateCollection(ctx, prepared); err != nil {
			return summary, fmt.Errorf("import entries: row %d: %w", summary.Saved+summary.Skipped+1, err)
		}
		summary.Saved++
	}

	s.logger.Info("bulk import finished", zap.Int("saved", summary.Saved), zap.Int("skipped", summary.Skipped))
	return summary, nil
}

// Recalculate asks the pricing service to reprice entries in the date
// range. The service writes rate and incentive fields back into the store;
// nothing is computed here.
func (s *Service) Recalculate(ctx context.Context, req pricing.RecalculateRequest) (int, error) {
	if s.pricing == nil {
		return 0, ErrPricingUnavailable
	}

	resp, err := s.pricing.Recalculate(ctx, req)
	if err != nil {
		return 0, fmt.Errorf("recalculate: %w", err)
	}

	s.logger.Info("recalculation triggered",
		zap.String("from", req.From),
		zap.String("to", req.To),
		zap.Int("updated", resp.Updated))
	return resp.Updated, nil
}

func (s *Service) prepare(ctx context.Context, entry models.CollectionEntry) (models.CollectionEntry, error) {
	if !entry.Valid() {
		return models.CollectionEntry{}, ErrInvalidEntry
	}

	base, err := s.store.BasePeriods(ctx)
	if err != nil {
		return models.CollectionEntry{}, fmt.Errorf("load base periods: %w", err)
	}

	prepared := entry.WithDerived(s.consts)
	prepared.BillPeriodID = period.ClassifyDate(prepared.Date, base)
	return prepared, nil
}
