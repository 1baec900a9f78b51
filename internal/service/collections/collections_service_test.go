package collections

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dairyops/coop/internal/billing/period"
	"github.com/dairyops/coop/internal/billing/valuation"
	"github.com/dairyops/coop/internal/domain/models"
	"github.com/dairyops/coop/internal/repository/store"
	"github.com/dairyops/coop/pkg/clients/pricing"
)

type stubStore struct {
	base    []period.BasePeriod
	created []models.CollectionEntry
	updated []models.CollectionEntry
}

func (s *stubStore) BasePeriods(context.Context) ([]period.BasePeriod, error) {
	return s.base, nil
}

func (s *stubStore) LockedPeriodIDs(context.Context) ([]string, error) { return nil, nil }

func (s *stubStore) Collections(context.Context, store.Query) ([]models.CollectionEntry, error) {
	return nil, nil
}

func (s *stubStore) CreateCollection(_ context.Context, e models.CollectionEntry) (models.CollectionEntry, error) {
	s.created = append(s.created, e)
	return e, nil
}

func (s *stubStore) UpdateCollection(_ context.Context, e models.CollectionEntry) (models.CollectionEntry, error) {
	s.updated = append(s.updated, e)
	return e, nil
}

func (s *stubStore) Farmers(context.Context) ([]models.Farmer, error) { return nil, nil }

func (s *stubStore) Branches(context.Context) ([]models.Branch, error) { return nil, nil }

type stubPricing struct {
	requests []pricing.RecalculateRequest
	updated  int
}

func (s *stubPricing) Recalculate(_ context.Context, req pricing.RecalculateRequest) (*pricing.RecalculateResponse, error) {
	s.requests = append(s.requests, req)
	return &pricing.RecalculateResponse{Updated: s.updated}, nil
}

func testBase() []period.BasePeriod {
	return []period.BasePeriod{
		{ID: "1", StartDay: 1, EndDay: 10},
		{ID: "2", StartDay: 11, EndDay: 20},
		{ID: "3", StartDay: 21, EndDay: 31},
	}
}

func TestCreateDerivesAndStampsPeriod(t *testing.T) {
	st := &stubStore{base: testBase()}
	svc := NewService(st, nil, valuation.DefaultConstants(), nil)

	entry := models.CollectionEntry{
		Date:     "2026-01-15",
		Shift:    models.ShiftMorning,
		FarmerID: "f1",
		QtyKg:    valuation.Flex(10.3),
		Fat:      valuation.Flex(4.5),
		CLR:      valuation.Flex(28),
	}

	saved, err := svc.Create(context.Background(), entry)
	require.NoError(t, err)

	assert.Equal(t, "0-2026-2", saved.BillPeriodID)
	assert.InDelta(t, 8.31, saved.SNF.Float(), 1e-9)
	assert.InDelta(t, 10.0, saved.Qty.Value(), 1e-9)
	require.Len(t, st.created, 1)
}

func TestCreateInvalidEntry(t *testing.T) {
	svc := NewService(&stubStore{base: testBase()}, nil, valuation.DefaultConstants(), nil)

	_, err := svc.Create(context.Background(), models.CollectionEntry{Shift: models.ShiftMorning})
	assert.ErrorIs(t, err, ErrInvalidEntry)
}

func TestUpdateRequiresID(t *testing.T) {
	svc := NewService(&stubStore{base: testBase()}, nil, valuation.DefaultConstants(), nil)

	entry := models.CollectionEntry{Date: "2026-01-15", Shift: models.ShiftMorning, FarmerID: "f1"}
	_, err := svc.Update(context.Background(), entry)
	assert.ErrorIs(t, err, ErrInvalidEntry)
}

func TestUpdateRederives(t *testing.T) {
	st := &stubStore{base: testBase()}
	svc := NewService(st, nil, valuation.DefaultConstants(), nil)

	entry := models.CollectionEntry{
		ID:       "c1",
		Date:     "2026-01-25",
		Shift:    models.ShiftEvening,
		FarmerID: "f1",
		QtyKg:    valuation.Flex(20),
		Fat:      valuation.Flex(4),
	}

	saved, err := svc.Update(context.Background(), entry)
	require.NoError(t, err)
	assert.Equal(t, "0-2026-3", saved.BillPeriodID)
	assert.InDelta(t, 0.8, saved.KgFat.Value(), 1e-9)
	require.Len(t, st.updated, 1)
}

func TestImportMatchesSingleEntryDerivation(t *testing.T) {
	st := &stubStore{base: testBase()}
	svc := NewService(st, nil, valuation.DefaultConstants(), nil)

	entry := models.CollectionEntry{
		Date:     "2026-01-15",
		Shift:    models.ShiftMorning,
		FarmerID: "f1",
		QtyKg:    valuation.Flex(10.3),
		Fat:      valuation.Flex(4.5),
		CLR:      valuation.Flex(28),
	}

	single, err := svc.Create(context.Background(), entry)
	require.NoError(t, err)

	summary, err := svc.Import(context.Background(), []models.CollectionEntry{entry})
	require.NoError(t, err)
	assert.Equal(t, ImportSummary{Saved: 1}, summary)

	// Form-time and import-time derivation must agree bit for bit.
	require.Len(t, st.created, 2)
	assert.Equal(t, single, st.created[1])
}

func TestImportSkipsInvalidRows(t *testing.T) {
	st := &stubStore{base: testBase()}
	svc := NewService(st, nil, valuation.DefaultConstants(), nil)

	rows := []models.CollectionEntry{
		{Date: "2026-01-15", Shift: models.ShiftMorning, FarmerID: "f1", QtyKg: valuation.Flex(10)},
		{Shift: models.ShiftMorning, FarmerID: "f2"},
		{Date: "2026-01-15", Shift: "NOON", FarmerID: "f3"},
	}

	summary, err := svc.Import(context.Background(), rows)
	require.NoError(t, err)
	assert.Equal(t, ImportSummary{Saved: 1, Skipped: 2}, summary)
}

func TestRecalculate(t *testing.T) {
	t.Run("without pricing client", func(t *testing.T) {
		svc := NewService(&stubStore{base: testBase()}, nil, valuation.DefaultConstants(), nil)
		_, err := svc.Recalculate(context.Background(), pricing.RecalculateRequest{From: "2026-01-01", To: "2026-01-10"})
		assert.ErrorIs(t, err, ErrPricingUnavailable)
	})

	t.Run("forwards to pricing client", func(t *testing.T) {
		pc := &stubPricing{updated: 42}
		svc := NewService(&stubStore{base: testBase()}, pc, valuation.DefaultConstants(), nil)

		updated, err := svc.Recalculate(context.Background(), pricing.RecalculateRequest{From: "2026-01-01", To: "2026-01-10"})
		require.NoError(t, err)
		assert.Equal(t, 42, updated)
		require.Len(t, pc.requests, 1)
		assert.Equal(t, "2026-01-01", pc.requests[0].From)
	})
}
