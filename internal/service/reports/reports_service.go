package reports

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/dairyops/coop/internal/billing/period"
	"github.com/dairyops/coop/internal/billing/valuation"
	"github.com/dairyops/coop/internal/domain/models"
	"github.com/dairyops/coop/internal/repository/store"
)

// Service builds the analytical reports. Every screen funnels through the
// one shared aggregation in the valuation package; this layer only chooses
// the record scope and the group key.
type Service struct {
	store  store.Client
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a new reports service instance.
func NewService(st store.Client, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: st, logger: logger, now: time.Now}
}

// Row is one report line: the group totals plus the derived ratios.
type Row struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	valuation.Totals
	AvgFat       float64 `json:"avgFat"`
	AvgSNF       float64 `json:"avgSnf"`
	GrossPayment float64 `json:"grossPayment"`
	NetRate      float64 `json:"netRatePerKgFat"`
	RateDiff     float64 `json:"rateDiff"`
	DiffValue    float64 `json:"diffValue"`
}

// Report is one rendered report invocation.
type Report struct {
	Title       string    `json:"title"`
	TargetRate  float64   `json:"targetRate,omitempty"`
	Rows        []Row     `json:"rows"`
	GrandTotal  Row       `json:"grandTotal"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// GroupBy choices for BillCheck rows.
const (
	GroupByFarmer   = "farmer"
	GroupByCategory = "category"
)

// BillCheck verifies one bill period's payable amounts broken down per
// farmer, or per farmer category when requested.
func (s *Service) BillCheck(ctx context.Context, periodID, groupBy string, targetRate float64) (*Report, error) {
	base, err := s.store.BasePeriods(ctx)
	if err != nil {
		return nil, fmt.Errorf("bill check: %w", err)
	}

	entries, err := s.store.Collections(ctx, store.Query{PeriodID: periodID})
	if err != nil {
		return nil, fmt.Errorf("bill check: %w", err)
	}

	var report *Report
	if groupBy == GroupByCategory {
		lines := lo.Map(entries, func(e models.CollectionEntry, _ int) valuation.Line {
			return e.Line(categoryKey(e))
		})
		report = s.build(valuation.Aggregate(lines), targetRate, func(key string) string { return key })
	} else {
		farmers, err := s.store.Farmers(ctx)
		if err != nil {
			return nil, fmt.Errorf("bill check: %w", err)
		}
		farmerNames := lo.SliceToMap(farmers, func(f models.Farmer) (string, string) {
			return f.ID, f.Name
		})

		lines := lo.Map(entries, func(e models.CollectionEntry, _ int) valuation.Line {
			return e.Line(e.FarmerID)
		})
		report = s.build(valuation.Aggregate(lines), targetRate, func(key string) string {
			if name := farmerNames[key]; name != "" {
				return name
			}
			return key
		})
	}

	report.Title = fmt.Sprintf("Bill Check %s", period.DisplayName(periodID, base))
	return report, nil
}

// UnitSupplyAnalysis breaks a date range down per branch per date+shift.
func (s *Service) UnitSupplyAnalysis(ctx context.Context, from, to string, targetRate float64) (*Report, error) {
	entries, err := s.store.Collections(ctx, store.Query{From: from, To: to})
	if err != nil {
		return nil, fmt.Errorf("supply analysis: %w", err)
	}

	branches, err := s.store.Branches(ctx)
	if err != nil {
		return nil, fmt.Errorf("supply analysis: %w", err)
	}
	branchNames := lo.SliceToMap(branches, func(b models.Branch) (string, string) {
		return b.ID, b.Name
	})

	lines := lo.Map(entries, func(e models.CollectionEntry, _ int) valuation.Line {
		return e.Line(strings.Join([]string{e.BranchID, e.Date, e.Shift}, "|"))
	})

	report := s.build(valuation.Aggregate(lines), targetRate, func(key string) string {
		parts := strings.SplitN(key, "|", 3)
		if len(parts) != 3 {
			return key
		}
		name := branchNames[parts[0]]
		if name == "" {
			name = parts[0]
		}
		return fmt.Sprintf("%s %s %s", name, parts[1], parts[2])
	})
	report.Title = fmt.Sprintf("Unit Supply Analysis %s to %s", from, to)
	return report, nil
}

// ProcurementComparison puts two or more bill periods side by side against
// a target purchase rate.
func (s *Service) ProcurementComparison(ctx context.Context, periodIDs []string, targetRate float64) (*Report, error) {
	base, err := s.store.BasePeriods(ctx)
	if err != nil {
		return nil, fmt.Errorf("procurement comparison: %w", err)
	}

	var lines []valuation.Line
	for _, id := range periodIDs {
		entries, err := s.store.Collections(ctx, store.Query{PeriodID: id})
		if err != nil {
			return nil, fmt.Errorf("procurement comparison: %w", err)
		}
		for _, e := range entries {
			lines = append(lines, e.Line(id))
		}
	}

	groups := valuation.Aggregate(lines)
	// A compared period with no collections still renders as a zero row.
	for _, id := range periodIDs {
		if _, ok := groups[id]; !ok {
			groups[id] = &valuation.Totals{}
		}
	}

	report := s.build(groups, targetRate, func(key string) string {
		return period.DisplayName(key, base)
	})
	report.Title = "Procurement Comparison"

	// Keep the caller's period order instead of the sorted key order.
	order := lo.SliceToMap(periodIDs, func(id string) (string, int) {
		return id, lo.IndexOf(periodIDs, id)
	})
	sort.SliceStable(report.Rows, func(i, j int) bool {
		return order[report.Rows[i].Key] < order[report.Rows[j].Key]
	})
	return report, nil
}

// DailySnapshot totals one collection day for the nightly archive.
func (s *Service) DailySnapshot(ctx context.Context, date string) (models.ProcurementSnapshot, error) {
	entries, err := s.store.Collections(ctx, store.Query{From: date, To: date})
	if err != nil {
		return models.ProcurementSnapshot{}, fmt.Errorf("daily snapshot: %w", err)
	}

	var total valuation.Totals
	for _, e := range entries {
		total.Add(e.Line(date))
	}

	return models.ProcurementSnapshot{
		Date:         date,
		Entries:      total.Entries,
		QtyKg:        total.QtyKg,
		FatKg:        total.FatKg,
		SNFKg:        total.SNFKg,
		AvgFat:       total.AvgFat(),
		AvgSNF:       total.AvgSNF(),
		MilkValue:    total.MilkValue,
		GrossPayment: total.GrossPayment(),
		CreatedAt:    s.now(),
	}, nil
}

func (s *Service) build(groups map[string]*valuation.Totals, targetRate float64, label func(key string) string) *Report {
	keys := lo.Keys(groups)
	sort.Strings(keys)

	rows := lo.Map(keys, func(key string, _ int) Row {
		return rowFrom(key, label(key), *groups[key], targetRate)
	})

	grand := valuation.GrandTotal(groups)
	return &Report{
		TargetRate:  targetRate,
		Rows:        rows,
		GrandTotal:  rowFrom("total", "Grand Total", grand, targetRate),
		GeneratedAt: s.now(),
	}
}

func rowFrom(key, label string, t valuation.Totals, targetRate float64) Row {
	return Row{
		Key:          key,
		Label:        label,
		Totals:       t,
		AvgFat:       t.AvgFat(),
		AvgSNF:       t.AvgSNF(),
		GrossPayment: t.GrossPayment(),
		NetRate:      t.NetRatePerKgFat(),
		RateDiff:     t.RateDiff(targetRate),
		DiffValue:    t.DiffValue(targetRate),
	}
}

func categoryKey(e models.CollectionEntry) string {
	if strings.TrimSpace(e.Category) == "" {
		return "General"
	}
	return e.Category
}
