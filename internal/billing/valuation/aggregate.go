package valuation

// Line is one collection entry flattened to the numeric fields the reports
// sum, tagged with its group key. Callers build lines from whatever scope
// they already filtered to (a bill period, a date range, a branch).
type Line struct {
	Key          string
	QtyKg        float64
	FatKg        float64
	SNFKg        float64
	FatIncentive float64
	SNFIncentive float64
	QtyIncentive float64
	FatDeduction float64
	SNFDeduction float64
	ExtraRate    float64
	Cartage      float64
	MilkValue    float64
}

// Totals accumulates line sums for one group. Every report screen builds on
// this one accumulator; the payment and ratio formulas live on its methods
// so they cannot be re-typed per report.
type Totals struct {
	Entries      int     `json:"entries"`
	QtyKg        float64 `json:"qtyKg"`
	FatKg        float64 `json:"fatKg"`
	SNFKg        float64 `json:"snfKg"`
	FatIncentive float64 `json:"fatIncentive"`
	SNFIncentive float64 `json:"snfIncentive"`
	QtyIncentive float64 `json:"qtyIncentive"`
	FatDeduction float64 `json:"fatDeduction"`
	SNFDeduction float64 `json:"snfDeduction"`
	ExtraRate    float64 `json:"extraRate"`
	Cartage      float64 `json:"cartage"`
	MilkValue    float64 `json:"milkValue"`
}

// Add folds one line into the totals.
func (t *Totals) Add(l Line) {
	t.Entries++
	t.QtyKg += finite(l.QtyKg)
	t.FatKg += finite(l.FatKg)
	t.SNFKg += finite(l.SNFKg)
	t.FatIncentive += finite(l.FatIncentive)
	t.SNFIncentive += finite(l.SNFIncentive)
	t.QtyIncentive += finite(l.QtyIncentive)
	t.FatDeduction += finite(l.FatDeduction)
	t.SNFDeduction += finite(l.SNFDeduction)
	t.ExtraRate += finite(l.ExtraRate)
	t.Cartage += finite(l.Cartage)
	t.MilkValue += finite(l.MilkValue)
}

// Merge folds another group's totals in, element-wise.
func (t *Totals) Merge(o Totals) {
	t.Entries += o.Entries
	t.QtyKg += o.QtyKg
	t.FatKg += o.FatKg
	t.SNFKg += o.SNFKg
	t.FatIncentive += o.FatIncentive
	t.SNFIncentive += o.SNFIncentive
	t.QtyIncentive += o.QtyIncentive
	t.FatDeduction += o.FatDeduction
	t.SNFDeduction += o.SNFDeduction
	t.ExtraRate += o.ExtraRate
	t.Cartage += o.Cartage
	t.MilkValue += o.MilkValue
}

// AvgFat is the weighted average fat percentage, 0 for an empty group.
func (t Totals) AvgFat() float64 {
	if t.QtyKg == 0 {
		return 0
	}
	return t.FatKg / t.QtyKg * 100
}

// AvgSNF is the weighted average SNF percentage, 0 for an empty group.
func (t Totals) AvgSNF() float64 {
	if t.QtyKg == 0 {
		return 0
	}
	return t.SNFKg / t.QtyKg * 100
}

// GrossPayment is the milk value plus every incentive and extra amount,
// minus the deductions.
func (t Totals) GrossPayment() float64 {
	return t.MilkValue + t.ExtraRate + t.Cartage +
		t.FatIncentive + t.SNFIncentive + t.QtyIncentive -
		t.FatDeduction - t.SNFDeduction
}

// NetRatePerKgFat is the effective purchase rate per kg fat, 0 when the
// group has no fat mass.
func (t Totals) NetRatePerKgFat() float64 {
	if t.FatKg == 0 {
		return 0
	}
	return t.GrossPayment() / t.FatKg
}

// RateDiff is the gap between a target purchase rate and the achieved net
// rate.
func (t Totals) RateDiff(targetRate float64) float64 {
	return targetRate - t.NetRatePerKgFat()
}

// DiffValue is the monetary value of the rate gap over the group's fat mass.
func (t Totals) DiffValue(targetRate float64) float64 {
	return t.RateDiff(targetRate) * t.FatKg
}

// Aggregate groups lines by key and sums each group. Summation is
// commutative, so input order only affects float rounding in the last bits.
func Aggregate(lines []Line) map[string]*Totals {
	groups := make(map[string]*Totals)
	for _, l := range lines {
		t, ok := groups[l.Key]
		if !ok {
			t = &Totals{}
			groups[l.Key] = t
		}
		t.Add(l)
	}
	return groups
}

// GrandTotal merges every group into a single totals row.
func GrandTotal(groups map[string]*Totals) Totals {
	var total Totals
	for _, t := range groups {
		total.Merge(*t)
	}
	return total
}
