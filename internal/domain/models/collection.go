package models

import (
	"strings"

	"github.com/dairyops/coop/internal/billing/valuation"
)

// Shift values for a collection entry.
const (
	ShiftMorning = "AM"
	ShiftEvening = "PM"
)

// CollectionEntry is one farmer's milk delivery for one date and shift.
// Raw weighed inputs come from the entry form or bulk import; the derived
// fields are recomputed here; the pricing outputs are written by the
// external recalculation service and only read for aggregation.
type CollectionEntry struct {
	ID       string `json:"id,omitempty"`
	Date     string `json:"date"`
	Shift    string `json:"shift"`
	FarmerID string `json:"farmerId"`
	BranchID string `json:"branchId,omitempty"`
	Category string `json:"category,omitempty"`

	QtyKg valuation.Flex `json:"qtyKg"`
	Fat   valuation.Flex `json:"fat"`
	CLR   valuation.Flex `json:"clr,omitempty"`
	SNF   valuation.Flex `json:"snf,omitempty"`

	Qty   valuation.Derived `json:"qty"`
	KgFat valuation.Derived `json:"kgFat"`
	KgSNF valuation.Derived `json:"kgSnf"`

	BillPeriodID string `json:"billPeriodId,omitempty"`

	Rate               valuation.Flex `json:"rate,omitempty"`
	Amount             valuation.Flex `json:"amount,omitempty"`
	MilkValue          valuation.Flex `json:"milkValue,omitempty"`
	FatIncentive       valuation.Flex `json:"fatIncentive,omitempty"`
	FatDeduction       valuation.Flex `json:"fatDeduction,omitempty"`
	SNFIncentive       valuation.Flex `json:"snfIncentive,omitempty"`
	SNFDeduction       valuation.Flex `json:"snfDeduction,omitempty"`
	QtyIncentiveAmount valuation.Flex `json:"qtyIncentiveAmount,omitempty"`
	ExtraRateAmount    valuation.Flex `json:"extraRateAmount,omitempty"`
	CartageAmount      valuation.Flex `json:"cartageAmount,omitempty"`
}

// WithDerived returns a copy with SNF, liters and kg fat/SNF recomputed from
// the raw inputs.
func (e CollectionEntry) WithDerived(c valuation.Constants) CollectionEntry {
	snf, qty, kgFat, kgSNF := valuation.Derive(
		e.QtyKg.Float(), e.Fat.Float(), e.CLR.Float(), e.SNF.Float(), c)
	e.SNF = valuation.Flex(snf)
	e.Qty = qty
	e.KgFat = kgFat
	e.KgSNF = kgSNF
	return e
}

// Line flattens the entry to the aggregation input under the given group
// key.
func (e CollectionEntry) Line(key string) valuation.Line {
	return valuation.Line{
		Key:          key,
		QtyKg:        e.QtyKg.Float(),
		FatKg:        e.KgFat.Value(),
		SNFKg:        e.KgSNF.Value(),
		FatIncentive: e.FatIncentive.Float(),
		SNFIncentive: e.SNFIncentive.Float(),
		QtyIncentive: e.QtyIncentiveAmount.Float(),
		FatDeduction: e.FatDeduction.Float(),
		SNFDeduction: e.SNFDeduction.Float(),
		ExtraRate:    e.ExtraRateAmount.Float(),
		Cartage:      e.CartageAmount.Float(),
		MilkValue:    e.MilkValue.Float(),
	}
}

// Valid reports whether the entry carries the minimum identity fields to be
// stored.
func (e CollectionEntry) Valid() bool {
	if strings.TrimSpace(e.Date) == "" || strings.TrimSpace(e.FarmerID) == "" {
		return false
	}
	return e.Shift == ShiftMorning || e.Shift == ShiftEvening
}
