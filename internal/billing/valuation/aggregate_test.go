package valuation

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleLines() []Line {
	return []Line{
		{Key: "b1", QtyKg: 100, FatKg: 4.5, SNFKg: 8.3, MilkValue: 3200, FatIncentive: 120, Cartage: 40},
		{Key: "b1", QtyKg: 80, FatKg: 3.6, SNFKg: 6.6, MilkValue: 2500, SNFIncentive: 60, FatDeduction: 15},
		{Key: "b2", QtyKg: 150, FatKg: 6.9, SNFKg: 12.4, MilkValue: 4900, QtyIncentive: 75, ExtraRate: 30},
		{Key: "b2", QtyKg: 60, FatKg: 2.4, SNFKg: 4.9, MilkValue: 1800, SNFDeduction: 10},
	}
}

func TestAggregateGroups(t *testing.T) {
	groups := Aggregate(sampleLines())
	require.Len(t, groups, 2)

	b1 := groups["b1"]
	require.NotNil(t, b1)
	assert.Equal(t, 2, b1.Entries)
	assert.InDelta(t, 180, b1.QtyKg, 1e-9)
	assert.InDelta(t, 8.1, b1.FatKg, 1e-9)
	assert.InDelta(t, 14.9, b1.SNFKg, 1e-9)
	// avgFat = fatKg/qtyKg*100
	assert.InDelta(t, 4.5, b1.AvgFat(), 1e-9)
	// gross = milkValue + extra + cartage + incentives - deductions
	assert.InDelta(t, 3200+2500+40+120+60-15, b1.GrossPayment(), 1e-9)
	assert.InDelta(t, b1.GrossPayment()/8.1, b1.NetRatePerKgFat(), 1e-9)
}

func TestAggregateOrderIndependent(t *testing.T) {
	lines := sampleLines()
	direct := Aggregate(lines)

	shuffled := make([]Line, len(lines))
	copy(shuffled, lines)
	r := rand.New(rand.NewSource(7))
	r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	reordered := Aggregate(shuffled)

	require.Len(t, reordered, len(direct))
	for key, want := range direct {
		got := reordered[key]
		require.NotNil(t, got)
		assert.InDelta(t, want.QtyKg, got.QtyKg, 1e-6)
		assert.InDelta(t, want.GrossPayment(), got.GrossPayment(), 1e-6)
	}
}

func TestGrandTotalMatchesDirectSum(t *testing.T) {
	lines := sampleLines()

	// Group, then merge the groups.
	grand := GrandTotal(Aggregate(lines))

	// Sum everything directly under one key.
	flat := make([]Line, len(lines))
	copy(flat, lines)
	for i := range flat {
		flat[i].Key = "all"
	}
	direct := Aggregate(flat)["all"]
	require.NotNil(t, direct)

	assert.Equal(t, direct.Entries, grand.Entries)
	assert.InDelta(t, direct.QtyKg, grand.QtyKg, 1e-6)
	assert.InDelta(t, direct.FatKg, grand.FatKg, 1e-6)
	assert.InDelta(t, direct.SNFKg, grand.SNFKg, 1e-6)
	assert.InDelta(t, direct.GrossPayment(), grand.GrossPayment(), 1e-6)
	assert.InDelta(t, direct.NetRatePerKgFat(), grand.NetRatePerKgFat(), 1e-6)
}

func TestZeroDivisionGuards(t *testing.T) {
	var empty Totals
	assert.Zero(t, empty.AvgFat())
	assert.Zero(t, empty.AvgSNF())
	assert.Zero(t, empty.NetRatePerKgFat())

	withValueNoFat := Totals{MilkValue: 500}
	assert.Zero(t, withValueNoFat.NetRatePerKgFat())
	assert.InDelta(t, 9, withValueNoFat.RateDiff(9), 1e-9)
	assert.Zero(t, withValueNoFat.DiffValue(9))
}

func TestRateDiff(t *testing.T) {
	totals := Totals{QtyKg: 100, FatKg: 5, MilkValue: 3000}
	// netRate = 3000/5 = 600; target 650 leaves a 50 gap worth 250.
	assert.InDelta(t, 50, totals.RateDiff(650), 1e-9)
	assert.InDelta(t, 250, totals.DiffValue(650), 1e-9)
}

func TestAggregateIgnoresNaN(t *testing.T) {
	lines := []Line{
		{Key: "b1", QtyKg: math.NaN(), FatKg: math.Inf(1), MilkValue: 100},
		{Key: "b1", QtyKg: 50, FatKg: 2.2, MilkValue: 1500},
	}
	t0 := Aggregate(lines)["b1"]
	require.NotNil(t, t0)
	assert.InDelta(t, 50, t0.QtyKg, 1e-9)
	assert.InDelta(t, 2.2, t0.FatKg, 1e-9)
	assert.InDelta(t, 1600, t0.MilkValue, 1e-9)
	assert.False(t, math.IsNaN(t0.GrossPayment()))
}
