package valuation

import "math"

// Constants holds the milk arithmetic coefficients. The defaults are the
// standard Richmond-style SNF correlation (CLR/4 + 0.21*fat + 0.36) and the
// 1.03 kg/liter milk density divisor; deployments in regions with different
// regulatory formulas can override them through configuration.
type Constants struct {
	SNFCLRDivisor float64
	SNFFatCoeff   float64
	SNFConstant   float64
	LiterDivisor  float64
}

// DefaultConstants returns the standard coefficient set.
func DefaultConstants() Constants {
	return Constants{
		SNFCLRDivisor: 4,
		SNFFatCoeff:   0.21,
		SNFConstant:   0.36,
		LiterDivisor:  1.03,
	}
}

// Valid reports whether every coefficient is usable.
func (c Constants) Valid() bool {
	return c.SNFCLRDivisor > 0 && c.SNFFatCoeff > 0 && c.SNFConstant > 0 && c.LiterDivisor > 0
}

// Derive computes the derived measurement fields from the raw weighed
// inputs. When fat and CLR are both positive the SNF reading is overwritten
// with the correlation formula; otherwise the caller-supplied manual SNF is
// kept. Liters and kg fat/SNF stay not-applicable (invalid Derived) for
// zero or missing quantity, which downstream tables render as a blank cell
// rather than "0.00".
//
// The entry form and the bulk importer both run through this one function,
// so the two paths can never drift apart.
func Derive(qtyKg, fat, clr, manualSNF float64, c Constants) (snf float64, qty, kgFat, kgSNF Derived) {
	snf = manualSNF
	if fat > 0 && clr > 0 {
		snf = Round2(clr/c.SNFCLRDivisor + c.SNFFatCoeff*fat + c.SNFConstant)
	}
	if qtyKg > 0 {
		qty = Of(Round2(qtyKg / c.LiterDivisor))
	}
	if qtyKg > 0 && fat > 0 {
		kgFat = Of(Round3(qtyKg * fat / 100))
	}
	if qtyKg > 0 && snf > 0 {
		kgSNF = Of(Round3(qtyKg * snf / 100))
	}
	return snf, qty, kgFat, kgSNF
}

// Round2 rounds to 2 decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Round3 rounds to 3 decimal places.
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// finite maps NaN and infinities to 0 so accumulators never poison a whole
// report column.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
