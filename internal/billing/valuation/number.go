package valuation

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Derived is a nullable numeric value: the single internal representation
// behind the three legacy "not applicable" conventions. An invalid Derived
// renders as "" at the presentation boundary and contributes 0 to
// accumulators.
type Derived struct {
	value float64
	valid bool
}

// Of wraps a computed value.
func Of(v float64) Derived {
	return Derived{value: v, valid: true}
}

// Valid reports whether the value is applicable.
func (d Derived) Valid() bool { return d.valid }

// Value returns the numeric value, 0 when not applicable.
func (d Derived) Value() float64 {
	if !d.valid {
		return 0
	}
	return d.value
}

// Display renders the value with the given precision, or "" when not
// applicable.
func (d Derived) Display(prec int) string {
	if !d.valid {
		return ""
	}
	return strconv.FormatFloat(d.value, 'f', prec, 64)
}

// MarshalJSON writes the bare number, or "" for not-applicable values,
// matching the shape the collection store has always held for these fields.
func (d Derived) MarshalJSON() ([]byte, error) {
	if !d.valid {
		return []byte(`""`), nil
	}
	return []byte(strconv.FormatFloat(d.value, 'f', -1, 64)), nil
}

// UnmarshalJSON accepts numbers, quoted numbers, "", and null. Anything
// non-numeric decodes as not-applicable rather than failing the whole
// document.
func (d *Derived) UnmarshalJSON(data []byte) error {
	v, ok := flexParse(data)
	if !ok {
		*d = Derived{}
		return nil
	}
	*d = Of(v)
	return nil
}

// Flex is a tolerant float64 for fields the collection store serves
// inconsistently as numbers, numeric strings, or blanks. Unparseable input
// decodes as 0 so aggregation never sees NaN.
type Flex float64

// Float returns the value with NaN/Inf collapsed to 0.
func (f Flex) Float() float64 { return finite(float64(f)) }

func (f Flex) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(finite(float64(f)), 'f', -1, 64)), nil
}

func (f *Flex) UnmarshalJSON(data []byte) error {
	v, ok := flexParse(data)
	if !ok {
		*f = 0
		return nil
	}
	*f = Flex(v)
	return nil
}

func flexParse(data []byte) (float64, bool) {
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		return 0, false
	}
	if s[0] == '"' {
		var quoted string
		if err := json.Unmarshal(data, &quoted); err != nil {
			return 0, false
		}
		s = strings.TrimSpace(quoted)
		if s == "" {
			return 0, false
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return finite(v), true
}
