package valuation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerive(t *testing.T) {
	c := DefaultConstants()

	t.Run("snf from fat and clr", func(t *testing.T) {
		snf, _, _, _ := Derive(10, 4.5, 28, 0, c)
		// 28/4 + 0.21*4.5 + 0.36 = 8.305, rounded half away from zero.
		assert.InDelta(t, 8.31, snf, 1e-9)
	})

	t.Run("formula overrides a manual snf", func(t *testing.T) {
		snf, _, _, _ := Derive(10, 4.5, 28, 9.9, c)
		assert.InDelta(t, 8.31, snf, 1e-9)
	})

	t.Run("manual snf kept without clr", func(t *testing.T) {
		snf, _, _, _ := Derive(10, 4.5, 0, 8.7, c)
		assert.InDelta(t, 8.7, snf, 1e-9)
	})

	t.Run("manual snf kept without fat", func(t *testing.T) {
		snf, _, _, _ := Derive(10, 0, 28, 8.7, c)
		assert.InDelta(t, 8.7, snf, 1e-9)
	})

	t.Run("liters from kilograms", func(t *testing.T) {
		_, qty, _, _ := Derive(10.3, 4.5, 28, 0, c)
		require.True(t, qty.Valid())
		assert.InDelta(t, 10.0, qty.Value(), 1e-9)
	})

	t.Run("kg fat and kg snf", func(t *testing.T) {
		snf, _, kgFat, kgSNF := Derive(10, 4.5, 28, 0, c)
		require.True(t, kgFat.Valid())
		require.True(t, kgSNF.Valid())
		assert.InDelta(t, 0.45, kgFat.Value(), 1e-9)
		assert.InDelta(t, snf*10/100, kgSNF.Value(), 1e-3)
		assert.InDelta(t, 0.831, kgSNF.Value(), 1e-9)
	})

	t.Run("zero quantity leaves derived fields blank", func(t *testing.T) {
		_, qty, kgFat, kgSNF := Derive(0, 4.5, 28, 0, c)
		assert.False(t, qty.Valid())
		assert.False(t, kgFat.Valid())
		assert.False(t, kgSNF.Valid())
		assert.Equal(t, "", qty.Display(2))
		assert.Equal(t, "", kgFat.Display(3))
	})

	t.Run("zero fat blanks kg fat but not liters", func(t *testing.T) {
		_, qty, kgFat, _ := Derive(10, 0, 0, 0, c)
		assert.True(t, qty.Valid())
		assert.False(t, kgFat.Valid())
	})

	t.Run("custom constants", func(t *testing.T) {
		custom := Constants{SNFCLRDivisor: 4, SNFFatCoeff: 0.25, SNFConstant: 0.44, LiterDivisor: 1.03}
		snf, _, _, _ := Derive(10, 4, 28, 0, custom)
		assert.InDelta(t, 8.44, snf, 1e-9)
	})
}

func TestRounding(t *testing.T) {
	assert.InDelta(t, 8.31, Round2(8.305), 1e-9)
	assert.InDelta(t, 8.30, Round2(8.3049), 1e-9)
	assert.InDelta(t, 0.123, Round3(0.12349), 1e-9)
	assert.InDelta(t, 0.124, Round3(0.1235), 1e-9)
}

func TestDerivedJSON(t *testing.T) {
	t.Run("marshal", func(t *testing.T) {
		valid, err := json.Marshal(Of(10.25))
		require.NoError(t, err)
		assert.Equal(t, "10.25", string(valid))

		blank, err := json.Marshal(Derived{})
		require.NoError(t, err)
		assert.Equal(t, `""`, string(blank))
	})

	t.Run("unmarshal", func(t *testing.T) {
		var d Derived
		require.NoError(t, json.Unmarshal([]byte("3.5"), &d))
		assert.True(t, d.Valid())
		assert.InDelta(t, 3.5, d.Value(), 1e-9)

		require.NoError(t, json.Unmarshal([]byte(`"7.25"`), &d))
		assert.True(t, d.Valid())
		assert.InDelta(t, 7.25, d.Value(), 1e-9)

		require.NoError(t, json.Unmarshal([]byte(`""`), &d))
		assert.False(t, d.Valid())

		require.NoError(t, json.Unmarshal([]byte(`"n/a"`), &d))
		assert.False(t, d.Valid())
	})
}

func TestFlexJSON(t *testing.T) {
	var doc struct {
		A Flex `json:"a"`
		B Flex `json:"b"`
		C Flex `json:"c"`
		D Flex `json:"d"`
		E Flex `json:"e"`
	}
	payload := `{"a": 5, "b": "6.5", "c": "", "d": "abc", "e": null}`
	require.NoError(t, json.Unmarshal([]byte(payload), &doc))

	assert.InDelta(t, 5, doc.A.Float(), 1e-9)
	assert.InDelta(t, 6.5, doc.B.Float(), 1e-9)
	assert.Zero(t, doc.C.Float())
	assert.Zero(t, doc.D.Float())
	assert.Zero(t, doc.E.Float())
}
