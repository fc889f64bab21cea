package money

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmount_DecodesNumbersAndNumericStrings(t *testing.T) {
	var payload struct {
		Numero Amount `json:"numero"`
		Texto  Amount `json:"texto"`
		Vacio  Amount `json:"vacio"`
		Nulo   Amount `json:"nulo"`
	}
	raw := `{"numero": 1250.5, "texto": "99.99", "vacio": "", "nulo": null}`
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))

	assert.True(t, payload.Numero.Valid)
	assert.True(t, payload.Numero.Equal(decimal.RequireFromString("1250.50")))
	assert.True(t, payload.Texto.Valid)
	assert.True(t, payload.Texto.Equal(decimal.RequireFromString("99.99")))
	assert.False(t, payload.Vacio.Valid)
	assert.False(t, payload.Nulo.Valid)
	assert.Nil(t, payload.Nulo.Ptr())
}

// Summing string-typed prices must never concatenate.
func TestAmount_StringPricesAddArithmetically(t *testing.T) {
	var items []struct {
		Precio Amount `json:"precio_venta"`
	}
	require.NoError(t, json.Unmarshal([]byte(`[{"precio_venta":"10"},{"precio_venta":"5.25"}]`), &items))

	total := items[0].Precio.Add(items[1].Precio.Decimal)
	assert.Equal(t, "15.25", total.StringFixed(2))
}

func TestAmount_RejectsGarbage(t *testing.T) {
	var a Amount
	assert.Error(t, json.Unmarshal([]byte(`"doce"`), &a))
}

func TestInt_DecodesStringsAndRejectsFractions(t *testing.T) {
	var n Int
	require.NoError(t, json.Unmarshal([]byte(`"7"`), &n))
	assert.Equal(t, Int(7), n)

	require.NoError(t, json.Unmarshal([]byte(`3`), &n))
	assert.Equal(t, Int(3), n)

	require.NoError(t, json.Unmarshal([]byte(`null`), &n))
	assert.Equal(t, Int(0), n)

	assert.Error(t, json.Unmarshal([]byte(`"2.5"`), &n))
}

func TestInt_RejectsValuesOutsideRange(t *testing.T) {
	for _, raw := range []string{`"99999999999999999999"`, `-99999999999999999999`, `"1e30"`} {
		n := Int(4)
		assert.Error(t, json.Unmarshal([]byte(raw), &n), raw)
		assert.Equal(t, Int(4), n, "%s must leave the value untouched", raw)
	}

	var n Int
	require.NoError(t, json.Unmarshal([]byte(`"2000000000"`), &n))
	assert.Equal(t, Int(2000000000), n)
}

func TestNumberAndFormat(t *testing.T) {
	d := decimal.RequireFromString("100")
	b, err := json.Marshal(map[string]any{"total_venta": Number(d)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"total_venta": 100.00}`, string(b))

	assert.Equal(t, "Q100.00", Format("Q", d))
	assert.Equal(t, "Q0.10", Format("Q", decimal.RequireFromString("0.1")))
}
