package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCurrencyDecimals(t *testing.T) {
	assert.Equal(t, 2, CurrencyDecimals("NGN"))
	assert.Equal(t, 2, CurrencyDecimals("usd"))
	assert.Equal(t, 0, CurrencyDecimals("JPY"))
	assert.Equal(t, 0, CurrencyDecimals(" ugx "))
	assert.Equal(t, 3, CurrencyDecimals("KWD"))
	// currency asing yang tidak terdaftar dianggap 2 digit
	assert.Equal(t, 2, CurrencyDecimals("XYZ"))
}

func TestToSmallestUnit(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		currency string
		want     int64
	}{
		{"ngn kobo", 5000.00, "NGN", 500000},
		{"ngn dengan sen", 1234.56, "NGN", 123456},
		{"rounding ke atas", 0.005, "USD", 1},
		{"zero-decimal tidak dikali", 5000, "UGX", 5000},
		{"tiga digit", 1.234, "BHD", 1234},
		{"nol", 0, "NGN", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToSmallestUnit(tt.amount, tt.currency))
		})
	}
}

func TestFromSmallestUnit(t *testing.T) {
	assert.Equal(t, 5000.00, FromSmallestUnit(500000, "NGN"))
	assert.Equal(t, 1234.56, FromSmallestUnit(123456, "usd"))
	assert.Equal(t, 5000.0, FromSmallestUnit(5000, "UGX"))
	assert.Equal(t, 1.234, FromSmallestUnit(1234, "KWD"))
}

// konversi bolak-balik tidak boleh menggeser nilai untuk amount
// yang presisinya sesuai mata uang
func TestMoneyRoundTrip(t *testing.T) {
	cases := []struct {
		amount   float64
		currency string
	}{
		{5000.00, "NGN"},
		{0.01, "USD"},
		{999999.99, "NGN"},
		{750, "JPY"},
		{12.345, "OMR"},
	}
	for _, c := range cases {
		got := FromSmallestUnit(ToSmallestUnit(c.amount, c.currency), c.currency)
		assert.InDelta(t, c.amount, got, 1e-9, "%v %s", c.amount, c.currency)
	}
}

func TestSubunitFactor(t *testing.T) {
	assert.Equal(t, int64(100), SubunitFactor("NGN"))
	assert.Equal(t, int64(1), SubunitFactor("VND"))
	assert.Equal(t, int64(1000), SubunitFactor("TND"))
}
