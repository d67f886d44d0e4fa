// file: internals/features/payment/gateway/money.go
package gateway

import (
	"math"
	"strings"
)

/* =========================================================
   Money unit converter
   Sebagian provider minta amount dalam minor unit (kobo/cent),
   sebagian terima desimal langsung — keputusan per adapter.
========================================================= */

// currencyDecimals: jumlah digit desimal per mata uang.
// Yang tidak terdaftar dianggap 2 digit.
var currencyDecimals = map[string]int{
	// zero-decimal: jangan dikali/dibagi 100
	"JPY": 0,
	"KRW": 0,
	"VND": 0,
	"UGX": 0,
	"RWF": 0,
	"XAF": 0,
	"XOF": 0,

	// 3 digit
	"BHD": 3,
	"KWD": 3,
	"OMR": 3,
	"TND": 3,
}

// CurrencyDecimals mengembalikan digit desimal untuk kode mata uang.
func CurrencyDecimals(currency string) int {
	if d, ok := currencyDecimals[strings.ToUpper(strings.TrimSpace(currency))]; ok {
		return d
	}
	return 2
}

// SubunitFactor = 10^decimals (1 untuk zero-decimal currency).
func SubunitFactor(currency string) int64 {
	f := int64(1)
	for i := 0; i < CurrencyDecimals(currency); i++ {
		f *= 10
	}
	return f
}

// ToSmallestUnit konversi amount major → minor unit (round to nearest).
func ToSmallestUnit(amount float64, currency string) int64 {
	return int64(math.Round(amount * float64(SubunitFactor(currency))))
}

// FromSmallestUnit konversi minor unit → major, presisi sesuai mata uang.
func FromSmallestUnit(units int64, currency string) float64 {
	return float64(units) / float64(SubunitFactor(currency))
}
