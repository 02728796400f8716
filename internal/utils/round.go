package utils

import "github.com/shopspring/decimal"

// RoundBank rounds v to places decimals using banker's rounding (half to even).
// The value is routed through its shortest decimal representation so that
// 10.025 rounds to 10.02 rather than drifting on the binary fraction.
func RoundBank(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).RoundBank(places).InexactFloat64()
}
