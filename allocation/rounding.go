/*
rounding.go - Exact half-to-even (banker's) rounding

PURPOSE:
  Every derived price and every credit mutation in this system is rounded
  with the same rule: round half to even at a fixed number of fractional
  digits. Naive round-half-up is wrong here - the reference price table is
  deliberately constructed to land on the .5 boundary (e.g. 88.885 at two
  decimals), and half-up would drift customer credit over many runs.

WHY decimal.Decimal:
  Doing this on float64 requires an epsilon to recognize a "true" .5 tie
  through representation error. decimal carries the exact value, so
  RoundBank gives the exact tie behavior with no epsilon at all.

SEE ALSO:
  - pricing.go: Applies MoneyPlaces rounding to every resolved unit price
  - ledger.go:  Applies it to every credit charge/release
*/
package allocation

import "github.com/shopspring/decimal"

// MoneyPlaces is the fractional precision of all monetary values.
const MoneyPlaces int32 = 2

// RoundHalfToEven rounds value to the given number of decimal places,
// resolving exact .5 ties to the nearest even digit.
//
//	RoundHalfToEven(88.885, 2)  = 88.88
//	RoundHalfToEven(79.9965, 2) = 80.00
//	RoundHalfToEven(106.662, 2) = 106.66
func RoundHalfToEven(value float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(value).RoundBank(places).Float64()
	return f
}

// roundMoney normalizes a decimal to monetary precision.
func roundMoney(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(MoneyPlaces)
}
