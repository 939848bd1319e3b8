package domain

import "github.com/shopspring/decimal"

// Round rounds a float to the given number of decimal places using
// half-up rounding. Used by report rendering; core arithmetic stays in
// raw float64.
func Round(v float64, places int32) float64 {
	r, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return r
}

// Round2 rounds to cents.
func Round2(v float64) float64 { return Round(v, 2) }

// Round6 rounds to six decimal places, the precision used for exact
// quantities and residuals in reports.
func Round6(v float64) float64 { return Round(v, 6) }
