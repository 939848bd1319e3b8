package formulas

import (
	"github.com/markcheno/go-talib"
)

// SmoothSMA applies a simple moving average to a value series, used to
// render a calmer curve next to the raw one. Positions with fewer than
// `length` preceding values keep the raw value, so the output always
// has the same length as the input. Series shorter than the window are
// returned unchanged.
func SmoothSMA(values []float64, length int) []float64 {
	if length <= 1 || len(values) < length {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}

	sma := talib.Sma(values, length)

	out := make([]float64, len(values))
	copy(out, values)
	for i := length - 1; i < len(values); i++ {
		if !isNaN(sma[i]) {
			out[i] = sma[i]
		}
	}
	return out
}

func isNaN(f float64) bool {
	return f != f
}
