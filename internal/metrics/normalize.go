package metrics

import (
	"math"

	"github.com/shopspring/decimal"
)

// centimeterThreshold separates heights typed in meters (1.80) from heights
// typed in centimeters (180).
const centimeterThreshold = 3

// NormalizeHeight returns the height in meters. Values above 3 are taken as
// centimeters. Non-positive input is returned unchanged; callers guard it.
func NormalizeHeight(raw float64) float64 {
	if math.IsNaN(raw) || math.IsInf(raw, 0) || raw <= centimeterThreshold {
		return raw
	}
	return decimal.NewFromFloat(raw).Shift(-2).InexactFloat64()
}
