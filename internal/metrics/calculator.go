package metrics

import (
	"github.com/shopspring/decimal"
	"github.com/yusufkecer/medfit-backend/internal/domain"
)

// ComputeBMI returns weight / height² rounded to decimals places. ok is false
// when either input is missing, non-positive or not finite.
func ComputeBMI(weightKg, heightM float64, decimals int32) (bmi float64, ok bool) {
	if !domain.IsPresent(weightKg) || !domain.IsPresent(heightM) {
		return 0, false
	}
	h := decimal.NewFromFloat(heightM)
	return round(decimal.NewFromFloat(weightKg).Div(h.Mul(h)), decimals), true
}

// ComputeWHR returns waist / hip rounded to decimals places, with the same
// absence rules as ComputeBMI.
func ComputeWHR(waistCm, hipCm float64, decimals int32) (whr float64, ok bool) {
	if !domain.IsPresent(waistCm) || !domain.IsPresent(hipCm) {
		return 0, false
	}
	return round(decimal.NewFromFloat(waistCm).Div(decimal.NewFromFloat(hipCm)), decimals), true
}

// round is half away from zero on the decimal value, so 22.85 stays 22.85
// instead of drifting to 22.849999.
func round(d decimal.Decimal, decimals int32) float64 {
	return d.Round(decimals).InexactFloat64()
}
