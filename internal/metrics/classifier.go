package metrics

import (
	"math"

	"github.com/yusufkecer/medfit-backend/internal/domain"
)

// NotAvailable is the category reported for an absent or invalid index.
const NotAvailable = "N/A"

// BMI categories.
const (
	BMIUnderweight   = "Underweight"
	BMINormal        = "Normal weight"
	BMIOverweight    = "Overweight"
	BMIObesityClass1 = "Obesity class I"
	BMIObesityClass2 = "Obesity class II"
	BMIObesityClass3 = "Obesity class III"
)

// Risk levels attached to the BMI bands.
const (
	RiskLow           = "Low"
	RiskModerate      = "Moderate"
	RiskHigh          = "High"
	RiskVeryHigh      = "Very high"
	RiskExtremelyHigh = "Extremely high"
)

// ClassifyBMI maps a BMI value to its category. Each band includes its lower
// bound: 18.5 is Normal weight, 40 is Obesity class III.
func ClassifyBMI(bmi float64) string {
	category, _ := classifyBMI(bmi)
	return category
}

// BMIRisk returns the health risk level for a BMI value.
func BMIRisk(bmi float64) string {
	_, risk := classifyBMI(bmi)
	return risk
}

func classifyBMI(bmi float64) (category, risk string) {
	switch {
	case !valid(bmi):
		return NotAvailable, ""
	case bmi < 18.5:
		return BMIUnderweight, RiskLow
	case bmi < 25:
		return BMINormal, RiskLow
	case bmi < 30:
		return BMIOverweight, RiskModerate
	case bmi < 35:
		return BMIObesityClass1, RiskHigh
	case bmi < 40:
		return BMIObesityClass2, RiskVeryHigh
	default:
		return BMIObesityClass3, RiskExtremelyHigh
	}
}

// WHRTable is one set of waist-hip ratio cut points. A ratio below Cuts[0]
// gets Labels[0], below Cuts[1] gets Labels[1], anything else Labels[2].
type WHRTable struct {
	Name   string
	Male   [2]float64
	Female [2]float64
	Labels [3]string
}

// WHR tables in use. The dashboard table and the clinical report table have
// different male cut points and wording; see Profile.
var (
	WHRTableDashboard = WHRTable{
		Name:   "dashboard",
		Male:   [2]float64{0.90, 0.95},
		Female: [2]float64{0.80, 0.85},
		Labels: [3]string{"Healthy", "Moderate", "High"},
	}
	WHRTableClinical = WHRTable{
		Name:   "clinical",
		Male:   [2]float64{0.85, 0.95},
		Female: [2]float64{0.80, 0.85},
		Labels: [3]string{"Low risk", "Moderate risk", "High risk"},
	}
)

// Classify maps a ratio to a category. Unspecified sex uses the male cuts.
// Out-of-physiological-range ratios are not errors.
func (t WHRTable) Classify(whr float64, sex domain.Sex) string {
	if !valid(whr) {
		return NotAvailable
	}
	cuts := t.Male
	if sex == domain.SexFemale {
		cuts = t.Female
	}
	switch {
	case whr < cuts[0]:
		return t.Labels[0]
	case whr < cuts[1]:
		return t.Labels[1]
	default:
		return t.Labels[2]
	}
}

func valid(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
