package metrics

import (
	"fmt"
	"strings"

	"github.com/yusufkecer/medfit-backend/internal/domain"
)

// Profile names.
const (
	ProfileDashboard = "dashboard"
	ProfileClinical  = "clinical"
)

// Profile bundles the rounding precision and WHR table of one output
// channel. The dashboard shows BMI with one decimal; the clinical report and
// the API use two for BMI and three for WHR.
type Profile struct {
	Name        string
	BMIDecimals int32
	WHRDecimals int32
	Table       WHRTable
}

var (
	Dashboard = Profile{Name: ProfileDashboard, BMIDecimals: 1, WHRDecimals: 2, Table: WHRTableDashboard}
	Clinical  = Profile{Name: ProfileClinical, BMIDecimals: 2, WHRDecimals: 3, Table: WHRTableClinical}
)

// ProfileByName resolves a profile name. An empty name is an error too:
// callers must choose.
func ProfileByName(name string) (Profile, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case ProfileDashboard:
		return Dashboard, nil
	case ProfileClinical:
		return Clinical, nil
	default:
		return Profile{}, fmt.Errorf("%w: %q", domain.ErrUnknownProfile, name)
	}
}

// BMI computes the body mass index at this profile's precision.
func (p Profile) BMI(weightKg, heightM float64) (float64, bool) {
	return ComputeBMI(weightKg, heightM, p.BMIDecimals)
}

// WHR computes the waist-hip ratio at this profile's precision.
func (p Profile) WHR(waistCm, hipCm float64) (float64, bool) {
	return ComputeWHR(waistCm, hipCm, p.WHRDecimals)
}

// ClassifyWHR classifies a ratio with this profile's table.
func (p Profile) ClassifyWHR(whr float64, sex domain.Sex) string {
	return p.Table.Classify(whr, sex)
}

// Evaluate derives the full result bundle from raw measurements. Height may
// be given in meters or centimeters. Either index may be absent while the
// other is present.
func (p Profile) Evaluate(m domain.Measurements, sex domain.Sex) domain.AssessmentResult {
	result := domain.AssessmentResult{Profile: p.Name}

	weight, _ := m.Value(domain.Weight)
	height, _ := m.Value(domain.Height)
	if bmi, ok := p.BMI(weight, NormalizeHeight(height)); ok {
		category, risk := classifyBMI(bmi)
		result.BMI = &domain.MetricResult{Value: bmi, Category: category, Risk: risk}
	}

	waist, _ := m.Value(domain.Waist)
	hip, _ := m.Value(domain.Hip)
	if whr, ok := p.WHR(waist, hip); ok {
		result.WHR = &domain.MetricResult{Value: whr, Category: p.ClassifyWHR(whr, sex)}
	}

	return result
}
