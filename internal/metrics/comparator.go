package metrics

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/yusufkecer/medfit-backend/internal/domain"
)

// DefaultComparison is the set of circumferences shown on the history screen.
var DefaultComparison = []domain.MeasurementName{
	domain.ArmRight, domain.ArmLeft,
	domain.ArmFlexedRight, domain.ArmFlexedLeft,
	domain.ForearmRight, domain.ForearmLeft,
	domain.Chest, domain.Waist, domain.Hip,
	domain.ThighProximalRight, domain.ThighProximalLeft,
	domain.ThighDistalRight, domain.ThighDistalLeft,
	domain.CalfRight, domain.CalfLeft,
	domain.Arm, domain.Thigh,
}

// Delta is the change of one measurement between two assessments.
type Delta struct {
	Current  float64 `json:"current"`
	Previous float64 `json:"previous"`
	Delta    float64 `json:"delta"`
	Improved bool    `json:"improved"`
}

// ReductionImproves reports whether a decrease in name counts as progress.
// Only the waist does; every other circumference is expected to grow.
func ReductionImproves(name domain.MeasurementName) bool {
	return name == domain.Waist
}

// Compare diffs the named measurements of two assessments. Names missing or
// non-positive on either side are left out of the result.
func Compare(current, previous domain.Measurements, names []domain.MeasurementName) map[domain.MeasurementName]Delta {
	deltas := make(map[domain.MeasurementName]Delta, len(names))
	for _, name := range names {
		cur, ok := current.Value(name)
		if !ok {
			continue
		}
		prev, ok := previous.Value(name)
		if !ok {
			continue
		}

		d := decimal.NewFromFloat(cur).Sub(decimal.NewFromFloat(prev))
		improved := d.Sign() > 0
		if ReductionImproves(name) {
			improved = d.Sign() < 0
		}
		deltas[name] = Delta{
			Current:  cur,
			Previous: prev,
			Delta:    d.InexactFloat64(),
			Improved: improved,
		}
	}
	return deltas
}

// Step is one assessment in a client's timeline together with its deltas
// against the next older assessment. The oldest step has no Previous.
type Step struct {
	Assessment domain.Assessment                `json:"assessment"`
	PreviousID *int64                           `json:"previous_id"`
	Deltas     map[domain.MeasurementName]Delta `json:"deltas"`
}

// History orders assessments newest first and diffs adjacent entries. The
// input slice is not modified.
func History(assessments []domain.Assessment, names []domain.MeasurementName) []Step {
	ordered := make([]domain.Assessment, len(assessments))
	copy(ordered, assessments)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].TakenAt.Equal(ordered[j].TakenAt) {
			return ordered[i].ID > ordered[j].ID
		}
		return ordered[i].TakenAt.After(ordered[j].TakenAt)
	})

	steps := make([]Step, len(ordered))
	for i, a := range ordered {
		steps[i] = Step{Assessment: a, Deltas: map[domain.MeasurementName]Delta{}}
		if i+1 < len(ordered) {
			prev := ordered[i+1]
			steps[i].PreviousID = &prev.ID
			steps[i].Deltas = Compare(a.Measurements, prev.Measurements, names)
		}
	}
	return steps
}
