package domain

import (
	"fmt"
	"math"
	"strings"
)

// MeasurementName identifies one anthropometric quantity. The set is closed:
// anything not listed in knownMeasurements is rejected at the API boundary.
type MeasurementName string

const (
	Weight             MeasurementName = "weight" // kg
	Height             MeasurementName = "height" // m or cm, see metrics.NormalizeHeight
	BodyFat            MeasurementName = "body_fat"
	Chest              MeasurementName = "chest"
	Waist              MeasurementName = "waist"
	Hip                MeasurementName = "hip"
	Arm                MeasurementName = "arm"
	Thigh              MeasurementName = "thigh"
	ArmRight           MeasurementName = "arm_right"
	ArmLeft            MeasurementName = "arm_left"
	ArmFlexedRight     MeasurementName = "arm_flexed_right"
	ArmFlexedLeft      MeasurementName = "arm_flexed_left"
	ForearmRight       MeasurementName = "forearm_right"
	ForearmLeft        MeasurementName = "forearm_left"
	ThighProximalRight MeasurementName = "thigh_proximal_right"
	ThighProximalLeft  MeasurementName = "thigh_proximal_left"
	ThighDistalRight   MeasurementName = "thigh_distal_right"
	ThighDistalLeft    MeasurementName = "thigh_distal_left"
	CalfRight          MeasurementName = "calf_right"
	CalfLeft           MeasurementName = "calf_left"
)

var knownMeasurements = []MeasurementName{
	Weight, Height, BodyFat, Chest, Waist, Hip, Arm, Thigh,
	ArmRight, ArmLeft, ArmFlexedRight, ArmFlexedLeft, ForearmRight, ForearmLeft,
	ThighProximalRight, ThighProximalLeft, ThighDistalRight, ThighDistalLeft,
	CalfRight, CalfLeft,
}

// KnownMeasurements returns the full vocabulary in display order.
func KnownMeasurements() []MeasurementName {
	out := make([]MeasurementName, len(knownMeasurements))
	copy(out, knownMeasurements)
	return out
}

// ParseMeasurementName validates a raw name against the vocabulary.
func ParseMeasurementName(raw string) (MeasurementName, error) {
	name := MeasurementName(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range knownMeasurements {
		if name == known {
			return name, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMeasurement, raw)
}

// ParseMeasurementNames parses a comma separated list, e.g. "waist,arm".
func ParseMeasurementNames(raw string) ([]MeasurementName, error) {
	var names []MeasurementName
	for _, part := range strings.Split(raw, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		name, err := ParseMeasurementName(part)
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}

// Measurements maps measurement names to raw values as entered.
type Measurements map[MeasurementName]float64

// Value returns the measurement and whether it is usable for computation.
// Zero, negative and non-finite values count as absent.
func (m Measurements) Value(name MeasurementName) (float64, bool) {
	v, ok := m[name]
	if !ok || !IsPresent(v) {
		return 0, false
	}
	return v, true
}

// Validate rejects names outside the vocabulary.
func (m Measurements) Validate() error {
	for name := range m {
		if _, err := ParseMeasurementName(string(name)); err != nil {
			return err
		}
	}
	return nil
}

// Present returns a copy of m without absent values.
func (m Measurements) Present() Measurements {
	out := make(Measurements, len(m))
	for name, v := range m {
		if IsPresent(v) {
			out[name] = v
		}
	}
	return out
}

// IsPresent reports whether v is a finite positive number.
func IsPresent(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
