package domain

import "time"

// Assessment is one recorded set of measurements for a client.
type Assessment struct {
	ID           int64             `json:"id"`
	ClientID     int64             `json:"client_id"`
	TakenAt      time.Time         `json:"taken_at"`
	Measurements Measurements      `json:"measurements"`
	Notes        *string           `json:"notes"`
	Result       *AssessmentResult `json:"result,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// MetricResult is a derived index with its category. A nil *MetricResult
// means the index could not be computed from the inputs.
type MetricResult struct {
	Value    float64 `json:"value"`
	Category string  `json:"category"`
	Risk     string  `json:"risk,omitempty"`
}

// AssessmentResult bundles the derived indices. It is a cache: the raw
// measurements stay authoritative.
type AssessmentResult struct {
	BMI     *MetricResult `json:"bmi"`
	WHR     *MetricResult `json:"whr"`
	Profile string        `json:"profile"`
}
