// Package metrics derives body-composition indices from raw anthropometric
// measurements: height normalization, body mass index (BMI), waist-hip ratio
// (WHR), their risk categories, and deltas between consecutive assessments.
//
// Everything in this package is pure. Invalid or missing inputs never produce
// an error; the affected index is reported as absent so callers can render a
// placeholder and still show the rest of the assessment.
//
// Rounding precision and the WHR threshold table differ between the dashboard
// and the clinical report. Both are kept as named Profiles and callers pick one
// explicitly.
package metrics
