package domain

import "errors"

var (
	ErrUnknownMeasurement = errors.New("unknown measurement")
	ErrInvalidMeasurement = errors.New("invalid measurement")
	ErrInvalidClient      = errors.New("invalid client")
	ErrInvalidPeriod      = errors.New("invalid period")
	ErrClientNotFound     = errors.New("client not found")
	ErrAssessmentNotFound = errors.New("assessment not found")
	ErrClientMismatch     = errors.New("assessments belong to different clients")
	ErrUnknownProfile     = errors.New("unknown classification profile")
)
