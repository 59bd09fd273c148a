package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"github.com/yusufkecer/medfit-backend/internal/domain"
	"github.com/yusufkecer/medfit-backend/internal/metrics"
	"github.com/yusufkecer/medfit-backend/internal/middleware"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps domain errors to status codes. Anything unexpected
// is logged and answered with fallback.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrClientNotFound), errors.Is(err, domain.ErrAssessmentNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidMeasurement),
		errors.Is(err, domain.ErrUnknownMeasurement),
		errors.Is(err, domain.ErrInvalidClient),
		errors.Is(err, domain.ErrInvalidPeriod),
		errors.Is(err, domain.ErrClientMismatch),
		errors.Is(err, domain.ErrUnknownProfile):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Error().Err(err).
			Str("request_id", middleware.RequestID(r.Context())).
			Str("path", r.URL.Path).
			Msg(fallback)
		writeError(w, http.StatusInternalServerError, fallback)
	}
}

func pathID(r *http.Request, key string) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)[key], 10, 64)
}

// profileParam reads ?profile=, falling back to def when absent.
func profileParam(r *http.Request, def metrics.Profile) (metrics.Profile, error) {
	name := r.URL.Query().Get("profile")
	if strings.TrimSpace(name) == "" {
		return def, nil
	}
	return metrics.ProfileByName(name)
}

func measurementsParam(r *http.Request) ([]domain.MeasurementName, error) {
	return domain.ParseMeasurementNames(r.URL.Query().Get("measurements"))
}

// parseMeasurements converts a raw JSON object, rejecting unknown names and
// names given twice in different case.
func parseMeasurements(raw map[string]float64) (domain.Measurements, error) {
	m := make(domain.Measurements, len(raw))
	for key, value := range raw {
		name, err := domain.ParseMeasurementName(key)
		if err != nil {
			return nil, err
		}
		if _, dup := m[name]; dup {
			return nil, fmt.Errorf("%w: %s given more than once", domain.ErrInvalidMeasurement, name)
		}
		m[name] = value
	}
	return m, nil
}

// parseDate accepts YYYY-MM-DD or RFC 3339.
func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
