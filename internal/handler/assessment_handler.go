package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/yusufkecer/medfit-backend/internal/domain"
	"github.com/yusufkecer/medfit-backend/internal/metrics"
	"github.com/yusufkecer/medfit-backend/internal/service"
)

type AssessmentHandler struct {
	assessments *service.AssessmentService
	profile     metrics.Profile
}

// NewAssessmentHandler serves assessments. profile is the default for
// endpoints that accept ?profile=.
func NewAssessmentHandler(assessments *service.AssessmentService, profile metrics.Profile) *AssessmentHandler {
	return &AssessmentHandler{assessments: assessments, profile: profile}
}

type assessmentRequest struct {
	ClientID     int64              `json:"client_id"`
	TakenAt      string             `json:"taken_at"`
	Measurements map[string]float64 `json:"measurements"`
	Notes        *string            `json:"notes"`
}

func (req assessmentRequest) toAssessment() (domain.Assessment, error) {
	m, err := parseMeasurements(req.Measurements)
	if err != nil {
		return domain.Assessment{}, err
	}
	a := domain.Assessment{ClientID: req.ClientID, Measurements: m, Notes: req.Notes}
	if req.TakenAt != "" {
		if a.TakenAt, err = parseDate(req.TakenAt); err != nil {
			return domain.Assessment{}, err
		}
	}
	return a, nil
}

func (h *AssessmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req assessmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ClientID <= 0 {
		writeError(w, http.StatusBadRequest, "client_id is required")
		return
	}

	a, err := req.toAssessment()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.assessments.Record(r.Context(), &a); err != nil {
		writeServiceError(w, r, err, "failed to create assessment")
		return
	}

	writeJSON(w, http.StatusCreated, a)
}

// GetByID returns the stored assessment. With ?profile= the result is
// recomputed for that profile instead of the cached one.
func (h *AssessmentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid assessment id")
		return
	}

	var a *domain.Assessment
	if r.URL.Query().Has("profile") {
		profile, perr := profileParam(r, h.profile)
		if perr != nil {
			writeError(w, http.StatusBadRequest, perr.Error())
			return
		}
		a, err = h.assessments.Evaluate(r.Context(), id, profile)
	} else {
		a, err = h.assessments.Get(r.Context(), id)
	}
	if err != nil {
		writeServiceError(w, r, err, "failed to get assessment")
		return
	}

	writeJSON(w, http.StatusOK, a)
}

func (h *AssessmentHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	list, err := h.assessments.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "failed to list assessments")
		return
	}
	writeAssessments(w, list)
}

func (h *AssessmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid assessment id")
		return
	}

	var req assessmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	a, err := req.toAssessment()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	a.ID = id

	if err := h.assessments.Update(r.Context(), &a); err != nil {
		writeServiceError(w, r, err, "failed to update assessment")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *AssessmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid assessment id")
		return
	}

	if err := h.assessments.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err, "failed to delete assessment")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "assessment deleted"})
}

func (h *AssessmentHandler) GetByClientID(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid client id")
		return
	}

	list, err := h.assessments.ListByClient(r.Context(), clientID)
	if err != nil {
		writeServiceError(w, r, err, "failed to list assessments")
		return
	}
	writeAssessments(w, list)
}

func (h *AssessmentHandler) Latest(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid client id")
		return
	}

	a, err := h.assessments.Latest(r.Context(), clientID)
	if err != nil {
		writeServiceError(w, r, err, "failed to get latest assessment")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// History serves GET /clients/{id}/history?measurements=waist,arm&profile=.
func (h *AssessmentHandler) History(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid client id")
		return
	}
	names, err := measurementsParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	profile, err := profileParam(r, h.profile)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	steps, err := h.assessments.History(r.Context(), clientID, names, profile)
	if err != nil {
		writeServiceError(w, r, err, "failed to build history")
		return
	}
	writeJSON(w, http.StatusOK, steps)
}

// Period serves GET /assessments/period?from=YYYY-MM-DD&to=YYYY-MM-DD. A
// date-only to covers the whole day.
func (h *AssessmentHandler) Period(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("from") == "" || q.Get("to") == "" {
		writeError(w, http.StatusBadRequest, "from and to are required")
		return
	}
	from, err := parseDate(q.Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid from date")
		return
	}
	to, err := parseDate(q.Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid to date")
		return
	}
	if len(q.Get("to")) == len(time.DateOnly) {
		to = to.Add(24*time.Hour - time.Second)
	}

	list, err := h.assessments.ByPeriod(r.Context(), from, to)
	if err != nil {
		writeServiceError(w, r, err, "failed to list assessments")
		return
	}
	writeAssessments(w, list)
}

func (h *AssessmentHandler) Stats(w http.ResponseWriter, r *http.Request) {
	total, err := h.assessments.Count(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "failed to count assessments")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"total": total})
}

// Compare serves GET /assessments/{id}/compare/{previousId}.
func (h *AssessmentHandler) Compare(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid assessment id")
		return
	}
	previousID, err := pathID(r, "previousId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid previous assessment id")
		return
	}
	names, err := measurementsParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	deltas, err := h.assessments.Compare(r.Context(), id, previousID, names)
	if err != nil {
		writeServiceError(w, r, err, "failed to compare assessments")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"assessment_id": id,
		"previous_id":   previousID,
		"deltas":        deltas,
	})
}

func writeAssessments(w http.ResponseWriter, list []domain.Assessment) {
	if list == nil {
		list = []domain.Assessment{}
	}
	writeJSON(w, http.StatusOK, list)
}
