package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/yusufkecer/medfit-backend/internal/domain"
	"github.com/yusufkecer/medfit-backend/internal/metrics"
)

type CalculateHandler struct {
	profile metrics.Profile
}

func NewCalculateHandler(profile metrics.Profile) *CalculateHandler {
	return &CalculateHandler{profile: profile}
}

type calculateRequest struct {
	Weight  float64 `json:"weight"`
	Height  float64 `json:"height"`
	Waist   float64 `json:"waist"`
	Hip     float64 `json:"hip"`
	Sex     string  `json:"sex"`
	Profile string  `json:"profile"`
}

// Calculate evaluates ad hoc measurements without storing them. Weight and
// height are required; the ratio is null when waist or hip is missing.
func (h *CalculateHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req calculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !domain.IsPresent(req.Weight) || !domain.IsPresent(req.Height) {
		writeError(w, http.StatusBadRequest, "weight and height must be positive numbers")
		return
	}

	name := req.Profile
	if strings.TrimSpace(name) == "" {
		name = r.URL.Query().Get("profile")
	}
	profile := h.profile
	if strings.TrimSpace(name) != "" {
		p, err := metrics.ProfileByName(name)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		profile = p
	}

	result := profile.Evaluate(domain.Measurements{
		domain.Weight: req.Weight,
		domain.Height: req.Height,
		domain.Waist:  req.Waist,
		domain.Hip:    req.Hip,
	}, domain.ParseSex(req.Sex))

	writeJSON(w, http.StatusOK, result)
}
