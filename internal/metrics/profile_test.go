package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yusufkecer/medfit-backend/internal/domain"
)

func TestProfileByName(t *testing.T) {
	p, err := ProfileByName("dashboard")
	require.NoError(t, err)
	assert.Equal(t, Dashboard, p)

	p, err = ProfileByName(" Clinical ")
	require.NoError(t, err)
	assert.Equal(t, Clinical, p)

	_, err = ProfileByName("")
	assert.ErrorIs(t, err, domain.ErrUnknownProfile)
	_, err = ProfileByName("report")
	assert.ErrorIs(t, err, domain.ErrUnknownProfile)
}

func TestProfile_Evaluate(t *testing.T) {
	m := domain.Measurements{
		domain.Weight: 70,
		domain.Height: 175,
		domain.Waist:  75,
		domain.Hip:    95,
	}

	clinical := Clinical.Evaluate(m, domain.SexFemale)
	require.NotNil(t, clinical.BMI)
	require.NotNil(t, clinical.WHR)
	assert.Equal(t, ProfileClinical, clinical.Profile)
	assert.Equal(t, 22.86, clinical.BMI.Value)
	assert.Equal(t, BMINormal, clinical.BMI.Category)
	assert.Equal(t, RiskLow, clinical.BMI.Risk)
	assert.Equal(t, 0.789, clinical.WHR.Value)
	assert.Equal(t, "Low risk", clinical.WHR.Category)

	dashboard := Dashboard.Evaluate(m, domain.SexFemale)
	require.NotNil(t, dashboard.BMI)
	require.NotNil(t, dashboard.WHR)
	assert.Equal(t, 22.9, dashboard.BMI.Value)
	assert.Equal(t, 0.79, dashboard.WHR.Value)
	assert.Equal(t, "Healthy", dashboard.WHR.Category)
}

func TestProfile_EvaluatePartial(t *testing.T) {
	result := Clinical.Evaluate(domain.Measurements{
		domain.Weight: 82,
		domain.Height: 1.80,
		domain.Waist:  90,
	}, domain.SexMale)

	require.NotNil(t, result.BMI)
	assert.Equal(t, 25.31, result.BMI.Value)
	assert.Equal(t, BMIOverweight, result.BMI.Category)
	assert.Nil(t, result.WHR, "hip was not supplied")
}

func TestProfile_EvaluateNothing(t *testing.T) {
	result := Dashboard.Evaluate(domain.Measurements{domain.Weight: 0, domain.Height: -1}, domain.SexMale)
	assert.Nil(t, result.BMI)
	assert.Nil(t, result.WHR)
	assert.Equal(t, ProfileDashboard, result.Profile)
}

func TestProfile_WHRMethodUsesTable(t *testing.T) {
	assert.Equal(t, WHRTableClinical, Clinical.Table)
	assert.Equal(t, WHRTableDashboard, Dashboard.Table)

	whr, ok := Clinical.WHR(87, 100)
	require.True(t, ok)
	assert.Equal(t, 0.87, whr)
	assert.Equal(t, "Moderate risk", Clinical.ClassifyWHR(whr, domain.SexMale))
	assert.Equal(t, "Healthy", Dashboard.ClassifyWHR(whr, domain.SexMale))
}
