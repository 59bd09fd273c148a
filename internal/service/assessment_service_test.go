package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yusufkecer/medfit-backend/internal/domain"
	"github.com/yusufkecer/medfit-backend/internal/events"
	"github.com/yusufkecer/medfit-backend/internal/metrics"
)

type assessmentFixture struct {
	clients     *mockClientRepo
	assessments *mockAssessmentRepo
	publisher   *fakePublisher
	svc         *AssessmentService
}

func newAssessmentFixture() *assessmentFixture {
	f := &assessmentFixture{
		clients:     new(mockClientRepo),
		assessments: new(mockAssessmentRepo),
		publisher:   &fakePublisher{},
	}
	f.svc = NewAssessmentService(f.clients, f.assessments, f.publisher, metrics.Clinical)
	return f
}

var ctx = context.Background()

func TestAssessmentService_RecordCachesResultAndPublishes(t *testing.T) {
	f := newAssessmentFixture()
	f.clients.On("GetByID", ctx, int64(1)).Return(&domain.Client{ID: 1, Sex: domain.SexMale}, nil)
	f.assessments.On("Create", ctx, mock.MatchedBy(func(a *domain.Assessment) bool {
		r := a.Result
		return r != nil && r.Profile == metrics.ProfileClinical && r.BMI.Value == 22.86 && r.WHR.Category == "Moderate risk"
	})).Return(int64(10), nil)

	a := &domain.Assessment{
		ClientID:     1,
		Measurements: domain.Measurements{domain.Weight: 70, domain.Height: 175, domain.Waist: 87, domain.Hip: 100},
	}
	require.NoError(t, f.svc.Record(ctx, a))

	assert.EqualValues(t, 10, a.ID)
	assert.False(t, a.TakenAt.IsZero())
	require.NotNil(t, a.Result)
	assert.Equal(t, metrics.BMINormal, a.Result.BMI.Category)
	assert.Equal(t, 0.87, a.Result.WHR.Value)
	assert.Equal(t, []string{events.AssessmentRecorded}, f.publisher.types())
	f.assessments.AssertExpectations(t)
}

func TestAssessmentService_RecordRequiresWeightAndHeight(t *testing.T) {
	f := newAssessmentFixture()

	err := f.svc.Record(ctx, &domain.Assessment{ClientID: 1, Measurements: domain.Measurements{domain.Weight: 70}})
	assert.ErrorIs(t, err, domain.ErrInvalidMeasurement)

	err = f.svc.Record(ctx, &domain.Assessment{ClientID: 1, Measurements: domain.Measurements{domain.Weight: 0, domain.Height: 1.8}})
	assert.ErrorIs(t, err, domain.ErrInvalidMeasurement)

	err = f.svc.Record(ctx, &domain.Assessment{ClientID: 1, Measurements: domain.Measurements{"neck": 40}})
	assert.ErrorIs(t, err, domain.ErrUnknownMeasurement)

	f.assessments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAssessmentService_RecordUnknownClient(t *testing.T) {
	f := newAssessmentFixture()
	f.clients.On("GetByID", ctx, int64(5)).Return(nil, nil)

	err := f.svc.Record(ctx, &domain.Assessment{ClientID: 5, Measurements: domain.Measurements{domain.Weight: 70, domain.Height: 1.8}})
	assert.ErrorIs(t, err, domain.ErrClientNotFound)
}

func TestAssessmentService_PublishFailureDoesNotFailWrite(t *testing.T) {
	f := newAssessmentFixture()
	f.publisher.err = errors.New("broker down")
	f.clients.On("GetByID", ctx, int64(1)).Return(&domain.Client{ID: 1}, nil)
	f.assessments.On("Create", ctx, mock.Anything).Return(int64(10), nil)

	a := &domain.Assessment{ClientID: 1, Measurements: domain.Measurements{domain.Weight: 70, domain.Height: 1.75}}
	assert.NoError(t, f.svc.Record(ctx, a))
}

func TestAssessmentService_RecordStoreFailureLeavesNothingBehind(t *testing.T) {
	f := newAssessmentFixture()
	f.clients.On("GetByID", ctx, int64(1)).Return(&domain.Client{ID: 1}, nil)
	f.assessments.On("Create", ctx, mock.Anything).Return(int64(0), errors.New("disk full"))

	a := &domain.Assessment{ClientID: 1, Measurements: domain.Measurements{domain.Weight: 70, domain.Height: 1.75}}
	assert.EqualError(t, f.svc.Record(ctx, a), "disk full")

	assert.Empty(t, f.publisher.types())
	f.assessments.AssertNumberOfCalls(t, "Create", 1)
	f.assessments.AssertNotCalled(t, "SaveResults", mock.Anything, mock.Anything)
}

func TestAssessmentService_RecordDropsAbsentValues(t *testing.T) {
	f := newAssessmentFixture()
	f.clients.On("GetByID", ctx, int64(1)).Return(&domain.Client{ID: 1}, nil)
	f.assessments.On("Create", ctx, mock.Anything).Return(int64(10), nil)

	a := &domain.Assessment{ClientID: 1, Measurements: domain.Measurements{domain.Weight: 70, domain.Height: 1.75, domain.Chest: 0, domain.Arm: -2}}
	require.NoError(t, f.svc.Record(ctx, a))
	assert.Equal(t, domain.Measurements{domain.Weight: 70, domain.Height: 1.75}, a.Measurements)
}

func TestAssessmentService_UpdateKeepsOwner(t *testing.T) {
	f := newAssessmentFixture()
	taken := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	f.assessments.On("GetByID", ctx, int64(10)).Return(&domain.Assessment{ID: 10, ClientID: 1, TakenAt: taken}, nil)
	f.clients.On("GetByID", ctx, int64(1)).Return(&domain.Client{ID: 1, Sex: domain.SexFemale}, nil)
	f.assessments.On("Update", ctx, mock.MatchedBy(func(a *domain.Assessment) bool {
		return a.ClientID == 1 && a.TakenAt.Equal(taken) && a.Result != nil && a.Result.BMI != nil
	})).Return(true, nil)

	a := &domain.Assessment{ID: 10, ClientID: 99, Measurements: domain.Measurements{domain.Weight: 60, domain.Height: 1.65}}
	require.NoError(t, f.svc.Update(ctx, a))
	assert.Equal(t, []string{events.AssessmentUpdated}, f.publisher.types())
}

func TestAssessmentService_UpdateStoreFailureDoesNotPublish(t *testing.T) {
	f := newAssessmentFixture()
	f.assessments.On("GetByID", ctx, int64(10)).Return(&domain.Assessment{ID: 10, ClientID: 1}, nil)
	f.clients.On("GetByID", ctx, int64(1)).Return(&domain.Client{ID: 1}, nil)
	f.assessments.On("Update", ctx, mock.Anything).Return(false, errors.New("disk full"))

	a := &domain.Assessment{ID: 10, Measurements: domain.Measurements{domain.Weight: 60, domain.Height: 1.65}}
	assert.EqualError(t, f.svc.Update(ctx, a), "disk full")
	assert.Empty(t, f.publisher.types())
}

func TestAssessmentService_RefreshClient(t *testing.T) {
	f := newAssessmentFixture()
	f.assessments.On("GetByClientID", ctx, int64(1)).Return([]domain.Assessment{
		{ID: 10, ClientID: 1, Measurements: domain.Measurements{domain.Weight: 70, domain.Height: 1.75, domain.Waist: 82, domain.Hip: 100}},
		{ID: 11, ClientID: 1, Measurements: domain.Measurements{domain.Weight: 71, domain.Height: 1.75}},
	}, nil)
	f.assessments.On("SaveResults", ctx, mock.MatchedBy(func(results map[int64]domain.AssessmentResult) bool {
		return len(results) == 2 && results[10].WHR.Category == "Moderate risk" && results[11].WHR == nil
	})).Return(nil)

	require.NoError(t, f.svc.RefreshClient(ctx, &domain.Client{ID: 1, Sex: domain.SexFemale}))
	assert.Equal(t, []string{events.AssessmentUpdated, events.AssessmentUpdated}, f.publisher.types())
	f.assessments.AssertExpectations(t)
}

func TestAssessmentService_RefreshClientWithoutAssessments(t *testing.T) {
	f := newAssessmentFixture()
	f.assessments.On("GetByClientID", ctx, int64(2)).Return(nil, nil)

	require.NoError(t, f.svc.RefreshClient(ctx, &domain.Client{ID: 2, Sex: domain.SexMale}))
	f.assessments.AssertNotCalled(t, "SaveResults", mock.Anything, mock.Anything)
}

func TestAssessmentService_UpdateMissing(t *testing.T) {
	f := newAssessmentFixture()
	f.assessments.On("GetByID", ctx, int64(10)).Return(nil, nil)

	a := &domain.Assessment{ID: 10, Measurements: domain.Measurements{domain.Weight: 60, domain.Height: 1.65}}
	assert.ErrorIs(t, f.svc.Update(ctx, a), domain.ErrAssessmentNotFound)
}

func TestAssessmentService_EvaluateWithProfile(t *testing.T) {
	f := newAssessmentFixture()
	f.assessments.On("GetByID", ctx, int64(10)).Return(&domain.Assessment{
		ID: 10, ClientID: 1,
		Measurements: domain.Measurements{domain.Weight: 70, domain.Height: 1.75, domain.Waist: 87, domain.Hip: 100},
	}, nil)
	f.clients.On("GetByID", ctx, int64(1)).Return(&domain.Client{ID: 1, Sex: domain.SexMale}, nil)

	a, err := f.svc.Evaluate(ctx, 10, metrics.Dashboard)
	require.NoError(t, err)
	assert.Equal(t, 22.9, a.Result.BMI.Value)
	assert.Equal(t, "Healthy", a.Result.WHR.Category)
	assert.Equal(t, metrics.ProfileDashboard, a.Result.Profile)
}

func TestAssessmentService_History(t *testing.T) {
	f := newAssessmentFixture()
	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	feb := jan.AddDate(0, 1, 0)
	f.clients.On("GetByID", ctx, int64(1)).Return(&domain.Client{ID: 1}, nil)
	f.assessments.On("GetByClientID", ctx, int64(1)).Return([]domain.Assessment{
		{ID: 1, ClientID: 1, TakenAt: jan, Measurements: domain.Measurements{domain.Weight: 80, domain.Height: 1.8, domain.Waist: 90, domain.ArmRight: 30}},
		{ID: 2, ClientID: 1, TakenAt: feb, Measurements: domain.Measurements{domain.Weight: 78, domain.Height: 1.8, domain.Waist: 85, domain.ArmRight: 32}},
	}, nil)

	steps, err := f.svc.History(ctx, 1, nil, metrics.Clinical)
	require.NoError(t, err)
	require.Len(t, steps, 2)

	assert.EqualValues(t, 2, steps[0].Assessment.ID)
	assert.EqualValues(t, 1, *steps[0].PreviousID)
	assert.Equal(t, -5.0, steps[0].Deltas[domain.Waist].Delta)
	assert.True(t, steps[0].Deltas[domain.Waist].Improved)
	assert.Equal(t, 2.0, steps[0].Deltas[domain.ArmRight].Delta)
	assert.True(t, steps[0].Deltas[domain.ArmRight].Improved)
	assert.Nil(t, steps[1].PreviousID)
	require.NotNil(t, steps[1].Assessment.Result)
	assert.Equal(t, 24.69, steps[1].Assessment.Result.BMI.Value)
}

func TestAssessmentService_CompareRejectsDifferentClients(t *testing.T) {
	f := newAssessmentFixture()
	f.assessments.On("GetByID", ctx, int64(1)).Return(&domain.Assessment{ID: 1, ClientID: 1}, nil)
	f.assessments.On("GetByID", ctx, int64(2)).Return(&domain.Assessment{ID: 2, ClientID: 2}, nil)

	_, err := f.svc.Compare(ctx, 2, 1, nil)
	assert.ErrorIs(t, err, domain.ErrClientMismatch)
}

func TestAssessmentService_Compare(t *testing.T) {
	f := newAssessmentFixture()
	f.assessments.On("GetByID", ctx, int64(1)).Return(&domain.Assessment{ID: 1, ClientID: 1, Measurements: domain.Measurements{domain.Waist: 90}}, nil)
	f.assessments.On("GetByID", ctx, int64(2)).Return(&domain.Assessment{ID: 2, ClientID: 1, Measurements: domain.Measurements{domain.Waist: 92}}, nil)

	deltas, err := f.svc.Compare(ctx, 2, 1, []domain.MeasurementName{domain.Waist})
	require.NoError(t, err)
	assert.Equal(t, 2.0, deltas[domain.Waist].Delta)
	assert.False(t, deltas[domain.Waist].Improved)
}

func TestAssessmentService_ByPeriodRejectsInvertedRange(t *testing.T) {
	f := newAssessmentFixture()
	from := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	_, err := f.svc.ByPeriod(ctx, from, from.AddDate(0, 0, -1))
	assert.ErrorIs(t, err, domain.ErrInvalidPeriod)
}

func TestAssessmentService_LatestWithoutAssessments(t *testing.T) {
	f := newAssessmentFixture()
	f.clients.On("GetByID", ctx, int64(1)).Return(&domain.Client{ID: 1}, nil)
	f.assessments.On("GetLatestByClientID", ctx, int64(1)).Return(nil, nil)

	_, err := f.svc.Latest(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrAssessmentNotFound)
}

func TestAssessmentService_DeletePublishes(t *testing.T) {
	f := newAssessmentFixture()
	f.assessments.On("GetByID", ctx, int64(3)).Return(&domain.Assessment{ID: 3, ClientID: 1}, nil)
	f.assessments.On("Delete", ctx, int64(3)).Return(true, nil)

	require.NoError(t, f.svc.Delete(ctx, 3))
	assert.Equal(t, []string{events.AssessmentDeleted}, f.publisher.types())
}
