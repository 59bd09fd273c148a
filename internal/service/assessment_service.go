package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/yusufkecer/medfit-backend/internal/domain"
	"github.com/yusufkecer/medfit-backend/internal/events"
	"github.com/yusufkecer/medfit-backend/internal/metrics"
)

// AssessmentService records assessments and keeps their derived results in
// sync with the raw measurements.
type AssessmentService struct {
	clients     domain.ClientRepository
	assessments domain.AssessmentRepository
	publisher   events.Publisher
	profile     metrics.Profile
}

// NewAssessmentService wires the store and publisher. profile is used for
// the results cached on write.
func NewAssessmentService(
	clients domain.ClientRepository,
	assessments domain.AssessmentRepository,
	publisher events.Publisher,
	profile metrics.Profile,
) *AssessmentService {
	return &AssessmentService{
		clients:     clients,
		assessments: assessments,
		publisher:   publisher,
		profile:     profile,
	}
}

// Record stores a new assessment, caches its result and announces it.
func (s *AssessmentService) Record(ctx context.Context, a *domain.Assessment) error {
	if err := validateAssessment(a); err != nil {
		return err
	}
	client, err := s.client(ctx, a.ClientID)
	if err != nil {
		return err
	}
	if a.TakenAt.IsZero() {
		a.TakenAt = time.Now().UTC().Truncate(time.Second)
	}

	s.evaluate(a, client.Sex)
	if _, err := s.assessments.Create(ctx, a); err != nil {
		return err
	}
	s.publish(ctx, events.AssessmentRecorded, a)
	return nil
}

// Update replaces the raw data of an existing assessment. The owning client
// cannot change.
func (s *AssessmentService) Update(ctx context.Context, a *domain.Assessment) error {
	if err := validateAssessment(a); err != nil {
		return err
	}
	existing, err := s.Get(ctx, a.ID)
	if err != nil {
		return err
	}
	a.ClientID = existing.ClientID
	a.CreatedAt = existing.CreatedAt
	if a.TakenAt.IsZero() {
		a.TakenAt = existing.TakenAt
	}

	client, err := s.client(ctx, a.ClientID)
	if err != nil {
		return err
	}
	s.evaluate(a, client.Sex)
	ok, err := s.assessments.Update(ctx, a)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrAssessmentNotFound
	}
	s.publish(ctx, events.AssessmentUpdated, a)
	return nil
}

// RefreshClient recomputes the cached results of every assessment of c,
// after a change to the client that feeds classification.
func (s *AssessmentService) RefreshClient(ctx context.Context, c *domain.Client) error {
	list, err := s.assessments.GetByClientID(ctx, c.ID)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		return nil
	}
	results := make(map[int64]domain.AssessmentResult, len(list))
	for i := range list {
		results[list[i].ID] = s.profile.Evaluate(list[i].Measurements, c.Sex)
	}
	if err := s.assessments.SaveResults(ctx, results); err != nil {
		return err
	}
	for i := range list {
		result := results[list[i].ID]
		list[i].Result = &result
		s.publish(ctx, events.AssessmentUpdated, &list[i])
	}
	return nil
}

// evaluate sets the result cached on write.
func (s *AssessmentService) evaluate(a *domain.Assessment, sex domain.Sex) {
	result := s.profile.Evaluate(a.Measurements, sex)
	a.Result = &result
}

func (s *AssessmentService) publish(ctx context.Context, eventType string, a *domain.Assessment) {
	if err := s.publisher.Publish(ctx, events.NewAssessmentEvent(eventType, a)); err != nil {
		log.Error().Err(err).Str("event", eventType).Int64("assessment_id", a.ID).Msg("failed to publish event")
	}
}

func (s *AssessmentService) Get(ctx context.Context, id int64) (*domain.Assessment, error) {
	a, err := s.assessments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, domain.ErrAssessmentNotFound
	}
	return a, nil
}

// Evaluate recomputes the result of a stored assessment with profile.
func (s *AssessmentService) Evaluate(ctx context.Context, id int64, profile metrics.Profile) (*domain.Assessment, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	sex, err := s.sexOf(ctx, a.ClientID)
	if err != nil {
		return nil, err
	}
	result := profile.Evaluate(a.Measurements, sex)
	a.Result = &result
	return a, nil
}

func (s *AssessmentService) List(ctx context.Context) ([]domain.Assessment, error) {
	return s.assessments.GetAll(ctx)
}

func (s *AssessmentService) ListByClient(ctx context.Context, clientID int64) ([]domain.Assessment, error) {
	if _, err := s.client(ctx, clientID); err != nil {
		return nil, err
	}
	return s.assessments.GetByClientID(ctx, clientID)
}

func (s *AssessmentService) Latest(ctx context.Context, clientID int64) (*domain.Assessment, error) {
	if _, err := s.client(ctx, clientID); err != nil {
		return nil, err
	}
	a, err := s.assessments.GetLatestByClientID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, domain.ErrAssessmentNotFound
	}
	return a, nil
}

// ByPeriod lists assessments taken between from and to, both inclusive.
func (s *AssessmentService) ByPeriod(ctx context.Context, from, to time.Time) ([]domain.Assessment, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: from is after to", domain.ErrInvalidPeriod)
	}
	return s.assessments.GetByPeriod(ctx, from, to)
}

// History returns the client's timeline newest first with per-measurement
// deltas. Each step carries a result recomputed with profile.
func (s *AssessmentService) History(ctx context.Context, clientID int64, names []domain.MeasurementName, profile metrics.Profile) ([]metrics.Step, error) {
	client, err := s.client(ctx, clientID)
	if err != nil {
		return nil, err
	}
	list, err := s.assessments.GetByClientID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		names = metrics.DefaultComparison
	}

	steps := metrics.History(list, names)
	for i := range steps {
		result := profile.Evaluate(steps[i].Assessment.Measurements, client.Sex)
		steps[i].Assessment.Result = &result
	}
	return steps, nil
}

// Compare diffs two assessments of the same client.
func (s *AssessmentService) Compare(ctx context.Context, id, previousID int64, names []domain.MeasurementName) (map[domain.MeasurementName]metrics.Delta, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	previous, err := s.Get(ctx, previousID)
	if err != nil {
		return nil, err
	}
	if current.ClientID != previous.ClientID {
		return nil, domain.ErrClientMismatch
	}
	if len(names) == 0 {
		names = metrics.DefaultComparison
	}
	return metrics.Compare(current.Measurements, previous.Measurements, names), nil
}

func (s *AssessmentService) Delete(ctx context.Context, id int64) error {
	a, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	ok, err := s.assessments.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrAssessmentNotFound
	}
	s.publish(ctx, events.AssessmentDeleted, a)
	return nil
}

func (s *AssessmentService) Count(ctx context.Context) (int64, error) {
	return s.assessments.Count(ctx)
}

func (s *AssessmentService) client(ctx context.Context, id int64) (*domain.Client, error) {
	c, err := s.clients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrClientNotFound
	}
	return c, nil
}

func (s *AssessmentService) sexOf(ctx context.Context, clientID int64) (domain.Sex, error) {
	c, err := s.clients.GetByID(ctx, clientID)
	if err != nil {
		return domain.SexUnspecified, err
	}
	if c == nil {
		return domain.SexUnspecified, nil
	}
	return c.Sex, nil
}

// validateAssessment rejects unknown names, drops absent values and requires
// weight and height.
func validateAssessment(a *domain.Assessment) error {
	if err := a.Measurements.Validate(); err != nil {
		return err
	}
	a.Measurements = a.Measurements.Present()
	if _, ok := a.Measurements.Value(domain.Weight); !ok {
		return fmt.Errorf("%w: weight is required", domain.ErrInvalidMeasurement)
	}
	if _, ok := a.Measurements.Value(domain.Height); !ok {
		return fmt.Errorf("%w: height is required", domain.ErrInvalidMeasurement)
	}
	return nil
}
