package service

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/yusufkecer/medfit-backend/internal/domain"
	"github.com/yusufkecer/medfit-backend/internal/events"
)

type mockClientRepo struct{ mock.Mock }

func (m *mockClientRepo) Create(ctx context.Context, c *domain.Client) (int64, error) {
	args := m.Called(ctx, c)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockClientRepo) GetByID(ctx context.Context, id int64) (*domain.Client, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*domain.Client)
	return c, args.Error(1)
}

func (m *mockClientRepo) GetAll(ctx context.Context) ([]domain.Client, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]domain.Client)
	return list, args.Error(1)
}

func (m *mockClientRepo) SearchByName(ctx context.Context, name string) ([]domain.Client, error) {
	args := m.Called(ctx, name)
	list, _ := args.Get(0).([]domain.Client)
	return list, args.Error(1)
}

func (m *mockClientRepo) Update(ctx context.Context, c *domain.Client) (bool, error) {
	args := m.Called(ctx, c)
	return args.Bool(0), args.Error(1)
}

func (m *mockClientRepo) Delete(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockClientRepo) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type mockAssessmentRepo struct{ mock.Mock }

func (m *mockAssessmentRepo) Create(ctx context.Context, a *domain.Assessment) (int64, error) {
	args := m.Called(ctx, a)
	id := args.Get(0).(int64)
	if args.Error(1) == nil {
		a.ID = id
	}
	return id, args.Error(1)
}

func (m *mockAssessmentRepo) GetByID(ctx context.Context, id int64) (*domain.Assessment, error) {
	args := m.Called(ctx, id)
	a, _ := args.Get(0).(*domain.Assessment)
	return a, args.Error(1)
}

func (m *mockAssessmentRepo) GetAll(ctx context.Context) ([]domain.Assessment, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]domain.Assessment)
	return list, args.Error(1)
}

func (m *mockAssessmentRepo) GetByClientID(ctx context.Context, clientID int64) ([]domain.Assessment, error) {
	args := m.Called(ctx, clientID)
	list, _ := args.Get(0).([]domain.Assessment)
	return list, args.Error(1)
}

func (m *mockAssessmentRepo) GetLatestByClientID(ctx context.Context, clientID int64) (*domain.Assessment, error) {
	args := m.Called(ctx, clientID)
	a, _ := args.Get(0).(*domain.Assessment)
	return a, args.Error(1)
}

func (m *mockAssessmentRepo) GetByPeriod(ctx context.Context, from, to time.Time) ([]domain.Assessment, error) {
	args := m.Called(ctx, from, to)
	list, _ := args.Get(0).([]domain.Assessment)
	return list, args.Error(1)
}

func (m *mockAssessmentRepo) Update(ctx context.Context, a *domain.Assessment) (bool, error) {
	args := m.Called(ctx, a)
	return args.Bool(0), args.Error(1)
}

func (m *mockAssessmentRepo) SaveResults(ctx context.Context, results map[int64]domain.AssessmentResult) error {
	return m.Called(ctx, results).Error(0)
}

func (m *mockAssessmentRepo) Delete(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockAssessmentRepo) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type mockRefresher struct {
	mock.Mock
}

func (m *mockRefresher) RefreshClient(ctx context.Context, c *domain.Client) error {
	return m.Called(ctx, c).Error(0)
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}
