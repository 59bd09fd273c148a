package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yusufkecer/medfit-backend/internal/domain"
)

func TestClientService_Create(t *testing.T) {
	repo := new(mockClientRepo)
	svc := NewClientService(repo, new(mockRefresher))
	ctx := context.Background()

	repo.On("Create", ctx, mock.MatchedBy(func(c *domain.Client) bool { return c.Name == "Ana" })).Return(int64(1), nil)

	require.NoError(t, svc.Create(ctx, &domain.Client{Name: "  Ana  "}))
	repo.AssertExpectations(t)
}

func TestClientService_CreateValidation(t *testing.T) {
	svc := NewClientService(new(mockClientRepo), new(mockRefresher))
	ctx := context.Background()

	assert.ErrorIs(t, svc.Create(ctx, &domain.Client{Name: "   "}), domain.ErrInvalidClient)

	bad := "12/04/1990"
	assert.ErrorIs(t, svc.Create(ctx, &domain.Client{Name: "Ana", BirthDate: &bad}), domain.ErrInvalidClient)
}

func TestClientService_NotFound(t *testing.T) {
	repo := new(mockClientRepo)
	svc := NewClientService(repo, new(mockRefresher))
	ctx := context.Background()

	repo.On("GetByID", ctx, int64(9)).Return(nil, nil)
	repo.On("Update", ctx, mock.Anything).Return(false, nil)
	repo.On("Delete", ctx, int64(9)).Return(false, nil)

	_, err := svc.Get(ctx, 9)
	assert.ErrorIs(t, err, domain.ErrClientNotFound)
	assert.ErrorIs(t, svc.Update(ctx, &domain.Client{ID: 9, Name: "x"}), domain.ErrClientNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, 9), domain.ErrClientNotFound)
}

func TestClientService_ListSearchesWhenQueryGiven(t *testing.T) {
	repo := new(mockClientRepo)
	svc := NewClientService(repo, new(mockRefresher))
	ctx := context.Background()

	repo.On("GetAll", ctx).Return([]domain.Client{{ID: 1}, {ID: 2}}, nil)
	repo.On("SearchByName", ctx, "ana").Return([]domain.Client{{ID: 1}}, nil)

	all, err := svc.List(ctx, " ")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	found, err := svc.List(ctx, "ana")
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestClientService_UpdateRefreshesResultsWhenSexChanges(t *testing.T) {
	repo := new(mockClientRepo)
	results := new(mockRefresher)
	svc := NewClientService(repo, results)
	ctx := context.Background()

	repo.On("GetByID", ctx, int64(4)).Return(&domain.Client{ID: 4, Name: "Rui", Sex: domain.SexMale}, nil)
	repo.On("Update", ctx, mock.Anything).Return(true, nil)
	results.On("RefreshClient", ctx, mock.MatchedBy(func(c *domain.Client) bool {
		return c.ID == 4 && c.Sex == domain.SexFemale
	})).Return(nil).Once()

	require.NoError(t, svc.Update(ctx, &domain.Client{ID: 4, Name: "Rui", Sex: domain.SexFemale}))
	require.NoError(t, svc.Update(ctx, &domain.Client{ID: 4, Name: "Rui Costa", Sex: domain.SexMale}))

	repo.AssertNumberOfCalls(t, "Update", 2)
	results.AssertExpectations(t)
}

func TestClientService_UpdateReportsRefreshFailure(t *testing.T) {
	repo := new(mockClientRepo)
	results := new(mockRefresher)
	svc := NewClientService(repo, results)
	ctx := context.Background()

	repo.On("GetByID", ctx, int64(4)).Return(&domain.Client{ID: 4, Name: "Rui", Sex: domain.SexMale}, nil)
	repo.On("Update", ctx, mock.Anything).Return(true, nil)
	results.On("RefreshClient", ctx, mock.Anything).Return(assert.AnError)

	assert.ErrorIs(t, svc.Update(ctx, &domain.Client{ID: 4, Name: "Rui", Sex: domain.SexFemale}), assert.AnError)
}
