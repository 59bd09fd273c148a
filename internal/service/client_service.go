package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yusufkecer/medfit-backend/internal/domain"
)

// ResultRefresher recomputes the cached assessment results of a client.
type ResultRefresher interface {
	RefreshClient(ctx context.Context, c *domain.Client) error
}

type ClientService struct {
	repo    domain.ClientRepository
	results ResultRefresher
}

// NewClientService wires the client store. results is told when a change to
// a client invalidates the results cached on its assessments.
func NewClientService(repo domain.ClientRepository, results ResultRefresher) *ClientService {
	return &ClientService{repo: repo, results: results}
}

func (s *ClientService) Create(ctx context.Context, c *domain.Client) error {
	if err := validateClient(c); err != nil {
		return err
	}
	if _, err := s.repo.Create(ctx, c); err != nil {
		return err
	}
	return nil
}

func (s *ClientService) Get(ctx context.Context, id int64) (*domain.Client, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrClientNotFound
	}
	return c, nil
}

// List returns every client, or those whose name contains query when it is
// not blank.
func (s *ClientService) List(ctx context.Context, query string) ([]domain.Client, error) {
	if strings.TrimSpace(query) == "" {
		return s.repo.GetAll(ctx)
	}
	return s.repo.SearchByName(ctx, query)
}

// Update replaces a client. Sex selects the WHR table, so a change of sex
// recomputes the client's cached results.
func (s *ClientService) Update(ctx context.Context, c *domain.Client) error {
	if err := validateClient(c); err != nil {
		return err
	}
	existing, err := s.Get(ctx, c.ID)
	if err != nil {
		return err
	}
	ok, err := s.repo.Update(ctx, c)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrClientNotFound
	}
	if existing.Sex == c.Sex {
		return nil
	}
	if err := s.results.RefreshClient(ctx, c); err != nil {
		return fmt.Errorf("failed to refresh results of client %d: %w", c.ID, err)
	}
	return nil
}

func (s *ClientService) Delete(ctx context.Context, id int64) error {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrClientNotFound
	}
	return nil
}

func (s *ClientService) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

func validateClient(c *domain.Client) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrInvalidClient)
	}
	if c.BirthDate != nil && *c.BirthDate != "" {
		if _, err := time.Parse(time.DateOnly, *c.BirthDate); err != nil {
			return fmt.Errorf("%w: birth_date must be YYYY-MM-DD", domain.ErrInvalidClient)
		}
	}
	return nil
}
