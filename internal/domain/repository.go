package domain

import (
	"context"
	"time"
)

// ClientRepository is the port for client persistence. Lookups return
// nil, nil when the record does not exist.
type ClientRepository interface {
	Create(ctx context.Context, c *Client) (int64, error)
	GetByID(ctx context.Context, id int64) (*Client, error)
	GetAll(ctx context.Context) ([]Client, error)
	SearchByName(ctx context.Context, name string) ([]Client, error)
	Update(ctx context.Context, c *Client) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	Count(ctx context.Context) (int64, error)
}

// AssessmentRepository is the port for assessment persistence. Lists are
// ordered by TakenAt descending. Create and Update store Assessment.Result
// alongside the raw data.
type AssessmentRepository interface {
	Create(ctx context.Context, a *Assessment) (int64, error)
	GetByID(ctx context.Context, id int64) (*Assessment, error)
	GetAll(ctx context.Context) ([]Assessment, error)
	GetByClientID(ctx context.Context, clientID int64) ([]Assessment, error)
	GetLatestByClientID(ctx context.Context, clientID int64) (*Assessment, error)
	GetByPeriod(ctx context.Context, from, to time.Time) ([]Assessment, error)
	Update(ctx context.Context, a *Assessment) (bool, error)
	SaveResults(ctx context.Context, results map[int64]AssessmentResult) error
	Delete(ctx context.Context, id int64) (bool, error)
	Count(ctx context.Context) (int64, error)
}
