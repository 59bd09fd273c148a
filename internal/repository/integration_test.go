//go:build database

package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/yusufkecer/medfit-backend/internal/config"
	"github.com/yusufkecer/medfit-backend/internal/db"
	"github.com/yusufkecer/medfit-backend/internal/domain"
)

// TestStoreWithMySQL runs the store round trip against a MySQL backend.
func TestStoreWithMySQL(t *testing.T) {
	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "medfit",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	cfg := &config.Config{
		DBBackend:  config.BackendMySQL,
		DBHost:     host,
		DBPort:     port.Port(),
		DBUser:     "root",
		DBPassword: "secret123",
		DBName:     "medfit",
	}
	exerciseStore(t, cfg, db.MySQL)
}

// TestStoreWithPostgres runs the store round trip against a PostgreSQL backend.
func TestStoreWithPostgres(t *testing.T) {
	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg := &config.Config{
		DBBackend:   config.BackendPostgres,
		PostgresURL: fmt.Sprintf("postgres://postgres@%s:%s/postgres?sslmode=disable", host, port.Port()),
	}
	exerciseStore(t, cfg, db.Postgres)
}

func exerciseStore(t *testing.T, cfg *config.Config, dialect db.Dialect) {
	t.Helper()
	require.NoError(t, db.RunMigrations(cfg))

	conn, err := db.Connect(cfg)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	clients := NewClientRepository(conn, dialect)
	assessments := NewAssessmentRepository(conn, dialect)

	clientID, err := clients.Create(ctx, &domain.Client{Name: "Ana", Sex: domain.SexFemale})
	require.NoError(t, err)

	// Unchanged rows still count as found.
	c, err := clients.GetByID(ctx, clientID)
	require.NoError(t, err)
	ok, err := clients.Update(ctx, c)
	require.NoError(t, err)
	assert.True(t, ok)

	for _, d := range []string{"2024-01-10", "2024-02-10"} {
		_, err := assessments.Create(ctx, &domain.Assessment{
			ClientID:     clientID,
			TakenAt:      day(d),
			Measurements: domain.Measurements{domain.Weight: 70, domain.Height: 175, domain.Waist: 80},
		})
		require.NoError(t, err)
	}

	latest, err := assessments.GetLatestByClientID(ctx, clientID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.True(t, latest.TakenAt.Equal(day("2024-02-10")))
	assert.Len(t, latest.Measurements, 3)

	require.NoError(t, assessments.SaveResults(ctx, map[int64]domain.AssessmentResult{
		latest.ID: {
			BMI:     &domain.MetricResult{Value: 22.86, Category: "Normal weight", Risk: "Low"},
			Profile: "clinical",
		},
	}))
	got, err := assessments.GetByID(ctx, latest.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Result)
	assert.Equal(t, 22.86, got.Result.BMI.Value)

	period, err := assessments.GetByPeriod(ctx, day("2024-01-01"), day("2024-01-31"))
	require.NoError(t, err)
	assert.Len(t, period, 1)

	require.NoError(t, db.RollbackMigrations(cfg))
}
