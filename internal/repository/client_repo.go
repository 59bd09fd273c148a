package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yusufkecer/medfit-backend/internal/db"
	"github.com/yusufkecer/medfit-backend/internal/domain"
)

const clientColumns = `id, name, phone, birth_date, sex, created_at, updated_at`

type ClientRepository struct {
	db      *sql.DB
	dialect db.Dialect
}

var _ domain.ClientRepository = (*ClientRepository)(nil)

func NewClientRepository(conn *sql.DB, dialect db.Dialect) *ClientRepository {
	return &ClientRepository{db: conn, dialect: dialect}
}

func (r *ClientRepository) Create(ctx context.Context, c *domain.Client) (int64, error) {
	now := time.Now().UTC().Truncate(time.Second)
	id, err := insertID(ctx, r.db, r.dialect,
		`INSERT INTO clients (name, phone, birth_date, sex, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.Name, nullString(c.Phone), nullString(c.BirthDate), string(c.Sex), formatTime(now), formatTime(now),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create client: %w", err)
	}
	c.ID = id
	c.CreatedAt = now
	c.UpdatedAt = now
	return id, nil
}

func (r *ClientRepository) GetByID(ctx context.Context, id int64) (*domain.Client, error) {
	row := r.db.QueryRowContext(ctx, r.dialect.Rebind(`SELECT `+clientColumns+` FROM clients WHERE id = ?`), id)
	c, err := scanClient(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return c, nil
}

func (r *ClientRepository) GetAll(ctx context.Context) ([]domain.Client, error) {
	return r.list(ctx, `SELECT `+clientColumns+` FROM clients ORDER BY name ASC, id ASC`)
}

// SearchByName matches a case-insensitive substring of the client name.
func (r *ClientRepository) SearchByName(ctx context.Context, name string) ([]domain.Client, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(name)) + "%"
	return r.list(ctx, `SELECT `+clientColumns+` FROM clients WHERE LOWER(name) LIKE ? ORDER BY name ASC, id ASC`, pattern)
}

func (r *ClientRepository) Update(ctx context.Context, c *domain.Client) (bool, error) {
	now := time.Now().UTC().Truncate(time.Second)
	ok, err := execAffected(ctx, r.db, r.dialect,
		`UPDATE clients SET name = ?, phone = ?, birth_date = ?, sex = ?, updated_at = ? WHERE id = ?`,
		c.Name, nullString(c.Phone), nullString(c.BirthDate), string(c.Sex), formatTime(now), c.ID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update client: %w", err)
	}
	if ok {
		c.UpdatedAt = now
	}
	return ok, nil
}

func (r *ClientRepository) Delete(ctx context.Context, id int64) (bool, error) {
	ok, err := execAffected(ctx, r.db, r.dialect, `DELETE FROM clients WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete client: %w", err)
	}
	return ok, nil
}

func (r *ClientRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM clients`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count clients: %w", err)
	}
	return n, nil
}

func (r *ClientRepository) list(ctx context.Context, query string, args ...any) ([]domain.Client, error) {
	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	var clients []domain.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, *c)
	}
	return clients, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanClient(s scanner) (*domain.Client, error) {
	var (
		c                    domain.Client
		phone, birthDate     sql.NullString
		sex                  string
		createdAt, updatedAt string
		err                  error
	)
	if err = s.Scan(&c.ID, &c.Name, &phone, &birthDate, &sex, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	c.Phone = stringPtr(phone)
	c.BirthDate = stringPtr(birthDate)
	c.Sex = domain.Sex(sex)
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}
