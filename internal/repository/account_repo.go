package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/yusufkecer/medfit-backend/internal/db"
	"github.com/yusufkecer/medfit-backend/internal/domain"
)

type AccountRepository struct {
	db      *sql.DB
	dialect db.Dialect
}

func NewAccountRepository(conn *sql.DB, dialect db.Dialect) *AccountRepository {
	return &AccountRepository{db: conn, dialect: dialect}
}

func (r *AccountRepository) Create(ctx context.Context, email, passwordHash string) (int64, error) {
	id, err := insertID(ctx, r.db, r.dialect,
		`INSERT INTO accounts (email, password_hash) VALUES (?, ?)`,
		email, passwordHash,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create account: %w", err)
	}
	return id, nil
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	var account domain.Account
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(
		`SELECT id, email, password_hash FROM accounts WHERE email = ?`),
		email,
	).Scan(&account.ID, &account.Email, &account.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

func (r *AccountRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	ok, err := execAffected(ctx, r.db, r.dialect,
		`UPDATE accounts SET password_hash = ? WHERE id = ?`,
		passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if !ok {
		return fmt.Errorf("failed to update password: account %d not found", id)
	}
	return nil
}
