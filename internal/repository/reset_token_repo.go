package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/yusufkecer/medfit-backend/internal/db"
	"github.com/yusufkecer/medfit-backend/internal/domain"
)

type ResetTokenRepository struct {
	db      *sql.DB
	dialect db.Dialect
}

func NewResetTokenRepository(conn *sql.DB, dialect db.Dialect) *ResetTokenRepository {
	return &ResetTokenRepository{db: conn, dialect: dialect}
}

func (r *ResetTokenRepository) Create(ctx context.Context, accountID int64, token string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx, r.dialect.Rebind(
		`INSERT INTO password_reset_tokens (account_id, token, expires_at) VALUES (?, ?, ?)`),
		accountID, token, formatTime(expiresAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create reset token: %w", err)
	}
	return nil
}

// GetValidByEmailAndToken returns the newest unused, unexpired token.
func (r *ResetTokenRepository) GetValidByEmailAndToken(ctx context.Context, email, token string) (*domain.ResetCode, error) {
	var (
		t         domain.ResetCode
		expiresAt string
		used      int
	)
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(`
		SELECT prt.id, prt.account_id, prt.token, prt.expires_at, prt.used
		FROM password_reset_tokens prt
		JOIN accounts a ON a.id = prt.account_id
		WHERE a.email = ? AND prt.token = ? AND prt.used = 0 AND prt.expires_at > ?
		ORDER BY prt.id DESC
		LIMIT 1`),
		email, token, formatTime(time.Now()),
	).Scan(&t.ID, &t.AccountID, &t.Code, &expiresAt, &used)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reset token: %w", err)
	}
	if t.ExpiresAt, err = parseTime(expiresAt); err != nil {
		return nil, err
	}
	t.Used = used != 0
	return &t, nil
}

func (r *ResetTokenRepository) MarkUsed(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, r.dialect.Rebind(`UPDATE password_reset_tokens SET used = 1 WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to mark token as used: %w", err)
	}
	return nil
}

func (r *ResetTokenRepository) DeleteByAccountID(ctx context.Context, accountID int64) error {
	_, err := r.db.ExecContext(ctx, r.dialect.Rebind(`DELETE FROM password_reset_tokens WHERE account_id = ?`), accountID)
	if err != nil {
		return fmt.Errorf("failed to delete old tokens: %w", err)
	}
	return nil
}
