package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yusufkecer/medfit-backend/internal/db"
)

func TestAccountRepository(t *testing.T) {
	repo := NewAccountRepository(newTestDB(t), db.SQLite)

	id, err := repo.Create(ctx, "ana@medfit.app", "hash-1")
	require.NoError(t, err)

	_, err = repo.Create(ctx, "ana@medfit.app", "hash-2")
	assert.Error(t, err, "email is unique")

	account, err := repo.GetByEmail(ctx, "ana@medfit.app")
	require.NoError(t, err)
	require.NotNil(t, account)
	assert.Equal(t, id, account.ID)

	require.NoError(t, repo.UpdatePassword(ctx, id, "hash-3"))
	account, err = repo.GetByEmail(ctx, "ana@medfit.app")
	require.NoError(t, err)
	assert.Equal(t, "hash-3", account.PasswordHash)

	assert.Error(t, repo.UpdatePassword(ctx, id+1, "x"))

	missing, err := repo.GetByEmail(ctx, "nobody@medfit.app")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestResetTokenRepository(t *testing.T) {
	conn := newTestDB(t)
	accounts := NewAccountRepository(conn, db.SQLite)
	tokens := NewResetTokenRepository(conn, db.SQLite)

	accountID, err := accounts.Create(ctx, "ana@medfit.app", "hash")
	require.NoError(t, err)

	require.NoError(t, tokens.Create(ctx, accountID, "111111", time.Now().Add(-time.Minute)))
	require.NoError(t, tokens.Create(ctx, accountID, "222222", time.Now().Add(15*time.Minute)))

	expired, err := tokens.GetValidByEmailAndToken(ctx, "ana@medfit.app", "111111")
	require.NoError(t, err)
	assert.Nil(t, expired)

	valid, err := tokens.GetValidByEmailAndToken(ctx, "ana@medfit.app", "222222")
	require.NoError(t, err)
	require.NotNil(t, valid)
	assert.Equal(t, accountID, valid.AccountID)
	assert.False(t, valid.Used)

	require.NoError(t, tokens.MarkUsed(ctx, valid.ID))
	used, err := tokens.GetValidByEmailAndToken(ctx, "ana@medfit.app", "222222")
	require.NoError(t, err)
	assert.Nil(t, used)

	require.NoError(t, tokens.DeleteByAccountID(ctx, accountID))
	var n int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM password_reset_tokens`).Scan(&n))
	assert.Zero(t, n)
}
