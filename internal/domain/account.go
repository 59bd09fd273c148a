package domain

import "time"

// Account is an evaluator login. Clients and assessments are shared between
// all accounts.
type Account struct {
	ID           int64
	Email        string
	PasswordHash string
}

// Credentials is the body of the register and login endpoints.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is returned once credentials are accepted.
type Session struct {
	Token     string `json:"token"`
	AccountID int64  `json:"account_id"`
	Email     string `json:"email"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Email    string `json:"email"`
	Code     string `json:"token"`
	Password string `json:"password"`
}

// ResetCode is a mailed one-time code that authorizes a password change.
type ResetCode struct {
	ID        int64
	AccountID int64
	Code      string
	ExpiresAt time.Time
	Used      bool
}

// Expired reports whether the code can no longer be redeemed at now.
func (c ResetCode) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}
