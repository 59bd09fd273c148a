package handler

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
	"github.com/yusufkecer/medfit-backend/internal/domain"
	"github.com/yusufkecer/medfit-backend/internal/middleware"
	"github.com/yusufkecer/medfit-backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const resetTokenTTL = 15 * time.Minute

// Mailer delivers password reset codes.
type Mailer interface {
	Enabled() bool
	SendPasswordReset(ctx context.Context, to, token string) error
}

type AuthHandler struct {
	jwtSecret      string
	repo           *repository.AccountRepository
	resetTokenRepo *repository.ResetTokenRepository
	mailer         Mailer
}

func NewAuthHandler(
	jwtSecret string,
	repo *repository.AccountRepository,
	resetTokenRepo *repository.ResetTokenRepository,
	mailer Mailer,
) *AuthHandler {
	return &AuthHandler{
		jwtSecret:      jwtSecret,
		repo:           repo,
		resetTokenRepo: resetTokenRepo,
		mailer:         mailer,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.Credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}
	if !validEmail(email) {
		writeError(w, http.StatusBadRequest, "invalid email format")
		return
	}
	if len(req.Password) < 6 {
		writeError(w, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	accountID, err := h.repo.Create(r.Context(), email, string(passwordHash))
	if err != nil {
		if isDuplicateKey(err) {
			writeError(w, http.StatusConflict, "email already exists")
			return
		}
		log.Error().Err(err).Msg("failed to create account")
		writeError(w, http.StatusInternalServerError, "failed to create account")
		return
	}

	token, err := middleware.GenerateToken(accountID, email, h.jwtSecret)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	writeJSON(w, http.StatusCreated, domain.Session{Token: token, AccountID: accountID, Email: email})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.Credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}
	if !validEmail(email) {
		writeError(w, http.StatusBadRequest, "invalid email format")
		return
	}

	account, err := h.repo.GetByEmail(r.Context(), email)
	if err != nil {
		log.Error().Err(err).Msg("failed to look up account")
		writeError(w, http.StatusInternalServerError, "failed to login")
		return
	}
	if account == nil {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	token, err := middleware.GenerateToken(account.ID, account.Email, h.jwtSecret)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	writeJSON(w, http.StatusOK, domain.Session{Token: token, AccountID: account.ID, Email: account.Email})
}

// ForgotPassword always answers 200 so that callers cannot test for
// registered addresses. The code is generated and mailed in the background.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	const message = "if the email exists, a code has been sent"

	var req domain.ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusOK, map[string]string{"message": message})
		return
	}

	email := normalizeEmail(req.Email)
	go h.sendResetCode(email)

	writeJSON(w, http.StatusOK, map[string]string{"message": message})
}

func (h *AuthHandler) sendResetCode(email string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	logger := log.With().Str("component", "forgot-password").Logger()

	account, err := h.repo.GetByEmail(ctx, email)
	if err != nil {
		logger.Error().Err(err).Msg("db error looking up account")
		return
	}
	if account == nil {
		return
	}
	if !h.mailer.Enabled() {
		logger.Warn().Int64("account_id", account.ID).Msg("email delivery disabled, reset code not sent")
		return
	}

	if err := h.resetTokenRepo.DeleteByAccountID(ctx, account.ID); err != nil {
		logger.Error().Err(err).Int64("account_id", account.ID).Msg("failed to delete old tokens")
	}

	otp, err := generateOTP()
	if err != nil {
		logger.Error().Err(err).Msg("failed to generate code")
		return
	}

	if err := h.resetTokenRepo.Create(ctx, account.ID, otp, time.Now().Add(resetTokenTTL)); err != nil {
		logger.Error().Err(err).Int64("account_id", account.ID).Msg("failed to save reset token")
		return
	}

	if err := h.mailer.SendPasswordReset(ctx, email, otp); err != nil {
		logger.Error().Err(err).Int64("account_id", account.ID).Msg("failed to send reset email")
		return
	}
	logger.Info().Int64("account_id", account.ID).Msg("reset email sent")
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req domain.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	email := normalizeEmail(req.Email)
	if email == "" || req.Code == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email, token and password are required")
		return
	}
	if len(req.Password) < 6 {
		writeError(w, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}

	resetToken, err := h.resetTokenRepo.GetValidByEmailAndToken(r.Context(), email, req.Code)
	if err != nil {
		log.Error().Err(err).Msg("failed to verify reset token")
		writeError(w, http.StatusInternalServerError, "failed to verify token")
		return
	}
	if resetToken == nil || resetToken.Expired(time.Now()) {
		writeError(w, http.StatusUnauthorized, "invalid or expired token")
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	if err := h.repo.UpdatePassword(r.Context(), resetToken.AccountID, string(passwordHash)); err != nil {
		log.Error().Err(err).Msg("failed to update password")
		writeError(w, http.StatusInternalServerError, "failed to update password")
		return
	}

	if err := h.resetTokenRepo.MarkUsed(r.Context(), resetToken.ID); err != nil {
		log.Error().Err(err).Int64("token_id", resetToken.ID).Msg("failed to mark reset token as used")
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "password reset successful"})
}

func normalizeEmail(raw string) string {
	return strings.TrimSpace(strings.ToLower(raw))
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && strings.Contains(email[at:], ".")
}

// isDuplicateKey recognizes unique violations from every supported driver.
func isDuplicateKey(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(sqliteErr.Error(), "UNIQUE")
	}
	return false
}

func generateOTP() (string, error) {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	n := int(b[0])<<16 | int(b[1])<<8 | int(b[2])
	return fmt.Sprintf("%06d", n%1000000), nil
}
