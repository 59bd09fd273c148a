package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const (
	AccountIDKey contextKey = "account_id"
	RequestIDKey contextKey = "request_id"
)

const tokenTTL = 30 * 24 * time.Hour

func GenerateToken(accountID int64, email, secret string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"account_id": accountID,
		"email":      email,
		"exp":        now.Add(tokenTTL).Unix(),
		"iat":        now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// AccountID returns the authenticated evaluator, if any.
func AccountID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(AccountIDKey).(int64)
	return id, ok
}

func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			tokenStr := strings.TrimPrefix(header, "Bearer ")
			if tokenStr == header {
				writeError(w, http.StatusUnauthorized, "invalid authorization format")
				return
			}

			token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			}, jwt.WithExpirationRequired())
			if err != nil || !token.Valid {
				writeError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				writeError(w, http.StatusUnauthorized, "invalid token claims")
				return
			}

			accountIDFloat, ok := claims["account_id"].(float64)
			if !ok {
				writeError(w, http.StatusUnauthorized, "invalid account id in token")
				return
			}
			ctx := context.WithValue(r.Context(), AccountIDKey, int64(accountIDFloat))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
