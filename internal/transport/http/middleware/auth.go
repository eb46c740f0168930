package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type contextKey string

// UserIDKey carries the authenticated user's id through the request context.
const UserIDKey contextKey = "user_id"

// Auth verifies the Authorization bearer token and stores its subject user id
// in the request context for the protected handlers.
func Auth(jwtSecret string, log *zap.Logger) func(http.Handler) http.Handler {
	secret := []byte(jwtSecret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || raw == "" {
				unauthorized(w, "Missing bearer token")
				return
			}

			userID, err := subjectID(raw, secret)
			if err != nil {
				log.Warn("rejected token", zap.Error(err))
				unauthorized(w, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserID extracts the authenticated user id from the request context.
func GetUserID(ctx context.Context) uuid.UUID {
	return ctx.Value(UserIDKey).(uuid.UUID)
}

func subjectID(tokenStr string, secret []byte) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenStr, func(*jwt.Token) (any, error) {
		return secret, nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	sub, err := token.Claims.GetSubject()
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(sub)
}

// unauthorized writes the handlers' error envelope; the helper lives here
// because the handler package imports this one.
func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"code":    "UNAUTHORIZED",
			"message": message,
		},
	})
}
