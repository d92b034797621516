package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"bozoruz/internal/domain"
	"bozoruz/internal/service"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

type contextKey string

const (
	UserIDKey  contextKey = "user_id"
	IsAdminKey contextKey = "is_admin"
)

// TokenValidator parses bearer tokens
type TokenValidator interface {
	Validate(tokenString string) (*service.Claims, error)
}

// SessionOwner reports the user holding the current session
type SessionOwner interface {
	CurrentUser() (*domain.User, bool)
}

// AuthMiddleware validates the bearer token and checks that the token user
// still owns the current session, so tokens stop working after logout.
func AuthMiddleware(tokens TokenValidator, sessions SessionOwner, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Debug("Missing authorization header")
				RespondWithError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			scheme, tokenString, found := strings.Cut(authHeader, " ")
			if !found || scheme != "Bearer" || tokenString == "" {
				logger.Debug("Invalid authorization header format")
				RespondWithError(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			claims, err := tokens.Validate(tokenString)
			if err != nil {
				logger.Debug("Token validation failed", zap.Error(err))
				if errors.Is(err, jwt.ErrTokenExpired) {
					RespondWithError(w, http.StatusUnauthorized, "token expired")
				} else {
					RespondWithError(w, http.StatusUnauthorized, "invalid token")
				}
				return
			}

			user, ok := sessions.CurrentUser()
			if !ok || user.ID != claims.UserID {
				logger.Debug("Token does not match the current session",
					zap.String("user_id", claims.UserID),
				)
				RespondWithError(w, http.StatusUnauthorized, "session ended")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, user.ID)
			ctx = context.WithValue(ctx, IsAdminKey, user.IsAdmin)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserID extracts user ID from request context
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok
}

// IsAdmin reports whether the authenticated user is an administrator
func IsAdmin(ctx context.Context) bool {
	admin, _ := ctx.Value(IsAdminKey).(bool)
	return admin
}
