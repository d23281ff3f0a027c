// Package middleware provides HTTP middlewares for authentication, rate
// limiting and logging.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/atinyakov/MailerAdmin/internal/models"
)

type ctxKey string

const userKey ctxKey = "user"

// Authenticator resolves a bearer token to an account.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (models.User, error)
}

// BearerAuth rejects requests without a valid "Authorization: Bearer"
// header with 401. The resolved account is stored in the request
// context.
func BearerAuth(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				writeMessage(w, http.StatusUnauthorized, "No token, authorization denied")
				return
			}
			user, err := auth.Authenticate(r.Context(), strings.TrimSpace(token))
			if err != nil {
				writeMessage(w, http.StatusUnauthorized, "Token is not valid")
				return
			}
			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin lets only verified admins through. It must run after
// BearerAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		switch {
		case !ok:
			writeMessage(w, http.StatusUnauthorized, "No token, authorization denied")
		case !user.IsVerified:
			writeMessage(w, http.StatusForbidden, "Account is suspended")
		case user.Role != models.RoleAdmin:
			writeMessage(w, http.StatusForbidden, "Admin privileges required")
		default:
			next.ServeHTTP(w, r)
		}
	})
}

// UserFromContext returns the account stored by BearerAuth.
func UserFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(userKey).(models.User)
	return user, ok
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(models.MessageResponse{Message: msg})
}
