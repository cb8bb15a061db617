// filepath: internal/services/auth/middleware.go
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"scmdash/internal/logging"
	"scmdash/internal/models"
	"scmdash/internal/services"

	"golang.org/x/crypto/bcrypt"
)

type contextKey string

const (
	accountKey contextKey = "user"
	rolesKey   contextKey = "roles"
)

// AccountFromContext returns the authenticated account, if any.
func AccountFromContext(ctx context.Context) (*models.Account, bool) {
	a, ok := ctx.Value(accountKey).(*models.Account)
	return a, ok
}

// WithAccount stores an authenticated account and its roles in ctx.
func WithAccount(ctx context.Context, account *models.Account) context.Context {
	ctx = context.WithValue(ctx, accountKey, account)
	ctx = context.WithValue(ctx, rolesKey, getAccountRoles(account))
	return services.WithActor(ctx, account.Username)
}

// writeError sends a JSON error response.
func writeError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// Middleware provides authentication and authorization middleware.
type Middleware struct {
	Accounts services.AccountService
	Token    TokenService
}

// NewMiddleware creates a new instance of Middleware.
func NewMiddleware(accounts services.AccountService, token TokenService) *Middleware {
	return &Middleware{Accounts: accounts, Token: token}
}

// AuthMiddleware accepts a JWT Bearer token or Basic Auth.
func (m *Middleware) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			w.Header().Set("WWW-Authenticate", `Basic realm="restricted", Bearer realm="restricted"`)
			writeError(w, http.StatusUnauthorized, "Authorization header required")
			return
		}

		var (
			account *models.Account
			err     error
		)
		switch {
		case strings.HasPrefix(authHeader, "Bearer "):
			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			account, err = m.Token.ValidateAccessToken(r.Context(), tokenString)
			if err != nil {
				logging.Log.Warnf("AuthMiddleware: Invalid Bearer token: %v", err)
				if strings.Contains(err.Error(), "expired") {
					writeError(w, http.StatusUnauthorized, "Token expired")
				} else {
					writeError(w, http.StatusUnauthorized, "Invalid token")
				}
				return
			}
		case strings.HasPrefix(authHeader, "Basic "):
			username, password, ok := r.BasicAuth()
			if !ok {
				writeError(w, http.StatusUnauthorized, "Invalid Basic Auth header")
				return
			}
			account, err = m.validateBasicAuth(r.Context(), username, password)
			if err != nil {
				logging.Log.Warnf("AuthMiddleware: Invalid Basic Auth: %v", err)
				writeError(w, http.StatusUnauthorized, "Authentication failed")
				return
			}
		default:
			writeError(w, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithAccount(r.Context(), account)))
	})
}

func (m *Middleware) validateBasicAuth(ctx context.Context, username, password string) (*models.Account, error) {
	account, err := m.Accounts.GetAccountByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("account '%s' not found", username)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("password comparison failed for account '%s'", username)
	}
	return account, nil
}

// RoleMiddleware checks that the account has the required role.
func (m *Middleware) RoleMiddleware(requiredRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			account, accountOk := AccountFromContext(r.Context())
			roles, rolesOk := r.Context().Value(rolesKey).([]string)

			if !accountOk || !rolesOk {
				logging.Log.Warnf("RoleMiddleware: No account or roles found in context for %s", r.URL.Path)
				writeError(w, http.StatusForbidden, "Forbidden")
				return
			}

			for _, role := range roles {
				if role == requiredRole {
					next.ServeHTTP(w, r)
					return
				}
			}

			logging.Log.Warnf("RoleMiddleware: Access DENIED for '%s'. Missing role '%s' for %s", account.Username, requiredRole, r.URL.Path)
			writeError(w, http.StatusForbidden, "Forbidden")
		})
	}
}
