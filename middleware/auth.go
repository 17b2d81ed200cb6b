package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Marling1212/ntu-sports-sub001/models"
	"github.com/Marling1212/ntu-sports-sub001/services"
)

type contextKey string

const claimsContextKey contextKey = "claims"

// Authenticate validates the bearer token and stores its claims in the
// request context. Requests without a valid token are rejected.
func Authenticate(auth services.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				http.Error(w, "missing or malformed authorization header", http.StatusUnauthorized)
				return
			}
			claims, err := auth.ParseToken(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole restricts a route to the listed roles. It must run after
// Authenticate.
func RequireRole(roles ...models.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, err := GetUserRoleFromContext(r.Context())
			if err != nil {
				http.Error(w, "authentication required", http.StatusUnauthorized)
				return
			}
			for _, allowed := range roles {
				if role == allowed {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, "insufficient permissions", http.StatusForbidden)
		})
	}
}

func claimsFromContext(ctx context.Context) (*services.Claims, error) {
	claims, ok := ctx.Value(claimsContextKey).(*services.Claims)
	if !ok || claims == nil {
		return nil, errors.New("user claims not found in context")
	}
	return claims, nil
}

func GetUserIDFromContext(ctx context.Context) (int, error) {
	claims, err := claimsFromContext(ctx)
	if err != nil {
		return 0, err
	}
	if claims.UserID <= 0 {
		return 0, errors.New("invalid user id in token claims")
	}
	return claims.UserID, nil
}

func GetUserRoleFromContext(ctx context.Context) (models.UserRole, error) {
	claims, err := claimsFromContext(ctx)
	if err != nil {
		return "", err
	}
	switch claims.Role {
	case models.RoleOrganizer, models.RoleViewer:
		return claims.Role, nil
	default:
		return "", errors.New("invalid role in token claims")
	}
}
