package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"

	"github.com/orgkit/presence/pkg/composables"
	"github.com/orgkit/presence/pkg/httpapi"
	"github.com/orgkit/presence/pkg/types"
)

// IdentityClaims is the token payload the server trusts. Issuance is
// external; the server only verifies and converts it into a typed identity
// once, at the boundary.
type IdentityClaims struct {
	EmployeeID  uint `json:"employee_id"`
	IsAdmin     bool `json:"is_admin"`
	IsCommander bool `json:"is_commander"`
	jwt.RegisteredClaims
}

func ParseIdentity(tokenString, secret string) (types.Identity, error) {
	claims := &IdentityClaims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (interface{}, error) { return []byte(secret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return types.Identity{}, err
	}
	return types.Identity{
		EmployeeID:  claims.EmployeeID,
		IsAdmin:     claims.IsAdmin,
		IsCommander: claims.IsCommander,
	}, nil
}

// Authenticate resolves the Bearer token into an Identity carried in the
// request context. Requests without a valid token are rejected.
func Authenticate(secret string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				_ = httpapi.WriteError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "missing bearer token", nil)
				return
			}
			identity, err := ParseIdentity(strings.TrimPrefix(header, "Bearer "), secret)
			if err != nil {
				_ = httpapi.WriteError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "invalid token", nil)
				return
			}
			next.ServeHTTP(w, r.WithContext(composables.WithIdentity(r.Context(), identity)))
		})
	}
}

// RequireAdmin rejects requests whose identity lacks the admin flag.
func RequireAdmin() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := composables.UseIdentity(r.Context())
			if err != nil || !identity.IsAdmin {
				_ = httpapi.WriteError(w, http.StatusForbidden, "ADMIN_REQUIRED", "admin rights required", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
