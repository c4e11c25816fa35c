package middleware

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/orgkit/presence/pkg/composables"
	"github.com/orgkit/presence/pkg/repo"
)

// ProvidePool makes the database pool available to every handler.
func ProvidePool(pool repo.Pool) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(composables.WithPool(r.Context(), pool)))
		})
	}
}

