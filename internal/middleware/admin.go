package middleware

import (
	"net/http"

	"github.com/userfolio/accounts-api/internal/auth"
	"github.com/userfolio/accounts-api/internal/handler"
)

// Admin gates a route on the admin claim of an already-validated token.
// It must run after Auth, which puts the claims on the context.
func Admin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.ClaimsFromContext(r.Context())
		if !ok {
			handler.RespondAppError(w, handler.ErrMissingToken)
			return
		}
		if !claims.Admin {
			handler.RespondAppError(w, handler.ErrAdminRequired)
			return
		}
		next.ServeHTTP(w, r)
	})
}
