package httpapi

import (
	"net/http"

	"socloud/internal/auth"
	"socloud/internal/logging"
	"socloud/internal/models"
)

// requireRoles returns a wrapper that authenticates the bearer token and then
// checks its role against roles. Verified claims are stored on the request context.
func (s *Server) requireRoles(roles ...models.Role) func(http.HandlerFunc) http.Handler {
	return func(next http.HandlerFunc) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := auth.Authenticate(s.tokens, r.Header.Get("Authorization"))
			if err != nil {
				writeError(w, r, err)
				return
			}
			if err := auth.Authorize(claims, roles...); err != nil {
				writeError(w, r, err)
				return
			}

			ctx := auth.ContextWithClaims(r.Context(), claims)
			ctx = logging.ContextWithUserID(ctx, claims.UserID())
			next(w, r.WithContext(ctx))
		})
	}
}

// claimsFrom returns the claims placed on the context by requireRoles.
func claimsFrom(r *http.Request) auth.Claims {
	claims, _ := auth.ClaimsFromContext(r.Context())
	return claims
}
