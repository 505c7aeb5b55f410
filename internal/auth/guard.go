package auth

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"socloud/internal/apperr"
	"socloud/internal/models"
)

type claimsKey struct{}

// Authenticate extracts the bearer token from an Authorization header value
// and verifies it. Every failure wraps apperr.ErrUnauthenticated.
func Authenticate(tm *TokenManager, header string) (Claims, error) {
	token := ParseBearerToken(header)
	if token == "" {
		return Claims{}, fmt.Errorf("%w: missing bearer token", apperr.ErrUnauthenticated)
	}
	return tm.Verify(token)
}

// Authorize allows the request when required is empty or contains the token's role.
func Authorize(claims Claims, required ...models.Role) error {
	if len(required) == 0 || slices.Contains(required, claims.Role) {
		return nil
	}
	return fmt.Errorf("%w: role %s is not allowed", apperr.ErrForbidden, claims.Role)
}

// AuthorizeSubject allows admins and the user identified by userID.
func AuthorizeSubject(claims Claims, userID string) error {
	if claims.Role == models.RoleAdmin || claims.Subject == userID {
		return nil
	}
	return fmt.Errorf("%w: not the resource owner", apperr.ErrForbidden)
}

// ParseBearerToken returns the token of a "Bearer <token>" header, or "".
func ParseBearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// ContextWithClaims stores verified claims on ctx.
func ContextWithClaims(ctx context.Context, claims Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFromContext returns the claims stored by ContextWithClaims.
func ClaimsFromContext(ctx context.Context) (Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(Claims)
	return claims, ok
}
