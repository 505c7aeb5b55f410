// Package auth issues and verifies bearer tokens, hashes passwords and makes
// role-based authorization decisions.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"socloud/internal/apperr"
	"socloud/internal/models"
)

// DefaultTokenTTL is the validity window of issued tokens.
const DefaultTokenTTL = 365 * 24 * time.Hour

var (
	// ErrMalformedToken indicates a token that cannot be decoded.
	ErrMalformedToken = fmt.Errorf("%w: malformed token", apperr.ErrUnauthenticated)
	// ErrInvalidToken indicates a failed signature or unusable claims.
	ErrInvalidToken = fmt.Errorf("%w: invalid token", apperr.ErrUnauthenticated)
	// ErrExpiredToken indicates a token past its validity window.
	ErrExpiredToken = fmt.Errorf("%w: token expired", apperr.ErrUnauthenticated)
)

// Claims are embedded in every bearer token. Subject carries the user ID.
type Claims struct {
	jwt.RegisteredClaims
	Email      string      `json:"email"`
	Role       models.Role `json:"role"`
	PictureURL string      `json:"picture,omitempty"`
}

// UserID returns the subject of the token.
func (c Claims) UserID() string {
	return c.Subject
}

// ClaimsFor builds the claim set describing u.
func ClaimsFor(u models.User) Claims {
	c := Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: u.ID},
		Email:            u.Email,
		Role:             u.Role,
	}
	if u.Picture != nil {
		c.PictureURL = u.Picture.URL
	}
	return c
}

// TokenManager signs and verifies HS256 tokens with a server-held secret.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager returns a TokenManager. A non-positive ttl selects DefaultTokenTTL.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs claims, stamping issued-at and expiry from the validity window.
func (tm *TokenManager) Issue(claims Claims) (string, error) {
	if len(tm.secret) == 0 {
		return "", fmt.Errorf("%w: token signing secret is not set", apperr.ErrConfig)
	}

	now := tm.now().UTC()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(tm.ttl))

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of token and returns its claims unchanged.
func (tm *TokenManager) Verify(token string) (Claims, error) {
	if len(tm.secret) == 0 {
		return Claims{}, fmt.Errorf("%w: token signing secret is not set", apperr.ErrConfig)
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return tm.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tm.now),
	)

	switch {
	case err == nil && parsed.Valid:
	case errors.Is(err, jwt.ErrTokenMalformed):
		return Claims{}, ErrMalformedToken
	case errors.Is(err, jwt.ErrTokenExpired):
		return Claims{}, ErrExpiredToken
	default:
		return Claims{}, ErrInvalidToken
	}

	if claims.Subject == "" || !claims.Role.Valid() {
		return Claims{}, ErrInvalidToken
	}
	return *claims, nil
}
