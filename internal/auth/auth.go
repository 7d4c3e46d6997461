// Package auth issues and verifies bearer access tokens.
package auth

import (
	"fmt"
	"strings"
	"time"

	"bug-lifecycle-tracker/config"
	"bug-lifecycle-tracker/internal/entities"

	"github.com/golang-jwt/jwt/v5"
)

// Authenticator signs HS256 tokens whose subject is the user id.
type Authenticator struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// New creates an Authenticator from auth settings.
func New(cfg config.AuthConfig) *Authenticator {
	return &Authenticator{
		secret: []byte(cfg.TokenSecret),
		ttl:    cfg.TokenTTL,
		issuer: cfg.Issuer,
		now:    time.Now,
	}
}

// Issue mints an access token for userID.
func (a *Authenticator) Issue(userID string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", fmt.Errorf("%w: user id is required", entities.ErrInvalidArgument)
	}
	now := a.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    a.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Authenticate verifies token and returns its principal. Every failure is
// reported as ErrUnauthenticated.
func (a *Authenticator) Authenticate(token string) (entities.Principal, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return a.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(a.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return entities.Principal{}, fmt.Errorf("%w: %v", entities.ErrUnauthenticated, err)
	}
	if claims.Subject == "" {
		return entities.Principal{}, fmt.Errorf("%w: token has no subject", entities.ErrUnauthenticated)
	}
	return entities.Principal{UserID: claims.Subject}, nil
}
