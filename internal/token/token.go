// Package token issues and verifies the self-contained access tokens used as
// bearer credentials. Tokens are HS256-signed JWTs carrying a token type,
// issue and expiry timestamps and the user ID as subject.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const TypeAccess = "access_token"

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	Type string `json:"type"`
	jwt.RegisteredClaims
}

type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret []byte, ttl time.Duration) *Issuer {
	return &Issuer{secret: secret, ttl: ttl, now: time.Now}
}

// WithClock replaces the time source used for both issuing and verifying, so
// every timestamp comparison runs against the same clock.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	i.now = now
	return i
}

func (i *Issuer) Issue(subject string) (string, error) {
	now := i.now()
	claims := Claims{
		Type: TypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(i.secret)
}

// Verify returns the claims of a well-formed, correctly signed, unexpired
// access token. Every failure mode collapses into ErrInvalidToken.
func (i *Issuer) Verify(raw string) (*Claims, error) {
	var claims Claims
	tkn, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil || !tkn.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Type != TypeAccess || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return &claims, nil
}
