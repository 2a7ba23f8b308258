// Package session issues and validates stateless, signed session tokens.
//
// Tokens are HS256 JWTs carrying only the account id (sub) and expiry (exp).
// Nothing about a token is persisted; validity is a function of the token
// bytes, the process secret and the current time.
package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/and161185/passvault/internal/errs"
)

// TTL is the fixed lifetime of a session token. There is no refresh.
const TTL = time.Hour

// Token is a signed session token and its expiry.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// Authority signs and verifies session tokens with a symmetric secret.
type Authority struct {
	signKey []byte
	ttl     time.Duration
	now     func() time.Time
}

// Option configures an Authority.
type Option func(*Authority)

// WithClock overrides the time source used for issuing and validating.
func WithClock(now func() time.Time) Option {
	return func(a *Authority) { a.now = now }
}

// NewAuthority constructs an Authority. signKey must not be empty.
func NewAuthority(signKey []byte, opts ...Option) (*Authority, error) {
	if len(signKey) == 0 {
		return nil, errors.New("session: empty signing key")
	}
	a := &Authority{
		signKey: append([]byte(nil), signKey...),
		ttl:     TTL,
		now:     time.Now,
	}
	for _, o := range opts {
		o(a)
	}
	return a, nil
}

// Issue creates a signed HS256 JWT for the given account.
func (a *Authority) Issue(accountID uuid.UUID) (Token, error) {
	now := a.now()
	exp := now.Add(a.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   accountID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(a.signKey)
	if err != nil {
		return Token{}, fmt.Errorf("%w: sign token: %v", errs.ErrInternal, err)
	}
	return Token{Value: signed, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Validate verifies the signature and expiry of token and returns the account id.
//
// The signature is checked before the claims, so a forged token is always
// ErrInvalidToken even if it is also expired.
func (a *Authority) Validate(token string) (uuid.UUID, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return uuid.Nil, errs.ErrMissingToken
	}

	var claims jwt.RegisteredClaims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	_, err := parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return a.signKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, errs.ErrExpiredToken
		}
		return uuid.Nil, errs.ErrInvalidToken
	}

	id, err := uuid.FromString(claims.Subject)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, errs.ErrInvalidToken
	}
	return id, nil
}
