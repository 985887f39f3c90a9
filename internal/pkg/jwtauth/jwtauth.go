package jwtauth

import (
	"context"
	"errors"
	"fmt"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

var ErrUnauthorized = errors.New("unauthorized")

// Claims are the identity claims read from a bearer token.
type Claims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// DisplayName prefers the name claim, then email, then subject.
func (c *Claims) DisplayName() string {
	switch {
	case c.Name != "":
		return c.Name
	case c.Email != "":
		return c.Email
	default:
		return c.Subject
	}
}

type Verifier interface {
	Verify(token string) (*Claims, error)
}

type verifier struct {
	keyfunc jwt.Keyfunc
	methods []string
}

// NewHMACVerifier verifies HS256 tokens signed with secret.
func NewHMACVerifier(secret string) (Verifier, error) {
	if secret == "" {
		return nil, errors.New("jwt secret cannot be empty")
	}
	key := []byte(secret)
	return &verifier{
		keyfunc: func(*jwt.Token) (any, error) { return key, nil },
		methods: []string{"HS256"},
	}, nil
}

// NewJWKSVerifier verifies RS256/ES256 tokens against keys fetched from jwksURL.
// Keys are cached and refreshed in the background until ctx is done.
func NewJWKSVerifier(ctx context.Context, jwksURL string) (Verifier, error) {
	if jwksURL == "" {
		return nil, errors.New("jwks url cannot be empty")
	}
	k, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("create jwks client: %w", err)
	}
	return &verifier{
		keyfunc: k.Keyfunc,
		methods: []string{"RS256", "ES256"},
	}, nil
}

func (v *verifier) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, v.keyfunc, jwt.WithValidMethods(v.methods), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return nil, ErrUnauthorized
	}
	if claims.Subject == "" {
		return nil, ErrUnauthorized
	}
	return claims, nil
}
