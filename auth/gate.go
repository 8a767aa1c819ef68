// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package auth verifies bearer tokens in front of the ledger and turns them
// into call origins
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/blinklabs-io/txsequencer/ledger/common"
)

const (
	DefaultIssuer   = "txsequencer"
	DefaultTokenTTL = 24 * time.Hour
)

var (
	ErrMissingSecret = errors.New("token secret is required")
	ErrInvalidToken  = errors.New("invalid token")
	ErrTokenExpired  = errors.New("token is expired")
)

// tokenClaims is the JWT payload. Adm marks a token carrying administrative
// authority; otherwise Subject holds the bech32 caller identity.
type tokenClaims struct {
	jwt.RegisteredClaims
	Adm bool `json:"adm,omitempty"`
}

// Gate verifies HMAC-signed tokens and mints new ones
type Gate struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

type GateOption func(*Gate)

// WithIssuer sets the issuer written to and required of tokens
func WithIssuer(issuer string) GateOption {
	return func(g *Gate) {
		g.issuer = issuer
	}
}

// WithTokenTTL sets the lifetime of issued tokens
func WithTokenTTL(ttl time.Duration) GateOption {
	return func(g *Gate) {
		g.ttl = ttl
	}
}

// WithClock replaces the time source used for issuing and verifying tokens
func WithClock(now func() time.Time) GateOption {
	return func(g *Gate) {
		g.now = now
	}
}

func NewGate(secret []byte, opts ...GateOption) (*Gate, error) {
	if len(secret) == 0 {
		return nil, ErrMissingSecret
	}
	g := &Gate{
		secret: append([]byte(nil), secret...),
		issuer: DefaultIssuer,
		ttl:    DefaultTokenTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	if g.now == nil {
		g.now = time.Now
	}
	return g, nil
}

// Origin verifies token and returns the origin it asserts. An empty token
// yields the none origin so the ledger can reject the call itself.
func (g *Gate) Origin(token string) (common.Origin, error) {
	token = strings.TrimSpace(token)
	token = strings.TrimPrefix(token, "Bearer ")
	if token == "" {
		return common.NoneOrigin(), nil
	}
	var claims tokenClaims
	_, err := jwt.ParseWithClaims(
		token,
		&claims,
		func(*jwt.Token) (any, error) {
			return g.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(g.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(g.now),
	)
	if err != nil {
		return common.Origin{}, mapJWTError(err)
	}
	if claims.Adm {
		return common.RootOrigin(), nil
	}
	if claims.Subject == "" {
		return common.Origin{}, fmt.Errorf("%w: subject is required", ErrInvalidToken)
	}
	identity, err := common.NewIdentityFromString(claims.Subject)
	if err != nil {
		return common.Origin{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return common.SignedOrigin(identity), nil
}

// Issue mints a token for identity. An admin token asserts root authority
// and identity may be empty.
func (g *Gate) Issue(identity common.Identity, admin bool) (string, error) {
	if !admin && len(identity) == 0 {
		return "", errors.New("identity is required for non-admin tokens")
	}
	now := g.now()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    g.issuer,
			Subject:   identity.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(g.ttl)),
			ID:        uuid.NewString(),
		},
		Adm: admin,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

func mapJWTError(err error) error {
	if errors.Is(err, jwt.ErrTokenExpired) {
		return ErrTokenExpired
	}
	return fmt.Errorf("%w: %w", ErrInvalidToken, err)
}
