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

package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/txsequencer/auth"
	"github.com/blinklabs-io/txsequencer/internal/test"
	"github.com/blinklabs-io/txsequencer/ledger/common"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestGate(t *testing.T, opts ...auth.GateOption) *auth.Gate {
	t.Helper()
	g, err := auth.NewGate(testSecret, opts...)
	require.NoError(t, err)
	return g
}

func TestNewGateRequiresSecret(t *testing.T) {
	_, err := auth.NewGate(nil)
	require.ErrorIs(t, err, auth.ErrMissingSecret)
}

func TestGateSignedToken(t *testing.T) {
	g := newTestGate(t)
	identity := test.Identity(0x42)
	token, err := g.Issue(identity, false)
	require.NoError(t, err)

	origin, err := g.Origin(token)
	require.NoError(t, err)
	assert.Equal(t, common.OriginKindSigned, origin.Kind())
	got, ok := origin.Identity()
	require.True(t, ok)
	assert.True(t, identity.Equal(got))

	origin, err = g.Origin("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, common.OriginKindSigned, origin.Kind())
}

func TestGateAdminToken(t *testing.T) {
	g := newTestGate(t)
	token, err := g.Issue(nil, true)
	require.NoError(t, err)
	origin, err := g.Origin(token)
	require.NoError(t, err)
	assert.True(t, origin.IsRoot())
	_, ok := origin.Identity()
	assert.False(t, ok)
}

func TestGateEmptyToken(t *testing.T) {
	g := newTestGate(t)
	origin, err := g.Origin("  ")
	require.NoError(t, err)
	assert.Equal(t, common.OriginKindNone, origin.Kind())
}

func TestGateIssueRequiresIdentity(t *testing.T) {
	g := newTestGate(t)
	_, err := g.Issue(nil, false)
	require.Error(t, err)
}

func TestGateRejections(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	clock := func() time.Time { return now }
	g := newTestGate(t, auth.WithClock(clock))
	identity := test.Identity(0x01)

	otherSecret, err := auth.NewGate([]byte("another secret"), auth.WithClock(clock))
	require.NoError(t, err)
	forged, err := otherSecret.Issue(identity, true)
	require.NoError(t, err)

	otherIssuer := newTestGate(t, auth.WithClock(clock), auth.WithIssuer("someone-else"))
	wrongIssuer, err := otherIssuer.Issue(identity, false)
	require.NoError(t, err)

	expiredGate := newTestGate(
		t,
		auth.WithClock(func() time.Time { return now.Add(-2 * time.Hour) }),
		auth.WithTokenTTL(time.Hour),
	)
	expired, err := expiredGate.Issue(identity, false)
	require.NoError(t, err)

	badSubject, err := jwt.NewWithClaims(
		jwt.SigningMethodHS256,
		jwt.RegisteredClaims{
			Issuer:    auth.DefaultIssuer,
			Subject:   "not-bech32",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	).SignedString(testSecret)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(
		jwt.SigningMethodHS256,
		jwt.RegisteredClaims{
			Issuer:  auth.DefaultIssuer,
			Subject: identity.String(),
		},
	).SignedString(testSecret)
	require.NoError(t, err)

	testCases := []struct {
		name     string
		token    string
		expected error
	}{
		{name: "garbage", token: "not.a.token", expected: auth.ErrInvalidToken},
		{name: "wrong secret", token: forged, expected: auth.ErrInvalidToken},
		{name: "wrong issuer", token: wrongIssuer, expected: auth.ErrInvalidToken},
		{name: "expired", token: expired, expected: auth.ErrTokenExpired},
		{name: "bad subject", token: badSubject, expected: auth.ErrInvalidToken},
		{name: "no expiry", token: noExpiry, expected: auth.ErrInvalidToken},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := g.Origin(tc.token)
			require.ErrorIs(t, err, tc.expected)
		})
	}
}
