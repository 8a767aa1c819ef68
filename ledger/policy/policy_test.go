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

package policy_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/txsequencer/internal/test"
	"github.com/blinklabs-io/txsequencer/ledger"
	"github.com/blinklabs-io/txsequencer/ledger/common"
	"github.com/blinklabs-io/txsequencer/ledger/policy"
	"github.com/blinklabs-io/txsequencer/store/memory"
)

type policyConstructor func(expression string) (ledger.AuthorityPolicy, error)

var constructors = map[string]policyConstructor{
	"cel": func(expression string) (ledger.AuthorityPolicy, error) {
		return policy.NewCELPolicy(expression)
	},
	"expr": func(expression string) (ledger.AuthorityPolicy, error) {
		return policy.NewExprPolicy(expression)
	},
}

func TestPolicyAuthorize(t *testing.T) {
	operator := test.SignedOrigin(0x01)
	other := test.SignedOrigin(0x02)
	operatorId, _ := operator.Identity()
	expression := fmt.Sprintf(
		`origin.kind == "root" || origin.identity == %q`,
		operatorId.String(),
	)
	testCases := []struct {
		name    string
		origin  common.Origin
		allowed bool
	}{
		{name: "root", origin: common.RootOrigin(), allowed: true},
		{name: "operator", origin: operator, allowed: true},
		{name: "other signed", origin: other, allowed: false},
		{name: "none", origin: common.NoneOrigin(), allowed: false},
	}
	for engine, newPolicy := range constructors {
		t.Run(engine, func(t *testing.T) {
			p, err := newPolicy(expression)
			require.NoError(t, err)
			for _, tc := range testCases {
				t.Run(tc.name, func(t *testing.T) {
					err := p.Authorize(tc.origin)
					if tc.allowed {
						assert.NoError(t, err)
						return
					}
					var denied policy.DeniedError
					require.ErrorAs(t, err, &denied)
					assert.Equal(t, expression, denied.Expression)
				})
			}
		})
	}
}

func TestPolicyCompileErrors(t *testing.T) {
	for engine, newPolicy := range constructors {
		t.Run(engine, func(t *testing.T) {
			_, err := newPolicy("")
			require.ErrorIs(t, err, policy.ErrEmptyExpression)
			_, err = newPolicy(`origin.kind ==`)
			require.Error(t, err)
			_, err = newPolicy(`unknown_var == "root"`)
			require.Error(t, err)
		})
	}
}

func TestCELPolicyNonBoolean(t *testing.T) {
	p, err := policy.NewCELPolicy(`origin.kind`)
	require.NoError(t, err)
	err = p.Authorize(common.RootOrigin())
	require.ErrorIs(t, err, policy.ErrNotBoolean)
}

func TestExprPolicyNonBoolean(t *testing.T) {
	_, err := policy.NewExprPolicy(`origin.kind`)
	require.Error(t, err)
}

func TestLedgerWithPolicy(t *testing.T) {
	operator := test.SignedOrigin(0x01)
	operatorId, _ := operator.Identity()
	p, err := policy.NewExprPolicy(
		fmt.Sprintf(`origin.identity == %q`, operatorId.String()),
	)
	require.NoError(t, err)
	l, err := ledger.NewLedger(memory.New(), ledger.WithAuthorityPolicy(p))
	require.NoError(t, err)

	require.NoError(t, l.SetMaxTransactionSize(operator, 4))
	size, err := l.MaxTransactionSize()
	require.NoError(t, err)
	assert.Equal(t, uint32(4), size)

	// The policy replaces root-only authority
	err = l.EnableKey(common.RootOrigin(), 1)
	require.Error(t, err)
	assert.Equal(t, common.ErrorCodeBadOrigin, common.ErrorCodeOf(err))
	var validationErr *common.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Details["reason"], "denied by policy expression")

	err = l.EnableKey(test.SignedOrigin(0x02), 1)
	assert.Equal(t, common.ErrorCodeBadOrigin, common.ErrorCodeOf(err))
}
