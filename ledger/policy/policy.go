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

// Package policy provides expression-based administrative authority policies.
//
// Expressions see a single variable, origin, with two string fields:
//   - origin.kind: "none", "signed" or "root"
//   - origin.identity: the bech32 caller identity, or "" when there is none
//
// An expression must evaluate to a boolean. Anything other than true denies
// authority.
package policy

import (
	"errors"
	"fmt"

	"github.com/blinklabs-io/txsequencer/ledger/common"
)

const (
	VarOrigin        = "origin"
	FieldKind        = "kind"
	FieldIdentity    = "identity"
	errDeniedMessage = "denied by policy expression"
)

var (
	ErrEmptyExpression = errors.New("expression must not be empty")
	ErrNotBoolean      = errors.New("expression result is not a boolean")
)

// originFields returns the fields exposed to expressions for an origin
func originFields(origin common.Origin) map[string]string {
	ret := map[string]string{
		FieldKind:     origin.Kind().String(),
		FieldIdentity: "",
	}
	if identity, ok := origin.Identity(); ok {
		ret[FieldIdentity] = identity.String()
	}
	return ret
}

// DeniedError is returned when an expression evaluates to false
type DeniedError struct {
	Expression string
}

func (e DeniedError) Error() string {
	return fmt.Sprintf("%s: %s", errDeniedMessage, e.Expression)
}

func resultAsBool(expression string, result any) error {
	allowed, ok := result.(bool)
	if !ok {
		return fmt.Errorf("%w: %T", ErrNotBoolean, result)
	}
	if !allowed {
		return DeniedError{Expression: expression}
	}
	return nil
}
