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

package ledger

import (
	"errors"

	"github.com/blinklabs-io/txsequencer/ledger/common"
)

// AuthorityPolicy decides whether an origin holds administrative authority
type AuthorityPolicy interface {
	Authorize(origin common.Origin) error
}

// AuthorityPolicyFunc adapts a function to AuthorityPolicy
type AuthorityPolicyFunc func(origin common.Origin) error

func (f AuthorityPolicyFunc) Authorize(origin common.Origin) error {
	return f(origin)
}

var errNotRoot = errors.New("origin is not root")

// RootAuthority grants administrative authority to the root origin only
type RootAuthority struct{}

func (RootAuthority) Authorize(origin common.Origin) error {
	if origin.IsRoot() {
		return nil
	}
	return errNotRoot
}
