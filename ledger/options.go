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
	"log/slog"
)

// LedgerOption is a functional option for configuring a Ledger
type LedgerOption func(*Ledger)

// WithLogger specifies the logger to use. Defaults to slog.Default()
func WithLogger(logger *slog.Logger) LedgerOption {
	return func(l *Ledger) {
		l.logger = logger
	}
}

// WithAuthorityPolicy replaces the policy that guards admin calls.
// A nil policy is ignored. Defaults to RootAuthority.
func WithAuthorityPolicy(policy AuthorityPolicy) LedgerOption {
	return func(l *Ledger) {
		if policy != nil {
			l.authority = policy
		}
	}
}

// WithEventHandler registers a handler that receives every committed
// transaction record. Handlers run in registration order on the calling
// goroutine.
func WithEventHandler(handler EventHandler) LedgerOption {
	return func(l *Ledger) {
		if handler != nil {
			l.eventHandlers = append(l.eventHandlers, handler)
		}
	}
}

// WithVersion registers an additional transaction version, or replaces the
// rules of an existing one
func WithVersion(version Version) LedgerOption {
	return func(l *Ledger) {
		l.versions[version.Id] = version
	}
}
