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

// Package ledger implements permissioned transaction admission and sequencing.
//
// A Ledger accepts opaque payloads from signed callers, checks them against
// the current size limit, the transaction version table and the key
// authorization registry, and assigns each accepted payload the next
// transaction id. Every acceptance produces exactly one TransactionRecord,
// applied to the state store together with the counter update.
//
// Admin calls (SetMaxTransactionSize, EnableKey, DisableKey) require an origin
// accepted by the configured AuthorityPolicy.
//
// All state lives in the common.StateStore handed to NewLedger. See
// store/memory and store/sqlite for implementations.
package ledger
