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

// Package common provides the types, interfaces, and validation rules shared by
// the transaction sequencer.
//
// # Key Files by Purpose
//
// Interfaces (start here to understand the API):
//   - state.go: StateStore, StateDelta, LedgerState and storage key layout
//   - tx.go: Transaction and TransactionRecord
//   - origin.go: Origin, the authentication result supplied by the host
//
// Validation:
//   - rules.go: TransactionValidationRuleFunc signature and the shared rules
//   - errors.go: Rejection error types and ErrorCode
//   - verify_config.go: ValidationError
//
// # Common Patterns
//
// Validation rules have this signature:
//
//	func Validate{RuleName}(tx *Transaction, ls LedgerState) error
//
// A rule returns one of the typed errors in errors.go to reject a
// transaction. Any other error is treated as a failure to read state.
//
// # Testing
//
// Use MockLedgerState from internal/test/ledger for testing validation rules.
package common
