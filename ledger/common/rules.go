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

package common

import (
	"errors"
	"fmt"
)

// TransactionValidationRuleFunc represents a function that validates a
// transaction against a specific admission rule
type TransactionValidationRuleFunc func(
	tx *Transaction,
	ledgerState LedgerState,
) error

// CommonValidationRules run for every transaction before its version is resolved
var CommonValidationRules = []TransactionValidationRuleFunc{
	ValidateTransactionNotEmpty,
	ValidateMaxTransactionSize,
}

// VerifyTransaction runs the provided validation rules in order and stops at
// the first failure. Rejections are wrapped into a ValidationError; failures
// reading the ledger state are returned as plain wrapped errors.
func VerifyTransaction(
	tx *Transaction,
	ledgerState LedgerState,
	validationRules []TransactionValidationRuleFunc,
) error {
	if tx == nil {
		return errors.New("transaction is nil")
	}
	for i, rule := range validationRules {
		err := rule(tx, ledgerState)
		if err == nil {
			continue
		}
		var coded CodedError
		if !errors.As(err, &coded) {
			return fmt.Errorf("validation rule %d: %w", i, err)
		}
		return NewValidationError(
			ValidationErrorTypeTransaction,
			"transaction validation failed",
			map[string]any{
				"rule_index": i,
				"version":    tx.Version,
				"key_id":     tx.KeyId,
				"size":       tx.Size(),
			},
			err,
		)
	}
	return nil
}

// ValidateTransactionNotEmpty ensures that the payload is not empty
func ValidateTransactionNotEmpty(tx *Transaction, ls LedgerState) error {
	if tx.Size() > 0 {
		return nil
	}
	return EmptyTransactionError{}
}

// ValidateMaxTransactionSize ensures that the payload does not exceed the
// current size limit. A payload exactly at the limit is accepted.
func ValidateMaxTransactionSize(tx *Transaction, ls LedgerState) error {
	maxSize, err := ls.MaxTransactionSize()
	if err != nil {
		return err
	}
	if uint64(tx.Size()) <= uint64(maxSize) {
		return nil
	}
	return TransactionOverflowError{
		Size: tx.Size(),
		Max:  maxSize,
	}
}

// ValidateKeyAuthorization ensures that the transaction key id is allowed
func ValidateKeyAuthorization(tx *Transaction, ls LedgerState) error {
	enabled, present, err := ls.KeyStatus(tx.KeyId)
	if err != nil {
		return err
	}
	if KeyAllowed(tx.KeyId, enabled, present) {
		return nil
	}
	return InvalidKeyIdError{
		KeyId: tx.KeyId,
	}
}

// KeyAllowed applies the default for keys without a registry entry: the null
// key is allowed, every other key is denied
func KeyAllowed(keyId uint32, enabled bool, present bool) bool {
	if present {
		return enabled
	}
	return keyId == NullKeyId
}
