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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/blinklabs-io/txsequencer/ledger/common"
)

// Compile-time check that Ledger can be handed to validation rules
var _ common.LedgerState = (*Ledger)(nil)

// EventHandler receives every transaction record after it has been committed
type EventHandler func(common.TransactionRecord)

// Ledger admits and sequences transactions against a host state store.
//
// A Ledger performs no locking of its own. The host must not run two calls
// against the same store concurrently; pipeline.Dispatcher provides that
// guarantee.
type Ledger struct {
	store         common.StateStore
	keys          *KeyRegistry
	logger        *slog.Logger
	authority     AuthorityPolicy
	versions      map[uint32]Version
	eventHandlers []EventHandler
}

// NewLedger returns a Ledger backed by the provided store
func NewLedger(store common.StateStore, opts ...LedgerOption) (*Ledger, error) {
	if store == nil {
		return nil, errors.New("state store is required")
	}
	l := &Ledger{
		store:     store,
		keys:      newKeyRegistry(store),
		authority: RootAuthority{},
		versions:  defaultVersions(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	return l, nil
}

// Keys returns the key authorization registry
func (l *Ledger) Keys() *KeyRegistry {
	return l.keys
}

// MaxTransactionSize returns the current size limit
func (l *Ledger) MaxTransactionSize() (uint32, error) {
	value, found, err := l.store.Get(common.MaxTransactionSizeKey)
	if err != nil {
		return 0, fmt.Errorf("read max transaction size: %w", err)
	}
	if !found {
		return common.DefaultMaxTransactionSize, nil
	}
	size, err := common.DecodeUint32Value(value)
	if err != nil {
		return 0, fmt.Errorf("read max transaction size: %w", err)
	}
	return size, nil
}

// LastTransactionId returns the id of the most recently admitted transaction,
// or 0 when none has been admitted
func (l *Ledger) LastTransactionId() (uint64, error) {
	value, found, err := l.store.Get(common.LastTransactionIdKey)
	if err != nil {
		return 0, fmt.Errorf("read last transaction id: %w", err)
	}
	if !found {
		return 0, nil
	}
	txId, err := common.DecodeUint64Value(value)
	if err != nil {
		return 0, fmt.Errorf("read last transaction id: %w", err)
	}
	return txId, nil
}

// KeyStatus returns the stored registry flag for keyId and whether it exists
func (l *Ledger) KeyStatus(keyId uint32) (bool, bool, error) {
	return l.keys.Get(keyId)
}

// KeyAllowed reports whether a transaction using keyId would pass key authorization
func (l *Ledger) KeyAllowed(keyId uint32) (bool, error) {
	enabled, present, err := l.keys.Get(keyId)
	if err != nil {
		return false, err
	}
	return common.KeyAllowed(keyId, enabled, present), nil
}

// Transact validates a payload from a signed caller and, if it is accepted,
// assigns it the next transaction id
func (l *Ledger) Transact(
	origin common.Origin,
	version uint32,
	keyId uint32,
	data []byte,
) (common.TransactionRecord, error) {
	return l.TransactWith(
		origin,
		&common.Transaction{
			Version: version,
			KeyId:   keyId,
			Data:    data,
		},
	)
}

// TransactWith is Transact for an already constructed transaction
func (l *Ledger) TransactWith(
	origin common.Origin,
	tx *common.Transaction,
) (common.TransactionRecord, error) {
	identity, ok := origin.Identity()
	if !ok {
		return common.TransactionRecord{}, common.NewAuthorizationError(
			CallNameTransact,
			common.UnauthenticatedError{},
		)
	}
	if err := l.validate(tx); err != nil {
		l.logger.Debug(
			"transaction rejected",
			"component", "ledger",
			"identity", identity.String(),
			"error", err,
		)
		return common.TransactionRecord{}, err
	}
	lastTxId, err := l.LastTransactionId()
	if err != nil {
		return common.TransactionRecord{}, err
	}
	if lastTxId == math.MaxUint64 {
		return common.TransactionRecord{}, errors.New("transaction id space exhausted")
	}
	record := common.TransactionRecord{
		Identity: append(common.Identity(nil), identity...),
		TxId:     lastTxId + 1,
		Version:  tx.Version,
		KeyId:    tx.KeyId,
		Data:     append([]byte(nil), tx.Data...),
	}
	txIdValue, err := common.EncodeUint64Value(record.TxId)
	if err != nil {
		return common.TransactionRecord{}, err
	}
	delta := common.StateDelta{
		Writes: []common.StateWrite{
			{Key: common.LastTransactionIdKey, Value: txIdValue},
		},
		Events: []common.TransactionRecord{record},
	}
	if err := l.store.Apply(delta); err != nil {
		return common.TransactionRecord{}, fmt.Errorf(
			"apply transaction %d: %w",
			record.TxId,
			err,
		)
	}
	if l.logger.Enabled(context.Background(), slog.LevelDebug) {
		l.logger.Debug(
			"transaction accepted",
			"component", "ledger",
			"tx_id", record.TxId,
			"identity", identity.String(),
			"version", record.Version,
			"key_id", record.KeyId,
			"size", len(record.Data),
			"hash", tx.Hash().String(),
		)
	}
	for _, handler := range l.eventHandlers {
		handler(record)
	}
	return record, nil
}

// validate runs the common rules, resolves the version and then runs the
// version's own rules
func (l *Ledger) validate(tx *common.Transaction) error {
	if err := common.VerifyTransaction(tx, l, common.CommonValidationRules); err != nil {
		return err
	}
	version, ok := l.versions[tx.Version]
	if !ok {
		return common.NewValidationError(
			common.ValidationErrorTypeTransaction,
			"unsupported transaction version",
			map[string]any{"version": tx.Version},
			common.InvalidTransactionVersionError{Version: tx.Version},
		)
	}
	return common.VerifyTransaction(tx, l, version.ValidationRules)
}
