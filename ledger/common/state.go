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

// Related files:
//   - tx.go: Transaction and TransactionRecord carried by StateDelta
//   - rules.go: Validation rules that read LedgerState
//   - store/memory, store/sqlite: StateStore implementations

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/blinklabs-io/txsequencer/cbor"
)

const (
	// StoragePrefix namespaces every state cell owned by the sequencer
	StoragePrefix = "TxSequencer"

	StorageItemMaxTransactionSize = "MaxTransactionSize"
	StorageItemLastTransactionId  = "LastTransactionId"
	StorageItemAuthorizedKeys     = "AuthorizedKeys"

	// DefaultMaxTransactionSize is the size limit before any admin override (64KiB)
	DefaultMaxTransactionSize uint32 = 65536

	// NullKeyId is the unencrypted key, allowed unless explicitly disabled
	NullKeyId uint32 = 0
)

// StateKey is a raw key in the host key-value state
type StateKey []byte

func (k StateKey) String() string {
	return fmt.Sprintf("%x", []byte(k))
}

// StorageValueKey returns the key of a scalar storage item
func StorageValueKey(item string) StateKey {
	ret := make([]byte, 0, 2*Blake2b128Size)
	ret = append(ret, Blake2b128Hash([]byte(StoragePrefix)).Bytes()...)
	ret = append(ret, Blake2b128Hash([]byte(item)).Bytes()...)
	return ret
}

// AuthorizedKeysPrefix returns the common prefix of all AuthorizedKeys entries
func AuthorizedKeysPrefix() StateKey {
	return StorageValueKey(StorageItemAuthorizedKeys)
}

// AuthorizedKeysKey returns the storage key of a single AuthorizedKeys entry.
// The key id is hashed and then appended in the clear so it can be recovered
// from the storage key.
func AuthorizedKeysKey(keyId uint32) StateKey {
	keyIdBytes := binary.LittleEndian.AppendUint32(nil, keyId)
	ret := AuthorizedKeysPrefix()
	ret = append(ret, Blake2b128Hash(keyIdBytes).Bytes()...)
	ret = append(ret, keyIdBytes...)
	return ret
}

// KeyIdFromAuthorizedKeysKey recovers the key id from an AuthorizedKeys storage key
func KeyIdFromAuthorizedKeysKey(key StateKey) (uint32, error) {
	prefix := AuthorizedKeysPrefix()
	if len(key) != len(prefix)+Blake2b128Size+4 ||
		!bytes.HasPrefix(key, prefix) {
		return 0, fmt.Errorf("not an authorized keys entry: %s", key)
	}
	keyIdBytes := key[len(prefix)+Blake2b128Size:]
	if !bytes.Equal(
		key[len(prefix):len(prefix)+Blake2b128Size],
		Blake2b128Hash(keyIdBytes).Bytes(),
	) {
		return 0, fmt.Errorf("authorized keys entry hash mismatch: %s", key)
	}
	return binary.LittleEndian.Uint32(keyIdBytes), nil
}

var (
	MaxTransactionSizeKey = StorageValueKey(StorageItemMaxTransactionSize)
	LastTransactionIdKey  = StorageValueKey(StorageItemLastTransactionId)
)

// StateReader provides point reads of the host state. A missing key is
// reported with found=false and a nil error.
type StateReader interface {
	Get(key StateKey) (value []byte, found bool, err error)
}

// StateWrite is a single cell write
type StateWrite struct {
	Key   StateKey
	Value []byte
}

// StateDelta is everything a successful call changes. Stores must apply the
// writes and record the events atomically, or not at all.
type StateDelta struct {
	Writes []StateWrite
	Events []TransactionRecord
}

// StateStore is the host key-value state surface
type StateStore interface {
	StateReader
	Apply(delta StateDelta) error
}

// StateIterator is implemented by stores that can enumerate a key prefix
type StateIterator interface {
	IteratePrefix(prefix StateKey, fn func(key StateKey, value []byte) error) error
}

// EventJournal is implemented by stores that keep the emitted transaction records
type EventJournal interface {
	// Events returns up to limit records with a tx id greater than afterTxId, in tx id order
	Events(afterTxId uint64, limit int) ([]TransactionRecord, error)
}

// LedgerState defines the interface validation rules use to query the current state
type LedgerState interface {
	MaxTransactionSize() (uint32, error)
	// KeyStatus returns the stored flag for keyId and whether an entry exists
	KeyStatus(keyId uint32) (enabled bool, present bool, err error)
}

func EncodeUint32Value(v uint32) ([]byte, error) {
	return cbor.Encode(v)
}

func EncodeUint64Value(v uint64) ([]byte, error) {
	return cbor.Encode(v)
}

func EncodeBoolValue(v bool) ([]byte, error) {
	return cbor.Encode(v)
}

func DecodeUint32Value(data []byte) (uint32, error) {
	var ret uint32
	if err := decodeValue(data, &ret); err != nil {
		return 0, err
	}
	return ret, nil
}

func DecodeUint64Value(data []byte) (uint64, error) {
	var ret uint64
	if err := decodeValue(data, &ret); err != nil {
		return 0, err
	}
	return ret, nil
}

func DecodeBoolValue(data []byte) (bool, error) {
	var ret bool
	if err := decodeValue(data, &ret); err != nil {
		return false, err
	}
	return ret, nil
}

func decodeValue(data []byte, dest any) error {
	if len(data) == 0 {
		return errors.New("empty state value")
	}
	bytesRead, err := cbor.Decode(data, dest)
	if err != nil {
		return fmt.Errorf("decode state value: %w", err)
	}
	if bytesRead != len(data) {
		return fmt.Errorf(
			"trailing data in state value: read %d of %d bytes",
			bytesRead,
			len(data),
		)
	}
	return nil
}
