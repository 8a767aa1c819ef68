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
	"fmt"

	"github.com/blinklabs-io/txsequencer/cbor"
)

// Transaction is a candidate payload submitted for admission. Its CBOR form
// is [version, key_id, data].
type Transaction struct {
	cbor.DecodeStoreCbor
	cbor.StructAsArray
	Version uint32
	KeyId   uint32
	Data    []byte
}

// NewTransaction builds a transaction and stores its canonical CBOR encoding
func NewTransaction(version uint32, keyId uint32, data []byte) (*Transaction, error) {
	tx := &Transaction{
		Version: version,
		KeyId:   keyId,
		Data:    data,
	}
	cborData, err := cbor.EncodeGeneric(tx)
	if err != nil {
		return nil, fmt.Errorf("encode transaction: %w", err)
	}
	tx.SetCbor(cborData)
	return tx, nil
}

// NewTransactionFromCbor decodes a transaction, keeping the original bytes for hashing
func NewTransactionFromCbor(cborData []byte) (*Transaction, error) {
	var tx Transaction
	if _, err := cbor.Decode(cborData, &tx); err != nil {
		return nil, fmt.Errorf("decode transaction: %w", err)
	}
	return &tx, nil
}

func (t *Transaction) UnmarshalCBOR(cborData []byte) error {
	return t.UnmarshalCborGeneric(cborData, t)
}

func (t *Transaction) MarshalCBOR() ([]byte, error) {
	if cborData := t.Cbor(); cborData != nil {
		return cborData, nil
	}
	return cbor.EncodeGeneric(t)
}

// Hash returns the Blake2b-256 hash of the transaction CBOR
func (t *Transaction) Hash() Blake2b256 {
	cborData, err := t.MarshalCBOR()
	if err != nil {
		panic(fmt.Sprintf("unexpected error encoding transaction: %s", err))
	}
	return Blake2b256Hash(cborData)
}

// Size returns the payload length checked against the size limit
func (t *Transaction) Size() int {
	return len(t.Data)
}

// TransactionRecord is emitted once per admitted transaction. Its CBOR form is
// [identity, tx_id, version, key_id, data].
type TransactionRecord struct {
	cbor.StructAsArray
	Identity Identity
	TxId     uint64
	Version  uint32
	KeyId    uint32
	Data     []byte
}

func (r TransactionRecord) String() string {
	return fmt.Sprintf(
		"tx %d: identity=%s version=%d key_id=%d size=%d",
		r.TxId,
		r.Identity,
		r.Version,
		r.KeyId,
		len(r.Data),
	)
}

// EncodeTransactionRecord returns the CBOR encoding of a record
func EncodeTransactionRecord(r TransactionRecord) ([]byte, error) {
	return cbor.Encode(&r)
}

// DecodeTransactionRecord decodes a record produced by EncodeTransactionRecord
func DecodeTransactionRecord(cborData []byte) (TransactionRecord, error) {
	var ret TransactionRecord
	if _, err := cbor.Decode(cborData, &ret); err != nil {
		return TransactionRecord{}, fmt.Errorf("decode transaction record: %w", err)
	}
	return ret, nil
}
