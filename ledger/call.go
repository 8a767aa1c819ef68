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
	"fmt"

	"github.com/blinklabs-io/txsequencer/cbor"
	"github.com/blinklabs-io/txsequencer/ledger/common"
)

const (
	CallIdTransact              = 0
	CallIdSetMaxTransactionSize = 1
	CallIdEnableKey             = 2
	CallIdDisableKey            = 3
)

const (
	CallNameTransact              = "transact"
	CallNameSetMaxTransactionSize = "set_max_transaction_size"
	CallNameEnableKey             = "enable_key"
	CallNameDisableKey            = "disable_key"
)

// Call is a dispatchable operation. Its CBOR form is [call_id, args...].
type Call interface {
	CallId() uint
	Name() string
}

type TransactCall struct {
	cbor.StructAsArray
	Id      uint
	Version uint32
	KeyId   uint32
	Data    []byte
}

func NewTransactCall(version uint32, keyId uint32, data []byte) *TransactCall {
	return &TransactCall{
		Id:      CallIdTransact,
		Version: version,
		KeyId:   keyId,
		Data:    data,
	}
}

func (c *TransactCall) CallId() uint { return c.Id }

func (*TransactCall) Name() string { return CallNameTransact }

type SetMaxTransactionSizeCall struct {
	cbor.StructAsArray
	Id   uint
	Size uint32
}

func NewSetMaxTransactionSizeCall(size uint32) *SetMaxTransactionSizeCall {
	return &SetMaxTransactionSizeCall{
		Id:   CallIdSetMaxTransactionSize,
		Size: size,
	}
}

func (c *SetMaxTransactionSizeCall) CallId() uint { return c.Id }

func (*SetMaxTransactionSizeCall) Name() string { return CallNameSetMaxTransactionSize }

type EnableKeyCall struct {
	cbor.StructAsArray
	Id    uint
	KeyId uint32
}

func NewEnableKeyCall(keyId uint32) *EnableKeyCall {
	return &EnableKeyCall{
		Id:    CallIdEnableKey,
		KeyId: keyId,
	}
}

func (c *EnableKeyCall) CallId() uint { return c.Id }

func (*EnableKeyCall) Name() string { return CallNameEnableKey }

type DisableKeyCall struct {
	cbor.StructAsArray
	Id    uint
	KeyId uint32
}

func NewDisableKeyCall(keyId uint32) *DisableKeyCall {
	return &DisableKeyCall{
		Id:    CallIdDisableKey,
		KeyId: keyId,
	}
}

func (c *DisableKeyCall) CallId() uint { return c.Id }

func (*DisableKeyCall) Name() string { return CallNameDisableKey }

// DecodeCall decodes a CBOR-encoded call
func DecodeCall(cborData []byte) (Call, error) {
	ret, err := cbor.DecodeById(
		cborData,
		map[int]any{
			CallIdTransact:              &TransactCall{},
			CallIdSetMaxTransactionSize: &SetMaxTransactionSizeCall{},
			CallIdEnableKey:             &EnableKeyCall{},
			CallIdDisableKey:            &DisableKeyCall{},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("decode call: %w", err)
	}
	call, ok := ret.(Call)
	if !ok {
		return nil, fmt.Errorf("decode call: unexpected type %T", ret)
	}
	return call, nil
}

// EncodeCall returns the CBOR encoding of a call
func EncodeCall(call Call) ([]byte, error) {
	return cbor.Encode(call)
}

// Dispatch routes a call to its operation. The returned record is nil for
// calls other than transact.
func (l *Ledger) Dispatch(
	origin common.Origin,
	call Call,
) (*common.TransactionRecord, error) {
	switch c := call.(type) {
	case *TransactCall:
		record, err := l.Transact(origin, c.Version, c.KeyId, c.Data)
		if err != nil {
			return nil, err
		}
		return &record, nil
	case *SetMaxTransactionSizeCall:
		return nil, l.SetMaxTransactionSize(origin, c.Size)
	case *EnableKeyCall:
		return nil, l.EnableKey(origin, c.KeyId)
	case *DisableKeyCall:
		return nil, l.DisableKey(origin, c.KeyId)
	default:
		return nil, fmt.Errorf("unsupported call type: %T", call)
	}
}
