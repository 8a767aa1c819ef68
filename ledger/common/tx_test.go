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

package common_test

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/txsequencer/cbor"
	"github.com/blinklabs-io/txsequencer/internal/test"
	"github.com/blinklabs-io/txsequencer/ledger/common"
)

func TestTransactionCbor(t *testing.T) {
	// [0, 1, h'0b00000b0a']
	txCbor := test.DecodeHexString("830001450b00000b0a")
	tx, err := common.NewTransactionFromCbor(txCbor)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), tx.Version)
	assert.Equal(t, uint32(1), tx.KeyId)
	assert.Equal(t, []byte{0x0b, 0x00, 0x00, 0x0b, 0x0a}, tx.Data)
	assert.Equal(t, txCbor, tx.Cbor())
	assert.Equal(t, common.Blake2b256Hash(txCbor), tx.Hash())

	built, err := common.NewTransaction(0, 1, []byte{0x0b, 0x00, 0x00, 0x0b, 0x0a})
	require.NoError(t, err)
	assert.Equal(t, hex.EncodeToString(txCbor), hex.EncodeToString(built.Cbor()))
	assert.Equal(t, tx.Hash(), built.Hash())

	encoded, err := cbor.Encode(built)
	require.NoError(t, err)
	assert.Equal(t, txCbor, encoded)

	_, err = common.NewTransactionFromCbor(test.DecodeHexString("8200"))
	assert.Error(t, err)
}

func TestTransactionRecordCbor(t *testing.T) {
	record := common.TransactionRecord{
		Identity: test.Identity(0x01),
		TxId:     3,
		Version:  0,
		KeyId:    0,
		Data:     []byte{0x0b, 0x0e, 0x0e, 0x0f},
	}
	cborData, err := common.EncodeTransactionRecord(record)
	require.NoError(t, err)
	// 5-element array with the identity bytestring first
	assert.Equal(t, byte(0x85), cborData[0])
	assert.Equal(t, byte(0x58), cborData[1])

	decoded, err := common.DecodeTransactionRecord(cborData)
	require.NoError(t, err)
	assert.Equal(t, record, decoded)

	_, err = common.DecodeTransactionRecord([]byte{0x80})
	assert.Error(t, err)
}
