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

// Package test_store provides a behavior suite shared by the state store adapters
package test_store

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/txsequencer/internal/test"
	"github.com/blinklabs-io/txsequencer/ledger/common"
)

// Store is the full surface exercised by RunStoreTests
type Store interface {
	common.StateStore
	common.StateIterator
	common.EventJournal
}

// RunStoreTests runs the shared store behavior suite against stores produced by newStore
func RunStoreTests(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("GetMissing", func(t *testing.T) {
		s := newStore(t)
		value, found, err := s.Get(common.MaxTransactionSizeKey)
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, value)
	})

	t.Run("ApplyWritesAndOverwrites", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Apply(common.StateDelta{
			Writes: []common.StateWrite{
				{Key: common.MaxTransactionSizeKey, Value: []byte{0x04}},
				{Key: common.LastTransactionIdKey, Value: []byte{0x01}},
			},
		}))
		require.NoError(t, s.Apply(common.StateDelta{
			Writes: []common.StateWrite{
				{Key: common.LastTransactionIdKey, Value: []byte{0x02}},
			},
		}))
		value, found, err := s.Get(common.MaxTransactionSizeKey)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, []byte{0x04}, value)
		value, found, err = s.Get(common.LastTransactionIdKey)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, []byte{0x02}, value)
	})

	t.Run("ReturnedValueIsCopy", func(t *testing.T) {
		s := newStore(t)
		input := []byte{0x01, 0x02}
		require.NoError(t, s.Apply(common.StateDelta{
			Writes: []common.StateWrite{{Key: common.LastTransactionIdKey, Value: input}},
		}))
		input[0] = 0xff
		value, _, err := s.Get(common.LastTransactionIdKey)
		require.NoError(t, err)
		assert.Equal(t, []byte{0x01, 0x02}, value)
		value[1] = 0xff
		value, _, err = s.Get(common.LastTransactionIdKey)
		require.NoError(t, err)
		assert.Equal(t, []byte{0x01, 0x02}, value)
	})

	t.Run("InvalidDeltaLeavesStateUnchanged", func(t *testing.T) {
		s := newStore(t)
		err := s.Apply(common.StateDelta{
			Writes: []common.StateWrite{
				{Key: common.LastTransactionIdKey, Value: []byte{0x01}},
				{Key: nil, Value: []byte{0x01}},
			},
			Events: []common.TransactionRecord{
				{Identity: test.Identity(1), TxId: 1, Data: []byte{0x0b}},
			},
		})
		require.Error(t, err)
		_, found, err := s.Get(common.LastTransactionIdKey)
		require.NoError(t, err)
		assert.False(t, found)
		events, err := s.Events(0, 0)
		require.NoError(t, err)
		assert.Empty(t, events)
	})

	t.Run("IteratePrefix", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Apply(common.StateDelta{
			Writes: []common.StateWrite{
				{Key: common.AuthorizedKeysKey(7), Value: []byte{0xf5}},
				{Key: common.AuthorizedKeysKey(0), Value: []byte{0xf4}},
				{Key: common.AuthorizedKeysKey(3), Value: []byte{0xf5}},
				{Key: common.MaxTransactionSizeKey, Value: []byte{0x04}},
			},
		}))
		var keys []common.StateKey
		err := s.IteratePrefix(
			common.AuthorizedKeysPrefix(),
			func(key common.StateKey, value []byte) error {
				keys = append(keys, key)
				return nil
			},
		)
		require.NoError(t, err)
		require.Len(t, keys, 3)
		for i := 1; i < len(keys); i++ {
			assert.Negative(t, bytes.Compare(keys[i-1], keys[i]))
		}
		keyIds := map[uint32]bool{}
		for _, key := range keys {
			keyId, err := common.KeyIdFromAuthorizedKeysKey(key)
			require.NoError(t, err)
			keyIds[keyId] = true
		}
		assert.Equal(t, map[uint32]bool{0: true, 3: true, 7: true}, keyIds)
	})

	t.Run("IteratePrefixStopsOnError", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Apply(common.StateDelta{
			Writes: []common.StateWrite{
				{Key: common.AuthorizedKeysKey(1), Value: []byte{0xf5}},
				{Key: common.AuthorizedKeysKey(2), Value: []byte{0xf5}},
			},
		}))
		errStop := errors.New("stop")
		calls := 0
		err := s.IteratePrefix(
			common.AuthorizedKeysPrefix(),
			func(common.StateKey, []byte) error {
				calls++
				return errStop
			},
		)
		require.ErrorIs(t, err, errStop)
		assert.Equal(t, 1, calls)
	})

	t.Run("Events", func(t *testing.T) {
		s := newStore(t)
		for i := uint64(1); i <= 5; i++ {
			require.NoError(t, s.Apply(common.StateDelta{
				Events: []common.TransactionRecord{
					{
						Identity: test.Identity(byte(i)),
						TxId:     i,
						Version:  0,
						KeyId:    uint32(i % 2),
						Data:     test.Payload(int(i)),
					},
				},
			}))
		}
		events, err := s.Events(0, 0)
		require.NoError(t, err)
		require.Len(t, events, 5)
		for i, record := range events {
			assert.Equal(t, uint64(i+1), record.TxId)
			assert.Equal(t, test.Identity(byte(i+1)), record.Identity)
			assert.Equal(t, uint32((i+1)%2), record.KeyId)
			assert.Equal(t, test.Payload(i+1), record.Data)
		}
		events, err = s.Events(2, 2)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, uint64(3), events[0].TxId)
		assert.Equal(t, uint64(4), events[1].TxId)
		events, err = s.Events(5, 10)
		require.NoError(t, err)
		assert.Empty(t, events)
	})
}
