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

package ledger_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/txsequencer/internal/test"
	"github.com/blinklabs-io/txsequencer/ledger"
	"github.com/blinklabs-io/txsequencer/ledger/common"
	"github.com/blinklabs-io/txsequencer/store/memory"
	"github.com/blinklabs-io/txsequencer/store/sqlite"
)

var (
	identityA = test.SignedOrigin(0xa1)
	identityB = test.SignedOrigin(0xb2)
	root      = common.RootOrigin()
)

type storeFactory struct {
	name string
	open func(t *testing.T) common.StateStore
}

var storeFactories = []storeFactory{
	{
		name: "memory",
		open: func(t *testing.T) common.StateStore {
			return memory.New()
		},
	},
	{
		name: "sqlite",
		open: func(t *testing.T) common.StateStore {
			s, err := sqlite.Open(filepath.Join(t.TempDir(), "state.db"))
			require.NoError(t, err)
			t.Cleanup(func() {
				_ = s.Close()
			})
			return s
		},
	},
}

// forEachStore runs fn against a fresh ledger for every store adapter
func forEachStore(
	t *testing.T,
	fn func(t *testing.T, l *ledger.Ledger, store common.StateStore),
	opts ...ledger.LedgerOption,
) {
	for _, factory := range storeFactories {
		t.Run(factory.name, func(t *testing.T) {
			store := factory.open(t)
			l, err := ledger.NewLedger(store, opts...)
			require.NoError(t, err)
			fn(t, l, store)
		})
	}
}

func requireCode(t *testing.T, err error, code common.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, common.ErrorCodeOf(err), "unexpected error: %v", err)
}

func requireLastTxId(t *testing.T, l *ledger.Ledger, expected uint64) {
	t.Helper()
	lastTxId, err := l.LastTransactionId()
	require.NoError(t, err)
	assert.Equal(t, expected, lastTxId)
}

func TestNewLedgerRequiresStore(t *testing.T) {
	_, err := ledger.NewLedger(nil)
	require.Error(t, err)
}

func TestDefaults(t *testing.T) {
	forEachStore(t, func(t *testing.T, l *ledger.Ledger, _ common.StateStore) {
		size, err := l.MaxTransactionSize()
		require.NoError(t, err)
		assert.Equal(t, common.DefaultMaxTransactionSize, size)
		requireLastTxId(t, l, 0)
		allowed, err := l.KeyAllowed(0)
		require.NoError(t, err)
		assert.True(t, allowed)
		allowed, err = l.KeyAllowed(1)
		require.NoError(t, err)
		assert.False(t, allowed)
		assert.Equal(t, []uint32{ledger.VersionIdZero}, l.SupportedVersions())
	})
}

func TestTransactSequence(t *testing.T) {
	forEachStore(t, func(t *testing.T, l *ledger.Ledger, _ common.StateStore) {
		for i := 1; i <= 20; i++ {
			origin := identityA
			if i%3 == 0 {
				origin = identityB
			}
			record, err := l.Transact(origin, 0, 0, test.Payload(i))
			require.NoError(t, err)
			assert.Equal(t, uint64(i), record.TxId)
		}
		requireLastTxId(t, l, 20)
	})
}

func TestTransactIdenticalCallsAreNotDeduplicated(t *testing.T) {
	forEachStore(t, func(t *testing.T, l *ledger.Ledger, _ common.StateStore) {
		first, err := l.Transact(identityA, 0, 0, []byte{0x01})
		require.NoError(t, err)
		second, err := l.Transact(identityA, 0, 0, []byte{0x01})
		require.NoError(t, err)
		assert.Equal(t, uint64(1), first.TxId)
		assert.Equal(t, uint64(2), second.TxId)
	})
}

func TestTransactEndToEnd(t *testing.T) {
	forEachStore(t, func(t *testing.T, l *ledger.Ledger, store common.StateStore) {
		record, err := l.Transact(identityA, 0, 0, []byte{0x0b, 0x00, 0x00, 0x0b, 0x0a})
		require.NoError(t, err)
		assert.Equal(t, uint64(1), record.TxId)
		record, err = l.Transact(identityA, 0, 0, []byte{0x0b, 0x00, 0x00, 0x0b, 0x0b, 0x05})
		require.NoError(t, err)
		assert.Equal(t, uint64(2), record.TxId)
		record, err = l.Transact(identityB, 0, 0, []byte{0x0b, 0x0e, 0x0e, 0x0f})
		require.NoError(t, err)
		assert.Equal(t, uint64(3), record.TxId)
		requireLastTxId(t, l, 3)

		events, err := store.(common.EventJournal).Events(0, 0)
		require.NoError(t, err)
		require.Len(t, events, 3)
		idA, _ := identityA.Identity()
		idB, _ := identityB.Identity()
		assert.Equal(t, idA, events[0].Identity)
		assert.Equal(t, []byte{0x0b, 0x00, 0x00, 0x0b, 0x0a}, events[0].Data)
		assert.Equal(t, idA, events[1].Identity)
		assert.Equal(t, []byte{0x0b, 0x00, 0x00, 0x0b, 0x0b, 0x05}, events[1].Data)
		assert.Equal(t, idB, events[2].Identity)
		assert.Equal(t, uint64(3), events[2].TxId)
		assert.Equal(t, uint32(0), events[2].Version)
		assert.Equal(t, uint32(0), events[2].KeyId)
	})
}

func TestTransactRejections(t *testing.T) {
	testCases := []struct {
		name    string
		origin  common.Origin
		version uint32
		keyId   uint32
		data    []byte
		code    common.ErrorCode
	}{
		{
			name:   "no identity",
			origin: common.NoneOrigin(),
			data:   []byte{0x01},
			code:   common.ErrorCodeUnauthenticated,
		},
		{
			name:   "root has no identity",
			origin: root,
			data:   []byte{0x01},
			code:   common.ErrorCodeUnauthenticated,
		},
		{
			name:   "empty data",
			origin: identityA,
			data:   []byte{},
			code:   common.ErrorCodeEmptyTransaction,
		},
		{
			name:    "empty data with bad version and key",
			origin:  identityA,
			version: 7,
			keyId:   9,
			code:    common.ErrorCodeEmptyTransaction,
		},
		{
			name:   "oversized",
			origin: identityA,
			data:   test.Payload(int(common.DefaultMaxTransactionSize) + 1),
			code:   common.ErrorCodeTransactionOverflow,
		},
		{
			name:    "oversized with bad version",
			origin:  identityA,
			version: 1,
			data:    test.Payload(int(common.DefaultMaxTransactionSize) + 1),
			code:    common.ErrorCodeTransactionOverflow,
		},
		{
			name:    "version 1",
			origin:  identityA,
			version: 1,
			data:    []byte{0x01},
			code:    common.ErrorCodeInvalidTransactionVersion,
		},
		{
			name:    "version max",
			origin:  identityA,
			version: ^uint32(0),
			keyId:   5,
			data:    []byte{0x01},
			code:    common.ErrorCodeInvalidTransactionVersion,
		},
		{
			name:   "unregistered key",
			origin: identityA,
			keyId:  1,
			data:   []byte{0x01},
			code:   common.ErrorCodeInvalidKeyId,
		},
	}
	forEachStore(t, func(t *testing.T, l *ledger.Ledger, store common.StateStore) {
		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := l.Transact(tc.origin, tc.version, tc.keyId, tc.data)
				requireCode(t, err, tc.code)
				var validationErr *common.ValidationError
				require.ErrorAs(t, err, &validationErr)
			})
		}
		// Rejections never touch the counter or the journal
		requireLastTxId(t, l, 0)
		events, err := store.(common.EventJournal).Events(0, 0)
		require.NoError(t, err)
		assert.Empty(t, events)
	})
}

func TestTransactSizeBoundary(t *testing.T) {
	forEachStore(t, func(t *testing.T, l *ledger.Ledger, _ common.StateStore) {
		record, err := l.Transact(identityA, 0, 0, test.Payload(int(common.DefaultMaxTransactionSize)))
		require.NoError(t, err)
		assert.Equal(t, uint64(1), record.TxId)
		_, err = l.Transact(identityA, 0, 0, test.Payload(int(common.DefaultMaxTransactionSize)+1))
		requireCode(t, err, common.ErrorCodeTransactionOverflow)
		var overflow common.TransactionOverflowError
		require.ErrorAs(t, err, &overflow)
		assert.Equal(t, int(common.DefaultMaxTransactionSize)+1, overflow.Size)
		assert.Equal(t, common.DefaultMaxTransactionSize, overflow.Max)
	})
}

func TestSetMaxTransactionSize(t *testing.T) {
	forEachStore(t, func(t *testing.T, l *ledger.Ledger, _ common.StateStore) {
		for _, size := range []uint32{0, 4, 1 << 20} {
			err := l.SetMaxTransactionSize(identityA, size)
			requireCode(t, err, common.ErrorCodeBadOrigin)
			err = l.SetMaxTransactionSize(common.NoneOrigin(), size)
			requireCode(t, err, common.ErrorCodeBadOrigin)
		}
		size, err := l.MaxTransactionSize()
		require.NoError(t, err)
		assert.Equal(t, common.DefaultMaxTransactionSize, size)

		require.NoError(t, l.SetMaxTransactionSize(root, 4))
		_, err = l.Transact(identityA, 0, 0, test.Payload(4))
		require.NoError(t, err)
		_, err = l.Transact(identityA, 0, 0, test.Payload(5))
		requireCode(t, err, common.ErrorCodeTransactionOverflow)

		// A limit of 0 rejects everything non-empty
		require.NoError(t, l.SetMaxTransactionSize(root, 0))
		_, err = l.Transact(identityA, 0, 0, test.Payload(1))
		requireCode(t, err, common.ErrorCodeTransactionOverflow)
		requireLastTxId(t, l, 1)
	})
}

func TestKeyControlScenario(t *testing.T) {
	forEachStore(t, func(t *testing.T, l *ledger.Ledger, _ common.StateStore) {
		data := []byte{0x0b, 0x0a}
		record, err := l.Transact(identityA, 0, 0, data)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), record.TxId)

		_, err = l.Transact(identityA, 0, 1, data)
		requireCode(t, err, common.ErrorCodeInvalidKeyId)

		require.NoError(t, l.EnableKey(root, 1))
		record, err = l.Transact(identityA, 0, 1, data)
		require.NoError(t, err)
		assert.Equal(t, uint64(2), record.TxId)

		require.NoError(t, l.DisableKey(root, 1))
		_, err = l.Transact(identityA, 0, 1, data)
		requireCode(t, err, common.ErrorCodeInvalidKeyId)

		require.NoError(t, l.DisableKey(root, 0))
		_, err = l.Transact(identityA, 0, 0, data)
		requireCode(t, err, common.ErrorCodeInvalidKeyId)
		var keyErr common.InvalidKeyIdError
		require.ErrorAs(t, err, &keyErr)
		assert.Equal(t, uint32(0), keyErr.KeyId)

		// Re-enabling the null key stores an explicit entry
		require.NoError(t, l.EnableKey(root, 0))
		enabled, present, err := l.KeyStatus(0)
		require.NoError(t, err)
		assert.True(t, enabled)
		assert.True(t, present)
		record, err = l.Transact(identityA, 0, 0, data)
		require.NoError(t, err)
		assert.Equal(t, uint64(3), record.TxId)

		entries, err := l.Keys().Entries()
		require.NoError(t, err)
		assert.Equal(t, map[uint32]bool{0: true, 1: false}, entries)
	})
}

func TestKeyAdminRequiresAuthority(t *testing.T) {
	forEachStore(t, func(t *testing.T, l *ledger.Ledger, _ common.StateStore) {
		requireCode(t, l.EnableKey(identityA, 1), common.ErrorCodeBadOrigin)
		requireCode(t, l.DisableKey(identityA, 0), common.ErrorCodeBadOrigin)
		err := l.DisableKey(common.NoneOrigin(), 0)
		requireCode(t, err, common.ErrorCodeBadOrigin)
		var badOrigin common.BadOriginError
		require.ErrorAs(t, err, &badOrigin)
		assert.Equal(t, ledger.CallNameDisableKey, badOrigin.Call)
		assert.Equal(t, common.OriginKindNone, badOrigin.Origin)

		_, present, err := l.KeyStatus(0)
		require.NoError(t, err)
		assert.False(t, present)
		_, present, err = l.KeyStatus(1)
		require.NoError(t, err)
		assert.False(t, present)
	})
}

func TestEventHandler(t *testing.T) {
	var received []common.TransactionRecord
	handler := func(record common.TransactionRecord) {
		received = append(received, record)
	}
	l, err := ledger.NewLedger(memory.New(), ledger.WithEventHandler(handler))
	require.NoError(t, err)
	_, err = l.Transact(identityA, 0, 0, []byte{})
	require.Error(t, err)
	_, err = l.Transact(identityA, 0, 0, []byte{0x0b})
	require.NoError(t, err)
	_, err = l.Transact(identityB, 0, 0, []byte{0x0c})
	require.NoError(t, err)
	require.Len(t, received, 2)
	assert.Equal(t, uint64(1), received[0].TxId)
	assert.Equal(t, uint64(2), received[1].TxId)
	assert.Equal(t, []byte{0x0c}, received[1].Data)
}

func TestRecordDoesNotAliasInput(t *testing.T) {
	l, err := ledger.NewLedger(memory.New())
	require.NoError(t, err)
	data := []byte{0x01, 0x02}
	record, err := l.Transact(identityA, 0, 0, data)
	require.NoError(t, err)
	data[0] = 0xff
	assert.Equal(t, []byte{0x01, 0x02}, record.Data)
}

// failingStore rejects every Apply after failAfter successful ones
type failingStore struct {
	*memory.Store
	failAfter int
	applied   int
}

var errApply = errors.New("apply failed")

func (s *failingStore) Apply(delta common.StateDelta) error {
	if s.applied >= s.failAfter {
		return errApply
	}
	s.applied++
	return s.Store.Apply(delta)
}

func TestStoreFailureLeavesNoPartialState(t *testing.T) {
	store := &failingStore{Store: memory.New(), failAfter: 1}
	var received []common.TransactionRecord
	l, err := ledger.NewLedger(
		store,
		ledger.WithEventHandler(func(record common.TransactionRecord) {
			received = append(received, record)
		}),
	)
	require.NoError(t, err)
	_, err = l.Transact(identityA, 0, 0, []byte{0x01})
	require.NoError(t, err)

	_, err = l.Transact(identityA, 0, 0, []byte{0x02})
	require.ErrorIs(t, err, errApply)
	assert.Equal(t, common.ErrorCodeNone, common.ErrorCodeOf(err))
	require.ErrorIs(t, l.SetMaxTransactionSize(root, 4), errApply)
	require.ErrorIs(t, l.EnableKey(root, 1), errApply)

	requireLastTxId(t, l, 1)
	size, err := l.MaxTransactionSize()
	require.NoError(t, err)
	assert.Equal(t, common.DefaultMaxTransactionSize, size)
	_, present, err := l.KeyStatus(1)
	require.NoError(t, err)
	assert.False(t, present)
	events, err := store.Events(0, 0)
	require.NoError(t, err)
	assert.Len(t, events, 1)
	assert.Len(t, received, 1)
}

// getFailingStore fails every read
type getFailingStore struct {
	*memory.Store
}

var errGet = errors.New("get failed")

func (getFailingStore) Get(common.StateKey) ([]byte, bool, error) {
	return nil, false, errGet
}

func TestStoreReadFailure(t *testing.T) {
	l, err := ledger.NewLedger(getFailingStore{Store: memory.New()})
	require.NoError(t, err)
	_, err = l.Transact(identityA, 0, 0, []byte{0x01})
	require.ErrorIs(t, err, errGet)
	var validationErr *common.ValidationError
	assert.False(t, errors.As(err, &validationErr))
	_, err = l.LastTransactionId()
	require.ErrorIs(t, err, errGet)
}

func TestCorruptStateValue(t *testing.T) {
	store := memory.New()
	require.NoError(t, store.Apply(common.StateDelta{
		Writes: []common.StateWrite{
			{Key: common.MaxTransactionSizeKey, Value: []byte{0x61, 0x61}},
		},
	}))
	l, err := ledger.NewLedger(store)
	require.NoError(t, err)
	_, err = l.MaxTransactionSize()
	require.Error(t, err)
	_, err = l.Transact(identityA, 0, 0, []byte{0x01})
	require.Error(t, err)
	requireLastTxId(t, l, 0)
}

func TestWithVersion(t *testing.T) {
	errTooShort := common.EmptyTransactionError{}
	versionOne := ledger.Version{
		Id:   1,
		Name: "v1",
		ValidationRules: []common.TransactionValidationRuleFunc{
			func(tx *common.Transaction, _ common.LedgerState) error {
				if len(tx.Data) < 2 {
					return errTooShort
				}
				return nil
			},
		},
	}
	l, err := ledger.NewLedger(memory.New(), ledger.WithVersion(versionOne))
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 1}, l.SupportedVersions())

	// Version 1 skips key authorization
	record, err := l.Transact(identityA, 1, 42, []byte{0x01, 0x02})
	require.NoError(t, err)
	assert.Equal(t, uint32(1), record.Version)
	_, err = l.Transact(identityA, 1, 42, []byte{0x01})
	requireCode(t, err, common.ErrorCodeEmptyTransaction)

	// Other ledgers keep the built-in table
	other, err := ledger.NewLedger(memory.New())
	require.NoError(t, err)
	_, err = other.Transact(identityA, 1, 0, []byte{0x01, 0x02})
	requireCode(t, err, common.ErrorCodeInvalidTransactionVersion)
	assert.NotNil(t, ledger.GetVersionById(0))
	assert.Nil(t, ledger.GetVersionById(1))
}
