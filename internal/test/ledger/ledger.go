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

package test_ledger

import (
	"errors"

	"github.com/blinklabs-io/txsequencer/ledger/common"
)

// Compile-time check that MockLedgerState implements LedgerState
var _ common.LedgerState = (*MockLedgerState)(nil)

// MockLedgerState is the canonical internal mock used by rule tests. Tests
// should construct &test_ledger.MockLedgerState{} and configure fields to
// control behavior. The zero value reports the default size limit and an
// empty key registry.
type MockLedgerState struct {
	// MaxTransactionSizeVal overrides the size limit when non-nil
	MaxTransactionSizeVal *uint32
	// KeysVal holds explicit key registry entries
	KeysVal map[uint32]bool
	// Err, when set, is returned from every query
	Err error
}

// ErrMockState is a convenience error for tests exercising state read failures
var ErrMockState = errors.New("mock ledger state failure")

func (m *MockLedgerState) MaxTransactionSize() (uint32, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	if m.MaxTransactionSizeVal != nil {
		return *m.MaxTransactionSizeVal, nil
	}
	return common.DefaultMaxTransactionSize, nil
}

func (m *MockLedgerState) KeyStatus(keyId uint32) (bool, bool, error) {
	if m.Err != nil {
		return false, false, m.Err
	}
	enabled, ok := m.KeysVal[keyId]
	return enabled, ok, nil
}

// WithMaxTransactionSize returns a copy of the mock using the given size limit
func (m MockLedgerState) WithMaxTransactionSize(size uint32) *MockLedgerState {
	m.MaxTransactionSizeVal = &size
	return &m
}
