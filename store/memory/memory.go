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

// Package memory provides an in-process state store for tests and embedding
package memory

import (
	"bytes"
	"errors"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/blinklabs-io/txsequencer/ledger/common"
)

// Compile-time checks that Store implements the state interfaces
var (
	_ common.StateStore    = (*Store)(nil)
	_ common.StateIterator = (*Store)(nil)
	_ common.EventJournal  = (*Store)(nil)
)

var errEmptyKey = errors.New("state key must not be empty")

// Store keeps state cells and the event journal in memory. It is safe for
// concurrent use.
type Store struct {
	mu     sync.RWMutex
	cells  map[string][]byte
	events []common.TransactionRecord
}

func New() *Store {
	return &Store{
		cells: make(map[string][]byte),
	}
}

func (s *Store) Get(key common.StateKey) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.cells[string(key)]
	if !ok {
		return nil, false, nil
	}
	return bytes.Clone(value), true, nil
}

// Apply applies all writes and appends all events, or does nothing if the
// delta is invalid
func (s *Store) Apply(delta common.StateDelta) error {
	for _, write := range delta.Writes {
		if len(write.Key) == 0 {
			return errEmptyKey
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, write := range delta.Writes {
		s.cells[string(write.Key)] = bytes.Clone(write.Value)
	}
	for _, record := range delta.Events {
		record.Identity = bytes.Clone(record.Identity)
		record.Data = bytes.Clone(record.Data)
		s.events = append(s.events, record)
	}
	return nil
}

// IteratePrefix calls fn for every cell whose key starts with prefix, in key order
func (s *Store) IteratePrefix(
	prefix common.StateKey,
	fn func(key common.StateKey, value []byte) error,
) error {
	s.mu.RLock()
	keys := make([]string, 0)
	for key := range s.cells {
		if strings.HasPrefix(key, string(prefix)) {
			keys = append(keys, key)
		}
	}
	values := make(map[string][]byte, len(keys))
	for _, key := range keys {
		values[key] = bytes.Clone(s.cells[key])
	}
	s.mu.RUnlock()
	slices.Sort(keys)
	for _, key := range keys {
		if err := fn(common.StateKey(key), values[key]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Events(afterTxId uint64, limit int) ([]common.TransactionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	// Records are appended in tx id order
	start := sort.Search(len(s.events), func(i int) bool {
		return s.events[i].TxId > afterTxId
	})
	end := len(s.events)
	if limit > 0 && start+limit < end {
		end = start + limit
	}
	ret := make([]common.TransactionRecord, 0, end-start)
	for _, record := range s.events[start:end] {
		record.Identity = bytes.Clone(record.Identity)
		record.Data = bytes.Clone(record.Data)
		ret = append(ret, record)
	}
	return ret, nil
}
