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
	"errors"
	"fmt"

	"github.com/blinklabs-io/txsequencer/ledger/common"
)

// ErrIterationUnsupported is returned when the state store cannot enumerate keys
var ErrIterationUnsupported = errors.New("state store does not support iteration")

// KeyRegistry maps key ids to their stored enabled flag. It stores exactly
// what was written; defaults for missing entries are applied by callers.
type KeyRegistry struct {
	store common.StateStore
}

func newKeyRegistry(store common.StateStore) *KeyRegistry {
	return &KeyRegistry{store: store}
}

// Get returns the stored flag for keyId and whether an entry exists
func (r *KeyRegistry) Get(keyId uint32) (bool, bool, error) {
	value, found, err := r.store.Get(common.AuthorizedKeysKey(keyId))
	if err != nil {
		return false, false, fmt.Errorf("read key %d: %w", keyId, err)
	}
	if !found {
		return false, false, nil
	}
	enabled, err := common.DecodeBoolValue(value)
	if err != nil {
		return false, false, fmt.Errorf("read key %d: %w", keyId, err)
	}
	return enabled, true, nil
}

// Entries returns every stored entry
func (r *KeyRegistry) Entries() (map[uint32]bool, error) {
	iter, ok := r.store.(common.StateIterator)
	if !ok {
		return nil, ErrIterationUnsupported
	}
	ret := make(map[uint32]bool)
	err := iter.IteratePrefix(
		common.AuthorizedKeysPrefix(),
		func(key common.StateKey, value []byte) error {
			keyId, err := common.KeyIdFromAuthorizedKeysKey(key)
			if err != nil {
				return err
			}
			enabled, err := common.DecodeBoolValue(value)
			if err != nil {
				return fmt.Errorf("read key %d: %w", keyId, err)
			}
			ret[keyId] = enabled
			return nil
		},
	)
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// set builds the write for an entry. Only admin calls produce these writes.
func (r *KeyRegistry) set(keyId uint32, enabled bool) (common.StateWrite, error) {
	value, err := common.EncodeBoolValue(enabled)
	if err != nil {
		return common.StateWrite{}, err
	}
	return common.StateWrite{
		Key:   common.AuthorizedKeysKey(keyId),
		Value: value,
	}, nil
}
