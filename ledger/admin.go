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

	"github.com/blinklabs-io/txsequencer/ledger/common"
)

// SetMaxTransactionSize replaces the size limit. No bounds are enforced: a
// limit of 0 rejects every subsequent transaction.
func (l *Ledger) SetMaxTransactionSize(origin common.Origin, size uint32) error {
	if err := l.ensureAuthority(origin, CallNameSetMaxTransactionSize); err != nil {
		return err
	}
	value, err := common.EncodeUint32Value(size)
	if err != nil {
		return err
	}
	delta := common.StateDelta{
		Writes: []common.StateWrite{
			{Key: common.MaxTransactionSizeKey, Value: value},
		},
	}
	if err := l.store.Apply(delta); err != nil {
		return fmt.Errorf("apply max transaction size: %w", err)
	}
	l.logger.Info(
		"max transaction size updated",
		"component", "ledger",
		"size", size,
	)
	return nil
}

// EnableKey stores an explicit enabled entry for keyId
func (l *Ledger) EnableKey(origin common.Origin, keyId uint32) error {
	return l.setKey(origin, CallNameEnableKey, keyId, true)
}

// DisableKey stores an explicit disabled entry for keyId. Disabling the null
// key overrides its default-allow behavior until it is enabled again.
func (l *Ledger) DisableKey(origin common.Origin, keyId uint32) error {
	return l.setKey(origin, CallNameDisableKey, keyId, false)
}

func (l *Ledger) setKey(
	origin common.Origin,
	call string,
	keyId uint32,
	enabled bool,
) error {
	if err := l.ensureAuthority(origin, call); err != nil {
		return err
	}
	write, err := l.keys.set(keyId, enabled)
	if err != nil {
		return err
	}
	if err := l.store.Apply(common.StateDelta{Writes: []common.StateWrite{write}}); err != nil {
		return fmt.Errorf("apply key %d: %w", keyId, err)
	}
	l.logger.Info(
		"key authorization updated",
		"component", "ledger",
		"key_id", keyId,
		"enabled", enabled,
	)
	return nil
}

func (l *Ledger) ensureAuthority(origin common.Origin, call string) error {
	err := l.authority.Authorize(origin)
	if err == nil {
		return nil
	}
	authErr := common.NewAuthorizationError(
		call,
		common.BadOriginError{Call: call, Origin: origin.Kind()},
	)
	authErr.Details["reason"] = err.Error()
	l.logger.Debug(
		"admin call rejected",
		"component", "ledger",
		"call", call,
		"origin", origin.String(),
		"reason", err,
	)
	return authErr
}
