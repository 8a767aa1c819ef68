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
	"maps"
	"slices"

	"github.com/blinklabs-io/txsequencer/ledger/common"
)

const (
	VersionIdZero uint32 = 0
)

// Version describes how transactions of one version number are admitted.
// The rules run after the common size checks.
type Version struct {
	Id              uint32
	Name            string
	ValidationRules []common.TransactionValidationRuleFunc
}

// VersionZero is the only supported version: the payload is opaque and the
// key id must be authorized
var VersionZero = Version{
	Id:   VersionIdZero,
	Name: "v0",
	ValidationRules: []common.TransactionValidationRuleFunc{
		common.ValidateKeyAuthorization,
	},
}

var versions = map[uint32]Version{
	VersionIdZero: VersionZero,
}

// GetVersionById returns the built-in version with the given id, or nil
func GetVersionById(versionId uint32) *Version {
	version, ok := versions[versionId]
	if !ok {
		return nil
	}
	return &version
}

// defaultVersions returns a copy of the built-in version table
func defaultVersions() map[uint32]Version {
	return maps.Clone(versions)
}

// SupportedVersions returns the version ids this ledger accepts, in ascending order
func (l *Ledger) SupportedVersions() []uint32 {
	return slices.Sorted(maps.Keys(l.versions))
}
