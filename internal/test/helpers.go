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

package test

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/blinklabs-io/txsequencer/ledger/common"
)

// DecodeHexString is a helper function for tests that decodes hex strings. It doesn't return
// an error value, which makes it usable inline.
func DecodeHexString(hexData string) []byte {
	// Strip off any leading/trailing whitespace in hex string
	hexData = strings.TrimSpace(hexData)
	decoded, err := hex.DecodeString(hexData)
	if err != nil {
		panic(fmt.Sprintf("error decoding hex: %s", err))
	}
	return decoded
}

// Identity returns a deterministic 32-byte identity filled with seed
func Identity(seed byte) common.Identity {
	return common.Identity(bytes.Repeat([]byte{seed}, 32))
}

// SignedOrigin returns a signed origin for Identity(seed)
func SignedOrigin(seed byte) common.Origin {
	return common.SignedOrigin(Identity(seed))
}

// Payload returns a payload of the requested size
func Payload(size int) []byte {
	return bytes.Repeat([]byte{0x0b}, size)
}
