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

package common

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/blinklabs-io/txsequencer/cbor"
	"github.com/btcsuite/btcd/btcutil/bech32"
	"golang.org/x/crypto/blake2b"
)

const (
	Blake2b256Size = 32
	Blake2b128Size = 16

	// IdentityHrp is the bech32 human readable part for caller identities
	IdentityHrp = "acct"
)

type Blake2b256 [Blake2b256Size]byte

func NewBlake2b256(data []byte) Blake2b256 {
	b := Blake2b256{}
	copy(b[:], data)
	return b
}

func (b Blake2b256) String() string {
	return hex.EncodeToString(b[:])
}

func (b Blake2b256) Bytes() []byte {
	return b[:]
}

func (b Blake2b256) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

func (b Blake2b256) MarshalCBOR() ([]byte, error) {
	// Ensure we always encode a full-sized bytestring, even if the hash is zero-valued
	hashBytes := make([]byte, Blake2b256Size)
	copy(hashBytes, b[:])
	return cbor.Encode(hashBytes)
}

// Blake2b256Hash generates a Blake2b-256 hash from the provided data
func Blake2b256Hash(data []byte) Blake2b256 {
	return Blake2b256(blake2bSum(Blake2b256Size, data))
}

type Blake2b128 [Blake2b128Size]byte

func (b Blake2b128) String() string {
	return hex.EncodeToString(b[:])
}

func (b Blake2b128) Bytes() []byte {
	return b[:]
}

// Blake2b128Hash generates a Blake2b-128 hash from the provided data
func Blake2b128Hash(data []byte) Blake2b128 {
	return Blake2b128(blake2bSum(Blake2b128Size, data))
}

func blake2bSum(size int, data []byte) []byte {
	tmpHash, err := blake2b.New(size, nil)
	if err != nil {
		panic(
			fmt.Sprintf(
				"unexpected error generating empty blake2b hash: %s",
				err,
			),
		)
	}
	tmpHash.Write(data)
	return tmpHash.Sum(nil)
}

// Identity is the opaque account identity the host attaches to a signed call
type Identity []byte

// NewIdentityFromString parses a bech32-encoded identity
func NewIdentityFromString(identity string) (Identity, error) {
	hrp, data, err := bech32.DecodeNoLimit(identity)
	if err != nil {
		return nil, fmt.Errorf("decode identity: %w", err)
	}
	if hrp != IdentityHrp {
		return nil, fmt.Errorf("unexpected identity prefix: %s", hrp)
	}
	decoded, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return nil, fmt.Errorf("convert identity bits: %w", err)
	}
	if len(decoded) == 0 {
		return nil, errors.New("empty identity")
	}
	return Identity(decoded), nil
}

// String returns the bech32-encoded version of the identity
func (i Identity) String() string {
	if len(i) == 0 {
		return ""
	}
	// Convert data to base32 and encode as bech32
	convData, err := bech32.ConvertBits(i, 8, 5, true)
	if err != nil {
		panic(
			fmt.Sprintf("unexpected error converting data to base32: %s", err),
		)
	}
	encoded, err := bech32.Encode(IdentityHrp, convData)
	if err != nil {
		panic(fmt.Sprintf("unexpected error encoding data as bech32: %s", err))
	}
	return encoded
}

func (i Identity) Bytes() []byte {
	return []byte(i)
}

func (i Identity) Equal(other Identity) bool {
	return bytes.Equal(i, other)
}

func (i Identity) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.String())
}
