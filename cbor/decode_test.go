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

package cbor_test

import (
	"encoding/hex"
	"reflect"
	"testing"

	"github.com/blinklabs-io/txsequencer/cbor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type decodeTestDefinition struct {
	CborHex   string
	Object    any
	BytesRead int
}

var decodeTests = []decodeTestDefinition{
	// Simple list of numbers
	{
		CborHex: "83010203",
		Object:  []any{uint64(1), uint64(2), uint64(3)},
	},
	// Multiple CBOR objects
	{
		CborHex:   "81018102",
		Object:    []any{uint64(1)},
		BytesRead: 2,
	},
}

func TestDecode(t *testing.T) {
	for _, test := range decodeTests {
		cborData, err := hex.DecodeString(test.CborHex)
		if err != nil {
			t.Fatalf("failed to decode CBOR hex: %s", err)
		}
		var dest any
		bytesRead, err := cbor.Decode(cborData, &dest)
		if err != nil {
			t.Fatalf("failed to decode CBOR: %s", err)
		}
		if test.BytesRead > 0 {
			if bytesRead != test.BytesRead {
				t.Fatalf(
					"expected to read %d bytes, read %d instead",
					test.BytesRead,
					bytesRead,
				)
			}
		}
		if !reflect.DeepEqual(dest, test.Object) {
			t.Fatalf(
				"CBOR did not decode to expected object\n  got: %#v\n  wanted: %#v",
				dest,
				test.Object,
			)
		}
	}
}

func TestListLength(t *testing.T) {
	tests := []struct {
		name    string
		cborHex string
		length  int
		wantErr bool
	}{
		{name: "single", cborHex: "8101", length: 1},
		{name: "pair", cborHex: "820103", length: 2},
		{
			// 24 items forces the long-form length header
			name:    "long_form",
			cborHex: "9818" + "010101010101010101010101010101010101010101010101",
			length:  24,
		},
		{name: "empty_input", cborHex: "", wantErr: true},
		{name: "not_a_list", cborHex: "01", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cborData, err := hex.DecodeString(tc.cborHex)
			require.NoError(t, err)
			length, err := cbor.ListLength(cborData)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.length, length)
		})
	}
}

type idOne struct {
	cbor.StructAsArray
	Id    uint
	Value uint32
}

type idTwo struct {
	cbor.StructAsArray
	Id    uint
	Flag  bool
	Extra uint64
}

func TestDecodeById(t *testing.T) {
	idMap := func() map[int]any {
		return map[int]any{
			1: &idOne{},
			2: &idTwo{},
		}
	}

	ret, err := cbor.DecodeById([]byte{0x82, 0x01, 0x08}, idMap())
	require.NoError(t, err)
	one, ok := ret.(*idOne)
	require.True(t, ok, "unexpected type %T", ret)
	assert.Equal(t, uint32(8), one.Value)

	ret, err = cbor.DecodeById([]byte{0x83, 0x02, 0xf5, 0x03}, idMap())
	require.NoError(t, err)
	two, ok := ret.(*idTwo)
	require.True(t, ok, "unexpected type %T", ret)
	assert.True(t, two.Flag)
	assert.Equal(t, uint64(3), two.Extra)

	_, err = cbor.DecodeById([]byte{0x81, 0x07}, idMap())
	assert.ErrorContains(t, err, "unknown ID")

	_, err = cbor.DecodeById([]byte{0x80}, idMap())
	assert.Error(t, err)
}

type storedRecord struct {
	cbor.DecodeStoreCbor
	cbor.StructAsArray
	Version uint32
	Data    []byte
}

func (r *storedRecord) UnmarshalCBOR(data []byte) error {
	return r.UnmarshalCborGeneric(data, r)
}

func TestDecodeStoreCbor(t *testing.T) {
	cborData := []byte{0x82, 0x00, 0x42, 0x0b, 0x0a}
	var rec storedRecord
	_, err := cbor.Decode(cborData, &rec)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), rec.Version)
	assert.Equal(t, []byte{0x0b, 0x0a}, rec.Data)
	assert.Equal(t, cborData, rec.Cbor())
	// The stored copy must not alias the input
	cborData[1] = 0x01
	assert.Equal(t, byte(0x00), rec.Cbor()[1])
}
