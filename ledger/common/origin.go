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

// OriginKind identifies what the host established about the caller of a call
type OriginKind uint8

const (
	// OriginKindNone means the caller could not be authenticated
	OriginKindNone OriginKind = iota
	// OriginKindSigned means the host verified a signed identity
	OriginKindSigned
	// OriginKindRoot means the caller holds administrative authority
	OriginKindRoot
)

func (k OriginKind) String() string {
	switch k {
	case OriginKindSigned:
		return "signed"
	case OriginKindRoot:
		return "root"
	default:
		return "none"
	}
}

// Origin is the authentication result the host hands to every call
type Origin struct {
	kind     OriginKind
	identity Identity
}

func NoneOrigin() Origin {
	return Origin{kind: OriginKindNone}
}

// SignedOrigin returns an origin for a verified identity. An empty identity
// yields the none origin.
func SignedOrigin(identity Identity) Origin {
	if len(identity) == 0 {
		return NoneOrigin()
	}
	tmpIdentity := make(Identity, len(identity))
	copy(tmpIdentity, identity)
	return Origin{kind: OriginKindSigned, identity: tmpIdentity}
}

func RootOrigin() Origin {
	return Origin{kind: OriginKindRoot}
}

func (o Origin) Kind() OriginKind {
	return o.kind
}

// Identity returns the signed identity, if any
func (o Origin) Identity() (Identity, bool) {
	if o.kind != OriginKindSigned {
		return nil, false
	}
	return o.identity, true
}

func (o Origin) IsRoot() bool {
	return o.kind == OriginKindRoot
}

func (o Origin) String() string {
	if o.kind == OriginKindSigned {
		return "signed:" + o.identity.String()
	}
	return o.kind.String()
}
