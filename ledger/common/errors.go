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
	"errors"
	"fmt"
)

// ErrorCode is the stable, enumerable identifier of a rejected call
type ErrorCode uint8

const (
	ErrorCodeNone ErrorCode = iota
	ErrorCodeUnauthenticated
	ErrorCodeBadOrigin
	ErrorCodeEmptyTransaction
	ErrorCodeTransactionOverflow
	ErrorCodeInvalidTransactionVersion
	ErrorCodeInvalidKeyId
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCodeNone:                      "None",
	ErrorCodeUnauthenticated:           "Unauthenticated",
	ErrorCodeBadOrigin:                 "BadOrigin",
	ErrorCodeEmptyTransaction:          "EmptyTransaction",
	ErrorCodeTransactionOverflow:       "TransactionOverflow",
	ErrorCodeInvalidTransactionVersion: "InvalidTransactionVersion",
	ErrorCodeInvalidKeyId:              "InvalidKeyId",
}

func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ErrorCode(%d)", uint8(c))
}

// CodedError is implemented by every error that rejects a call
type CodedError interface {
	error
	Code() ErrorCode
}

// ErrorCodeOf returns the code of the first CodedError in err's chain, or
// ErrorCodeNone when there is none
func ErrorCodeOf(err error) ErrorCode {
	var coded CodedError
	if errors.As(err, &coded) {
		return coded.Code()
	}
	return ErrorCodeNone
}

type UnauthenticatedError struct{}

func (UnauthenticatedError) Error() string {
	return "caller identity missing or unverifiable"
}

func (UnauthenticatedError) Code() ErrorCode { return ErrorCodeUnauthenticated }

type BadOriginError struct {
	Call   string
	Origin OriginKind
}

func (e BadOriginError) Error() string {
	return fmt.Sprintf(
		"bad origin: %s requires administrative authority, got %s",
		e.Call,
		e.Origin,
	)
}

func (BadOriginError) Code() ErrorCode { return ErrorCodeBadOrigin }

type EmptyTransactionError struct{}

func (EmptyTransactionError) Error() string {
	return "empty transaction"
}

func (EmptyTransactionError) Code() ErrorCode { return ErrorCodeEmptyTransaction }

type TransactionOverflowError struct {
	Size int
	Max  uint32
}

func (e TransactionOverflowError) Error() string {
	return fmt.Sprintf(
		"transaction overflow: size %d, maximum %d",
		e.Size,
		e.Max,
	)
}

func (TransactionOverflowError) Code() ErrorCode { return ErrorCodeTransactionOverflow }

type InvalidTransactionVersionError struct {
	Version uint32
}

func (e InvalidTransactionVersionError) Error() string {
	return fmt.Sprintf("invalid transaction version: %d", e.Version)
}

func (InvalidTransactionVersionError) Code() ErrorCode {
	return ErrorCodeInvalidTransactionVersion
}

type InvalidKeyIdError struct {
	KeyId uint32
}

func (e InvalidKeyIdError) Error() string {
	return fmt.Sprintf("invalid key id: %d", e.KeyId)
}

func (InvalidKeyIdError) Code() ErrorCode { return ErrorCodeInvalidKeyId }
