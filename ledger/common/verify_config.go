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

import "fmt"

// ValidationError represents a structured validation error with additional context
type ValidationError struct {
	Type    ValidationErrorType
	Message string
	Details map[string]any
	Cause   error
}

type ValidationErrorType string

const (
	// ValidationErrorTypeTransaction covers rejections caused by the
	// transaction content or the current policy state
	ValidationErrorTypeTransaction ValidationErrorType = "transaction"
	// ValidationErrorTypeAuthorization covers missing identity or authority
	ValidationErrorTypeAuthorization ValidationErrorType = "authorization"
)

func (e ValidationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e ValidationError) Unwrap() error {
	return e.Cause
}

// Code returns the code of the wrapped cause
func (e ValidationError) Code() ErrorCode {
	return ErrorCodeOf(e.Cause)
}

// NewValidationError creates a new structured validation error
func NewValidationError(
	errType ValidationErrorType,
	message string,
	details map[string]any,
	cause error,
) *ValidationError {
	return &ValidationError{
		Type:    errType,
		Message: message,
		Details: details,
		Cause:   cause,
	}
}

// NewAuthorizationError wraps an authorization failure for the named call
func NewAuthorizationError(call string, cause error) *ValidationError {
	return NewValidationError(
		ValidationErrorTypeAuthorization,
		call+" not authorized",
		map[string]any{"call": call},
		cause,
	)
}
