/*
 * Copyright (c) 2026, NVIDIA CORPORATION.  All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package errors provides the structured error type returned by the node
// bootstrap compiler. Every error carries a code and, for input problems,
// the property path of the offending field so callers can point users at
// the exact setting that needs to change.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode classifies a compiler error.
type ErrorCode string

const (
	// ErrCodeValidation indicates a malformed or mutually exclusive input.
	ErrCodeValidation ErrorCode = "VALIDATION"
	// ErrCodeUnsupportedCombination indicates inputs that are individually
	// valid but cannot be used together (e.g. kubelet args on Bottlerocket).
	ErrCodeUnsupportedCombination ErrorCode = "UNSUPPORTED_COMBINATION"
	// ErrCodeResolution indicates a value that could not be derived, such as
	// an unknown instance type or an AMI type with no table entry.
	ErrCodeResolution ErrorCode = "RESOLUTION"
	// ErrCodeNotImplemented indicates a recognized but unsupported feature.
	ErrCodeNotImplemented ErrorCode = "NOT_IMPLEMENTED"
	// ErrCodeGather indicates a failure talking to an AWS API.
	ErrCodeGather ErrorCode = "GATHER"
)

// StructuredError is the error type returned across the compiler.
type StructuredError struct {
	Code    ErrorCode
	Message string
	// Path is the property path of the input that caused the error,
	// e.g. "nodeGroups[0].taints".
	Path    string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *StructuredError) Error() string {
	msg := e.Message
	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, msg, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, msg)
}

// Unwrap returns the underlying cause.
func (e *StructuredError) Unwrap() error {
	return e.Cause
}

// New creates a StructuredError with no path.
func New(code ErrorCode, message string) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
	}
}

// Newf creates a StructuredError from a format string.
func Newf(code ErrorCode, format string, a ...any) *StructuredError {
	return New(code, fmt.Sprintf(format, a...))
}

// NewAt creates a StructuredError anchored at a property path.
func NewAt(code ErrorCode, path, message string) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Path:    path,
	}
}

// Wrap creates a StructuredError that wraps cause.
func Wrap(code ErrorCode, message string, cause error) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WrapWithContext wraps cause and attaches key/value context.
func WrapWithContext(code ErrorCode, message string, cause error, context map[string]any) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Cause:   cause,
		Context: context,
	}
}

// Validation returns an ErrCodeValidation error at path.
func Validation(path, format string, a ...any) *StructuredError {
	return NewAt(ErrCodeValidation, path, fmt.Sprintf(format, a...))
}

// Unsupported returns an ErrCodeUnsupportedCombination error at path.
func Unsupported(path, format string, a ...any) *StructuredError {
	return NewAt(ErrCodeUnsupportedCombination, path, fmt.Sprintf(format, a...))
}

// Resolution returns an ErrCodeResolution error at path.
func Resolution(path, format string, a ...any) *StructuredError {
	return NewAt(ErrCodeResolution, path, fmt.Sprintf(format, a...))
}

// NotImplemented returns an ErrCodeNotImplemented error at path.
func NotImplemented(path, format string, a ...any) *StructuredError {
	return NewAt(ErrCodeNotImplemented, path, fmt.Sprintf(format, a...))
}

// AtPath returns a copy of err re-anchored under prefix. Errors that are not
// StructuredErrors are returned unchanged.
func AtPath(prefix string, err error) error {
	var se *StructuredError
	if prefix == "" || !stderrors.As(err, &se) {
		return err
	}
	cp := *se
	switch {
	case cp.Path == "":
		cp.Path = prefix
	case cp.Path[0] == '[':
		cp.Path = prefix + cp.Path
	default:
		cp.Path = prefix + "." + cp.Path
	}
	return &cp
}

// CodeOf returns the code of the first StructuredError in err's chain, or
// the empty code.
func CodeOf(err error) ErrorCode {
	var se *StructuredError
	if stderrors.As(err, &se) {
		return se.Code
	}
	return ""
}

// PathOf returns the property path of the first StructuredError in err's
// chain.
func PathOf(err error) string {
	var se *StructuredError
	if stderrors.As(err, &se) {
		return se.Path
	}
	return ""
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
