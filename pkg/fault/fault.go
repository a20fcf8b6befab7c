// Copyright 2025 The C2PA Bridge Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package fault defines the error taxonomy shared by the byte-source adapter,
// the signer bridge and the engine glue.
package fault

import (
	"errors"
	"fmt"
)

// Kind represents the category of a bridge error.
type Kind int

const (
	// KindUnknown indicates an unclassified error.
	KindUnknown Kind = iota

	// KindConfiguration indicates a malformed signer definition. Raised at
	// construction time; no signer is produced.
	KindConfiguration

	// KindSourceFetchFailed indicates the host byte source could not serve a
	// requested range.
	KindSourceFetchFailed

	// KindSeekOutOfRange indicates a seek that would move the cursor before
	// the start of the source.
	KindSeekOutOfRange

	// KindSignCallbackFailed indicates the host signing callback failed or
	// could not be invoked.
	KindSignCallbackFailed

	// KindEngine indicates an error propagated from the manifest engine.
	KindEngine
)

// Sentinels usable with errors.Is. A *Error matches the sentinel of its Kind.
var (
	ErrConfiguration     = errors.New("configuration error")
	ErrSourceFetchFailed = errors.New("source fetch failed")
	ErrSeekOutOfRange    = errors.New("seek out of range")
	ErrSignCallback      = errors.New("sign callback failed")
	ErrEngine            = errors.New("engine error")
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "ConfigurationError"
	case KindSourceFetchFailed:
		return "SourceFetchFailed"
	case KindSeekOutOfRange:
		return "SeekOutOfRange"
	case KindSignCallbackFailed:
		return "SignCallbackFailed"
	case KindEngine:
		return "EngineError"
	default:
		return "UnknownError"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindConfiguration:
		return ErrConfiguration
	case KindSourceFetchFailed:
		return ErrSourceFetchFailed
	case KindSeekOutOfRange:
		return ErrSeekOutOfRange
	case KindSignCallbackFailed:
		return ErrSignCallback
	case KindEngine:
		return ErrEngine
	default:
		return nil
	}
}

// NoIndex marks an Error that does not refer to a list entry.
const NoIndex = -1

// Error is a structured error carrying enough context (field, entry index)
// to diagnose a misconfiguration without inspecting internal state.
//
// Example usage:
//
//	var fe *fault.Error
//	if errors.As(err, &fe) && fe.Kind == fault.KindConfiguration {
//	    log.Printf("bad signer definition: field=%s index=%d", fe.Field, fe.Index)
//	}
type Error struct {
	// Kind categorizes the error for programmatic handling.
	Kind Kind

	// Field is the definition field or operation the error relates to (optional).
	Field string

	// Index is the offending entry within Field, or NoIndex.
	Index int

	// Message is a human-readable description of what went wrong.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	where := e.Field
	if where != "" && e.Index != NoIndex {
		where = fmt.Sprintf("%s[%d]", e.Field, e.Index)
	}

	msg := e.Message
	if where != "" {
		msg = fmt.Sprintf("%s: %s", where, msg)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

// Unwrap returns the underlying cause for error chain unwrapping.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is the sentinel for this error's kind.
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// New creates an error of the given kind without field context.
func New(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Index: NoIndex, Message: message, Cause: cause}
}

// Config creates a configuration error for a definition field.
func Config(field, message string, cause error) *Error {
	return &Error{Kind: KindConfiguration, Field: field, Index: NoIndex, Message: message, Cause: cause}
}

// ConfigAt creates a configuration error for one entry of a list field.
func ConfigAt(field string, index int, message string, cause error) *Error {
	return &Error{Kind: KindConfiguration, Field: field, Index: index, Message: message, Cause: cause}
}

// Engine wraps an error returned by the manifest engine. The cause is kept
// verbatim and remains reachable through errors.Unwrap.
func Engine(op string, cause error) error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: KindEngine, Field: op, Index: NoIndex, Message: "engine operation failed", Cause: cause}
}

// IsKind reports whether err, or any error it wraps, is an *Error of kind.
func IsKind(err error, kind Kind) bool {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind == kind
	}
	return false
}
