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

package fault

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindUnknown, "UnknownError"},
		{KindConfiguration, "ConfigurationError"},
		{KindSourceFetchFailed, "SourceFetchFailed"},
		{KindSeekOutOfRange, "SeekOutOfRange"},
		{KindSignCallbackFailed, "SignCallbackFailed"},
		{KindEngine, "EngineError"},
		{Kind(99), "UnknownError"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "field and index",
			err:  ConfigAt("certs", 2, "certificate string is empty", nil),
			want: "ConfigurationError: certs[2]: certificate string is empty",
		},
		{
			name: "field only",
			err:  Config("tsaBody", "must be a string or binary buffer", nil),
			want: "ConfigurationError: tsaBody: must be a string or binary buffer",
		},
		{
			name: "with cause",
			err:  New(KindSignCallbackFailed, "callback returned an error", errors.New("key offline")),
			want: "SignCallbackFailed: callback returned an error: key offline",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsKindThroughWrapping(t *testing.T) {
	base := ConfigAt("tsaHeaders", 0, "must contain at least two elements", nil)
	wrapped := fmt.Errorf("failed to create signer: %w", base)

	if !IsKind(wrapped, KindConfiguration) {
		t.Error("IsKind() should see through fmt.Errorf wrapping")
	}
	if IsKind(wrapped, KindEngine) {
		t.Error("IsKind() matched the wrong kind")
	}
	if !errors.Is(wrapped, ErrConfiguration) {
		t.Error("errors.Is() should match the configuration sentinel")
	}
	if errors.Is(wrapped, ErrSourceFetchFailed) {
		t.Error("errors.Is() matched the wrong sentinel")
	}
	if IsKind(nil, KindConfiguration) {
		t.Error("IsKind(nil) should be false")
	}
}

func TestEngineKeepsCause(t *testing.T) {
	cause := errors.New("unsupported format")
	err := Engine("sign", cause)

	if !errors.Is(err, cause) {
		t.Error("engine error should unwrap to its cause")
	}
	if !errors.Is(err, ErrEngine) {
		t.Error("engine error should match ErrEngine")
	}
	if !strings.Contains(err.Error(), "unsupported format") {
		t.Errorf("engine error message lost the cause: %q", err.Error())
	}
	if Engine("sign", nil) != nil {
		t.Error("Engine(nil) should return nil")
	}
}
