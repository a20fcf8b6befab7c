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

// Package logging provides the leveled, structured logger used by the bridge.
// Library code accepts a Logger and falls back to EnsureLogger(nil); the CLI
// builds one from its --log-level and --log-format flags. Output goes to
// stderr by default because stdout carries command data.
package logging

import (
	"fmt"
	"strings"
)

// Level represents the severity level of a log message.
type Level int

const (
	// LevelDebug is used for construction-time decisions and per-call detail.
	LevelDebug Level = iota
	// LevelInfo is used for general progress messages.
	LevelInfo
	// LevelWarn is used for tolerated misconfiguration, such as an
	// unrecognized signing algorithm that falls back to the default.
	LevelWarn
	// LevelError is used for failures.
	LevelError
	// LevelSilent disables all output.
	LevelSilent
)

// String returns the lower-case name of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelSilent:
		return "silent"
	default:
		return "unknown"
	}
}

// ParseLevel parses a level name. Matching is case-insensitive.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	case "silent", "none", "off":
		return LevelSilent, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Format selects how entries are rendered.
type Format int

const (
	// FormatText renders human-readable lines.
	FormatText Format = iota
	// FormatJSON renders one JSON object per line.
	FormatJSON
)

// String returns the name of the format.
func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatJSON:
		return "json"
	default:
		return "unknown"
	}
}

// ParseFormat parses a format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "plain", "":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return FormatText, fmt.Errorf("unknown log format %q", s)
	}
}

// Logger is the structured logging interface accepted throughout the module.
type Logger interface {
	// Debug logs at debug level with printf-style formatting.
	Debug(format string, args ...interface{})
	// Info logs at info level with printf-style formatting.
	Info(format string, args ...interface{})
	// Warn logs at warn level with printf-style formatting.
	Warn(format string, args ...interface{})
	// Error logs at error level with printf-style formatting.
	Error(format string, args ...interface{})

	// Enabled reports whether messages at level would be written.
	Enabled(level Level) bool

	// WithField returns a Logger that adds key=value to every entry.
	WithField(key string, value interface{}) Logger
	// WithFields returns a Logger that adds all fields to every entry.
	WithFields(fields map[string]interface{}) Logger
}

// EnsureLogger returns l if non-nil, otherwise an info-level text logger on
// stderr.
func EnsureLogger(l Logger) Logger {
	if l == nil {
		return New(Options{Level: LevelInfo})
	}
	return l
}

// Discard returns a Logger that writes nothing.
func Discard() Logger {
	return New(Options{Level: LevelSilent})
}
