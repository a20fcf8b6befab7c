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

package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

var _ Logger = (*DefaultLogger)(nil)

// Options configures a DefaultLogger.
type Options struct {
	// Level is the minimum level written.
	Level Level
	// Format selects the built-in formatter. Ignored if Formatter is set.
	Format Format
	// Formatter overrides Format.
	Formatter Formatter
	// Output defaults to os.Stderr.
	Output io.Writer
	// TimeFormat is passed to the built-in formatter.
	TimeFormat string
}

// sink is shared by a logger and every logger derived from it with WithField,
// so derived loggers serialize writes to the same output.
type sink struct {
	mu        sync.Mutex
	out       io.Writer
	formatter Formatter
}

// DefaultLogger writes formatted entries to an io.Writer.
type DefaultLogger struct {
	sink   *sink
	level  Level
	fields map[string]interface{}
}

// New creates a DefaultLogger from opts.
func New(opts Options) *DefaultLogger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	formatter := opts.Formatter
	if formatter == nil {
		switch opts.Format {
		case FormatJSON:
			formatter = &JSONFormatter{TimeFormat: opts.TimeFormat}
		default:
			formatter = &TextFormatter{TimeFormat: opts.TimeFormat}
		}
	}

	return &DefaultLogger{
		sink:  &sink{out: out, formatter: formatter},
		level: opts.Level,
	}
}

// WithFields returns a derived logger. The receiver is not modified.
func (l *DefaultLogger) WithFields(fields map[string]interface{}) Logger {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &DefaultLogger{sink: l.sink, level: l.level, fields: merged}
}

// WithField returns a derived logger with one extra field.
func (l *DefaultLogger) WithField(key string, value interface{}) Logger {
	return l.WithFields(map[string]interface{}{key: value})
}

// Enabled reports whether level passes the logger's threshold.
func (l *DefaultLogger) Enabled(level Level) bool {
	return l.level != LevelSilent && level >= l.level
}

func (l *DefaultLogger) log(level Level, format string, args ...interface{}) {
	if !l.Enabled(level) {
		return
	}

	entry := Entry{
		Time:    time.Now().UTC(),
		Level:   level,
		Message: fmt.Sprintf(format, args...),
		Fields:  l.fields,
	}

	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()

	data, err := l.sink.formatter.Format(entry)
	if err != nil {
		fmt.Fprintf(l.sink.out, "logging error: %v\n", err)
		return
	}
	_, _ = l.sink.out.Write(data)
}

// Debug logs at debug level.
func (l *DefaultLogger) Debug(format string, args ...interface{}) {
	l.log(LevelDebug, format, args...)
}

// Info logs at info level.
func (l *DefaultLogger) Info(format string, args ...interface{}) {
	l.log(LevelInfo, format, args...)
}

// Warn logs at warn level.
func (l *DefaultLogger) Warn(format string, args ...interface{}) {
	l.log(LevelWarn, format, args...)
}

// Error logs at error level.
func (l *DefaultLogger) Error(format string, args ...interface{}) {
	l.log(LevelError, format, args...)
}
