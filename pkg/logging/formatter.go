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
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Entry is a single record handed to a Formatter.
type Entry struct {
	Time    time.Time
	Level   Level
	Message string
	Fields  map[string]interface{}
}

// Formatter renders an Entry, including the trailing newline.
type Formatter interface {
	Format(entry Entry) ([]byte, error)
}

// TextFormatter renders entries as:
//
//	[2006-01-02T15:04:05Z] WARN message key=value other=value
//
// Fields are sorted by key so output is stable.
type TextFormatter struct {
	// TimeFormat enables a leading timestamp when non-empty.
	TimeFormat string
}

// Format implements Formatter.
func (f *TextFormatter) Format(entry Entry) ([]byte, error) {
	var b strings.Builder

	if f.TimeFormat != "" {
		b.WriteString("[")
		b.WriteString(entry.Time.Format(f.TimeFormat))
		b.WriteString("] ")
	}
	b.WriteString(strings.ToUpper(entry.Level.String()))
	b.WriteString(" ")
	b.WriteString(entry.Message)

	for _, k := range sortedKeys(entry.Fields) {
		fmt.Fprintf(&b, " %s=%v", k, entry.Fields[k])
	}
	b.WriteString("\n")

	return []byte(b.String()), nil
}

type jsonEntry struct {
	Time    string                 `json:"time"`
	Level   string                 `json:"level"`
	Message string                 `json:"msg"`
	Fields  map[string]interface{} `json:"fields,omitempty"`
}

// JSONFormatter renders one JSON object per entry.
type JSONFormatter struct {
	// TimeFormat defaults to time.RFC3339.
	TimeFormat string
}

// Format implements Formatter. Field values that cannot be marshaled are
// rendered with %v instead of failing the entry.
func (f *JSONFormatter) Format(entry Entry) ([]byte, error) {
	timeFmt := f.TimeFormat
	if timeFmt == "" {
		timeFmt = time.RFC3339
	}

	je := jsonEntry{
		Time:    entry.Time.Format(timeFmt),
		Level:   entry.Level.String(),
		Message: entry.Message,
	}
	if len(entry.Fields) > 0 {
		je.Fields = make(map[string]interface{}, len(entry.Fields))
		for k, v := range entry.Fields {
			if _, err := json.Marshal(v); err != nil {
				v = fmt.Sprintf("%v", v)
			}
			je.Fields[k] = v
		}
	}

	data, err := json.Marshal(je)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
