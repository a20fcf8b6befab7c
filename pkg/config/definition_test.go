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

package config

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/contentauth/c2pa-bridge/pkg/fault"
	"github.com/contentauth/c2pa-bridge/pkg/signing"
)

func TestParseYAML(t *testing.T) {
	doc := `
reserveSize: 10240
alg: es384
strictAlg: true
certs:
  - "-----BEGIN CERTIFICATE-----\nAAAA\n-----END CERTIFICATE-----\n"
  - !!binary MIIB
directCoseHandling: true
tsaUrl: http://timestamp.example.com
tsaHeaders:
  - [Authorization, Bearer abc]
  - [X-Trace, "1", ignored]
tsaBody: !!binary AQID
`
	def, err := Parse([]byte(doc), "")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if def.ReserveSize != 10240 || def.Alg != "es384" || !def.StrictAlg || !def.DirectCoseHandling {
		t.Errorf("scalar fields not decoded: %+v", def)
	}
	if def.TSAURL != "http://timestamp.example.com" {
		t.Errorf("TSAURL = %q", def.TSAURL)
	}

	if len(def.Certs) != 2 {
		t.Fatalf("len(Certs) = %d, want 2", len(def.Certs))
	}
	if def.Certs[0].Kind != signing.CertPEM {
		t.Errorf("Certs[0].Kind = %v, want PEM", def.Certs[0].Kind)
	}
	if def.Certs[1].Kind != signing.CertRaw || !bytes.Equal(def.Certs[1].Raw, []byte{0x30, 0x82, 0x01}) {
		t.Errorf("Certs[1] = %+v, want raw 308201", def.Certs[1])
	}

	wantHeaders := [][]string{{"Authorization", "Bearer abc"}, {"X-Trace", "1"}}
	if len(def.TSAHeaders) != len(wantHeaders) {
		t.Fatalf("TSAHeaders = %v, want %v", def.TSAHeaders, wantHeaders)
	}
	for i := range wantHeaders {
		if def.TSAHeaders[i][0] != wantHeaders[i][0] || def.TSAHeaders[i][1] != wantHeaders[i][1] {
			t.Errorf("TSAHeaders[%d] = %v, want %v", i, def.TSAHeaders[i], wantHeaders[i])
		}
	}

	if !bytes.Equal(def.TSABody, []byte{1, 2, 3}) {
		t.Errorf("TSABody = %x, want 010203", def.TSABody)
	}
	if def.Sign != nil {
		t.Error("Parse() must not set a sign callback")
	}
}

func TestParseJSON(t *testing.T) {
	doc := `{"alg": "ps256", "reserveSize": 4096, "tsaBody": "raw request"}`

	def, err := Parse([]byte(doc), "")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if def.Alg != "ps256" || def.ReserveSize != 4096 {
		t.Errorf("Parse() = %+v", def)
	}
	if string(def.TSABody) != "raw request" {
		t.Errorf("TSABody = %q, want %q", def.TSABody, "raw request")
	}
	if def.Certs != nil || def.TSAHeaders != nil {
		t.Error("absent lists should stay nil")
	}
}

func TestParseEmptyDocument(t *testing.T) {
	def, err := Parse(nil, "")
	if err != nil {
		t.Fatalf("Parse(nil) error = %v", err)
	}
	if def.TSABody != nil {
		t.Error("empty document should have no TSA body")
	}
}

func TestParseEmptyStringBodyIsPresent(t *testing.T) {
	def, err := Parse([]byte(`tsaBody: ""`), "")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if def.TSABody == nil || len(def.TSABody) != 0 {
		t.Errorf("TSABody = %#v, want empty non-nil", def.TSABody)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name      string
		doc       string
		wantField string
		wantIndex int
		wantMsg   string
	}{
		{"header not array", "tsaHeaders: [abc]", "tsaHeaders", 0, "must be an array with [key, value]"},
		{"header too short", "tsaHeaders: [[a, b], [only]]", "tsaHeaders", 1, "must contain at least two elements"},
		{"header name not string", "tsaHeaders: [[1, b]]", "tsaHeaders", 0, "element 0 must be a string"},
		{"header value not string", "tsaHeaders: [[a, [b]]]", "tsaHeaders", 0, "element 1 must be a string"},
		{"headers not list", "tsaHeaders: abc", "tsaHeaders", fault.NoIndex, "must be an array"},
		{"cert not string", "certs: [abc, {a: b}]", "certs", 1, "must be a string or binary buffer"},
		{"body not string", "tsaBody: 42", "tsaBody", fault.NoIndex, "must be a string or binary buffer"},
		{"body twice", "tsaBody: x\ntsaBodyFile: y", "tsaBodyFile", fault.NoIndex, "cannot be combined"},
		{"missing cert file", "certFiles: [does-not-exist.pem]", "certFiles", 0, "failed to read certificate file"},
		{"unknown key", "alg: es256\ncolour: blue", "definition", fault.NoIndex, "does not match"},
		{"malformed", "alg: [", "definition", fault.NoIndex, "malformed document"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), t.TempDir())
			if err == nil {
				t.Fatal("Parse() should fail")
			}

			var fe *fault.Error
			if !errors.As(err, &fe) {
				t.Fatalf("error %v is not a *fault.Error", err)
			}
			if fe.Kind != fault.KindConfiguration {
				t.Errorf("Kind = %v, want ConfigurationError", fe.Kind)
			}
			if fe.Field != tt.wantField || fe.Index != tt.wantIndex {
				t.Errorf("location = %s[%d], want %s[%d]", fe.Field, fe.Index, tt.wantField, tt.wantIndex)
			}
			if !strings.Contains(fe.Message, tt.wantMsg) {
				t.Errorf("Message = %q, want it to contain %q", fe.Message, tt.wantMsg)
			}
		})
	}
}

func TestLoadFileResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "leaf.der"), []byte{0x30, 0x03, 0x01, 0x01, 0xff}, 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "req.tsq"), []byte{9, 9}, 0o600); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "signer.yaml")
	doc := "alg: ed25519\ncertFiles: [leaf.der]\ntsaBodyFile: req.tsq\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}

	def, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if len(def.Certs) != 1 || def.Certs[0].Kind != signing.CertRaw {
		t.Fatalf("Certs = %+v, want one raw entry", def.Certs)
	}
	if !bytes.Equal(def.TSABody, []byte{9, 9}) {
		t.Errorf("TSABody = %x, want 0909", def.TSABody)
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("LoadFile() should fail for a missing file")
	}
}

func TestDefinitionBuildsSigner(t *testing.T) {
	def, err := Parse([]byte("alg: nonsense\nreserveSize: 1024\ntsaHeaders: [[a, b]]\n"), "")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	def.Sign = func(_ context.Context, data []byte) ([]byte, error) { return data, nil }

	s, err := signing.FromDefinition(def)
	if err != nil {
		t.Fatalf("FromDefinition() error = %v", err)
	}
	if s.Alg() != signing.AlgPS256 {
		t.Errorf("Alg() = %v, want ps256 fallback", s.Alg())
	}
	if h := s.TimestampRequestHeaders(); len(h) != 1 || h[0].Name != "a" {
		t.Errorf("TimestampRequestHeaders() = %v", h)
	}
}

func TestSchema(t *testing.T) {
	raw, err := Schema()
	if err != nil {
		t.Fatalf("Schema() error = %v", err)
	}

	var s struct {
		ID         string                 `json:"$id"`
		Type       string                 `json:"type"`
		Properties map[string]interface{} `json:"properties"`
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		t.Fatalf("schema is not JSON: %v", err)
	}
	if s.ID != schemaURL || s.Type != "object" {
		t.Errorf("schema header = %q %q", s.ID, s.Type)
	}
	for _, key := range []string{"reserveSize", "alg", "certs", "tsaUrl", "tsaHeaders", "tsaBody"} {
		if _, ok := s.Properties[key]; !ok {
			t.Errorf("schema is missing property %q", key)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{"empty", "", false},
		{"full", "alg: es256\nreserveSize: 10\ncerts: [a]\ntsaHeaders: [[a, b]]\n", false},
		{"wrong type", "reserveSize: lots", true},
		{"unknown key", "tsa_url: http://x", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate([]byte(tt.doc))
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
