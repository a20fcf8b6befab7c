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
	"encoding/json"
	"fmt"
	"sync"

	invopop "github.com/invopop/jsonschema"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/contentauth/c2pa-bridge/pkg/fault"
)

const schemaURL = "https://contentauth.github.io/c2pa-bridge/signer-definition.schema.json"

// File documents the on-disk definition format. It is used only to generate
// the JSON Schema; decoding goes through document.
type File struct {
	ReserveSize        int        `json:"reserveSize,omitempty" jsonschema:"description=Upper bound on signature plus certificate bytes"`
	Alg                string     `json:"alg,omitempty" jsonschema:"description=Signing algorithm such as es256 or ps256"`
	StrictAlg          bool       `json:"strictAlg,omitempty" jsonschema:"description=Reject unknown algorithm names instead of falling back to ps256"`
	Certs              []string   `json:"certs,omitempty" jsonschema:"description=PEM bundles or base64 DER certificates; leaf first"`
	CertFiles          []string   `json:"certFiles,omitempty" jsonschema:"description=Certificate files appended after certs"`
	DirectCoseHandling bool       `json:"directCoseHandling,omitempty"`
	TSAURL             string     `json:"tsaUrl,omitempty" jsonschema:"description=RFC 3161 time stamp authority"`
	TSAHeaders         [][]string `json:"tsaHeaders,omitempty" jsonschema:"description=Ordered name and value pairs sent to the TSA"`
	TSABody            string     `json:"tsaBody,omitempty" jsonschema:"description=Timestamp request body sent verbatim"`
	TSABodyFile        string     `json:"tsaBodyFile,omitempty"`
}

var (
	schemaOnce     sync.Once
	schemaJSON     []byte
	schemaCompiled *jsonschema.Schema
	schemaErr      error
)

func loadSchema() {
	r := &invopop.Reflector{ExpandedStruct: true}
	s := r.Reflect(&File{})
	s.ID = schemaURL

	schemaJSON, schemaErr = json.MarshalIndent(s, "", "  ")
	if schemaErr != nil {
		return
	}
	schemaCompiled, schemaErr = jsonschema.CompileString(schemaURL, string(schemaJSON))
}

// Schema returns the JSON Schema of the definition format.
func Schema() ([]byte, error) {
	schemaOnce.Do(loadSchema)
	if schemaErr != nil {
		return nil, fmt.Errorf("failed to build definition schema: %w", schemaErr)
	}
	return append([]byte(nil), schemaJSON...), nil
}

// Validate checks a YAML or JSON definition document against Schema. It
// catches unknown keys and mistyped scalars; per-entry checks are left to
// Parse.
func Validate(data []byte) error {
	schemaOnce.Do(loadSchema)
	if schemaErr != nil {
		return fmt.Errorf("failed to build definition schema: %w", schemaErr)
	}

	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fault.Config("definition", "malformed document", err)
	}
	if raw == nil {
		raw = map[string]interface{}{}
	}

	// Round-trip through JSON so the validator sees json.Number values.
	buf, err := json.Marshal(raw)
	if err != nil {
		return fault.Config("definition", "document is not representable as JSON", err)
	}
	dec := json.NewDecoder(bytes.NewReader(buf))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return fault.Config("definition", "document is not representable as JSON", err)
	}

	if err := schemaCompiled.Validate(doc); err != nil {
		return fault.Config("definition", "does not match the signer definition schema", err)
	}
	return nil
}
