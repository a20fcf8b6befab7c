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

// Package config loads declarative signer definitions from YAML or JSON
// files. JSON documents are accepted as YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/contentauth/c2pa-bridge/pkg/fault"
	"github.com/contentauth/c2pa-bridge/pkg/signing"
)

// document mirrors File but keeps the union-typed fields as nodes so each
// entry can be checked with its index.
type document struct {
	ReserveSize        int       `yaml:"reserveSize"`
	Alg                string    `yaml:"alg"`
	StrictAlg          bool      `yaml:"strictAlg"`
	Certs              yaml.Node `yaml:"certs"`
	CertFiles          []string  `yaml:"certFiles"`
	DirectCoseHandling bool      `yaml:"directCoseHandling"`
	TSAURL             string    `yaml:"tsaUrl"`
	TSAHeaders         yaml.Node `yaml:"tsaHeaders"`
	TSABody            yaml.Node `yaml:"tsaBody"`
	TSABodyFile        string    `yaml:"tsaBodyFile"`
}

// LoadFile reads a definition file. Relative certFiles and tsaBodyFile paths
// are resolved against the file's directory.
func LoadFile(path string) (signing.Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return signing.Definition{}, fmt.Errorf("failed to read signer definition: %w", err)
	}
	def, err := Parse(data, filepath.Dir(path))
	if err != nil {
		return signing.Definition{}, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

// Parse decodes a definition document and validates it against Schema.
// The returned Definition has no Sign callback or Logger; callers supply
// those. Certificates and headers are checked again by the signer
// constructors.
func Parse(data []byte, baseDir string) (signing.Definition, error) {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return signing.Definition{}, fault.Config("definition", "malformed document", err)
	}

	def := signing.Definition{
		ReserveSize:        doc.ReserveSize,
		Alg:                doc.Alg,
		StrictAlg:          doc.StrictAlg,
		DirectCoseHandling: doc.DirectCoseHandling,
		TSAURL:             doc.TSAURL,
	}

	var err error
	if def.Certs, err = certEntries(&doc.Certs); err != nil {
		return signing.Definition{}, err
	}
	for i, p := range doc.CertFiles {
		raw, err := os.ReadFile(resolve(baseDir, p))
		if err != nil {
			return signing.Definition{}, fault.ConfigAt("certFiles", i, "failed to read certificate file", err)
		}
		def.Certs = append(def.Certs, signing.RawEntry(raw))
	}

	if def.TSAHeaders, err = headerPairs(&doc.TSAHeaders); err != nil {
		return signing.Definition{}, err
	}

	if def.TSABody, err = body(&doc.TSABody); err != nil {
		return signing.Definition{}, err
	}
	if doc.TSABodyFile != "" {
		if def.TSABody != nil {
			return signing.Definition{}, fault.Config("tsaBodyFile", "cannot be combined with tsaBody", nil)
		}
		if def.TSABody, err = os.ReadFile(resolve(baseDir, doc.TSABodyFile)); err != nil {
			return signing.Definition{}, fault.Config("tsaBodyFile", "failed to read timestamp request body", err)
		}
	}

	if err := Validate(data); err != nil {
		return signing.Definition{}, err
	}
	return def, nil
}

func resolve(baseDir, p string) string {
	if filepath.IsAbs(p) || baseDir == "" {
		return p
	}
	return filepath.Join(baseDir, p)
}

func absent(n *yaml.Node) bool {
	return n.Kind == 0 || (n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null")
}

// scalarBytes returns the content of a string or !!binary scalar.
func scalarBytes(n *yaml.Node) ([]byte, bool, bool) {
	if n.Kind != yaml.ScalarNode {
		return nil, false, false
	}
	switch n.ShortTag() {
	case "!!str":
		return []byte(n.Value), false, true
	case "!!binary":
		var s string
		if err := n.Decode(&s); err != nil {
			return nil, true, false
		}
		return []byte(s), true, true
	default:
		return nil, false, false
	}
}

func certEntries(n *yaml.Node) ([]signing.CertEntry, error) {
	if absent(n) {
		return nil, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, fault.Config("certs", "must be an array", nil)
	}

	entries := make([]signing.CertEntry, 0, len(n.Content))
	for i, item := range n.Content {
		b, binary, ok := scalarBytes(item)
		switch {
		case !ok:
			return nil, fault.ConfigAt("certs", i, "must be a string or binary buffer", nil)
		case binary:
			entries = append(entries, signing.RawEntry(b))
		default:
			entries = append(entries, signing.TextEntry(string(b)))
		}
	}
	return entries, nil
}

func headerPairs(n *yaml.Node) ([][]string, error) {
	if absent(n) {
		return nil, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, fault.Config("tsaHeaders", "must be an array", nil)
	}

	pairs := make([][]string, 0, len(n.Content))
	for i, item := range n.Content {
		if item.Kind != yaml.SequenceNode {
			return nil, fault.ConfigAt("tsaHeaders", i, "must be an array with [key, value]", nil)
		}
		if len(item.Content) < 2 {
			return nil, fault.ConfigAt("tsaHeaders", i, "must contain at least two elements", nil)
		}
		pair := make([]string, 2)
		for j := range pair {
			el := item.Content[j]
			if el.Kind != yaml.ScalarNode || el.ShortTag() != "!!str" {
				return nil, fault.ConfigAt("tsaHeaders", i, fmt.Sprintf("element %d must be a string", j), nil)
			}
			pair[j] = el.Value
		}
		pairs = append(pairs, pair)
	}
	return pairs, nil
}

func body(n *yaml.Node) ([]byte, error) {
	if absent(n) {
		return nil, nil
	}
	b, _, ok := scalarBytes(n)
	if !ok {
		return nil, fault.Config("tsaBody", "must be a string or binary buffer", nil)
	}
	return b, nil
}
