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

package signing

import (
	"bytes"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/contentauth/c2pa-bridge/pkg/fault"
)

// CertEntryKind is the tag of a CertEntry.
type CertEntryKind int

const (
	// CertPEM is text holding one or more PEM blocks.
	CertPEM CertEntryKind = iota + 1
	// CertBase64 is base64 text of exactly one DER certificate.
	CertBase64
	// CertRaw is a binary buffer. UTF-8 text is decoded with the PEM and
	// base64 rules; anything else is taken as DER.
	CertRaw
)

// CertEntry is one element of a definition's certificate list.
type CertEntry struct {
	Kind CertEntryKind
	Text string
	Raw  []byte
}

const pemPrefix = "-----BEGIN"

// TextEntry classifies host text: PEM if it begins with a BEGIN line after
// trimming, base64 otherwise.
func TextEntry(s string) CertEntry {
	if strings.HasPrefix(strings.TrimSpace(s), pemPrefix) {
		return CertEntry{Kind: CertPEM, Text: s}
	}
	return CertEntry{Kind: CertBase64, Text: s}
}

// RawEntry wraps a binary buffer.
func RawEntry(b []byte) CertEntry {
	return CertEntry{Kind: CertRaw, Raw: b}
}

// ParseCertChain resolves entries into a flat DER chain, preserving order.
// A nil or empty list yields an empty chain. The first malformed entry aborts
// parsing with a configuration error naming its index.
func ParseCertChain(entries []CertEntry) ([][]byte, error) {
	chain := make([][]byte, 0, len(entries))
	for i, entry := range entries {
		ders, err := entry.decode()
		if err != nil {
			var fe *fault.Error
			if errors.As(err, &fe) {
				fe.Index = i
				return nil, fe
			}
			return nil, err
		}
		chain = append(chain, ders...)
	}
	return chain, nil
}

func (e CertEntry) decode() ([][]byte, error) {
	switch e.Kind {
	case CertPEM, CertBase64:
		return decodeText(e.Text)
	case CertRaw:
		if !utf8.Valid(e.Raw) {
			return [][]byte{append([]byte(nil), e.Raw...)}, nil
		}
		return decodeText(string(e.Raw))
	default:
		return nil, certError("unsupported certificate entry", nil)
	}
}

func certError(msg string, cause error) *fault.Error {
	return fault.ConfigAt("certs", fault.NoIndex, msg, cause)
}

// decodeText applies the text rules. The tag is not trusted because binary
// entries that happen to be text reach here too.
func decodeText(s string) ([][]byte, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil, certError("certificate string is empty", nil)
	}
	if strings.HasPrefix(trimmed, pemPrefix) {
		return decodePEM(trimmed)
	}
	return decodeBase64(trimmed)
}

// decodePEM decodes every block in s. pem.Decode silently skips blocks it
// cannot parse, so each step must consume exactly one BEGIN marker.
func decodePEM(s string) ([][]byte, error) {
	var ders [][]byte
	rest := []byte(s)
	for bytes.Contains(rest, []byte(pemPrefix)) {
		block, next := pem.Decode(rest)
		if block == nil {
			if len(ders) == 0 {
				return nil, certError("certificate string contained no PEM entries", nil)
			}
			return nil, certError("failed to parse PEM certificate data",
				fmt.Errorf("malformed block after entry %d", len(ders)))
		}

		consumed := rest[:len(rest)-len(next)]
		if bytes.Count(consumed, []byte(pemPrefix)) != 1 {
			return nil, certError("failed to parse PEM certificate data",
				fmt.Errorf("malformed block before entry %d", len(ders)))
		}

		ders = append(ders, block.Bytes)
		rest = next
	}

	if len(ders) == 0 {
		return nil, certError("certificate string contained no PEM entries", nil)
	}
	return ders, nil
}

func decodeBase64(s string) ([][]byte, error) {
	sanitized := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	if sanitized == "" {
		return nil, certError("certificate string contained no base64 data", nil)
	}

	der, err := base64.StdEncoding.DecodeString(sanitized)
	if err != nil {
		return nil, certError("failed to decode base64 certificate data", err)
	}
	return [][]byte{der}, nil
}
