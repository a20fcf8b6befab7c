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
	"github.com/contentauth/c2pa-bridge/pkg/fault"
	"github.com/contentauth/c2pa-bridge/pkg/logging"
	"github.com/contentauth/c2pa-bridge/pkg/tsa"
)

// Definition is the declarative signer configuration supplied by the host.
type Definition struct {
	// Sign is the host callback. Required by FromDefinition; ignored by
	// variants that sign with their own key material.
	Sign SignFunc

	ReserveSize int

	// Alg is an algorithm name such as "es256". Unknown names fall back to
	// DefaultAlg unless StrictAlg is set.
	Alg       string
	StrictAlg bool

	// Certs is resolved into a DER chain at construction. Nil is an empty
	// chain.
	Certs []CertEntry

	DirectCoseHandling bool

	TSAURL     string
	TSAHeaders [][]string
	// TSABody overrides the timestamp request when non-nil. An empty non-nil
	// body is returned as is.
	TSABody []byte

	Logger logging.Logger
}

// Profile is the validated, immutable declarative half of a signer. It
// implements every Signer method except Sign.
type Profile struct {
	alg         Alg
	reserveSize int
	certs       [][]byte
	directCose  bool
	tsaURL      string
	tsaHeaders  []Header
	tsaBody     []byte
}

// NewProfile validates def eagerly so a malformed definition fails before
// any asset bytes are read.
func NewProfile(def Definition) (*Profile, error) {
	logger := logging.EnsureLogger(def.Logger)

	if def.ReserveSize < 0 {
		return nil, fault.Config("reserveSize", "must not be negative", nil)
	}

	alg, err := ParseAlg(def.Alg)
	if err != nil {
		if def.StrictAlg {
			return nil, fault.Config("alg", err.Error(), nil)
		}
		logger.Warn("unrecognized signing algorithm %q, using %s", def.Alg, DefaultAlg)
		alg = DefaultAlg
	}

	certs, err := ParseCertChain(def.Certs)
	if err != nil {
		return nil, err
	}

	headers, err := ParseHeaders(def.TSAHeaders)
	if err != nil {
		return nil, err
	}

	var body []byte
	if def.TSABody != nil {
		body = append([]byte{}, def.TSABody...)
	}

	logger.Debug("signer profile: alg=%s certs=%d reserve=%d tsa=%t",
		alg, len(certs), def.ReserveSize, def.TSAURL != "")

	return &Profile{
		alg:         alg,
		reserveSize: def.ReserveSize,
		certs:       certs,
		directCose:  def.DirectCoseHandling,
		tsaURL:      def.TSAURL,
		tsaHeaders:  headers,
		tsaBody:     body,
	}, nil
}

// Alg returns the signing algorithm.
func (p *Profile) Alg() Alg { return p.alg }

// Certs returns the chain. The outer slice is a copy.
func (p *Profile) Certs() [][]byte {
	return append([][]byte(nil), p.certs...)
}

// ReserveSize returns the declared reserve size.
func (p *Profile) ReserveSize() int { return p.reserveSize }

// DirectCoseHandling returns the declared flag.
func (p *Profile) DirectCoseHandling() bool { return p.directCose }

// TimeAuthorityURL returns the TSA URL or "".
func (p *Profile) TimeAuthorityURL() string { return p.tsaURL }

// TimestampRequestHeaders returns the declared headers in order, or nil.
func (p *Profile) TimestampRequestHeaders() []Header {
	if len(p.tsaHeaders) == 0 {
		return nil
	}
	return append([]Header(nil), p.tsaHeaders...)
}

// TimestampRequestBody returns the override body verbatim when one was
// declared, otherwise a fresh RFC 3161 request over message.
func (p *Profile) TimestampRequestBody(message []byte) ([]byte, error) {
	if p.tsaBody != nil {
		return append([]byte{}, p.tsaBody...), nil
	}
	return tsa.NewRequest(message)
}

// WithAlg returns a copy of p using alg. Key-backed variants use it to pin the
// algorithm their key dictates.
func (p *Profile) WithAlg(alg Alg) *Profile {
	cp := *p
	cp.alg = alg
	return &cp
}
