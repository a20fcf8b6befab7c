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

// Package signing implements the signer capability a manifest engine drives
// during a sign operation: fixed query methods describing the algorithm,
// certificate chain, reserve size and timestamp authority, plus one Sign call
// producing raw signature bytes.
//
// A Profile holds the declarative half and is shared by every variant. The
// CallbackSigner variant delegates Sign to a host-supplied SignFunc; in-process
// key material lives in the key and pkcs11 subpackages.
package signing

import (
	"context"

	"github.com/contentauth/c2pa-bridge/pkg/tsa"
)

// Header is one ordered timestamp-request header.
type Header = tsa.Header

// Signer is the capability contract consumed by the manifest engine.
type Signer interface {
	// Alg is fixed for the lifetime of the signer.
	Alg() Alg
	// Certs returns the DER certificate chain, leaf first.
	Certs() [][]byte
	// ReserveSize is the caller-declared upper bound on signature plus
	// certificate bytes. It is not verified.
	ReserveSize() int
	DirectCoseHandling() bool
	// TimeAuthorityURL returns "" when no TSA is configured.
	TimeAuthorityURL() string
	// TimestampRequestHeaders returns nil when no headers were declared.
	TimestampRequestHeaders() []Header
	// TimestampRequestBody returns the declared override, or a default
	// RFC 3161 request over message.
	TimestampRequestBody(message []byte) ([]byte, error)
	// Sign returns the raw signature over data.
	Sign(ctx context.Context, data []byte) ([]byte, error)
}

// SignFunc is a host signing callback. It is invoked exactly once per Sign
// call and receives a private copy of the bytes to sign.
type SignFunc func(ctx context.Context, data []byte) ([]byte, error)
