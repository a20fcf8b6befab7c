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

// Package tsa builds RFC 3161 timestamp requests and exchanges them with a
// time-stamping authority over HTTP.
package tsa

import (
	"bytes"
	"crypto"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/digitorus/timestamp"
)

// ContentTypeQuery and ContentTypeReply are the RFC 3161 HTTP media types.
const (
	ContentTypeQuery = "application/timestamp-query"
	ContentTypeReply = "application/timestamp-reply"
)

// nonceLimit bounds request nonces to 64 bits.
var nonceLimit = new(big.Int).Lsh(big.NewInt(1), 64)

// NewRequest returns a DER-encoded TimeStampReq over message: a SHA-256
// message imprint of message, certReq set and a random 64-bit nonce.
func NewRequest(message []byte) ([]byte, error) {
	nonce, err := rand.Int(rand.Reader, nonceLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to generate timestamp nonce: %w", err)
	}

	req, err := timestamp.CreateRequest(bytes.NewReader(message), &timestamp.RequestOptions{
		Hash:         crypto.SHA256,
		Certificates: true,
		Nonce:        nonce,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create timestamp request: %w", err)
	}
	return req, nil
}

// RequestInfo summarizes a decoded TimeStampReq.
type RequestInfo struct {
	Hash          crypto.Hash
	HashedMessage []byte
	CertReq       bool
	Nonce         *big.Int
	Policy        string
}

// InspectRequest decodes a DER TimeStampReq. It accepts both bodies built by
// NewRequest and caller-supplied overrides.
func InspectRequest(der []byte) (*RequestInfo, error) {
	req, err := timestamp.ParseRequest(der)
	if err != nil {
		return nil, fmt.Errorf("failed to parse timestamp request: %w", err)
	}

	info := &RequestInfo{
		Hash:          req.HashAlgorithm,
		HashedMessage: req.HashedMessage,
		CertReq:       req.Certificates,
		Nonce:         req.Nonce,
	}
	if len(req.TSAPolicyOID) > 0 {
		info.Policy = req.TSAPolicyOID.String()
	}
	return info, nil
}
