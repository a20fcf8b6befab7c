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
	"crypto"
	"crypto/x509"
	"fmt"

	"github.com/sigstore/sigstore/pkg/cryptoutils"
)

// LoadPrivateKeyFromPEM parses a PEM private key (PKCS#8, SEC 1 or PKCS#1,
// optionally encrypted with password).
func LoadPrivateKeyFromPEM(pemBytes []byte, password string) (crypto.Signer, error) {
	var passFunc cryptoutils.PassFunc
	if password != "" {
		passFunc = func(_ bool) ([]byte, error) {
			return []byte(password), nil
		}
	}

	privKey, err := cryptoutils.UnmarshalPEMToPrivateKey(pemBytes, passFunc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	signer, ok := privKey.(crypto.Signer)
	if !ok {
		return nil, fmt.Errorf("private key does not implement crypto.Signer")
	}
	return signer, nil
}

// CheckLeafKey verifies that the first certificate of chain carries pub.
// An empty chain passes.
func CheckLeafKey(chain [][]byte, pub crypto.PublicKey) error {
	if len(chain) == 0 {
		return nil
	}

	leaf, err := x509.ParseCertificate(chain[0])
	if err != nil {
		return fmt.Errorf("failed to parse leaf certificate: %w", err)
	}
	if err := cryptoutils.EqualKeys(leaf.PublicKey, pub); err != nil {
		return fmt.Errorf("leaf certificate does not match signing key: %w", err)
	}
	return nil
}

// ParseChain parses DER certificates for display. Entries that are not valid
// X.509 are reported as an error naming their position.
func ParseChain(chain [][]byte) ([]*x509.Certificate, error) {
	certs := make([]*x509.Certificate, 0, len(chain))
	for i, der := range chain {
		cert, err := x509.ParseCertificate(der)
		if err != nil {
			return nil, fmt.Errorf("chain entry %d is not a valid certificate: %w", i, err)
		}
		certs = append(certs, cert)
	}
	return certs, nil
}

// ChainToPEM encodes a DER chain as concatenated PEM blocks.
func ChainToPEM(chain [][]byte) ([]byte, error) {
	certs, err := ParseChain(chain)
	if err != nil {
		return nil, err
	}
	return cryptoutils.MarshalCertificatesToPEM(certs)
}
