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

// Package key provides a signer variant backed by in-process key material.
// Signatures are produced in the raw COSE form the manifest engine embeds:
// IEEE P1363 r||s for ECDSA, RSASSA-PSS for RSA and pure Ed25519.
package key

import (
	"context"
	"crypto"
	"crypto/rand"
	"fmt"
	"os"

	"github.com/veraison/go-cose"

	"github.com/contentauth/c2pa-bridge/pkg/fault"
	"github.com/contentauth/c2pa-bridge/pkg/logging"
	"github.com/contentauth/c2pa-bridge/pkg/signing"
	"github.com/contentauth/c2pa-bridge/pkg/tracing"
)

var _ signing.Signer = (*Signer)(nil)

// Signer signs with a crypto.Signer. The algorithm is taken from the key
// unless the definition names one, in which case the two must agree.
type Signer struct {
	*signing.Profile
	key    crypto.Signer
	cose   cose.Signer
	logger logging.Logger
}

// New wraps key. def.Sign is ignored.
func New(key crypto.Signer, def signing.Definition) (*Signer, error) {
	logger := logging.EnsureLogger(def.Logger)
	pub := key.Public()

	if def.Alg == "" {
		alg, err := signing.AlgForPublicKey(pub)
		if err != nil {
			return nil, fault.Config("alg", "cannot derive an algorithm from the key", err)
		}
		def.Alg = alg.String()
	}

	profile, err := signing.NewProfile(def)
	if err != nil {
		return nil, err
	}
	if err := signing.CheckKeyAlg(pub, profile.Alg()); err != nil {
		return nil, fault.Config("alg", "algorithm does not match the signing key", err)
	}
	if err := signing.CheckLeafKey(profile.Certs(), pub); err != nil {
		return nil, fault.ConfigAt("certs", 0, "leaf certificate does not match the signing key", err)
	}

	coseAlg, err := profile.Alg().COSE()
	if err != nil {
		return nil, fault.Config("alg", "unsupported algorithm", err)
	}
	cs, err := cose.NewSigner(coseAlg, key)
	if err != nil {
		return nil, fault.Config("alg", "failed to create COSE signer", err)
	}

	logger.Debug("key signer ready: alg=%s chain=%d", profile.Alg(), len(profile.Certs()))

	return &Signer{Profile: profile, key: key, cose: cs, logger: logger}, nil
}

// Options configures Load.
type Options struct {
	// PrivateKeyPath is a PEM private key file.
	PrivateKeyPath string
	// Password decrypts an encrypted key.
	Password string
	// Definition carries the declarative signer configuration.
	Definition signing.Definition
}

// Load reads a PEM private key and wraps it.
func Load(opts Options) (*Signer, error) {
	pemBytes, err := os.ReadFile(opts.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}

	key, err := signing.LoadPrivateKeyFromPEM(pemBytes, opts.Password)
	if err != nil {
		return nil, fault.Config("privateKey", "unusable private key", err)
	}
	return New(key, opts.Definition)
}

// Public returns the signing key's public half.
func (s *Signer) Public() crypto.PublicKey {
	return s.key.Public()
}

// Sign returns the raw signature over data.
func (s *Signer) Sign(ctx context.Context, data []byte) ([]byte, error) {
	var sig []byte
	err := tracing.Run(ctx, "signer.sign", map[string]interface{}{
		"signer.alg":        s.Alg().String(),
		"signer.input_size": len(data),
		"signer.variant":    "key",
	}, func(ctx context.Context) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		var err error
		sig, err = s.cose.Sign(rand.Reader, data)
		if err != nil {
			return fmt.Errorf("failed to sign with %s key: %w", s.Alg(), err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("signed %d bytes with %s", len(data), s.Alg())
	return sig, nil
}
