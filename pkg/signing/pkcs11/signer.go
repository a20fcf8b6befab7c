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

package pkcs11

import (
	"fmt"

	"github.com/contentauth/c2pa-bridge/pkg/fault"
	"github.com/contentauth/c2pa-bridge/pkg/signing"
	"github.com/contentauth/c2pa-bridge/pkg/signing/key"
)

// Options configures NewSigner.
type Options struct {
	// URI is an RFC 7512 pkcs11: URI naming the token and key.
	URI string
	// ModuleDirs overrides DefaultModuleDirs for module-name lookup.
	ModuleDirs []string
	// Definition carries the declarative signer configuration. Alg may be
	// left empty to derive it from the token key.
	Definition signing.Definition
}

// Signer is a key.Signer whose key stays in the token. Close must be called
// once signing is finished.
type Signer struct {
	*key.Signer
	session *Session
}

// NewSigner opens the token and binds its key.
func NewSigner(opts Options) (*Signer, error) {
	u, err := ParseURI(opts.URI)
	if err != nil {
		return nil, fault.Config("pkcs11Uri", "invalid PKCS#11 URI", err)
	}

	session, err := Open(u, opts.ModuleDirs)
	if err != nil {
		return nil, err
	}

	hsmKey, err := session.FindKey(u)
	if err != nil {
		_ = session.Close()
		return nil, err
	}

	ks, err := key.New(hsmKey, opts.Definition)
	if err != nil {
		_ = session.Close()
		return nil, fmt.Errorf("failed to bind token key: %w", err)
	}

	return &Signer{Signer: ks, session: session}, nil
}

// Close ends the PKCS#11 session.
func (s *Signer) Close() error {
	return s.session.Close()
}
