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
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rsa"
	"fmt"
)

// AlgForPublicKey returns the algorithm a key of this type signs with. RSA
// keys map to the PSS variant matching their size class.
func AlgForPublicKey(pub crypto.PublicKey) (Alg, error) {
	switch k := pub.(type) {
	case *ecdsa.PublicKey:
		switch k.Curve {
		case elliptic.P256():
			return AlgES256, nil
		case elliptic.P384():
			return AlgES384, nil
		case elliptic.P521():
			return AlgES512, nil
		default:
			return 0, fmt.Errorf("unsupported ECDSA curve: %s", k.Curve.Params().Name)
		}
	case *rsa.PublicKey:
		bits := k.N.BitLen()
		switch {
		case bits < 2048:
			return 0, fmt.Errorf("RSA key too small: %d bits", bits)
		case bits <= 2048:
			return AlgPS256, nil
		case bits <= 3072:
			return AlgPS384, nil
		default:
			return AlgPS512, nil
		}
	case ed25519.PublicKey:
		return AlgEd25519, nil
	default:
		return 0, fmt.Errorf("unsupported key type: %T", pub)
	}
}

// CheckKeyAlg reports whether a key of pub's type can sign with alg.
func CheckKeyAlg(pub crypto.PublicKey, alg Alg) error {
	switch k := pub.(type) {
	case *ecdsa.PublicKey:
		want, err := AlgForPublicKey(k)
		if err != nil {
			return err
		}
		if want != alg {
			return fmt.Errorf("%s key cannot sign with %s", k.Curve.Params().Name, alg)
		}
	case *rsa.PublicKey:
		if alg != AlgPS256 && alg != AlgPS384 && alg != AlgPS512 {
			return fmt.Errorf("RSA key cannot sign with %s", alg)
		}
	case ed25519.PublicKey:
		if alg != AlgEd25519 {
			return fmt.Errorf("ed25519 key cannot sign with %s", alg)
		}
	default:
		return fmt.Errorf("unsupported key type: %T", pub)
	}
	return nil
}
