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
	"fmt"
	"strings"

	"github.com/veraison/go-cose"
)

// Alg identifies a signature algorithm understood by the manifest engine.
type Alg int

const (
	AlgES256 Alg = iota + 1
	AlgES384
	AlgES512
	AlgPS256
	AlgPS384
	AlgPS512
	AlgEd25519
)

// DefaultAlg is used when a definition names an algorithm that is not
// recognized and strict checking is off.
const DefaultAlg = AlgPS256

var algNames = map[Alg]string{
	AlgES256:   "es256",
	AlgES384:   "es384",
	AlgES512:   "es512",
	AlgPS256:   "ps256",
	AlgPS384:   "ps384",
	AlgPS512:   "ps512",
	AlgEd25519: "ed25519",
}

// String returns the lower-case algorithm name.
func (a Alg) String() string {
	if name, ok := algNames[a]; ok {
		return name
	}
	return fmt.Sprintf("alg(%d)", int(a))
}

// ParseAlg parses an algorithm name case-insensitively.
func ParseAlg(name string) (Alg, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for alg, s := range algNames {
		if s == n {
			return alg, nil
		}
	}
	return 0, fmt.Errorf("unknown signing algorithm %q", name)
}

// Algs lists the recognized algorithms in a stable order.
func Algs() []Alg {
	return []Alg{AlgES256, AlgES384, AlgES512, AlgPS256, AlgPS384, AlgPS512, AlgEd25519}
}

// COSE returns the COSE algorithm identifier.
func (a Alg) COSE() (cose.Algorithm, error) {
	switch a {
	case AlgES256:
		return cose.AlgorithmES256, nil
	case AlgES384:
		return cose.AlgorithmES384, nil
	case AlgES512:
		return cose.AlgorithmES512, nil
	case AlgPS256:
		return cose.AlgorithmPS256, nil
	case AlgPS384:
		return cose.AlgorithmPS384, nil
	case AlgPS512:
		return cose.AlgorithmPS512, nil
	case AlgEd25519:
		return cose.AlgorithmEdDSA, nil
	default:
		return 0, fmt.Errorf("no COSE identifier for %s", a)
	}
}

// Hash returns the digest used before signing. Ed25519 signs the message
// directly and returns 0.
func (a Alg) Hash() crypto.Hash {
	switch a {
	case AlgES256, AlgPS256:
		return crypto.SHA256
	case AlgES384, AlgPS384:
		return crypto.SHA384
	case AlgES512, AlgPS512:
		return crypto.SHA512
	default:
		return 0
	}
}
