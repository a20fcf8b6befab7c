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
	"errors"
	"fmt"

	"github.com/ThalesGroup/crypto11"
)

// Session is an open crypto11 context on one token.
type Session struct {
	ctx *crypto11.Context
}

// Open loads the module named by u and logs in to its token.
func Open(u *URI, moduleDirs []string) (*Session, error) {
	module, err := u.Module(moduleDirs)
	if err != nil {
		return nil, fmt.Errorf("failed to locate PKCS#11 module: %w", err)
	}

	pin, err := u.PIN()
	if err != nil {
		return nil, err
	}

	cfg := &crypto11.Config{Path: module, Pin: pin}
	if slot, ok := u.Slot(); ok {
		cfg.SlotNumber = &slot
	} else if token := u.Token(); token != "" {
		cfg.TokenLabel = token
	} else {
		return nil, errors.New("pkcs11 URI names neither a token nor a slot")
	}

	ctx, err := crypto11.Configure(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open PKCS#11 session on %s: %w", module, err)
	}
	return &Session{ctx: ctx}, nil
}

// FindKey returns the private key named by u's id or object label. When the
// URI names neither, the token must hold exactly one key pair.
func (s *Session) FindKey(u *URI) (crypto11.Signer, error) {
	id, label := u.ID(), u.Label()

	if id != nil || label != "" {
		var labelBytes []byte
		if label != "" {
			labelBytes = []byte(label)
		}
		key, err := s.ctx.FindKeyPair(id, labelBytes)
		if err != nil {
			return nil, fmt.Errorf("failed to look up key: %w", err)
		}
		if key == nil {
			return nil, fmt.Errorf("no key pair with id=%x object=%q", id, label)
		}
		return key, nil
	}

	keys, err := s.ctx.FindAllKeyPairs()
	if err != nil {
		return nil, fmt.Errorf("failed to list key pairs: %w", err)
	}
	switch len(keys) {
	case 0:
		return nil, errors.New("token holds no key pairs")
	case 1:
		return keys[0], nil
	default:
		return nil, fmt.Errorf("token holds %d key pairs; name one with id or object", len(keys))
	}
}

// Close releases the session.
func (s *Session) Close() error {
	if s.ctx == nil {
		return nil
	}
	err := s.ctx.Close()
	s.ctx = nil
	return err
}
