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
	"context"
	"fmt"

	"github.com/contentauth/c2pa-bridge/pkg/fault"
	"github.com/contentauth/c2pa-bridge/pkg/logging"
	"github.com/contentauth/c2pa-bridge/pkg/tracing"
)

var _ Signer = (*CallbackSigner)(nil)

// CallbackSigner delegates signature computation to a host SignFunc.
type CallbackSigner struct {
	*Profile
	sign   SignFunc
	logger logging.Logger
}

// FromDefinition validates def and returns a signer bound to def.Sign.
func FromDefinition(def Definition) (*CallbackSigner, error) {
	if def.Sign == nil {
		return nil, fault.Config("sign", "a signing callback is required", nil)
	}

	profile, err := NewProfile(def)
	if err != nil {
		return nil, err
	}

	return &CallbackSigner{
		Profile: profile,
		sign:    def.Sign,
		logger:  logging.EnsureLogger(def.Logger),
	}, nil
}

// Sign invokes the callback once with a copy of data and returns its result.
// The bridge adds no timeout or retry; cancellation is up to ctx and the
// callback. Callback errors and panics are reported as SignCallbackFailed.
func (s *CallbackSigner) Sign(ctx context.Context, data []byte) ([]byte, error) {
	var sig []byte
	err := tracing.Run(ctx, "signer.sign", map[string]interface{}{
		"signer.alg":        s.Alg().String(),
		"signer.input_size": len(data),
	}, func(ctx context.Context) error {
		var err error
		sig, err = s.invoke(ctx, data)
		return err
	})
	if err != nil {
		return nil, err
	}
	return sig, nil
}

func (s *CallbackSigner) invoke(ctx context.Context, data []byte) (sig []byte, err error) {
	if err := ctx.Err(); err != nil {
		return nil, fault.New(fault.KindSignCallbackFailed, "sign operation cancelled before the callback ran", err)
	}

	input := append([]byte{}, data...)

	defer func() {
		if r := recover(); r != nil {
			sig = nil
			err = fault.New(fault.KindSignCallbackFailed, "sign callback panicked", fmt.Errorf("%v", r))
		}
	}()

	out, cbErr := s.sign(ctx, input)
	if cbErr != nil {
		return nil, fault.New(fault.KindSignCallbackFailed, "sign callback returned an error", cbErr)
	}

	s.logger.Debug("sign callback returned %d byte signature over %d bytes", len(out), len(data))
	return out, nil
}
