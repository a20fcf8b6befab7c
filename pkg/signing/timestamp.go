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

	"github.com/contentauth/c2pa-bridge/pkg/tsa"
)

// RequestTimestamp builds s's timestamp body for message and posts it to s's
// time authority with s's headers.
func RequestTimestamp(ctx context.Context, s Signer, client *tsa.Client, message []byte) (*tsa.Response, error) {
	url := s.TimeAuthorityURL()
	if url == "" {
		return nil, fmt.Errorf("signer has no time authority URL")
	}

	body, err := s.TimestampRequestBody(message)
	if err != nil {
		return nil, err
	}
	return client.Fetch(ctx, url, s.TimestampRequestHeaders(), body)
}
