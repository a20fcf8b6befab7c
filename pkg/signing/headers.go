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

import "github.com/contentauth/c2pa-bridge/pkg/fault"

// ParseHeaders converts declared [name, value] pairs into ordered headers.
// Entries with fewer than two elements fail with their index; elements past
// the second are ignored. Nil or empty input yields nil.
func ParseHeaders(pairs [][]string) ([]Header, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	headers := make([]Header, 0, len(pairs))
	for i, pair := range pairs {
		if len(pair) < 2 {
			return nil, fault.ConfigAt("tsaHeaders", i, "must contain at least two elements", nil)
		}
		headers = append(headers, Header{Name: pair[0], Value: pair[1]})
	}
	return headers, nil
}
