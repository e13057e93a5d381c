// Copyright © 2025 Kaleido, Inc.
//
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package types

import (
	"encoding/hex"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

type HexAddress string

// ParseHexAddress validates a 20 byte address, with or without the 0x prefix, and
// returns it in canonical lowercase 0x form
func ParseHexAddress(s string) (HexAddress, error) {
	digits := StripHexPrefix(strings.TrimSpace(s))
	if len(digits) != 40 {
		return "", fmt.Errorf("invalid address '%s': expected 40 hex digits, found %d", s, len(digits))
	}
	if _, err := hex.DecodeString(digits); err != nil {
		return "", fmt.Errorf("invalid address '%s': %w", s, err)
	}
	return HexAddress("0x" + strings.ToLower(digits)), nil
}

// Digits is the lowercase form without the 0x prefix, which is what calldata comparisons use
func (h HexAddress) Digits() string {
	return strings.ToLower(StripHexPrefix(string(h)))
}

func (h HexAddress) String() string {
	return string(h)
}

// Explicitly quote hex addresses so that they are interpreted as string (not int)
func (h HexAddress) MarshalYAML() (interface{}, error) {
	return &yaml.Node{
		Value: string(h),
		Kind:  yaml.ScalarNode,
		Style: yaml.DoubleQuotedStyle,
	}, nil
}

func StripHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}
