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

package rewrite

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rainprotocol/xdeploy/pkg/types"
)

// AddressSource is satisfied by *registry.Registry.
type AddressSource interface {
	Address(network types.NetworkName, kind types.ContractKind) (types.HexAddress, error)
}

type Rewriter struct {
	addresses AddressSource
}

func NewRewriter(addresses AddressSource) *Rewriter {
	return &Rewriter{addresses: addresses}
}

// Substitution is one source to destination address swap, as lowercase digits without 0x.
type Substitution struct {
	Kind types.ContractKind
	From string
	To   string
}

// Plan resolves and orders the substitutions for a rewrite without applying them.
// Every kind must have an address on both networks.
func (r *Rewriter) Plan(from, to types.NetworkName, kinds []types.ContractKind) ([]Substitution, error) {
	subs := make([]Substitution, 0, len(kinds))
	for _, kind := range kinds {
		src, err := r.addresses.Address(from, kind)
		if err != nil {
			return nil, err
		}
		dst, err := r.addresses.Address(to, kind)
		if err != nil {
			return nil, err
		}
		subs = append(subs, Substitution{Kind: kind, From: src.Digits(), To: dst.Digits()})
	}

	bySource := map[string]Substitution{}
	deduped := subs[:0]
	for _, s := range subs {
		if prev, ok := bySource[s.From]; ok {
			if prev.To != s.To {
				return nil, &types.AmbiguousAddressMappingError{
					Address: types.HexAddress("0x" + s.From),
					Kinds:   []types.ContractKind{prev.Kind, s.Kind},
				}
			}
			continue
		}
		bySource[s.From] = s
		deduped = append(deduped, s)
	}

	sort.SliceStable(deduped, func(i, j int) bool {
		return len(deduped[i].From) > len(deduped[j].From)
	})
	return deduped, nil
}

// Rewrite swaps every embedded source network address of the given kinds for its
// destination network counterpart. Addresses match in any case and are written as
// lowercase hex; every other byte of calldata is returned as given.
func (r *Rewriter) Rewrite(calldata string, from, to types.NetworkName, kinds []types.ContractKind) (string, error) {
	if from == to {
		return calldata, nil
	}
	subs, err := r.Plan(from, to, kinds)
	if err != nil {
		return "", err
	}
	return Apply(calldata, subs), nil
}

// Apply performs all substitutions in one left to right pass, so a replacement is
// never itself rewritten by a later substitution. At each position the first
// matching substitution wins, which with Plan's ordering is the longest.
func Apply(calldata string, subs []Substitution) string {
	if len(subs) == 0 {
		return calldata
	}
	lower := asciiLower(calldata)
	var b strings.Builder
	b.Grow(len(calldata))
	for i := 0; i < len(calldata); {
		matched := false
		for _, s := range subs {
			if s.From == "" || !strings.HasPrefix(lower[i:], s.From) {
				continue
			}
			if s.From == s.To {
				b.WriteString(calldata[i : i+len(s.From)])
			} else {
				b.WriteString(s.To)
			}
			i += len(s.From)
			matched = true
			break
		}
		if !matched {
			b.WriteByte(calldata[i])
			i++
		}
	}
	return b.String()
}

// asciiLower lowercases A-Z only, so byte offsets line up with the input.
func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// Occurrences counts how many times each kind's source address appears, used for
// the dry run report.
func Occurrences(calldata string, subs []Substitution) map[types.ContractKind]int {
	lower := asciiLower(calldata)
	counts := make(map[types.ContractKind]int, len(subs))
	for _, s := range subs {
		counts[s.Kind] = strings.Count(lower, s.From)
	}
	return counts
}

func (s Substitution) String() string {
	return fmt.Sprintf("%s: 0x%s -> 0x%s", s.Kind, s.From, s.To)
}
