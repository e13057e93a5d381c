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
	"fmt"
	"strings"
)

type DeployOptions struct {
	From         string
	To           string
	Only         []string
	Resume       bool
	Verify       bool
	ArtifactsDir string
	SkipConfirm  bool
	ReportPath   string
	SaveReport   bool
	ReportFormat string
}

type RewriteOptions struct {
	From            string
	To              string
	TransactionHash string
	Calldata        string
	Kinds           []string
}

type ReportFormat int

const (
	ReportJSON ReportFormat = iota
	ReportYAML
)

var ReportFormatStrings = []string{"json", "yaml"}

func (f ReportFormat) String() string {
	return ReportFormatStrings[f]
}

func ReportFormatFromString(s string) (ReportFormat, error) {
	for i, formatSelection := range ReportFormatStrings {
		if strings.ToLower(s) == formatSelection {
			return ReportFormat(i), nil
		}
	}
	return ReportJSON, fmt.Errorf("\"%s\" is not a valid report format. valid options are: %v", s, ReportFormatStrings)
}

func ContractKindsFromStrings(strKinds []string) ([]ContractKind, error) {
	kinds := make([]ContractKind, 0, len(strKinds))
	for _, s := range strKinds {
		found := false
		for _, k := range ContractKinds {
			if strings.EqualFold(strings.TrimSpace(s), string(k)) {
				kinds = append(kinds, k)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("\"%s\" is not a valid contract kind. valid options are: %v", s, ContractKinds)
		}
	}
	return kinds, nil
}

// RewriteKindsFromStrings is ContractKindsFromStrings that also accepts the KindGroups names
func RewriteKindsFromStrings(strKinds []string) ([]ContractKind, error) {
	kinds := []ContractKind{}
	for _, s := range strKinds {
		if group, ok := KindGroups[strings.ToLower(strings.TrimSpace(s))]; ok {
			kinds = append(kinds, group...)
			continue
		}
		k, err := ContractKindsFromStrings([]string{s})
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k...)
	}
	return kinds, nil
}
