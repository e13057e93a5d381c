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

package verify

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rainprotocol/xdeploy/pkg/types"
)

const CodeFormatStandardJSON = "solidity-standard-json-input"

// Artifact is what an explorer needs to verify one contract.
// SourceCode is either a JSON string or a standard JSON input object.
type Artifact struct {
	ContractName         string          `json:"contractName"`
	CompilerVersion      string          `json:"compilerVersion"`
	CodeFormat           string          `json:"codeFormat,omitempty"`
	SourceCode           json.RawMessage `json:"sourceCode"`
	ConstructorArguments string          `json:"constructorArguments,omitempty"`
}

func (a *Artifact) source() string {
	var s string
	if err := json.Unmarshal(a.SourceCode, &s); err == nil {
		return s
	}
	return string(a.SourceCode)
}

func (a *Artifact) codeFormat() string {
	if a.CodeFormat == "" {
		return CodeFormatStandardJSON
	}
	return a.CodeFormat
}

// LoadArtifact reads <dir>/<kind>.json.
func LoadArtifact(dir string, kind types.ContractKind) (*Artifact, error) {
	path := filepath.Join(dir, kind.String()+".json")
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("no verification artifact for %s: %w", kind, err)
	}
	var a Artifact
	if err := json.Unmarshal(b, &a); err != nil {
		return nil, fmt.Errorf("invalid verification artifact %s: %w", path, err)
	}
	if a.ContractName == "" || a.CompilerVersion == "" || len(a.SourceCode) == 0 {
		return nil, fmt.Errorf("invalid verification artifact %s: contractName, compilerVersion and sourceCode are required", path)
	}
	return &a, nil
}
