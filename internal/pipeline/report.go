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

package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rainprotocol/xdeploy/pkg/types"
	"gopkg.in/yaml.v3"
)

type Report struct {
	From      types.NetworkName                 `json:"from" yaml:"from"`
	To        types.NetworkName                 `json:"to" yaml:"to"`
	Contracts []*types.ContractDeploymentResult `json:"contracts" yaml:"contracts"`
	Error     string                            `json:"error,omitempty" yaml:"error,omitempty"`
}

func NewReport(from, to types.NetworkName, results []*types.ContractDeploymentResult, runErr error) *Report {
	r := &Report{From: from, To: to, Contracts: results}
	if r.Contracts == nil {
		r.Contracts = []*types.ContractDeploymentResult{}
	}
	if runErr != nil {
		r.Error = runErr.Error()
	}
	return r
}

func (r *Report) Write(w io.Writer, format types.ReportFormat) error {
	switch format {
	case types.ReportYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	case types.ReportJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	default:
		return fmt.Errorf("unsupported report format %d", int(format))
	}
}

func (r *Report) WriteFile(path string, format types.ReportFormat) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := r.Write(f, format); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
