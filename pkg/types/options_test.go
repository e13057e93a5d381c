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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReportFormatFromString(t *testing.T) {
	f, err := ReportFormatFromString("YAML")
	assert.NoError(t, err)
	assert.Equal(t, ReportYAML, f)
	assert.Equal(t, "yaml", f.String())

	_, err = ReportFormatFromString("toml")
	assert.Regexp(t, "not a valid report format", err)
}

func TestContractKindsFromStrings(t *testing.T) {
	kinds, err := ContractKindsFromStrings([]string{"interpreter", "ExpressionDeployer", " flowERC20"})
	assert.NoError(t, err)
	assert.Equal(t, []ContractKind{Interpreter, ExpressionDeployer, FlowERC20}, kinds)

	_, err = ContractKindsFromStrings([]string{"pool"})
	assert.Regexp(t, "\"pool\" is not a valid contract kind", err)
}

func TestRewriteKindsFromStrings(t *testing.T) {
	kinds, err := RewriteKindsFromStrings([]string{"ZeroEx", "flow"})
	assert.NoError(t, err)
	assert.Equal(t, []ContractKind{Orderbook, ExchangeProxy, Flow}, kinds)

	kinds, err = RewriteKindsFromStrings([]string{"dispair"})
	assert.NoError(t, err)
	assert.Equal(t, DISpairKinds, kinds)

	_, err = RewriteKindsFromStrings([]string{"pool"})
	assert.Regexp(t, "\"pool\" is not a valid contract kind", err)
}
