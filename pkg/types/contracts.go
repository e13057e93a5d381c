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

type ContractKind string

const (
	Interpreter        ContractKind = "interpreter"
	Store              ContractKind = "store"
	ExpressionDeployer ContractKind = "expressionDeployer"
	Orderbook          ContractKind = "orderbook"
	ExchangeProxy      ContractKind = "exchangeProxy"
	CloneFactory       ContractKind = "cloneFactory"
	Flow               ContractKind = "flow"
	FlowERC20          ContractKind = "flowERC20"
)

func (k ContractKind) String() string {
	return string(k)
}

// ContractKinds is the canonical order kinds are deployed and rewritten in
var ContractKinds = []ContractKind{
	Interpreter,
	Store,
	ExpressionDeployer,
	Orderbook,
	ExchangeProxy,
	CloneFactory,
	Flow,
	FlowERC20,
}

// DISpairKinds are the interpreter, store and expression deployer that most
// constructors embed
var DISpairKinds = []ContractKind{Interpreter, Store, ExpressionDeployer}

// ZeroExKinds are embedded by contracts that route through the 0x exchange proxy
var ZeroExKinds = []ContractKind{Orderbook, ExchangeProxy}

// KindGroups name the sets above for --kinds
var KindGroups = map[string][]ContractKind{
	"dispair": DISpairKinds,
	"zeroex":  ZeroExKinds,
}

type DeployedContract struct {
	Address     HexAddress `json:"address" yaml:"address"`
	Transaction string     `json:"transaction,omitempty" yaml:"transaction,omitempty"`
}

type ContractDeploymentResult struct {
	Kind              ContractKind `json:"kind" yaml:"kind"`
	Network           NetworkName  `json:"network" yaml:"network"`
	SourceTransaction string       `json:"sourceTransaction,omitempty" yaml:"sourceTransaction,omitempty"`
	TransactionHash   string       `json:"transactionHash,omitempty" yaml:"transactionHash,omitempty"`
	Address           HexAddress   `json:"address" yaml:"address"`
	Skipped           bool         `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Verified          bool         `json:"verified,omitempty" yaml:"verified,omitempty"`
	CompletedAt       string       `json:"completedAt,omitempty" yaml:"completedAt,omitempty"`
}
