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

package transactions

import (
	"context"
	"fmt"

	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/rainprotocol/xdeploy/internal/core"
	"github.com/rainprotocol/xdeploy/internal/log"
	"github.com/rainprotocol/xdeploy/internal/rpc"
	"github.com/rainprotocol/xdeploy/pkg/types"
)

// Node is the slice of the JSON-RPC client used to build and submit transactions.
type Node interface {
	GetTransactionCount(ctx context.Context, account ethtypes.Address0xHex, block string) (*ethtypes.HexInteger, error)
	EstimateGas(ctx context.Context, from ethtypes.Address0xHex, data ethtypes.HexBytes0xPrefix) (*ethtypes.HexInteger, error)
	SendRawTransaction(ctx context.Context, raw ethtypes.HexBytes0xPrefix) (string, error)
	GetTransactionReceipt(ctx context.Context, hash string) (*types.Receipt, error)
}

type Connector func(network types.NetworkConfig) (Node, error)

func RPCConnector(retry core.RetryPolicy) Connector {
	return func(network types.NetworkConfig) (Node, error) {
		return rpc.NewClient(network, retry)
	}
}

type FeeEstimator interface {
	Estimate(ctx context.Context, network types.NetworkConfig) (*types.FeeProfile, error)
}

type Builder struct {
	connect Connector
	fees    FeeEstimator
}

func NewBuilder(connect Connector, fees FeeEstimator) *Builder {
	return &Builder{connect: connect, fees: fees}
}

// Build assembles a type 2 contract creation transaction from account carrying calldata.
func (b *Builder) Build(ctx context.Context, network types.NetworkConfig, account ethtypes.Address0xHex, calldata string) (*types.UnsignedTransaction, error) {
	logger := log.LoggerFromContext(ctx)

	data, err := ethtypes.NewHexBytes0xPrefix(calldata)
	if err != nil {
		return nil, fmt.Errorf("invalid calldata: %w", err)
	}
	node, err := b.connect(network)
	if err != nil {
		return nil, err
	}

	logger.Info(fmt.Sprintf("fetching nonce for %s on %s", account, network.Name))
	nonce, err := node.GetTransactionCount(ctx, account, "pending")
	if err != nil {
		return nil, err
	}

	logger.Info(fmt.Sprintf("estimating gas on %s", network.Name))
	gas, err := node.EstimateGas(ctx, account, data)
	if err != nil {
		return nil, err
	}

	fees, err := b.fees.Estimate(ctx, network)
	if err != nil {
		return nil, err
	}

	return &types.UnsignedTransaction{
		Network:              network,
		From:                 account,
		Nonce:                nonce,
		GasLimit:             gas,
		MaxFeePerGas:         fees.MaxFeePerGas,
		MaxPriorityFeePerGas: fees.MaxPriorityFeePerGas,
		Data:                 data.String(),
		Type:                 types.TransactionTypeEIP1559,
	}, nil
}
