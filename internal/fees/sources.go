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

package fees

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/rainprotocol/xdeploy/internal/log"
	"github.com/rainprotocol/xdeploy/pkg/types"
)

// GasPriceFloor is used as the legacy gas price on networks whose node does not report one.
var GasPriceFloor = big.NewInt(0x7A1200)

// DefaultPriorityFee is assumed when a node has no eth_maxPriorityFeePerGas.
var DefaultPriorityFee = big.NewInt(1_500_000_000)

// FixedSource serves local development chains, where fees are irrelevant but must be stable.
type FixedSource struct{}

func (FixedSource) Name() string {
	return "fixed"
}

func (FixedSource) Fees(_ context.Context, _ types.NetworkConfig) (*types.FeeProfile, error) {
	return &types.FeeProfile{
		GasPrice:             hexInt(1_980_000_104),
		MaxFeePerGas:         hexInt(1_500_000_030),
		MaxPriorityFeePerGas: hexInt(1_500_000_000),
	}, nil
}

// RPCFeeSource derives fees from the network's own node: maxFee = 2*baseFee + priority.
type RPCFeeSource struct {
	Dial Dialer
	// GasPriceFloor replaces eth_gasPrice when the node cannot answer it. Nil makes it required.
	GasPriceFloor *big.Int
}

func (s *RPCFeeSource) Name() string {
	return "rpc"
}

func (s *RPCFeeSource) Fees(ctx context.Context, network types.NetworkConfig) (*types.FeeProfile, error) {
	client, err := s.Dial(network)
	if err != nil {
		return nil, err
	}
	return nodeFeeData(ctx, client, s.GasPriceFloor)
}

func nodeFeeData(ctx context.Context, client NodeClient, floor *big.Int) (*types.FeeProfile, error) {
	logger := log.LoggerFromContext(ctx)

	block, err := client.GetBlockByNumber(ctx, "latest")
	if err != nil {
		return nil, err
	}
	if block.BaseFeePerGas == nil {
		return nil, errors.New("latest block has no baseFeePerGas")
	}

	priority, err := client.MaxPriorityFeePerGas(ctx)
	if err != nil {
		logger.Debug(fmt.Sprintf("eth_maxPriorityFeePerGas unavailable, using %s wei: %s", DefaultPriorityFee, err))
		priority = ethtypes.NewHexInteger(new(big.Int).Set(DefaultPriorityFee))
	}

	maxFee := new(big.Int).Mul(block.BaseFeePerGas.BigInt(), big.NewInt(2))
	maxFee.Add(maxFee, priority.BigInt())

	gasPrice, err := client.GasPrice(ctx)
	if err != nil {
		if floor == nil {
			return nil, err
		}
		logger.Debug(fmt.Sprintf("eth_gasPrice unavailable, using floor %s wei: %s", floor, err))
		gasPrice = ethtypes.NewHexInteger(new(big.Int).Set(floor))
	}

	return &types.FeeProfile{
		GasPrice:             gasPrice,
		MaxFeePerGas:         ethtypes.NewHexInteger(maxFee),
		MaxPriorityFeePerGas: priority,
	}, nil
}

// RPCGasPriceSource only supplies the legacy gas price, from the network's managed endpoint.
type RPCGasPriceSource struct {
	Dial Dialer
}

func (s *RPCGasPriceSource) Name() string {
	return "rpc-gas-price"
}

func (s *RPCGasPriceSource) Fees(ctx context.Context, network types.NetworkConfig) (*types.FeeProfile, error) {
	client, err := s.Dial(network)
	if err != nil {
		return nil, err
	}
	gasPrice, err := client.GasPrice(ctx)
	if err != nil {
		return nil, err
	}
	return &types.FeeProfile{GasPrice: gasPrice}, nil
}

// SplitSource takes the EIP-1559 fields from Market and the gas price from GasPrice.
type SplitSource struct {
	Market   FeeSource
	GasPrice FeeSource
}

func (s *SplitSource) Name() string {
	return fmt.Sprintf("%s+%s", s.Market.Name(), s.GasPrice.Name())
}

func (s *SplitSource) Fees(ctx context.Context, network types.NetworkConfig) (*types.FeeProfile, error) {
	market, err := s.Market.Fees(ctx, network)
	if err != nil {
		return nil, &types.FeeEstimationError{Network: network.Name, Source: s.Market.Name(), Err: err}
	}
	price, err := s.GasPrice.Fees(ctx, network)
	if err != nil {
		return nil, &types.FeeEstimationError{Network: network.Name, Source: s.GasPrice.Name(), Err: err}
	}
	return &types.FeeProfile{
		GasPrice:             price.GasPrice,
		MaxFeePerGas:         market.MaxFeePerGas,
		MaxPriorityFeePerGas: market.MaxPriorityFeePerGas,
	}, nil
}

// AggregatorSource asks a public endpoint chosen by chain id, for networks without a dedicated strategy.
type AggregatorSource struct {
	Endpoints map[int64]string
	Dial      Dialer
}

func (s *AggregatorSource) Name() string {
	return "aggregator"
}

func (s *AggregatorSource) Fees(ctx context.Context, network types.NetworkConfig) (*types.FeeProfile, error) {
	endpoint, ok := s.Endpoints[network.ChainID]
	if !ok {
		return nil, fmt.Errorf("no public fee endpoint for chain id %d", network.ChainID)
	}
	public := network
	public.RPCURL = endpoint
	public.RPCKeyEnv = ""
	client, err := s.Dial(public)
	if err != nil {
		return nil, err
	}
	return nodeFeeData(ctx, client, nil)
}
