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
	"strconv"

	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/rainprotocol/xdeploy/internal/config"
	"github.com/rainprotocol/xdeploy/internal/core"
	"github.com/rainprotocol/xdeploy/internal/log"
	"github.com/rainprotocol/xdeploy/internal/rpc"
	"github.com/rainprotocol/xdeploy/pkg/types"
)

// FeeSource supplies a fee profile, or part of one, for a network.
type FeeSource interface {
	Name() string
	Fees(ctx context.Context, network types.NetworkConfig) (*types.FeeProfile, error)
}

// NodeClient is the slice of the JSON-RPC client fee sources use.
type NodeClient interface {
	GasPrice(ctx context.Context) (*ethtypes.HexInteger, error)
	MaxPriorityFeePerGas(ctx context.Context) (*ethtypes.HexInteger, error)
	GetBlockByNumber(ctx context.Context, block string) (*rpc.Block, error)
}

type Dialer func(network types.NetworkConfig) (NodeClient, error)

// RPCDialer connects fee sources to real nodes.
func RPCDialer(retry core.RetryPolicy) Dialer {
	return func(network types.NetworkConfig) (NodeClient, error) {
		return rpc.NewClient(network, retry)
	}
}

type Estimator struct {
	strategies map[int64]FeeSource
	fallback   FeeSource
}

func NewEstimator(cfg *config.Config, dial Dialer) (*Estimator, error) {
	publicRPCs := map[int64]string{}
	for k, v := range cfg.Fees.PublicRPCs {
		chainID, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid chain id '%s' in fees.publicRpcs", k)
		}
		publicRPCs[chainID] = v
	}

	var station FeeSource
	switch cfg.Fees.GasStationProvider {
	case config.GasStationPolygon:
		station = &PolygonGasStationSource{URL: cfg.Fees.GasStationURL, Retry: cfg.Retry}
	default:
		station = &BlockPricesSource{URL: cfg.Fees.BlockPricesURL, APIKey: cfg.Keys.Blocknative, Retry: cfg.Retry}
	}
	native := &RPCFeeSource{Dial: dial, GasPriceFloor: GasPriceFloor}

	return &Estimator{
		strategies: map[int64]FeeSource{
			137:      &SplitSource{Market: station, GasPrice: &RPCGasPriceSource{Dial: dial}},
			31337:    FixedSource{},
			5:        native,
			43113:    native,
			43114:    native,
			11155111: native,
		},
		fallback: &AggregatorSource{Endpoints: publicRPCs, Dial: dial},
	}, nil
}

// NewEstimatorWithStrategies is used where the sources are substituted, e.g. in tests.
func NewEstimatorWithStrategies(strategies map[int64]FeeSource, fallback FeeSource) *Estimator {
	return &Estimator{strategies: strategies, fallback: fallback}
}

// Source reports which strategy serves a network.
func (e *Estimator) Source(network types.NetworkConfig) FeeSource {
	if s, ok := e.strategies[network.ChainID]; ok {
		return s
	}
	return e.fallback
}

func (e *Estimator) Estimate(ctx context.Context, network types.NetworkConfig) (*types.FeeProfile, error) {
	source := e.Source(network)
	log.LoggerFromContext(ctx).Debug(fmt.Sprintf("estimating fees for %s using %s", network.Name, source.Name()))

	profile, err := source.Fees(ctx, network)
	if err != nil {
		var feeErr *types.FeeEstimationError
		if errors.As(err, &feeErr) {
			return nil, err
		}
		return nil, &types.FeeEstimationError{Network: network.Name, Source: source.Name(), Err: err}
	}
	if !profile.Complete() {
		return nil, &types.FeeEstimationError{Network: network.Name, Source: source.Name(), Err: errors.New("incomplete fee data")}
	}
	return profile, nil
}
