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
	"encoding/json"
	"errors"
	"strconv"

	"github.com/rainprotocol/xdeploy/internal/core"
	"github.com/rainprotocol/xdeploy/pkg/types"
)

type blockPricesResponse struct {
	BlockPrices []struct {
		BlockNumber     int64 `json:"blockNumber"`
		EstimatedPrices []struct {
			Confidence           int         `json:"confidence"`
			MaxPriorityFeePerGas json.Number `json:"maxPriorityFeePerGas"`
			MaxFeePerGas         json.Number `json:"maxFeePerGas"`
		} `json:"estimatedPrices"`
	} `json:"blockPrices"`
}

// BlockPricesSource reads the highest confidence estimate for the next block from Blocknative.
type BlockPricesSource struct {
	URL    string
	APIKey string
	Retry  core.RetryPolicy
}

func (s *BlockPricesSource) Name() string {
	return "blocknative"
}

func (s *BlockPricesSource) Fees(ctx context.Context, network types.NetworkConfig) (*types.FeeProfile, error) {
	req := &core.Request{
		URL:   s.URL,
		Query: map[string]string{"chainid": strconv.FormatInt(network.ChainID, 10)},
	}
	if s.APIKey != "" {
		req.Headers = map[string]string{"Authorization": s.APIKey}
	}
	var res blockPricesResponse
	if err := core.RequestWithRetry(ctx, s.Retry, req, &res); err != nil {
		return nil, err
	}
	if len(res.BlockPrices) == 0 || len(res.BlockPrices[0].EstimatedPrices) == 0 {
		return nil, errors.New("response has no block price estimates")
	}
	estimate := res.BlockPrices[0].EstimatedPrices[0]
	return marketProfile(estimate.MaxFeePerGas, estimate.MaxPriorityFeePerGas)
}

type gasStationTier struct {
	MaxPriorityFee json.Number `json:"maxPriorityFee"`
	MaxFee         json.Number `json:"maxFee"`
}

type gasStationResponse struct {
	SafeLow          *gasStationTier `json:"safeLow"`
	Standard         *gasStationTier `json:"standard"`
	Fast             *gasStationTier `json:"fast"`
	EstimatedBaseFee json.Number     `json:"estimatedBaseFee"`
}

// PolygonGasStationSource reads the standard tier of the Polygon gas station v2 API.
type PolygonGasStationSource struct {
	URL   string
	Retry core.RetryPolicy
}

func (s *PolygonGasStationSource) Name() string {
	return "polygon-gas-station"
}

func (s *PolygonGasStationSource) Fees(ctx context.Context, _ types.NetworkConfig) (*types.FeeProfile, error) {
	var res gasStationResponse
	if err := core.RequestWithRetry(ctx, s.Retry, &core.Request{URL: s.URL}, &res); err != nil {
		return nil, err
	}
	if res.Standard == nil {
		return nil, errors.New("response has no standard tier")
	}
	return marketProfile(res.Standard.MaxFee, res.Standard.MaxPriorityFee)
}

func marketProfile(maxFee, priority json.Number) (*types.FeeProfile, error) {
	if maxFee == "" || priority == "" {
		return nil, errors.New("response is missing fee fields")
	}
	maxFeeWei, err := gweiToWei(maxFee)
	if err != nil {
		return nil, err
	}
	priorityWei, err := gweiToWei(priority)
	if err != nil {
		return nil, err
	}
	return &types.FeeProfile{MaxFeePerGas: maxFeeWei, MaxPriorityFeePerGas: priorityWei}, nil
}
