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
	"strings"

	"github.com/hyperledger/firefly-common/pkg/fftypes"
)

type NetworkName = fftypes.FFEnum

var (
	NetworkFuji      = fftypes.FFEnumValue("NetworkName", "fuji")
	NetworkGoerli    = fftypes.FFEnumValue("NetworkName", "goerli")
	NetworkMumbai    = fftypes.FFEnumValue("NetworkName", "mumbai")
	NetworkSepolia   = fftypes.FFEnumValue("NetworkName", "sepolia")
	NetworkPolygon   = fftypes.FFEnumValue("NetworkName", "polygon")
	NetworkAvalanche = fftypes.FFEnumValue("NetworkName", "avalanche")
	NetworkLocalDev  = fftypes.FFEnumValue("NetworkName", "local-dev")
)

// NetworkNames is the closed set of supported networks, in the order they are listed to users
var NetworkNames = []NetworkName{
	NetworkFuji,
	NetworkGoerli,
	NetworkMumbai,
	NetworkSepolia,
	NetworkPolygon,
	NetworkAvalanche,
	NetworkLocalDev,
}

var networkAliases = map[string]NetworkName{
	"hardhat": NetworkLocalDev,
	"local":   NetworkLocalDev,
}

func NetworkNameFromString(s string) (NetworkName, error) {
	lower := strings.ToLower(strings.TrimSpace(s))
	for _, n := range NetworkNames {
		if lower == n.String() {
			return n, nil
		}
	}
	if n, ok := networkAliases[lower]; ok {
		return n, nil
	}
	return "", &UnsupportedNetworkError{Name: s}
}

type Hardfork = fftypes.FFEnum

var (
	HardforkBerlin   = fftypes.FFEnumValue("Hardfork", "berlin")
	HardforkLondon   = fftypes.FFEnumValue("Hardfork", "london")
	HardforkShanghai = fftypes.FFEnumValue("Hardfork", "shanghai")
	HardforkCancun   = fftypes.FFEnumValue("Hardfork", "cancun")
)

var hardforkOrder = []Hardfork{HardforkBerlin, HardforkLondon, HardforkShanghai, HardforkCancun}

// Supports1559 reports whether the rule set accepts type 2 (fee market) transactions.
// Unknown hardforks are treated as pre-London.
func Supports1559(h Hardfork) bool {
	for i, known := range hardforkOrder {
		if known == h {
			return i >= 1
		}
	}
	return false
}

// NetworkConfig is built once per supported network at startup and handed out by value.
type NetworkConfig struct {
	Name           NetworkName `json:"name" yaml:"name"`
	ChainID        int64       `json:"chainId" yaml:"chainId"`
	RPCURL         string      `json:"-" yaml:"-"`
	RPCKeyEnv      string      `json:"rpcKeyEnv,omitempty" yaml:"rpcKeyEnv,omitempty"`
	Hardfork       Hardfork    `json:"hardfork" yaml:"hardfork"`
	ExplorerURL    string      `json:"explorerUrl,omitempty" yaml:"explorerUrl,omitempty"`
	ExplorerKeyEnv string      `json:"explorerKeyEnv,omitempty" yaml:"explorerKeyEnv,omitempty"`
	ExplorerKey    string      `json:"-" yaml:"-"`
}
