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

package networks

import (
	"fmt"
	"strings"

	"github.com/rainprotocol/xdeploy/internal/config"
	"github.com/rainprotocol/xdeploy/internal/constants"
	"github.com/rainprotocol/xdeploy/pkg/types"
)

type definition struct {
	chainID        int64
	hardfork       types.Hardfork
	rpcURL         string
	rpcKeyEnv      string
	explorerURL    string
	explorerKeyEnv string
}

var definitions = map[types.NetworkName]definition{
	types.NetworkMumbai: {
		chainID:        80001,
		hardfork:       types.HardforkLondon,
		rpcURL:         "https://polygon-mumbai.g.alchemy.com/v2/%s",
		rpcKeyEnv:      constants.EnvAlchemyMumbai,
		explorerURL:    "https://api-testnet.polygonscan.com/api",
		explorerKeyEnv: constants.EnvPolygonscanKey,
	},
	types.NetworkGoerli: {
		chainID:        5,
		hardfork:       types.HardforkLondon,
		rpcURL:         "https://eth-goerli.g.alchemy.com/v2/%s",
		rpcKeyEnv:      constants.EnvAlchemyGoerli,
		explorerURL:    "https://api-goerli.etherscan.io/api",
		explorerKeyEnv: constants.EnvEtherscanKey,
	},
	types.NetworkFuji: {
		chainID:        43113,
		hardfork:       types.HardforkLondon,
		rpcURL:         "https://api.avax-test.network/ext/bc/C/rpc",
		explorerURL:    "https://api-testnet.snowtrace.io/api",
		explorerKeyEnv: constants.EnvAvalancheKey,
	},
	types.NetworkSepolia: {
		chainID:        11155111,
		hardfork:       types.HardforkShanghai,
		rpcURL:         "https://eth-sepolia.g.alchemy.com/v2/%s",
		rpcKeyEnv:      constants.EnvAlchemySepolia,
		explorerURL:    "https://api-sepolia.etherscan.io/api",
		explorerKeyEnv: constants.EnvEtherscanKey,
	},
	types.NetworkPolygon: {
		chainID:        137,
		hardfork:       types.HardforkLondon,
		rpcURL:         "https://polygon-mainnet.g.alchemy.com/v2/%s",
		rpcKeyEnv:      constants.EnvAlchemyPolygon,
		explorerURL:    "https://api.polygonscan.com/api",
		explorerKeyEnv: constants.EnvPolygonscanKey,
	},
	types.NetworkAvalanche: {
		chainID:        43114,
		hardfork:       types.HardforkLondon,
		rpcURL:         "https://api.avax.network/ext/bc/C/rpc",
		explorerURL:    "https://api.snowtrace.io/api",
		explorerKeyEnv: constants.EnvAvalancheKey,
	},
	types.NetworkLocalDev: {
		chainID:  31337,
		hardfork: types.HardforkShanghai,
		rpcURL:   "http://127.0.0.1:8545",
	},
}

func init() {
	for _, n := range types.NetworkNames {
		if _, ok := definitions[n]; !ok {
			panic(fmt.Sprintf("network '%s' has no definition", n))
		}
	}
}

// Registry hands out NetworkConfig values with overrides and secrets applied.
type Registry struct {
	networks map[types.NetworkName]types.NetworkConfig
}

func NewRegistry(cfg *config.Config) *Registry {
	r := &Registry{networks: make(map[types.NetworkName]types.NetworkConfig, len(definitions))}
	for _, name := range types.NetworkNames {
		def := definitions[name]
		nc := types.NetworkConfig{
			Name:           name,
			ChainID:        def.chainID,
			Hardfork:       def.hardfork,
			RPCKeyEnv:      def.rpcKeyEnv,
			ExplorerURL:    def.explorerURL,
			ExplorerKeyEnv: def.explorerKeyEnv,
		}
		if def.rpcKeyEnv == "" {
			nc.RPCURL = def.rpcURL
		} else if key := secret(cfg, def.rpcKeyEnv); key != "" {
			nc.RPCURL = fmt.Sprintf(def.rpcURL, key)
		}
		if def.explorerKeyEnv != "" {
			nc.ExplorerKey = secret(cfg, def.explorerKeyEnv)
		}
		if cfg != nil {
			if o, ok := cfg.Networks[name.String()]; ok {
				if o.RPCURL != "" {
					nc.RPCURL = strings.TrimSpace(o.RPCURL)
				}
				if o.ExplorerURL != "" {
					nc.ExplorerURL = strings.TrimSpace(o.ExplorerURL)
				}
			}
		}
		r.networks[name] = nc
	}
	return r
}

func secret(cfg *config.Config, env string) string {
	if cfg == nil {
		return ""
	}
	return cfg.Secret(env)
}

// Resolve accepts any case and the hardhat alias.
func (r *Registry) Resolve(name string) (types.NetworkConfig, error) {
	n, err := types.NetworkNameFromString(name)
	if err != nil {
		return types.NetworkConfig{}, err
	}
	return r.networks[n], nil
}

// All returns every network in canonical order.
func (r *Registry) All() []types.NetworkConfig {
	out := make([]types.NetworkConfig, 0, len(r.networks))
	for _, n := range types.NetworkNames {
		out = append(out, r.networks[n])
	}
	return out
}
