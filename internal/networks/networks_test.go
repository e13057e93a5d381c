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
	"errors"
	"testing"

	"github.com/rainprotocol/xdeploy/internal/config"
	"github.com/rainprotocol/xdeploy/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEveryNetworkHasADefinition(t *testing.T) {
	for _, n := range types.NetworkNames {
		_, ok := definitions[n]
		assert.True(t, ok, "missing definition for %s", n)
	}
	assert.Len(t, definitions, len(types.NetworkNames))
}

func TestResolveChainIDs(t *testing.T) {
	r := NewRegistry(&config.Config{})
	expected := map[string]int64{
		"mumbai":    80001,
		"goerli":    5,
		"fuji":      43113,
		"sepolia":   11155111,
		"polygon":   137,
		"avalanche": 43114,
		"local-dev": 31337,
		"hardhat":   31337,
	}
	for name, chainID := range expected {
		nc, err := r.Resolve(name)
		require.NoError(t, err, name)
		assert.Equal(t, chainID, nc.ChainID, name)
		assert.True(t, types.Supports1559(nc.Hardfork), name)
	}
}

func TestResolveRejectsUnknown(t *testing.T) {
	r := NewRegistry(nil)
	_, err := r.Resolve("mars")
	var unsupported *types.UnsupportedNetworkError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, "mars", unsupported.Name)
}

func TestRPCURLFromKeys(t *testing.T) {
	cfg := &config.Config{Keys: config.KeysConfig{
		Alchemy:     map[string]string{"sepolia": "sep-key"},
		Etherscan:   "escan",
		Polygonscan: "pscan",
	}}
	r := NewRegistry(cfg)

	sepolia, _ := r.Resolve("sepolia")
	assert.Equal(t, "https://eth-sepolia.g.alchemy.com/v2/sep-key", sepolia.RPCURL)
	assert.Equal(t, "escan", sepolia.ExplorerKey)

	mumbai, _ := r.Resolve("mumbai")
	assert.Empty(t, mumbai.RPCURL)
	assert.Equal(t, "ALCHEMY_KEY_MUMBAI", mumbai.RPCKeyEnv)
	assert.Equal(t, "pscan", mumbai.ExplorerKey)

	fuji, _ := r.Resolve("fuji")
	assert.Equal(t, "https://api.avax-test.network/ext/bc/C/rpc", fuji.RPCURL)
}

func TestOverrides(t *testing.T) {
	r := NewRegistry(&config.Config{Networks: map[string]config.NetworkOverride{
		"local-dev": {RPCURL: "http://anvil:8545", ExplorerURL: "http://blockscout/api"},
	}})
	nc, err := r.Resolve("LOCAL-DEV")
	require.NoError(t, err)
	assert.Equal(t, "http://anvil:8545", nc.RPCURL)
	assert.Equal(t, "http://blockscout/api", nc.ExplorerURL)
}

func TestAll(t *testing.T) {
	r := NewRegistry(nil)
	all := r.All()
	require.Len(t, all, len(types.NetworkNames))
	assert.Equal(t, types.NetworkFuji, all[0].Name)
	for i, nc := range all {
		assert.Equal(t, types.NetworkNames[i], nc.Name)
	}
}
