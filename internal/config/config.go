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

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rainprotocol/xdeploy/internal/constants"
	"github.com/rainprotocol/xdeploy/internal/core"
	"github.com/spf13/viper"
)

type GasStationProvider string

const (
	GasStationBlocknative GasStationProvider = "blocknative"
	GasStationPolygon     GasStationProvider = "polygon"
)

type NetworkOverride struct {
	RPCURL      string `mapstructure:"rpcUrl"`
	ExplorerURL string `mapstructure:"explorerUrl"`
}

type FeesConfig struct {
	GasStationProvider GasStationProvider `mapstructure:"gasStationProvider"`
	GasStationURL      string             `mapstructure:"gasStationUrl"`
	BlockPricesURL     string             `mapstructure:"blockPricesUrl"`
	// PublicRPCs is keyed by decimal chain id
	PublicRPCs map[string]string `mapstructure:"publicRpcs"`
}

type VerifyConfig struct {
	Attempts int           `mapstructure:"attempts"`
	Delay    time.Duration `mapstructure:"delay"`
}

type ReceiptsConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	Polls    uint          `mapstructure:"polls"`
}

type KeysConfig struct {
	Polygonscan string            `mapstructure:"polygonscan"`
	Avalanche   string            `mapstructure:"avalanche"`
	Etherscan   string            `mapstructure:"etherscan"`
	Blocknative string            `mapstructure:"blocknative"`
	Deployment  string            `mapstructure:"deployment"`
	Alchemy     map[string]string `mapstructure:"alchemy"`
}

// Config is built once by the CLI and passed down. Nothing reads viper after Load.
type Config struct {
	RegistryPath string                     `mapstructure:"registry"`
	Overlays     []string                   `mapstructure:"overlays"`
	ArtifactsDir string                     `mapstructure:"artifacts"`
	Networks     map[string]NetworkOverride `mapstructure:"networks"`
	Fees         FeesConfig                 `mapstructure:"fees"`
	Retry        core.RetryPolicy           `mapstructure:"retry"`
	Verify       VerifyConfig               `mapstructure:"verify"`
	Receipts     ReceiptsConfig             `mapstructure:"receipts"`
	Keys         KeysConfig                 `mapstructure:"keys"`
}

var envBindings = map[string]string{
	"keys.polygonscan":     constants.EnvPolygonscanKey,
	"keys.avalanche":       constants.EnvAvalancheKey,
	"keys.etherscan":       constants.EnvEtherscanKey,
	"keys.blocknative":     constants.EnvBlocknativeKey,
	"keys.deployment":      constants.EnvDeploymentKey,
	"keys.alchemy.mumbai":  constants.EnvAlchemyMumbai,
	"keys.alchemy.goerli":  constants.EnvAlchemyGoerli,
	"keys.alchemy.sepolia": constants.EnvAlchemySepolia,
	"keys.alchemy.polygon": constants.EnvAlchemyPolygon,
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("registry", constants.DefaultRegistryPath)
	v.SetDefault("artifacts", "artifacts")
	v.SetDefault("fees.gasStationProvider", string(GasStationBlocknative))
	v.SetDefault("fees.gasStationUrl", constants.DefaultGasStation)
	v.SetDefault("fees.blockPricesUrl", constants.DefaultBlockPrices)
	v.SetDefault("fees.publicRpcs", map[string]string{
		"80001": "https://rpc-mumbai.maticvigil.com",
		"137":   "https://polygon-rpc.com",
		"5":     "https://rpc.ankr.com/eth_goerli",
	})
	v.SetDefault("retry.attempts", core.DefaultRetryPolicy.Attempts)
	v.SetDefault("retry.initialDelay", core.DefaultRetryPolicy.InitialDelay)
	v.SetDefault("retry.maxJitter", core.DefaultRetryPolicy.MaxJitter)
	v.SetDefault("retry.attemptTimeout", core.DefaultRetryPolicy.AttemptTimeout)
	v.SetDefault("verify.attempts", 10)
	v.SetDefault("verify.delay", 5*time.Second)
	v.SetDefault("receipts.interval", 2*time.Second)
	v.SetDefault("receipts.polls", 150)
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}
}

func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	switch cfg.Fees.GasStationProvider {
	case GasStationBlocknative, GasStationPolygon:
	default:
		return nil, fmt.Errorf("invalid fees.gasStationProvider '%s'. valid options are: [%s %s]", cfg.Fees.GasStationProvider, GasStationBlocknative, GasStationPolygon)
	}
	if cfg.Verify.Attempts < 1 {
		return nil, fmt.Errorf("verify.attempts must be at least 1")
	}
	return cfg, nil
}

// Secret resolves one of the well known environment variable names to its loaded value.
func (c *Config) Secret(env string) string {
	switch env {
	case constants.EnvPolygonscanKey:
		return c.Keys.Polygonscan
	case constants.EnvAvalancheKey:
		return c.Keys.Avalanche
	case constants.EnvEtherscanKey:
		return c.Keys.Etherscan
	case constants.EnvBlocknativeKey:
		return c.Keys.Blocknative
	case constants.EnvDeploymentKey:
		return c.Keys.Deployment
	}
	if strings.HasPrefix(env, "ALCHEMY_KEY_") {
		return c.Keys.Alchemy[strings.ToLower(strings.TrimPrefix(env, "ALCHEMY_KEY_"))]
	}
	return ""
}
