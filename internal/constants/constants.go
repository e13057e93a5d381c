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

package constants

import (
	"os"
	"path/filepath"
)

var homeDir, _ = os.UserHomeDir()
var ConfigDir = filepath.Join(homeDir, ".xdeploy")

var ConfigName = ".xdeploy"
var DefaultRegistryPath = filepath.Join("config", "config.json")
var DefaultReportDir = filepath.Join(ConfigDir, "reports")

// Environment variable names, one per explorer/fee provider family and managed RPC key
const (
	EnvPolygonscanKey  = "POLYGONSCAN_API_KEY"
	EnvAvalancheKey    = "AVALANCHE_KEY"
	EnvEtherscanKey    = "ETHERSCAN_API_KEY"
	EnvAlchemyMumbai   = "ALCHEMY_KEY_MUMBAI"
	EnvAlchemyGoerli   = "ALCHEMY_KEY_GOERLI"
	EnvAlchemySepolia  = "ALCHEMY_KEY_SEPOLIA"
	EnvAlchemyPolygon  = "ALCHEMY_KEY_POLYGON"
	EnvBlocknativeKey  = "BLOCKNATIVE_API_KEY"
	EnvDeploymentKey   = "DEPLOYMENT_KEY"
	DefaultGasStation  = "https://gasstation.polygon.technology/v2"
	DefaultBlockPrices = "https://api.blocknative.com/gasprices/blockprices"
)
