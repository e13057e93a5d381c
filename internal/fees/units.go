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
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
)

var weiPerGwei = big.NewInt(1_000_000_000)

// gweiToWei converts a decimal gwei amount to wei without going through float64.
// Digits beyond wei precision are truncated.
func gweiToWei(n json.Number) (*ethtypes.HexInteger, error) {
	r, ok := new(big.Rat).SetString(n.String())
	if !ok {
		return nil, fmt.Errorf("invalid gwei amount '%s'", n)
	}
	if r.Sign() < 0 {
		return nil, fmt.Errorf("negative gwei amount '%s'", n)
	}
	r.Mul(r, new(big.Rat).SetInt(weiPerGwei))
	wei := new(big.Int).Quo(r.Num(), r.Denom())
	return ethtypes.NewHexInteger(wei), nil
}

func hexInt(i int64) *ethtypes.HexInteger {
	return ethtypes.NewHexInteger64(i)
}
