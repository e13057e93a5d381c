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
	"math/big"

	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/hyperledger/firefly-signer/pkg/rlp"
	"github.com/rainprotocol/xdeploy/pkg/types"
	"golang.org/x/crypto/sha3"
)

func keccak256(b []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(b)
	return h.Sum(nil)
}

// ContractAddress is the address a CREATE from sender at nonce deploys to.
func ContractAddress(sender ethtypes.Address0xHex, nonce *big.Int) types.HexAddress {
	encoded := rlp.List{
		rlp.WrapAddress(&sender),
		rlp.WrapInt(nonce),
	}.Encode()
	hash := keccak256(encoded)
	addr := ethtypes.Address0xHex{}
	copy(addr[:], hash[12:])
	return types.HexAddress(addr.String())
}
