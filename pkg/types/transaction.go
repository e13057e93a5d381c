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
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
)

// TransactionTypeEIP1559 is the EIP-2718 envelope type of every transaction we build
const TransactionTypeEIP1559 = 2

type TransactionData struct {
	Network  NetworkName `json:"network"`
	Hash     string      `json:"hash"`
	Calldata string      `json:"calldata"`
}

type FeeProfile struct {
	GasPrice             *ethtypes.HexInteger `json:"gasPrice"`
	MaxFeePerGas         *ethtypes.HexInteger `json:"maxFeePerGas"`
	MaxPriorityFeePerGas *ethtypes.HexInteger `json:"maxPriorityFeePerGas"`
}

// Complete is true when every field needed to assemble a transaction is present
func (f *FeeProfile) Complete() bool {
	return f != nil && f.GasPrice != nil && f.MaxFeePerGas != nil && f.MaxPriorityFeePerGas != nil
}

type UnsignedTransaction struct {
	Network              NetworkConfig         `json:"-"`
	From                 ethtypes.Address0xHex `json:"from"`
	Nonce                *ethtypes.HexInteger  `json:"nonce"`
	GasLimit             *ethtypes.HexInteger  `json:"gasLimit"`
	MaxFeePerGas         *ethtypes.HexInteger  `json:"maxFeePerGas"`
	MaxPriorityFeePerGas *ethtypes.HexInteger  `json:"maxPriorityFeePerGas"`
	Data                 string                `json:"data"`
	Type                 ethtypes.HexUint64    `json:"type"`
}

type SignedTransaction struct {
	Network NetworkName                `json:"network"`
	Raw     ethtypes.HexBytes0xPrefix `json:"raw"`
	Hash    ethtypes.HexBytes0xPrefix `json:"hash"`
}

type TransactionHandle struct {
	Network         NetworkName           `json:"network"`
	Hash            string                `json:"hash"`
	From            ethtypes.Address0xHex `json:"from"`
	Nonce           *ethtypes.HexInteger  `json:"nonce"`
	ContractAddress HexAddress            `json:"contractAddress"`
}

type Receipt struct {
	TransactionHash string               `json:"transactionHash"`
	ContractAddress string               `json:"contractAddress"`
	BlockNumber     *ethtypes.HexInteger `json:"blockNumber"`
	Status          *ethtypes.HexInteger `json:"status"`
}

// Succeeded treats a missing status (pre-Byzantium receipts) as success
func (r *Receipt) Succeeded() bool {
	return r.Status == nil || r.Status.BigInt().Sign() != 0
}
