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
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/hyperledger/firefly-signer/pkg/ethsigner"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/rainprotocol/xdeploy/internal/core"
	"github.com/rainprotocol/xdeploy/internal/keys"
	"github.com/rainprotocol/xdeploy/internal/log"
	"github.com/rainprotocol/xdeploy/pkg/types"
)

var errPending = errors.New("transaction pending")

type Broadcaster struct {
	connect         Connector
	receiptInterval time.Duration
	receiptPolls    uint
}

func NewBroadcaster(connect Connector, receiptInterval time.Duration, receiptPolls uint) *Broadcaster {
	return &Broadcaster{
		connect:         connect,
		receiptInterval: receiptInterval,
		receiptPolls:    receiptPolls,
	}
}

// Sign produces the EIP-1559 typed envelope. Signing is deterministic (RFC 6979).
func (b *Broadcaster) Sign(tx *types.UnsignedTransaction, key *keys.Key) (*types.SignedTransaction, error) {
	if !types.Supports1559(tx.Network.Hardfork) {
		return nil, fmt.Errorf("network '%s' runs %s rules, which predate type 2 transactions", tx.Network.Name, tx.Network.Hardfork)
	}
	if key.Closed() {
		return nil, errors.New("signing key has been closed")
	}
	if key.Address() != tx.From {
		return nil, fmt.Errorf("transaction is from %s but the signing key is for %s", tx.From, key.Address())
	}
	data, err := ethtypes.NewHexBytes0xPrefix(tx.Data)
	if err != nil {
		return nil, fmt.Errorf("invalid calldata: %w", err)
	}

	ethTx := &ethsigner.Transaction{
		Nonce:                tx.Nonce,
		GasLimit:             tx.GasLimit,
		MaxFeePerGas:         tx.MaxFeePerGas,
		MaxPriorityFeePerGas: tx.MaxPriorityFeePerGas,
		Value:                ethtypes.NewHexInteger64(0),
		Data:                 data,
	}
	raw, err := ethTx.SignEIP1559(key.Signer(), tx.Network.ChainID)
	if err != nil {
		return nil, err
	}
	return &types.SignedTransaction{
		Network: tx.Network.Name,
		Raw:     raw,
		Hash:    keccak256(raw),
	}, nil
}

// SignAndSend submits exactly once and returns without waiting for the transaction to be mined.
func (b *Broadcaster) SignAndSend(ctx context.Context, tx *types.UnsignedTransaction, key *keys.Key) (*types.TransactionHandle, error) {
	logger := log.LoggerFromContext(ctx)

	signed, err := b.Sign(tx, key)
	if err != nil {
		return nil, err
	}
	node, err := b.connect(tx.Network)
	if err != nil {
		return nil, err
	}

	logger.Info(fmt.Sprintf("submitting %s to %s", signed.Hash, tx.Network.Name))
	hash, err := node.SendRawTransaction(ctx, signed.Raw)
	if err != nil {
		return nil, &types.TransactionSubmissionError{Network: tx.Network.Name, Hash: signed.Hash.String(), Err: err}
	}
	if !strings.EqualFold(hash, signed.Hash.String()) {
		logger.Warn(fmt.Sprintf("node returned hash %s for transaction %s", hash, signed.Hash))
	}

	nonce := new(big.Int)
	if tx.Nonce != nil {
		nonce = tx.Nonce.BigInt()
	}
	return &types.TransactionHandle{
		Network:         tx.Network.Name,
		Hash:            signed.Hash.String(),
		From:            tx.From,
		Nonce:           tx.Nonce,
		ContractAddress: ContractAddress(tx.From, nonce),
	}, nil
}

// WaitForReceipt polls until the transaction is mined. A reverted transaction is an error.
func (b *Broadcaster) WaitForReceipt(ctx context.Context, network types.NetworkConfig, handle *types.TransactionHandle) (*types.Receipt, error) {
	logger := log.LoggerFromContext(ctx)
	node, err := b.connect(network)
	if err != nil {
		return nil, err
	}

	policy := core.RetryPolicy{Attempts: b.receiptPolls, InitialDelay: b.receiptInterval}
	receipt, err := core.Retry(ctx, policy, func(ctx context.Context) (*types.Receipt, error) {
		receipt, err := node.GetTransactionReceipt(ctx, handle.Hash)
		if err != nil {
			return nil, core.Permanent(err)
		}
		if receipt == nil {
			logger.Debug(fmt.Sprintf("waiting for %s to be mined", handle.Hash))
			return nil, errPending
		}
		if !receipt.Succeeded() {
			return nil, core.Permanent(fmt.Errorf("transaction %s reverted on '%s'", handle.Hash, network.Name))
		}
		return receipt, nil
	}, retry.DelayType(retry.FixedDelay))
	if errors.Is(err, errPending) {
		return nil, fmt.Errorf("transaction %s not mined on '%s' after %d receipt polls", handle.Hash, network.Name, b.receiptPolls)
	}
	if err != nil {
		return nil, err
	}
	if receipt.ContractAddress != "" && !strings.EqualFold(receipt.ContractAddress, handle.ContractAddress.String()) {
		logger.Warn(fmt.Sprintf("receipt contract address %s differs from expected %s", receipt.ContractAddress, handle.ContractAddress))
	}
	return receipt, nil
}
