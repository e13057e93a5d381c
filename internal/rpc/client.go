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

package rpc

import (
	"context"
	"fmt"
	"strings"

	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/hyperledger/firefly-signer/pkg/rpcbackend"
	"github.com/rainprotocol/xdeploy/internal/core"
	"github.com/rainprotocol/xdeploy/internal/log"
	"github.com/rainprotocol/xdeploy/pkg/types"
)

const (
	codeInternalError int64 = -32603
	codeLimitExceeded int64 = -32005
)

// Error is a JSON-RPC error response, or a transport failure reported as -32603.
type Error struct {
	Network types.NetworkName
	Method  string
	Code    int64
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s on '%s' failed [%d]: %s", e.Method, e.Network, e.Code, e.Message)
}

// Retryable is true for transport failures and rate limiting, never for node rejections.
func (e *Error) Retryable() bool {
	return e.Code == codeInternalError || e.Code == codeLimitExceeded
}

type Client struct {
	network types.NetworkConfig
	backend rpcbackend.Backend
	retry   core.RetryPolicy
}

func NewClient(network types.NetworkConfig, retry core.RetryPolicy) (*Client, error) {
	if network.RPCURL == "" {
		if network.RPCKeyEnv != "" {
			return nil, fmt.Errorf("no RPC endpoint for network '%s': set %s or networks.%s.rpcUrl", network.Name, network.RPCKeyEnv, network.Name)
		}
		return nil, fmt.Errorf("no RPC endpoint for network '%s'", network.Name)
	}
	return &Client{
		network: network,
		backend: rpcbackend.NewRPCClient(core.NewRestyClient(network.RPCURL)),
		retry:   retry,
	}, nil
}

func (c *Client) call(ctx context.Context, policy core.RetryPolicy, result interface{}, method string, params ...interface{}) error {
	logger := log.LoggerFromContext(ctx)
	_, err := core.Retry(ctx, policy, func(ctx context.Context) (struct{}, error) {
		logger.Trace(fmt.Sprintf("%s %s", c.network.Name, method))
		if rpcErr := c.backend.CallRPC(ctx, result, method, params...); rpcErr != nil {
			err := &Error{Network: c.network.Name, Method: method, Code: rpcErr.Code, Message: rpcErr.Message}
			if !err.Retryable() {
				return struct{}{}, core.Permanent(err)
			}
			logger.Debug(err.Error())
			return struct{}{}, err
		}
		return struct{}{}, nil
	})
	return err
}

type Transaction struct {
	Hash  ethtypes.HexBytes0xPrefix `json:"hash"`
	From  *ethtypes.Address0xHex    `json:"from"`
	To    *ethtypes.Address0xHex    `json:"to"`
	Nonce *ethtypes.HexInteger      `json:"nonce"`
	Input ethtypes.HexBytes0xPrefix `json:"input"`
}

type Block struct {
	Number        *ethtypes.HexInteger `json:"number"`
	BaseFeePerGas *ethtypes.HexInteger `json:"baseFeePerGas"`
}

type callRequest struct {
	From *ethtypes.Address0xHex    `json:"from,omitempty"`
	Data ethtypes.HexBytes0xPrefix `json:"data"`
}

func (c *Client) GetTransactionByHash(ctx context.Context, hash string) (*types.TransactionData, error) {
	var tx *Transaction
	if err := c.call(ctx, c.retry, &tx, "eth_getTransactionByHash", hash); err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction %s not found on '%s'", hash, c.network.Name)
	}
	return &types.TransactionData{
		Network:  c.network.Name,
		Hash:     strings.ToLower(hash),
		Calldata: tx.Input.String(),
	}, nil
}

func (c *Client) GetTransactionCount(ctx context.Context, account ethtypes.Address0xHex, block string) (*ethtypes.HexInteger, error) {
	var count ethtypes.HexInteger
	if err := c.call(ctx, c.retry, &count, "eth_getTransactionCount", account, block); err != nil {
		return nil, err
	}
	return &count, nil
}

func (c *Client) EstimateGas(ctx context.Context, from ethtypes.Address0xHex, data ethtypes.HexBytes0xPrefix) (*ethtypes.HexInteger, error) {
	var gas ethtypes.HexInteger
	if err := c.call(ctx, c.retry, &gas, "eth_estimateGas", &callRequest{From: &from, Data: data}); err != nil {
		return nil, err
	}
	return &gas, nil
}

func (c *Client) GasPrice(ctx context.Context) (*ethtypes.HexInteger, error) {
	var price ethtypes.HexInteger
	if err := c.call(ctx, c.retry, &price, "eth_gasPrice"); err != nil {
		return nil, err
	}
	return &price, nil
}

func (c *Client) MaxPriorityFeePerGas(ctx context.Context) (*ethtypes.HexInteger, error) {
	var fee ethtypes.HexInteger
	if err := c.call(ctx, c.retry, &fee, "eth_maxPriorityFeePerGas"); err != nil {
		return nil, err
	}
	return &fee, nil
}

func (c *Client) GetBlockByNumber(ctx context.Context, block string) (*Block, error) {
	var b *Block
	if err := c.call(ctx, c.retry, &b, "eth_getBlockByNumber", block, false); err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("block %s not found on '%s'", block, c.network.Name)
	}
	return b, nil
}

// SendRawTransaction is never retried. A resubmission after an ambiguous failure
// could land the same deployment twice.
func (c *Client) SendRawTransaction(ctx context.Context, raw ethtypes.HexBytes0xPrefix) (string, error) {
	var hash ethtypes.HexBytes0xPrefix
	if err := c.call(ctx, core.NoRetry, &hash, "eth_sendRawTransaction", raw); err != nil {
		return "", err
	}
	return hash.String(), nil
}

// GetTransactionReceipt returns nil while the transaction is pending.
func (c *Client) GetTransactionReceipt(ctx context.Context, hash string) (*types.Receipt, error) {
	var receipt *types.Receipt
	if err := c.call(ctx, c.retry, &receipt, "eth_getTransactionReceipt", hash); err != nil {
		return nil, err
	}
	return receipt, nil
}
