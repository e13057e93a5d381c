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
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/rainprotocol/xdeploy/internal/core"
	"github.com/rainprotocol/xdeploy/internal/utils"
	"github.com/rainprotocol/xdeploy/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPolicy = core.RetryPolicy{Attempts: 3, InitialDelay: time.Millisecond, MaxJitter: time.Millisecond, AttemptTimeout: time.Second}

func newTestClient(t *testing.T) *Client {
	c, err := NewClient(types.NetworkConfig{Name: types.NetworkFuji, ChainID: 43113, RPCURL: utils.FujiRPCEndpoint}, testPolicy)
	require.NoError(t, err)
	return c
}

func TestNewClientWithoutEndpoint(t *testing.T) {
	_, err := NewClient(types.NetworkConfig{Name: types.NetworkMumbai, RPCKeyEnv: "ALCHEMY_KEY_MUMBAI"}, testPolicy)
	assert.ErrorContains(t, err, "set ALCHEMY_KEY_MUMBAI")

	_, err = NewClient(types.NetworkConfig{Name: types.NetworkLocalDev}, testPolicy)
	assert.ErrorContains(t, err, "no RPC endpoint for network 'local-dev'")
}

func TestReadMethods(t *testing.T) {
	utils.StartMockServer(t)
	defer utils.StopMockServer(t)

	account := ethtypes.MustNewAddress("0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266")
	utils.MockRPCNode(utils.FujiRPCEndpoint, map[string]utils.RPCHandler{
		"eth_getTransactionByHash": utils.RPCResult(map[string]interface{}{
			"hash":  "0xaa",
			"input": "0x6080ABCD",
		}),
		"eth_getTransactionCount": func(params []json.RawMessage) (interface{}, *utils.RPCError) {
			assert.JSONEq(t, `"0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266"`, string(params[0]))
			assert.JSONEq(t, `"pending"`, string(params[1]))
			return "0x7", nil
		},
		"eth_estimateGas": func(params []json.RawMessage) (interface{}, *utils.RPCError) {
			var req map[string]string
			assert.NoError(t, json.Unmarshal(params[0], &req))
			assert.Equal(t, "0x6080", req["data"])
			return "0x5208", nil
		},
		"eth_gasPrice":             utils.RPCResult("0x3b9aca00"),
		"eth_maxPriorityFeePerGas": utils.RPCResult("0x59682f00"),
		"eth_getBlockByNumber":     utils.RPCResult(map[string]interface{}{"number": "0x10", "baseFeePerGas": "0x64"}),
	})

	ctx := context.Background()
	c := newTestClient(t)

	tx, err := c.GetTransactionByHash(ctx, "0xAA")
	require.NoError(t, err)
	assert.Equal(t, "0x6080abcd", tx.Calldata)
	assert.Equal(t, "0xaa", tx.Hash)
	assert.Equal(t, types.NetworkFuji, tx.Network)

	nonce, err := c.GetTransactionCount(ctx, *account, "pending")
	require.NoError(t, err)
	assert.Equal(t, int64(7), nonce.BigInt().Int64())

	gas, err := c.EstimateGas(ctx, *account, ethtypes.MustNewHexBytes0xPrefix("0x6080"))
	require.NoError(t, err)
	assert.Equal(t, int64(21000), gas.BigInt().Int64())

	price, err := c.GasPrice(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1000000000), price.BigInt().Int64())

	tip, err := c.MaxPriorityFeePerGas(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1500000000), tip.BigInt().Int64())

	block, err := c.GetBlockByNumber(ctx, "latest")
	require.NoError(t, err)
	assert.Equal(t, int64(100), block.BaseFeePerGas.BigInt().Int64())
}

func TestTransactionNotFound(t *testing.T) {
	utils.StartMockServer(t)
	defer utils.StopMockServer(t)
	utils.MockRPCNode(utils.FujiRPCEndpoint, map[string]utils.RPCHandler{
		"eth_getTransactionByHash": utils.RPCResult(nil),
		"eth_getTransactionReceipt": utils.RPCResult(nil),
	})

	c := newTestClient(t)
	_, err := c.GetTransactionByHash(context.Background(), "0xbb")
	assert.ErrorContains(t, err, "transaction 0xbb not found on 'fuji'")

	receipt, err := c.GetTransactionReceipt(context.Background(), "0xbb")
	assert.NoError(t, err)
	assert.Nil(t, receipt)
}

func TestRetriesTransportErrors(t *testing.T) {
	utils.StartMockServer(t)
	defer utils.StopMockServer(t)

	attempts := 0
	calls := utils.MockRPCNode(utils.FujiRPCEndpoint, map[string]utils.RPCHandler{
		"eth_gasPrice": func(_ []json.RawMessage) (interface{}, *utils.RPCError) {
			attempts++
			if attempts < 3 {
				return nil, &utils.RPCError{Code: -32603, Message: "upstream timeout"}
			}
			return "0x1", nil
		},
	})

	price, err := newTestClient(t).GasPrice(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), price.BigInt().Int64())
	assert.Equal(t, 3, calls.Count("eth_gasPrice"))
}

func TestDoesNotRetryRejections(t *testing.T) {
	utils.StartMockServer(t)
	defer utils.StopMockServer(t)

	calls := utils.MockRPCNode(utils.FujiRPCEndpoint, map[string]utils.RPCHandler{
		"eth_estimateGas": utils.RPCFailure(-32000, "execution reverted"),
	})

	_, err := newTestClient(t).EstimateGas(context.Background(), ethtypes.Address0xHex{}, ethtypes.HexBytes0xPrefix{0x60})
	var rpcErr *Error
	require.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, int64(-32000), rpcErr.Code)
	assert.Equal(t, "eth_estimateGas on 'fuji' failed [-32000]: execution reverted", rpcErr.Error())
	assert.Equal(t, 1, calls.Count("eth_estimateGas"))
}

func TestSendRawTransactionNeverRetried(t *testing.T) {
	utils.StartMockServer(t)
	defer utils.StopMockServer(t)

	calls := utils.MockRPCNode(utils.FujiRPCEndpoint, map[string]utils.RPCHandler{
		"eth_sendRawTransaction": utils.RPCFailure(-32603, "connection reset"),
	})

	_, err := newTestClient(t).SendRawTransaction(context.Background(), ethtypes.HexBytes0xPrefix{0x02})
	assert.Error(t, err)
	assert.Equal(t, 1, calls.Count("eth_sendRawTransaction"))
}

func TestSendRawTransaction(t *testing.T) {
	utils.StartMockServer(t)
	defer utils.StopMockServer(t)

	utils.MockRPCNode(utils.FujiRPCEndpoint, map[string]utils.RPCHandler{
		"eth_sendRawTransaction": func(params []json.RawMessage) (interface{}, *utils.RPCError) {
			assert.JSONEq(t, `"0x02f8"`, string(params[0]))
			return "0xABCDEF", nil
		},
		"eth_getTransactionReceipt": utils.RPCResult(map[string]interface{}{
			"transactionHash": "0xabcdef",
			"contractAddress": "0xcd234a471b72ba2f1ccf0a70fcaba648a5eecd8d",
			"blockNumber":     "0x2",
			"status":          "0x1",
		}),
	})

	c := newTestClient(t)
	hash, err := c.SendRawTransaction(context.Background(), ethtypes.HexBytes0xPrefix{0x02, 0xf8})
	require.NoError(t, err)
	assert.Equal(t, "0xabcdef", hash)

	receipt, err := c.GetTransactionReceipt(context.Background(), hash)
	require.NoError(t, err)
	assert.True(t, receipt.Succeeded())
	assert.Equal(t, "0xcd234a471b72ba2f1ccf0a70fcaba648a5eecd8d", receipt.ContractAddress)
}
