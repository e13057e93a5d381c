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
	"encoding/json"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/rainprotocol/xdeploy/internal/core"
	"github.com/rainprotocol/xdeploy/internal/fees"
	"github.com/rainprotocol/xdeploy/internal/keys"
	"github.com/rainprotocol/xdeploy/internal/utils"
	"github.com/rainprotocol/xdeploy/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const anvilKey = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

var testPolicy = core.RetryPolicy{Attempts: 2, InitialDelay: time.Millisecond, AttemptTimeout: time.Second}

type fixedFees struct {
	err error
}

func (f fixedFees) Estimate(ctx context.Context, network types.NetworkConfig) (*types.FeeProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return fees.FixedSource{}.Fees(ctx, network)
}

type fakeNode struct {
	nonce     int64
	sent      []ethtypes.HexBytes0xPrefix
	sendErr   error
	receipts  []*types.Receipt
	receiptAt int
}

func (f *fakeNode) GetTransactionCount(ctx context.Context, account ethtypes.Address0xHex, block string) (*ethtypes.HexInteger, error) {
	return ethtypes.NewHexInteger64(f.nonce), nil
}

func (f *fakeNode) EstimateGas(ctx context.Context, from ethtypes.Address0xHex, data ethtypes.HexBytes0xPrefix) (*ethtypes.HexInteger, error) {
	return ethtypes.NewHexInteger64(int64(21000 + 16*len(data))), nil
}

func (f *fakeNode) SendRawTransaction(ctx context.Context, raw ethtypes.HexBytes0xPrefix) (string, error) {
	f.sent = append(f.sent, raw)
	if f.sendErr != nil {
		return "", f.sendErr
	}
	return ethtypes.HexBytes0xPrefix(keccak256(raw)).String(), nil
}

func (f *fakeNode) GetTransactionReceipt(ctx context.Context, hash string) (*types.Receipt, error) {
	if f.receiptAt >= len(f.receipts) {
		return nil, nil
	}
	r := f.receipts[f.receiptAt]
	f.receiptAt++
	return r, nil
}

func connectTo(node Node) Connector {
	return func(types.NetworkConfig) (Node, error) { return node, nil }
}

func testKey(t *testing.T) *keys.Key {
	k, err := keys.FromHex(anvilKey)
	require.NoError(t, err)
	t.Cleanup(k.Close)
	return k
}

var allNetworks = []types.NetworkConfig{
	{Name: types.NetworkMumbai, ChainID: 80001, Hardfork: types.HardforkLondon},
	{Name: types.NetworkGoerli, ChainID: 5, Hardfork: types.HardforkLondon},
	{Name: types.NetworkFuji, ChainID: 43113, Hardfork: types.HardforkLondon},
	{Name: types.NetworkSepolia, ChainID: 11155111, Hardfork: types.HardforkShanghai},
	{Name: types.NetworkPolygon, ChainID: 137, Hardfork: types.HardforkLondon},
	{Name: types.NetworkAvalanche, ChainID: 43114, Hardfork: types.HardforkLondon},
	{Name: types.NetworkLocalDev, ChainID: 31337, Hardfork: types.HardforkShanghai},
}

func TestBuildIsAlwaysType2(t *testing.T) {
	key := testKey(t)
	b := NewBuilder(connectTo(&fakeNode{nonce: 3}), fixedFees{})
	for _, n := range allNetworks {
		tx, err := b.Build(context.Background(), n, key.Address(), "0x6080604052")
		require.NoError(t, err, n.Name)
		assert.Equal(t, ethtypes.HexUint64(2), tx.Type, n.Name)
		assert.Equal(t, int64(3), tx.Nonce.BigInt().Int64())
		assert.Equal(t, int64(21000+16*5), tx.GasLimit.BigInt().Int64())
		assert.Equal(t, int64(1500000030), tx.MaxFeePerGas.BigInt().Int64())
		assert.Equal(t, "0x6080604052", tx.Data)
		assert.Equal(t, n, tx.Network)
	}
}

func TestBuildErrors(t *testing.T) {
	key := testKey(t)
	b := NewBuilder(connectTo(&fakeNode{}), fixedFees{})
	_, err := b.Build(context.Background(), allNetworks[0], key.Address(), "0xzz")
	assert.ErrorContains(t, err, "invalid calldata")

	feeErr := &types.FeeEstimationError{Network: types.NetworkMumbai, Source: "aggregator", Err: errors.New("down")}
	b = NewBuilder(connectTo(&fakeNode{}), fixedFees{err: feeErr})
	_, err = b.Build(context.Background(), allNetworks[0], key.Address(), "0x60")
	assert.ErrorIs(t, err, feeErr)
}

func TestSignDeterministic(t *testing.T) {
	key := testKey(t)
	tx := &types.UnsignedTransaction{
		Network:              allNetworks[2],
		From:                 key.Address(),
		Nonce:                ethtypes.NewHexInteger64(0),
		GasLimit:             ethtypes.NewHexInteger64(100000),
		MaxFeePerGas:         ethtypes.NewHexInteger64(2_000_000_000),
		MaxPriorityFeePerGas: ethtypes.NewHexInteger64(1_000_000_000),
		Data:                 "0x6080604052",
		Type:                 types.TransactionTypeEIP1559,
	}
	b := NewBroadcaster(connectTo(&fakeNode{}), time.Millisecond, 3)

	first, err := b.Sign(tx, key)
	require.NoError(t, err)
	second, err := b.Sign(tx, key)
	require.NoError(t, err)

	assert.Equal(t, first.Raw, second.Raw)
	assert.Equal(t, byte(0x02), first.Raw[0])
	assert.Equal(t, ethtypes.HexBytes0xPrefix(keccak256(first.Raw)), first.Hash)
	assert.Len(t, first.Hash, 32)

	other := *tx
	other.Network = allNetworks[3]
	third, err := b.Sign(&other, key)
	require.NoError(t, err)
	assert.NotEqual(t, first.Raw, third.Raw)
}

func TestSignRejections(t *testing.T) {
	key := testKey(t)
	b := NewBroadcaster(connectTo(&fakeNode{}), time.Millisecond, 3)
	tx := &types.UnsignedTransaction{
		Network: types.NetworkConfig{Name: "legacy", ChainID: 1, Hardfork: types.HardforkBerlin},
		From:    key.Address(),
		Data:    "0x60",
	}
	_, err := b.Sign(tx, key)
	assert.ErrorContains(t, err, "predate type 2 transactions")

	tx.Network = allNetworks[0]
	tx.From = ethtypes.Address0xHex{}
	_, err = b.Sign(tx, key)
	assert.ErrorContains(t, err, "signing key is for 0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266")

	closed, err := keys.FromHex(anvilKey)
	require.NoError(t, err)
	closed.Close()
	_, err = b.Sign(tx, closed)
	assert.ErrorContains(t, err, "closed")
}

func TestContractAddressVectors(t *testing.T) {
	sender := *ethtypes.MustNewAddress("0x6ac7ea33f8831ea9dcc53393aaa88b25a785dbf0")
	assert.Equal(t, types.HexAddress("0xcd234a471b72ba2f1ccf0a70fcaba648a5eecd8d"), ContractAddress(sender, big.NewInt(0)))
	assert.Equal(t, types.HexAddress("0x343c43a37d37dff08ae8c4a11544c718abb4fcf8"), ContractAddress(sender, big.NewInt(1)))
}

func TestSignAndSend(t *testing.T) {
	key := testKey(t)
	node := &fakeNode{nonce: 1}
	ctx := context.Background()

	tx, err := NewBuilder(connectTo(node), fixedFees{}).Build(ctx, allNetworks[6], key.Address(), "0x6080")
	require.NoError(t, err)

	b := NewBroadcaster(connectTo(node), time.Millisecond, 3)
	handle, err := b.SignAndSend(ctx, tx, key)
	require.NoError(t, err)
	require.Len(t, node.sent, 1)
	assert.Equal(t, ethtypes.HexBytes0xPrefix(keccak256(node.sent[0])).String(), handle.Hash)
	assert.Equal(t, types.NetworkLocalDev, handle.Network)
	assert.Equal(t, ContractAddress(key.Address(), big.NewInt(1)), handle.ContractAddress)
}

func TestSignAndSendRejected(t *testing.T) {
	key := testKey(t)
	node := &fakeNode{sendErr: errors.New("insufficient funds for gas * price + value")}
	ctx := context.Background()

	tx, err := NewBuilder(connectTo(node), fixedFees{}).Build(ctx, allNetworks[2], key.Address(), "0x6080")
	require.NoError(t, err)

	_, err = NewBroadcaster(connectTo(node), time.Millisecond, 3).SignAndSend(ctx, tx, key)
	var subErr *types.TransactionSubmissionError
	require.True(t, errors.As(err, &subErr))
	assert.Equal(t, types.NetworkFuji, subErr.Network)
	assert.Len(t, subErr.Hash, 66)
	assert.Len(t, node.sent, 1)
}

func TestWaitForReceipt(t *testing.T) {
	node := &fakeNode{receipts: []*types.Receipt{nil, nil, {
		TransactionHash: "0xaa",
		ContractAddress: "0xcd234a471b72ba2f1ccf0a70fcaba648a5eecd8d",
		Status:          ethtypes.NewHexInteger64(1),
	}}}
	b := NewBroadcaster(connectTo(node), time.Millisecond, 5)
	receipt, err := b.WaitForReceipt(context.Background(), allNetworks[2], &types.TransactionHandle{Hash: "0xaa", ContractAddress: "0xcd234a471b72ba2f1ccf0a70fcaba648a5eecd8d"})
	require.NoError(t, err)
	assert.Equal(t, "0xaa", receipt.TransactionHash)
	assert.Equal(t, 3, node.receiptAt)
}

func TestWaitForReceiptReverted(t *testing.T) {
	node := &fakeNode{receipts: []*types.Receipt{{TransactionHash: "0xaa", Status: ethtypes.NewHexInteger64(0)}}}
	b := NewBroadcaster(connectTo(node), time.Millisecond, 5)
	_, err := b.WaitForReceipt(context.Background(), allNetworks[2], &types.TransactionHandle{Hash: "0xaa"})
	assert.EqualError(t, err, "transaction 0xaa reverted on 'fuji'")
}

func TestWaitForReceiptGivesUp(t *testing.T) {
	b := NewBroadcaster(connectTo(&fakeNode{}), time.Millisecond, 3)
	_, err := b.WaitForReceipt(context.Background(), allNetworks[2], &types.TransactionHandle{Hash: "0xaa"})
	assert.EqualError(t, err, "transaction 0xaa not mined on 'fuji' after 3 receipt polls")
}

func TestEndToEndAgainstNode(t *testing.T) {
	utils.StartMockServer(t)
	defer utils.StopMockServer(t)

	var submitted string
	calls := utils.MockRPCNode(utils.LocalDevRPCEndpoint, map[string]utils.RPCHandler{
		"eth_getTransactionCount": utils.RPCResult("0x0"),
		"eth_estimateGas":         utils.RPCResult("0x186a0"),
		"eth_sendRawTransaction": func(params []json.RawMessage) (interface{}, *utils.RPCError) {
			assert.NoError(t, json.Unmarshal(params[0], &submitted))
			raw, err := ethtypes.NewHexBytes0xPrefix(submitted)
			assert.NoError(t, err)
			return ethtypes.HexBytes0xPrefix(keccak256(raw)).String(), nil
		},
	})

	key := testKey(t)
	network := types.NetworkConfig{Name: types.NetworkLocalDev, ChainID: 31337, Hardfork: types.HardforkShanghai, RPCURL: utils.LocalDevRPCEndpoint}
	connect := RPCConnector(testPolicy)

	tx, err := NewBuilder(connect, fixedFees{}).Build(context.Background(), network, key.Address(), "0x6080")
	require.NoError(t, err)
	handle, err := NewBroadcaster(connect, time.Millisecond, 2).SignAndSend(context.Background(), tx, key)
	require.NoError(t, err)

	assert.Equal(t, "0x02", submitted[:4])
	assert.Equal(t, 1, calls.Count("eth_sendRawTransaction"))
	assert.Equal(t, types.HexAddress("0x5fbdb2315678afecb367f032d93f642f64180aa3"), handle.ContractAddress)
}
