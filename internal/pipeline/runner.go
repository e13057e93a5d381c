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

package pipeline

import (
	"context"
	"fmt"

	"github.com/hyperledger/firefly-common/pkg/fftypes"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/rainprotocol/xdeploy/internal/keys"
	"github.com/rainprotocol/xdeploy/internal/log"
	"github.com/rainprotocol/xdeploy/internal/registry"
	"github.com/rainprotocol/xdeploy/internal/rewrite"
	"github.com/rainprotocol/xdeploy/internal/rpc"
	"github.com/rainprotocol/xdeploy/internal/verify"
	"github.com/rainprotocol/xdeploy/pkg/types"
)

type SourceFetcher interface {
	GetTransactionByHash(ctx context.Context, hash string) (*types.TransactionData, error)
}

type Fetcher func(network types.NetworkConfig) (SourceFetcher, error)

// RPCFetcher reads source transactions from the network's node.
func RPCFetcher(connect func(network types.NetworkConfig) (*rpc.Client, error)) Fetcher {
	return func(network types.NetworkConfig) (SourceFetcher, error) {
		c, err := connect(network)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}

type TransactionBuilder interface {
	Build(ctx context.Context, network types.NetworkConfig, account ethtypes.Address0xHex, calldata string) (*types.UnsignedTransaction, error)
}

type TransactionSender interface {
	SignAndSend(ctx context.Context, tx *types.UnsignedTransaction, key *keys.Key) (*types.TransactionHandle, error)
	WaitForReceipt(ctx context.Context, network types.NetworkConfig, handle *types.TransactionHandle) (*types.Receipt, error)
}

type Verifier interface {
	Verify(ctx context.Context, network types.NetworkConfig, address types.HexAddress, artifact *verify.Artifact) error
}

// Checkpoint persists each deployed contract as soon as its receipt is in.
type Checkpoint func(network types.NetworkName, kind types.ContractKind, entry types.DeployedContract) error

type Options struct {
	Resume       bool
	Verify       bool
	ArtifactsDir string
}

type Runner struct {
	plan       Plan
	registry   *registry.Registry
	fetch      Fetcher
	builder    TransactionBuilder
	sender     TransactionSender
	verifier   Verifier
	checkpoint Checkpoint
	options    Options
}

func NewRunner(plan Plan, reg *registry.Registry, fetch Fetcher, builder TransactionBuilder, sender TransactionSender, verifier Verifier, checkpoint Checkpoint, options Options) *Runner {
	return &Runner{
		plan:       plan,
		registry:   reg,
		fetch:      fetch,
		builder:    builder,
		sender:     sender,
		verifier:   verifier,
		checkpoint: checkpoint,
		options:    options,
	}
}

// Registry is the registry as of the last completed step.
func (r *Runner) Registry() *registry.Registry {
	return r.registry
}

// Run redeploys every step from one network to another, one at a time. It stops at the
// first failure; every step completed before it has already been checkpointed.
func (r *Runner) Run(ctx context.Context, from, to types.NetworkConfig, key *keys.Key) ([]*types.ContractDeploymentResult, error) {
	logger := log.LoggerFromContext(ctx)
	if from.Name == to.Name {
		return nil, fmt.Errorf("source and destination are both '%s'", from.Name)
	}
	steps, err := r.plan.Order()
	if err != nil {
		return nil, err
	}

	results := make([]*types.ContractDeploymentResult, 0, len(steps))
	for i, step := range steps {
		logger.Info(fmt.Sprintf("[%d/%d] %s: %s -> %s", i+1, len(steps), step.Kind, from.Name, to.Name))
		result, err := r.runStep(ctx, step, from, to, key)
		if err != nil {
			return results, fmt.Errorf("deploying %s to '%s' failed: %w", step.Kind, to.Name, err)
		}
		results = append(results, result)
	}
	return results, nil
}

func (r *Runner) runStep(ctx context.Context, step Step, from, to types.NetworkConfig, key *keys.Key) (*types.ContractDeploymentResult, error) {
	logger := log.LoggerFromContext(ctx)

	if existing, ok := r.registry.Entry(to.Name, step.Kind); ok && r.options.Resume {
		logger.Info(fmt.Sprintf("%s already deployed to %s at %s, skipping", step.Kind, to.Name, existing.Address))
		return &types.ContractDeploymentResult{
			Kind:            step.Kind,
			Network:         to.Name,
			TransactionHash: existing.Transaction,
			Address:         existing.Address,
			Skipped:         true,
		}, nil
	}

	source, ok := r.registry.Entry(from.Name, step.Kind)
	if !ok {
		return nil, &types.MissingAddressMappingError{Network: from.Name, Kind: step.Kind}
	}
	if source.Transaction == "" {
		return nil, fmt.Errorf("no creation transaction recorded for %s on '%s'", step.Kind, from.Name)
	}

	fetcher, err := r.fetch(from)
	if err != nil {
		return nil, err
	}
	txData, err := fetcher.GetTransactionByHash(ctx, source.Transaction)
	if err != nil {
		return nil, err
	}

	calldata, err := rewrite.NewRewriter(r.registry).Rewrite(txData.Calldata, from.Name, to.Name, step.Rewrites)
	if err != nil {
		return nil, err
	}

	unsigned, err := r.builder.Build(ctx, to, key.Address(), calldata)
	if err != nil {
		return nil, err
	}
	handle, err := r.sender.SignAndSend(ctx, unsigned, key)
	if err != nil {
		return nil, err
	}
	logger.Info(fmt.Sprintf("%s submitted as %s, waiting for receipt", step.Kind, handle.Hash))
	receipt, err := r.sender.WaitForReceipt(ctx, to, handle)
	if err != nil {
		return nil, err
	}

	address := handle.ContractAddress
	if receipt.ContractAddress != "" {
		if address, err = types.ParseHexAddress(receipt.ContractAddress); err != nil {
			return nil, err
		}
	}

	deployed := types.DeployedContract{Address: address, Transaction: handle.Hash}
	r.registry = r.registry.WithAddress(to.Name, step.Kind, deployed)
	if r.checkpoint != nil {
		if err := r.checkpoint(to.Name, step.Kind, deployed); err != nil {
			return nil, fmt.Errorf("%s deployed at %s but the registry could not be saved: %w", step.Kind, address, err)
		}
	}
	logger.Info(fmt.Sprintf("%s deployed to %s at %s", step.Kind, to.Name, address))

	result := &types.ContractDeploymentResult{
		Kind:              step.Kind,
		Network:           to.Name,
		SourceTransaction: source.Transaction,
		TransactionHash:   handle.Hash,
		Address:           address,
	}
	if r.options.Verify {
		artifact, err := verify.LoadArtifact(r.options.ArtifactsDir, step.Kind)
		if err != nil {
			return nil, err
		}
		if err := r.verifier.Verify(ctx, to, address, artifact); err != nil {
			return nil, err
		}
		result.Verified = true
	}
	result.CompletedAt = fftypes.Now().String()
	return result, nil
}
