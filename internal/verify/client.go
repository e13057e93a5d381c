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

package verify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rainprotocol/xdeploy/internal/core"
	"github.com/rainprotocol/xdeploy/internal/log"
	"github.com/rainprotocol/xdeploy/pkg/types"
)

var errPending = errors.New("verification pending")

type explorerResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Result  string `json:"result"`
}

// Client talks to Etherscan compatible explorer APIs.
type Client struct {
	retry    core.RetryPolicy
	attempts int
	delay    time.Duration
}

func NewClient(retry core.RetryPolicy, attempts int, delay time.Duration) *Client {
	return &Client{retry: retry, attempts: attempts, delay: delay}
}

func alreadyVerified(result string) bool {
	return strings.Contains(strings.ToLower(result), "already verified")
}

func notIndexedYet(result string) bool {
	return strings.Contains(strings.ToLower(result), "unable to locate contractcode")
}

// Verify submits source for address and waits for the explorer's verdict.
func (c *Client) Verify(ctx context.Context, network types.NetworkConfig, address types.HexAddress, artifact *Artifact) error {
	logger := log.LoggerFromContext(ctx)
	if network.ExplorerURL == "" {
		return fmt.Errorf("network '%s' has no block explorer to verify against", network.Name)
	}
	if network.ExplorerKey == "" && network.ExplorerKeyEnv != "" {
		logger.Warn(fmt.Sprintf("%s is not set, explorer requests may be rate limited", network.ExplorerKeyEnv))
	}

	guid, err := c.submit(ctx, network, address, artifact)
	if err != nil {
		return err
	}
	if guid == "" {
		logger.Info(fmt.Sprintf("%s is already verified on %s", address, network.Name))
		return nil
	}
	logger.Info(fmt.Sprintf("verification of %s submitted to %s (guid %s)", address, network.Name, guid))
	return c.poll(ctx, network, address, guid)
}

func (c *Client) pollPolicy() core.RetryPolicy {
	return core.RetryPolicy{Attempts: uint(c.attempts), InitialDelay: c.delay, AttemptTimeout: c.retry.AttemptTimeout}
}

func (c *Client) timeout(network types.NetworkConfig, address types.HexAddress) error {
	return &types.VerificationTimeoutError{Network: network.Name, Address: address, Attempts: c.attempts, Delay: c.delay}
}

// submit returns an empty guid when the contract is already verified. A contract the
// explorer has not indexed yet is resubmitted within the attempt budget.
func (c *Client) submit(ctx context.Context, network types.NetworkConfig, address types.HexAddress, artifact *Artifact) (string, error) {
	form := map[string]string{
		"apikey":          network.ExplorerKey,
		"module":          "contract",
		"action":          "verifysourcecode",
		"contractaddress": address.String(),
		"sourceCode":      artifact.source(),
		"codeformat":      artifact.codeFormat(),
		"contractname":    artifact.ContractName,
		"compilerversion": artifact.CompilerVersion,
		// Etherscan's spelling
		"constructorArguements": types.StripHexPrefix(artifact.ConstructorArguments),
	}
	guid, err := core.Retry(ctx, c.pollPolicy(), func(ctx context.Context) (string, error) {
		var res explorerResponse
		err := core.RequestWithRetry(ctx, c.retry, &core.Request{
			Method: http.MethodPost,
			URL:    network.ExplorerURL,
			Form:   form,
		}, &res)
		if err != nil {
			return "", core.Permanent(err)
		}
		switch {
		case res.Status == "1":
			return res.Result, nil
		case alreadyVerified(res.Result):
			return "", nil
		case notIndexedYet(res.Result):
			return "", errPending
		default:
			return "", core.Permanent(&types.VerificationFailedError{Network: network.Name, Address: address, Reason: res.Result})
		}
	}, retry.DelayType(retry.FixedDelay))
	if errors.Is(err, errPending) {
		return "", c.timeout(network, address)
	}
	return guid, err
}

func (c *Client) poll(ctx context.Context, network types.NetworkConfig, address types.HexAddress, guid string) error {
	logger := log.LoggerFromContext(ctx)
	_, err := core.Retry(ctx, c.pollPolicy(), func(ctx context.Context) (struct{}, error) {
		var res explorerResponse
		err := core.RequestWithRetry(ctx, c.retry, &core.Request{
			URL: network.ExplorerURL,
			Query: map[string]string{
				"apikey": network.ExplorerKey,
				"module": "contract",
				"action": "checkverifystatus",
				"guid":   guid,
			},
		}, &res)
		if err != nil {
			return struct{}{}, core.Permanent(err)
		}
		switch {
		case strings.HasPrefix(res.Result, "Pass"), alreadyVerified(res.Result):
			return struct{}{}, nil
		case strings.HasPrefix(res.Result, "Fail"):
			return struct{}{}, core.Permanent(&types.VerificationFailedError{
				Network: network.Name,
				Address: address,
				Reason:  strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(res.Result, "Fail"), " -")),
			})
		default:
			logger.Debug(fmt.Sprintf("verification of %s: %s", address, res.Result))
			return struct{}{}, errPending
		}
	}, retry.DelayType(retry.FixedDelay))
	if errors.Is(err, errPending) {
		return c.timeout(network, address)
	}
	return err
}
