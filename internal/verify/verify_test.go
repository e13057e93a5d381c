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
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/rainprotocol/xdeploy/internal/core"
	"github.com/rainprotocol/xdeploy/internal/utils"
	"github.com/rainprotocol/xdeploy/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const address = types.HexAddress("0xcd234a471b72ba2f1ccf0a70fcaba648a5eecd8d")

var testNetwork = types.NetworkConfig{
	Name:           types.NetworkSepolia,
	ChainID:        11155111,
	ExplorerURL:    utils.ExplorerEndpoint,
	ExplorerKeyEnv: "ETHERSCAN_API_KEY",
	ExplorerKey:    "escan",
}

func newTestClient(attempts int) *Client {
	return NewClient(core.RetryPolicy{Attempts: 1, AttemptTimeout: time.Second}, attempts, time.Millisecond)
}

func testArtifact(t *testing.T) *Artifact {
	a, err := LoadArtifact("testdata", types.Store)
	require.NoError(t, err)
	return a
}

func mockSubmit(t *testing.T, result string, status string) {
	httpmock.RegisterResponder(http.MethodPost, utils.ExplorerEndpoint,
		func(req *http.Request) (*http.Response, error) {
			require.NoError(t, req.ParseForm())
			assert.Equal(t, "verifysourcecode", req.PostForm.Get("action"))
			assert.Equal(t, "escan", req.PostForm.Get("apikey"))
			assert.Equal(t, string(address), req.PostForm.Get("contractaddress"))
			assert.Equal(t, CodeFormatStandardJSON, req.PostForm.Get("codeformat"))
			assert.Contains(t, req.PostForm.Get("sourceCode"), `"language": "Solidity"`)
			return httpmock.NewJsonResponse(200, map[string]string{"status": status, "message": "OK", "result": result})
		})
}

func mockStatus(results ...string) *int {
	calls := 0
	httpmock.RegisterResponder(http.MethodGet, utils.ExplorerEndpoint,
		func(req *http.Request) (*http.Response, error) {
			result := results[len(results)-1]
			if calls < len(results) {
				result = results[calls]
			}
			calls++
			if req.URL.Query().Get("guid") != "guid-1" {
				return httpmock.NewStringResponse(400, "bad guid"), nil
			}
			return httpmock.NewJsonResponse(200, map[string]string{"status": "1", "message": "OK", "result": result})
		})
	return &calls
}

func TestLoadArtifact(t *testing.T) {
	a := testArtifact(t)
	assert.Equal(t, CodeFormatStandardJSON, a.codeFormat())

	single, err := LoadArtifact("testdata", types.Interpreter)
	require.NoError(t, err)
	assert.Equal(t, "pragma solidity =0.8.17;", single.source())
	assert.Equal(t, "solidity-single-file", single.codeFormat())

	_, err = LoadArtifact("testdata", types.Flow)
	assert.ErrorContains(t, err, "are required")

	_, err = LoadArtifact("testdata", types.Orderbook)
	assert.ErrorContains(t, err, "no verification artifact for orderbook")
}

func TestVerifyPass(t *testing.T) {
	utils.StartMockServer(t)
	defer utils.StopMockServer(t)

	mockSubmit(t, "guid-1", "1")
	calls := mockStatus("Pending in queue", "Pending in queue", "Pass - Verified")

	err := newTestClient(5).Verify(context.Background(), testNetwork, address, testArtifact(t))
	assert.NoError(t, err)
	assert.Equal(t, 3, *calls)
}

func TestVerifyAlreadyVerifiedOnSubmit(t *testing.T) {
	utils.StartMockServer(t)
	defer utils.StopMockServer(t)

	mockSubmit(t, "Contract source code already verified", "0")
	calls := mockStatus("Pass - Verified")

	err := newTestClient(5).Verify(context.Background(), testNetwork, address, testArtifact(t))
	assert.NoError(t, err)
	assert.Equal(t, 0, *calls)
}

func TestVerifyFail(t *testing.T) {
	utils.StartMockServer(t)
	defer utils.StopMockServer(t)

	mockSubmit(t, "guid-1", "1")
	mockStatus("Pending in queue", "Fail - Unable to verify")

	err := newTestClient(5).Verify(context.Background(), testNetwork, address, testArtifact(t))
	var failed *types.VerificationFailedError
	require.True(t, errors.As(err, &failed))
	assert.Equal(t, "Unable to verify", failed.Reason)
	assert.Equal(t, types.NetworkSepolia, failed.Network)
}

func TestVerifyTimeout(t *testing.T) {
	utils.StartMockServer(t)
	defer utils.StopMockServer(t)

	mockSubmit(t, "guid-1", "1")
	calls := mockStatus("Pending in queue")

	err := newTestClient(3).Verify(context.Background(), testNetwork, address, testArtifact(t))
	var timeout *types.VerificationTimeoutError
	require.True(t, errors.As(err, &timeout))
	assert.Equal(t, 3, timeout.Attempts)
	assert.Equal(t, address, timeout.Address)
	assert.Equal(t, 3, *calls)
}

func TestVerifyWaitsForIndexing(t *testing.T) {
	utils.StartMockServer(t)
	defer utils.StopMockServer(t)

	submits := 0
	httpmock.RegisterResponder(http.MethodPost, utils.ExplorerEndpoint,
		func(req *http.Request) (*http.Response, error) {
			submits++
			if submits == 1 {
				return httpmock.NewJsonResponse(200, map[string]string{"status": "0", "message": "NOTOK", "result": "Unable to locate ContractCode at 0xcd23"})
			}
			return httpmock.NewJsonResponse(200, map[string]string{"status": "1", "message": "OK", "result": "guid-1"})
		})
	mockStatus("Pass - Verified")

	err := newTestClient(3).Verify(context.Background(), testNetwork, address, testArtifact(t))
	assert.NoError(t, err)
	assert.Equal(t, 2, submits)
}

func TestVerifyRejectedSubmission(t *testing.T) {
	utils.StartMockServer(t)
	defer utils.StopMockServer(t)

	mockSubmit(t, "Invalid API Key", "0")

	err := newTestClient(3).Verify(context.Background(), testNetwork, address, testArtifact(t))
	var failed *types.VerificationFailedError
	require.True(t, errors.As(err, &failed))
	assert.Equal(t, "Invalid API Key", failed.Reason)
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestVerifyWithoutExplorer(t *testing.T) {
	err := newTestClient(3).Verify(context.Background(), types.NetworkConfig{Name: types.NetworkLocalDev}, address, &Artifact{})
	assert.EqualError(t, err, "network 'local-dev' has no block explorer to verify against")
}
