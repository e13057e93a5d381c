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

package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"runtime"
	"sync"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/rainprotocol/xdeploy/internal/core"
)

var (
	FujiRPCEndpoint     = "http://fuji.rpc.test"
	LocalDevRPCEndpoint = "http://localdev.rpc.test"
	ExplorerEndpoint    = "http://explorer.test/api"
)

// StartMockServer routes every client built on core.HTTPClient through httpmock.
func StartMockServer(t *testing.T) {
	httpmock.ActivateNonDefault(core.HTTPClient())
}

func StopMockServer(_ *testing.T) {
	httpmock.DeactivateAndReset()
}

// RPCError is the error member of a JSON-RPC response.
type RPCError struct {
	Code    int64  `json:"code"`
	Message string `json:"message"`
}

// RPCHandler answers one JSON-RPC method. Returning a non-nil *RPCError sends an error response.
type RPCHandler func(params []json.RawMessage) (interface{}, *RPCError)

type rpcRequest struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

// RPCCalls records the methods a mocked node received, in order.
type RPCCalls struct {
	mux     sync.Mutex
	Methods []string
}

func (c *RPCCalls) Count(method string) int {
	c.mux.Lock()
	defer c.mux.Unlock()
	n := 0
	for _, m := range c.Methods {
		if m == method {
			n++
		}
	}
	return n
}

// MockRPCNode registers a JSON-RPC responder for every POST to endpoint, dispatching by method.
// Unknown methods answer with -32601.
func MockRPCNode(endpoint string, handlers map[string]RPCHandler) *RPCCalls {
	calls := &RPCCalls{}
	httpmock.RegisterResponder(http.MethodPost, "=~^"+regexp.QuoteMeta(endpoint),
		func(req *http.Request) (*http.Response, error) {
			var rpcReq rpcRequest
			if err := json.NewDecoder(req.Body).Decode(&rpcReq); err != nil {
				return httpmock.NewStringResponse(400, err.Error()), nil
			}
			calls.mux.Lock()
			calls.Methods = append(calls.Methods, rpcReq.Method)
			calls.mux.Unlock()

			body := map[string]interface{}{
				"jsonrpc": "2.0",
				"id":      rpcReq.ID,
			}
			handler, ok := handlers[rpcReq.Method]
			if !ok {
				body["error"] = &RPCError{Code: -32601, Message: fmt.Sprintf("method %s not found", rpcReq.Method)}
				return httpmock.NewJsonResponse(200, body)
			}
			result, rpcErr := handler(rpcReq.Params)
			if rpcErr != nil {
				body["error"] = rpcErr
			} else {
				body["result"] = result
			}
			return httpmock.NewJsonResponse(200, body)
		})
	return calls
}

// RPCResult returns a handler that always answers with result.
func RPCResult(result interface{}) RPCHandler {
	return func(_ []json.RawMessage) (interface{}, *RPCError) {
		return result, nil
	}
}

// RPCFailure returns a handler that always answers with an error.
func RPCFailure(code int64, message string) RPCHandler {
	return func(_ []json.RawMessage) (interface{}, *RPCError) {
		return nil, &RPCError{Code: code, Message: message}
	}
}

func Equals(tb testing.TB, exp, act interface{}) {
	if !reflect.DeepEqual(exp, act) {
		_, file, line, _ := runtime.Caller(1)
		fmt.Printf("\033[31m%s:%d:\n\n\texp: %#v\n\n\tgot: %#v\033[39m\n\n", filepath.Base(file), line, exp, act)
		tb.FailNow()
	}
}

func ReadFileToString(filePath string) (string, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return "", err
	}
	return string(content), nil
}
