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

package core

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/rainprotocol/xdeploy/internal/log"
)

var sharedHTTPClient = &http.Client{}

// HTTPClient is the client every resty client in the process is built on.
// Tests activate httpmock against it.
func HTTPClient() *http.Client {
	return sharedHTTPClient
}

func NewRestyClient(baseURL string) *resty.Client {
	c := resty.NewWithClient(sharedHTTPClient)
	if baseURL != "" {
		c.SetBaseURL(baseURL)
	}
	return c
}

type HTTPError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s [%d] %s", e.URL, e.StatusCode, e.Body)
}

// Request describes one JSON API call. Form takes precedence over Body.
type Request struct {
	Method  string
	URL     string
	Query   map[string]string
	Headers map[string]string
	Form    map[string]string
	Body    interface{}
}

func RequestWithRetry(ctx context.Context, policy RetryPolicy, req *Request, result interface{}) error {
	logger := log.LoggerFromContext(ctx)
	verbose := log.VerbosityFromContext(ctx)
	client := NewRestyClient("")
	attempt := 0
	_, err := Retry(ctx, policy, func(ctx context.Context) (struct{}, error) {
		attempt++
		err := request(ctx, client, req, result)
		if err != nil && verbose {
			logger.Debug(fmt.Sprintf("%s - attempt %d failed", err.Error(), attempt))
		}
		return struct{}{}, err
	})
	return err
}

func request(ctx context.Context, client *resty.Client, req *Request, result interface{}) error {
	r := client.R().SetContext(ctx).SetHeader("Accept", "application/json")
	for k, v := range req.Headers {
		r.SetHeader(k, v)
	}
	if len(req.Query) > 0 {
		r.SetQueryParams(req.Query)
	}
	if len(req.Form) > 0 {
		r.SetFormData(req.Form)
	} else if req.Body != nil {
		r.SetHeader("Content-Type", "application/json").SetBody(req.Body)
	}
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	resp, err := r.Execute(method, req.URL)
	if err != nil {
		return err
	}
	if resp.IsError() {
		httpErr := &HTTPError{URL: req.URL, StatusCode: resp.StatusCode(), Body: strings.TrimSpace(resp.String())}
		if resp.StatusCode() == http.StatusTooManyRequests || resp.StatusCode() >= 500 {
			return httpErr
		}
		return Permanent(httpErr)
	}
	if result == nil || resp.StatusCode() == http.StatusNoContent {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), result); err != nil {
		return Permanent(fmt.Errorf("invalid response from %s: %w", req.URL, err))
	}
	return nil
}
