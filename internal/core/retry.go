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
	"time"

	"github.com/avast/retry-go/v4"
)

// RetryPolicy bounds how hard a read-only remote call is retried.
type RetryPolicy struct {
	Attempts       uint          `mapstructure:"attempts" yaml:"attempts"`
	InitialDelay   time.Duration `mapstructure:"initialDelay" yaml:"initialDelay"`
	MaxJitter      time.Duration `mapstructure:"maxJitter" yaml:"maxJitter"`
	AttemptTimeout time.Duration `mapstructure:"attemptTimeout" yaml:"attemptTimeout"`
}

var DefaultRetryPolicy = RetryPolicy{
	Attempts:       4,
	InitialDelay:   500 * time.Millisecond,
	MaxJitter:      250 * time.Millisecond,
	AttemptTimeout: 30 * time.Second,
}

// NoRetry runs the callback exactly once. Used for calls with side effects.
var NoRetry = RetryPolicy{Attempts: 1, AttemptTimeout: DefaultRetryPolicy.AttemptTimeout}

func (p RetryPolicy) options(ctx context.Context) []retry.Option {
	attempts := p.Attempts
	if attempts == 0 {
		attempts = 1
	}
	return []retry.Option{
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(p.InitialDelay),
		retry.MaxJitter(p.MaxJitter),
		retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)),
		retry.LastErrorOnly(true),
	}
}

type retryCallback[T any] func(ctx context.Context) (T, error)

// Retry calls back until it succeeds, the policy is exhausted, or the callback
// returns an error wrapped with Permanent.
func Retry[T any](ctx context.Context, policy RetryPolicy, callback retryCallback[T], opts ...retry.Option) (T, error) {
	var returnValue T
	var err error

	err = retry.Do(func() error {
		timeout := policy.AttemptTimeout
		if timeout <= 0 {
			timeout = DefaultRetryPolicy.AttemptTimeout
		}
		rctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		returnValue, err = callback(rctx)

		return err
	}, append(policy.options(ctx), opts...)...)

	return returnValue, err
}

// Permanent marks err so Retry gives up immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return retry.Unrecoverable(err)
}
