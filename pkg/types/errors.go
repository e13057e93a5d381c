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

package types

import (
	"fmt"
	"time"

	"github.com/hyperledger/firefly-common/pkg/fftypes"
)

type UnsupportedNetworkError struct {
	Name string
}

func (e *UnsupportedNetworkError) Error() string {
	return fmt.Sprintf("unsupported network '%s'. valid options are: %v", e.Name, fftypes.FFEnumValues("NetworkName"))
}

type MissingAddressMappingError struct {
	Network NetworkName
	Kind    ContractKind
}

func (e *MissingAddressMappingError) Error() string {
	return fmt.Sprintf("no %s address recorded for network '%s'", e.Kind, e.Network)
}

type AmbiguousAddressMappingError struct {
	Address HexAddress
	Kinds   []ContractKind
}

func (e *AmbiguousAddressMappingError) Error() string {
	return fmt.Sprintf("address %s is shared by %v but maps to different destination addresses", e.Address, e.Kinds)
}

type FeeEstimationError struct {
	Network NetworkName
	Source  string
	Err     error
}

func (e *FeeEstimationError) Error() string {
	return fmt.Sprintf("fee estimation for '%s' failed (%s): %s", e.Network, e.Source, e.Err)
}

func (e *FeeEstimationError) Unwrap() error {
	return e.Err
}

type TransactionSubmissionError struct {
	Network NetworkName
	Hash    string
	Err     error
}

func (e *TransactionSubmissionError) Error() string {
	return fmt.Sprintf("transaction %s rejected by '%s': %s", e.Hash, e.Network, e.Err)
}

func (e *TransactionSubmissionError) Unwrap() error {
	return e.Err
}

type VerificationTimeoutError struct {
	Network  NetworkName
	Address  HexAddress
	Attempts int
	Delay    time.Duration
}

func (e *VerificationTimeoutError) Error() string {
	return fmt.Sprintf("verification of %s on '%s' not confirmed after %d attempts (%s apart)", e.Address, e.Network, e.Attempts, e.Delay)
}

type VerificationFailedError struct {
	Network NetworkName
	Address HexAddress
	Reason  string
}

func (e *VerificationFailedError) Error() string {
	return fmt.Sprintf("verification of %s on '%s' failed: %s", e.Address, e.Network, e.Reason)
}
