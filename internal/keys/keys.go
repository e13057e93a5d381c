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

package keys

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/hyperledger/firefly-signer/pkg/secp256k1"
	"github.com/rainprotocol/xdeploy/pkg/types"
)

const redacted = "<redacted>"

// Key holds a deployment private key. It never prints its secret; call Close when done.
type Key struct {
	keypair *secp256k1.KeyPair
}

// FromHex parses a 32 byte secp256k1 private key, with or without the 0x prefix.
func FromHex(s string) (*Key, error) {
	digits := types.StripHexPrefix(strings.TrimSpace(s))
	if len(digits) != 64 {
		return nil, fmt.Errorf("invalid private key: expected 64 hex digits, found %d", len(digits))
	}
	b, err := hex.DecodeString(digits)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: not hex")
	}
	defer zero(b)
	return &Key{keypair: secp256k1.KeyPairFromBytes(b)}, nil
}

func (k *Key) Address() ethtypes.Address0xHex {
	return k.keypair.Address
}

// Signer is handed to ethsigner. It is only valid until Close.
func (k *Key) Signer() secp256k1.Signer {
	return k.keypair
}

func (k *Key) Closed() bool {
	return k.keypair == nil
}

// Close zeroes the private scalar.
func (k *Key) Close() {
	if k.keypair == nil {
		return
	}
	if k.keypair.PrivateKey != nil {
		k.keypair.PrivateKey.Zero()
	}
	k.keypair = nil
}

func (k *Key) String() string {
	return redacted
}

func (k *Key) GoString() string {
	return redacted
}

func (k *Key) Format(f fmt.State, _ rune) {
	_, _ = f.Write([]byte(redacted))
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
