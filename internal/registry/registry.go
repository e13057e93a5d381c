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

package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/miracl/conflate"
	"github.com/otiai10/copy"
	"github.com/rainprotocol/xdeploy/pkg/types"
	"gopkg.in/yaml.v3"
)

type rawEntry struct {
	Address     types.HexAddress `json:"address" yaml:"address"`
	Transaction string           `json:"transaction,omitempty" yaml:"transaction,omitempty"`
}

type rawFile struct {
	Contracts map[string]map[string]rawEntry `json:"contracts" yaml:"contracts"`
}

// Registry maps (network, kind) to a deployed contract. A Registry value is never
// mutated once loaded; WithAddress returns a new one.
type Registry struct {
	contracts map[types.NetworkName]map[types.ContractKind]types.DeployedContract
}

func New() *Registry {
	return &Registry{contracts: map[types.NetworkName]map[types.ContractKind]types.DeployedContract{}}
}

// Load reads a registry file, merging any overlays on top in order.
func Load(path string, overlays ...string) (*Registry, error) {
	files := append([]string{path}, overlays...)
	c, err := conflate.FromFiles(files...)
	if err != nil {
		return nil, fmt.Errorf("failed to read contract registry %s: %w", strings.Join(files, ", "), err)
	}
	bytes, err := c.MarshalYAML()
	if err != nil {
		return nil, err
	}
	return Parse(bytes)
}

// Parse accepts JSON or YAML content.
func Parse(data []byte) (*Registry, error) {
	var raw rawFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid contract registry: %w", err)
	}
	keys, err := networkKeys(raw)
	if err != nil {
		return nil, err
	}
	r := New()
	for networkKey, kinds := range raw.Contracts {
		network := keys[networkKey]
		r.contracts[network] = map[types.ContractKind]types.DeployedContract{}
		for kindKey, entry := range kinds {
			address, err := types.ParseHexAddress(entry.Address.String())
			if err != nil {
				return nil, fmt.Errorf("invalid contract registry entry %s.%s: %w", networkKey, kindKey, err)
			}
			r.contracts[network][types.ContractKind(kindKey)] = types.DeployedContract{
				Address:     address,
				Transaction: strings.ToLower(strings.TrimSpace(entry.Transaction)),
			}
		}
	}
	return r, nil
}

// networkKeys resolves every network key of a file. Two keys naming the same network,
// e.g. hardhat and local-dev, are rejected.
func networkKeys(raw rawFile) (map[string]types.NetworkName, error) {
	sorted := make([]string, 0, len(raw.Contracts))
	for k := range raw.Contracts {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)

	keys := make(map[string]types.NetworkName, len(sorted))
	byNetwork := map[types.NetworkName]string{}
	for _, k := range sorted {
		network, err := types.NetworkNameFromString(k)
		if err != nil {
			return nil, fmt.Errorf("invalid contract registry: %w", err)
		}
		if prev, ok := byNetwork[network]; ok {
			return nil, fmt.Errorf("invalid contract registry: '%s' and '%s' both name network '%s'", prev, k, network)
		}
		byNetwork[network] = k
		keys[k] = network
	}
	return keys, nil
}

func (r *Registry) Entry(network types.NetworkName, kind types.ContractKind) (types.DeployedContract, bool) {
	e, ok := r.contracts[network][kind]
	return e, ok
}

func (r *Registry) Address(network types.NetworkName, kind types.ContractKind) (types.HexAddress, error) {
	e, ok := r.Entry(network, kind)
	if !ok {
		return "", &types.MissingAddressMappingError{Network: network, Kind: kind}
	}
	return e.Address, nil
}

// Kinds lists the kinds recorded for a network, canonical kinds first then the rest sorted.
func (r *Registry) Kinds(network types.NetworkName) []types.ContractKind {
	recorded := r.contracts[network]
	kinds := make([]types.ContractKind, 0, len(recorded))
	seen := map[types.ContractKind]bool{}
	for _, k := range types.ContractKinds {
		if _, ok := recorded[k]; ok {
			kinds = append(kinds, k)
			seen[k] = true
		}
	}
	extra := []types.ContractKind{}
	for k := range recorded {
		if !seen[k] {
			extra = append(extra, k)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(kinds, extra...)
}

func (r *Registry) WithAddress(network types.NetworkName, kind types.ContractKind, entry types.DeployedContract) *Registry {
	next := New()
	for n, kinds := range r.contracts {
		next.contracts[n] = make(map[types.ContractKind]types.DeployedContract, len(kinds)+1)
		for k, e := range kinds {
			next.contracts[n][k] = e
		}
	}
	if next.contracts[network] == nil {
		next.contracts[network] = map[types.ContractKind]types.DeployedContract{}
	}
	next.contracts[network][kind] = entry
	return next
}

// Record adds one deployed contract to the registry file at path and leaves every other
// entry as written, including network aliases. Overlays are never folded in. The previous
// file is kept as <path>.bak and the write goes through a temporary file so an interrupted
// save never truncates the registry.
func Record(path string, network types.NetworkName, kind types.ContractKind, entry types.DeployedContract) error {
	raw := rawFile{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if _, err := Parse(data); err != nil {
			return err
		}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("invalid contract registry: %w", err)
		}
		if err := copy.Copy(path, path+".bak"); err != nil {
			return fmt.Errorf("failed to back up contract registry: %w", err)
		}
	case !os.IsNotExist(err):
		return err
	}
	if raw.Contracts == nil {
		raw.Contracts = map[string]map[string]rawEntry{}
	}

	key := network.String()
	for k := range raw.Contracts {
		if n, err := types.NetworkNameFromString(k); err == nil && n == network {
			key = k
		}
	}
	if raw.Contracts[key] == nil {
		raw.Contracts[key] = map[string]rawEntry{}
	}
	raw.Contracts[key][kind.String()] = rawEntry{Address: entry.Address, Transaction: entry.Transaction}

	bytes, err := marshal(raw, filepath.Ext(path))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, bytes, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func marshal(raw rawFile, ext string) ([]byte, error) {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		return yaml.Marshal(raw)
	default:
		bytes, err := json.MarshalIndent(raw, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(bytes, '\n'), nil
	}
}
