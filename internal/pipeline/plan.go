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
	"fmt"
	"strings"

	"github.com/rainprotocol/xdeploy/pkg/types"
)

// Step redeploys one contract kind. Rewrites lists the kinds whose addresses are embedded
// in its calldata; DependsOn lists the kinds that must be deployed first.
type Step struct {
	Kind      types.ContractKind   `json:"kind" yaml:"kind"`
	Rewrites  []types.ContractKind `json:"rewrites,omitempty" yaml:"rewrites,omitempty"`
	DependsOn []types.ContractKind `json:"dependsOn,omitempty" yaml:"dependsOn,omitempty"`
}

type Plan []Step

func DefaultPlan() Plan {
	dispair := types.DISpairKinds
	return Plan{
		{Kind: types.Interpreter},
		{Kind: types.Store},
		{Kind: types.ExpressionDeployer, Rewrites: []types.ContractKind{types.Interpreter, types.Store}, DependsOn: []types.ContractKind{types.Interpreter, types.Store}},
		{Kind: types.Orderbook, Rewrites: dispair, DependsOn: dispair},
		{Kind: types.CloneFactory},
		{Kind: types.Flow, Rewrites: dispair, DependsOn: dispair},
		{Kind: types.FlowERC20, Rewrites: dispair, DependsOn: dispair},
	}
}

func (p Plan) step(kind types.ContractKind) (Step, bool) {
	for _, s := range p {
		if s.Kind == kind {
			return s, true
		}
	}
	return Step{}, false
}

// Order sorts steps so every dependency comes first, keeping declaration order otherwise.
func (p Plan) Order() ([]Step, error) {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[types.ContractKind]int, len(p))
	for _, s := range p {
		if _, dup := state[s.Kind]; dup {
			return nil, fmt.Errorf("plan has more than one step for %s", s.Kind)
		}
		state[s.Kind] = unvisited
	}

	ordered := make([]Step, 0, len(p))
	var path []types.ContractKind
	var visit func(s Step) error
	visit = func(s Step) error {
		switch state[s.Kind] {
		case done:
			return nil
		case visiting:
			cycle := append(path[indexOf(path, s.Kind):], s.Kind)
			return fmt.Errorf("plan has a dependency cycle: %s", joinKinds(cycle, " -> "))
		}
		state[s.Kind] = visiting
		path = append(path, s.Kind)
		for _, dep := range s.DependsOn {
			depStep, ok := p.step(dep)
			if !ok {
				return fmt.Errorf("step %s depends on %s, which is not in the plan", s.Kind, dep)
			}
			if err := visit(depStep); err != nil {
				return err
			}
		}
		path = path[:len(path)-1]
		state[s.Kind] = done
		ordered = append(ordered, s)
		return nil
	}
	for _, s := range p {
		if err := visit(s); err != nil {
			return nil, err
		}
	}
	return ordered, nil
}

// Only narrows the plan to the named kinds. Dependencies outside the selection are
// dropped, on the assumption they are already deployed on the destination.
func (p Plan) Only(kinds []types.ContractKind) (Plan, error) {
	if len(kinds) == 0 {
		return p, nil
	}
	selected := map[types.ContractKind]bool{}
	for _, k := range kinds {
		if _, ok := p.step(k); !ok {
			return nil, fmt.Errorf("no step for %s in the plan", k)
		}
		selected[k] = true
	}
	out := Plan{}
	for _, s := range p {
		if !selected[s.Kind] {
			continue
		}
		deps := []types.ContractKind{}
		for _, d := range s.DependsOn {
			if selected[d] {
				deps = append(deps, d)
			}
		}
		s.DependsOn = deps
		out = append(out, s)
	}
	return out, nil
}

func indexOf(kinds []types.ContractKind, k types.ContractKind) int {
	for i, x := range kinds {
		if x == k {
			return i
		}
	}
	return 0
}

func joinKinds(kinds []types.ContractKind, sep string) string {
	s := make([]string, len(kinds))
	for i, k := range kinds {
		s[i] = k.String()
	}
	return strings.Join(s, sep)
}
