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

package cmd

import (
	"fmt"

	"github.com/rainprotocol/xdeploy/internal/registry"
	"github.com/rainprotocol/xdeploy/internal/rewrite"
	"github.com/rainprotocol/xdeploy/internal/rpc"
	"github.com/rainprotocol/xdeploy/pkg/types"
	"github.com/spf13/cobra"
)

var rewriteOptions types.RewriteOptions

var rewriteCmd = &cobra.Command{
	Use:   "rewrite --from <network> --to <network> (--tx <hash> | --calldata <hex>)",
	Short: "Print creation calldata with its embedded addresses rewritten for another network",
	Long: `Print creation calldata with its embedded addresses rewritten for another network.

The calldata is either given directly or read from a transaction on the source network.
Nothing is signed or submitted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, nets, err := loadConfig()
		if err != nil {
			return err
		}
		from, err := nets.Resolve(rewriteOptions.From)
		if err != nil {
			return err
		}
		to, err := nets.Resolve(rewriteOptions.To)
		if err != nil {
			return err
		}
		if (rewriteOptions.TransactionHash == "") == (rewriteOptions.Calldata == "") {
			return fmt.Errorf("exactly one of --tx or --calldata is required")
		}

		if registryPath == "" {
			registryPath = cfg.RegistryPath
		}
		reg, err := registry.Load(registryPath, append(cfg.Overlays, overlays...)...)
		if err != nil {
			return err
		}
		kinds := sharedKinds(reg, from.Name, to.Name)
		if len(rewriteOptions.Kinds) > 0 {
			if kinds, err = types.RewriteKindsFromStrings(rewriteOptions.Kinds); err != nil {
				return err
			}
		}

		ctx, _ := commandContext(cmd)
		calldata := rewriteOptions.Calldata
		if rewriteOptions.TransactionHash != "" {
			client, err := rpc.NewClient(from, cfg.Retry)
			if err != nil {
				return err
			}
			tx, err := client.GetTransactionByHash(ctx, rewriteOptions.TransactionHash)
			if err != nil {
				return err
			}
			calldata = tx.Calldata
		}

		rewriter := rewrite.NewRewriter(reg)
		subs, err := rewriter.Plan(from.Name, to.Name, kinds)
		if err != nil {
			return err
		}
		counts := rewrite.Occurrences(calldata, subs)
		for _, s := range subs {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s (%d occurrences)\n", s, counts[s.Kind])
		}
		rewritten, err := rewriter.Rewrite(calldata, from.Name, to.Name, kinds)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), rewritten)
		return nil
	},
}

// sharedKinds are the kinds with an address on both networks, in canonical order.
func sharedKinds(reg *registry.Registry, from, to types.NetworkName) []types.ContractKind {
	onDest := map[types.ContractKind]bool{}
	for _, k := range reg.Kinds(to) {
		onDest[k] = true
	}
	kinds := []types.ContractKind{}
	for _, k := range reg.Kinds(from) {
		if onDest[k] {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

func init() {
	rewriteCmd.Flags().StringVarP(&rewriteOptions.From, "from", "f", "", "network the calldata was deployed on")
	rewriteCmd.Flags().StringVarP(&rewriteOptions.To, "to", "t", "", "network to rewrite the calldata for")
	rewriteCmd.Flags().StringVar(&rewriteOptions.TransactionHash, "tx", "", "creation transaction on the source network")
	rewriteCmd.Flags().StringVar(&rewriteOptions.Calldata, "calldata", "", "hex calldata to rewrite")
	rewriteCmd.Flags().StringSliceVar(&rewriteOptions.Kinds, "kinds", nil, "contract kinds whose addresses are rewritten, or the groups dispair and zeroex (default all)")
	rewriteCmd.Flags().StringVar(&registryPath, "registry", "", "path of the deployed contract registry")
	rewriteCmd.Flags().StringSliceVar(&overlays, "overlay", nil, "additional registry files merged over the registry")
	_ = rewriteCmd.MarkFlagRequired("from")
	_ = rewriteCmd.MarkFlagRequired("to")

	_ = rewriteCmd.RegisterFlagCompletionFunc("from", completeNetworks)
	_ = rewriteCmd.RegisterFlagCompletionFunc("to", completeNetworks)
	rootCmd.AddCommand(rewriteCmd)
}
