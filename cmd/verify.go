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

	"github.com/rainprotocol/xdeploy/internal/verify"
	"github.com/rainprotocol/xdeploy/pkg/types"
	"github.com/spf13/cobra"
)

var verifyNetwork string
var verifyKind string
var verifyArtifacts string

var verifyCmd = &cobra.Command{
	Use:   "verify --network <network> --kind <contract> <address>",
	Short: "Verify an already deployed contract on the network's block explorer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, nets, err := loadConfig()
		if err != nil {
			return err
		}
		network, err := nets.Resolve(verifyNetwork)
		if err != nil {
			return err
		}
		address, err := types.ParseHexAddress(args[0])
		if err != nil {
			return err
		}
		kinds, err := types.ContractKindsFromStrings([]string{verifyKind})
		if err != nil {
			return err
		}
		dir := verifyArtifacts
		if dir == "" {
			dir = cfg.ArtifactsDir
		}
		artifact, err := verify.LoadArtifact(dir, kinds[0])
		if err != nil {
			return err
		}

		ctx, spin := commandContext(cmd)
		if spin != nil {
			spin.Start()
			defer spin.Stop()
		}
		if err := verify.NewClient(cfg.Retry, cfg.Verify.Attempts, cfg.Verify.Delay).Verify(ctx, network, address, artifact); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s verified on %s\n", kinds[0], address, network.Name)
		return nil
	},
}

func init() {
	verifyCmd.Flags().StringVarP(&verifyNetwork, "network", "n", "", "network the contract is deployed on")
	verifyCmd.Flags().StringVarP(&verifyKind, "kind", "k", "", fmt.Sprintf("contract kind %v", types.ContractKinds))
	verifyCmd.Flags().StringVar(&verifyArtifacts, "artifacts", "", "directory of verification artifacts")
	_ = verifyCmd.MarkFlagRequired("network")
	_ = verifyCmd.MarkFlagRequired("kind")
	_ = verifyCmd.RegisterFlagCompletionFunc("network", completeNetworks)
	rootCmd.AddCommand(verifyCmd)
}
