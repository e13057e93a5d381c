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
	"encoding/json"
	"fmt"

	"github.com/rainprotocol/xdeploy/internal/fees"
	"github.com/spf13/cobra"
)

var feesCmd = &cobra.Command{
	Use:   "fees <network>",
	Short: "Print the fee profile a deployment to the network would use",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, nets, err := loadConfig()
		if err != nil {
			return err
		}
		network, err := nets.Resolve(args[0])
		if err != nil {
			return err
		}
		estimator, err := fees.NewEstimator(cfg, fees.RPCDialer(cfg.Retry))
		if err != nil {
			return err
		}
		ctx, _ := commandContext(cmd)
		profile, err := estimator.Estimate(ctx, network)
		if err != nil {
			return err
		}
		b, err := json.MarshalIndent(profile, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(feesCmd)
}
