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
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

var networksOutput = "table"

var networksCmd = &cobra.Command{
	Use:     "networks",
	Aliases: []string{"ls"},
	Short:   "List the supported networks",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, nets, err := loadConfig()
		if err != nil {
			return err
		}
		all := nets.All()
		out := cmd.OutOrStdout()
		switch networksOutput {
		case "table":
			w := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tCHAIN ID\tHARDFORK\tRPC\tEXPLORER")
			for _, n := range all {
				rpc := "configured"
				if n.RPCURL == "" {
					rpc = fmt.Sprintf("missing %s", n.RPCKeyEnv)
				}
				explorer := n.ExplorerURL
				if explorer == "" {
					explorer = "-"
				}
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", n.Name, n.ChainID, n.Hardfork, rpc, explorer)
			}
			return w.Flush()
		case "json":
			b, err := json.MarshalIndent(all, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
		case "yaml":
			b, err := yaml.Marshal(all)
			if err != nil {
				return err
			}
			fmt.Fprint(out, string(b))
		default:
			return fmt.Errorf("invalid output '%s'", networksOutput)
		}
		return nil
	},
}

func init() {
	networksCmd.Flags().StringVarP(&networksOutput, "output", "o", "table", "output format (\"table\"|\"json\"|\"yaml\")")
	rootCmd.AddCommand(networksCmd)
}
