// Copyright © 2024 Kaleido, Inc.
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
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rainprotocol/xdeploy/pkg/types"
	"github.com/spf13/cobra"
)

var promptInput io.Reader = os.Stdin

func confirm(promptText string) error {
	reader := bufio.NewReader(promptInput)
	fmt.Printf("%s [y/N] ", promptText)
	str, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return err
	}
	str = strings.ToLower(strings.TrimSpace(str))
	if str == "y" || str == "yes" {
		return nil
	}
	return fmt.Errorf("confirmation declined with response: '%s'", str)
}

func printError(err error) {
	if fancyFeatures {
		fmt.Fprintf(os.Stderr, "\u001b[31mError: %s\u001b[0m\n", err.Error())
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err.Error())
	}
}

// completeNetworks aids in completion of --from, --to and --network.
func completeNetworks(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	names := []string{}
	for _, n := range types.NetworkNames {
		names = append(names, n.String())
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
