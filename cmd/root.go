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
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/mattn/go-isatty"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/rainprotocol/xdeploy/internal/config"
	"github.com/rainprotocol/xdeploy/internal/constants"
	"github.com/rainprotocol/xdeploy/internal/log"
	"github.com/rainprotocol/xdeploy/internal/networks"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string
var ansi string
var fancyFeatures bool
var verbose bool

var logger log.Logger = &log.StdoutLogger{
	LogLevel: log.Info,
}

var rootCmd = &cobra.Command{
	Use:   "xdeploy",
	Short: "xdeploy redeploys a set of interdependent contracts from one EVM network to another",
	Long: `xdeploy redeploys a set of interdependent contracts from one EVM network to another

Creation calldata is read from the source network, addresses of sibling contracts
embedded in it are swapped for their counterparts on the destination network, and the
result is signed and submitted as an EIP-1559 transaction.

To get started run: xdeploy deploy --from mumbai --to fuji
	`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		switch ansi {
		case "always":
			fancyFeatures = true
		case "auto":
			fancyFeatures = isatty.IsTerminal(os.Stdout.Fd())
		case "never":
			fancyFeatures = false
		default:
			return fmt.Errorf("invalid --ansi value '%s'. valid options are: [never always auto]", ansi)
		}
		return nil
	},
}

// normalizeArgs accepts -H as an alias of -h.
func normalizeArgs(args []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		if a == "-H" {
			a = "-h"
		}
		out[i] = a
	}
	return out
}

func Execute() int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	rootCmd.SetArgs(normalizeArgs(os.Args[1:]))
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		printError(err)
		return 1
	}
	return 0
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", fmt.Sprintf("config file (default is $HOME/%s.yaml)", constants.ConfigName))
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose log output")
	rootCmd.PersistentFlags().StringVarP(&ansi, "ansi", "", "auto", "control when to print ANSI control characters (\"never\"|\"always\"|\"auto\")")
}

func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".xdeploy" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(constants.ConfigName)
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func loadConfig() (*config.Config, *networks.Registry, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, nil, err
	}
	return cfg, networks.NewRegistry(cfg), nil
}

// commandContext carries the logger for the chosen output mode. The returned spinner is nil
// unless the terminal supports it.
func commandContext(cmd *cobra.Command) (context.Context, *spinner.Spinner) {
	var spin *spinner.Spinner
	switch {
	case verbose:
		l := log.NewLogrusLogger(os.Stderr, logrus.Fields{"cmd": cmd.Name()})
		l.SetLogLevel(log.Debug)
		logger = l
	case fancyFeatures:
		spin = spinner.New(spinner.CharSets[11], 100*time.Millisecond)
		logger = log.NewSpinnerLogger(spin)
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = log.WithVerbosity(ctx, verbose)
	ctx = log.WithLogger(ctx, logger)
	return ctx, spin
}
