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
	"path/filepath"
	"time"

	"github.com/rainprotocol/xdeploy/internal/config"
	"github.com/rainprotocol/xdeploy/internal/constants"
	"github.com/rainprotocol/xdeploy/internal/fees"
	"github.com/rainprotocol/xdeploy/internal/keys"
	"github.com/rainprotocol/xdeploy/internal/pipeline"
	"github.com/rainprotocol/xdeploy/internal/registry"
	"github.com/rainprotocol/xdeploy/internal/rpc"
	"github.com/rainprotocol/xdeploy/internal/transactions"
	"github.com/rainprotocol/xdeploy/internal/verify"
	"github.com/rainprotocol/xdeploy/pkg/types"
	"github.com/spf13/cobra"
)

var deployOptions types.DeployOptions
var registryPath string
var overlays []string

// deployCmd represents the deploy command
var deployCmd = &cobra.Command{
	Use:   "deploy --from <network> --to <network>",
	Short: "Redeploy the contract set from one network to another",
	Long: `Redeploy the contract set from one network to another.

Each contract's creation transaction is read from the source network, the addresses of
contracts it depends on are rewritten to their destination network counterparts, and the
result is signed with DEPLOYMENT_KEY and submitted. The registry is saved after every
contract so an interrupted run can be continued with --resume.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, nets, err := loadConfig()
		if err != nil {
			return err
		}
		from, err := nets.Resolve(deployOptions.From)
		if err != nil {
			return err
		}
		to, err := nets.Resolve(deployOptions.To)
		if err != nil {
			return err
		}
		reportFormat, err := types.ReportFormatFromString(deployOptions.ReportFormat)
		if err != nil {
			return err
		}
		only, err := types.ContractKindsFromStrings(deployOptions.Only)
		if err != nil {
			return err
		}
		plan, err := pipeline.DefaultPlan().Only(only)
		if err != nil {
			return err
		}

		if registryPath == "" {
			registryPath = cfg.RegistryPath
		}
		reg, err := registry.Load(registryPath, append(cfg.Overlays, overlays...)...)
		if err != nil {
			return err
		}

		if cfg.Keys.Deployment == "" {
			return fmt.Errorf("no deployment key: set %s", constants.EnvDeploymentKey)
		}
		key, err := keys.FromHex(cfg.Keys.Deployment)
		if err != nil {
			return err
		}
		defer key.Close()

		if !deployOptions.SkipConfirm {
			if err := confirm(fmt.Sprintf("deploy from %s to %s as %s?", from.Name, to.Name, key.Address())); err != nil {
				return err
			}
		}

		runner, err := newRunner(cfg, plan, reg)
		if err != nil {
			return err
		}

		ctx, spin := commandContext(cmd)
		if spin != nil {
			spin.Start()
		}
		results, runErr := runner.Run(ctx, from, to, key)
		if spin != nil {
			spin.Stop()
		}

		report := pipeline.NewReport(from.Name, to.Name, results, runErr)
		if deployOptions.SaveReport && deployOptions.ReportPath == "" {
			deployOptions.ReportPath = defaultReportPath(to.Name, reportFormat)
		}
		if deployOptions.ReportPath != "" {
			if err := report.WriteFile(deployOptions.ReportPath, reportFormat); err != nil {
				return err
			}
			logger.Info(fmt.Sprintf("report written to %s", deployOptions.ReportPath))
		} else if err := report.Write(cmd.OutOrStdout(), reportFormat); err != nil {
			return err
		}
		return runErr
	},
}

func newRunner(cfg *config.Config, plan pipeline.Plan, reg *registry.Registry) (*pipeline.Runner, error) {
	estimator, err := fees.NewEstimator(cfg, fees.RPCDialer(cfg.Retry))
	if err != nil {
		return nil, err
	}
	connect := transactions.RPCConnector(cfg.Retry)
	builder := transactions.NewBuilder(connect, estimator)
	broadcaster := transactions.NewBroadcaster(connect, cfg.Receipts.Interval, cfg.Receipts.Polls)
	verifier := verify.NewClient(cfg.Retry, cfg.Verify.Attempts, cfg.Verify.Delay)
	fetch := pipeline.RPCFetcher(func(network types.NetworkConfig) (*rpc.Client, error) {
		return rpc.NewClient(network, cfg.Retry)
	})

	artifacts := deployOptions.ArtifactsDir
	if artifacts == "" {
		artifacts = cfg.ArtifactsDir
	}
	return pipeline.NewRunner(plan, reg, fetch, builder, broadcaster, verifier, func(network types.NetworkName, kind types.ContractKind, entry types.DeployedContract) error {
		return registry.Record(registryPath, network, kind, entry)
	}, pipeline.Options{
		Resume:       deployOptions.Resume,
		Verify:       deployOptions.Verify,
		ArtifactsDir: artifacts,
	}), nil
}

func defaultReportPath(to types.NetworkName, format types.ReportFormat) string {
	name := fmt.Sprintf("deploy-%s-%s.%s", to, time.Now().UTC().Format("20060102T150405Z"), format)
	return filepath.Join(constants.DefaultReportDir, name)
}

func init() {
	deployCmd.Flags().StringVarP(&deployOptions.From, "from", "f", "", "network to read the deployed contracts from")
	deployCmd.Flags().StringVarP(&deployOptions.To, "to", "t", "", "network to deploy the contracts to")
	deployCmd.Flags().StringSliceVar(&deployOptions.Only, "only", nil, fmt.Sprintf("deploy only these contracts %v", types.ContractKinds))
	deployCmd.Flags().BoolVar(&deployOptions.Resume, "resume", false, "skip contracts the registry already has a destination address for")
	deployCmd.Flags().BoolVar(&deployOptions.Verify, "verify", false, "verify each deployed contract on the destination block explorer")
	deployCmd.Flags().StringVar(&deployOptions.ArtifactsDir, "artifacts", "", "directory of verification artifacts")
	deployCmd.Flags().BoolVarP(&deployOptions.SkipConfirm, "yes", "y", false, "do not ask for confirmation")
	deployCmd.Flags().StringVar(&registryPath, "registry", "", "path of the deployed contract registry")
	deployCmd.Flags().StringSliceVar(&overlays, "overlay", nil, "additional registry files merged over the registry")
	deployCmd.Flags().StringVar(&deployOptions.ReportPath, "report", "", "write the deployment report to this file instead of stdout")
	deployCmd.Flags().BoolVar(&deployOptions.SaveReport, "save-report", false, fmt.Sprintf("write the deployment report under %s", constants.DefaultReportDir))
	deployCmd.Flags().StringVar(&deployOptions.ReportFormat, "report-format", "json", fmt.Sprintf("report format %v", types.ReportFormatStrings))
	_ = deployCmd.MarkFlagRequired("from")
	_ = deployCmd.MarkFlagRequired("to")

	_ = deployCmd.RegisterFlagCompletionFunc("from", completeNetworks)
	_ = deployCmd.RegisterFlagCompletionFunc("to", completeNetworks)
	rootCmd.AddCommand(deployCmd)
}
