// Copyright 2025 Marek Stolarz (mstolarz)
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
//
// SPDX-License-Identifier: Apache-2.0

package launchpad

import (
	"context"
	"os"

	"github.com/mstolarz/launchpad/cmd/launchpad/run"
	"github.com/mstolarz/launchpad/cmd/launchpad/scripts"
	"github.com/mstolarz/launchpad/internal/config"
	"github.com/mstolarz/launchpad/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "launchpad",
		Short: "launchpad runs long-lived scripts and follows their output",
		Long: `launchpad launches registered scripts (or any script path) under a
supervised runner, streams their combined stdout/stderr, and stops them
gracefully on Ctrl-C.

Examples:
  launchpad run invoices
  launchpad run ./jobs/sync.sh --args "--full --since 2025-01-01"
  launchpad scripts add invoices ./jobs/invoices.sh
  launchpad scripts list -o yaml
`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logfile, _ := cmd.Flags().GetString("log-file")
			loglevel, _ := cmd.Flags().GetString("log-level")
			if logfile != "" {
				if err := logging.SetupFileLogger(cmd, logfile, loglevel); err != nil {
					return err
				}
			}

			cfgPath, _ := cmd.Flags().GetString("config")
			if cfgPath == "" {
				cfgPath = os.Getenv(config.EnvConfigFile)
			}
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}

			ctx := context.WithValue(cmd.Context(), config.CtxConfig, cfg)
			cmd.SetContext(ctx)
			return nil
		},
	}

	registerGlobalFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(run.NewRunCmd())
	rootCmd.AddCommand(scripts.NewScriptsCmd())

	return rootCmd
}

// registerGlobalFlags declares the flags shared by every subcommand.
func registerGlobalFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "Config file (default ~/.launchpad/config.json, env "+config.EnvConfigFile+")")
	flags.String("log-file", "", "Write internal logs to this file")
	flags.String("log-level", "info", "Log level: debug|info|warn|error")
}
