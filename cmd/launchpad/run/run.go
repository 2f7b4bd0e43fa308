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

package run

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mstolarz/launchpad/internal/config"
	"github.com/mstolarz/launchpad/internal/launcher"
	"github.com/mstolarz/launchpad/internal/logging"
	"github.com/mstolarz/launchpad/internal/runner"
	"github.com/mstolarz/launchpad/pkg/api"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const (
	Command      string = "run"
	CommandAlias string = "r"
)

func NewRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:     Command + " <script-name|path>",
		Aliases: []string{CommandAlias},
		Short:   "Run a registered script or a script path and follow its output",
		Long: `Run a script under the supervised runner and stream its combined
stdout/stderr until it exits. Ctrl-C requests a graceful stop; a child that
keeps running past the grace period is killed.

The argument is either a name from the scripts registry or a filesystem path.

Examples:
  launchpad run invoices
  launchpad run ./jobs/sync.sh --args "--full --since 2025-01-01"
  launchpad run report.py --interpreter /usr/bin/python3 --pty
`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.FromContext(cmd.Context())
			if err != nil {
				return err
			}
			cfg, err := config.FromContext(cmd.Context())
			if err != nil {
				return err
			}

			argsStr, _ := cmd.Flags().GetString("args")
			workdir, _ := cmd.Flags().GetString("workdir")
			interpreter, _ := cmd.Flags().GetString("interpreter")
			usePty, _ := cmd.Flags().GetBool("pty")

			tokens, err := launcher.TokenizeArgs(argsStr)
			if err != nil {
				return err
			}

			scriptPath, err := launcher.ResolveScript(cfg, args[0])
			if err != nil {
				return err
			}

			if interpreter == "" {
				interpreter = cfg.Interpreter()
			}

			spec := &api.LaunchSpec{
				Executable: interpreter,
				ScriptPath: scriptPath,
				WorkDir:    workdir,
				Args:       tokens,
				PTY:        usePty,
			}

			logger.Info("run command invoked",
				"script", scriptPath,
				"interpreter", interpreter,
				"args", tokens,
				"pty", usePty,
			)

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			r := runner.NewExec(logger)
			l := launcher.New(logger, r, os.Stdout, cfg.LogMaxLines())

			if errL := l.Launch(spec); errL != nil {
				// the diagnostic line already went to stdout via the
				// launcher flush; report the rejection itself too
				return errL
			}

			if errF := l.Follow(ctx); errF != nil {
				logger.Error("follow loop failed", "error", errF)
				return errF
			}

			if term.IsTerminal(int(os.Stdout.Fd())) && r.State() == api.RunnerIdle {
				fmt.Fprintln(os.Stdout, "-- script finished --")
			}
			return nil
		},
	}

	runCmd.Flags().String("args", "", "Arguments passed to the script, tokenized shell-style")
	runCmd.Flags().String("workdir", "", "Working directory (default: the script's directory)")
	runCmd.Flags().String("interpreter", "", "Interpreter to run the script with (default from config)")
	runCmd.Flags().Bool("pty", false, "Run the child on a pseudo-terminal to keep it line-buffered")

	return runCmd
}
