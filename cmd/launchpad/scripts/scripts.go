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

// Package scripts manages the script registry: the named entries that
// `launchpad run` resolves before launching.
package scripts

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/mstolarz/launchpad/internal/config"
	"github.com/mstolarz/launchpad/internal/errdefs"
	"github.com/mstolarz/launchpad/internal/logging"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const Command string = "scripts"

func NewScriptsCmd() *cobra.Command {
	scriptsCmd := &cobra.Command{
		Use:          Command,
		Aliases:      []string{"script", "sc"},
		Short:        "Manage the script registry",
		SilenceUsage: true,
	}

	scriptsCmd.AddCommand(newListCmd())
	scriptsCmd.AddCommand(newAddCmd())
	scriptsCmd.AddCommand(newRemoveCmd())

	return scriptsCmd
}

func newListCmd() *cobra.Command {
	listCmd := &cobra.Command{
		Use:          "list",
		Aliases:      []string{"ls", "l"},
		Short:        "List registered scripts",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.FromContext(cmd.Context())
			if err != nil {
				return err
			}

			format, _ := cmd.Flags().GetString("output")
			return printScripts(cmd, cfg.Scripts(), format)
		},
	}

	listCmd.Flags().StringP("output", "o", "", "Output format: json|yaml (default: table)")
	_ = listCmd.RegisterFlagCompletionFunc(
		"output",
		func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
			return []string{"json", "yaml"}, cobra.ShellCompDirectiveNoFileComp
		},
	)

	return listCmd
}

func printScripts(cmd *cobra.Command, scripts map[string]string, format string) error {
	out := cmd.OutOrStdout()

	switch format {
	case "":
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tPATH")
		names := make([]string, 0, len(scripts))
		for name := range scripts {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(w, "%s\t%s\n", name, scripts[name])
		}
		return w.Flush()
	case "json":
		b, err := json.MarshalIndent(scripts, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(b))
		return nil
	case "yaml":
		b, err := yaml.Marshal(scripts)
		if err != nil {
			return err
		}
		fmt.Fprint(out, string(b))
		return nil
	default:
		return fmt.Errorf("%w: %s", errdefs.ErrUnknownOutput, format)
	}
}

func newAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "add <name> <path>",
		Short:        "Register a script under a name",
		Args:         cobra.ExactArgs(2),
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

			name, path := args[0], args[1]
			if _, errS := os.Stat(path); errS != nil {
				// registering ahead of the file existing is allowed,
				// but worth flagging
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s does not exist yet\n", path)
			}

			cfg.SetScript(name, path)
			if errSave := cfg.Save(); errSave != nil {
				return errSave
			}

			logger.Info("script registered", "name", name, "path", path)
			fmt.Fprintf(cmd.OutOrStdout(), "registered %q -> %s\n", name, path)
			return nil
		},
	}
}

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "remove <name>",
		Aliases:      []string{"rm"},
		Short:        "Remove a script from the registry",
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

			name := args[0]
			if !cfg.RemoveScript(name) {
				return fmt.Errorf("%w: %s", errdefs.ErrScriptUnknown, name)
			}
			if errSave := cfg.Save(); errSave != nil {
				return errSave
			}

			logger.Info("script removed", "name", name)
			fmt.Fprintf(cmd.OutOrStdout(), "removed %q\n", name)
			return nil
		},
	}
}
