// Copyright (c) 2020–2026 The prologix developers. All rights reserved.
// Project site: https://github.com/gotmc/plx
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// Package cmd implements the plx CLI commands.
package cmd

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"

	"github.com/gotmc/plx"
	"github.com/gotmc/plx/lib/connutil"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Version is set at build time
var Version = "0.1.0"

// app carries the state shared by all subcommands of one command tree.
type app struct {
	conn       connutil.Conn
	configPath string
	output     string
}

// NewRootCmd builds the plx command tree.
func NewRootCmd() *cobra.Command {
	a := &app{conn: connutil.Defaults()}

	root := &cobra.Command{
		Use:   "plx",
		Short: "Talk to GPIB instruments through a Prologix adapter",
		Long: `plx sends messages to GPIB instruments through a Prologix GPIB-USB or
GPIB-ETHERNET adapter.

Messages starting with ++ are adapter commands and are sent as is. Anything
else is forwarded to the addressed instrument with the payload terminator
appended. Several messages can be combined with ';'.

Examples:
  plx --serial PXG9ASAT --addr 22 query '*IDN?'
  plx --kind tcp --host 192.168.1.50 send '++addr 5;*RST'
  plx --config bench.yaml scan`,
		Version:      Version,
		SilenceUsage: true,
	}

	fs := flag.NewFlagSet("plx", flag.ContinueOnError)
	a.conn.AddFlags(fs)
	root.PersistentFlags().AddGoFlagSet(fs)
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML file with connection settings, flags take precedence")
	root.PersistentFlags().StringVarP(&a.output, "output", "o", "table", "Output format: table, json, yaml")

	root.AddCommand(
		a.sendCmd(),
		a.queryCmd(),
		a.readCmd(),
		a.scanCmd(),
		a.configureCmd(),
		a.infoCmd(),
		a.busCmd(),
		a.shellCmd(),
		a.portsCmd(),
		completionCmd(root),
	)
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// settings returns the connection settings: the config file if one was
// given, overridden by any connection flag set on the command line.
func (a *app) settings(cmd *cobra.Command) (connutil.Conn, error) {
	if a.configPath == "" {
		return a.conn, nil
	}
	c, err := connutil.LoadConfig(a.configPath)
	if err != nil {
		return c, err
	}

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	c.AddFlags(fs)
	cmd.Flags().Visit(func(f *pflag.Flag) {
		if fs.Lookup(f.Name) != nil {
			err = multierr.Append(err, fs.Set(f.Name, f.Value.String()))
		}
	})
	return c, err
}

// withSession opens a session, runs fn and closes the session again.
func (a *app) withSession(cmd *cobra.Command, fn func(*plx.Session) error, opts ...plx.SessionOption) (err error) {
	conn, err := a.settings(cmd)
	if err != nil {
		return err
	}
	s, cleanup, err := conn.Setup(opts...)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, cleanup())
	}()
	return fn(s)
}

// formatOutput writes data as JSON or YAML. It reports false for table
// output, which each command renders itself.
func (a *app) formatOutput(w io.Writer, data any) (bool, error) {
	switch a.output {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(data)
	case "yaml":
		out, err := yaml.Marshal(data)
		if err != nil {
			return true, err
		}
		_, err = w.Write(out)
		return true, err
	case "table":
		return false, nil
	default:
		return true, fmt.Errorf("unknown output format %q", a.output)
	}
}

func completionCmd(root *cobra.Command) *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for plx.

Bash:
  source <(plx completion bash)

Zsh:
  plx completion zsh > "${fpath[1]}/_plx"

Fish:
  plx completion fish > ~/.config/fish/completions/plx.fish

PowerShell:
  plx completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return root.GenBashCompletion(out)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(out)
			default:
				return fmt.Errorf("unknown shell: %s", args[0])
			}
		},
	}
}
