// Copyright (c) 2020–2026 The prologix developers. All rights reserved.
// Project site: https://github.com/gotmc/plx
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/gotmc/plx"
	"github.com/gotmc/plx/lib/cmdlog"
	"github.com/spf13/cobra"
)

func (a *app) shellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Type messages interactively",
		Long: `Read messages from standard input, one per line, until q or end of input.

Lines ending in '?' are queried and the reply is printed. The line read asks
the addressed instrument to talk, rawread prints what the adapter already
holds without sending ++read. Anything else is sent without reading.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd, func(s *plx.Session) error {
				p := cmdlog.New(s, cmd.OutOrStdout())
				in := bufio.NewScanner(cmd.InOrStdin())
				for {
					fmt.Fprint(cmd.OutOrStdout(), "> ")
					if !in.Scan() {
						fmt.Fprintln(cmd.OutOrStdout())
						return in.Err()
					}
					line := strings.TrimSpace(in.Text())
					switch {
					case line == "":
					case line == "q":
						return nil
					case line == "read":
						p.PrintRead()
					case line == "rawread":
						p.PrintReadRaw()
					case strings.HasSuffix(line, "?"):
						p.PrintQuery(line)
					default:
						p.Send(line)
					}
				}
			})
		},
	}
}
