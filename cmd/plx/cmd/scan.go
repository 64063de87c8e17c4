// Copyright (c) 2020–2026 The prologix developers. All rights reserved.
// Project site: https://github.com/gotmc/plx
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package cmd

import (
	"github.com/gotmc/plx"
	"github.com/gotmc/plx/lib/cmdlog"
	"github.com/spf13/cobra"
)

type scanRow struct {
	Address   int    `json:"address" yaml:"address"`
	Responded bool   `json:"responded" yaml:"responded"`
	Response  string `json:"response,omitempty" yaml:"response,omitempty"`
	Error     string `json:"error,omitempty" yaml:"error,omitempty"`
}

func (a *app) scanCmd() *cobra.Command {
	var all bool
	c := &cobra.Command{
		Use:   "scan",
		Short: "Serial poll GPIB addresses 0 to 30",
		Long: `Serial poll every GPIB primary address and list the ones that answer.
Scanning needs a GPIB-USB adapter; GPIB-ETHERNET adapters do not support it.

Examples:
  plx --serial PXG9ASAT scan
  plx scan --all -o yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd, func(s *plx.Session) error {
				results, err := s.Scan()
				if err != nil {
					return err
				}

				rows := make([]scanRow, 0, len(results))
				for _, r := range results {
					if !all && !r.Responded {
						continue
					}
					row := scanRow{Address: r.Address, Responded: r.Responded, Response: string(r.Response)}
					if r.Err != nil {
						row.Error = r.Err.Error()
					}
					rows = append(rows, row)
				}
				if done, err := a.formatOutput(cmd.OutOrStdout(), rows); done {
					return err
				}

				cmdlog.New(s, cmd.OutOrStdout()).PrintScan(results, all)
				return nil
			})
		},
	}
	c.Flags().BoolVarP(&all, "all", "a", false, "List silent addresses too")
	return c
}
