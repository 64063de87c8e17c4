// Copyright (c) 2020–2026 The prologix developers. All rights reserved.
// Project site: https://github.com/gotmc/plx
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/gotmc/plx/lib/find"
	"github.com/spf13/cobra"
)

type portRow struct {
	Dev     string `json:"dev" yaml:"dev"`
	VID     string `json:"vid" yaml:"vid"`
	PID     string `json:"pid" yaml:"pid"`
	Serial  string `json:"serial" yaml:"serial"`
	Product string `json:"product,omitempty" yaml:"product,omitempty"`
}

func (a *app) portsCmd() *cobra.Command {
	var all bool
	c := &cobra.Command{
		Use:   "ports",
		Short: "List serial devices that look like Prologix GPIB-USB adapters",
		Long: `List attached serial devices. By default only devices with the FTDI
vendor and product IDs used by Prologix GPIB-USB adapters are shown; the
serial number column is what --serial expects.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ports, err := find.Lister()
			if err != nil && len(ports) == 0 {
				return err
			}
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", err)
			}

			rows := []portRow{}
			for i := range ports {
				p := &ports[i]
				if !all && !find.PrologixFilter(p) {
					continue
				}
				rows = append(rows, portRow{Dev: p.Dev, VID: p.VID, PID: p.PID, Serial: p.Serial, Product: p.Product})
			}

			out := cmd.OutOrStdout()
			if done, err := a.formatOutput(out, rows); done {
				return err
			}
			if len(rows) == 0 {
				fmt.Fprintln(out, "No adapters found.")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "DEVICE\tVID:PID\tSERIAL\tPRODUCT")
			for _, r := range rows {
				fmt.Fprintf(w, "%s\t%s:%s\t%s\t%s\n", r.Dev, r.VID, r.PID, r.Serial, r.Product)
			}
			return w.Flush()
		},
	}
	c.Flags().BoolVarP(&all, "all", "a", false, "List every serial device")
	return c
}
