// Copyright (c) 2020–2026 The prologix developers. All rights reserved.
// Project site: https://github.com/gotmc/plx
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/gotmc/plx"
	"github.com/gotmc/plx/lib/cmdlog"
	"github.com/spf13/cobra"
)

// reply is the JSON and YAML form of an instrument reply.
type reply struct {
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
	Reply   string `json:"reply" yaml:"reply"`
	Bytes   int    `json:"bytes" yaml:"bytes"`
}

func (a *app) sendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send <message>...",
		Short: "Send a message without reading a reply",
		Long: `Send a message to the adapter or the addressed instrument. Arguments are
joined with spaces.

Examples:
  plx send '++addr 12'
  plx send 'OUTP ON;++loc'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd, func(s *plx.Session) error {
				return s.Send(strings.Join(args, " "))
			})
		},
	}
}

func (a *app) queryCmd() *cobra.Command {
	var (
		size int
		raw  bool
	)
	c := &cobra.Command{
		Use:   "query <message>...",
		Short: "Send a message and read the instrument's reply",
		Long: `Send a message, ask the addressed instrument to talk and print what it
returns. An instrument that stays silent until the read timeout gives an
empty reply, not an error.

Examples:
  plx --addr 22 query '*IDN?'
  plx query -o json 'MEAS:VOLT:DC?'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg := strings.Join(args, " ")
			return a.withSession(cmd, func(s *plx.Session) error {
				b, err := s.Query(msg)
				if err != nil {
					return err
				}
				return a.printReply(cmd.OutOrStdout(), msg, b, raw)
			}, plx.WithReadSize(size))
		},
	}
	c.Flags().IntVarP(&size, "size", "n", plx.DefaultReadSize, "Maximum reply size in bytes")
	c.Flags().BoolVar(&raw, "raw", false, "Write the reply bytes unmodified")
	return c
}

func (a *app) readCmd() *cobra.Command {
	var (
		size        int
		raw         bool
		noDirective bool
	)
	c := &cobra.Command{
		Use:   "read",
		Short: "Read a pending reply from the addressed instrument",
		Long: `Send ++read and print what the addressed instrument answers.

With --no-directive nothing is sent and only what the adapter already holds
is read, which is what ++auto 1 needs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd, func(s *plx.Session) error {
				read := s.Read
				if noDirective {
					read = s.ReadRaw
				}
				b, err := read(size)
				if err != nil {
					return err
				}
				return a.printReply(cmd.OutOrStdout(), "", b, raw)
			})
		},
	}
	c.Flags().IntVarP(&size, "size", "n", plx.DefaultReadSize, "Maximum reply size in bytes")
	c.Flags().BoolVar(&raw, "raw", false, "Write the reply bytes unmodified")
	c.Flags().BoolVar(&noDirective, "no-directive", false, "Do not send ++read first")
	return c
}

func (a *app) printReply(w io.Writer, msg string, b []byte, raw bool) error {
	if raw {
		_, err := w.Write(b)
		return err
	}
	if done, err := a.formatOutput(w, reply{Message: msg, Reply: string(b), Bytes: len(b)}); done {
		return err
	}
	text := strings.TrimRight(string(b), "\r\n")
	if !cmdlog.IsText(text) {
		text = cmdlog.Describe(b)
	}
	_, err := fmt.Fprintln(w, text)
	return err
}
