// Copyright (c) 2020–2026 The prologix developers. All rights reserved.
// Project site: https://github.com/gotmc/plx
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package cmd

import (
	"fmt"
	"strings"

	"github.com/gotmc/plx"
	"github.com/spf13/cobra"
)

func (a *app) configureCmd() *cobra.Command {
	var (
		mode string
		eos  int
		char int
	)
	cfg := plx.DefaultControllerConfig()
	c := &cobra.Command{
		Use:   "configure",
		Short: "Write the adapter's mode and termination settings",
		Long: `Send ++mode, ++auto, ++eoi, ++eos, ++eot_enable and ++eot_char. Without
flags this writes controller mode, read-after-write off, EOI on, CR+LF GPIB
termination and an LF appended when EOI is seen.

Examples:
  plx configure
  plx configure --eos 2 --auto`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch strings.ToLower(mode) {
			case "controller", "1":
				cfg.Mode = plx.ControllerMode
			case "device", "0":
				cfg.Mode = plx.DeviceMode
			default:
				return fmt.Errorf("unknown mode %q, want controller or device", mode)
			}
			if char < 0 || char > 255 {
				return fmt.Errorf("eot-char %d out of range 0-255", char)
			}
			cfg.EOS = plx.GpibTerm(eos)
			cfg.EOTChar = byte(char)
			return a.withSession(cmd, func(s *plx.Session) error {
				return s.Configure(cfg)
			})
		},
	}
	c.Flags().StringVar(&mode, "mode", "controller", "Adapter mode: controller or device")
	c.Flags().BoolVar(&cfg.Auto, "auto", cfg.Auto, "Read after write")
	c.Flags().BoolVar(&cfg.EOI, "eoi", cfg.EOI, "Assert EOI with the last byte sent")
	c.Flags().IntVar(&eos, "eos", int(cfg.EOS), "GPIB termination: 0 CR+LF, 1 CR, 2 LF, 3 none")
	c.Flags().BoolVar(&cfg.EOTEnable, "eot-enable", cfg.EOTEnable, "Append eot-char when EOI is detected")
	c.Flags().IntVar(&char, "eot-char", int(cfg.EOTChar), "Character appended when EOI is detected")
	return c
}

// controllerInfo is what info reports about the adapter.
type controllerInfo struct {
	Version        string `json:"version" yaml:"version"`
	PrimaryAddr    int    `json:"primary_address" yaml:"primary_address"`
	SecondaryAddr  *int   `json:"secondary_address,omitempty" yaml:"secondary_address,omitempty"`
	ReadAfterWrite bool   `json:"read_after_write" yaml:"read_after_write"`
	ReadTimeoutMS  int64  `json:"read_timeout_ms" yaml:"read_timeout_ms"`
	SRQ            bool   `json:"srq" yaml:"srq"`
	Termination    string `json:"gpib_termination" yaml:"gpib_termination"`
}

func (a *app) infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the adapter's version and settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd, func(s *plx.Session) error {
				info, err := readInfo(s)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if done, err := a.formatOutput(out, info); done {
					return err
				}

				fmt.Fprintf(out, "Version: %s\n", info.Version)
				if info.SecondaryAddr != nil {
					fmt.Fprintf(out, "Address: %d %d\n", info.PrimaryAddr, *info.SecondaryAddr)
				} else {
					fmt.Fprintf(out, "Address: %d\n", info.PrimaryAddr)
				}
				fmt.Fprintf(out, "Read after write: %t\n", info.ReadAfterWrite)
				fmt.Fprintf(out, "Read timeout: %d ms\n", info.ReadTimeoutMS)
				fmt.Fprintf(out, "SRQ asserted: %t\n", info.SRQ)
				fmt.Fprintf(out, "GPIB termination: %s\n", info.Termination)
				return nil
			})
		},
	}
}

func readInfo(s *plx.Session) (controllerInfo, error) {
	var info controllerInfo
	var err error

	if info.Version, err = s.Version(); err != nil {
		return info, err
	}
	pad, sad, hasSAD, err := s.InstrumentAddress()
	if err != nil {
		return info, err
	}
	info.PrimaryAddr = pad
	if hasSAD {
		info.SecondaryAddr = &sad
	}
	if info.ReadAfterWrite, err = s.ReadAfterWrite(); err != nil {
		return info, err
	}
	tmo, err := s.ReadTimeout()
	if err != nil {
		return info, err
	}
	info.ReadTimeoutMS = tmo.Milliseconds()
	if info.SRQ, err = s.ServiceRequest(); err != nil {
		return info, err
	}
	term, err := s.GPIBTermination()
	if err != nil {
		return info, err
	}
	info.Termination = term.String()
	return info, nil
}

var busActions = map[string]func(*plx.Session) error{
	"clear":   (*plx.Session).ClearDevice,
	"trigger": (*plx.Session).Trigger,
	"ifc":     (*plx.Session).InterfaceClear,
	"local":   (*plx.Session).FrontPanel,
	"reset":   (*plx.Session).ResetController,
}

func (a *app) busCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bus <clear|trigger|ifc|local|reset>",
		Short: "Send a GPIB bus command through the adapter",
		Long: `Send one of the adapter's bus commands:

  clear    Selected Device Clear to the addressed instrument (++clr)
  trigger  Group Execute Trigger to the addressed instrument (++trg)
  ifc      assert Interface Clear for 150 microseconds (++ifc)
  local    return the addressed instrument to front panel control (++loc)
  reset    power-on reset of the adapter (++rst)`,
		ValidArgs: []string{"clear", "trigger", "ifc", "local", "reset"},
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			action := busActions[args[0]]
			return a.withSession(cmd, action)
		},
	}
}
