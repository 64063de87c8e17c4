// Copyright (c) 2020–2026 The prologix developers. All rights reserved.
// Project site: https://github.com/gotmc/plx
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package plx

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gotmc/query"
)

// Mode is the operating mode of the Prologix adapter.
type Mode int

// Available modes for the Prologix controller.
const (
	DeviceMode Mode = iota
	ControllerMode
)

func (m Mode) String() string {
	switch m {
	case DeviceMode:
		return "device"
	case ControllerMode:
		return "controller"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// GpibTerm provides the type for the available GPIB terminators.
type GpibTerm int

// Available GPIB terminators for the Prologix Controller.
const (
	AppendCRLF GpibTerm = iota
	AppendCR
	AppendLF
	AppendNothing
)

var gpibTermDesc = map[GpibTerm]string{
	AppendCRLF:    `Append CR+LF (\r\n) to instrument commands`,
	AppendCR:      `Append CR (\r) to instrument commands`,
	AppendLF:      `Append LF (\n) to instrument commands`,
	AppendNothing: `Do not append anything to instrument commands`,
}

func (term GpibTerm) String() string {
	if d, ok := gpibTermDesc[term]; ok {
		return d
	}
	return fmt.Sprintf("GpibTerm(%d)", int(term))
}

// ControllerConfig holds the six settings written by Configure.
type ControllerConfig struct {
	Mode      Mode
	Auto      bool     // read-after-write
	EOI       bool     // assert EOI with the last byte
	EOS       GpibTerm // GPIB terminator appended by the adapter
	EOTEnable bool     // append EOTChar when EOI is detected
	EOTChar   byte
}

// DefaultControllerConfig is controller mode, read-after-write off, EOI on,
// CR+LF GPIB termination and an LF appended on EOI.
func DefaultControllerConfig() ControllerConfig {
	return ControllerConfig{
		Mode:      ControllerMode,
		Auto:      false,
		EOI:       true,
		EOS:       AppendCRLF,
		EOTEnable: true,
		EOTChar:   '\n',
	}
}

func (c ControllerConfig) validate() error {
	if c.Mode != DeviceMode && c.Mode != ControllerMode {
		return &ConfigurationError{Field: "mode", Reason: fmt.Sprintf("invalid mode %d (must be 0 or 1)", c.Mode)}
	}
	if c.EOS < AppendCRLF || c.EOS > AppendNothing {
		return &ConfigurationError{Field: "eos", Reason: fmt.Sprintf("invalid eos %d (must be 0-3)", c.EOS)}
	}
	return nil
}

// commands returns the controller commands for c in the order they are sent.
func (c ControllerConfig) commands() []string {
	return []string{
		fmt.Sprintf("++mode %d", c.Mode),                  // Controller or device mode.
		fmt.Sprintf("++auto %d", btoi(c.Auto)),            // Read-after-write.
		fmt.Sprintf("++eoi %d", btoi(c.EOI)),              // EOI assertion with last character.
		fmt.Sprintf("++eos %d", c.EOS),                    // GPIB termination.
		fmt.Sprintf("++eot_enable %d", btoi(c.EOTEnable)), // Append character when EOI detected.
		fmt.Sprintf("++eot_char %d", c.EOTChar),           // The EOT char.
	}
}

// Configure sends the mode, auto, eoi, eos, eot_enable and eot_char commands,
// one Send each, stopping at the first failure. The configuration is
// validated before anything is sent.
func (s *Session) Configure(cfg ControllerConfig) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	for _, cmd := range cfg.commands() {
		if err := s.Send(cmd); err != nil {
			return err
		}
	}
	return nil
}

// CommandController sends a single controller command. The "++" prefix is
// added when missing.
func (s *Session) CommandController(cmd string) error {
	cmd = strings.TrimSpace(cmd)
	if !strings.HasPrefix(cmd, CommandPrefix) {
		cmd = CommandPrefix + cmd
	}
	return s.Send(cmd)
}

// QueryController sends a controller command and reads the adapter's own
// reply. Unlike Query it does not issue ++read, since the reply comes from
// the adapter rather than the instrument.
func (s *Session) QueryController(cmd string) ([]byte, error) {
	if err := s.CommandController(cmd); err != nil {
		return nil, err
	}
	return s.readResponse(s.readSize)
}

// controllerQuerier adapts a session to query.Querier for controller
// commands.
type controllerQuerier struct{ s *Session }

func (q controllerQuerier) Query(cmd string) (string, error) {
	b, err := q.s.QueryController(cmd)
	return strings.TrimSpace(string(b)), err
}

// SetAddress sets the primary GPIB address of the instrument to talk to.
func (s *Session) SetAddress(pad int) error {
	if !isPrimaryAddressValid(pad) {
		return &ConfigurationError{Field: "address", Reason: fmt.Sprintf("invalid primary address %d (must be 0-30)", pad)}
	}
	return s.Send(fmt.Sprintf("++addr %d", pad))
}

// SetAddresses sets both the primary and secondary GPIB address.
func (s *Session) SetAddresses(pad, sad int) error {
	if !isPrimaryAddressValid(pad) {
		return &ConfigurationError{Field: "address", Reason: fmt.Sprintf("invalid primary address %d (must be 0-30)", pad)}
	}
	if !isSecondaryAddressValid(sad) {
		return &ConfigurationError{Field: "address", Reason: fmt.Sprintf("invalid secondary address %d (must be 96-126)", sad)}
	}
	return s.Send(fmt.Sprintf("++addr %d %d", pad, sad))
}

// InstrumentAddress returns the primary and, if set, secondary GPIB address.
func (s *Session) InstrumentAddress() (pad int, sad int, hasSecondary bool, err error) {
	str, err := query.String(controllerQuerier{s}, "++addr")
	if err != nil {
		return 0, 0, false, err
	}
	fields := strings.Fields(str)
	if len(fields) == 0 {
		return 0, 0, false, fmt.Errorf("empty reply to ++addr")
	}
	pad, err = strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, false, fmt.Errorf("parsing primary address %q: %w", fields[0], err)
	}
	if len(fields) > 1 {
		sad, err = strconv.Atoi(fields[1])
		if err != nil {
			return 0, 0, false, fmt.Errorf("parsing secondary address %q: %w", fields[1], err)
		}
		hasSecondary = true
	}
	return pad, sad, hasSecondary, nil
}

// Version returns the adapter's version string.
func (s *Session) Version() (string, error) {
	return query.String(controllerQuerier{s}, "++ver")
}

// ReadAfterWrite reports whether the adapter addresses the instrument to talk
// after every write (++auto).
func (s *Session) ReadAfterWrite() (bool, error) {
	return query.Bool(controllerQuerier{s}, "++auto")
}

// ReadTimeout returns the adapter's inter-character read timeout.
func (s *Session) ReadTimeout() (time.Duration, error) {
	ms, err := query.Int(controllerQuerier{s}, "++read_tmo_ms")
	if err != nil {
		return 0, err
	}
	return time.Duration(ms) * time.Millisecond, nil
}

// SetReadTimeout sets the adapter's inter-character read timeout, which must
// be between 1 and 3000 ms.
func (s *Session) SetReadTimeout(d time.Duration) error {
	ms := d.Milliseconds()
	if ms < 1 || ms > 3000 {
		return &ConfigurationError{Field: "read_tmo_ms", Reason: fmt.Sprintf("invalid timeout %s (must be 1-3000 ms)", d)}
	}
	return s.Send(fmt.Sprintf("++read_tmo_ms %d", ms))
}

// ServiceRequest reports whether SRQ is asserted on the bus.
func (s *Session) ServiceRequest() (bool, error) {
	return query.Bool(controllerQuerier{s}, "++srq")
}

// GPIBTermination returns the terminator the adapter appends to instrument
// data (++eos).
func (s *Session) GPIBTermination() (GpibTerm, error) {
	n, err := query.Int(controllerQuerier{s}, "++eos")
	if err != nil {
		return 0, err
	}
	return GpibTerm(n), nil
}

// ClearDevice sends the Selected Device Clear (SDC) message.
func (s *Session) ClearDevice() error { return s.Send("++clr") }

// Trigger sends the Group Execute Trigger (GET) message.
func (s *Session) Trigger() error { return s.Send("++trg") }

// InterfaceClear asserts IFC, making the adapter controller-in-charge.
func (s *Session) InterfaceClear() error { return s.Send("++ifc") }

// FrontPanel returns the instrument to local (front panel) control.
func (s *Session) FrontPanel() error { return s.Send("++loc") }

// ResetController power-cycles the adapter.
func (s *Session) ResetController() error { return s.Send("++rst") }

// isPrimaryAddressValid checks that the primary GPIB address is between 0 and
// 30, inclusive.
func isPrimaryAddressValid(addr int) bool {
	return addr >= MinPrimaryAddr && addr <= MaxPrimaryAddr
}

// isSecondaryAddressValid checks that the secondary GPIB address is between 96
// and 126, inclusive.
func isSecondaryAddressValid(addr int) bool {
	if addr < 96 || addr > 126 {
		return false
	}
	return true
}

func btoi(b bool) int {
	if b {
		return 1
	}
	return 0
}
