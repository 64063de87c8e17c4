// Copyright (c) 2020–2026 The prologix developers. All rights reserved.
// Project site: https://github.com/gotmc/plx
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// Package vcp provides the Virtual COM Port transport for the Prologix
// GPIB-USB controller.
package vcp

import (
	"fmt"
	"time"

	"github.com/gotmc/plx/lib/find"
	"go.bug.st/serial"
)

// Defaults for the Prologix GPIB-USB controller. The adapter ignores the
// baud rate, but the FTDI driver still needs one.
const (
	DefaultBaudRate    = 9600
	DefaultReadTimeout = 500 * time.Millisecond
)

// openPort is replaced in tests.
var openPort = serial.Open

// VCP is a serial port transport. Read returns 0, nil when the read timeout
// elapses without data.
type VCP struct {
	port        serial.Port
	name        string
	baudRate    int
	readTimeout time.Duration
}

// Open opens the serial port at the given path with 8N1 framing. A zero
// baudRate or readTimeout selects the package default.
func Open(portName string, baudRate int, readTimeout time.Duration) (*VCP, error) {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if readTimeout == 0 {
		readTimeout = DefaultReadTimeout
	}
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := openPort(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open port %s: %w", portName, err)
	}
	if err := port.SetReadTimeout(readTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to set read timeout on %s: %w", portName, err)
	}
	return &VCP{
		port:        port,
		name:        portName,
		baudRate:    baudRate,
		readTimeout: readTimeout,
	}, nil
}

// OpenBySerial finds the attached adapter with the given USB serial number
// and opens it. If no device matches, the returned error wraps
// find.ErrNotFound.
func OpenBySerial(serialNumber string, baudRate int, readTimeout time.Duration) (*VCP, error) {
	dev, err := find.BySerial(serialNumber)
	if err != nil {
		return nil, err
	}
	return Open(dev, baudRate, readTimeout)
}

// Write writes p to the serial port.
func (v *VCP) Write(p []byte) (int, error) {
	return v.port.Write(p)
}

// Read reads up to len(p) bytes, blocking for at most the read timeout.
func (v *VCP) Read(p []byte) (int, error) {
	return v.port.Read(p)
}

// Flush discards unread input and unsent output.
func (v *VCP) Flush() error {
	if err := v.port.ResetInputBuffer(); err != nil {
		return err
	}
	return v.port.ResetOutputBuffer()
}

// Close closes the serial port.
func (v *VCP) Close() error {
	return v.port.Close()
}

// Name returns the device path.
func (v *VCP) Name() string { return v.name }

// ReadTimeout returns the per-read timeout.
func (v *VCP) ReadTimeout() time.Duration { return v.readTimeout }

// SetReadTimeout changes the per-read timeout. Lowering it shortens a bus
// scan, which waits one timeout per silent address.
func (v *VCP) SetReadTimeout(t time.Duration) error {
	if err := v.port.SetReadTimeout(t); err != nil {
		return err
	}
	v.readTimeout = t
	return nil
}

func (v *VCP) String() string {
	return fmt.Sprintf("serial %s @ %d baud", v.name, v.baudRate)
}
