// Copyright (c) 2020–2026 The prologix developers. All rights reserved.
// Project site: https://github.com/gotmc/plx
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package plx

import (
	"errors"
	"fmt"
)

// ErrScanNotSupported is returned by Scan when the transport cannot relay
// serial polls.
var ErrScanNotSupported = errors.New("bus scan not supported by this transport")

// ConfigurationError reports bad construction parameters, such as an unknown
// transport kind or a missing serial number.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return "invalid configuration: " + e.Reason
	}
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// DeviceNotFoundError reports that no attached serial device carries the
// requested serial number.
type DeviceNotFoundError struct {
	Serial string
	Err    error
}

func (e *DeviceNotFoundError) Error() string {
	return fmt.Sprintf("no serial device with serial number %q", e.Serial)
}

func (e *DeviceNotFoundError) Unwrap() error { return e.Err }

// TransportError wraps a failure of the underlying medium. Op is "open",
// "write" or "read". A read timeout is never a TransportError.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %s", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// UnrecognizedCommandWarning describes a "++" segment whose token is not in
// the command vocabulary. It is handed to the session's warning handler and
// never returned from Send; the segment is transmitted anyway.
type UnrecognizedCommandWarning struct {
	Token   string
	Segment string
}

func (w UnrecognizedCommandWarning) Error() string {
	return fmt.Sprintf("%s not found", w.Token)
}
