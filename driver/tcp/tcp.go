// Copyright (c) 2020–2026 The prologix developers. All rights reserved.
// Project site: https://github.com/gotmc/plx
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// Package tcp provides the network transport for the Prologix GPIB-ETHERNET
// controller.
package tcp

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"
)

// Defaults for the Prologix GPIB-ETHERNET controller.
const (
	DefaultPort           = 1234
	DefaultReadTimeout    = 500 * time.Millisecond
	DefaultConnectTimeout = 3 * time.Second
)

// TCP is a stream socket transport. Read returns 0, nil when the read
// timeout elapses without data.
type TCP struct {
	conn        net.Conn
	addr        string
	readTimeout time.Duration
}

// Dial connects to host:port. A zero port or readTimeout selects the package
// default.
func Dial(host string, port int, readTimeout time.Duration) (*TCP, error) {
	if port == 0 {
		port = DefaultPort
	}
	if readTimeout == 0 {
		readTimeout = DefaultReadTimeout
	}
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	conn, err := net.DialTimeout("tcp", addr, DefaultConnectTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	return &TCP{conn: conn, addr: addr, readTimeout: readTimeout}, nil
}

// Write writes p to the socket.
func (t *TCP) Write(p []byte) (int, error) {
	return t.conn.Write(p)
}

// Read reads up to len(p) bytes, waiting at most the read timeout.
func (t *TCP) Read(p []byte) (int, error) {
	if err := t.conn.SetReadDeadline(time.Now().Add(t.readTimeout)); err != nil {
		return 0, err
	}
	n, err := t.conn.Read(p)
	if err != nil && isTimeout(err) {
		return n, nil
	}
	return n, err
}

// Close closes the socket.
func (t *TCP) Close() error {
	return t.conn.Close()
}

// SerialPollSupported reports false: bus scans are not offered over the
// network transport.
func (t *TCP) SerialPollSupported() bool { return false }

// Addr returns the remote host:port.
func (t *TCP) Addr() string { return t.addr }

// ReadTimeout returns the per-read timeout.
func (t *TCP) ReadTimeout() time.Duration { return t.readTimeout }

// SetReadTimeout changes the per-read timeout.
func (t *TCP) SetReadTimeout(d time.Duration) error {
	t.readTimeout = d
	return nil
}

func (t *TCP) String() string {
	return "tcp " + t.addr
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
