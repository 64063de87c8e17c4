// Copyright (c) 2020–2026 The prologix developers. All rights reserved.
// Project site: https://github.com/gotmc/plx
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// Package loopback provides a diagnostic transport that performs no I/O. Every
// written buffer is recorded, and each write arms a single canned response
// that the next Read returns.
package loopback

import (
	"bytes"
	"errors"

	"github.com/gotmc/plx/lib/logger"
)

// DefaultResponse is returned by Read after each write unless changed with
// WithResponse.
const DefaultResponse = "LOOPBACK\n"

// ErrClosed is returned by Write and Read after Close.
var ErrClosed = errors.New("loopback transport closed")

// Loopback is an io.ReadWriteCloser that echoes nothing back to the wire.
type Loopback struct {
	response []byte
	pending  []byte
	writes   [][]byte
	reads    int
	closed   bool
	log      logger.Logger
}

// Option configures a Loopback.
type Option func(*Loopback)

// WithResponse sets the payload returned after each write. An empty response
// makes the transport behave like a bus with nothing attached.
func WithResponse(p []byte) Option {
	return func(l *Loopback) { l.response = bytes.Clone(p) }
}

// Silent is shorthand for WithResponse(nil).
func Silent() Option { return WithResponse(nil) }

// WithLogger logs every write at debug level.
func WithLogger(log logger.Logger) Option {
	return func(l *Loopback) { l.log = log }
}

// New returns a loopback transport.
func New(opts ...Option) *Loopback {
	l := &Loopback{
		response: []byte(DefaultResponse),
		log:      logger.Discard(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Write records p and arms the canned response.
func (l *Loopback) Write(p []byte) (int, error) {
	if l.closed {
		return 0, ErrClosed
	}
	l.writes = append(l.writes, bytes.Clone(p))
	l.pending = bytes.Clone(l.response)
	l.log.Debug("loopback write", "data", string(p))
	return len(p), nil
}

// Read copies as much of the armed response as fits into p. With nothing
// armed it returns 0, nil, the same result a serial port gives on timeout.
func (l *Loopback) Read(p []byte) (int, error) {
	if l.closed {
		return 0, ErrClosed
	}
	l.reads++
	n := copy(p, l.pending)
	l.pending = l.pending[n:]
	return n, nil
}

// Close marks the transport closed.
func (l *Loopback) Close() error {
	l.closed = true
	return nil
}

func (l *Loopback) String() string { return "loopback" }

// Writes returns every buffer written so far, one entry per Write call.
func (l *Loopback) Writes() [][]byte { return l.writes }

// Written returns the concatenation of all writes.
func (l *Loopback) Written() []byte { return bytes.Join(l.writes, nil) }

// Reads returns the number of Read calls made.
func (l *Loopback) Reads() int { return l.reads }

// Reset forgets recorded writes and any armed response.
func (l *Loopback) Reset() {
	l.writes = nil
	l.pending = nil
	l.reads = 0
}
