// Copyright (c) 2020–2026 The prologix developers. All rights reserved.
// Project site: https://github.com/gotmc/plx
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package plx

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"github.com/gotmc/plx/lib/logger"
	"go.uber.org/multierr"
)

// DefaultReadSize bounds a single Read or Query.
const DefaultReadSize = 10000

// readChunk is the largest single transport read. The reply buffer grows as
// data arrives, so maxBytes is only a limit.
const readChunk = 4096

// SerialPoller is implemented by transports that know whether the adapter
// behind them relays serial polls. Transports without the method are assumed
// to support it.
type SerialPoller interface {
	SerialPollSupported() bool
}

// Session drives one Prologix adapter through a single transport. It frames
// outbound messages and reads raw responses; it keeps no copy of the
// controller's settings.
//
// A Session is not safe for concurrent use.
type Session struct {
	rw          io.ReadWriter
	eot         []byte
	commands    CommandSet
	readSize    int
	readTerm    []byte
	log         logger.Logger
	level       *logger.Level
	warn        func(UnrecognizedCommandWarning)
	warnDefault bool
}

// SessionOption applies an option to the session.
type SessionOption func(*Session)

// WithEOT sets the terminator appended to instrument payload segments.
func WithEOT(eot []byte) SessionOption {
	return func(s *Session) { s.eot = bytes.Clone(eot) }
}

// WithCommandSet replaces the recognized controller vocabulary. The session
// keeps its own copy of cs.
func WithCommandSet(cs CommandSet) SessionOption {
	return func(s *Session) { s.commands = cs.Clone() }
}

// WithLogger sets the session logger.
func WithLogger(l logger.Logger) SessionOption {
	return func(s *Session) { s.log = l }
}

// WithLogLevel gives the session a child of its logger with this level. The
// logger passed to WithLogger keeps its own level.
func WithLogLevel(level logger.Level) SessionOption {
	return func(s *Session) { s.level = &level }
}

// WithWarningHandler replaces the default handler for unrecognized "++"
// commands, which logs the token and the help text.
func WithWarningHandler(fn func(UnrecognizedCommandWarning)) SessionOption {
	return func(s *Session) {
		s.warn = fn
		s.warnDefault = false
	}
}

// WithReadSize sets the byte limit used by Query and by Read(0).
func WithReadSize(n int) SessionOption {
	return func(s *Session) { s.readSize = n }
}

// WithReadTerminator makes Read return as soon as the received data ends in
// term, instead of waiting for a read timeout. Use it with ++eot_enable 1 and
// a matching ++eot_char.
func WithReadTerminator(term []byte) SessionOption {
	return func(s *Session) { s.readTerm = bytes.Clone(term) }
}

// NewSession creates a session on rw, which is typically a *vcp.VCP,
// *tcp.TCP or *loopback.Loopback. No bytes are exchanged with the adapter.
func NewSession(rw io.ReadWriter, opts ...SessionOption) (*Session, error) {
	if rw == nil {
		return nil, &ConfigurationError{Field: "transport", Reason: "nil transport"}
	}
	s := &Session{
		rw:          rw,
		eot:         []byte(DefaultEOT),
		commands:    DefaultCommands(),
		readSize:    DefaultReadSize,
		warnDefault: true,
	}

	// Apply options using the functional option pattern.
	for _, opt := range opts {
		opt(s)
	}

	if s.readSize <= 0 {
		return nil, &ConfigurationError{Field: "read size", Reason: "must be positive"}
	}
	if len(s.commands) == 0 {
		return nil, &ConfigurationError{Field: "command set", Reason: "empty vocabulary"}
	}
	if bytes.IndexByte(s.eot, Delimiter) >= 0 {
		return nil, &ConfigurationError{Field: "eot", Reason: "terminator must not contain ';'"}
	}
	if s.log == nil {
		s.log = logger.NewSlog(logger.WarnLevel, nil, true)
	}
	if s.level != nil {
		s.log = s.log.WithLevel(*s.level)
	}
	if s.warnDefault {
		s.warn = s.logUnrecognized
	}
	return s, nil
}

// Transport returns the underlying transport.
func (s *Session) Transport() io.ReadWriter { return s.rw }

// EOT returns a copy of the payload terminator.
func (s *Session) EOT() []byte { return bytes.Clone(s.eot) }

// ReadSize returns the byte limit Query passes to Read.
func (s *Session) ReadSize() int { return s.readSize }

// Logger returns the session logger.
func (s *Session) Logger() logger.Logger { return s.log }

// Send frames message and writes it to the transport in a single Write.
func (s *Session) Send(message string) error {
	return s.SendBytes([]byte(message))
}

// SendBytes frames message and writes it to the transport in a single Write.
// A failed write is returned as a *TransportError and is not retried.
func (s *Session) SendBytes(message []byte) error {
	buf := Frame(message, s.eot, s.commands, s.warn)
	s.log.Debug("send", "data", string(buf))
	if _, err := s.rw.Write(buf); err != nil {
		return &TransportError{Op: "write", Err: err}
	}
	return nil
}

// Read asks the adapter for the addressed instrument's response with ++read
// and collects up to maxBytes. It stops when a transport read returns no data
// within its timeout, on EOF, when maxBytes are collected or when the data
// ends in the read terminator. An empty result is not an error. maxBytes <= 0
// selects the session read size.
func (s *Session) Read(maxBytes int) ([]byte, error) {
	if err := s.Send("++read"); err != nil {
		return nil, err
	}
	return s.readResponse(maxBytes)
}

// ReadRaw collects up to maxBytes that the adapter has already queued,
// without sending ++read. Use it after a Send when the controller reads on
// its own, for example with ++auto 1, or to drain a stale reply. It stops
// under the same conditions as Read.
func (s *Session) ReadRaw(maxBytes int) ([]byte, error) {
	return s.readResponse(maxBytes)
}

// Query sends message and then reads the response.
func (s *Session) Query(message string) ([]byte, error) {
	if err := s.Send(message); err != nil {
		return nil, err
	}
	return s.Read(s.readSize)
}

// QueryString sends message, reads the response and trims surrounding white
// space.
func (s *Session) QueryString(message string) (string, error) {
	b, err := s.Query(message)
	return strings.TrimSpace(string(b)), err
}

func (s *Session) readResponse(maxBytes int) ([]byte, error) {
	if maxBytes <= 0 {
		maxBytes = s.readSize
	}
	chunk := make([]byte, min(maxBytes, readChunk))
	buf := make([]byte, 0, len(chunk))
	for len(buf) < maxBytes {
		n, err := s.rw.Read(chunk[:min(maxBytes-len(buf), len(chunk))])
		buf = append(buf, chunk[:n]...)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return buf, &TransportError{Op: "read", Err: err}
		}
		if n == 0 {
			break
		}
		if len(s.readTerm) > 0 && bytes.HasSuffix(buf, s.readTerm) {
			break
		}
	}
	s.log.Debug("read", "bytes", len(buf), "data", string(buf))
	return buf, nil
}

// Close closes the transport if it implements io.Closer.
func (s *Session) Close() error {
	c, ok := s.rw.(io.Closer)
	if !ok {
		return nil
	}
	return c.Close()
}

// CloseLocal returns the instrument to front-panel control with ++loc and then
// closes the transport. Both errors are reported.
func (s *Session) CloseLocal() error {
	err := s.FrontPanel()
	return multierr.Append(err, s.Close())
}

func (s *Session) logUnrecognized(w UnrecognizedCommandWarning) {
	s.log.Warn("unrecognized controller command, sending anyway", "token", w.Token, "segment", w.Segment)
	s.log.Warn(HelpText)
}

func (s *Session) serialPollSupported() bool {
	if p, ok := s.rw.(SerialPoller); ok {
		return p.SerialPollSupported()
	}
	return true
}
