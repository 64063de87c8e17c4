// Copyright (c) 2020–2026 The prologix developers. All rights reserved.
// Project site: https://github.com/gotmc/plx
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package plx

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gotmc/plx/driver/loopback"
	"github.com/gotmc/plx/driver/tcp"
	"github.com/gotmc/plx/driver/vcp"
	"github.com/gotmc/plx/lib/find"
	"github.com/gotmc/plx/lib/logger"
)

// Kind names a transport.
type Kind string

// Transport kinds accepted by Open. Aliases from older tools are accepted
// too: "debug" for loopback, "usb" for serial and "network" for tcp.
const (
	KindLoopback Kind = "loopback"
	KindSerial   Kind = "serial"
	KindTCP      Kind = "tcp"
)

// ParseKind normalizes a transport name.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "loopback", "debug":
		return KindLoopback, nil
	case "serial", "usb", "vcp":
		return KindSerial, nil
	case "tcp", "network", "ethernet":
		return KindTCP, nil
	}
	return "", &ConfigurationError{Field: "kind", Reason: fmt.Sprintf("unknown transport kind %q", s)}
}

// Config describes a session and the transport it owns.
type Config struct {
	Kind string

	// Serial transport. SerialNumber is looked up among attached USB
	// devices; Port, if set, is used directly instead.
	SerialNumber string
	Port         string
	BaudRate     int

	// Network transport.
	Host    string
	TCPPort int

	// ReadTimeout bounds each transport read. Zero selects the driver default;
	// negative values are rejected.
	ReadTimeout time.Duration

	// Loopback transport. Nil selects loopback.DefaultResponse.
	LoopbackResponse []byte

	// EOT terminates instrument payload. Empty selects DefaultEOT.
	EOT string
	// Commands replaces the recognized controller vocabulary when non-empty.
	Commands []string

	// Logger receives session records. Nil creates a console logger.
	Logger logger.Logger
	// LogLevel is one of debug, info, warn or error. With a supplied Logger
	// the session logs through a child at this level and the Logger's own
	// level is left alone. Empty keeps the supplied Logger's level and
	// defaults a created one to warn.
	LogLevel string
}

// Open validates cfg, opens the transport it names and returns a session
// that owns it. Errors are *ConfigurationError for bad parameters,
// *DeviceNotFoundError when no serial device has the requested serial number
// and *TransportError when the medium cannot be opened.
func Open(cfg Config, opts ...SessionOption) (*Session, error) {
	kind, err := ParseKind(cfg.Kind)
	if err != nil {
		return nil, err
	}
	level, ok := logger.ParseLevel(cfg.LogLevel)
	if !ok && cfg.LogLevel != "" {
		return nil, &ConfigurationError{Field: "log level", Reason: fmt.Sprintf("unknown level %q", cfg.LogLevel)}
	}
	switch {
	case cfg.ReadTimeout < 0:
		return nil, &ConfigurationError{Field: "read timeout", Reason: "must not be negative"}
	case cfg.BaudRate < 0:
		return nil, &ConfigurationError{Field: "baud rate", Reason: "must not be negative"}
	case cfg.TCPPort < 0 || cfg.TCPPort > 65535:
		return nil, &ConfigurationError{Field: "tcp port", Reason: fmt.Sprintf("%d out of range", cfg.TCPPort)}
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewSlog(level, nil, true)
	} else if cfg.LogLevel != "" {
		log = log.WithLevel(level)
	}
	log = log.With("transport", string(kind))

	rw, err := openTransport(kind, cfg, log)
	if err != nil {
		return nil, err
	}

	sessOpts := []SessionOption{WithLogger(log)}
	if cfg.EOT != "" {
		sessOpts = append(sessOpts, WithEOT([]byte(cfg.EOT)))
	}
	if len(cfg.Commands) > 0 {
		sessOpts = append(sessOpts, WithCommandSet(NewCommandSet(cfg.Commands...)))
	}
	sessOpts = append(sessOpts, opts...)

	s, err := NewSession(rw, sessOpts...)
	if err != nil {
		rw.Close()
		return nil, err
	}
	log.Info("session opened", "medium", fmt.Sprint(rw))
	return s, nil
}

func openTransport(kind Kind, cfg Config, log logger.Logger) (io.ReadWriteCloser, error) {
	switch kind {
	case KindLoopback:
		opts := []loopback.Option{loopback.WithLogger(log)}
		if cfg.LoopbackResponse != nil {
			opts = append(opts, loopback.WithResponse(cfg.LoopbackResponse))
		}
		return loopback.New(opts...), nil

	case KindSerial:
		if cfg.Port != "" {
			v, err := vcp.Open(cfg.Port, cfg.BaudRate, cfg.ReadTimeout)
			if err != nil {
				return nil, &TransportError{Op: "open", Err: err}
			}
			return v, nil
		}
		if cfg.SerialNumber == "" {
			return nil, &ConfigurationError{Field: "serial number", Reason: "serial number not given"}
		}
		v, err := vcp.OpenBySerial(cfg.SerialNumber, cfg.BaudRate, cfg.ReadTimeout)
		if errors.Is(err, find.ErrNotFound) {
			return nil, &DeviceNotFoundError{Serial: cfg.SerialNumber, Err: err}
		}
		if err != nil {
			return nil, &TransportError{Op: "open", Err: err}
		}
		return v, nil

	case KindTCP:
		if cfg.Host == "" {
			return nil, &ConfigurationError{Field: "host", Reason: "host not given"}
		}
		t, err := tcp.Dial(cfg.Host, cfg.TCPPort, cfg.ReadTimeout)
		if err != nil {
			return nil, &TransportError{Op: "open", Err: err}
		}
		return t, nil
	}
	return nil, &ConfigurationError{Field: "kind", Reason: fmt.Sprintf("unknown transport kind %q", kind)}
}
