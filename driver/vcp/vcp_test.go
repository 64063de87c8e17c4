// Copyright (c) 2020–2026 The prologix developers. All rights reserved.
// Project site: https://github.com/gotmc/plx
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package vcp

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/gotmc/plx/lib/find"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"
)

// fakePort implements the parts of serial.Port that VCP uses.
type fakePort struct {
	serial.Port
	out     bytes.Buffer
	in      bytes.Buffer
	timeout time.Duration
	closed  bool
	resets  int
}

func (f *fakePort) Write(p []byte) (int, error) { return f.out.Write(p) }

func (f *fakePort) Read(p []byte) (int, error) {
	if f.in.Len() == 0 {
		return 0, nil
	}
	return f.in.Read(p)
}

func (f *fakePort) SetReadTimeout(t time.Duration) error {
	f.timeout = t
	return nil
}

func (f *fakePort) ResetInputBuffer() error  { f.resets++; return nil }
func (f *fakePort) ResetOutputBuffer() error { f.resets++; return nil }
func (f *fakePort) Close() error             { f.closed = true; return nil }

func useFake(t *testing.T) (*fakePort, *serial.Mode) {
	t.Helper()
	fp := &fakePort{}
	var gotMode serial.Mode
	orig := openPort
	openPort = func(name string, mode *serial.Mode) (serial.Port, error) {
		gotMode = *mode
		return fp, nil
	}
	t.Cleanup(func() { openPort = orig })
	return fp, &gotMode
}

func TestOpen_Defaults(t *testing.T) {
	fp, mode := useFake(t)

	v, err := Open("/dev/ttyUSB0", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultBaudRate, mode.BaudRate)
	assert.Equal(t, 8, mode.DataBits)
	assert.Equal(t, serial.NoParity, mode.Parity)
	assert.Equal(t, DefaultReadTimeout, fp.timeout)
	assert.Equal(t, DefaultReadTimeout, v.ReadTimeout())
	assert.Equal(t, "/dev/ttyUSB0", v.Name())
	assert.Equal(t, "serial /dev/ttyUSB0 @ 9600 baud", v.String())
}

func TestVCP_ReadWrite(t *testing.T) {
	fp, _ := useFake(t)
	v, err := Open("/dev/ttyUSB0", 115200, time.Second)
	require.NoError(t, err)

	_, err = v.Write([]byte("++ver\n"))
	require.NoError(t, err)
	assert.Equal(t, "++ver\n", fp.out.String())

	buf := make([]byte, 16)
	n, err := v.Read(buf)
	require.NoError(t, err)
	assert.Zero(t, n, "timeout is not an error")

	fp.in.WriteString("Prologix GPIB-USB Controller version 6.101\n")
	n, err = v.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "Prologix GPIB-US", string(buf[:n]))

	require.NoError(t, v.SetReadTimeout(50*time.Millisecond))
	assert.Equal(t, 50*time.Millisecond, fp.timeout)

	require.NoError(t, v.Flush())
	assert.Equal(t, 2, fp.resets)

	require.NoError(t, v.Close())
	assert.True(t, fp.closed)
}

func TestOpen_Error(t *testing.T) {
	orig := openPort
	t.Cleanup(func() { openPort = orig })
	openPort = func(string, *serial.Mode) (serial.Port, error) {
		return nil, errors.New("permission denied")
	}
	_, err := Open("/dev/ttyUSB9", 0, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/dev/ttyUSB9")
	assert.Contains(t, err.Error(), "permission denied")
}

func TestOpenBySerial(t *testing.T) {
	useFake(t)
	origLister := find.Lister
	t.Cleanup(func() { find.Lister = origLister })
	find.Lister = func() (find.Ports, error) {
		return find.Ports{{Dev: "/dev/ttyUSB4", Serial: "PXG9ASAT"}}, nil
	}

	v, err := OpenBySerial("PXG9ASAT", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB4", v.Name())

	_, err = OpenBySerial("MISSING", 0, 0)
	assert.ErrorIs(t, err, find.ErrNotFound)
}
