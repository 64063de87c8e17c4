// Copyright (c) 2020–2026 The prologix developers. All rights reserved.
// Project site: https://github.com/gotmc/plx
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package plx

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/gotmc/plx/lib/logger"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// fakeAdapter answers controller commands from a reply table. Each Write is
// recorded; the reply for the last LF terminated line of the write is armed
// for the following reads.
type fakeAdapter struct {
	replies map[string]string
	writes  []string
	pending []byte
	chunk   int // max bytes per Read, 0 for no limit
}

func newFakeAdapter(replies map[string]string) *fakeAdapter {
	return &fakeAdapter{replies: replies}
}

func (f *fakeAdapter) Write(p []byte) (int, error) {
	f.writes = append(f.writes, string(p))
	lines := strings.Split(strings.TrimRight(string(p), "\r\n"), "\n")
	last := strings.TrimSpace(lines[len(lines)-1])
	if reply, ok := f.replies[last]; ok {
		f.pending = []byte(reply)
	}
	return len(p), nil
}

func (f *fakeAdapter) Read(p []byte) (int, error) {
	if f.chunk > 0 && len(p) > f.chunk {
		p = p[:f.chunk]
	}
	n := copy(p, f.pending)
	f.pending = f.pending[n:]
	return n, nil
}

func (f *fakeAdapter) written() string { return strings.Join(f.writes, "") }

// mockTransport is a testify mock of a transport.
type mockTransport struct {
	mock.Mock
}

func (m *mockTransport) Write(p []byte) (int, error) {
	args := m.Called(bytes.Clone(p))
	return args.Int(0), args.Error(1)
}

func (m *mockTransport) Read(p []byte) (int, error) {
	args := m.Called(len(p))
	data, _ := args.Get(0).([]byte)
	n := copy(p, data)
	return n, args.Error(1)
}

func (m *mockTransport) SerialPollSupported() bool {
	return m.Called().Bool(0)
}

func newTestSession(t *testing.T, rw io.ReadWriter, opts ...SessionOption) *Session {
	t.Helper()
	opts = append([]SessionOption{WithLogger(logger.Discard())}, opts...)
	s, err := NewSession(rw, opts...)
	require.NoError(t, err)
	return s
}
