// Copyright (c) 2020–2026 The prologix developers. All rights reserved.
// Project site: https://github.com/gotmc/plx
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package plx

import (
	"bytes"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/gotmc/plx/driver/loopback"
	"github.com/gotmc/plx/lib/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewSession_Defaults(t *testing.T) {
	s := newTestSession(t, loopback.New())
	assert.Equal(t, []byte(DefaultEOT), s.EOT())
	assert.NotNil(t, s.Logger())
	assert.IsType(t, &loopback.Loopback{}, s.Transport())
	assert.Equal(t, DefaultReadSize, s.ReadSize())
}

func TestNewSession_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		rw    io.ReadWriter
		opts  []SessionOption
		field string
	}{
		{"nil transport", nil, nil, "transport"},
		{"zero read size", loopback.New(), []SessionOption{WithReadSize(0)}, "read size"},
		{"empty vocabulary", loopback.New(), []SessionOption{WithCommandSet(NewCommandSet())}, "command set"},
		{"delimiter in eot", loopback.New(), []SessionOption{WithEOT([]byte(";\n"))}, "eot"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSession(tt.rw, tt.opts...)
			var cfgErr *ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestNewSession_LogLevel(t *testing.T) {
	var buf bytes.Buffer
	l := logger.NewSlog(logger.ErrorLevel, &buf, false)
	s, err := NewSession(loopback.New(), WithLogger(l), WithLogLevel(logger.DebugLevel))
	require.NoError(t, err)
	assert.Equal(t, logger.DebugLevel, s.Logger().Level())

	require.NoError(t, s.Send("++ver"))
	assert.Contains(t, buf.String(), `"msg":"send"`)
	assert.Equal(t, logger.ErrorLevel, l.Level())
}

func TestNewSession_LogLevelPerSession(t *testing.T) {
	base := logger.NewSlog(logger.WarnLevel, io.Discard, false)
	s1, err := NewSession(loopback.New(), WithLogger(base), WithLogLevel(logger.InfoLevel))
	require.NoError(t, err)
	s2, err := NewSession(loopback.New(), WithLogger(base), WithLogLevel(logger.InfoLevel))
	require.NoError(t, err)

	s1.Logger().SetLevel(logger.DebugLevel)
	assert.Equal(t, logger.DebugLevel, s1.Logger().Level())
	assert.Equal(t, logger.InfoLevel, s2.Logger().Level())
	assert.Equal(t, logger.WarnLevel, base.Level())
}

func TestNewSession_KeepsOwnCopies(t *testing.T) {
	cs := NewCommandSet("addr", "read")
	lb := loopback.New()
	var warned []string
	s := newTestSession(t, lb, WithCommandSet(cs), WithWarningHandler(func(w UnrecognizedCommandWarning) {
		warned = append(warned, w.Token)
	}))

	cs["ver"] = struct{}{}
	delete(cs, "addr")
	eot := s.EOT()
	eot[0] = Delimiter

	require.NoError(t, s.Send("++addr 4;++ver;*cls"))
	assert.Equal(t, []string{"++ver"}, warned)
	assert.Equal(t, []byte(DefaultEOT), s.EOT())
	assert.Equal(t, "++addr 4\n++ver\n*cls\r\n", string(lb.Written()))
}

func TestSend_WritesOnce(t *testing.T) {
	lb := loopback.New()
	s := newTestSession(t, lb)

	require.NoError(t, s.Send("++addr 3;*idn?"))
	require.Len(t, lb.Writes(), 1)
	assert.Equal(t, "++addr 3\n*idn?\r\n", string(lb.Writes()[0]))
}

func TestSend_CustomEOT(t *testing.T) {
	lb := loopback.New()
	s := newTestSession(t, lb, WithEOT([]byte("\n")))

	require.NoError(t, s.SendBytes([]byte("VOLT 1;++trg")))
	assert.Equal(t, "VOLT 1\n++trg\n", string(lb.Written()))
}

func TestSend_UnrecognizedWarns(t *testing.T) {
	lb := loopback.New()
	var got []UnrecognizedCommandWarning
	s := newTestSession(t, lb, WithWarningHandler(func(w UnrecognizedCommandWarning) {
		got = append(got, w)
	}))

	require.NoError(t, s.Send("++bogus"))
	assert.Equal(t, "++bogus\n", string(lb.Written()))
	require.Len(t, got, 1)
	assert.Equal(t, "++bogus", got[0].Token)
}

func TestSend_DefaultWarningLogsHelp(t *testing.T) {
	var buf bytes.Buffer
	s, err := NewSession(loopback.New(), WithLogger(logger.NewSlog(logger.WarnLevel, &buf, false)))
	require.NoError(t, err)

	require.NoError(t, s.Send("++verbose 0"))
	assert.Contains(t, buf.String(), "unrecognized controller command")
	assert.Contains(t, buf.String(), `"token":"++verbose"`)
	assert.Contains(t, buf.String(), "Available commands are")
}

func TestSend_TransportError(t *testing.T) {
	boom := errors.New("device disconnected")
	m := &mockTransport{}
	m.On("Write", mock.Anything).Return(0, boom).Once()
	s := newTestSession(t, m)

	err := s.Send("*rst")
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "write", te.Op)
	assert.ErrorIs(t, err, boom)
	m.AssertExpectations(t)
}

func TestRead_SendsReadDirective(t *testing.T) {
	lb := loopback.New(loopback.WithResponse([]byte("+1.000E+00\n")))
	s := newTestSession(t, lb)

	got, err := s.Read(0)
	require.NoError(t, err)
	assert.Equal(t, "+1.000E+00\n", string(got))
	assert.Equal(t, "++read\n", string(lb.Written()))
}

func TestRead_BoundedByMaxBytes(t *testing.T) {
	lb := loopback.New(loopback.WithResponse([]byte("0123456789")))
	s := newTestSession(t, lb)

	got, err := s.Read(4)
	require.NoError(t, err)
	assert.Equal(t, "0123", string(got))
}

func TestRead_CollectsChunks(t *testing.T) {
	f := newFakeAdapter(map[string]string{"++read": "HEWLETT-PACKARD,34401A,0,11-5-2\n"})
	f.chunk = 5
	s := newTestSession(t, f)

	got, err := s.Read(0)
	require.NoError(t, err)
	assert.Equal(t, "HEWLETT-PACKARD,34401A,0,11-5-2\n", string(got))
}

func TestRead_StopsAtTerminator(t *testing.T) {
	m := &mockTransport{}
	m.On("Write", []byte("++read\n")).Return(7, nil)
	m.On("Read", mock.Anything).Return([]byte("42\n"), nil).Once()
	s := newTestSession(t, m, WithReadTerminator([]byte("\n")))

	got, err := s.Read(0)
	require.NoError(t, err)
	assert.Equal(t, "42\n", string(got))
	m.AssertNumberOfCalls(t, "Read", 1)
}

func TestRead_EOFIsNotAnError(t *testing.T) {
	m := &mockTransport{}
	m.On("Write", mock.Anything).Return(7, nil)
	m.On("Read", mock.Anything).Return([]byte("partial"), io.EOF).Once()
	s := newTestSession(t, m)

	got, err := s.Read(0)
	require.NoError(t, err)
	assert.Equal(t, "partial", string(got))
}

func TestRead_TransportError(t *testing.T) {
	boom := errors.New("i/o error")
	m := &mockTransport{}
	m.On("Write", mock.Anything).Return(7, nil)
	m.On("Read", mock.Anything).Return(nil, boom).Once()
	s := newTestSession(t, m)

	_, err := s.Read(0)
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "read", te.Op)
}

func TestRead_HugeLimit(t *testing.T) {
	lb := loopback.New()
	s := newTestSession(t, lb)

	var got []byte
	require.NotPanics(t, func() {
		var err error
		got, err = s.Read(math.MaxInt)
		require.NoError(t, err)
	})
	assert.Equal(t, loopback.DefaultResponse, string(got))
}

func TestRead_LargeReplyAcrossChunks(t *testing.T) {
	reply := bytes.Repeat([]byte("0123456789"), 1000)
	lb := loopback.New(loopback.WithResponse(reply))
	s := newTestSession(t, lb)

	got, err := s.Read(len(reply) + 1)
	require.NoError(t, err)
	assert.Equal(t, reply, got)

	got, err = s.Read(readChunk + 3)
	require.NoError(t, err)
	assert.Len(t, got, readChunk+3)
}

func TestReadRaw_NoDirective(t *testing.T) {
	lb := loopback.New(loopback.WithResponse([]byte("+4.2E-03\n")))
	s := newTestSession(t, lb)

	// nothing pending yet
	got, err := s.ReadRaw(0)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, lb.Writes())

	require.NoError(t, s.Send("MEAS:VOLT:DC?"))
	got, err = s.ReadRaw(0)
	require.NoError(t, err)
	assert.Equal(t, "+4.2E-03\n", string(got))
	require.Len(t, lb.Writes(), 1)
	assert.Equal(t, "MEAS:VOLT:DC?\r\n", string(lb.Written()))
}

func TestReadRaw_TransportError(t *testing.T) {
	m := &mockTransport{}
	m.On("Read", mock.Anything).Return(nil, errors.New("unplugged")).Once()
	s := newTestSession(t, m)

	_, err := s.ReadRaw(16)
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "read", te.Op)
	m.AssertNotCalled(t, "Write", mock.Anything)
}

func TestQuery_EmptyOnTimeout(t *testing.T) {
	lb := loopback.New(loopback.Silent())
	s := newTestSession(t, lb)

	got, err := s.Query("*idn?")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, "*idn?\r\n++read\n", string(lb.Written()))
	require.Len(t, lb.Writes(), 2)
}

func TestQuery_ReturnsResponse(t *testing.T) {
	lb := loopback.New()
	s := newTestSession(t, lb)

	got, err := s.Query("++addr 9;*idn?")
	require.NoError(t, err)
	assert.Equal(t, loopback.DefaultResponse, string(got))

	str, err := s.QueryString("*idn?")
	require.NoError(t, err)
	assert.Equal(t, "LOOPBACK", str)
}

func TestQuery_WriteFailureSkipsRead(t *testing.T) {
	m := &mockTransport{}
	m.On("Write", mock.Anything).Return(0, errors.New("closed"))
	s := newTestSession(t, m)

	_, err := s.Query("*idn?")
	require.Error(t, err)
	m.AssertNotCalled(t, "Read", mock.Anything)
	m.AssertNumberOfCalls(t, "Write", 1)
}

func TestClose(t *testing.T) {
	lb := loopback.New()
	s := newTestSession(t, lb)
	require.NoError(t, s.Close())
	assert.Error(t, s.Send("*idn?"))

	// transports without Close are fine
	s = newTestSession(t, newFakeAdapter(nil))
	assert.NoError(t, s.Close())
}

func TestCloseLocal(t *testing.T) {
	lb := loopback.New()
	s := newTestSession(t, lb)
	require.NoError(t, s.CloseLocal())
	assert.Equal(t, "++loc\n", string(lb.Written()))

	// both failures are reported
	require.Error(t, s.CloseLocal())
}
