// Copyright (c) 2020–2026 The prologix developers. All rights reserved.
// Project site: https://github.com/gotmc/plx
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package plx

import (
	"bytes"
	"fmt"
)

// Primary GPIB address range.
const (
	MinPrimaryAddr = 0
	MaxPrimaryAddr = 30
)

// ScanResult is the outcome of serial polling one address.
type ScanResult struct {
	Address   int
	Responded bool
	Response  []byte // raw serial poll reply
	Err       error  // transport error for this address, if any
}

// ScanResults holds one result per primary address, in ascending order.
type ScanResults []ScanResult

// Responding returns the addresses that answered the serial poll.
func (rs ScanResults) Responding() []int {
	var addrs []int
	for _, r := range rs {
		if r.Responded {
			addrs = append(addrs, r.Address)
		}
	}
	return addrs
}

// Scan serial polls every primary address from 0 to 30 and records which
// ones answered. A failure at one address is stored in that result and the
// scan continues. Each silent address costs one transport read timeout, so
// lower the timeout first for a faster scan.
//
// If the transport reports that serial polls are not relayed, Scan returns
// ErrScanNotSupported without any I/O.
func (s *Session) Scan() (ScanResults, error) {
	if !s.serialPollSupported() {
		return nil, ErrScanNotSupported
	}
	results := make(ScanResults, 0, MaxPrimaryAddr-MinPrimaryAddr+1)
	for addr := MinPrimaryAddr; addr <= MaxPrimaryAddr; addr++ {
		r := ScanResult{Address: addr}
		resp, err := s.Query(fmt.Sprintf("++spoll %d", addr))
		if err != nil {
			r.Err = err
			s.log.Debug("scan", "addr", addr, "error", err)
		} else {
			r.Response = resp
			r.Responded = len(bytes.TrimSpace(resp)) > 0
			s.log.Debug("scan", "addr", addr, "responded", r.Responded)
		}
		results = append(results, r)
	}
	s.log.Info("scan complete", "responding", results.Responding())
	return results, nil
}
