// Copyright (c) 2020–2026 The prologix developers. All rights reserved.
// Project site: https://github.com/gotmc/plx
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package plx

import "bytes"

// Delimiter separates segments of a composite message.
const Delimiter = ';'

// USBTerm terminates every controller command.
const USBTerm = '\n'

// DefaultEOT terminates instrument payload segments unless the session is
// configured otherwise.
const DefaultEOT = "\r\n"

// Frame splits message on ';' and terminates each segment according to its
// class: "++" segments get a single LF, everything else gets eot. Segment
// order is preserved and empty segments are kept. warn, if not nil, is called
// for each "++" segment whose token is not in cs.
func Frame(message, eot []byte, cs CommandSet, warn func(UnrecognizedCommandWarning)) []byte {
	segments := bytes.Split(message, []byte{Delimiter})

	size := len(message) + len(segments)*len(eot)
	out := make([]byte, 0, size)
	for _, seg := range segments {
		switch cs.Classify(seg) {
		case Controller:
			out = append(out, seg...)
			out = append(out, USBTerm)
		case Unrecognized:
			if warn != nil {
				warn(UnrecognizedCommandWarning{
					Token:   string(commandToken(seg)),
					Segment: string(seg),
				})
			}
			out = append(out, seg...)
			out = append(out, USBTerm)
		default:
			out = append(out, seg...)
			out = append(out, eot...)
		}
	}
	return out
}
