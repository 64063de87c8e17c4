// Copyright (c) 2020–2026 The prologix developers. All rights reserved.
// Project site: https://github.com/gotmc/plx
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package plx

import (
	"bytes"
	"strings"
)

// CommandPrefix marks a segment addressed to the Prologix controller rather
// than the instrument.
const CommandPrefix = "++"

// controllerCommands is the recognized controller vocabulary, without the
// "++" prefix.
var controllerCommands = []string{
	"addr",
	"auto",
	"clr",
	"eoi",
	"eos",
	"eot_enable",
	"eot_char",
	"ifc",
	"loc",
	"lon",
	"mode",
	"read",
	"read_tmo_ms",
	"rst",
	"savecfg",
	"spoll",
	"srq",
	"status",
	"trg",
	"ver",
	"help",
}

// HelpText lists the controller commands and their arguments.
const HelpText = `Available commands are:

   ++addr 0-30 [96-126]  -- specify GPIB address
   ++addr                -- query GPIB address
   ++auto 0|1            -- enable (1) or disable (0) read-after-write
   ++auto                -- query read-after-write setting
   ++clr                 -- issue device clear
   ++eoi 0|1             -- enable (1) or disable (0) EOI with last byte
   ++eoi                 -- query eoi setting
   ++eos 0|1|2|3         -- EOS terminator - 0:CR+LF, 1:CR, 2:LF, 3:None
   ++eos                 -- query eos setting
   ++eot_enable 0|1      -- enable (1) or disable (0) appending eot_char on EOI
   ++eot_enable          -- query eot_enable setting
   ++eot_char <char>     -- specify eot character in decimal
   ++eot_char            -- query eot_char character
   ++ifc                 -- issue interface clear
   ++loc                 -- set device to local
   ++lon                 -- enable (1) or disable (0) listen only mode
   ++mode 0|1            -- set mode - 0:DEVICE, 1:CONTROLLER
   ++mode                -- query current mode
   ++read [eoi|<char>]   -- read until EOI, <char>, or timeout
   ++read_tmo_ms 1-3000  -- set read timeout in millisec
   ++read_tmo_ms         -- query timeout
   ++rst                 -- reset controller
   ++savecfg 0|1         -- enable (1) or disable (0) saving configuration to EPROM
   ++savecfg             -- query savecfg setting
   ++spoll               -- serial poll currently addressed device
   ++spoll 0-30 [96-126] -- serial poll device at specified address
   ++srq                 -- query SRQ status
   ++status 0-255        -- specify serial poll status byte
   ++status              -- query serial poll status byte
   ++trg                 -- issue device trigger
   ++ver                 -- query controller version
   ++help                -- display this help
`

// Class is the framing class of a command segment.
type Class int

const (
	// Payload is data for the instrument, terminated with the EOT sequence.
	Payload Class = iota
	// Controller is a recognized controller command, terminated with LF.
	Controller
	// Unrecognized starts with "++" but names no known command. It is still
	// sent, LF terminated, and reported as a warning.
	Unrecognized
)

var classDesc = map[Class]string{
	Payload:      "instrument payload",
	Controller:   "controller command",
	Unrecognized: "unrecognized controller command",
}

func (c Class) String() string {
	return classDesc[c]
}

// CommandSet is a vocabulary of controller command tokens. Lookups are case
// insensitive.
type CommandSet map[string]struct{}

var defaultCommands = NewCommandSet(controllerCommands...)

// DefaultCommands returns a copy of the Prologix controller vocabulary.
func DefaultCommands() CommandSet { return defaultCommands.Clone() }

// NewCommandSet builds a vocabulary from tokens given with or without the
// "++" prefix.
func NewCommandSet(tokens ...string) CommandSet {
	cs := make(CommandSet, len(tokens))
	for _, t := range tokens {
		t = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(t), CommandPrefix))
		if t != "" {
			cs[t] = struct{}{}
		}
	}
	return cs
}

// Clone returns an independent copy of cs.
func (cs CommandSet) Clone() CommandSet {
	out := make(CommandSet, len(cs))
	for t := range cs {
		out[t] = struct{}{}
	}
	return out
}

// Contains reports whether token, with or without "++", is in the set.
func (cs CommandSet) Contains(token string) bool {
	_, ok := cs[strings.ToLower(strings.TrimPrefix(token, CommandPrefix))]
	return ok
}

// Classify returns the framing class of one segment.
func (cs CommandSet) Classify(segment []byte) Class {
	if !bytes.HasPrefix(segment, []byte(CommandPrefix)) {
		return Payload
	}
	if cs.Contains(string(commandToken(segment))) {
		return Controller
	}
	return Unrecognized
}

// IsControllerCommand reports whether segment is a recognized controller
// command of the default vocabulary.
func IsControllerCommand(segment []byte) bool {
	return defaultCommands.Classify(segment) == Controller
}

// commandToken returns the segment up to its first space or tab.
func commandToken(segment []byte) []byte {
	if i := bytes.IndexAny(segment, " \t"); i >= 0 {
		return segment[:i]
	}
	return segment
}
