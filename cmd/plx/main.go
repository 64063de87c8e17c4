// Copyright (c) 2020–2026 The prologix developers. All rights reserved.
// Project site: https://github.com/gotmc/plx
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// Command plx sends messages to GPIB instruments through a Prologix
// GPIB-USB or GPIB-ETHERNET adapter.
package main

import (
	"os"

	"github.com/gotmc/plx/cmd/plx/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
