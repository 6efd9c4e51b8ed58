// https://github.com/8bitwren/msxcart
//
// Copyright (c) The msxcart Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago

package pio

import (
	"github.com/8bitwren/msxcart/internal/reg"
)

// PIO block register offsets, relative to a block's base address. Each
// block hosts 4 state machines; the cartridge bus engine reads captured
// addresses from SM0 (read responder) and write words from SM1 (write
// captor) of a block. The I²S DAC driver in package scc uses a separate
// PIO block (board/explorer's audioPIO).
const (
	pioFSTAT  = 0x004 // FIFO status (RXEMPTY/TXFULL per SM, one bit per SM per half)
	pioTXF0   = 0x010 // TX FIFO, SM0 (unused by the bus engine: push-only path is RX)
	pioRXF0   = 0x020 // RX FIFO, SM0 (read responder: captured address)
	pioRXF1   = 0x024 // RX FIFO, SM1 (write captor: captured address+data word)
	pioTXF2   = 0x018 // TX FIFO, SM2 (read responder: response token push)
	fstatRXEmptySM0 = 8
	fstatRXEmptySM1 = 9
	fstatTXFullSM2  = 21
)

// block is a PIO coprocessor backend implementing Backend directly
// against the RP-series PIO peripheral's memory-mapped FIFOs. This type
// only drains/fills the FIFOs; no code in this module loads the state
// machine programs themselves (the read_responder/write_captor PIO
// assembly).
type block struct {
	base uint32
}

// NewBlock returns a Backend bound to a PIO coprocessor's base address.
// base is board-specific (board/explorer supplies it for both the
// cartridge-bus block and the I/O-bus-extension block of Component F).
func NewBlock(base uint32) Backend {
	return &block{base: base}
}

func (b *block) PollRead() (addr uint16, ok bool) {
	if reg.Get(b.base+pioFSTAT, fstatRXEmptySM0, 1) == 1 {
		return 0, false
	}
	return uint16(reg.Read(b.base + pioRXF0)), true
}

func (b *block) PollWrite() (addr uint16, data byte, ok bool) {
	if reg.Get(b.base+pioFSTAT, fstatRXEmptySM1, 1) == 1 {
		return 0, 0, false
	}
	word := reg.Read(b.base + pioRXF1)
	a, d := DecodeWrite(word)
	return a, d, true
}

func (b *block) Respond(token uint16) {
	for reg.Get(b.base+pioFSTAT, fstatTXFullSM2, 1) == 1 {
		// spin until the response FIFO has room; the Z80 /WAIT line is
		// held by the read responder SM the entire time, so there is no
		// deadline to race here beyond the refresh budget in spec.md §4.1.
	}
	reg.Write(b.base+pioTXF2, uint32(token))
}
