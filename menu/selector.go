// https://github.com/8bitwren/msxcart
//
// Copyright (c) The msxcart Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package menu implements the first-stage loop (spec.md Component E):
// serving the 32 KiB menu ROM, capturing the selected catalog index from
// the menu Z80's sentinel write, and detecting the subsequent reset
// across both MSX1 and MSX2 boot paths.
package menu

import (
	"fmt"

	"github.com/8bitwren/msxcart/explorerext"
	"github.com/8bitwren/msxcart/pio"
	"github.com/8bitwren/msxcart/romimage"
)

const (
	windowBase = 0x4000
	windowEnd  = 0xBFFF

	// explorerQueryLen is the width of the raw search-query write
	// window, one byte per bus write (spec.md §3.1's sentinel idiom
	// extended to a short run of addresses rather than a single byte).
	explorerQueryLen = 24
)

// GPIOSampler is the raw, non-PIO line-state read used for MSX1 reset
// detection (spec.md §4.4): when the PIO read FIFO is idle, sample
// /RD and the address bus directly rather than waiting on a bus cycle
// the MSX1 BIOS will never issue through /SLTSL again.
type GPIOSampler interface {
	// Sample reports the current /RD level (true = asserted, i.e. low)
	// and address bus value.
	Sample() (rdLow bool, addr uint16)
}

// Selector serves the menu ROM and watches for the Z80 reset that
// follows a selection.
type Selector struct {
	rom      []byte
	sentinel uint16

	captured bool
	selected uint8
	reset    bool

	// explorer, when attached, overlays the SD catalog browser
	// (Component K, 2350 Explorer variant only): its control writes use a
	// handful of addresses just past sentinel, and once armed its paging
	// buffer is served over the low 256 bytes of the ROM window, the
	// same "overlay onto an existing
	// window by address-range check" idiom package mapper's konami.go
	// uses for the SCC register window.
	explorer *explorerext.Explorer
	armed    bool
	query    [explorerQueryLen]byte
}

// explorer-protocol addresses, all derived from the selection sentinel
// so a single flash layout constant anchors the whole family.
func (s *Selector) pageSentinel() uint16 { return s.sentinel + 1 }
func (s *Selector) armSentinel() uint16  { return s.sentinel + 2 }
func (s *Selector) searchCommit() uint16 { return s.sentinel + 3 }
func (s *Selector) searchBase() uint16   { return s.sentinel + 4 }
func (s *Selector) searchEnd() uint16    { return s.sentinel + 4 + explorerQueryLen }

// AttachExplorer wires an SD catalog browser into the menu stage. The
// loader's menu stage calls this only when its Config.SD is set; without
// it the Selector has no explorer and the overlay is simply never
// addressed.
func (s *Selector) AttachExplorer(e *explorerext.Explorer) {
	s.explorer = e
}

// NewSelector returns a Selector for a menu ROM image, which must be
// exactly romimage.MenuROMSize bytes (spec.md §3.1's invariant).
func NewSelector(rom []byte) (*Selector, error) {
	if len(rom) != romimage.MenuROMSize {
		return nil, fmt.Errorf("menu: ROM must be %d bytes, got %d", romimage.MenuROMSize, len(rom))
	}

	return &Selector{rom: rom, sentinel: romimage.SelectionSentinel()}, nil
}

func (s *Selector) handleRead(addr uint16) (data byte, drive bool) {
	if s.captured && addr == 0x0000 {
		// MSX2 path: the BIOS's expanded-slot rescan reaches address
		// 0x0000 through the cartridge only after a reset.
		s.reset = true
	}

	if s.explorer != nil && s.armed && addr >= windowBase && addr < windowBase+uint16(explorerext.PageBufferSize) {
		buf := s.explorer.Buffer()
		return buf[addr-windowBase], true
	}

	if addr < windowBase || addr > windowEnd {
		return 0xFF, false
	}

	return s.rom[addr-windowBase], true
}

func (s *Selector) handleWrite(addr uint16, data byte) {
	switch {
	case addr == s.sentinel:
		s.selected = data
		s.captured = true
	case s.explorer != nil && addr == s.pageSentinel():
		s.explorer.RequestPage(int(data))
	case s.explorer != nil && addr == s.armSentinel():
		s.armed = data != 0
	case s.explorer != nil && addr == s.searchCommit():
		s.explorer.Search(explorerext.ParseQuery(s.query[:]))
	case s.explorer != nil && addr >= s.searchBase() && addr < s.searchEnd():
		s.query[addr-s.searchBase()] = data
	}
}

// Run drives engine's read-responder/write-captor pair and gpio's raw
// line sampler until a reset is detected, returning the captured ROM
// index (spec.md §4.4, §6.3). The MSX2 path (a read of 0x0000 after
// capture) is checked on every served read; the raw GPIO sampler is only
// consulted on iterations where Step served no read and a selection has
// already been captured.
func (s *Selector) Run(engine *pio.Engine, gpio GPIOSampler) uint8 {
	for {
		served := engine.Step(s.handleRead, s.handleWrite)
		if s.reset {
			return s.selected
		}

		if !served && s.captured {
			if rdLow, addr := gpio.Sample(); rdLow && addr == 0x0000 {
				return s.selected
			}
		}
	}
}
