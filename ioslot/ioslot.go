// https://github.com/8bitwren/msxcart
//
// Copyright (c) The msxcart Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package ioslot implements the expanded-slot arbitration logic used by
// mapper 11 (spec.md §3.4, §4.8 Component F): the subslot register at
// bus address 0xFFFF, the four mapper-page I/O registers at ports
// 0xFC-0xFF, and the routing rules that decide whether a given 16 KiB
// page of the bus is serviced by the Sunrise IDE handler or by mapper
// RAM.
//
// This package owns only the arbitration state; it is handed the
// Sunrise mapper's Read/Write methods as callbacks rather than importing
// package mapper, keeping the dependency direction the same way the
// teacher's soc packages depend down into internal/reg, never the other
// way around.
package ioslot

import "github.com/8bitwren/msxcart/bits"

// MapperRAMSize is the capacity of the SRAM window reused as mapper RAM
// in expanded-slot mode (the same 192 KiB window package cache manages
// as a ROM mirror in every other mapper).
const MapperRAMSize = 192 * 1024

const pageSize = 16 * 1024

// numPages is the number of 16 KiB pages mapper RAM is divided into
// (192 KiB / 16 KiB).
const numPages = MapperRAMSize / pageSize

// State holds the expanded-slot subslot register, the four page
// registers, and the mapper RAM backing store.
type State struct {
	Subslot   uint8
	PageRegs  [4]uint8
	MapperRAM []byte
}

// NewState returns a State with spec.md §4.8's initial values: subslot
// register 0x10 (page 2 routed to subslot 1, all others to subslot 0),
// page registers {3,2,1,0}, mapper RAM filled with 0xFF.
func NewState() *State {
	s := &State{
		Subslot:   0x10,
		PageRegs:  [4]uint8{3, 2, 1, 0},
		MapperRAM: make([]byte, MapperRAMSize),
	}
	for i := range s.MapperRAM {
		s.MapperRAM[i] = 0xFF
	}
	return s
}

// ActiveSubslot returns the 2-bit subslot selected for a page index
// (0..3).
func (s *State) ActiveSubslot(page int) uint8 {
	v := uint32(s.Subslot)
	return uint8(bits.GetN(&v, 2*page, 0x3))
}

func pageOf(addr uint16) int {
	return int(addr>>14) & 0x3
}

func (s *State) mapperRAMOffset(page int, addr uint16) int {
	idx := int(s.PageRegs[page]) % numPages
	return idx*pageSize + int(addr)%pageSize
}

// SunriseRead and SunriseWrite are the Sunrise mapper's Read/Write pair, invoked when
// the active subslot for the addressed page is 0.
type SunriseRead func(addr uint16) (data byte, drive bool)
type SunriseWrite func(addr uint16, data byte)

// ReadMemory implements spec.md §4.8's "Memory reads" rules.
func (s *State) ReadMemory(addr uint16, sunriseRead SunriseRead) (data byte, drive bool) {
	if addr == 0xFFFF {
		return ^s.Subslot, true
	}

	page := pageOf(addr)

	switch s.ActiveSubslot(page) {
	case 0:
		if addr >= 0x4000 && addr <= 0x7FFF {
			return sunriseRead(addr)
		}
		return 0xFF, false
	case 1:
		return s.MapperRAM[s.mapperRAMOffset(page, addr)], true
	default:
		return 0xFF, false
	}
}

// WriteMemory implements spec.md §4.8's "Memory writes" rules.
func (s *State) WriteMemory(addr uint16, data byte, sunriseWrite SunriseWrite) {
	if addr == 0xFFFF {
		s.Subslot = data
		return
	}

	page := pageOf(addr)

	switch s.ActiveSubslot(page) {
	case 0:
		if addr >= 0x4000 && addr <= 0x7FFF {
			sunriseWrite(addr, data)
		}
	case 1:
		s.MapperRAM[s.mapperRAMOffset(page, addr)] = data
	}
}

// page2Gate is the subslot arbitration page backing ports 0xFC-0xFF
// (spec.md §4.8: "only accept ... when the active subslot for page 2 is
// 1").
const page2Gate = 2

// ReadIO implements the I/O bus extension's read gating (spec.md §4.8,
// §9 open question 2: the gate must not be removed, Nextor's mapper
// probe depends on it).
func (s *State) ReadIO(port uint8) (data byte, drive bool) {
	if port < 0xFC || s.ActiveSubslot(page2Gate) != 1 {
		return 0xFF, false
	}
	return 0xF0 | (s.PageRegs[port-0xFC] & 0x0F), true
}

// WriteIO implements the I/O bus extension's write gating.
func (s *State) WriteIO(port uint8, data byte) {
	if port < 0xFC || s.ActiveSubslot(page2Gate) != 1 {
		return
	}
	s.PageRegs[port-0xFC] = data & 0x0F
}
