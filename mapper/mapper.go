// https://github.com/8bitwren/msxcart
//
// Copyright (c) The msxcart Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package mapper implements the eleven MSX cartridge bank-switching
// disciplines (spec.md Component D): for each mapper ID, a write
// decoder, a read translator, and the loop-template shape (banked or
// plain) that drives them.
//
// Every mapper implementation here is pure and hardware-independent —
// it trades in ROM offsets and bus addresses, never PIO FIFOs directly —
// so the whole package is unit-testable with plain byte slices standing
// in for flash/SRAM. The loader wires a Mapper's Read/Write methods to a
// pio.Engine at boot.
package mapper

import "fmt"

// ROM is the byte source a mapper translates addresses into. Both a
// plain byte slice (via NewSliceROM, used by tests) and *cache.Cache
// (used by the loader on real hardware) satisfy it.
type ROM interface {
	ReadByte(offset int) byte
}

type sliceROM []byte

func (s sliceROM) ReadByte(offset int) byte { return s[offset] }

// NewSliceROM wraps a plain byte slice as a ROM, for tests and for any
// caller that has no need of the SRAM cache.
func NewSliceROM(b []byte) ROM { return sliceROM(b) }

// Mapper is the interface every bank-switching discipline implements.
// Read and Write are called once per captured bus cycle; Banked reports
// whether the loader should drive this mapper with the write-draining
// Template A loop or the simpler Template B (spec.md §4.3).
type Mapper interface {
	// Read computes the response for a captured read address. drive is
	// false for addresses outside this mapper's window.
	Read(addr uint16) (data byte, drive bool)
	// Write applies a captured write (bank-register update, task-file
	// register, SCC register forward, etc.) Writes to addresses this
	// mapper does not decode are silently ignored.
	Write(addr uint16, data byte)
	// Banked reports whether this mapper needs Template A's
	// write-draining loop.
	Banked() bool
}

// IOMapper is additionally implemented by mappers that decode a second,
// I/O-port-addressed bus (only mapper 11, spec.md Component F).
type IOMapper interface {
	Mapper
	ReadIO(port uint8) (data byte, drive bool)
	WriteIO(port uint8, data byte)
}

// Synth is the assumed external SCC/SCC+ waveform synthesizer
// (spec.md §6.6), embedded by the Konami-SCC mapper when the ROM
// record's SCC-audio flag is set.
type Synth interface {
	Reset(enhanced bool)
	Write(addr uint16, data byte)
	Read(addr uint16) byte
	Calc() int16
	Active() bool
	BaseAddress() uint16
}

// Options carries every external collaborator a mapper construction
// might need. Only the fields relevant to the selected mapper ID are
// read; New validates that a required collaborator was supplied.
type Options struct {
	ROM      ROM
	ROMSize  int
	SCCAudio bool
	SCCPlus  bool
	Synth    Synth
	ATA      ATAController
}

// ATAController is the subset of *ata.Controller the Sunrise and
// expanded-slot mappers need. Declared here (rather than importing
// package ata) so mapper stays free of a hardware/cross-core-state
// dependency in its pure, host-testable build.
type ATAController interface {
	Enabled() bool
	Segment() uint8
	WriteControl(data byte)
	ReadByte(addr uint16) (data byte, handled bool)
	WriteByte(addr uint16, data byte) (handled bool)
}

// New constructs the Mapper implementation for a base mapper ID (1..11,
// already masked from the SCC-audio/SCC+ flag bits per
// romimage.Record.Mapper).
func New(id uint8, opt Options) (Mapper, error) {
	switch id {
	case 1, 2:
		return newPlain(opt.ROM, opt.ROMSize, 0x4000, 0xBFFF), nil
	case 4:
		return newPlain(opt.ROM, opt.ROMSize, 0x0000, 0xBFFF), nil
	case 3:
		return newKonami(opt, true), nil
	case 7:
		return newKonami(opt, false), nil
	case 5:
		return newBanked(opt.ROM, opt.ROMSize, 0x4000, 8*1024, 4, ascii8Ports), nil
	case 6:
		return newBanked(opt.ROM, opt.ROMSize, 0x4000, 16*1024, 2, ascii16Ports), nil
	case 8:
		return newNeo(opt.ROM, opt.ROMSize, 8*1024, 6, 11, 2), nil
	case 9:
		return newNeo(opt.ROM, opt.ROMSize, 16*1024, 3, 12, 1), nil
	case 10:
		if opt.ATA == nil {
			return nil, fmt.Errorf("mapper: ID 10 requires an ATA controller")
		}
		return newSunrise(opt.ROM, opt.ROMSize, opt.ATA), nil
	case 11:
		if opt.ATA == nil {
			return nil, fmt.Errorf("mapper: ID 11 requires an ATA controller")
		}
		return newExpanded(opt.ATA), nil
	default:
		return nil, fmt.Errorf("mapper: unsupported mapper ID %d", id)
	}
}

// romByteOrOpenBus applies the universal "offset >= ROM size -> 0xFF"
// rule shared by every mapper (spec.md §4.3).
func romByteOrOpenBus(rom ROM, romSize int, offset int) byte {
	if offset < 0 || offset >= romSize {
		return 0xFF
	}
	return rom.ReadByte(offset)
}
