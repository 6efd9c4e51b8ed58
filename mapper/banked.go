// https://github.com/8bitwren/msxcart
//
// Copyright (c) The msxcart Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package mapper

// writePort maps an address range (inclusive) decoded by a banked
// mapper's write captor to the bank register it updates (spec.md §4.3
// address translation table).
type writePort struct {
	base, end uint16
	reg       int
}

func inPort(p writePort, addr uint16) bool {
	return addr >= p.base && addr <= p.end
}

var ascii8Ports = []writePort{
	{0x6000, 0x67FF, 0},
	{0x6800, 0x6FFF, 1},
	{0x7000, 0x77FF, 2},
	{0x7800, 0x7FFF, 3},
}

var ascii16Ports = []writePort{
	{0x6000, 0x67FF, 0},
	{0x7000, 0x77FF, 1},
}

var konamiSCCPorts = []writePort{
	{0x5000, 0x57FF, 0},
	{0x7000, 0x77FF, 1},
	{0x9000, 0x97FF, 2},
	{0xB000, 0xB7FF, 3},
}

// konami (no SCC) never decodes a write for r0: it stays hardwired to 0.
var konamiPlainPorts = []writePort{
	{0x6000, 0x67FF, 1},
	{0x8000, 0x87FF, 2},
	{0xA000, 0xA7FF, 3},
}

// banked implements the common 8/16 KiB bank-switched window shape
// shared by ASCII-8, ASCII-16 and (via embedding) the Konami variants
// (spec.md §4.3 "8 KiB banked"/"16 KiB banked" translation rules).
type banked struct {
	rom        ROM
	romSize    int
	windowBase uint16
	windowEnd  uint16
	bankSize   uint32
	regs       []uint8
	ports      []writePort
}

func newBanked(rom ROM, romSize int, windowBase uint16, bankSize uint32, numBanks int, ports []writePort) *banked {
	regs := make([]uint8, numBanks)
	for i := range regs {
		regs[i] = uint8(i)
	}

	return &banked{
		rom:        rom,
		romSize:    romSize,
		windowBase: windowBase,
		windowEnd:  windowBase + uint16(uint32(numBanks)*bankSize) - 1,
		bankSize:   bankSize,
		regs:       regs,
		ports:      ports,
	}
}

func (b *banked) translate(addr uint16) (offset int, ok bool) {
	if addr < b.windowBase || addr > b.windowEnd {
		return 0, false
	}

	rel := uint32(addr - b.windowBase)
	slot := rel / b.bankSize
	reg := b.regs[slot]

	return int(uint32(reg)*b.bankSize + rel%b.bankSize), true
}

func (b *banked) Read(addr uint16) (byte, bool) {
	offset, ok := b.translate(addr)
	if !ok {
		return 0xFF, false
	}
	return romByteOrOpenBus(b.rom, b.romSize, offset), true
}

func (b *banked) Write(addr uint16, data byte) {
	for _, p := range b.ports {
		if inPort(p, addr) {
			b.regs[p.reg] = data
			return
		}
	}
}

func (b *banked) Banked() bool { return true }
