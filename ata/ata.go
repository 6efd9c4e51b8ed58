// https://github.com/8bitwren/msxcart
//
// Copyright (c) The msxcart Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package ata implements the Sunrise IDE / Nextor ATA task-file emulator
// (spec.md Component G): the register set and byte-latched 16-bit data
// path a Nextor kernel expects from a real Sunrise IDE cartridge, backed
// by a USB Mass Storage device instead of a physical disk.
//
// Controller is shared between core 0 (which drives it from MSX bus
// cycles) and core 1 (the USB-MSC bridge in package usbmsc, which
// completes transfers asynchronously); every field either of them touches
// is a sync/atomic value, matching spec.md §3.3's "all fields referenced
// across cores must be declared with atomic/volatile semantics".
package ata

import (
	"sync/atomic"

	"github.com/8bitwren/msxcart/bits"
)

// FSM states (spec.md §3.3).
type State uint32

const (
	Idle State = iota
	Busy
	ReadData
	WriteData
)

// Status register bits.
const (
	StatusERR  = 0x01
	StatusDRQ  = 0x08
	StatusDSC  = 0x10
	StatusDRDY = 0x40
	StatusBSY  = 0x80
)

// Error register bits.
const (
	ErrABRT = 0x04
)

// ATA commands dispatched via the command register (spec.md §4.5 table).
const (
	CmdReadSectors     = 0x20
	CmdWriteSectors    = 0x30
	CmdInitParams      = 0x91
	CmdDeviceReset     = 0x08
	CmdRecalibrate     = 0x10
	CmdIdentifyDevice  = 0xEC
	CmdSetFeatures     = 0xEF
	CmdExecDiagnostics = 0x90
)

// SectorSize is the fixed transfer unit for IDE sector reads and writes.
const SectorSize = 512

// Controller holds the Sunrise IDE task-file state. Create with New.
type Controller struct {
	feature       atomic.Uint32
	sectorCount   atomic.Uint32
	sector        atomic.Uint32
	cylinderLow   atomic.Uint32
	cylinderHigh  atomic.Uint32
	deviceHead    atomic.Uint32
	status        atomic.Uint32
	errorReg      atomic.Uint32
	deviceControl atomic.Uint32

	state State32

	segment     atomic.Uint32
	ideEnabled  atomic.Bool
	sectorsLeft atomic.Uint32

	latchByte  atomic.Uint32
	latchValid atomic.Bool

	bufferIndex  atomic.Uint32
	bufferLength atomic.Uint32

	// sector_buffer ownership follows the FSM: core 0 owns it in
	// ReadData/WriteData, core 1 owns it while a USB transfer is in
	// flight during Busy. It is plain memory, not atomic, by design.
	sectorBuffer [SectorSize]byte

	// Cross-core USB request/response flags (spec.md §3.3, §4.6).
	UsbReadRequested   atomic.Bool
	UsbReadLBA         atomic.Uint32
	UsbReadReady       atomic.Bool
	UsbReadFailed      atomic.Bool
	UsbWriteRequested  atomic.Bool
	UsbWriteLBA        atomic.Uint32
	UsbWriteReady      atomic.Bool
	UsbWriteFailed     atomic.Bool
	UsbIdentifyPending atomic.Bool

	info DeviceInfo
}

// State32 is a typed atomic wrapper so callers read/write FSM states
// without sprinkling State(...) conversions at every call site.
type State32 struct {
	v atomic.Uint32
}

func (s *State32) Load() State     { return State(s.v.Load()) }
func (s *State32) Store(st State)  { s.v.Store(uint32(st)) }

// New returns a Controller with the power-on/diagnostic-passed register
// signature (spec.md §4.5 "Device Reset").
func New() *Controller {
	c := &Controller{}
	c.resetSignature()
	return c
}

// resetSignature applies the post-diagnostic device signature shared by
// EXECUTE DEVICE DIAGNOSTIC, DEVICE RESET and SRST (spec.md §4.5).
func (c *Controller) resetSignature() {
	c.errorReg.Store(0x01)
	c.sectorCount.Store(0x01)
	c.sector.Store(0x01)
	c.cylinderLow.Store(0x00)
	c.cylinderHigh.Store(0x00)
	c.deviceHead.Store(0x00)
	c.status.Store(StatusDRDY | StatusDSC)
	c.state.Store(Idle)
}

// SetDeviceInfo records the mounted USB device's identification strings
// and capacity, used when building the IDENTIFY DEVICE response.
func (c *Controller) SetDeviceInfo(info DeviceInfo) {
	c.info = info
}

// Enabled reports whether the control register's IDE-enable bit is set.
func (c *Controller) Enabled() bool {
	return c.ideEnabled.Load()
}

// Segment returns the ROM page selected by the control register.
func (c *Controller) Segment() uint8 {
	return uint8(c.segment.Load())
}

// WriteControl handles a write to bus address 0x4104 (spec.md §4.5).
//
// Bit 0 is the IDE-enable flag. Bits 7..5 carry the ROM page number with
// its three bits reversed, matching the MSX-side driver's bit-reversed
// bank write.
func (c *Controller) WriteControl(data byte) {
	c.ideEnabled.Store(data&0x01 != 0)

	raw := uint32((data >> 5) & 0x7)
	page := bitReverse3(raw)
	c.segment.Store(page)
}

func bitReverse3(raw uint32) uint32 {
	var out uint32
	bits.SetTo(&out, 0, bits.Get(&raw, 2))
	bits.SetTo(&out, 1, bits.Get(&raw, 1))
	bits.SetTo(&out, 2, bits.Get(&raw, 0))
	return out
}

// regOffset returns n for a task-file address 0x7E00+n, n in 0..15,
// mirrored every 16 bytes (spec.md §4.5).
func regOffset(addr uint16) int {
	return int(addr-0x7E00) & 0x0F
}

// InWindow reports whether addr falls within the IDE overlay
// (0x7C00-0x7EFF); 0x7F00-0x7FFF passes through to ROM even when the
// overlay is enabled.
func InWindow(addr uint16) bool {
	return addr >= 0x7C00 && addr <= 0x7EFF
}

// ReadByte services a read within the overlay window. handled is false
// for addresses that must fall back to ROM (0x7F00-0x7FFF, and any
// address when the overlay is disabled).
func (c *Controller) ReadByte(addr uint16) (data byte, handled bool) {
	if !c.ideEnabled.Load() || !InWindow(addr) {
		return 0, false
	}

	switch {
	case addr >= 0x7C00 && addr <= 0x7DFF:
		return c.readData(addr), true
	case addr >= 0x7E00 && addr <= 0x7EFF:
		return c.readTaskFile(regOffset(addr)), true
	}

	return 0, false
}

// WriteByte services a write within the overlay window. handled is false
// when the write must fall through (outside the overlay, or overlay
// disabled); the caller then treats it as an ordinary ROM-mapped address
// (i.e. a no-op on flash).
func (c *Controller) WriteByte(addr uint16, data byte) (handled bool) {
	if !c.ideEnabled.Load() || !InWindow(addr) {
		return false
	}

	switch {
	case addr >= 0x7C00 && addr <= 0x7DFF:
		c.writeData(addr, data)
		return true
	case addr >= 0x7E00 && addr <= 0x7EFF:
		c.writeTaskFile(regOffset(addr), data)
		return true
	}

	return false
}

func (c *Controller) readTaskFile(n int) byte {
	switch n {
	case 0:
		return c.readData(0x7C00)
	case 1:
		return byte(c.errorReg.Load())
	case 2:
		return byte(c.sectorCount.Load())
	case 3:
		return byte(c.sector.Load())
	case 4:
		return byte(c.cylinderLow.Load())
	case 5:
		return byte(c.cylinderHigh.Load())
	case 6:
		return byte(c.deviceHead.Load())
	case 7:
		return byte(c.status.Load())
	case 14:
		return byte(c.status.Load())
	default:
		return 0xFF
	}
}

func (c *Controller) writeTaskFile(n int, data byte) {
	switch n {
	case 0:
		c.writeData(0x7C00, data)
	case 1:
		c.feature.Store(uint32(data))
	case 2:
		c.sectorCount.Store(uint32(data))
	case 3:
		c.sector.Store(uint32(data))
	case 4:
		c.cylinderLow.Store(uint32(data))
	case 5:
		c.cylinderHigh.Store(uint32(data))
	case 6:
		c.deviceHead.Store(uint32(data))
	case 7:
		c.dispatch(data)
	case 14:
		c.writeDeviceControl(data)
	}
}

func (c *Controller) writeDeviceControl(data byte) {
	c.deviceControl.Store(uint32(data))

	if data&0x04 != 0 {
		c.status.Store(StatusBSY)
		c.state.Store(Idle)
	} else {
		c.resetSignature()
	}
}

// LBA returns the 28-bit logical block address assembled from the
// sector/cylinder/device-head registers (spec.md §4.5 "Addressing
// notes").
func (c *Controller) LBA() uint32 {
	return c.sector.Load() |
		(c.cylinderLow.Load() << 8) |
		(c.cylinderHigh.Load() << 16) |
		((c.deviceHead.Load() & 0xF) << 24)
}

// SetLBA writes the sector/cylinder/device-head registers from a 28-bit
// LBA value, preserving the non-LBA device-head bits.
func (c *Controller) SetLBA(lba uint32) {
	c.sector.Store(lba & 0xFF)
	c.cylinderLow.Store((lba >> 8) & 0xFF)
	c.cylinderHigh.Store((lba >> 16) & 0xFF)

	dh := c.deviceHead.Load()&0xF0 | ((lba >> 24) & 0xF)
	c.deviceHead.Store(dh)
}

func (c *Controller) slave() bool {
	return c.deviceHead.Load()&0x10 != 0
}

func (c *Controller) abort() {
	c.status.Store(StatusDRDY | StatusERR)
	c.errorReg.Store(ErrABRT)
}

// dispatch handles a write to the command register (spec.md §4.5
// "Command dispatch").
func (c *Controller) dispatch(cmd byte) {
	if c.slave() {
		c.abort()
		return
	}

	switch cmd {
	case CmdIdentifyDevice:
		if c.info.Mounted {
			buf := BuildIdentify(c.info)
			c.sectorBuffer = buf
			c.bufferIndex.Store(0)
			c.bufferLength.Store(SectorSize)
			c.status.Store(StatusDRDY | StatusDSC | StatusDRQ)
			c.state.Store(ReadData)
		} else {
			c.status.Store(StatusBSY)
			c.state.Store(Busy)
			c.UsbIdentifyPending.Store(true)
		}

	case CmdReadSectors:
		n := c.sectorCount.Load()
		if n == 0 {
			n = 256
		}
		c.sectorsLeft.Store(n)
		c.status.Store(StatusBSY)
		c.state.Store(Busy)
		c.UsbReadLBA.Store(c.LBA())
		c.UsbReadRequested.Store(true)

	case CmdWriteSectors:
		n := c.sectorCount.Load()
		if n == 0 {
			n = 256
		}
		c.sectorsLeft.Store(n)
		c.bufferIndex.Store(0)
		c.bufferLength.Store(SectorSize)
		c.status.Store(StatusDRDY | StatusDSC | StatusDRQ)
		c.state.Store(WriteData)

	case CmdExecDiagnostics, CmdDeviceReset:
		c.resetSignature()

	case CmdSetFeatures, CmdInitParams, CmdRecalibrate:
		c.status.Store(StatusDRDY | StatusDSC)

	default:
		c.abort()
	}
}

// readData implements the byte-latched 16-bit data register read path
// (spec.md §4.5.4).
func (c *Controller) readData(addr uint16) byte {
	even := addr&1 == 0

	if even {
		idx := c.bufferIndex.Load()
		lo := c.sectorBuffer[idx]
		hi := c.sectorBuffer[idx+1]
		c.latchByte.Store(uint32(hi))
		c.latchValid.Store(true)
		return lo
	}

	hi := byte(c.latchByte.Load())
	c.latchValid.Store(false)

	idx := c.bufferIndex.Load() + 2
	c.bufferIndex.Store(idx)

	if idx >= c.bufferLength.Load() {
		c.finishRead()
	}

	return hi
}

func (c *Controller) finishRead() {
	left := c.sectorsLeft.Load()
	if left > 0 {
		left--
		c.sectorsLeft.Store(left)
	}

	if left > 0 {
		c.SetLBA(c.LBA() + 1)
		c.status.Store(StatusBSY)
		c.state.Store(Busy)
		c.UsbReadLBA.Store(c.LBA())
		c.UsbReadRequested.Store(true)
	} else {
		c.status.Store(StatusDRDY | StatusDSC)
		c.state.Store(Idle)
	}
}

// writeData implements the byte-latched 16-bit data register write path.
func (c *Controller) writeData(addr uint16, data byte) {
	even := addr&1 == 0

	if even {
		c.latchByte.Store(uint32(data))
		c.latchValid.Store(true)
		return
	}

	lo := byte(c.latchByte.Load())
	c.latchValid.Store(false)

	idx := c.bufferIndex.Load()
	c.sectorBuffer[idx] = lo
	c.sectorBuffer[idx+1] = data
	idx += 2
	c.bufferIndex.Store(idx)

	if idx >= c.bufferLength.Load() {
		c.finishWrite()
	}
}

func (c *Controller) finishWrite() {
	if left := c.sectorsLeft.Load(); left > 0 {
		c.sectorsLeft.Store(left - 1)
	}

	// sectorsLeft is consulted again by the USB bridge once the write
	// completes, to decide whether to chain another sector or return to
	// Idle (spec.md §4.6 item 6).
	c.UsbWriteLBA.Store(c.LBA())
	c.status.Store(StatusBSY)
	c.state.Store(Busy)
	c.UsbWriteRequested.Store(true)
}

// SectorBuffer returns the shared 512-byte transfer buffer. Only call
// this while holding FSM ownership (core 1 during Busy, core 0 otherwise
// per spec.md §3.3).
func (c *Controller) SectorBuffer() *[SectorSize]byte {
	return &c.sectorBuffer
}

// StateValue exposes the current FSM state for the USB-MSC bridge.
func (c *Controller) StateValue() State {
	return c.state.Load()
}

// SetState is used by the USB-MSC bridge to transition the FSM after
// completing a transfer (spec.md §4.6 items 5-6).
func (c *Controller) SetState(s State) {
	c.state.Store(s)
}

// SetStatus is used by the USB-MSC bridge to update the status register
// after completing or failing a transfer.
func (c *Controller) SetStatus(v byte) {
	c.status.Store(uint32(v))
}

// SetError sets the error register (used on USB transfer failure).
func (c *Controller) SetError(v byte) {
	c.errorReg.Store(uint32(v))
}

// ResetBuffer reinitializes the buffer cursor for a fresh 512-byte
// transfer, used by the USB-MSC bridge after a completed read.
func (c *Controller) ResetBuffer() {
	c.bufferIndex.Store(0)
	c.bufferLength.Store(SectorSize)
}

// SectorsRemaining returns the outstanding sector count of a
// multi-sector transfer.
func (c *Controller) SectorsRemaining() uint16 {
	return uint16(c.sectorsLeft.Load())
}

// Status returns the current status register value.
func (c *Controller) Status() byte {
	return byte(c.status.Load())
}
