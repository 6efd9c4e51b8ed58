// https://github.com/8bitwren/msxcart
//
// Copyright (c) The msxcart Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package mapper

import "github.com/8bitwren/msxcart/ioslot"

// expanded implements mapper 11 (Sunrise + Expanded-Slot Mapper): the
// whole 64 KiB bus, arbitrated by package ioslot between the Sunrise IDE
// handler (subslot 0) and 192 KiB of mapper RAM (subslot 1), plus the
// I/O bus extension's page registers (spec.md §4.8).
//
// Unlike every other mapper, expanded has no ROM field: the Sunrise half
// (subslot 0) answers only through the ATA controller's IDE overlay and
// serves no Sunrise ROM bytes.
type expanded struct {
	ata   ATAController
	slots *ioslot.State
}

func newExpanded(a ATAController) *expanded {
	return &expanded{ata: a, slots: ioslot.NewState()}
}

// sunriseRead/sunriseWrite implement the Sunrise IDE overlay purely
// against the ATA controller. Every subslot-0 read the controller does
// not handle, including 0x4104 and the whole Sunrise ROM range, returns
// open bus; mapper RAM is not consulted for subslot 0.
func (e *expanded) sunriseRead(addr uint16) (byte, bool) {
	if addr == 0x4104 {
		return 0xFF, false
	}
	if data, handled := e.ata.ReadByte(addr); handled {
		return data, true
	}
	return 0xFF, false
}

func (e *expanded) sunriseWrite(addr uint16, data byte) {
	if addr == 0x4104 {
		e.ata.WriteControl(data)
		return
	}
	e.ata.WriteByte(addr, data)
}

func (e *expanded) Read(addr uint16) (byte, bool) {
	return e.slots.ReadMemory(addr, e.sunriseRead)
}

func (e *expanded) Write(addr uint16, data byte) {
	e.slots.WriteMemory(addr, data, e.sunriseWrite)
}

func (e *expanded) Banked() bool { return true }

func (e *expanded) ReadIO(port uint8) (byte, bool) {
	return e.slots.ReadIO(port)
}

func (e *expanded) WriteIO(port uint8, data byte) {
	e.slots.WriteIO(port, data)
}
