// https://github.com/8bitwren/msxcart
//
// Copyright (c) The msxcart Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago

package menu

import (
	"github.com/8bitwren/msxcart/internal/reg"
)

// rawGPIO samples the cartridge's address bus and /RD strobe directly
// from the GPIO input register, bypassing the PIO coprocessor entirely
// (spec.md §4.4's MSX1 path: the BIOS never re-asserts /SLTSL at address
// 0 after reset, so there is no bus cycle for the PIO responder to
// capture in the first place).
type rawGPIO struct {
	gpioInBase uint32
	rdPin      int
	addrPins   [16]int
}

// NewRawGPIO returns a GPIOSampler bound to board/explorer's GPIO input
// register, given the /RD pin number and the 16 address-line pin
// numbers (A0 first).
func NewRawGPIO(gpioInBase uint32, rdPin int, addrPins [16]int) GPIOSampler {
	return &rawGPIO{gpioInBase: gpioInBase, rdPin: rdPin, addrPins: addrPins}
}

func (g *rawGPIO) Sample() (rdLow bool, addr uint16) {
	rdLow = reg.Get(g.gpioInBase, g.rdPin, 1) == 0

	for i, pin := range g.addrPins {
		if reg.Get(g.gpioInBase, pin, 1) == 1 {
			addr |= 1 << i
		}
	}

	return rdLow, addr
}
