// https://github.com/8bitwren/msxcart
//
// Copyright (c) The msxcart Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago

package explorer

import (
	"github.com/8bitwren/msxcart/internal/reg"
)

// IO_BANK0 per-pin control register layout (RP2350 datasheet §9.11): each
// GPIO has an 8-byte STATUS/CTRL pair at ioBank0 + 8*pin, CTRL at +4.
const (
	gpioCtrlStride = 8
	gpioCtrlOffset = 4
	gpioFuncPos    = 0
	gpioFuncMask   = 0x1f

	funcPIO0 = 6
	funcPIO1 = 7
	funcPIO2 = 8
	funcUART = 2
	funcSIO  = 5
)

func setFunc(pin int, fn uint32) {
	addr := uint32(ioBank0) + uint32(pin*gpioCtrlStride) + gpioCtrlOffset
	reg.SetN(addr, gpioFuncPos, gpioFuncMask, fn)
}

// Cartridge address bus A0..A15 plus /RD, the pins the two PIO bus taps
// (package pio's block backend) and the raw-GPIO MSX1 fallback
// (menu.NewRawGPIO) both read. The address lines are wired to whichever
// PIO block services them; /RD is read directly off SIO for the raw
// fallback and also feeds both PIO programs' jmp-pin.
var cartridgeBusPins = addrPins

// configureGPIO selects the pin functions the cartridge bus taps, the
// console UART, the raw /RD+address fallback, and the bit-banged
// microSD SPI lines need. The USB host pins are left at their reset
// function since board/explorer defers their setup to the usbmsc
// backend's own driver, mirroring board/usbarmory/mk2's split between
// Init() (SoC bring-up) and the peripheral packages it wires in.
func configureGPIO() {
	for _, pin := range cartridgeBusPins {
		setFunc(pin, funcPIO0)
	}
	setFunc(pinRD, funcSIO)

	setFunc(uartTXPin, funcUART)
	setFunc(uartRXPin, funcUART)

	setFunc(sdCSPin, funcSIO)
	setFunc(sdSCLKPin, funcSIO)
	setFunc(sdMOSIPin, funcSIO)
	setFunc(sdMISOPin, funcSIO)
}
