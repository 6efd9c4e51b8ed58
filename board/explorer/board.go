// https://github.com/8bitwren/msxcart
//
// Copyright (c) The msxcart Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package explorer provides hardware initialization, automatically on
// import, for the Explorer cartridge board (spec.md Component A): an
// RP2350-based MSX cartridge carrier with two PIO-driven bus taps (the
// Z80 cartridge bus and, on mapper 11 carts, the I/O port extension), a
// USB host port for Sunrise IDE emulation, an I²S DAC for SCC/SCC+ and
// preview audio, and, on the 2350 Explorer variant, a microSD slot.
//
// This package is only meant to be used with `GOOS=tamago GOARCH=arm64`
// (RP2350's Cortex-M33 cores, as supported by TamaGo), mirroring
// board/usbarmory/mk2's "hardware init, automatically on import" shape.

//go:build tamago

package explorer

import (
	_ "unsafe"
)

// Peripheral base addresses, RP2350 memory map (datasheet §2.1). No
// pack example targets this SoC family, so these are taken directly
// from the public datasheet rather than grounded on any example repo.
const (
	sioBase    = 0xD0000000
	clocksBase = 0x40010000
	resetsBase = 0x40020000
	ioBank0    = 0x40028000
	padsBank0  = 0x40038000
	uart0Base  = 0x40070000
	dmaBase    = 0x50000000
	pio0Base   = 0x50200000
	pio1Base   = 0x50300000
	pio2Base   = 0x50400000

	sramBase = 0x20000000
	sramSize = 520 * 1024
)

// PIO block assignments (spec.md §4.1/§4.8): one block per bus tap,
// leaving a third block free for the I²S DAC state machines in package
// scc, the same SM-budget split pio/rp.go documents.
const (
	cartridgeBusPIO = pio0Base
	ioBusPIO        = pio1Base
	audioPIO        = pio2Base
)

// I2SFIFOAddr and I2SDMABase locate the audio DMA channel and PIO TX
// FIFO scc.NewI2S binds to.
const (
	I2SDMABase  = dmaBase
	I2SFIFOAddr = audioPIO + 0x010 // TXF0, matching pio/rp.go's pioTXF0 offset
)

// Cartridge address-bus and /RD GPIO assignments backing the menu
// stage's MSX1 raw-sampling fallback (menu.NewRawGPIO). A0 is pin 0 to
// keep the bit order matching the bus's own A0..A15 wiring.
const (
	pinRD        = 16
	gpioInputReg = sioBase + 0x004 // GPIO_IN, RP2350 datasheet §9.11.2
)

var addrPins = [16]int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}

// Console UART pins, shared with no other peripheral.
const (
	uartTXPin = 28
	uartRXPin = 29
)

// microSD card pins, 2350 Explorer variant only (SPEC_FULL.md §3
// Component K): bit-banged SPI mode, the simplest SD access mode and
// the one every card is guaranteed to support regardless of its native
// SDIO bus width. No pack example targets an SD card at all, SPI or
// otherwise, so this pin assignment is a judgment call of the same kind
// as the cartridge bus/console pins above.
const (
	sdCSPin   = 20
	sdSCLKPin = 21
	sdMOSIPin = 22
	sdMISOPin = 23
)

// systemClockHz is the target system clock (spec.md §1.1's 250-285MHz
// band); set to the low end for timing margin on the bus responder's
// /WAIT release, the same conservative choice pio/rp.go's spin-wait
// comment already assumes implicitly.
const systemClockHz = 252_000_000

// Init takes care of the lower level SoC initialization triggered early
// in runtime setup: clock configuration and GPIO function select for the
// cartridge bus pins. The DMA region backing the ROM cache and I²S
// buffer pool is set up separately, by dma.go's package init().
//
//go:linkname Init runtime.hwinit
func Init() {
	configureClocks()
	configureGPIO()
}
