// https://github.com/8bitwren/msxcart
//
// Copyright (c) The msxcart Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago

package explorer

import (
	"github.com/8bitwren/msxcart/explorerext"
	"github.com/8bitwren/msxcart/menu"
	"github.com/8bitwren/msxcart/pio"
	"github.com/8bitwren/msxcart/scc"
)

// CartridgeBus returns the PIO backend for the Z80 cartridge bus tap,
// for loader.Config.Bus.
func CartridgeBus() pio.Backend {
	return pio.NewBlock(cartridgeBusPIO)
}

// IOBus returns the PIO backend for the I/O-bus-extension tap mapper 11
// needs, for loader.Config.IOBus.
func IOBus() pio.Backend {
	return pio.NewBlock(ioBusPIO)
}

// MenuGPIO returns the raw address/​RD sampler the menu stage falls back
// on to detect an MSX1 reset, for loader.Config.MenuGPIO.
func MenuGPIO() menu.GPIOSampler {
	return menu.NewRawGPIO(gpioInputReg, pinRD, addrPins)
}

// I2S returns the triple-buffered DAC sink for loader.Config.I2S. mute
// drives the DAC's hardware mute pin and may be nil; Init must have run
// first so the global DMA region I2S's buffer pool draws from exists.
func I2S(mute func(on bool)) (scc.Backend, error) {
	return scc.NewI2S(I2SDMABase, I2SFIFOAddr, mute)
}

// SDCard brings up the microSD slot and mounts its FAT16 volume, for
// loader.Config.SD. Only the 2350 Explorer variant has a slot wired;
// callers on boards without one simply don't call this and leave
// Config.SD nil.
func SDCard() (explorerext.SDCard, error) {
	return NewSDCard()
}
