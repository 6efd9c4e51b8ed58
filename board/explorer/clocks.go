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

// Clock generator register offsets, relative to clocksBase (RP2350
// datasheet §8.4). Only the system (ref-derived PLL) and peripheral
// clocks are driven here; the USB and ADC clocks are left at their
// power-on defaults since this board never uses them.
const (
	clkSysCtrl = 0x3c
	clkSysDiv  = 0x40
	clkSysSel  = 0x44

	clkPeriCtrl = 0x48

	clkSysSelAux  = 0 // AUXSRC select, field value for "clksrc_clk_sys_aux"
	clkSysAuxPLL  = 0 // AUXSRC, field value for "clksrc_pll_sys"
	clkEnablePos  = 11
	clkKillPos    = 10
	clkSrcReadyOK = 1
)

// Reset controller bit positions within RESETS.RESET / RESETS.RESET_DONE
// (datasheet §8.6), for the peripherals this board brings up: the PIO
// blocks, the I/O bank (GPIO function select), the pads bank and UART0.
const (
	resetReg     = 0x00
	resetDoneReg = 0x08

	rstPIO0      = 28
	rstPIO1      = 29
	rstPIO2      = 30 // RP2350 adds a third PIO block vs. RP2040's two
	rstIOBank0   = 6
	rstPadsBank0 = 9
	rstUART0     = 25
)

// releaseReset clears a peripheral's bit in RESETS.RESET and waits for
// the matching RESET_DONE bit, the same deassert-then-wait shape every
// RP-series peripheral init follows.
func releaseReset(bit int) {
	reg.Clear(resetsBase+resetReg, bit)
	reg.Wait(resetsBase+resetDoneReg, bit, 1, 1)
}

// configureClocks brings the system clock up to systemClockHz from the
// USB PLL / crystal oscillator path and releases the peripherals this
// board uses out of reset. The PLL programming sequence itself (VCO
// feedback divider selection for the target frequency) is board-bootrom
// territory on RP2350 and is left to the second-stage bootloader baked
// into the flash image; this only selects the already-running PLL as
// clk_sys's source and ungates the peripherals.
func configureClocks() {
	reg.SetN(clocksBase+clkSysSel, 0, 0x1, clkSysSelAux)
	reg.SetN(clocksBase+clkSysCtrl, 5, 0x7, clkSysAuxPLL)
	reg.Write(clocksBase+clkSysDiv, 1<<16) // integer divide by 1

	reg.Set(clocksBase+clkPeriCtrl, clkEnablePos)

	releaseReset(rstIOBank0)
	releaseReset(rstPadsBank0)
	releaseReset(rstUART0)
	releaseReset(rstPIO0)
	releaseReset(rstPIO1)
	releaseReset(rstPIO2)
}
