// https://github.com/8bitwren/msxcart
//
// Copyright (c) The msxcart Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago

package explorer

import (
	_ "unsafe"

	"github.com/8bitwren/msxcart/internal/reg"
)

// UART0 register offsets (RP2350 datasheet §12.3), just enough to push a
// single byte out of UARTDR once UARTFR reports room.
const (
	uartDR = 0x000
	uartFR = 0x018

	uartFRTxFF = 5 // UARTFR.TXFF: transmit FIFO full
)

// printk is linked as runtime.printk, the same board-supplies-the-console
// pattern board/usbarmory/mk2/console.go uses, so the runtime's console
// output (and log's default output through it) reaches UART0 before a
// single line of application code runs.
//
//go:linkname printk runtime.printk
func printk(c byte) {
	for reg.Get(uart0Base+uartFR, uartFRTxFF, 1) == 1 {
	}
	reg.Write(uart0Base+uartDR, uint32(c))
}
