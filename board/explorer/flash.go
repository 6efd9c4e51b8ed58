// https://github.com/8bitwren/msxcart
//
// Copyright (c) The msxcart Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago

package explorer

import (
	"reflect"
	"unsafe"
)

// flashXIPBase is the QSPI flash execute-in-place window (RP2350
// datasheet §12.1); firmwareImageSize is the linker-reserved span for
// the firmware binary itself, leaving the remainder of flash for the
// catalog blob the PC-side packing tool writes starting at its own
// "flash_binary_end" offset. No example repo links a comparable flash
// end-of-image symbol the way mem.go's runtime.ramStart/runtime.ramSize
// do for RAM, so this is a fixed constant rather than a linked symbol, a
// judgment call of the same kind as the RP2350 peripheral addresses in
// board.go.
const (
	flashXIPBase      = 0x10000000
	firmwareImageSize = 512 * 1024
)

// Catalog returns the flash-resident image (menu ROM, record table and
// ROM payloads, or a single record plus its payload) as a read-only
// byte slice mapped directly over the XIP window, the same
// pointer-to-slice technique package dma's block.slice uses for its DMA
// buffers.
func Catalog() []byte {
	var buf []byte

	hdr := (*reflect.SliceHeader)(unsafe.Pointer(&buf))
	hdr.Data = uintptr(flashXIPBase + firmwareImageSize)
	hdr.Len = catalogSize
	hdr.Cap = hdr.Len

	return buf
}

// catalogSize is the remainder of the flash device available to the
// catalog blob. 16MiB total flash (a common RP2350 carrier board fit)
// minus the firmware's own reserved span.
const catalogSize = 16*1024*1024 - firmwareImageSize
