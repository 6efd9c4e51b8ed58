// https://github.com/8bitwren/msxcart
//
// Copyright (c) The msxcart Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago

package explorer

import (
	"github.com/8bitwren/msxcart/dma"
)

// init allocates the global DMA region package dma's Default() serves to
// cache.New and scc.NewI2S, the same "allocate global DMA region" step
// board/qemu/microvm's own init() takes, here sized to the whole of
// RP2350's striped SRAM rather than a carved-out slice of external RAM.
func init() {
	dma.Init(sramBase, sramSize)
}
