// https://github.com/8bitwren/msxcart
//
// Copyright (c) The msxcart Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago

package scc

import (
	"errors"

	"github.com/8bitwren/msxcart/dma"
	"github.com/8bitwren/msxcart/internal/reg"
)

// I²S DMA channel registers, relative to a DMA channel's base address
// (spec.md §6.5: "one PIO state machine plus one DMA channel"). This type
// only manages the transfer descriptors and the buffer pool they draw
// from; no code in this module loads the PIO program that serializes
// each Frame to the DATA/BCLK/LRCLK pins.
const (
	dmaTransCountTrig = 0x00 // write: buffer length in words, triggers the transfer
	dmaCtrl           = 0x0C
	ctrlBusy          = 24 // CTRL.BUSY bit: set while the channel is draining a buffer
)

// i2sBackend implements Backend against a single PIO-driven I²S output
// with a DMA channel and a fixed-size ring of buffers allocated from the
// shared DMA region (the same allocator cache.Cache uses).
type i2sBackend struct {
	dmaBase uint32
	fifo    uint32
	mute    func(on bool)

	region  *dma.Region
	addrs   [NumBuffers]uint
	buffers [NumBuffers]*Buffer
	next    int
}

// NewI2S allocates the buffer pool and returns a Backend bound to the
// I²S DMA channel at dmaBase, feeding the PIO TX FIFO at fifoAddr. mute
// drives the DAC's mute pin (spec.md §6.5's "three-pin I²S plus a mute
// pin"); it may be nil.
func NewI2S(dmaBase, fifoAddr uint32, mute func(on bool)) (Backend, error) {
	region := dma.Default()
	if region == nil {
		return nil, errors.New("scc: DMA region not initialized")
	}

	b := &i2sBackend{dmaBase: dmaBase, fifo: fifoAddr, mute: mute, region: region}

	for i := 0; i < NumBuffers; i++ {
		raw := make([]byte, FrameCount*4) // 2 channels × 2 bytes per frame
		addr := region.Alloc(raw, 4)
		if addr == 0 {
			return nil, errors.New("scc: I2S buffer pool allocation failed")
		}
		b.addrs[i] = addr
		b.buffers[i] = new(Buffer)
	}

	if b.mute != nil {
		b.mute(false)
	}

	return b, nil
}

// TakeBuffer blocks until the DMA channel is done draining the oldest
// in-flight buffer, then returns it for refilling.
func (b *i2sBackend) TakeBuffer() *Buffer {
	reg.Wait(b.dmaBase+dmaCtrl, ctrlBusy, 1, 0)
	return b.buffers[b.next]
}

// GiveBuffer writes the just-filled buffer back to its DMA-visible
// address and retriggers the transfer.
func (b *i2sBackend) GiveBuffer(buf *Buffer) {
	raw := make([]byte, FrameCount*4)
	for i, f := range buf {
		raw[i*4+0] = byte(f.Left)
		raw[i*4+1] = byte(f.Left >> 8)
		raw[i*4+2] = byte(f.Right)
		raw[i*4+3] = byte(f.Right >> 8)
	}

	addr := b.addrs[b.next]
	b.region.Write(addr, 0, raw)
	reg.Write(b.dmaBase+dmaTransCountTrig, uint32(FrameCount*4/4))

	b.next = (b.next + 1) % NumBuffers
}
