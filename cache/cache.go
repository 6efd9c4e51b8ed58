// https://github.com/8bitwren/msxcart
//
// Copyright (c) The msxcart Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago || staticcheck

// Package cache implements the ROM cache (spec.md Component C): a 192 KiB
// SRAM region bulk-filled from flash at mapper-loop entry so ROM reads
// come from SRAM instead of flash XIP. Mappers that disable it (NEO-8,
// NEO-16, expanded-slot) read straight from the flash slice.
package cache

import (
	"fmt"

	"github.com/8bitwren/msxcart/dma"
)

// Size is the fixed SRAM window available to the cache (spec.md §4.2).
const Size = 192 * 1024

// Cache mirrors a ROM image (or part of it) in SRAM for fast read access
// during a mapper loop.
type Cache struct {
	region  *dma.Region
	base    uint
	cached  int
	rom     []byte
	enabled bool
}

// New carves a Size-byte region out of the default DMA allocator for use
// as the ROM cache window.
func New() (*Cache, error) {
	d := dma.Default()
	if d == nil {
		return nil, fmt.Errorf("cache: default DMA region not initialized")
	}

	base := d.Alloc(make([]byte, Size), 4)
	if base == 0 {
		return nil, fmt.Errorf("cache: reserve SRAM window: allocation failed")
	}

	return &Cache{region: d, base: base}, nil
}

// Fill bulk-copies rom into the SRAM window via DMA (spec.md §4.2). If
// rom is larger than Size, only the first Size bytes are cached; reads
// beyond the cached region fall back to the flash-resident slice in
// ReadByte.
//
// disable forces cache.Enabled() false without touching SRAM contents,
// for mappers that must never read through the cache (NEO-8, NEO-16,
// expanded-slot).
func (c *Cache) Fill(rom []byte, disable bool) {
	c.rom = rom

	if disable {
		c.enabled = false
		c.cached = 0
		return
	}

	n := len(rom)
	if n > Size {
		n = Size
	}

	c.region.Write(c.base, 0, rom[:n])
	c.cached = n
	c.enabled = true
}

// Enabled reports whether reads should be served from SRAM at all.
func (c *Cache) Enabled() bool {
	return c.enabled
}

// ReadByte returns the ROM byte at offset, transparently falling back to
// the flash-resident slice beyond the cached region (the "XIP miss" path,
// spec.md §4.2). The caller is responsible for the "offset >= rom size ->
// 0xFF" rule common to every mapper (spec.md §4.3); ReadByte itself
// assumes offset < len(rom).
func (c *Cache) ReadByte(offset int) byte {
	if c.enabled && offset < c.cached {
		buf := make([]byte, 1)
		c.region.Read(c.base, offset, buf)
		return buf[0]
	}

	return c.rom[offset]
}

// Base returns the SRAM window's DMA address.
func (c *Cache) Base() uint {
	return c.base
}

// Region returns the underlying DMA region the SRAM window was carved
// from, for direct read/write access to it.
func (c *Cache) Region() *dma.Region {
	return c.region
}

// Release frees the SRAM window. Only called when switching ROM images
// (the loader never actually does this today since a mapper loop never
// returns, but it keeps Cache symmetric with dma.Region's own API).
func (c *Cache) Release() {
	c.region.Release(c.base)
}
