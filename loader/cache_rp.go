// https://github.com/8bitwren/msxcart
//
// Copyright (c) The msxcart Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago

package loader

import "github.com/8bitwren/msxcart/cache"

// NewHardwareCache is the production Config.NewCache factory: it carves
// the real SRAM window out of the default DMA allocator.
func NewHardwareCache() (Cache, error) {
	return cache.New()
}
