// https://github.com/8bitwren/msxcart
//
// Copyright (c) The msxcart Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago

// Command firmware is the Explorer cartridge's boot image: it brings up
// the board (package board/explorer, imported for its hardware-init-on-
// import side effect), reads the flash-resident catalog, and hands off
// to package loader for the rest of the cartridge's life.
package main

import (
	"log"

	"github.com/8bitwren/msxcart/ata"
	"github.com/8bitwren/msxcart/board/explorer"
	"github.com/8bitwren/msxcart/loader"
)

func main() {
	log.SetFlags(0)
	log.Println("msxcart: Explorer cartridge boot")

	i2s, err := explorer.I2S(nil)
	if err != nil {
		log.Fatalf("msxcart: i2s init failed: %v", err)
	}

	cfg := loader.Config{
		Blob:          explorer.Catalog(),
		NewCache:      loader.NewHardwareCache,
		Bus:           explorer.CartridgeBus(),
		IOBus:         explorer.IOBus(),
		MenuGPIO:      explorer.MenuGPIO(),
		ATA:           ata.New(),
		SCCClockHz:    3579545,
		SCCSampleRate: 44100,
		SCCQuality:    1,
		I2S:           i2s,
		SDDir:         "/ROMS",
	}

	if sd, err := explorer.SDCard(); err != nil {
		log.Printf("msxcart: microSD unavailable, catalog browser disabled: %v", err)
	} else {
		cfg.SD = sd
	}

	if err := loader.Run(cfg); err != nil {
		log.Fatalf("msxcart: boot failed: %v", err)
	}
}
