// https://github.com/8bitwren/msxcart
//
// Copyright (c) The msxcart Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package loader implements Component J, the boot dispatcher: it walks
// the flash-resident catalog (package romimage), drives the menu stage
// (package menu) when the multi-ROM variant is present, fills the SRAM
// cache (package cache) with the selected payload, constructs the right
// Mapper (package mapper), and runs the PIO engine loop template the
// selected mapper calls for (spec.md §4.3/§4.9's Template A/B split).
//
// Package loader never itself touches a register: every hardware
// collaborator arrives through Config as an interface, the same
// duck-typed-dependency shape package mapper and package usbmsc use to
// stay host-testable. Only cmd/firmware and board/explorer know about
// concrete addresses.
package loader

import (
	"fmt"

	"github.com/8bitwren/msxcart/ata"
	"github.com/8bitwren/msxcart/explorerext"
	"github.com/8bitwren/msxcart/mapper"
	"github.com/8bitwren/msxcart/menu"
	"github.com/8bitwren/msxcart/pio"
	"github.com/8bitwren/msxcart/romimage"
	"github.com/8bitwren/msxcart/scc"
	"github.com/8bitwren/msxcart/usbmsc"
)

// noCacheMappers never read through the ROM cache (spec.md §4.2): NEO-8
// and NEO-16 decode banks too fast for a cache refill to keep up with,
// and the expanded-slot mapper has no ROM at all, only mapper RAM.
var noCacheMappers = map[uint8]bool{8: true, 9: true, 11: true}

// Cache is the subset of *cache.Cache the loader needs: a ROM source
// that can be (re)filled from a freshly selected payload. Declared
// locally, rather than importing package cache directly, so this file
// builds and tests under the default build (package cache's only file
// carries a tamago-or-staticcheck build tag, since it talks straight to
// a DMA region); board/explorer supplies the real factory via
// NewHardwareCache in a tamago-tagged file.
type Cache interface {
	mapper.ROM
	Fill(rom []byte, disable bool)
}

// Config carries every external collaborator a boot needs. Fields left
// nil are simply never exercised by the record actually selected; Boot
// fails only if the selected record needs a collaborator that is
// missing (an ATA controller for mappers 10/11, an I2S backend for an
// SCC-audio record, and so on).
type Config struct {
	// Blob is the full flash-resident image: either the multi-ROM
	// variant (menu ROM, record table, concatenated payloads) or the
	// single-ROM variant (one record immediately followed by its
	// payload), per romimage.HasMenu.
	Blob []byte

	// NewCache constructs a fresh ROM cache. Production callers pass
	// loader.NewHardwareCache (tamago-tagged); tests pass a fake backed
	// by a plain byte slice.
	NewCache func() (Cache, error)

	// Bus is the cartridge bus PIO engine's backend.
	Bus pio.Backend
	// IOBus is the I/O-bus-extension PIO backend, required only for
	// mapper 11 (spec.md Component F).
	IOBus pio.Backend

	// MenuGPIO backs the menu stage's MSX1 reset-detection fallback.
	// Required only when the multi-ROM variant is present.
	MenuGPIO menu.GPIOSampler

	// ATA is the IDE task-file controller shared by mappers 10 and 11
	// and by the USB MSC bridge.
	ATA *ata.Controller
	// USBHost is the host-mode USB Mass Storage driver backing ATA. Only
	// used by mappers 10 and 11; when it is nil no USB bridge is started.
	USBHost usbmsc.Host
	// USBDevAddr is the USB device address the Bridge mounts against
	// once enumeration completes (board/explorer owns enumeration
	// itself; the loader only wires the already-known address through).
	USBDevAddr int

	// SCCClockHz and SCCSampleRate parametrize the wavetable synth's
	// fixed-point phase accumulator (spec.md §6.6). SCCQuality selects
	// nearest-sample (0) or linearly interpolated (>=1) playback.
	SCCClockHz    float64
	SCCSampleRate float64
	SCCQuality    int
	// I2S is the triple-buffered DAC sink. Required only when the
	// selected record's SCC-audio flag is set, and also used to preview
	// audio from the SD catalog browser (Component K) when SD is set.
	I2S scc.Backend

	// SD is the microSD card catalog backend for the menu stage's
	// explorer overlay (spec.md §1/§4.4 Component K). Left nil, the menu
	// runs without the overlay, exactly as it always has on boards that
	// lack a card slot.
	SD explorerext.SDCard
	// SDDir is the directory on SD holding browsable ROM images, passed
	// straight through to explorerext.NewExplorer.
	SDDir string
}

// Result reports what Boot decided to dispatch: the selected catalog
// record, the constructed Mapper ready to hand to ServeForever, and the
// background collaborators it started (nil when the record didn't need
// them), for cmd/firmware to log and for tests to assert against.
type Result struct {
	Record romimage.Record
	Mapper mapper.Mapper
	Cache  Cache
	Synth  *scc.Chip
	Bridge *usbmsc.Bridge
}

// Boot performs everything up to, but not including, the mapper bus
// loop: menu selection (if the multi-ROM variant is present), cache
// fill, SCC synth and USB MSC bridge startup, and mapper construction.
// Splitting this out from ServeForever keeps the decision logic
// testable without entering an infinite loop.
func Boot(cfg Config) (*Result, error) {
	record, payload, err := selectImage(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.NewCache == nil {
		return nil, fmt.Errorf("loader: no cache factory configured")
	}
	c, err := cfg.NewCache()
	if err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}
	c.Fill(payload, noCacheMappers[record.Mapper])

	opt := mapper.Options{
		ROM:      c,
		ROMSize:  len(payload),
		SCCAudio: record.SCCAudio,
		SCCPlus:  record.SCCPlus,
		ATA:      cfg.ATA,
	}

	var synth *scc.Chip
	if record.SCCAudio {
		if cfg.I2S == nil {
			return nil, fmt.Errorf("loader: record %q needs SCC audio but no I2S backend was configured", record.Name)
		}
		synth = scc.NewChip(cfg.SCCClockHz, cfg.SCCSampleRate, cfg.SCCQuality)
		synth.Reset(record.SCCPlus)
		opt.Synth = synth
		go scc.Run(cfg.I2S, synth)
	}

	var bridge *usbmsc.Bridge
	if record.Mapper == 10 || record.Mapper == 11 {
		if cfg.ATA == nil {
			return nil, fmt.Errorf("loader: record %q needs mapper %d, which requires an ATA controller", record.Name, record.Mapper)
		}
		if cfg.USBHost != nil {
			bridge = usbmsc.New(cfg.USBHost, cfg.ATA)
			bridge.OnMount(cfg.USBDevAddr)
			go bridge.Run()
		}
	}

	m, err := mapper.New(record.Mapper, opt)
	if err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}

	return &Result{Record: record, Mapper: m, Cache: c, Synth: synth, Bridge: bridge}, nil
}

// Run is the entry point cmd/firmware calls: Boot, then serve the
// mapper's bus loop forever (spec.md §4.9: the firmware never reboots
// the mapper loop without a hardware reset). It returns only on a
// configuration error discovered before the loop starts.
func Run(cfg Config) error {
	res, err := Boot(cfg)
	if err != nil {
		return err
	}
	ServeForever(cfg, res.Mapper)
	return nil
}

// selectImage resolves the record and its payload from cfg.Blob,
// driving the menu stage first when the multi-ROM variant is present
// (spec.md §4.4/§4.9).
func selectImage(cfg Config) (romimage.Record, []byte, error) {
	if !romimage.HasMenu(cfg.Blob) {
		rec, payload, err := singleROM(cfg.Blob)
		return rec, payload, err
	}

	records, err := romimage.ParseTable(cfg.Blob, romimage.MenuROMSize)
	if err != nil {
		return romimage.Record{}, nil, fmt.Errorf("loader: %w", err)
	}

	idx, err := runMenu(cfg)
	if err != nil {
		return romimage.Record{}, nil, err
	}
	if int(idx) >= len(records) {
		return romimage.Record{}, nil, fmt.Errorf("loader: menu selected index %d, only %d records in the table", idx, len(records))
	}

	rec := records[idx]
	payload, err := romimage.Payload(cfg.Blob, rec)
	if err != nil {
		return romimage.Record{}, nil, fmt.Errorf("loader: %w", err)
	}
	return rec, payload, nil
}

func singleROM(blob []byte) (romimage.Record, []byte, error) {
	if len(blob) < romimage.RecordSize {
		return romimage.Record{}, nil, fmt.Errorf("loader: single-ROM blob too small for a record header")
	}
	rec, err := romimage.ParseRecord(blob[:romimage.RecordSize])
	if err != nil {
		return romimage.Record{}, nil, fmt.Errorf("loader: %w", err)
	}
	payload, err := romimage.Payload(blob, rec)
	if err != nil {
		return romimage.Record{}, nil, fmt.Errorf("loader: %w", err)
	}
	return rec, payload, nil
}

// runMenu serves the menu ROM until the user's selection and the
// following reset are both observed, returning the selected catalog
// index.
func runMenu(cfg Config) (uint8, error) {
	if cfg.MenuGPIO == nil {
		return 0, fmt.Errorf("loader: multi-ROM image requires a menu GPIO sampler")
	}

	sel, err := menu.NewSelector(cfg.Blob[:romimage.MenuROMSize])
	if err != nil {
		return 0, fmt.Errorf("loader: %w", err)
	}

	if cfg.SD != nil {
		exp, err := explorerext.NewExplorer(cfg.SD, cfg.SDDir, cfg.I2S)
		if err != nil {
			return 0, fmt.Errorf("loader: %w", err)
		}
		sel.AttachExplorer(exp)
	}

	engine := pio.NewEngine(cfg.Bus)
	return sel.Run(engine, cfg.MenuGPIO), nil
}

// ServeForever drives the cartridge bus engine with the loop template
// the selected mapper calls for (spec.md §4.3: Template A for banked
// mappers, Template B for plain mappers), plus the I/O-bus-extension
// engine for mapper 11. It never returns.
func ServeForever(cfg Config, m mapper.Mapper) {
	engine := pio.NewEngine(cfg.Bus)

	var ioEngine *pio.Engine
	ioMapper, isIO := m.(mapper.IOMapper)
	if isIO && cfg.IOBus != nil {
		ioEngine = pio.NewEngine(cfg.IOBus)
	}

	if !m.Banked() {
		for {
			engine.StepPlain(m.Read)
		}
	}

	for {
		engine.Step(m.Read, m.Write)
		if ioEngine != nil {
			ioEngine.Step(
				func(addr uint16) (byte, bool) { return ioMapper.ReadIO(uint8(addr)) },
				func(addr uint16, data byte) { ioMapper.WriteIO(uint8(addr), data) },
			)
		}
	}
}
