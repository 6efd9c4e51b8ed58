// https://github.com/8bitwren/msxcart
//
// Copyright (c) The msxcart Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package loader

import (
	"encoding/binary"
	"testing"

	"github.com/8bitwren/msxcart/ata"
	"github.com/8bitwren/msxcart/pio"
	"github.com/8bitwren/msxcart/romimage"
)

type fakeCache struct {
	rom      []byte
	disabled bool
}

func (c *fakeCache) Fill(rom []byte, disable bool) {
	c.rom = rom
	c.disabled = disable
}

func (c *fakeCache) ReadByte(offset int) byte {
	return c.rom[offset]
}

func fakeCacheFactory() (Cache, error) {
	return &fakeCache{}, nil
}

func buildRecord(name string, mapperByte byte, size, offset uint32) []byte {
	raw := make([]byte, romimage.RecordSize)
	copy(raw, name)
	for i := len(name); i < romimage.NameSize; i++ {
		raw[i] = ' '
	}
	raw[50] = mapperByte
	binary.LittleEndian.PutUint32(raw[51:55], size)
	binary.LittleEndian.PutUint32(raw[55:59], offset)
	return raw
}

func TestBootSingleROMSelectsPlainMapper(t *testing.T) {
	payload := make([]byte, 16*1024)
	for i := range payload {
		payload[i] = 0xAA
	}

	record := buildRecord("Test Cart", 1, uint32(len(payload)), uint32(romimage.RecordSize))
	blob := append(record, payload...)

	res, err := Boot(Config{Blob: blob, NewCache: fakeCacheFactory})
	if err != nil {
		t.Fatalf("Boot: %v", err)
	}

	if res.Record.Mapper != 1 {
		t.Fatalf("selected mapper = %d, want 1", res.Record.Mapper)
	}

	data, drive := res.Mapper.Read(0x4000)
	if !drive || data != 0xAA {
		t.Fatalf("Read(0x4000) = (0x%02X, %v), want (0xAA, true)", data, drive)
	}
}

func TestBootFailsWithoutCacheFactory(t *testing.T) {
	payload := make([]byte, 16*1024)
	record := buildRecord("Test Cart", 1, uint32(len(payload)), uint32(romimage.RecordSize))
	blob := append(record, payload...)

	if _, err := Boot(Config{Blob: blob}); err == nil {
		t.Fatal("expected an error with no cache factory configured")
	}
}

func TestBootSCCAudioRequiresI2S(t *testing.T) {
	payload := make([]byte, 32*1024)
	record := buildRecord("SCC Cart", 3|romimage.SCCAudioFlag, uint32(len(payload)), uint32(romimage.RecordSize))
	blob := append(record, payload...)

	if _, err := Boot(Config{Blob: blob, NewCache: fakeCacheFactory}); err == nil {
		t.Fatal("expected an error: SCC-audio record with no I2S backend")
	}
}

func TestBootMapper10RequiresATA(t *testing.T) {
	payload := make([]byte, 128*1024)
	record := buildRecord("IDE Cart", 10, uint32(len(payload)), uint32(romimage.RecordSize))
	blob := append(record, payload...)

	if _, err := Boot(Config{Blob: blob, NewCache: fakeCacheFactory}); err == nil {
		t.Fatal("expected an error: mapper 10 with no ATA controller")
	}
}

func TestBootMapper10WithATASucceeds(t *testing.T) {
	payload := make([]byte, 128*1024)
	record := buildRecord("IDE Cart", 10, uint32(len(payload)), uint32(romimage.RecordSize))
	blob := append(record, payload...)

	res, err := Boot(Config{Blob: blob, NewCache: fakeCacheFactory, ATA: ata.New()})
	if err != nil {
		t.Fatalf("Boot: %v", err)
	}
	if res.Record.Mapper != 10 {
		t.Fatalf("selected mapper = %d, want 10", res.Record.Mapper)
	}
}

// scriptedBus is a minimal pio.Backend that replays a fixed script of
// reads and writes, the same shape menu's own tests use.
type scriptedBus struct {
	reads    []uint16
	readIdx  int
	writes   []uint32
	writeIdx int
}

func (b *scriptedBus) PollRead() (uint16, bool) {
	if b.readIdx >= len(b.reads) {
		return 0, false
	}
	addr := b.reads[b.readIdx]
	b.readIdx++
	return addr, true
}

func (b *scriptedBus) PollWrite() (uint16, byte, bool) {
	if b.writeIdx >= len(b.writes) {
		return 0, 0, false
	}
	word := b.writes[b.writeIdx]
	b.writeIdx++
	addr, data := pio.DecodeWrite(word)
	return addr, data, true
}

func (b *scriptedBus) Respond(token uint16) {}

func TestBootMultiROMDrivesMenuSelector(t *testing.T) {
	menuROM := make([]byte, romimage.MenuROMSize)
	payload := make([]byte, 16*1024)
	for i := range payload {
		payload[i] = 0x42
	}

	recordOff := uint32(romimage.MenuROMSize + romimage.RecordSize*romimage.MaxRecords + 2)
	record := buildRecord("Menu Pick", 1, uint32(len(payload)), recordOff)
	terminator := make([]byte, romimage.RecordSize)
	for i := range terminator {
		terminator[i] = 0xFF
	}

	blob := append([]byte{}, menuROM...)
	blob = append(blob, record...)
	blob = append(blob, terminator...)
	for uint32(len(blob)) < recordOff {
		blob = append(blob, 0)
	}
	blob = append(blob, payload...)

	sentinel := romimage.SelectionSentinel()
	bus := &scriptedBus{
		reads:  []uint16{0x4000, 0x0000},
		writes: []uint32{pio.EncodeWrite(sentinel, 0)},
	}

	res, err := Boot(Config{
		Blob:     blob,
		NewCache: fakeCacheFactory,
		Bus:      bus,
		MenuGPIO: noopGPIO{},
	})
	if err != nil {
		t.Fatalf("Boot: %v", err)
	}
	if res.Record.Name != "Menu Pick" {
		t.Fatalf("selected record = %q, want %q", res.Record.Name, "Menu Pick")
	}
}

type noopGPIO struct{}

func (noopGPIO) Sample() (bool, uint16) { return false, 0xFFFF }
