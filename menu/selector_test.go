// https://github.com/8bitwren/msxcart
//
// Copyright (c) The msxcart Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package menu

import (
	"testing"

	"github.com/8bitwren/msxcart/pio"
	"github.com/8bitwren/msxcart/romimage"
)

type scriptedBackend struct {
	reads     []uint16
	readIdx   int
	writes    []uint32
	writeIdx  int
	responses []uint16
}

func (b *scriptedBackend) PollRead() (uint16, bool) {
	if b.readIdx >= len(b.reads) {
		return 0, false
	}
	addr := b.reads[b.readIdx]
	b.readIdx++
	return addr, true
}

func (b *scriptedBackend) PollWrite() (uint16, byte, bool) {
	if b.writeIdx >= len(b.writes) {
		return 0, 0, false
	}
	word := b.writes[b.writeIdx]
	b.writeIdx++
	addr, data := pio.DecodeWrite(word)
	return addr, data, true
}

func (b *scriptedBackend) Respond(token uint16) {
	b.responses = append(b.responses, token)
}

type scriptedGPIO struct {
	calls  int
	rdLow  []bool
	addrs  []uint16
}

func (g *scriptedGPIO) Sample() (bool, uint16) {
	i := g.calls
	g.calls++
	if i >= len(g.rdLow) {
		return false, 0xFFFF
	}
	return g.rdLow[i], g.addrs[i]
}

func newMenuROM(fill byte) []byte {
	rom := make([]byte, romimage.MenuROMSize)
	for i := range rom {
		rom[i] = fill
	}
	return rom
}

func TestNewSelectorRejectsWrongSize(t *testing.T) {
	if _, err := NewSelector(make([]byte, 100)); err == nil {
		t.Fatal("expected error for undersized ROM")
	}
}

func TestServesMenuROMReads(t *testing.T) {
	rom := newMenuROM(0x55)
	s, err := NewSelector(rom)
	if err != nil {
		t.Fatalf("NewSelector: %v", err)
	}

	data, drive := s.handleRead(0x4000)
	if !drive || data != 0x55 {
		t.Errorf("handleRead(0x4000) = (0x%02X, %v), want (0x55, true)", data, drive)
	}

	data, drive = s.handleRead(0x0000)
	if drive {
		t.Errorf("handleRead(0x0000) should tri-state outside the ROM window")
	}
}

func TestSentinelWriteCapturesSelection(t *testing.T) {
	rom := newMenuROM(0)
	s, _ := NewSelector(rom)

	s.handleWrite(s.sentinel, 7)
	if !s.captured || s.selected != 7 {
		t.Fatalf("captured=%v selected=%d, want true/7", s.captured, s.selected)
	}
}

func TestRunDetectsMSX2ResetPath(t *testing.T) {
	rom := newMenuROM(0)
	s, _ := NewSelector(rom)

	backend := &scriptedBackend{
		reads:  []uint16{0x4000, 0x0000},
		writes: []uint32{pio.EncodeWrite(s.sentinel, 3)},
	}
	gpio := &scriptedGPIO{}

	got := s.Run(pio.NewEngine(backend), gpio)
	if got != 3 {
		t.Fatalf("Run() = %d, want 3", got)
	}
}

func TestRunDetectsMSX1ResetPathWhenPIOIdle(t *testing.T) {
	rom := newMenuROM(0)
	s, _ := NewSelector(rom)
	s.captured = true
	s.selected = 9

	backend := &scriptedBackend{} // no pending reads or writes, ever
	gpio := &scriptedGPIO{rdLow: []bool{false, true}, addrs: []uint16{0x1234, 0x0000}}

	got := s.Run(pio.NewEngine(backend), gpio)
	if got != 9 {
		t.Fatalf("Run() = %d, want 9", got)
	}
}

func TestHandleReadIgnoresAddressZeroBeforeCapture(t *testing.T) {
	rom := newMenuROM(0)
	s, _ := NewSelector(rom)

	s.handleRead(0x0000)
	if s.reset {
		t.Fatal("address 0 should not trigger reset before a selection is captured")
	}

	s.captured = true
	s.handleRead(0x0000)
	if !s.reset {
		t.Fatal("address 0 should trigger reset once a selection has been captured")
	}
}
