// https://github.com/8bitwren/msxcart
//
// Copyright (c) The msxcart Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package pio

import "testing"

type fakeBackend struct {
	reads     []uint16
	writes    []uint32
	responses []uint16
}

func (f *fakeBackend) PollRead() (uint16, bool) {
	if len(f.reads) == 0 {
		return 0, false
	}
	addr := f.reads[0]
	f.reads = f.reads[1:]
	return addr, true
}

func (f *fakeBackend) PollWrite() (uint16, byte, bool) {
	if len(f.writes) == 0 {
		return 0, 0, false
	}
	w := f.writes[0]
	f.writes = f.writes[1:]
	addr, data := DecodeWrite(w)
	return addr, data, true
}

func (f *fakeBackend) Respond(token uint16) {
	f.responses = append(f.responses, token)
}

func TestEncodeResponse(t *testing.T) {
	if got := EncodeResponse(0x42, true); got != 0xFF42 {
		t.Errorf("EncodeResponse(0x42, true) = 0x%04X, want 0xFF42", got)
	}
	if got := EncodeResponse(0x42, false); got != 0x0042 {
		t.Errorf("EncodeResponse(0x42, false) = 0x%04X, want 0x0042", got)
	}
}

func TestDecodeEncodeWriteRoundTrip(t *testing.T) {
	word := EncodeWrite(0x6000, 0xAB)
	addr, data := DecodeWrite(word)

	if addr != 0x6000 || data != 0xAB {
		t.Errorf("DecodeWrite(EncodeWrite(...)) = (0x%04X, 0x%02X), want (0x6000, 0xAB)", addr, data)
	}
}

func TestEngineStepDrainsWritesAndRespondsToRead(t *testing.T) {
	fb := &fakeBackend{
		reads:  []uint16{0x4000},
		writes: []uint32{EncodeWrite(0x6000, 0x01), EncodeWrite(0x7000, 0x02)},
	}
	e := NewEngine(fb)

	var captured [][2]int
	handle := func(addr uint16) (byte, bool) {
		return byte(addr & 0xFF), true
	}
	sink := func(addr uint16, data byte) {
		captured = append(captured, [2]int{int(addr), int(data)})
	}

	served := e.Step(handle, sink)

	if !served {
		t.Fatal("Step() did not report a served read")
	}
	if len(captured) != 2 {
		t.Fatalf("captured %d writes, want 2", len(captured))
	}
	if len(fb.responses) != 1 || fb.responses[0] != EncodeResponse(0x00, true) {
		t.Errorf("responses = %v, want one response for addr 0x4000", fb.responses)
	}
}

func TestEngineStepNoReadPending(t *testing.T) {
	fb := &fakeBackend{}
	e := NewEngine(fb)

	if e.Step(func(uint16) (byte, bool) { return 0, true }, nil) {
		t.Error("Step() reported a served read with an empty read FIFO")
	}
}

func TestEngineStepPlainIgnoresWrites(t *testing.T) {
	fb := &fakeBackend{reads: []uint16{0x8000}}
	e := NewEngine(fb)

	served := e.StepPlain(func(addr uint16) (byte, bool) {
		return 0x99, addr == 0x8000
	})

	if !served {
		t.Fatal("StepPlain() did not serve the pending read")
	}
	if fb.responses[0] != EncodeResponse(0x99, true) {
		t.Errorf("responses[0] = 0x%04X, want drive=true 0x99", fb.responses[0])
	}
}
