// https://github.com/8bitwren/msxcart
//
// Copyright (c) The msxcart Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package pio implements the PIO bus engine (spec.md Component B): the
// read-responder/write-captor state machine pair that shoulders the Z80
// bus's wait-state timing, and the thin CPU-side loop that drains writes
// and answers read cycles.
//
// The orchestration logic (Engine, response token encoding, write
// decoding) has no build tag and is unit-testable against a fake
// Backend; the hardware binding that programs the actual RP-series PIO
// coprocessor lives in rp.go under a tamago build tag.
package pio

// Backend is the non-blocking, CPU-facing side of a PIO read-responder /
// write-captor pair. PollRead and PollWrite never block; Engine.Step
// calls them so that writes are drained between and during address
// polls, per spec.md §4.1's "CPU-side contract".
type Backend interface {
	// PollRead returns the next captured bus address, if any.
	PollRead() (addr uint16, ok bool)
	// PollWrite returns the next captured (address, data) write, if any.
	PollWrite() (addr uint16, data byte, ok bool)
	// Respond pushes a response token for the oldest pending read.
	Respond(token uint16)
}

// EncodeResponse builds the 16-bit response token: low byte is the data
// byte, high byte is the pin-direction mask (spec.md §4.1). drive=false
// leaves the data bus tri-stated, used for addresses outside the
// cartridge's window.
func EncodeResponse(data byte, drive bool) uint16 {
	if !drive {
		return uint16(data)
	}
	return 0xFF00 | uint16(data)
}

// DecodeWrite splits a captured write word into address and data bytes.
// Word layout: A0..A15 in bits [15:0], D0..D7 in bits [23:16], matching
// the write captor's single 32-bit FIFO push (spec.md §4.1).
func DecodeWrite(word uint32) (addr uint16, data byte) {
	return uint16(word), byte(word >> 16)
}

// EncodeWrite is the inverse of DecodeWrite, used by fake backends in
// tests to synthesize captured bus writes.
func EncodeWrite(addr uint16, data byte) uint32 {
	return uint32(addr) | uint32(data)<<16
}

// Handler computes the response for a captured read address. drive is
// false for addresses outside the responder's window, in which case data
// is ignored and the bus is left tri-stated.
type Handler func(addr uint16) (data byte, drive bool)

// WriteSink receives every captured write, decoded to address/data.
type WriteSink func(addr uint16, data byte)

// Engine drives a Backend's read-responder/write-captor pair.
type Engine struct {
	backend Backend
}

// NewEngine wraps a Backend for the CPU-side loop.
func NewEngine(b Backend) *Engine {
	return &Engine{backend: b}
}

// DrainWrites forwards every currently pending captured write to sink,
// returning the number drained. Template A (banked mappers) calls this
// both before and after polling for a read address, since writes can
// arrive while the core is blocked waiting on one (spec.md §4.1, §4.3).
func (e *Engine) DrainWrites(sink WriteSink) int {
	n := 0
	for {
		addr, data, ok := e.backend.PollWrite()
		if !ok {
			return n
		}
		if sink != nil {
			sink(addr, data)
		}
		n++
	}
}

// ServeOne polls for one captured read address and, if present, computes
// and pushes its response via handle. It reports whether a read was
// serviced. Callers that need Template A's full shape (drain, poll,
// drain, respond) should call DrainWrites around ServeOne themselves, or
// use Step.
func (e *Engine) ServeOne(handle Handler) bool {
	addr, ok := e.backend.PollRead()
	if !ok {
		return false
	}

	data, drive := handle(addr)
	e.backend.Respond(EncodeResponse(data, drive))

	return true
}

// Step runs one iteration of Template A: drain writes, poll for a read
// address, drain writes again (writes can arrive while the first drain
// raced the read FIFO), then respond if a read was found.
func (e *Engine) Step(handle Handler, sink WriteSink) (servedRead bool) {
	e.DrainWrites(sink)
	addr, ok := e.backend.PollRead()
	e.DrainWrites(sink)

	if !ok {
		return false
	}

	data, drive := handle(addr)
	e.backend.Respond(EncodeResponse(data, drive))

	return true
}

// StepPlain runs Template B: no write draining, used by plain/linear
// mappers that have no bank registers to maintain (spec.md §4.3).
func (e *Engine) StepPlain(handle Handler) (servedRead bool) {
	return e.ServeOne(handle)
}
