// https://github.com/8bitwren/msxcart
//
// Copyright (c) The msxcart Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package scc

import "testing"

type constSource struct{ v int16 }

func (s constSource) Calc() int16 { return s.v }

func TestBoostSaturates(t *testing.T) {
	cases := []struct {
		in, want int16
	}{
		{0, 0},
		{1000, 4000},
		{10000, 32767},
		{-10000, -32768},
	}
	for _, c := range cases {
		if got := boost(c.in); got != c.want {
			t.Errorf("boost(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestFillBufferAppliesBoostToBothChannels(t *testing.T) {
	var buf Buffer
	FillBuffer(&buf, constSource{v: 100})

	want := boost(100)
	for i, f := range buf {
		if f.Left != want || f.Right != want {
			t.Fatalf("frame %d = %+v, want both channels = %d", i, f, want)
		}
	}
}

type fakeBackend struct {
	bufs   []*Buffer
	i      int
	handed []*Buffer
}

func (f *fakeBackend) TakeBuffer() *Buffer {
	if f.i >= len(f.bufs) {
		return nil
	}
	b := f.bufs[f.i]
	f.i++
	return b
}

func (f *fakeBackend) GiveBuffer(buf *Buffer) {
	f.handed = append(f.handed, buf)
}

func TestRunOnceFillsAndReturnsBuffer(t *testing.T) {
	backend := &fakeBackend{bufs: []*Buffer{new(Buffer)}}
	ok := RunOnce(backend, constSource{v: 50})

	if !ok {
		t.Fatal("expected RunOnce to succeed")
	}
	if len(backend.handed) != 1 {
		t.Fatalf("GiveBuffer called %d times, want 1", len(backend.handed))
	}
	if backend.handed[0][0].Left != boost(50) {
		t.Errorf("filled buffer not boosted correctly")
	}
}

func TestRunOnceReturnsFalseWhenNoBufferAvailable(t *testing.T) {
	backend := &fakeBackend{}
	if RunOnce(backend, constSource{}) {
		t.Fatal("expected RunOnce to report false with no buffer available")
	}
}
