// https://github.com/8bitwren/msxcart
//
// Copyright (c) The msxcart Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package scc

import "testing"

func TestActiveAfterReset(t *testing.T) {
	c := NewChip(3579545, 44100, 1)
	if !c.Active() {
		t.Fatal("expected Active() true after construction")
	}
	if c.BaseAddress() != 0x9000 {
		t.Fatalf("BaseAddress() = 0x%04X, want 0x9000", c.BaseAddress())
	}
}

func TestWaveformWriteReadRoundTrip(t *testing.T) {
	c := NewChip(3579545, 44100, 0)

	c.Write(0x9800, 0x7F) // channel 0, sample 0
	c.Write(0x9801, 0x80) // channel 0, sample 1

	if got := c.Read(0x9800); got != 0x7F {
		t.Errorf("Read(0x9800) = 0x%02X, want 0x7F", got)
	}
	if got := int8(c.Read(0x9801)); got != -128 {
		t.Errorf("Read(0x9801) as int8 = %d, want -128", got)
	}
}

func TestFrequencyAndVolumeRegisters(t *testing.T) {
	c := NewChip(3579545, 44100, 0)

	c.Write(0x98A0, 0x34) // channel 0 freq low
	c.Write(0x98A1, 0x02) // channel 0 freq high (nibble)

	if c.freq[0] != 0x0234 {
		t.Fatalf("freq[0] = 0x%04X, want 0x0234", c.freq[0])
	}

	c.Write(0x98AA, 0x0F) // channel 0 volume
	if c.volume[0] != 0x0F {
		t.Fatalf("volume[0] = %d, want 15", c.volume[0])
	}

	c.Write(0x98AF, 0x01) // enable channel 0 only
	if c.enable != 0x01 {
		t.Fatalf("enable = 0x%02X, want 0x01", c.enable)
	}
}

func TestCalcProducesSilenceWhenNoChannelsEnabled(t *testing.T) {
	c := NewChip(3579545, 44100, 0)
	for i := 0; i < 100; i++ {
		if s := c.Calc(); s != 0 {
			t.Fatalf("Calc() = %d on iteration %d, want 0 with no channels enabled", s, i)
		}
	}
}

func TestCalcProducesNonZeroWithEnabledChannel(t *testing.T) {
	c := NewChip(3579545, 44100, 0)

	for i := 0; i < WaveformSize; i++ {
		c.Write(0x9800+uint16(i), byte(64))
	}
	c.Write(0x98AA, 0x0F) // volume
	c.Write(0x98A0, 0x10) // a short period
	c.Write(0x98AF, 0x01) // enable channel 0

	found := false
	for i := 0; i < 100; i++ {
		if c.Calc() != 0 {
			found = true
			break
		}
	}
	if !found {
		t.Fatal("expected a non-zero sample from an enabled channel with non-zero wavetable")
	}
}

func TestWriteIgnoresAddressOutsideWindow(t *testing.T) {
	c := NewChip(3579545, 44100, 0)
	c.Write(0x4000, 0x99) // ordinary bank-register write, forwarded unconditionally
	if c.enable != 0 {
		t.Fatalf("out-of-window write mutated state: enable = 0x%02X", c.enable)
	}
}

func TestClassicSCCSharesChannelThreeWavetable(t *testing.T) {
	c := NewChip(3579545, 44100, 0)
	c.Reset(false) // classic

	for i := 0; i < WaveformSize; i++ {
		c.Write(0x9860+uint16(i), 50) // channel 3's table
	}
	c.Write(0x98AE, 0x0F) // channel 4 volume
	c.Write(0x98A8, 0x10) // channel 4 freq
	c.Write(0x98AF, 0x10) // enable channel 4 only

	found := false
	for i := 0; i < 100; i++ {
		if c.Calc() != 0 {
			found = true
			break
		}
	}
	if !found {
		t.Fatal("expected channel 4 to mirror channel 3's wavetable in classic mode")
	}
}
