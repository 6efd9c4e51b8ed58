// https://github.com/8bitwren/msxcart
//
// Copyright (c) The msxcart Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package scc implements the Konami SCC / SCC+ wavetable synthesizer
// (spec.md Component I) and the I²S feed that drains it on core 1.
//
// spec.md §6.6 treats the synth as an assumed external library exposing
// init/reset/write/read/calc; no such library appears anywhere in the
// reference pack, so Chip is a from-scratch implementation of that
// surface rather than a wrapper around one (see DESIGN.md).
package scc

// NumChannels is the number of independent tone generators (spec.md §4.7,
// the classic Konami SCC chip).
const NumChannels = 5

// WaveformSize is the number of signed 8-bit samples per channel
// wavetable.
const WaveformSize = 32

const registerWindowSize = 0x100

// Register offsets relative to BaseAddress()+0x0800 (spec.md §190's SCC
// overlay window), matching the real SCC/SCC+ memory map.
const (
	regWaveformBase = 0x00 // 5 × 32 bytes, channels 0..4
	regFreqBase     = 0xA0 // 5 × 2 bytes, 12-bit frequency low/high
	regVolumeBase   = 0xAA // 5 × 1 byte, low nibble
	regEnable       = 0xAF
)

// Chip implements mapper.Synth. Fields are touched by core 0 (register
// writes) and read by core 1 (Calc, once per output sample); spec.md §5
// treats this as benign given how much more often Calc runs than a
// register write arrives, so no atomics guard these fields (matching the
// spec's explicitly stated alternative to an internally-disciplined
// library).
type Chip struct {
	clockHz    float64
	sampleRate float64
	quality    int

	enhanced bool
	active   bool

	baseAddress uint16

	waveform [NumChannels][WaveformSize]int8
	freq     [NumChannels]uint16
	volume   [NumChannels]uint8
	enable   uint8

	pos [NumChannels]uint32 // 16.16 fixed-point wavetable position

	deformation byte // SCC+ mode register (0xBFFE/0xBFFF), enhanced only
}

// NewChip constructs a Chip for a given master clock, output sample rate
// and interpolation quality (0 = nearest sample, >=1 = linear
// interpolation between wavetable samples), matching the parameters
// spec.md §4.7 passes to the assumed library's init call. The register
// window's base address is the Konami-SCC mapper's fixed page-2 base,
// 0x9000 (the "9000-0x97FF->r2" window from spec.md's mapper table that
// hosts the overlay).
func NewChip(clockHz, sampleRate float64, quality int) *Chip {
	c := &Chip{
		clockHz:     clockHz,
		sampleRate:  sampleRate,
		quality:     quality,
		baseAddress: 0x9000,
	}
	c.Reset(false)
	return c
}

// Reset reinitializes all channel state (spec.md §4.7's "standard or
// enhanced" type selection).
func (c *Chip) Reset(enhanced bool) {
	c.enhanced = enhanced
	c.active = true
	c.waveform = [NumChannels][WaveformSize]int8{}
	c.freq = [NumChannels]uint16{}
	c.volume = [NumChannels]uint8{}
	c.enable = 0
	c.pos = [NumChannels]uint32{}
	c.deformation = 0
}

// Active reports whether the SCC overlay window should intercept reads
// (spec.md §190). The chip is active for the whole lifetime of a mapper-3
// SCC-audio session; there is no separate enable latch in this
// implementation (a judgment call documented in DESIGN.md).
func (c *Chip) Active() bool {
	return c.active
}

// BaseAddress returns the bus address the SCC register window is
// anchored to.
func (c *Chip) BaseAddress() uint16 {
	return c.baseAddress
}

// Write decodes a bus write relative to the register window. Addresses
// outside the window are ignored: konami.go forwards every decoded
// mapper write here unconditionally (spec.md §190 item 1), not just ones
// inside the SCC window.
func (c *Chip) Write(addr uint16, data byte) {
	if addr == 0xBFFE || addr == 0xBFFF {
		if c.enhanced {
			c.deformation = data
		}
		return
	}

	rel := int(addr) - int(c.baseAddress) - 0x0800
	if rel < 0 || rel >= registerWindowSize {
		return
	}

	switch {
	case rel < regFreqBase:
		ch := rel / WaveformSize
		idx := rel % WaveformSize
		c.waveform[ch][idx] = int8(data)

	case rel < regVolumeBase:
		ch := (rel - regFreqBase) / 2
		if ch >= NumChannels {
			return
		}
		if (rel-regFreqBase)%2 == 0 {
			c.freq[ch] = (c.freq[ch] &^ 0x00FF) | uint16(data)
		} else {
			c.freq[ch] = (c.freq[ch] &^ 0x0F00) | (uint16(data&0x0F) << 8)
		}

	case rel < regEnable:
		ch := rel - regVolumeBase
		if ch < NumChannels {
			c.volume[ch] = data & 0x0F
		}

	case rel == regEnable:
		c.enable = data & 0x1F
	}
}

// Read services a CPU read inside the SCC window (spec.md §190 item 2):
// wavetable RAM and the control registers are all readable on real
// hardware.
func (c *Chip) Read(addr uint16) byte {
	if addr == 0xBFFE || addr == 0xBFFF {
		return c.deformation
	}

	rel := int(addr) - int(c.baseAddress) - 0x0800
	if rel < 0 || rel >= registerWindowSize {
		return 0xFF
	}

	switch {
	case rel < regFreqBase:
		ch := rel / WaveformSize
		idx := rel % WaveformSize
		return byte(c.waveform[ch][idx])

	case rel < regVolumeBase:
		ch := (rel - regFreqBase) / 2
		if ch >= NumChannels {
			return 0xFF
		}
		if (rel-regFreqBase)%2 == 0 {
			return byte(c.freq[ch])
		}
		return byte(c.freq[ch] >> 8)

	case rel < regEnable:
		ch := rel - regVolumeBase
		if ch < NumChannels {
			return c.volume[ch]
		}
		return 0xFF

	case rel == regEnable:
		return c.enable

	default:
		return 0xFF
	}
}

// Calc advances every enabled channel by one output sample period and
// returns the mixed mono sample (spec.md §4.7's per-frame synth.calc()
// call).
func (c *Chip) Calc() int16 {
	var sum int32

	for ch := 0; ch < NumChannels; ch++ {
		if c.enable&(1<<ch) == 0 || c.volume[ch] == 0 {
			continue
		}

		table := ch
		if !c.enhanced && ch == 4 {
			// Classic SCC: channels 3 and 4 share channel 3's wavetable;
			// only SCC+ gives channel 4 its own.
			table = 3
		}

		sum += int32(c.sample(table, c.pos[ch])) * int32(c.volume[ch])

		step := c.phaseStep(c.freq[ch])
		c.pos[ch] += step
	}

	// volume is 0..15, WaveformSize samples span a full 16.16 cycle;
	// scale the mixed sum into signed 16-bit headroom for 5 channels.
	out := (sum * 24) / NumChannels
	return clampInt16(out)
}

func (c *Chip) phaseStep(freqReg uint16) uint32 {
	period := float64(freqReg) + 1
	positionsPerSample := c.clockHz / (16.0 * period * c.sampleRate)
	return uint32(positionsPerSample * float64(WaveformSize) * 65536.0)
}

func (c *Chip) sample(ch int, pos uint32) int8 {
	idx := int((pos >> 16) % WaveformSize)

	if c.quality < 1 {
		return c.waveform[ch][idx]
	}

	next := (idx + 1) % WaveformSize
	frac := int32(pos&0xFFFF) >> 8 // 0..255

	a := int32(c.waveform[ch][idx])
	b := int32(c.waveform[ch][next])
	return int8(a + ((b-a)*frac)/256)
}

func clampInt16(v int32) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}
