// https://github.com/8bitwren/msxcart
//
// Copyright (c) The msxcart Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package scc

// FrameCount is the number of stereo frames per I²S buffer (spec.md
// §4.7: "three stereo 16-bit buffers of 256 frames each").
const FrameCount = 256

// NumBuffers is the size of the I²S buffer pool.
const NumBuffers = 3

// Frame is one stereo 16-bit PCM sample pair.
type Frame struct {
	Left, Right int16
}

// Buffer is one I²S transfer unit.
type Buffer [FrameCount]Frame

// Source produces one mono sample per call. *Chip satisfies this; the
// MP3 preview path in package explorerext also implements it against
// decoded PCM instead of synthesized waveforms, sharing this same feed
// loop for whichever single audio producer is active on a given boot.
type Source interface {
	Calc() int16
}

// Backend hands buffers to and takes them back from the I²S/DMA
// hardware. TakeBuffer blocks until a buffer is free for refilling.
type Backend interface {
	TakeBuffer() *Buffer
	GiveBuffer(buf *Buffer)
}

// boost applies spec.md §4.7's "boost by 2 bits with saturation" gain
// stage between the synth's native output and the DAC.
func boost(sample int16) int16 {
	v := int32(sample) << 2
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}

// FillBuffer renders one buffer's worth of frames from src, writing the
// boosted mono sample to both channels (spec.md §4.7).
func FillBuffer(buf *Buffer, src Source) {
	for i := range buf {
		s := boost(src.Calc())
		buf[i] = Frame{Left: s, Right: s}
	}
}

// RunOnce services one buffer exchange. It returns false if the backend
// has no buffer to offer (used only by tests; the real backend always
// blocks until one is available).
func RunOnce(backend Backend, src Source) bool {
	buf := backend.TakeBuffer()
	if buf == nil {
		return false
	}

	FillBuffer(buf, src)
	backend.GiveBuffer(buf)

	return true
}

// Run is core 1's entry point once mapper 3's SCC-audio flag selects this
// bridge (spec.md §4.7): it never returns.
func Run(backend Backend, src Source) {
	for {
		RunOnce(backend, src)
	}
}
