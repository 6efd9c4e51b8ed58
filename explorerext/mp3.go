// https://github.com/8bitwren/msxcart
//
// Copyright (c) The msxcart Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package explorerext

import (
	"encoding/binary"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"

	"github.com/8bitwren/msxcart/scc"
)

// pcmSource replays a preloaded mono PCM clip through the same
// scc.Backend ring-buffer pool the SCC synth uses for cartridge audio
// (scc.Source, scc.Backend); the two are mutually exclusive per boot,
// since the Explorer's preview player and a dispatched SCC/SCC+ title
// never run at the same time.
type pcmSource struct {
	samples []int16
	pos     int
}

// Calc returns the next preview sample, then silence once the clip has
// played out; it does not loop.
func (s *pcmSource) Calc() int16 {
	if s.pos >= len(s.samples) {
		return 0
	}
	v := s.samples[s.pos]
	s.pos++
	return v
}

// Done reports whether the clip has finished playing.
func (s *pcmSource) Done() bool {
	return s.pos >= len(s.samples)
}

// Rewind restarts playback from the first sample.
func (s *pcmSource) Rewind() {
	s.pos = 0
}

// DecodePreview decodes an MP3 clip (a title's short audio preview) into
// a scc.Source. The decoder's interleaved 16-bit stereo PCM output is
// collected into a go-audio/audio.IntBuffer, the same frame container
// used for the WAV chime path below, before being folded down to mono.
func DecodePreview(r io.Reader) (scc.Source, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, err
	}

	pcm, err := io.ReadAll(dec)
	if err != nil {
		return nil, err
	}

	frames := len(pcm) / 4 // 2 channels * 2 bytes/sample
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 2,
			SampleRate:  dec.SampleRate(),
		},
		Data:           make([]int, frames*2),
		SourceBitDepth: 16,
	}
	for i := 0; i < frames; i++ {
		buf.Data[2*i] = int(int16(binary.LittleEndian.Uint16(pcm[4*i:])))
		buf.Data[2*i+1] = int(int16(binary.LittleEndian.Uint16(pcm[4*i+2:])))
	}

	return &pcmSource{samples: mixDown(buf)}, nil
}

// DecodeChime decodes a WAV-encoded UI sound effect into a scc.Source,
// using go-audio/wav's buffered PCM reader.
func DecodeChime(r io.ReadSeeker) (scc.Source, error) {
	dec := wav.NewDecoder(r)

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, err
	}

	return &pcmSource{samples: mixDown(buf)}, nil
}

// mixDown folds an interleaved audio.IntBuffer down to mono int16,
// averaging channel pairs when the source is stereo.
func mixDown(buf *audio.IntBuffer) []int16 {
	channels := 1
	if buf.Format != nil && buf.Format.NumChannels > 0 {
		channels = buf.Format.NumChannels
	}
	if channels == 1 {
		out := make([]int16, len(buf.Data))
		for i, v := range buf.Data {
			out[i] = int16(v)
		}
		return out
	}

	frames := len(buf.Data) / channels
	out := make([]int16, frames)
	for i := 0; i < frames; i++ {
		var sum int32
		for c := 0; c < channels; c++ {
			sum += int32(buf.Data[i*channels+c])
		}
		out[i] = int16(sum / int32(channels))
	}
	return out
}
