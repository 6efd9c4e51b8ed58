// https://github.com/8bitwren/msxcart
//
// Copyright (c) The msxcart Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package mapper

// sunrise implements mapper 10 (Sunrise IDE Nextor): window
// 0x4000-0x7FFF, 16 KiB banks selected by the control register's
// 3-bit segment field, with an ATA task-file overlay gated by the
// control register's IDE-enable bit (spec.md §4.5).
type sunrise struct {
	rom     ROM
	romSize int
	ata     ATAController
}

func newSunrise(rom ROM, romSize int, a ATAController) *sunrise {
	return &sunrise{rom: rom, romSize: romSize, ata: a}
}

const (
	sunriseWindowBase = 0x4000
	sunriseWindowEnd  = 0x7FFF
	sunriseBankSize   = 16 * 1024
	sunriseControl    = 0x4104
)

func (s *sunrise) Read(addr uint16) (byte, bool) {
	if addr < sunriseWindowBase || addr > sunriseWindowEnd {
		return 0xFF, false
	}

	if addr != sunriseControl {
		if data, handled := s.ata.ReadByte(addr); handled {
			return data, true
		}
	}

	offset := int(s.ata.Segment())*sunriseBankSize + int(addr-sunriseWindowBase)
	return romByteOrOpenBus(s.rom, s.romSize, offset), true
}

func (s *sunrise) Write(addr uint16, data byte) {
	if addr < sunriseWindowBase || addr > sunriseWindowEnd {
		return
	}

	if addr == sunriseControl {
		s.ata.WriteControl(data)
		return
	}

	s.ata.WriteByte(addr, data)
}

func (s *sunrise) Banked() bool { return true }
