// https://github.com/8bitwren/msxcart
//
// Copyright (c) The msxcart Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package ata

// DeviceInfo carries the identification data surfaced through the
// IDENTIFY DEVICE command (spec.md §4.5.5), sourced from the mounted USB
// Mass Storage device's own INQUIRY response and capacity.
type DeviceInfo struct {
	Mounted      bool
	SerialNumber string // up to 20 ASCII chars
	FirmwareRev  string // up to 8 ASCII chars
	Model        string // up to 40 ASCII chars
	BlockCount   uint32 // total addressable 512-byte sectors
}

// BuildIdentify assembles the 512-byte, little-endian word IDENTIFY
// DEVICE response buffer.
//
// Each ATA string field is stored as a sequence of 16-bit words where
// every word holds two characters with the first in the high byte;
// because the buffer itself is little-endian, adjacent characters in a
// given word appear byte-swapped in the raw buffer. putString
// reproduces that swap.
func BuildIdentify(info DeviceInfo) [SectorSize]byte {
	var buf [SectorSize]byte

	putWord(&buf, 0, 0x0040) // word 0: fixed, non-removable ATA device

	cylinders, heads, sectors := chsGeometry(info.BlockCount)
	putWord(&buf, 1, cylinders)
	putWord(&buf, 3, heads)
	putWord(&buf, 6, sectors)

	putString(&buf, 10, 20, info.SerialNumber) // words 10-19: serial number
	putString(&buf, 23, 8, info.FirmwareRev)   // words 23-26: firmware revision
	putString(&buf, 27, 40, info.Model)        // words 27-46: model number

	putWord(&buf, 47, 0x0001)
	putWord(&buf, 49, 0x0200) // word 49: LBA supported
	putWord(&buf, 53, 0x0001) // word 53: words 54-58 (CHS geometry) valid

	// words 54-56: current CHS mirror
	putWord(&buf, 54, cylinders)
	putWord(&buf, 55, heads)
	putWord(&buf, 56, sectors)

	capacity := uint32(cylinders) * uint32(heads) * uint32(sectors)
	putWord(&buf, 57, uint16(capacity&0xFFFF)) // words 57-58: current capacity
	putWord(&buf, 58, uint16((capacity>>16)&0xFFFF))

	putWord(&buf, 60, uint16(info.BlockCount&0xFFFF)) // words 60-61: total LBA sectors
	putWord(&buf, 61, uint16((info.BlockCount>>16)&0xFFFF))

	return buf
}

func putWord(buf *[SectorSize]byte, word int, v uint16) {
	off := word * 2
	buf[off] = byte(v)
	buf[off+1] = byte(v >> 8)
}

// putString writes an ATA-order ASCII string into wordCount words
// starting at word, space-padding or truncating s to fit.
func putString(buf *[SectorSize]byte, word, wordCount int, s string) {
	padded := make([]byte, wordCount*2)
	for i := range padded {
		padded[i] = ' '
	}
	copy(padded, s)

	for i := 0; i < wordCount; i++ {
		off := (word + i) * 2
		// ATA byte-swap: character pair (padded[2i], padded[2i+1]) is
		// stored with the first character in the high byte of the word,
		// which in this little-endian buffer lands at off+1.
		buf[off] = padded[2*i+1]
		buf[off+1] = padded[2*i]
	}
}

// chsGeometry derives a plausible, Nextor-acceptable CHS geometry from a
// block count using the conventional 16 heads / 63 sectors-per-track
// factoring also used by real Compact Flash/IDE-to-LBA translators,
// clamped to the field's 16383-cylinder bound (spec.md §4.5.5).
func chsGeometry(blocks uint32) (cylinders, heads, sectorsPerTrack uint16) {
	const (
		h      = 16
		s      = 63
		maxCyl = 16383
	)

	if blocks == 0 {
		return 0, h, s
	}

	c := blocks / (h * s)
	if c > maxCyl {
		c = maxCyl
	}

	return uint16(c), h, s
}
