// https://github.com/8bitwren/msxcart
//
// Copyright (c) The msxcart Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package romimage parses the flash-resident ROM catalog produced by the
// PC-side packaging tool (out of scope, see spec.md §1): a menu ROM
// (optional), a fixed-size record table describing each cartridge image,
// and the concatenated payloads themselves.
package romimage

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	// RecordSize is the on-flash size in bytes of a single catalog record.
	RecordSize = 59

	// NameSize is the width of the space-padded ASCII display name field.
	NameSize = 50

	// MenuROMSize is the mandatory size of the menu ROM in the multi-ROM
	// variant (spec.md §3.1 invariant).
	MenuROMSize = 32 * 1024

	// MaxRecords bounds the record table (spec.md §3.1: 128 records).
	MaxRecords = 128

	// SCCAudioFlag marks the SCC-audio-enabled bit in the mapper byte.
	SCCAudioFlag = 1 << 7
	// SCCPlusFlag marks the SCC+ (enhanced) variant bit, 2350-only.
	SCCPlusFlag = 1 << 6
	// MapperMask isolates the base mapper ID (1..11) from the flag bits.
	MapperMask = 0x3F
)

// Record describes one cartridge image within the catalog.
type Record struct {
	Name     string
	Mapper   uint8 // base mapper ID, 1..11, flags already masked off
	SCCAudio bool
	SCCPlus  bool
	Size     uint32
	Offset   uint32
}

// terminator is an all-0xFF record marking the end of the table.
func isTerminator(raw []byte) bool {
	for _, b := range raw {
		if b != 0xFF {
			return false
		}
	}
	return true
}

// ParseRecord decodes a single 59-byte catalog record.
func ParseRecord(raw []byte) (Record, error) {
	if len(raw) != RecordSize {
		return Record{}, fmt.Errorf("romimage: record must be %d bytes, got %d", RecordSize, len(raw))
	}

	mapperByte := raw[50]

	r := Record{
		Name:     trimName(raw[:NameSize]),
		Mapper:   mapperByte & MapperMask,
		SCCAudio: mapperByte&SCCAudioFlag != 0,
		SCCPlus:  mapperByte&SCCPlusFlag != 0,
		Size:     binary.LittleEndian.Uint32(raw[51:55]),
		Offset:   binary.LittleEndian.Uint32(raw[55:59]),
	}

	if r.Mapper < 1 || r.Mapper > 11 {
		return Record{}, fmt.Errorf("romimage: unsupported mapper ID %d", r.Mapper)
	}

	return r, nil
}

func trimName(raw []byte) string {
	end := len(raw)
	for end > 0 && raw[end-1] == ' ' {
		end--
	}
	return string(raw[:end])
}

// ErrNoMenu indicates the blob is the single-ROM variant (no menu ROM, no
// record table): the blob begins directly with one record followed by its
// payload.
var ErrNoMenu = errors.New("romimage: single-ROM variant, no record table")

// ParseTable walks a record table starting at off within blob, stopping at
// the terminator record or MaxRecords, whichever comes first.
func ParseTable(blob []byte, off int) ([]Record, error) {
	var records []Record

	for i := 0; i < MaxRecords; i++ {
		start := off + i*RecordSize
		end := start + RecordSize

		if end > len(blob) {
			return nil, fmt.Errorf("romimage: record table truncated at index %d", i)
		}

		raw := blob[start:end]
		if isTerminator(raw) {
			return records, nil
		}

		rec, err := ParseRecord(raw)
		if err != nil {
			return nil, fmt.Errorf("romimage: record %d: %w", i, err)
		}

		records = append(records, rec)
	}

	return nil, fmt.Errorf("romimage: record table missing terminator within %d entries", MaxRecords)
}

// SelectionSentinel returns the bus address the menu ROM writes the
// selected catalog index to, derived from the record table layout
// (spec.md §3.1, §6.3): 0x8000 + 59*128 + 1.
func SelectionSentinel() uint16 {
	return 0x8000 + uint16(RecordSize*MaxRecords) + 1
}

// Payload returns the slice of blob holding a record's ROM image.
func Payload(blob []byte, r Record) ([]byte, error) {
	start := int(r.Offset)
	end := start + int(r.Size)

	if start < 0 || end > len(blob) || end < start {
		return nil, fmt.Errorf("romimage: payload range [%d:%d] out of bounds (blob size %d)", start, end, len(blob))
	}

	return blob[start:end], nil
}

// HasMenu reports whether blob begins with a 32 KiB menu ROM followed by a
// record table (the multi-ROM variant) as opposed to a single bare record
// plus payload.
func HasMenu(blob []byte) bool {
	if len(blob) < MenuROMSize+RecordSize {
		return false
	}

	// The first record of a multi-ROM table lives right after the menu
	// ROM; a single-ROM blob instead has its one record at offset 0,
	// whose mapper byte would almost certainly not parse as a valid
	// catalog entry when reinterpreted at the post-menu offset. Callers
	// that know their build variant should prefer passing the offset
	// explicitly instead of relying on this heuristic.
	_, err := ParseRecord(blob[MenuROMSize : MenuROMSize+RecordSize])
	return err == nil
}
