// https://github.com/8bitwren/msxcart
//
// Copyright (c) The msxcart Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package romimage

import (
	"encoding/binary"
	"testing"
)

func buildRecord(name string, mapperByte byte, size, offset uint32) []byte {
	raw := make([]byte, RecordSize)
	copy(raw, name)
	for i := len(name); i < NameSize; i++ {
		raw[i] = ' '
	}
	raw[50] = mapperByte
	binary.LittleEndian.PutUint32(raw[51:55], size)
	binary.LittleEndian.PutUint32(raw[55:59], offset)
	return raw
}

func TestParseRecord(t *testing.T) {
	raw := buildRecord("Metal Gear", 3|SCCAudioFlag, 131072, 4096)

	r, err := ParseRecord(raw)
	if err != nil {
		t.Fatalf("ParseRecord: %v", err)
	}

	if r.Name != "Metal Gear" {
		t.Errorf("Name = %q, want %q", r.Name, "Metal Gear")
	}
	if r.Mapper != 3 {
		t.Errorf("Mapper = %d, want 3", r.Mapper)
	}
	if !r.SCCAudio {
		t.Error("SCCAudio = false, want true")
	}
	if r.SCCPlus {
		t.Error("SCCPlus = true, want false")
	}
	if r.Size != 131072 || r.Offset != 4096 {
		t.Errorf("Size/Offset = %d/%d, want 131072/4096", r.Size, r.Offset)
	}
}

func TestParseRecordInvalidMapper(t *testing.T) {
	raw := buildRecord("Bogus", 0, 0, 0)

	if _, err := ParseRecord(raw); err == nil {
		t.Fatal("expected error for mapper ID 0")
	}

	raw = buildRecord("Bogus", 12, 0, 0)
	if _, err := ParseRecord(raw); err == nil {
		t.Fatal("expected error for mapper ID 12")
	}
}

func TestParseTable(t *testing.T) {
	var blob []byte
	blob = append(blob, buildRecord("ROM A", 1, 32768, 0)...)
	blob = append(blob, buildRecord("ROM B", 5, 65536, 32768)...)
	blob = append(blob, make([]byte, RecordSize)...) // not yet terminator-filled below

	// overwrite the third record with the 0xFF terminator
	for i := range blob[2*RecordSize : 3*RecordSize] {
		blob[2*RecordSize+i] = 0xFF
	}

	records, err := ParseTable(blob, 0)
	if err != nil {
		t.Fatalf("ParseTable: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}
	if records[0].Name != "ROM A" || records[1].Name != "ROM B" {
		t.Errorf("unexpected record names: %+v", records)
	}
}

func TestParseTableMissingTerminator(t *testing.T) {
	blob := buildRecord("Only one", 1, 100, 0)

	if _, err := ParseTable(blob, 0); err == nil {
		t.Fatal("expected error for table missing a terminator")
	}
}

func TestSelectionSentinel(t *testing.T) {
	got := SelectionSentinel()
	want := uint16(0x8000 + 59*128 + 1)

	if got != want {
		t.Errorf("SelectionSentinel() = 0x%04X, want 0x%04X", got, want)
	}
}

func TestPayload(t *testing.T) {
	blob := make([]byte, 100)
	for i := 50; i < 70; i++ {
		blob[i] = byte(i)
	}

	r := Record{Offset: 50, Size: 20}

	p, err := Payload(blob, r)
	if err != nil {
		t.Fatalf("Payload: %v", err)
	}
	if len(p) != 20 || p[0] != 50 {
		t.Errorf("unexpected payload slice: %v", p)
	}

	r.Size = 1000
	if _, err := Payload(blob, r); err == nil {
		t.Fatal("expected out-of-bounds error")
	}
}
