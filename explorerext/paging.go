// https://github.com/8bitwren/msxcart
//
// Copyright (c) The msxcart Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package explorerext

import "strings"

const (
	// PageEntries is the number of catalog rows the menu ROM's list
	// view renders per screen.
	PageEntries = 8
	// entrySize is the per-row record width: a fixed-width name field
	// plus a small metadata tail, mirroring the fixed-width layout
	// romimage.Record uses for the on-flash catalog table.
	entrySize = 32
	nameField = 26

	// PageBufferSize is PageEntries*entrySize: the whole page in one
	// shared 256-byte window, the same size class as the Sunrise IDE
	// mapper's sector buffer.
	PageBufferSize = PageEntries * entrySize
)

// PageBuffer is the fixed-size paging window exchanged with the menu
// ROM, one page of the (possibly search-filtered) catalog at a time.
// It is written only from the menu-stage loop on core 0 and is never
// touched once a cartridge ROM has been dispatched, so unlike the
// buffers in ata and usbmsc it needs no atomic guard.
type PageBuffer [PageBufferSize]byte

// sizeClasses buckets a file's byte size into a single descriptive
// byte the menu ROM can render as a rounded "16K"/"32K"/... label
// without doing its own arithmetic.
var sizeClasses = []uint32{
	16 * 1024, 32 * 1024, 48 * 1024, 64 * 1024,
	128 * 1024, 256 * 1024, 512 * 1024, 1024 * 1024,
}

func classifySize(size uint32) uint8 {
	for i, max := range sizeClasses {
		if size <= max {
			return uint8(i)
		}
	}
	return uint8(len(sizeClasses) - 1)
}

// sccHintSubstrings lists the file-name substrings (matched
// case-insensitively) that mark an entry as a likely Konami SCC title.
// The hint is display metadata only; the loader never reads it.
var sccHintSubstrings = []string{"scc"}

func hasSCCHint(name string) bool {
	lower := strings.ToLower(name)
	for _, sub := range sccHintSubstrings {
		if strings.Contains(lower, sub) {
			return true
		}
	}
	return false
}

func padName(name string) [nameField]byte {
	var out [nameField]byte
	copy(out[:], name)
	return out
}

// BuildPage renders up to PageEntries catalog entries into a PageBuffer.
// Entries beyond PageEntries are silently ignored; callers are expected
// to have already paginated the list (see Paginate).
func BuildPage(entries []ROMEntry) *PageBuffer {
	var buf PageBuffer

	for i, e := range entries {
		if i >= PageEntries {
			break
		}
		off := i * entrySize

		name := padName(e.Name)
		copy(buf[off:off+nameField], name[:])

		buf[off+26] = classifySize(e.Size)
		buf[off+27] = 0 // mapper hint: resolved by the loader at dispatch time
		if hasSCCHint(e.Name) {
			buf[off+28] = 1
		}
		// buf[off+29 : off+32] is reserved and left zero.
	}

	return &buf
}

// Paginate slices entries down to the page'th screenful.
func Paginate(entries []ROMEntry, page int) []ROMEntry {
	start := page * PageEntries
	if start < 0 || start >= len(entries) {
		return nil
	}
	end := start + PageEntries
	if end > len(entries) {
		end = len(entries)
	}
	return entries[start:end]
}

// PageCount reports how many pages entries spans, at least 1.
func PageCount(entries []ROMEntry) int {
	if len(entries) == 0 {
		return 1
	}
	return (len(entries) + PageEntries - 1) / PageEntries
}
