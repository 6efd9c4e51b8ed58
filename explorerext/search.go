// https://github.com/8bitwren/msxcart
//
// Copyright (c) The msxcart Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package explorerext

import (
	"bytes"
	"strings"
)

// maxQueryLen bounds the sentinel-write search query the menu ROM can
// send: 24 bytes, matching the ROM's single-line input field.
const maxQueryLen = 24

// ParseQuery extracts an ASCII search string from a raw sentinel-write
// payload. The payload is NUL-terminated when shorter than
// maxQueryLen; a full maxQueryLen buffer with no NUL is taken verbatim.
func ParseQuery(raw []byte) string {
	if len(raw) > maxQueryLen {
		raw = raw[:maxQueryLen]
	}
	if i := bytes.IndexByte(raw, 0); i >= 0 {
		raw = raw[:i]
	}
	return string(raw)
}

// Filter returns the entries whose name contains query, case
// insensitively. An empty query clears the filter and returns entries
// unchanged.
func Filter(entries []ROMEntry, query string) []ROMEntry {
	if query == "" {
		return entries
	}

	q := strings.ToLower(query)
	out := make([]ROMEntry, 0, len(entries))
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Name), q) {
			out = append(out, e)
		}
	}
	return out
}
