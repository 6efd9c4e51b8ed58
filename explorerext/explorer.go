// https://github.com/8bitwren/msxcart
//
// Copyright (c) The msxcart Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package explorerext

import (
	"errors"

	"github.com/8bitwren/msxcart/scc"
)

var errNoSuchEntry = errors.New("explorerext: no such catalog row")

// Explorer ties SD-card enumeration, search filtering, and the paging
// buffer together into the single stateful object the menu loop drives.
// It runs only on core 0, only during the menu stage (spec.md Component
// E); once a cartridge ROM is dispatched (Component J), nothing in this
// package is reachable again until the next reset.
type Explorer struct {
	sd  SDCard
	dir string

	all      []ROMEntry
	filtered []ROMEntry
	page     int

	buf   PageBuffer
	ready bool

	audio scc.Backend
}

// NewExplorer enumerates dir on sd and builds the first page.
func NewExplorer(sd SDCard, dir string, audio scc.Backend) (*Explorer, error) {
	entries, err := Enumerate(sd, dir)
	if err != nil {
		return nil, err
	}

	e := &Explorer{sd: sd, dir: dir, all: entries, filtered: entries, audio: audio}
	e.rebuild()
	return e, nil
}

// RequestPage re-renders the buffer for the given page of the current
// (possibly filtered) list, in response to a sentinel write carrying a
// page index.
func (e *Explorer) RequestPage(page int) {
	if page < 0 {
		page = 0
	}
	e.page = page
	e.rebuild()
}

// Search applies a (possibly empty) substring query to the full
// catalog, resets to the first page, and re-renders the buffer.
func (e *Explorer) Search(query string) {
	e.filtered = Filter(e.all, query)
	e.page = 0
	e.rebuild()
}

func (e *Explorer) rebuild() {
	page := Paginate(e.filtered, e.page)
	e.buf = *BuildPage(page)
	e.ready = true
}

// Ready reports whether a freshly rendered page is waiting to be read.
func (e *Explorer) Ready() bool {
	return e.ready
}

// ConsumeReady clears the ready flag once the menu ROM has read the
// buffer.
func (e *Explorer) ConsumeReady() {
	e.ready = false
}

// Buffer returns the current page's paging window.
func (e *Explorer) Buffer() *PageBuffer {
	return &e.buf
}

// PageCount reports how many pages the current (filtered) list spans.
func (e *Explorer) PageCount() int {
	return PageCount(e.filtered)
}

// Entry resolves a row index on the current page to its catalog entry.
func (e *Explorer) Entry(row int) (ROMEntry, bool) {
	page := Paginate(e.filtered, e.page)
	if row < 0 || row >= len(page) {
		return ROMEntry{}, false
	}
	return page[row], true
}

// Preview opens and decodes row's audio preview clip, if the title
// carries one at <rom-path-without-extension>.mp3.
func (e *Explorer) Preview(row int) (scc.Source, error) {
	entry, ok := e.Entry(row)
	if !ok {
		return nil, errNoSuchEntry
	}

	f, err := e.sd.Open(previewPath(entry.Path))
	if err != nil {
		return nil, err
	}

	return DecodePreview(f)
}

// PlayPreview decodes row's preview clip and starts it playing through
// the shared I2S backend. SCC synth audio and Explorer preview audio
// are mutually exclusive per boot, so the two freely share one backend.
func (e *Explorer) PlayPreview(row int) error {
	src, err := e.Preview(row)
	if err != nil {
		return err
	}
	if e.audio != nil {
		go scc.Run(e.audio, src)
	}
	return nil
}

func previewPath(romPath string) string {
	for i := len(romPath) - 1; i >= 0; i-- {
		if romPath[i] == '.' {
			return romPath[:i] + ".mp3"
		}
		if romPath[i] == '/' {
			break
		}
	}
	return romPath + ".mp3"
}
