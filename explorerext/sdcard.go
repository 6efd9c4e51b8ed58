// https://github.com/8bitwren/msxcart
//
// Copyright (c) The msxcart Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package explorerext implements Component K, the 2350 Explorer
// variant's menu-stage extensions: SD-card enumeration, the paging
// buffer exchanged with the menu ROM, search, and MP3/WAV audio preview.
// It is only ever driven from the menu loop (Component E) before a
// cartridge ROM is dispatched; nothing here runs once a mapper loop is
// entered, so no field is touched by core 1 and none needs to be atomic.
package explorerext

import (
	"io"
	"sort"
	"strings"
)

// SDCard is the assumed external SD/FAT filesystem collaborator
// (SPEC_FULL.md §3, mirroring spec.md §1's treatment of the filesystem
// as out of scope for this firmware).
type SDCard interface {
	ListDir(path string) ([]FileInfo, error)
	Open(path string) (io.ReadSeeker, error)
}

// FileInfo is the minimal directory-entry shape SDCard.ListDir returns.
type FileInfo struct {
	Name string
	Size uint32
}

// ROMEntry describes one selectable item in the Explorer's ROM list.
type ROMEntry struct {
	Name string
	Path string
	Size uint32
}

// romExtensions lists the cartridge image extensions the Explorer lists;
// everything else on the card (the MP3/WAV audio assets) is reached only
// by explicit path, never enumerated alongside ROMs.
var romExtensions = []string{".rom", ".mx1", ".mx2", ".dsk"}

func hasROMExtension(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range romExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// Enumerate lists dir's ROM images, sorted case-insensitively by name
// (SPEC_FULL.md §3 "SD enumeration").
func Enumerate(sd SDCard, dir string) ([]ROMEntry, error) {
	files, err := sd.ListDir(dir)
	if err != nil {
		return nil, err
	}

	entries := make([]ROMEntry, 0, len(files))
	for _, f := range files {
		if !hasROMExtension(f.Name) {
			continue
		}
		entries = append(entries, ROMEntry{
			Name: f.Name,
			Path: joinPath(dir, f.Name),
			Size: f.Size,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return strings.ToLower(entries[i].Name) < strings.ToLower(entries[j].Name)
	})

	return entries, nil
}

func joinPath(dir, name string) string {
	if dir == "" || strings.HasSuffix(dir, "/") {
		return dir + name
	}
	return dir + "/" + name
}
