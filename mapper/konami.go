// https://github.com/8bitwren/msxcart
//
// Copyright (c) The msxcart Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package mapper

// konami implements mapper 3 (Konami SCC) and mapper 7 (Konami, no SCC):
// 8 KiB banked, window 0x4000-0xBFFF, 4 banks. Mapper 7 hardwires
// register 0 to bank 0 (no write port decodes it). Mapper 3 additionally
// overlays the SCC/SCC+ register window onto reads and forwards every
// write to the embedded synth (spec.md §4.3 "SCC overlay").
type konami struct {
	b *banked

	scc      Synth
	sccPlus  bool
}

func newKonami(opt Options, scc bool) *konami {
	ports := konamiPlainPorts
	if scc {
		ports = konamiSCCPorts
	}

	k := &konami{b: newBanked(opt.ROM, opt.ROMSize, 0x4000, 8*1024, 4, ports)}

	if scc && opt.SCCAudio {
		k.scc = opt.Synth
		k.sccPlus = opt.SCCPlus
	}

	return k
}

func (k *konami) Read(addr uint16) (byte, bool) {
	if k.scc != nil && k.scc.Active() && k.sccActiveWindow(addr) {
		return k.scc.Read(addr), true
	}

	return k.b.Read(addr)
}

func (k *konami) sccActiveWindow(addr uint16) bool {
	base := k.scc.BaseAddress()
	if addr >= base+0x0800 && addr <= base+0x08FF {
		return true
	}
	if k.sccPlus && addr >= 0xBFFE && addr <= 0xBFFF {
		return true
	}
	return false
}

func (k *konami) Write(addr uint16, data byte) {
	k.b.Write(addr, data)

	if k.scc != nil {
		k.scc.Write(addr, data)
	}
}

func (k *konami) Banked() bool { return true }
