// https://github.com/8bitwren/msxcart
//
// Copyright (c) The msxcart Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package usbmsc

import (
	"errors"
	"testing"

	"github.com/8bitwren/msxcart/ata"
)

type fakeHost struct {
	inquiryResp  Inquiry
	inquiryErr   error
	readErr      error
	writeErr     error
	lastReadLBA  uint32
	lastWriteLBA uint32
	lastWritten  []byte
}

func (f *fakeHost) Poll() {}

func (f *fakeHost) Inquiry(devAddr, lun int, cb func(resp Inquiry, err error)) {
	cb(f.inquiryResp, f.inquiryErr)
}

func (f *fakeHost) Read10(devAddr, lun int, buf []byte, lba uint32, count uint16, cb func(err error)) {
	f.lastReadLBA = lba
	if f.readErr == nil {
		for i := range buf {
			buf[i] = byte(i)
		}
	}
	cb(f.readErr)
}

func (f *fakeHost) Write10(devAddr, lun int, buf []byte, lba uint32, count uint16, cb func(err error)) {
	f.lastWriteLBA = lba
	f.lastWritten = append([]byte(nil), buf...)
	cb(f.writeErr)
}

func TestOnMountPopulatesDeviceInfoAndCompletesIdentify(t *testing.T) {
	a := ata.New()
	host := &fakeHost{inquiryResp: Inquiry{Vendor: "ACME", Product: "DISK", Revision: "1.0", BlockCount: 0x1000, BlockSize: 512}}
	b := New(host, a)

	a.UsbIdentifyPending.Store(true)
	b.OnMount(1)

	if !b.mounted.Load() {
		t.Fatal("expected mounted after OnMount")
	}
	if a.UsbIdentifyPending.Load() {
		t.Fatal("expected identify pending cleared")
	}
	if a.StateValue() != ata.ReadData {
		t.Fatalf("state = %v, want ReadData", a.StateValue())
	}
	if a.Status()&ata.StatusDRQ == 0 {
		t.Fatal("expected DRQ set after identify completion")
	}
}

func TestOnUnmountClearsMounted(t *testing.T) {
	a := ata.New()
	host := &fakeHost{inquiryResp: Inquiry{BlockCount: 10, BlockSize: 512}}
	b := New(host, a)

	b.OnMount(2)
	if !b.mounted.Load() {
		t.Fatal("expected mounted")
	}

	b.OnUnmount(2)
	if b.mounted.Load() {
		t.Fatal("expected unmounted")
	}
}

func TestServiceReadSuccess(t *testing.T) {
	a := ata.New()
	host := &fakeHost{inquiryResp: Inquiry{BlockCount: 100, BlockSize: 512}}
	b := New(host, a)
	b.OnMount(1)

	a.UsbReadLBA.Store(5)
	a.UsbReadRequested.Store(true)

	b.serviceRead()

	if host.lastReadLBA != 5 {
		t.Fatalf("lastReadLBA = %d, want 5", host.lastReadLBA)
	}
	if !a.UsbReadReady.Load() {
		t.Fatal("expected UsbReadReady set")
	}
	if a.StateValue() != ata.ReadData {
		t.Fatalf("state = %v, want ReadData", a.StateValue())
	}
	sb := a.SectorBuffer()
	if sb[0] != 0 || sb[1] != 1 {
		t.Fatalf("sector buffer not populated from read: %v", sb[:4])
	}
}

func TestServiceReadFailureAborts(t *testing.T) {
	a := ata.New()
	host := &fakeHost{inquiryResp: Inquiry{BlockCount: 100, BlockSize: 512}, readErr: errors.New("stall")}
	b := New(host, a)
	b.OnMount(1)

	a.UsbReadLBA.Store(1)
	a.UsbReadRequested.Store(true)
	b.serviceRead()

	if !a.UsbReadFailed.Load() {
		t.Fatal("expected UsbReadFailed set")
	}
	if a.Status()&ata.StatusERR == 0 {
		t.Fatal("expected ERR status bit")
	}
}

func TestServiceReadLBAPastCapacityAborts(t *testing.T) {
	a := ata.New()
	host := &fakeHost{inquiryResp: Inquiry{BlockCount: 4, BlockSize: 512}}
	b := New(host, a)
	b.OnMount(1)

	a.UsbReadLBA.Store(99)
	a.UsbReadRequested.Store(true)
	b.serviceRead()

	if !a.UsbReadFailed.Load() {
		t.Fatal("expected UsbReadFailed for out-of-range LBA")
	}
}

func TestServiceWriteCompletesToIdleWhenNoSectorsRemain(t *testing.T) {
	a := ata.New()
	host := &fakeHost{inquiryResp: Inquiry{BlockCount: 100, BlockSize: 512}}
	b := New(host, a)
	b.OnMount(1)

	a.SetLBA(7)
	sb := a.SectorBuffer()
	sb[0] = 0xAA

	a.UsbWriteLBA.Store(7)
	a.UsbWriteRequested.Store(true)
	b.serviceWrite()

	if host.lastWriteLBA != 7 {
		t.Fatalf("lastWriteLBA = %d, want 7", host.lastWriteLBA)
	}
	if host.lastWritten[0] != 0xAA {
		t.Fatalf("written buffer[0] = 0x%02X, want 0xAA", host.lastWritten[0])
	}
	if !a.UsbWriteReady.Load() {
		t.Fatal("expected UsbWriteReady set")
	}
	if a.StateValue() != ata.Idle {
		t.Fatalf("state = %v, want Idle with no sectors remaining", a.StateValue())
	}
}
