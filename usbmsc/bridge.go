// https://github.com/8bitwren/msxcart
//
// Copyright (c) The msxcart Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package usbmsc implements the USB Mass Storage bridge (spec.md
// Component H): the core-1 loop that turns an ata.Controller's
// "please read/write LBA N" requests into SCSI READ(10)/WRITE(10)
// commands against a USB Mass Storage device, and feeds IDENTIFY DEVICE
// and mount/unmount state back across the core boundary through the
// same atomic fields.
package usbmsc

import (
	"sync/atomic"

	"github.com/8bitwren/msxcart/ata"
)

// Inquiry holds the response to a SCSI INQUIRY plus the capacity figures
// the host stack folds into the same completion (spec.md §6.4).
type Inquiry struct {
	Vendor, Product, Revision string
	BlockCount                uint32
	BlockSize                 uint16
}

// Host is the assumed external USB host stack (spec.md §6.4): a Mass
// Storage class driver with host-mode enumeration already running.
type Host interface {
	Poll()
	Inquiry(devAddr, lun int, cb func(resp Inquiry, err error))
	Read10(devAddr, lun int, buf []byte, lba uint32, count uint16, cb func(err error))
	Write10(devAddr, lun int, buf []byte, lba uint32, count uint16, cb func(err error))
}

// Bridge owns core 1's view of the mounted device and drives Host on
// behalf of a shared *ata.Controller.
type Bridge struct {
	host Host
	ata  *ata.Controller

	mounted    atomic.Bool
	devAddr    int
	lun        int
	blockCount uint32
	blockSize  uint16

	readInFlight  atomic.Bool
	writeInFlight atomic.Bool

	readBuf  [512]byte
	writeBuf [512]byte
}

// New returns a Bridge. The caller launches Run on core 1.
func New(host Host, a *ata.Controller) *Bridge {
	return &Bridge{host: host, ata: a}
}

// OnMount is the USB host stack's device-mount callback (spec.md §4.6
// item 2): it issues SCSI INQUIRY and records capacity before declaring
// the device mounted.
func (b *Bridge) OnMount(devAddr int) {
	b.devAddr = devAddr
	b.lun = 0

	b.host.Inquiry(devAddr, b.lun, func(resp Inquiry, err error) {
		if err != nil {
			return
		}

		b.blockCount = resp.BlockCount
		b.blockSize = resp.BlockSize
		b.mounted.Store(true)

		b.ata.SetDeviceInfo(ata.DeviceInfo{
			Mounted:      true,
			SerialNumber: "MSXCART0000000000001",
			FirmwareRev:  resp.Revision,
			Model:        trimConcat(resp.Vendor, resp.Product),
			BlockCount:   resp.BlockCount,
		})

		if b.ata.UsbIdentifyPending.Load() {
			b.completeIdentify()
		}
	})
}

func trimConcat(vendor, product string) string {
	v := trimRight(vendor)
	p := trimRight(product)
	if v == "" {
		return p
	}
	return v + " " + p
}

func trimRight(s string) string {
	end := len(s)
	for end > 0 && s[end-1] == ' ' {
		end--
	}
	return s[:end]
}

// OnUnmount is the USB host stack's device-unmount callback (spec.md
// §4.6 item 4): from here on serviceRead/serviceWrite fail pending
// sector requests with ERR|ABRT because the bridge is no longer
// mounted, and a new IDENTIFY DEVICE stays deferred until the next
// mount because the controller's device info is cleared.
func (b *Bridge) OnUnmount(devAddr int) {
	if devAddr != b.devAddr {
		return
	}
	b.mounted.Store(false)
	b.ata.SetDeviceInfo(ata.DeviceInfo{})
}

// completeIdentify finishes an IDENTIFY DEVICE command that was deferred
// because no device was mounted yet (spec.md §4.6 item 1): it builds the
// response sector now that device info is known and hands it to the
// controller as if the command had just been dispatched.
func (b *Bridge) completeIdentify() {
	buf := ata.BuildIdentify(ata.DeviceInfo{
		Mounted:    true,
		BlockCount: b.blockCount,
	})

	sb := b.ata.SectorBuffer()
	*sb = buf

	b.ata.ResetBuffer()
	b.ata.SetState(ata.ReadData)
	b.ata.SetStatus(ata.StatusDRDY | ata.StatusDSC | ata.StatusDRQ)
	b.ata.UsbIdentifyPending.Store(false)
}

// Run pumps the USB host stack and services pending ATA requests. It
// never returns; the loader launches it as core 1's entry point.
func (b *Bridge) Run() {
	for {
		b.host.Poll()
		b.serviceRead()
		b.serviceWrite()
	}
}

func (b *Bridge) serviceRead() {
	if !b.ata.UsbReadRequested.Load() || b.readInFlight.Load() {
		return
	}

	lba := b.ata.UsbReadLBA.Load()

	if !b.mounted.Load() || lba >= b.blockCount || b.blockSize > 512 {
		b.ata.UsbReadRequested.Store(false)
		b.ata.UsbReadFailed.Store(true)
		b.ata.SetStatus(ata.StatusDRDY | ata.StatusERR)
		b.ata.SetError(ata.ErrABRT)
		b.ata.SetState(ata.Idle)
		return
	}

	b.ata.UsbReadRequested.Store(false)
	b.readInFlight.Store(true)

	b.host.Read10(b.devAddr, b.lun, b.readBuf[:b.blockSize], lba, 1, func(err error) {
		b.readInFlight.Store(false)

		if err != nil {
			b.ata.UsbReadFailed.Store(true)
			b.ata.SetStatus(ata.StatusDRDY | ata.StatusERR)
			b.ata.SetError(ata.ErrABRT)
			b.ata.SetState(ata.Idle)
			return
		}

		sb := b.ata.SectorBuffer()
		copy(sb[:], b.readBuf[:])
		for i := int(b.blockSize); i < ata.SectorSize; i++ {
			sb[i] = 0
		}

		b.ata.ResetBuffer()
		b.ata.SetState(ata.ReadData)
		b.ata.SetStatus(ata.StatusDRDY | ata.StatusDSC | ata.StatusDRQ)
		b.ata.UsbReadReady.Store(true)
	})
}

func (b *Bridge) serviceWrite() {
	if !b.ata.UsbWriteRequested.Load() || b.writeInFlight.Load() {
		return
	}

	lba := b.ata.UsbWriteLBA.Load()

	if !b.mounted.Load() || lba >= b.blockCount || b.blockSize > 512 {
		b.ata.UsbWriteRequested.Store(false)
		b.ata.UsbWriteFailed.Store(true)
		b.ata.SetStatus(ata.StatusDRDY | ata.StatusERR)
		b.ata.SetError(ata.ErrABRT)
		b.ata.SetState(ata.Idle)
		return
	}

	sb := b.ata.SectorBuffer()
	copy(b.writeBuf[:], sb[:])

	b.ata.UsbWriteRequested.Store(false)
	b.writeInFlight.Store(true)

	b.host.Write10(b.devAddr, b.lun, b.writeBuf[:b.blockSize], lba, 1, func(err error) {
		b.writeInFlight.Store(false)

		if err != nil {
			b.ata.UsbWriteFailed.Store(true)
			b.ata.SetStatus(ata.StatusDRDY | ata.StatusERR)
			b.ata.SetError(ata.ErrABRT)
			b.ata.SetState(ata.Idle)
			return
		}

		b.ata.SetLBA(lba + 1)
		b.ata.UsbWriteReady.Store(true)

		if b.ata.SectorsRemaining() > 0 {
			b.ata.SetStatus(ata.StatusDRDY | ata.StatusDSC | ata.StatusDRQ)
			b.ata.SetState(ata.WriteData)
			b.ata.ResetBuffer()
		} else {
			b.ata.SetStatus(ata.StatusDRDY | ata.StatusDSC)
			b.ata.SetState(ata.Idle)
		}
	})
}
