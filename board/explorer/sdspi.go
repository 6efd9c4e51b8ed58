// https://github.com/8bitwren/msxcart
//
// Copyright (c) The msxcart Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago

package explorer

import (
	"errors"
	"time"

	"github.com/8bitwren/msxcart/internal/reg"
)

// SIO register offsets backing the bit-banged SPI lines (RP2350
// datasheet §3.1.4): a single-cycle GPIO bank, read/write directly by
// the processor rather than through IO_BANK0's slower bus.
const (
	sioGPIOIn     = 0x004
	sioGPIOOutSet = 0x018
	sioGPIOOutClr = 0x020
	sioGPIOOESet  = 0x038
)

func gpioHigh(pin int)      { reg.Set(sioBase+sioGPIOOutSet, pin) }
func gpioLow(pin int)       { reg.Set(sioBase+sioGPIOOutClr, pin) }
func gpioAsOutput(pin int)  { reg.Set(sioBase+sioGPIOOESet, pin) }
func gpioRead(pin int) bool { return reg.Get(sioBase+sioGPIOIn, pin, 1) == 1 }

// sdSPI is a bit-banged SD-card-in-SPI-mode block reader for the 2350
// Explorer variant's microSD slot. No pack example drives an SD card in
// any mode, SPI or SDIO, so both the pin assignment (board.go) and this
// command sequence are a judgment call grounded only in the standard SD
// Physical Layer Simplified Specification's SPI mode chapter, not in
// any example repo; kept deliberately narrow (single-block read only,
// no write, no high-speed clocking) to match explorerext's read-only
// catalog-browsing needs.
type sdSPI struct {
	blockAddressed bool // true once ACMD41/OCR report SDHC/SDXC (block, not byte, addressing)
}

const (
	sdCmdGoIdle       = 0
	sdCmdSendIfCond   = 8
	sdCmdReadOCR      = 58
	sdCmdAppCmd       = 55
	sdCmdSDSendOpCond = 41
	sdCmdSetBlockLen  = 16
	sdCmdReadSingle   = 17

	sdR1IdleState = 0x01
	sdDataToken   = 0xFE
)

// clockByte shifts out b, MSB first, toggling SCLK once per bit, and
// returns whatever MISO reports on the same edges.
func clockByte(b byte) byte {
	var in byte
	for i := 7; i >= 0; i-- {
		if b&(1<<uint(i)) != 0 {
			gpioHigh(sdMOSIPin)
		} else {
			gpioLow(sdMOSIPin)
		}
		gpioHigh(sdSCLKPin)
		in <<= 1
		if gpioRead(sdMISOPin) {
			in |= 1
		}
		gpioLow(sdSCLKPin)
	}
	return in
}

func clockIdle(n int) {
	gpioHigh(sdMOSIPin)
	for i := 0; i < n; i++ {
		clockByte(0xFF)
	}
}

// sendCommand issues an SD command frame and returns its R1 response,
// skipping up to eight idle (0xFF) bytes while waiting for the card to
// reply (SD Physical Layer spec §7.2.3).
func sendCommand(cmd byte, arg uint32, crc byte) byte {
	gpioLow(sdCSPin)
	clockByte(0x40 | cmd)
	clockByte(byte(arg >> 24))
	clockByte(byte(arg >> 16))
	clockByte(byte(arg >> 8))
	clockByte(byte(arg))
	clockByte(crc)

	for i := 0; i < 8; i++ {
		r := clockByte(0xFF)
		if r&0x80 == 0 {
			return r
		}
	}
	return 0xFF
}

func endCommand() {
	clockByte(0xFF)
	gpioHigh(sdCSPin)
	clockByte(0xFF)
}

// newSDSPI resets the card into SPI mode and negotiates block
// addressing, per the standard power-on sequence: 74+ idle clocks with
// CS high, CMD0 (GO_IDLE_STATE), CMD8 (SEND_IF_COND, confirms a v2.00+
// card), then ACMD41 polled until the card leaves the idle state.
func newSDSPI() (*sdSPI, error) {
	gpioAsOutput(sdCSPin)
	gpioAsOutput(sdSCLKPin)
	gpioAsOutput(sdMOSIPin)
	gpioHigh(sdCSPin)

	clockIdle(10)

	if sendCommand(sdCmdGoIdle, 0, 0x95) != sdR1IdleState {
		endCommand()
		return nil, errors.New("explorer: SD card did not respond to GO_IDLE_STATE")
	}
	endCommand()

	sendCommand(sdCmdSendIfCond, 0x1AA, 0x87)
	clockByte(0xFF) // command version / reserved
	clockByte(0xFF) // reserved
	clockByte(0xFF) // voltage accepted
	clockByte(0xFF) // echoed check pattern
	endCommand()

	card := &sdSPI{}
	deadline := time.Now().Add(time.Second)
	for {
		sendCommand(sdCmdAppCmd, 0, 0xFF)
		endCommand()
		r := sendCommand(sdCmdSDSendOpCond, 1<<30, 0xFF) // HCS bit: request SDHC/SDXC
		endCommand()
		if r == 0 {
			break
		}
		if time.Now().After(deadline) {
			return nil, errors.New("explorer: SD card initialization timed out")
		}
	}

	ocr := sendCommand(sdCmdReadOCR, 0, 0xFF)
	if ocr == 0 {
		b1 := clockByte(0xFF)
		clockByte(0xFF)
		clockByte(0xFF)
		clockByte(0xFF)
		card.blockAddressed = b1&0x40 != 0 // CCS bit
	}
	endCommand()

	if !card.blockAddressed {
		if sendCommand(sdCmdSetBlockLen, blockSize, 0xFF) != 0 {
			endCommand()
			return nil, errors.New("explorer: SD card rejected SET_BLOCKLEN")
		}
		endCommand()
	}

	return card, nil
}

const blockSize = 512

// ReadBlock reads the 512-byte block at lba into buf (len(buf) must be
// exactly blockSize), converting to a byte address first for
// byte-addressed (non-SDHC) cards.
func (c *sdSPI) ReadBlock(lba uint32, buf []byte) error {
	if len(buf) != blockSize {
		return errors.New("explorer: ReadBlock requires a 512-byte buffer")
	}

	addr := lba
	if !c.blockAddressed {
		addr = lba * blockSize
	}

	if sendCommand(sdCmdReadSingle, addr, 0xFF) != 0 {
		endCommand()
		return errors.New("explorer: SD card rejected READ_SINGLE_BLOCK")
	}

	for {
		if tok := clockByte(0xFF); tok == sdDataToken {
			break
		} else if tok != 0xFF {
			endCommand()
			return errors.New("explorer: SD card returned a data error token")
		}
	}

	for i := range buf {
		buf[i] = clockByte(0xFF)
	}
	clockByte(0xFF) // CRC high byte, unchecked
	clockByte(0xFF) // CRC low byte, unchecked

	endCommand()
	return nil
}
