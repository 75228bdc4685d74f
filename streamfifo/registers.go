// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package streamfifo

// Control region ("AXI-Lite") register offsets, in bytes. All registers in
// this region are 32 bits wide.
const (
	regInterruptStatus = 0x00 // write-1-to-clear
	regInterruptEnable = 0x04
	regTxReset         = 0x08
	regTxVacancy       = 0x0c
	regTxData          = 0x10 // used only when no data region is mapped
	regTxLength        = 0x14
	regRxReset         = 0x18
	regRxOccupancy     = 0x1c
	regRxData          = 0x20 // used only when no data region is mapped
	regRxLength        = 0x24
	regAxi4StreamReset = 0x28
	regTxDestination   = 0x2c
	regRxDestination   = 0x30
)

// rxLengthMask masks the valid bits of REG_RX_LENGTH.
const rxLengthMask = 0x003fffff

// txDestinationMask masks TDEST to its 4 valid bits.
const txDestinationMask = 0x0f

// Data region ("AXI4 full") offsets.
const (
	fullRegWrite = 0x0000
	fullRegRead  = 0x1000
)

// resetMagic is written to the *_RESET registers to trigger a reset.
const resetMagic = 0x000000a5

// Interrupt bits, in the bit positions given by the IP core's product
// guide. Bit order here matches the source this driver was ported from.
const (
	interruptRxUnderRead      uint32 = 1 << 31
	interruptRxOverRead       uint32 = 1 << 30
	interruptRxUnderRun       uint32 = 1 << 29
	interruptTxOverRun        uint32 = 1 << 28
	interruptTxComplete       uint32 = 1 << 27
	interruptRxComplete       uint32 = 1 << 26
	interruptTxLengthMismatch uint32 = 1 << 25
	interruptTxResetComplete  uint32 = 1 << 24
	interruptRxResetComplete  uint32 = 1 << 23
	interruptTxProgFull       uint32 = 1 << 22
	interruptTxProgEmpty      uint32 = 1 << 21
	interruptRxProgFull       uint32 = 1 << 20
	interruptRxProgEmpty      uint32 = 1 << 19
)

// Derived interrupt masks.
const (
	interruptAll = interruptRxUnderRead | interruptRxOverRead | interruptRxUnderRun |
		interruptTxOverRun | interruptTxComplete | interruptRxComplete |
		interruptTxLengthMismatch | interruptTxResetComplete | interruptRxResetComplete |
		interruptTxProgFull | interruptTxProgEmpty | interruptRxProgFull | interruptRxProgEmpty

	interruptRxError = interruptRxUnderRun | interruptRxOverRead | interruptRxUnderRead
	interruptTxError = interruptTxOverRun | interruptTxLengthMismatch

	// canonicalEnableMask is the interrupt-enable mask Reset programs: TX and
	// RX completion plus every error condition. Equals 0xfe000000, derived
	// from the bit positions above rather than hardcoded (see DESIGN.md for
	// why this differs from the illustrative value in the distilled spec).
	canonicalEnableMask = interruptTxComplete | interruptRxComplete |
		interruptRxUnderRead | interruptRxOverRead | interruptRxUnderRun |
		interruptTxOverRun | interruptTxLengthMismatch

	// rxClearMask is written to INTERRUPT_STATUS to clear RX completion and
	// error bits.
	rxClearMask = interruptRxError | interruptRxComplete

	// txClearMask is written to INTERRUPT_STATUS to clear TX completion and
	// error bits.
	txClearMask = interruptTxError | interruptTxComplete
)
