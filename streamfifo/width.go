// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package streamfifo

import "fmt"

// Width is the configured word width of the FIFO's data port.
//
// The device itself supports all five variants; this driver's transactional
// read/write paths only implement Width32, Width64 and Width128. Width256
// and Width512 are representable (so a caller can at least query a device's
// declared configuration) but no bus transaction is issued for them:
// WriteBytes fails with ErrUnimplemented, and ReadBytes logs a warning and
// leaves the buffer untouched.
type Width int

const (
	// Width32 is a 32-bit (4 byte) FIFO data port, the only width available
	// when no AXI4 "full" data region is mapped.
	Width32 Width = iota
	// Width64 is a 64-bit (8 byte) FIFO data port.
	Width64
	// Width128 is a 128-bit (16 byte) FIFO data port.
	Width128
	// Width256 is a 256-bit (32 byte) FIFO data port. Unimplemented.
	Width256
	// Width512 is a 512-bit (64 byte) FIFO data port. Unimplemented.
	Width512
)

// String implements fmt.Stringer.
func (w Width) String() string {
	switch w {
	case Width32:
		return "32-bit"
	case Width64:
		return "64-bit"
	case Width128:
		return "128-bit"
	case Width256:
		return "256-bit"
	case Width512:
		return "512-bit"
	default:
		return fmt.Sprintf("Width(%d)", int(w))
	}
}

// Bits returns the word width in bits.
func (w Width) Bits() int {
	switch w {
	case Width32:
		return 32
	case Width64:
		return 64
	case Width128:
		return 128
	case Width256:
		return 256
	case Width512:
		return 512
	default:
		return 0
	}
}

// ByteCount returns the word width in bytes. It is always Bits()/8 and
// always greater than zero for a valid Width.
func (w Width) ByteCount() int {
	return w.Bits() / 8
}

// Implemented reports whether the transactional read/write paths support
// this width. Width256 and Width512 are valid enum values but are refused
// by WriteBytes/ReadBytes rather than silently mishandled.
func (w Width) Implemented() bool {
	switch w {
	case Width32, Width64, Width128:
		return true
	default:
		return false
	}
}

// WidthFromBits parses a bit count back into a Width. ok is false for any
// value not among {32, 64, 128, 256, 512}.
func WidthFromBits(bits int) (w Width, ok bool) {
	switch bits {
	case 32:
		return Width32, true
	case 64:
		return Width64, true
	case 128:
		return Width128, true
	case 256:
		return Width256, true
	case 512:
		return Width512, true
	default:
		return 0, false
	}
}
