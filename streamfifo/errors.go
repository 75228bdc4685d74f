// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package streamfifo

import "fmt"

// Kind identifies the class of failure an Error reports.
type Kind int

const (
	// KindNoMemoryMap is returned by New when the device exposes no mapped
	// region at all.
	KindNoMemoryMap Kind = iota
	// KindEmpty is returned by ReadBytes when RX_OCCUPANCY is zero.
	KindEmpty
	// KindFull is returned by WriteBytes when TX_VACANCY is insufficient.
	KindFull
	// KindOverRun is returned when TX_OVER_RUN or RX_OVER_READ is observed.
	KindOverRun
	// KindUnderRun is returned when RX_UNDER_READ or RX_UNDER_RUN is observed.
	KindUnderRun
	// KindLengthMismatch is returned when TX_LENGTH_MISMATCH is observed.
	KindLengthMismatch
	// KindSystem is a generic catch-all for an RX_ERROR condition that
	// doesn't decode to one of the named bits above; see the Open Question
	// in the design notes this driver was ported from.
	KindSystem
	// KindIO wraps a failure from the underlying bus access (a register
	// read/write or a data-port transaction).
	KindIO
	// KindUio wraps a failure reported by the UIO substrate itself (device
	// open, map, interrupt enable/wait).
	KindUio
)

func (k Kind) String() string {
	switch k {
	case KindNoMemoryMap:
		return "no memory map"
	case KindEmpty:
		return "empty"
	case KindFull:
		return "full"
	case KindOverRun:
		return "overrun"
	case KindUnderRun:
		return "underrun"
	case KindLengthMismatch:
		return "length mismatch"
	case KindSystem:
		return "system"
	case KindIO:
		return "io"
	case KindUio:
		return "uio"
	default:
		return "unknown"
	}
}

// Error is the error type returned by every streamfifo operation that can
// fail, except for ErrUnimplemented. It carries a Kind for classification
// (use errors.As and compare Kind, or errors.Is against the sentinel Err*
// values below) and may wrap an underlying cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("streamfifo: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("streamfifo: %s: %s", e.Op, e.Kind)
}

// Unwrap allows errors.Is/errors.As to see through to the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same Kind, so callers can
// write errors.Is(err, streamfifo.ErrEmpty) against the sentinels below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newError(op string, kind Kind, err error) *Error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// Sentinel errors usable with errors.Is. They carry no Op/Err of their own;
// compare only by Kind.
var (
	ErrNoMemoryMap    = &Error{Kind: KindNoMemoryMap}
	ErrEmpty          = &Error{Kind: KindEmpty}
	ErrFull           = &Error{Kind: KindFull}
	ErrOverRun        = &Error{Kind: KindOverRun}
	ErrUnderRun       = &Error{Kind: KindUnderRun}
	ErrLengthMismatch = &Error{Kind: KindLengthMismatch}
	ErrSystem         = &Error{Kind: KindSystem}
)

// ErrUnimplemented is returned by WriteBytes when asked to move data at
// Width256 or Width512. It is not a Kind of its own: the device supports
// these widths, the driver simply refuses to corrupt data by emitting the
// wrong number of bus cycles. ReadBytes does not return it: at these widths
// it logs a warning and leaves the buffer untouched.
var ErrUnimplemented = fmt.Errorf("streamfifo: width not implemented by the transactional path")
