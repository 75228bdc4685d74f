// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package streamfifotest implements fakes for package streamfifo, following
// the same record/playback shape as the teacher's conn/conntest package:
// a Map records every register access it observes and can be pre-loaded
// with the values it should answer with.
package streamfifotest

import (
	"fmt"
	"sync"

	"periph.io/x/fifo/streamfifo"
)

// Op is one recorded access against a Map.
type Op struct {
	Kind   string // "ReadU32", "WriteU32", "WriteU64", "WriteU128", "ReadExact"
	Offset int
	U32    uint32
	U64    uint64
	U128   [16]byte
	N      int
}

// interruptStatusOffset is INTERRUPT_STATUS's register offset. It is
// write-1-to-clear, unlike every other register this fake models, so
// WriteU32 special-cases it rather than doing a plain overwrite.
const interruptStatusOffset = 0x00

// Map is a fake streamfifo.Map. Registers pre-loads the values ReadU32
// answers with; RxData pre-loads the byte stream ReadExact hands out,
// consumed FIFO-order across calls. Every access is appended to Ops.
type Map struct {
	mu sync.Mutex

	Registers map[int]uint32
	RxData    []byte

	// PostWriteU32, when set, runs after every WriteU32 is recorded. Tests
	// use it to model register side effects a real peripheral would apply,
	// e.g. TX_LENGTH latching TX_COMPLETE into INTERRUPT_STATUS.
	PostWriteU32 func(off int, v uint32)

	Ops []Op

	rxPos int
}

// NewMap returns an empty fake Map ready to record accesses.
func NewMap() *Map {
	return &Map{Registers: map[int]uint32{}}
}

func (m *Map) record(op Op) {
	m.Ops = append(m.Ops, op)
}

// ReadU32 implements streamfifo.Map.
func (m *Map) ReadU32(off int) (uint32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := m.Registers[off]
	m.record(Op{Kind: "ReadU32", Offset: off, U32: v})
	return v, nil
}

// WriteU32 implements streamfifo.Map. INTERRUPT_STATUS is modeled as
// write-1-to-clear: a bit set in v clears that bit in the register rather
// than the register taking on v verbatim. Tests that need to simulate a
// pending or reappearing status bit do so through PostWriteU32 or by
// assigning Registers directly, not by relying on this call's v.
func (m *Map) WriteU32(off int, v uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Registers == nil {
		m.Registers = map[int]uint32{}
	}
	if off == interruptStatusOffset {
		m.Registers[off] &^= v
	} else {
		m.Registers[off] = v
	}
	m.record(Op{Kind: "WriteU32", Offset: off, U32: v})
	if m.PostWriteU32 != nil {
		m.PostWriteU32(off, v)
	}
	return nil
}

// WriteU64 implements streamfifo.Map.
func (m *Map) WriteU64(off int, v uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(Op{Kind: "WriteU64", Offset: off, U64: v})
	return nil
}

// WriteU128 implements streamfifo.Map.
func (m *Map) WriteU128(off int, v [16]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(Op{Kind: "WriteU128", Offset: off, U128: v})
	return nil
}

// ReadExact implements streamfifo.Map. It hands out the next n bytes of
// RxData, advancing past them, and fails if fewer than n remain.
func (m *Map) ReadExact(off, n int) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rxPos+n > len(m.RxData) {
		return nil, fmt.Errorf("streamfifotest: ReadExact(%#x, %d): only %d bytes queued", off, n, len(m.RxData)-m.rxPos)
	}
	b := m.RxData[m.rxPos : m.rxPos+n]
	m.rxPos += n
	m.record(Op{Kind: "ReadExact", Offset: off, N: n})
	return b, nil
}

// WritesTo returns the values written to off, in order.
func (m *Map) WritesTo(off int) []uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []uint32
	for _, op := range m.Ops {
		if op.Offset == off && (op.Kind == "WriteU32") {
			out = append(out, op.U32)
		}
	}
	return out
}

// Device is a fake streamfifo.Device backed by up to two Maps.
type Device struct {
	Control *Map
	Data    *Map // nil to simulate a single-map (AXI-Lite only) device
}

// Maps implements streamfifo.Device.
func (d *Device) Maps() []streamfifo.MapInfo {
	if d.Control == nil {
		return nil
	}
	if d.Data == nil {
		return []streamfifo.MapInfo{{Index: 0}}
	}
	return []streamfifo.MapInfo{{Index: 0}, {Index: 1}}
}

// Map implements streamfifo.Device.
func (d *Device) Map(index int) (streamfifo.Map, error) {
	switch index {
	case 0:
		if d.Control == nil {
			return nil, fmt.Errorf("streamfifotest: no control map")
		}
		return d.Control, nil
	case 1:
		if d.Data == nil {
			return nil, fmt.Errorf("streamfifotest: no data map")
		}
		return d.Data, nil
	default:
		return nil, fmt.Errorf("streamfifotest: index %d out of range", index)
	}
}
