// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package streamfifo

import (
	"errors"
	"testing"

	"periph.io/x/fifo/streamfifo/streamfifotest"
)

func newFakeDevice(withData bool) (*streamfifotest.Device, *streamfifotest.Map, *streamfifotest.Map) {
	control := streamfifotest.NewMap()
	var data *streamfifotest.Map
	if withData {
		data = streamfifotest.NewMap()
	}
	return &streamfifotest.Device{Control: control, Data: data}, control, data
}

func TestNewConstructionDeterminism(t *testing.T) {
	dev, _, _ := newFakeDevice(false)
	f, err := New(dev, Width128, nil)
	if err != nil {
		t.Fatal(err)
	}
	if f.DataWidth() != Width32 {
		t.Errorf("single-map device: DataWidth() = %s, want Width32", f.DataWidth())
	}

	dev2, _, _ := newFakeDevice(true)
	f2, err := New(dev2, Width64, nil)
	if err != nil {
		t.Fatal(err)
	}
	if f2.DataWidth() != Width64 {
		t.Errorf("two-map device: DataWidth() = %s, want Width64", f2.DataWidth())
	}

	dev3 := &streamfifotest.Device{}
	if _, err := New(dev3, Width32, nil); !errors.Is(err, ErrNoMemoryMap) {
		t.Errorf("zero-map device: err = %v, want ErrNoMemoryMap", err)
	}
}

func TestResetShape(t *testing.T) {
	dev, control, _ := newFakeDevice(false)
	f, err := New(dev, Width32, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.Reset(); err != nil {
		t.Fatal(err)
	}
	want := []struct {
		off int
		v   uint32
	}{
		{regAxi4StreamReset, resetMagic},
		{regTxReset, resetMagic},
		{regRxReset, resetMagic},
		{regInterruptEnable, canonicalEnableMask},
		{regInterruptStatus, interruptAll},
	}
	if len(control.Ops) != len(want) {
		t.Fatalf("got %d ops, want %d: %+v", len(control.Ops), len(want), control.Ops)
	}
	for i, w := range want {
		op := control.Ops[i]
		if op.Kind != "WriteU32" || op.Offset != w.off || op.U32 != w.v {
			t.Errorf("op[%d] = %+v, want WriteU32(%#x, %#x)", i, op, w.off, w.v)
		}
	}
}

func TestReadEmptyPrecedence(t *testing.T) {
	dev, control, _ := newFakeDevice(false)
	f, err := New(dev, Width32, nil)
	if err != nil {
		t.Fatal(err)
	}
	control.Registers[regRxOccupancy] = 0
	buf := make([]byte, 8)
	if _, _, err := f.ReadBytes(buf); !errors.Is(err, ErrEmpty) {
		t.Fatalf("err = %v, want ErrEmpty", err)
	}
	if len(control.Ops) != 1 {
		t.Fatalf("got %d ops, want 1 (only the occupancy read): %+v", len(control.Ops), control.Ops)
	}
}

func TestWriteFullPrecedence(t *testing.T) {
	dev, control, _ := newFakeDevice(false)
	f, err := New(dev, Width32, nil)
	if err != nil {
		t.Fatal(err)
	}
	control.Registers[regTxVacancy] = 1
	data := make([]byte, 20) // needs 5 32-bit words, only 1 vacant
	if _, err := f.WriteBytes(data, 0); !errors.Is(err, ErrFull) {
		t.Fatalf("err = %v, want ErrFull", err)
	}
	if got := control.WritesTo(regTxData); len(got) != 0 {
		t.Errorf("TX_DATA writes = %v, want none", got)
	}
	if got := control.WritesTo(regTxLength); len(got) != 0 {
		t.Errorf("TX_LENGTH writes = %v, want none", got)
	}
}

// S1 from the spec's testable-properties section.
func TestWriteScenarioS1(t *testing.T) {
	dev, control, _ := newFakeDevice(false)
	f, err := New(dev, Width32, nil)
	if err != nil {
		t.Fatal(err)
	}
	control.Registers[regTxVacancy] = 2
	control.PostWriteU32 = func(off int, v uint32) {
		if off == regTxLength {
			control.Registers[regInterruptStatus] = interruptTxComplete
		}
	}

	n, err := f.WriteBytes([]byte{0x01, 0x02, 0x03, 0x04, 0x05}, 0x23)
	if err != nil {
		t.Fatal(err)
	}
	if n != 5 {
		t.Errorf("n = %d, want 5", n)
	}
	if got := control.WritesTo(regTxDestination); len(got) != 1 || got[0] != 0x03 {
		t.Errorf("TX_DESTINATION writes = %v, want [0x03]", got)
	}
	if got := control.WritesTo(regTxData); len(got) != 2 || got[0] != 0x04030201 || got[1] != 0x00000005 {
		t.Errorf("TX_DATA writes = %#x, want [0x04030201 0x00000005]", got)
	}
	if got := control.WritesTo(regTxLength); len(got) != 1 || got[0] != 5 {
		t.Errorf("TX_LENGTH writes = %v, want [5]", got)
	}
}

// S2 from the spec's testable-properties section.
func TestWriteScenarioS2(t *testing.T) {
	dev, control, data := newFakeDevice(true)
	f, err := New(dev, Width64, nil)
	if err != nil {
		t.Fatal(err)
	}
	control.Registers[regTxVacancy] = 2
	control.PostWriteU32 = func(off int, v uint32) {
		if off == regTxLength {
			control.Registers[regInterruptStatus] = interruptTxComplete
		}
	}

	payload := make([]byte, 16)
	for i := range payload {
		payload[i] = 0xAA
	}
	n, err := f.WriteBytes(payload, 0)
	if err != nil {
		t.Fatal(err)
	}
	if n != 16 {
		t.Errorf("n = %d, want 16", n)
	}
	var writes64 []uint64
	for _, op := range data.Ops {
		if op.Kind == "WriteU64" {
			writes64 = append(writes64, op.U64)
		}
	}
	if len(writes64) != 2 {
		t.Fatalf("WriteU64 calls = %d, want 2: %+v", len(writes64), data.Ops)
	}
	if got := control.WritesTo(regTxLength); len(got) != 1 || got[0] != 16 {
		t.Errorf("TX_LENGTH writes = %v, want [16]", got)
	}
}

// Word-count round trip for Width32 (spec's testable-properties property 8):
// write then read back the same payload through the AXI4 "full" data
// region's 32-bit single-transaction path.
func TestWriteReadRoundTripWidth32(t *testing.T) {
	dev, control, data := newFakeDevice(true)
	f, err := New(dev, Width32, nil)
	if err != nil {
		t.Fatal(err)
	}
	if f.DataWidth() != Width32 {
		t.Fatalf("DataWidth() = %s, want Width32", f.DataWidth())
	}

	control.Registers[regTxVacancy] = 2
	control.PostWriteU32 = func(off int, v uint32) {
		if off == regTxLength {
			control.Registers[regInterruptStatus] = interruptTxComplete
		}
	}
	payload := []byte{0x10, 0x11, 0x12, 0x13, 0x20, 0x21, 0x22, 0x23}
	n, err := f.WriteBytes(payload, 0x01)
	if err != nil {
		t.Fatal(err)
	}
	if n != len(payload) {
		t.Fatalf("WriteBytes n = %d, want %d", n, len(payload))
	}
	var writes32 []uint32
	for _, op := range data.Ops {
		if op.Kind == "WriteU32" {
			writes32 = append(writes32, op.U32)
		}
	}
	if len(writes32) != 2 || writes32[0] != 0x13121110 || writes32[1] != 0x23222120 {
		t.Fatalf("data-region WriteU32 calls = %#x, want [0x13121110 0x23222120]", writes32)
	}

	// Read the same bytes back through the same handle and fake maps, as if
	// the peripheral now held this packet in its RX FIFO.
	control.Registers[regRxOccupancy] = 2
	control.Registers[regRxLength] = uint32(len(payload))
	control.Registers[regRxDestination] = 0x01
	data.RxData = append([]byte(nil), payload...)

	buf := make([]byte, len(payload))
	read, dest, err := f.ReadBytes(buf)
	if err != nil {
		t.Fatal(err)
	}
	if read != len(payload) || dest != 0x01 {
		t.Fatalf("got (%d, %#x), want (%d, 0x01)", read, dest, len(payload))
	}
	if string(buf) != string(payload) {
		t.Errorf("buf = %v, want %v", buf, payload)
	}
}

// Word-count round trip for Width128 (spec's testable-properties property
// 8): a tail word shorter than 16 bytes must be zero-padded on write, and a
// two-word packet must be read back into the buffer unchanged.
func TestWriteReadRoundTripWidth128(t *testing.T) {
	dev, control, data := newFakeDevice(true)
	f, err := New(dev, Width128, nil)
	if err != nil {
		t.Fatal(err)
	}
	if f.DataWidth() != Width128 {
		t.Fatalf("DataWidth() = %s, want Width128", f.DataWidth())
	}

	control.Registers[regTxVacancy] = 2
	control.PostWriteU32 = func(off int, v uint32) {
		if off == regTxLength {
			control.Registers[regInterruptStatus] = interruptTxComplete
		}
	}
	// 20 bytes: one full 16-byte word plus a 4-byte tail that WriteBytes must
	// zero-pad out to a full 16-byte transaction.
	payload := make([]byte, 20)
	for i := range payload {
		payload[i] = byte(i + 1)
	}
	n, err := f.WriteBytes(payload, 0x02)
	if err != nil {
		t.Fatal(err)
	}
	if n != len(payload) {
		t.Fatalf("WriteBytes n = %d, want %d", n, len(payload))
	}
	var writes128 [][16]byte
	for _, op := range data.Ops {
		if op.Kind == "WriteU128" {
			writes128 = append(writes128, op.U128)
		}
	}
	if len(writes128) != 2 {
		t.Fatalf("WriteU128 calls = %d, want 2: %+v", len(writes128), data.Ops)
	}
	var wantFirst [16]byte
	copy(wantFirst[:], payload[:16])
	if writes128[0] != wantFirst {
		t.Errorf("first WriteU128 = %x, want %x", writes128[0], wantFirst)
	}
	var wantSecond [16]byte
	copy(wantSecond[:], payload[16:20]) // remaining 12 bytes stay zero
	if writes128[1] != wantSecond {
		t.Errorf("second WriteU128 = %x, want %x", writes128[1], wantSecond)
	}

	// Read a full 32-byte packet (two whole words) back.
	control.Registers[regRxOccupancy] = 2
	control.Registers[regRxLength] = 32
	control.Registers[regRxDestination] = 0x02
	rx := make([]byte, 32)
	for i := range rx {
		rx[i] = byte(0x40 + i)
	}
	data.RxData = rx

	buf := make([]byte, 32)
	read, dest, err := f.ReadBytes(buf)
	if err != nil {
		t.Fatal(err)
	}
	if read != 32 || dest != 0x02 {
		t.Fatalf("got (%d, %#x), want (32, 0x02)", read, dest)
	}
	if string(buf) != string(rx) {
		t.Errorf("buf = %v, want %v", buf, rx)
	}
}

// S3 from the spec's testable-properties section.
func TestReadScenarioS3(t *testing.T) {
	dev, control, _ := newFakeDevice(false)
	f, err := New(dev, Width32, nil)
	if err != nil {
		t.Fatal(err)
	}
	control.Registers[regRxOccupancy] = 0
	buf := make([]byte, 8)
	if _, _, err := f.ReadBytes(buf); !errors.Is(err, ErrEmpty) {
		t.Fatalf("err = %v, want ErrEmpty", err)
	}
}

// S4 from the spec's testable-properties section.
func TestReadScenarioS4(t *testing.T) {
	dev, control, data := newFakeDevice(true)
	f, err := New(dev, Width64, nil)
	if err != nil {
		t.Fatal(err)
	}
	control.Registers[regRxOccupancy] = 2
	control.Registers[regRxLength] = 16
	control.Registers[regRxDestination] = 0x07
	data.RxData = []byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0A, 0x0B, 0x0C, 0x0D, 0x0E, 0x0F}

	buf := make([]byte, 16)
	n, dest, err := f.ReadBytes(buf)
	if err != nil {
		t.Fatal(err)
	}
	if n != 16 || dest != 0x07 {
		t.Fatalf("got (%d, %#x), want (16, 0x07)", n, dest)
	}
	if string(buf) != string(data.RxData) {
		t.Errorf("buf = %v, want %v", buf, data.RxData)
	}
}

// S5 from the spec's testable-properties section.
func TestWriteScenarioS5(t *testing.T) {
	dev, control, _ := newFakeDevice(true)
	f, err := New(dev, Width32, nil)
	if err != nil {
		t.Fatal(err)
	}
	control.Registers[regTxVacancy] = 1
	control.PostWriteU32 = func(off int, v uint32) {
		if off == regTxLength {
			control.Registers[regInterruptStatus] = interruptTxOverRun
		}
	}

	_, err = f.WriteBytes([]byte{1, 2, 3, 4}, 0)
	if !errors.Is(err, ErrOverRun) {
		t.Fatalf("err = %v, want ErrOverRun", err)
	}
	// Reset must have run: verify the three magic-value writes landed.
	var magics int
	for _, op := range control.Ops {
		if op.Kind == "WriteU32" && op.U32 == resetMagic {
			magics++
		}
	}
	if magics != 3 {
		t.Errorf("reset magic writes = %d, want 3 (stream/tx/rx reset)", magics)
	}
}

func TestErrorClassification(t *testing.T) {
	cases := []struct {
		name   string
		status uint32
		want   error
	}{
		{"tx overrun", interruptTxOverRun, ErrOverRun},
		{"tx length mismatch", interruptTxLengthMismatch, ErrLengthMismatch},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			dev, control, _ := newFakeDevice(false)
			f, err := New(dev, Width32, nil)
			if err != nil {
				t.Fatal(err)
			}
			control.Registers[regTxVacancy] = 1
			status := c.status
			control.PostWriteU32 = func(off int, v uint32) {
				if off == regTxLength {
					control.Registers[regInterruptStatus] = status
				}
			}
			_, err = f.WriteBytes([]byte{1, 2, 3, 4}, 0)
			if !errors.Is(err, c.want) {
				t.Fatalf("err = %v, want %v", err, c.want)
			}
		})
	}

	rxCases := []struct {
		name   string
		status uint32
		want   error
	}{
		{"rx over read", interruptRxOverRead, ErrOverRun},
		{"rx under read", interruptRxUnderRead, ErrUnderRun},
		{"rx under run", interruptRxUnderRun, ErrUnderRun},
	}
	for _, c := range rxCases {
		t.Run(c.name, func(t *testing.T) {
			dev, control, _ := newFakeDevice(false)
			f, err := New(dev, Width32, nil)
			if err != nil {
				t.Fatal(err)
			}
			control.Registers[regRxOccupancy] = 1
			control.Registers[regRxLength] = 4
			// INTERRUPT_STATUS is write-1-to-clear; model the error bit
			// reappearing (the peripheral raised it concurrently with the
			// clear) so the final status read in ReadBytes observes it.
			status := c.status
			control.PostWriteU32 = func(off int, v uint32) {
				if off == regInterruptStatus {
					control.Registers[off] = status
				}
			}
			_, _, err = f.ReadBytes(make([]byte, 4))
			if !errors.Is(err, c.want) {
				t.Fatalf("err = %v, want %v", err, c.want)
			}
		})
	}
}

func TestWriteDestinationMasking(t *testing.T) {
	dev, control, _ := newFakeDevice(false)
	f, err := New(dev, Width32, nil)
	if err != nil {
		t.Fatal(err)
	}
	control.Registers[regTxVacancy] = 1
	control.PostWriteU32 = func(off int, v uint32) {
		if off == regTxLength {
			control.Registers[regInterruptStatus] = interruptTxComplete
		}
	}
	if _, err := f.WriteBytes([]byte{1, 2, 3, 4}, 0xFF); err != nil {
		t.Fatal(err)
	}
	if got := control.WritesTo(regTxDestination); len(got) != 1 || got[0] != 0x0F {
		t.Errorf("TX_DESTINATION = %v, want [0x0f]", got)
	}
}

func TestWriteUnimplementedWidthRefused(t *testing.T) {
	dev, control, _ := newFakeDevice(true)
	f, err := New(dev, Width256, nil)
	if err != nil {
		t.Fatal(err)
	}
	control.Registers[regTxVacancy] = 100
	if _, err := f.WriteBytes([]byte{1, 2, 3, 4}, 0); !errors.Is(err, ErrUnimplemented) {
		t.Fatalf("err = %v, want ErrUnimplemented", err)
	}
}

func TestReadUnimplementedWidthLeavesBufferUntouched(t *testing.T) {
	dev, control, _ := newFakeDevice(true)
	f, err := New(dev, Width256, nil)
	if err != nil {
		t.Fatal(err)
	}
	control.Registers[regRxOccupancy] = 1
	control.Registers[regRxLength] = 32
	buf := make([]byte, 32)
	for i := range buf {
		buf[i] = 0xFF
	}
	n, _, err := f.ReadBytes(buf)
	if err != nil {
		t.Fatal(err)
	}
	if n != 32 {
		t.Errorf("n = %d, want 32", n)
	}
	for i, b := range buf {
		if b != 0xFF {
			t.Fatalf("buf[%d] = %#x, want untouched 0xff", i, b)
		}
	}
}
