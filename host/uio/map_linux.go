// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

//go:build linux

package uio

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Map is one mmap'd UIO region. It implements streamfifo.Map, performing
// every access as a single load or store of the target width through an
// unsafe.Pointer cast rather than a byte-wise copy, so each call emits
// exactly one bus transaction the way the engine's correctness model
// requires. This follows the same pattern as host/pmem's view type: the
// mmap'd slice is only ever the backing store for pointer arithmetic, never
// walked byte by byte for anything wider than a byte.
type Map struct {
	region []byte
}

func (m *Map) bounds(off, n int) error {
	if off < 0 || n < 0 || off+n > len(m.region) {
		return fmt.Errorf("uio: access [%#x:%#x) out of range (region is %d bytes)", off, off+n, len(m.region))
	}
	return nil
}

// ReadU32 implements streamfifo.Map.
func (m *Map) ReadU32(off int) (uint32, error) {
	if err := m.bounds(off, 4); err != nil {
		return 0, err
	}
	p := (*uint32)(unsafe.Pointer(&m.region[off]))
	return *p, nil
}

// WriteU32 implements streamfifo.Map.
func (m *Map) WriteU32(off int, v uint32) error {
	if err := m.bounds(off, 4); err != nil {
		return err
	}
	p := (*uint32)(unsafe.Pointer(&m.region[off]))
	*p = v
	return nil
}

// WriteU64 implements streamfifo.Map.
func (m *Map) WriteU64(off int, v uint64) error {
	if err := m.bounds(off, 8); err != nil {
		return err
	}
	p := (*uint64)(unsafe.Pointer(&m.region[off]))
	*p = v
	return nil
}

// WriteU128 implements streamfifo.Map.
func (m *Map) WriteU128(off int, v [16]byte) error {
	if err := m.bounds(off, 16); err != nil {
		return err
	}
	p := (*[16]byte)(unsafe.Pointer(&m.region[off]))
	*p = v
	return nil
}

// ReadExact implements streamfifo.Map. For the widths the engine actually
// uses it reads through a single typed load, matching the write side; for
// any other size it falls back to a byte copy, which is fine for data this
// package never issues as a single bus transaction anyway (the FIFO engine
// never calls ReadExact with n outside {4,8,16}).
func (m *Map) ReadExact(off, n int) ([]byte, error) {
	if err := m.bounds(off, n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	switch n {
	case 4:
		binary.NativeEndian.PutUint32(out, *(*uint32)(unsafe.Pointer(&m.region[off])))
	case 8:
		binary.NativeEndian.PutUint64(out, *(*uint64)(unsafe.Pointer(&m.region[off])))
	case 16:
		v := *(*[16]byte)(unsafe.Pointer(&m.region[off]))
		copy(out, v[:])
	default:
		copy(out, m.region[off:off+n])
	}
	return out, nil
}

func (m *Map) unmap() error {
	if m.region == nil {
		return nil
	}
	err := unix.Munmap(m.region)
	m.region = nil
	return err
}
