// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

//go:build !linux

package uio

// Map is a stub on non-Linux platforms. UIO only exists on Linux, so
// mapRegion never actually produces one outside of it.
type Map struct{}

func (m *Map) ReadU32(off int) (uint32, error) {
	return 0, errNotLinux
}

func (m *Map) WriteU32(off int, v uint32) error {
	return errNotLinux
}

func (m *Map) WriteU64(off int, v uint64) error {
	return errNotLinux
}

func (m *Map) WriteU128(off int, v [16]byte) error {
	return errNotLinux
}

func (m *Map) ReadExact(off, n int) ([]byte, error) {
	return nil, errNotLinux
}

func (m *Map) unmap() error {
	return nil
}
