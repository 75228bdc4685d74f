// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package uio

import (
	"fmt"
	"strconv"

	"periph.io/x/fifo/streamfifo"
)

// DeviceDescription is one entry of Enumerate's result: a UIO device number
// paired with the name its kernel driver registered.
type DeviceDescription struct {
	number int
	name   string
}

// Number is the UIO device number, i.e. N in /dev/uioN.
func (d DeviceDescription) Number() int {
	return d.number
}

// Name is the name the kernel driver registered for this device, as found
// in /sys/class/uio/uioN/name.
func (d DeviceDescription) Name() string {
	return d.name
}

// Device is an open UIO device. Use Open to create one, then Map to bind
// its mappable regions.
//
// Device implements streamfifo.Device.
type Device struct {
	number int
	file   deviceFile
	maps   []*Map
}

// Number returns the UIO device number this handle was opened with.
func (d *Device) Number() int {
	return d.number
}

// Maps implements streamfifo.Device. It reports one entry per region
// listed under /sys/class/uio/uioN/maps, in index order.
func (d *Device) Maps() []streamfifo.MapInfo {
	sizes, err := regionSizes(d.number)
	if err != nil {
		return nil
	}
	out := make([]streamfifo.MapInfo, len(sizes))
	for i, size := range sizes {
		out[i] = streamfifo.MapInfo{Index: i, Size: size}
	}
	return out
}

// Map implements streamfifo.Device. It lazily mmaps region index and
// caches the result; subsequent calls with the same index return the same
// *Map.
func (d *Device) Map(index int) (streamfifo.Map, error) {
	if index < len(d.maps) && d.maps[index] != nil {
		return d.maps[index], nil
	}
	sizes, err := regionSizes(d.number)
	if err != nil {
		return nil, fmt.Errorf("uio: device %d: %w", d.number, err)
	}
	if index < 0 || index >= len(sizes) {
		return nil, fmt.Errorf("uio: device %d: map %d out of range (%d maps)", d.number, index, len(sizes))
	}
	m, err := mapRegion(d.file, index, sizes[index])
	if err != nil {
		return nil, fmt.Errorf("uio: device %d: map %d: %w", d.number, index, err)
	}
	if index >= len(d.maps) {
		grown := make([]*Map, index+1)
		copy(grown, d.maps)
		d.maps = grown
	}
	d.maps[index] = m
	return m, nil
}

// InterruptEnable arms interrupt delivery on this device, if the kernel
// driver requires it to be explicitly enabled.
func (d *Device) InterruptEnable() error {
	return enableInterrupt(d.file)
}

// InterruptWait blocks until the next interrupt and returns the
// monotonically increasing interrupt count the kernel reports.
func (d *Device) InterruptWait() (uint32, error) {
	return waitInterrupt(d.file)
}

// Close unmaps every region this Device opened and closes /dev/uioN.
func (d *Device) Close() error {
	for _, m := range d.maps {
		if m != nil {
			_ = m.unmap()
		}
	}
	return closeDeviceFile(d.file)
}

// Open opens /dev/uio<number>.
func Open(number int) (*Device, error) {
	f, err := openDeviceFile(number)
	if err != nil {
		return nil, fmt.Errorf("uio: open device %d: %w", number, err)
	}
	return &Device{number: number, file: f}, nil
}

// enumerateFunc is the seam Enumerate calls through. Tests for Find's
// name-then-index resolution order replace it to avoid depending on real
// /sys/class/uio contents.
var enumerateFunc = enumerateDevices

// Enumerate lists every UIO device registered under /sys/class/uio.
func Enumerate() []DeviceDescription {
	return enumerateFunc()
}

// Find resolves a CLI-style device argument: first against the enumerated
// device names, falling back to parsing it as a decimal UIO number. ok is
// false if neither resolves.
func Find(arg string) (number int, ok bool) {
	for _, d := range Enumerate() {
		if d.Name() == arg {
			return d.Number(), true
		}
	}
	if n, err := strconv.ParseUint(arg, 10, 16); err == nil {
		return int(n), true
	}
	return 0, false
}
